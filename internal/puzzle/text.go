package puzzle

import (
	"net/url"
	"strings"
)

// NormalizeChar turns raw cell input into a single uppercase letter, or ""
// when the input holds no usable letter. Å, Ä and Ö are kept as-is.
func NormalizeChar(raw string) string {
	up := strings.ToUpper(raw)
	switch up {
	case "Å", "Ä", "Ö":
		return up
	}
	for _, r := range up {
		if r >= 'A' && r <= 'Z' {
			return string(r)
		}
	}
	return ""
}

// IsLetter reports whether s is exactly one letter A-Z or Å/Ä/Ö, any case.
func IsLetter(s string) bool {
	rs := []rune(strings.ToUpper(s))
	if len(rs) != 1 {
		return false
	}
	r := rs[0]
	return (r >= 'A' && r <= 'Z') || r == 'Å' || r == 'Ä' || r == 'Ö'
}

// mailtoUnreserved restores the marks browsers leave bare in a URI component.
var mailtoUnreserved = strings.NewReplacer(
	"%21", "!",
	"%27", "'",
	"%28", "(",
	"%29", ")",
	"%2A", "*",
)

// mailtoEncode percent-encodes s for a mailto query with spaces as "+".
// The marks ! ' ( ) * stay literal.
func mailtoEncode(s string) string {
	return mailtoUnreserved.Replace(url.QueryEscape(s))
}
