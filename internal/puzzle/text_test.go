package puzzle

import "testing"

func TestNormalizeChar(t *testing.T) {
	cases := map[string]string{
		"a":  "A",
		"Z":  "Z",
		"å":  "Å",
		"ä":  "Ä",
		"Ö":  "Ö",
		"ab": "A",
		" x": "X",
		"1":  "",
		"":   "",
		"é":  "",
		"?":  "",
	}
	for in, want := range cases {
		if got := NormalizeChar(in); got != want {
			t.Errorf("NormalizeChar(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestIsLetter(t *testing.T) {
	cases := map[string]bool{
		"A":  true,
		"q":  true,
		"Å":  true,
		"ö":  true,
		"AB": false,
		"1":  false,
		"":   false,
		"_":  false,
	}
	for in, want := range cases {
		if got := IsLetter(in); got != want {
			t.Errorf("IsLetter(%q) = %v, want %v", in, got, want)
		}
	}
}
