package puzzle

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/samber/lo"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

const submissionHeader = "WORDEX – MUSIKKRYSS INSKICK"

// submissionTime is ISO 8601 in UTC with milliseconds.
const submissionTime = "2006-01-02T15:04:05.000Z07:00"

// DefaultRecipient receives submissions when a definition names none.
const DefaultRecipient = "support@wordex.se"

// BuildSubmission renders the plain-text answer document: a header, one
// entry per clue in number order with the answer read from its resolved
// span, and a trailing JSON dump of every non-empty cell.
func BuildSubmission(def *Definition, layout *Layout, values map[string]string, now time.Time) string {
	lines := []string{
		submissionHeader,
		"PuzzleId: " + def.ID,
		"Vecka: " + def.WeekLabel,
		"Tid: " + now.UTC().Format(submissionTime),
		"",
		"Svar per ledtråd (tomt = ej ifyllt):",
	}

	for _, clue := range def.OrderedClues() {
		span, ok := layout.Span(clue.ID)
		if !ok {
			continue
		}
		lines = append(lines,
			fmt.Sprintf("%d. %s (%d) – %s", clue.Number, clue.Direction.Label(), span.Length, clue.Text),
			"Svar: "+span.Answer(values),
			"",
		)
	}

	lines = append(lines, "Rutor (rådata):", rawCells(values))
	return strings.Join(lines, "\n")
}

// rawCells is the indented JSON object of non-blank values. Keys follow
// root locale collation, so "1:0" sorts before "10:0".
func rawCells(values map[string]string) string {
	filled := lo.PickBy(values, func(_ string, v string) bool {
		return strings.TrimSpace(v) != ""
	})
	keys := lo.Keys(filled)
	collate.New(language.Und).SortStrings(keys)

	if len(keys) == 0 {
		return "{}"
	}
	var b bytes.Buffer
	b.WriteString("{\n")
	for i, k := range keys {
		kj, _ := json.Marshal(k)
		vj, _ := json.Marshal(filled[k])
		b.WriteString("  ")
		b.Write(kj)
		b.WriteString(": ")
		b.Write(vj)
		if i < len(keys)-1 {
			b.WriteByte(',')
		}
		b.WriteByte('\n')
	}
	b.WriteString("}")
	return b.String()
}

// Subject is the mail subject line for a definition.
func Subject(def *Definition) string {
	return fmt.Sprintf("Musikkryss – %s – %s", def.WeekLabel, def.ID)
}

// RecipientOf returns the definition's recipient or the default one.
func RecipientOf(def *Definition) string {
	if def.Recipient != "" {
		return def.Recipient
	}
	return DefaultRecipient
}

// MailtoURL builds a mailto link with an encoded subject and body.
func MailtoURL(to, subject, body string) string {
	return "mailto:" + to + "?subject=" + mailtoEncode(subject) + "&body=" + mailtoEncode(body)
}

// CountFilled counts values that are not blank.
func CountFilled(values map[string]string) int {
	return lo.CountBy(lo.Values(values), func(v string) bool {
		return strings.TrimSpace(v) != ""
	})
}
