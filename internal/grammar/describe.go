package grammar

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf16"
)

const noSuggestion = "(no suggestion)"

// Describe renders one match for the report: the issue type, the offending
// text, the first suggestion, and the surrounding text with the offending
// text in bold.
func Describe(text string, m Match, radius int) string {
	runes := []rune(text)
	start := runeIndex(runes, m.Offset)
	end := max(start, runeIndex(runes, m.Offset+m.Length))
	errorText := string(runes[start:end])

	suggestion := noSuggestion
	if len(m.Replacements) > 0 {
		suggestion = m.Replacements[0]
	}

	context := surroundingText(runes, start, end, radius)
	if errorText != "" {
		context = strings.ReplaceAll(context, errorText, "*"+errorText+"*")
	}

	return fmt.Sprintf("❌ %s: “%s” ➝ Suggested: “%s”\n🧠 Context: “…%s…”",
		issueLabel(m), errorText, suggestion, context)
}

func surroundingText(runes []rune, start, end, radius int) string {
	from := max(0, start-radius)
	to := min(len(runes), end+radius)
	return strings.TrimSpace(strings.ReplaceAll(string(runes[from:to]), "\n", " "))
}

func issueLabel(m Match) string {
	label := m.IssueType
	if label == "" {
		label = m.Category
	}
	if label == "" {
		return "Issue"
	}
	return capitalize(label)
}

// capitalize upper-cases the first letter and lower-cases the rest.
func capitalize(s string) string {
	runes := []rune(strings.ToLower(s))
	runes[0] = unicode.ToUpper(runes[0])
	return string(runes)
}

// runeIndex converts a UTF-16 offset into an index into runes, clamped to
// the text.
func runeIndex(runes []rune, offset int) int {
	units := 0
	for i, r := range runes {
		if units >= offset {
			return i
		}
		units += utf16.RuneLen(r)
	}
	return len(runes)
}
