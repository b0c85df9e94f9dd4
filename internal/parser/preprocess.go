package parser

import (
	"strings"

	"github.com/dgallion1/specdocx/internal/spec"
)

// PipePlaceholder stands in for '|' inside inline code on table lines so the
// table parser does not split cells on it. DecodeCode restores it.
const PipePlaceholder = "\uE000"

const (
	commentStart = "\n<!--\n"
	commentEnd   = "\n-->\n"
)

// NormalizeNewlines converts CRLF and CR line endings to LF.
func NormalizeNewlines(s string) string {
	if !strings.Contains(s, "\r") {
		return s
	}
	s = strings.ReplaceAll(s, "\r\n", "\n")
	return strings.ReplaceAll(s, "\r", "\n")
}

// ValidateLists returns the 1-based line numbers of list items that start
// directly after a line of text. Markdown renderers disagree on whether such
// a line starts a list, so sources must separate them with a blank line.
func ValidateLists(text string) []int {
	lines := strings.Split(text, "\n")
	var bad []int
	for i := 1; i < len(lines); i++ {
		line, prev := lines[i], lines[i-1]
		if !strings.HasPrefix(line, "- ") && !strings.HasPrefix(line, "* ") {
			continue
		}
		if prev == "" || prev[0] == line[0] || prev[0] == ' ' {
			continue
		}
		bad = append(bad, i+1)
	}
	return bad
}

// EncodePipes replaces '|' inside backtick segments of table lines with
// PipePlaceholder.
func EncodePipes(text string) string {
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		if !strings.HasPrefix(line, "|") || !strings.Contains(line, "`") {
			continue
		}
		parts := strings.Split(line, "`")
		for j := 1; j < len(parts); j += 2 {
			parts[j] = strings.ReplaceAll(parts[j], "|", PipePlaceholder)
		}
		lines[i] = strings.Join(parts, "`")
	}
	return strings.Join(lines, "\n")
}

// DecodeCode undoes EncodePipes and the table escape "\|" in code text.
func DecodeCode(s string) string {
	s = strings.ReplaceAll(s, PipePlaceholder, "|")
	return strings.ReplaceAll(s, `\|`, "|")
}

// RemoveBlockComments drops every comment whose "<!--" and "-->" markers
// each sit on a line of their own. Single-line comments are left alone since
// custom conversions are driven by them. A stray or out-of-order end marker
// is fatal.
func RemoveBlockComments(text, file string) (string, error) {
	for {
		start := strings.Index(text, commentStart)
		end := strings.Index(text, commentEnd)
		switch {
		case start == -1 && end == -1:
			return text, nil
		case start == -1:
			return "", spec.Fatalf(file, "end comment with no start comment")
		case end == -1:
			return "", spec.Fatalf(file, "start comment with no end comment")
		case end < start:
			return "", spec.Fatalf(file, "end comment before start comment")
		}
		// Keep the newline that follows "-->".
		text = text[:start] + text[end+len(commentEnd)-1:]
	}
}
