// Package highlight colours code blocks with chroma lexers and the Visual
// Studio palette.
package highlight

import (
	"fmt"
	"strings"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/alecthomas/chroma/v2/styles"
)

// Language names a chroma lexer.
type Language string

const (
	CSharp    Language = "C#"
	VB        Language = "VB.net"
	PlainText Language = "plaintext"
)

// StyleName is the chroma style used for colours.
const StyleName = "vs"

// ForFence maps a code fence info string to a language. ok is false for a
// language that has no colouriser; such code is rendered as plain text.
func ForFence(info string) (lang Language, ok bool) {
	switch info {
	case "csharp", "c#", "cs":
		return CSharp, true
	case "vb", "vbnet", "vb.net":
		return VB, true
	case "", "console", "xml", "ANTLR":
		return PlainText, true
	}
	return PlainText, false
}

// Word is a run of code text with one colour.
type Word struct {
	Text string
	// Colour is an upper-case RRGGBB value, or empty for the default
	// (black) text colour.
	Colour string
	Italic bool
}

// Line is the words of one source line, without the line break.
type Line []Word

// Highlighter tokenises code and maps token types to colours.
type Highlighter struct {
	style *chroma.Style
}

// New returns a highlighter using StyleName.
func New() *Highlighter {
	return &Highlighter{style: styles.Get(StyleName)}
}

// Highlight splits code into lines of coloured words. It always returns
// exactly one Line per "\n"-separated line of code.
func (h *Highlighter) Highlight(lang Language, code string) ([]Line, error) {
	lexer := lexers.Get(string(lang))
	if lexer == nil {
		lexer = lexers.Fallback
	}
	lexer = chroma.Coalesce(lexer)
	it, err := lexer.Tokenise(nil, code)
	if err != nil {
		return nil, fmt.Errorf("tokenise %s: %w", lang, err)
	}

	want := strings.Count(code, "\n") + 1
	out := make([]Line, 0, want)
	for _, tokens := range chroma.SplitTokensIntoLines(it.Tokens()) {
		if len(out) == want {
			break
		}
		var line Line
		for _, tok := range tokens {
			text := strings.TrimSuffix(tok.Value, "\n")
			if text == "" {
				continue
			}
			line = append(line, h.word(tok.Type, text))
		}
		out = append(out, line)
	}
	for len(out) < want {
		out = append(out, nil)
	}
	return out, nil
}

func (h *Highlighter) word(tt chroma.TokenType, text string) Word {
	entry := h.style.Get(tt)
	w := Word{Text: text, Italic: entry.Italic == chroma.Yes}
	if entry.Colour.IsSet() {
		hex := strings.ToUpper(strings.TrimPrefix(entry.Colour.String(), "#"))
		if hex != "000000" {
			w.Colour = hex
		}
	}
	return w
}
