package convert

import (
	"fmt"
	"strings"

	"github.com/dgallion1/specdocx/internal/docmodel"
	"github.com/dgallion1/specdocx/internal/mdast"
	"github.com/dgallion1/specdocx/internal/needle"
	"github.com/dgallion1/specdocx/internal/parser"
	"github.com/dgallion1/specdocx/internal/spec"
)

// Term reference runs are underlined in this colour.
const (
	termUnderline      = "dotted"
	termUnderlineColor = "4BACC6"
)

// spans converts a span sequence. nested is set inside emphasis and links,
// where term highlighting and term definitions are off. inList enables the
// quote and "end example" line-break quirks of list items.
func (c *Converter) spans(ss []mdast.Span, nested, inList bool) []docmodel.Inline {
	var out []docmodel.Inline
	for _, s := range ss {
		out = append(out, c.span(s, nested, inList)...)
	}
	if n := len(out); n > 0 {
		if _, ok := out[n-1].(*docmodel.Break); ok {
			out = out[:n-1]
		}
	}
	return out
}

func (c *Converter) span(s mdast.Span, nested, inList bool) []docmodel.Inline {
	if inList {
		if em, ok := s.(*mdast.Emphasis); ok && isEndMarker(em) {
			out := c.span(s, nested, false)
			return append(out, &docmodel.Break{})
		}
	}
	c.rep.SetSpan(s)
	return mdast.VisitSpan[[]docmodel.Inline](s, spanConverter{c: c, nested: nested, inList: inList})
}

func isEndMarker(em *mdast.Emphasis) bool {
	if len(em.Body) != 1 {
		return false
	}
	lit, ok := em.Body[0].(*mdast.Literal)
	return ok && (lit.Text == "end example" || lit.Text == "end note")
}

type spanConverter struct {
	c      *Converter
	nested bool
	inList bool
}

func (v spanConverter) VisitLiteral(l *mdast.Literal) []docmodel.Inline {
	sep := v.c.opts.LineSeparator
	text := spec.Unescape(l.Text)
	if strings.HasPrefix(text, sep+"<!--") {
		return nil
	}
	if v.inList {
		if text == "> " {
			return []docmodel.Inline{&docmodel.Break{}}
		}
		if prefix, ok := strings.CutSuffix(text, sep+"> "); ok {
			return []docmodel.Inline{docmodel.NewRun(prefix), &docmodel.Break{}}
		}
	}
	if v.nested {
		return []docmodel.Inline{docmodel.NewRun(text)}
	}
	return v.c.highlightTerms(text)
}

// highlightTerms links every occurrence of a defined term to its
// definition.
func (c *Converter) highlightTerms(text string) []docmodel.Inline {
	keys := c.ctx.TermKeys()
	if len(keys) == 0 {
		return []docmodel.Inline{docmodel.NewRun(text)}
	}
	runes := []rune(text)
	var out []docmodel.Inline
	for _, n := range needle.Find(keys, text) {
		s := n.Text(runes)
		if n.IsGap() {
			out = append(out, docmodel.NewRun(s))
			continue
		}
		term := c.ctx.Terms[keys[n.ID]]
		c.ctx.AddItalic(s, spec.ItalicTerm, c.rep.Location())
		out = append(out, &docmodel.Hyperlink{
			Anchor: term.BookmarkName,
			Runs:   []*docmodel.Run{{Text: s, Underline: termUnderline, UnderlineColor: termUnderlineColor}},
		})
	}
	return out
}

func (v spanConverter) VisitStrong(s *mdast.Strong) []docmodel.Inline {
	return v.emphasis(true, s.Body)
}

func (v spanConverter) VisitEmphasis(e *mdast.Emphasis) []docmodel.Inline {
	return v.emphasis(false, v.c.canonicalEmphasis(e))
}

// canonicalEmphasis flattens the body of an italic span to one literal.
// goldmark nests "***x***" and "*_x_*" shapes, and a nested emphasis is
// written back as "_x_".
func (c *Converter) canonicalEmphasis(e *mdast.Emphasis) []mdast.Span {
	if len(e.Body) == 0 {
		return nil
	}
	var sb strings.Builder
	for _, s := range e.Body {
		switch n := s.(type) {
		case *mdast.Literal:
			sb.WriteString(n.Text)
		case *mdast.Emphasis:
			lit, ok := singleLiteral(n.Body)
			if !ok {
				c.rep.Report(spec.MD15, fmt.Sprintf("something odd inside emphasis '%s' - only allowed emphasis and literal", mdast.SpanKind(s)))
				continue
			}
			sb.WriteString("_" + lit.Text + "_")
		default:
			c.rep.Report(spec.MD15, fmt.Sprintf("something odd inside emphasis '%s' - only allowed emphasis and literal", mdast.SpanKind(s)))
		}
	}
	return []mdast.Span{&mdast.Literal{Range: e.Range, Text: sb.String()}}
}

func singleLiteral(ss []mdast.Span) (*mdast.Literal, bool) {
	if len(ss) != 1 {
		return nil, false
	}
	lit, ok := ss[0].(*mdast.Literal)
	return lit, ok
}

func (v spanConverter) emphasis(strong bool, body []mdast.Span) []docmodel.Inline {
	c := v.c

	// ***term*** defines a term.
	if !v.nested && strong && len(body) == 1 {
		if em, ok := body[0].(*mdast.Emphasis); ok {
			if lit, ok := singleLiteral(em.Body); ok {
				return c.defineTerm(lit.Text)
			}
		}
	}

	if !v.nested && !strong {
		if lit, ok := singleLiteral(body); ok {
			c.ctx.AddItalic(lit.Text, spec.ItalicPlain, c.rep.Location())
		} else {
			c.rep.Report(spec.MD17, "something odd inside emphasis")
		}
	}

	out := c.spans(body, true, false)
	for _, in := range out {
		if r, ok := in.(*docmodel.Run); ok {
			if strong {
				r.Bold = true
			} else {
				r.Italic = true
			}
		}
	}
	return out
}

// defineTerm registers a term and bookmarks its definition. A duplicate
// keeps the first definition but still gets its own bookmark.
func (c *Converter) defineTerm(term string) []docmodel.Inline {
	ref := c.ctx.NewTermRef(term, c.rep.Location())
	if prev, added := c.ctx.AddTerm(ref); !added {
		c.rep.Report(spec.MD16, fmt.Sprintf("Term '%s' defined a second time", term))
		c.rep.ReportAt(spec.MD16b, fmt.Sprintf("Here was the previous definition of term '%s'", term), prev.Loc)
	}
	id := c.ctx.NextBookmarkID()
	return []docmodel.Inline{
		&docmodel.BookmarkStart{Name: ref.BookmarkName, ID: id},
		&docmodel.Run{Text: term, Bold: true, Italic: true},
		&docmodel.BookmarkEnd{ID: id},
	}
}

func (v spanConverter) VisitInlineCode(ic *mdast.InlineCode) []docmodel.Inline {
	var out []docmodel.Inline
	for _, part := range splitVertical(parser.DecodeCode(ic.Code)) {
		out = append(out, &docmodel.Run{Text: part.text, Style: StyleCodeEmbedded, VertAlign: part.align})
	}
	return out
}

func (v spanConverter) VisitLink(l *mdast.Link) []docmodel.Inline {
	c := v.c
	var anchor string
	ok := false
	if len(l.Body) == 1 {
		switch n := l.Body[0].(type) {
		case *mdast.Literal:
			anchor, ok = spec.Unescape(n.Text), true
		case *mdast.InlineCode:
			anchor, ok = parser.DecodeCode(n.Code), true
		}
	}
	if !ok {
		kind := "nothing"
		if len(l.Body) > 0 {
			kind = mdast.SpanKind(l.Body[0])
		}
		c.rep.Report(spec.MD18, fmt.Sprintf("Link anchor must be Literal or InlineCode, not '%s'", kind))
		return nil
	}

	url := l.URL
	if strings.HasPrefix(url, "#") {
		url = c.rep.CurrentFile() + url
	}
	if sr, ok := c.ix.Lookup(url); ok {
		if sr.HasNumber && anchor != "§"+sr.Number {
			c.rep.Report(spec.MD19, fmt.Sprintf("Mismatch: link anchor is '%s', should be '§%s'", anchor, sr.Number))
		}
		return []docmodel.Inline{&docmodel.Hyperlink{Anchor: sr.BookmarkName, Runs: []*docmodel.Run{docmodel.NewRun(anchor)}}}
	}

	if strings.HasPrefix(l.URL, "http:") || strings.HasPrefix(l.URL, "https:") {
		link := &docmodel.Hyperlink{URL: l.URL, Tooltip: l.Title}
		for _, in := range c.spans(l.Body, true, false) {
			if r, ok := in.(*docmodel.Run); ok {
				r.Style = StyleHyperlink
				link.Runs = append(link.Runs, r)
			}
		}
		return []docmodel.Inline{link}
	}

	if l.URL != "" {
		c.rep.Report(spec.MD28, fmt.Sprintf("Hyperlink url '%s' unrecognized - not a recognized heading, and not http", l.URL))
	}
	return nil
}

func (v spanConverter) VisitHardBreak(*mdast.HardBreak) []docmodel.Inline {
	return nil
}

func (v spanConverter) VisitInlineHTML(h *mdast.InlineHTML) []docmodel.Inline {
	if strings.HasPrefix(h.Raw, "<!--") {
		return nil
	}
	return []docmodel.Inline{docmodel.NewRun(h.Raw)}
}

func (v spanConverter) VisitUnsupportedSpan(u *mdast.UnsupportedSpan) []docmodel.Inline {
	v.c.rep.Report(spec.MD20, "Unrecognized markdown element "+u.Kind)
	return []docmodel.Inline{docmodel.NewRun("[" + u.Kind + "]")}
}

var subscripts = map[rune]rune{
	'ᵢ': 'i', 'ᵥ': 'v', 'ₑ': 'e', 'ₓ': 'x', '₊': '+', '₋': '-',
	'₀': '0', '₁': '1', '₂': '2', '₃': '3', '₄': '4',
	'₅': '5', '₆': '6', '₇': '7', '₈': '8', '₉': '9',
}

var superscripts = map[rune]rune{
	'ª': 'a', 'ⁿ': 'n', '¹': '1',
}

type codePart struct {
	text  string
	align string
}

// splitVertical splits code into runs of baseline, subscript and
// superscript text, mapping the Unicode forms back to plain characters.
func splitVertical(code string) []codePart {
	var parts []codePart
	var sb strings.Builder
	align := ""
	flush := func() {
		if sb.Len() > 0 {
			parts = append(parts, codePart{text: sb.String(), align: align})
			sb.Reset()
		}
	}
	for _, r := range code {
		next, plain := "", r
		if m, ok := subscripts[r]; ok {
			next, plain = docmodel.Subscript, m
		} else if m, ok := superscripts[r]; ok {
			next, plain = docmodel.Superscript, m
		}
		if next != align {
			flush()
			align = next
		}
		sb.WriteRune(plain)
	}
	flush()
	return parts
}
