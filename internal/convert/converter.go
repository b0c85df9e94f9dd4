// Package convert turns parsed Markdown into the document model.
//
// A Converter handles one source file. It reads the run-wide index and
// writes bookmarks, terms and list numberings into the shared
// spec.Context, so the files of a run are converted one after another in
// ordering-key order.
package convert

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/dgallion1/specdocx/internal/docmodel"
	"github.com/dgallion1/specdocx/internal/highlight"
	"github.com/dgallion1/specdocx/internal/mdast"
	"github.com/dgallion1/specdocx/internal/parser"
	"github.com/dgallion1/specdocx/internal/spec"
)

// Defaults for Options.
const (
	DefaultMaxCodeLineLength = 80
	DefaultLineSeparator     = "\n"
)

// Indentation constants in twentieths of a point.
const (
	quoteIndent      = 540
	tableIndent      = 360
	listIndent       = 540
	listLevelIndent  = 360
	listHangIndent   = 360
	customTableInset = 900
)

// Paragraph and run style names the output template must define.
const (
	StyleCode            = "Code"
	StyleCodeEmbedded    = "CodeEmbedded"
	StyleListParagraph   = "ListParagraph"
	StyleTableCellNormal = "TableCellNormal"
	StyleTableGrid       = "TableGrid"
	StyleTableLineBefore = "TableLineBefore"
	StyleTableLineAfter  = "TableLineAfter"
	StyleHyperlink       = "Hyperlink"
)

// Options tune the converter.
type Options struct {
	// MaxCodeLineLength is the rune count above which a code line reports
	// MD32.
	MaxCodeLineLength int
	// LineSeparator is the newline sequence of the normalised sources.
	LineSeparator string
}

func (o Options) withDefaults() Options {
	if o.MaxCodeLineLength <= 0 {
		o.MaxCodeLineLength = DefaultMaxCodeLineLength
	}
	if o.LineSeparator == "" {
		o.LineSeparator = DefaultLineSeparator
	}
	return o
}

// Converter converts the blocks of one source file.
type Converter struct {
	ctx  *spec.Context
	ix   *spec.Index
	rep  *spec.Reporter
	hl   *highlight.Highlighter
	opts Options
}

// New returns a converter for one file. rep should be the file's child
// reporter; its cursor is moved as conversion descends.
func New(ctx *spec.Context, ix *spec.Index, rep *spec.Reporter, hl *highlight.Highlighter, opts Options) *Converter {
	if hl == nil {
		hl = highlight.New()
	}
	return &Converter{ctx: ctx, ix: ix, rep: rep, hl: hl, opts: opts.withDefaults()}
}

// ConvertDocument converts every top-level block of doc.
func (c *Converter) ConvertDocument(doc *mdast.Document) []docmodel.Element {
	return c.blocks(doc.Blocks)
}

func (c *Converter) blocks(bs []mdast.Block) []docmodel.Element {
	var out []docmodel.Element
	for _, b := range bs {
		out = append(out, c.block(b)...)
	}
	return out
}

func (c *Converter) block(b mdast.Block) []docmodel.Element {
	c.rep.SetParagraph(b)
	return mdast.VisitBlock[[]docmodel.Element](b, blockConverter{c})
}

// blockConverter is the exhaustive block dispatch.
type blockConverter struct {
	c *Converter
}

func (v blockConverter) VisitHeading(h *mdast.Heading) []docmodel.Element {
	c := v.c
	style := fmt.Sprintf("Heading%d", h.Level)
	sr := c.ix.ForHeading(h)
	if sr == nil {
		// Rejected during indexing; the diagnostic is already out.
		return []docmodel.Element{docmodel.NewParagraph(style, c.spans(h.Body, false, false)...)}
	}
	c.rep.SetSection(sr)
	c.rep.Debug("section", "level", sr.Level, "title", sr.TitleWithoutNumber, "number", sr.Number)

	p := docmodel.NewParagraph(style)
	if !sr.HasNumber {
		p.Numbering = &docmodel.NumberingRef{Level: 0, ID: 0}
	}
	id := c.ctx.NextBookmarkID()
	p.Children = append(p.Children, &docmodel.BookmarkStart{Name: sr.BookmarkName, ID: id})
	title := &mdast.Literal{Range: h.Range, Text: sr.TitleWithoutNumber}
	p.Children = append(p.Children, c.spans([]mdast.Span{title}, false, false)...)
	p.Children = append(p.Children, &docmodel.BookmarkEnd{ID: id})
	return []docmodel.Element{p}
}

func (v blockConverter) VisitParagraph(p *mdast.Paragraph) []docmodel.Element {
	return []docmodel.Element{docmodel.NewParagraph("", v.c.spans(p.Body, false, false)...)}
}

func (v blockConverter) VisitSpanBlock(s *mdast.SpanBlock) []docmodel.Element {
	return []docmodel.Element{docmodel.NewParagraph("", v.c.spans(s.Body, false, false)...)}
}

func (v blockConverter) VisitQuotedBlock(q *mdast.QuotedBlock) []docmodel.Element {
	c := v.c
	out := c.blocks(q.Blocks)
	indented := make(map[int]bool)
	for _, el := range out {
		switch e := el.(type) {
		case *docmodel.Paragraph:
			if e.Numbering != nil && e.Numbering.ID != 0 {
				id := e.Numbering.ID
				if indented[id] {
					continue
				}
				indented[id] = true
				if abs := c.ctx.Numbering.AbstractFor(id); abs != nil {
					for _, lvl := range abs.Levels {
						lvl.Indent.Left += quoteIndent
					}
				}
				continue
			}
			e.Indent = &docmodel.Indent{Left: quoteIndent}
		case *docmodel.Table:
			e.Indent = quoteIndent
		default:
			c.rep.Report(spec.MD30, fmt.Sprintf("unexpected item in quoted block %T", el))
		}
	}
	return out
}

func (v blockConverter) VisitListBlock(l *mdast.ListBlock) []docmodel.Element {
	return v.c.list(l)
}

func (v blockConverter) VisitCodeBlock(cb *mdast.CodeBlock) []docmodel.Element {
	return []docmodel.Element{v.c.code(cb.Language, cb.Code)}
}

func (v blockConverter) VisitTableBlock(t *mdast.TableBlock) []docmodel.Element {
	return v.c.table(t)
}

func (v blockConverter) VisitHTMLBlock(h *mdast.HTMLBlock) []docmodel.Element {
	if strings.HasPrefix(h.Raw, "<!--") {
		return nil
	}
	v.c.rep.Report(spec.MD11, "Unrecognized markdown element HTMLBlock")
	return []docmodel.Element{docmodel.NewParagraph("", docmodel.NewRun("[HTMLBlock]"))}
}

func (v blockConverter) VisitCustomBlock(cb *mdast.CustomBlock) []docmodel.Element {
	return v.c.custom(cb)
}

func (v blockConverter) VisitUnsupportedBlock(u *mdast.UnsupportedBlock) []docmodel.Element {
	v.c.rep.Report(spec.MD11, "Unrecognized markdown element "+u.Kind)
	return []docmodel.Element{docmodel.NewParagraph("", docmodel.NewRun("["+u.Kind+"]"))}
}

// code renders a code block as one "Code" paragraph with a Break between
// source lines.
func (c *Converter) code(info, raw string) *docmodel.Paragraph {
	lang, ok := highlight.ForFence(info)
	if !ok {
		c.rep.Report(spec.MD09, "unrecognized language "+info)
	}
	text := parser.DecodeCode(raw)
	lines, err := c.hl.Highlight(lang, text)
	if err != nil {
		c.rep.Debug("highlight failed, using plain text", "error", err)
		lines = plainLines(text)
	}

	p := docmodel.NewParagraph(StyleCode)
	for i, line := range lines {
		n := 0
		for _, w := range line {
			n += utf8.RuneCountInString(w.Text)
		}
		if n > c.opts.MaxCodeLineLength {
			c.rep.Report(spec.MD32, fmt.Sprintf("Line length %d > maximum %d", n, c.opts.MaxCodeLineLength))
		}
		if i > 0 {
			p.Children = append(p.Children, &docmodel.Break{})
		}
		for _, w := range line {
			p.Children = append(p.Children, &docmodel.Run{Text: w.Text, Color: w.Colour, Italic: w.Italic})
		}
	}
	return p
}

func plainLines(text string) []highlight.Line {
	var out []highlight.Line
	for _, l := range strings.Split(text, "\n") {
		if l == "" {
			out = append(out, nil)
			continue
		}
		out = append(out, highlight.Line{{Text: l}})
	}
	return out
}
