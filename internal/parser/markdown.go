package parser

import (
	"bytes"
	"regexp"
	"sort"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	east "github.com/yuin/goldmark/extension/ast"
	"github.com/yuin/goldmark/text"

	"github.com/dgallion1/specdocx/internal/mdast"
)

var customBlockRe = regexp.MustCompile(`^<!-- Custom Word conversion: ([a-z0-9_]+) -->`)

// CustomBlockID returns the id of a custom conversion comment, or "".
func CustomBlockID(raw string) string {
	m := customBlockRe.FindStringSubmatch(raw)
	if m == nil {
		return ""
	}
	return m[1]
}

// escapes are the backslash escapes goldmark leaves in text segments.
// "\<" and "\>" survive so literal consumers can apply spec.Unescape.
var escapes = strings.NewReplacer(
	`\\`, `\`,
	"\\`", "`",
	`\*`, "*",
	`\_`, "_",
	`\#`, "#",
	`\[`, "[",
	`\]`, "]",
	`\(`, "(",
	`\)`, ")",
	`\!`, "!",
	`\|`, "|",
	`\~`, "~",
)

// MarkdownParser handles Markdown files using goldmark.
type MarkdownParser struct {
	md goldmark.Markdown
}

// NewMarkdownParser returns a parser with GitHub tables and strikethrough
// enabled.
func NewMarkdownParser() *MarkdownParser {
	return &MarkdownParser{
		md: goldmark.New(goldmark.WithExtensions(extension.Table, extension.Strikethrough)),
	}
}

// Parse converts already preprocessed Markdown into a document named name.
func (p *MarkdownParser) Parse(src []byte, name string) *mdast.Document {
	root := p.md.Parser().Parse(text.NewReader(src))
	b := &builder{src: src, lines: lineStarts(src)}
	return &mdast.Document{Name: name, Blocks: b.blocks(root)}
}

type builder struct {
	src   []byte
	lines []int
}

func lineStarts(src []byte) []int {
	starts := []int{0}
	for i, c := range src {
		if c == '\n' {
			starts = append(starts, i+1)
		}
	}
	return starts
}

// position maps a byte offset to a 1-based line and column.
func (b *builder) position(off int) mdast.Position {
	i := sort.Search(len(b.lines), func(i int) bool { return b.lines[i] > off }) - 1
	if i < 0 {
		i = 0
	}
	return mdast.Position{Line: i + 1, Column: off - b.lines[i] + 1}
}

// rangeOf converts a [start, stop) byte extent to a Range whose end is the
// last byte covered.
func (b *builder) rangeOf(start, stop int) mdast.Range {
	if start < 0 || stop < start {
		return mdast.Range{}
	}
	last := stop - 1
	for last > start && last < len(b.src) && b.src[last] == '\n' {
		last--
	}
	if last < start {
		last = start
	}
	return mdast.Range{Start: b.position(start), End: b.position(last)}
}

func (b *builder) blockRange(n ast.Node) mdast.Range {
	start, stop, ok := blockExtent(n)
	if !ok {
		return mdast.Range{}
	}
	return b.rangeOf(start, stop)
}

func blockExtent(n ast.Node) (int, int, bool) {
	start, stop, ok := -1, -1, false
	if n.Type() == ast.TypeBlock {
		if lines := n.Lines(); lines != nil && lines.Len() > 0 {
			start, stop, ok = lines.At(0).Start, lines.At(lines.Len()-1).Stop, true
		}
		if hb, isHTML := n.(*ast.HTMLBlock); isHTML && hb.HasClosure() {
			stop = hb.ClosureLine.Stop
		}
	}
	if ok {
		return start, stop, true
	}
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		var s, e int
		var found bool
		if c.Type() == ast.TypeBlock {
			s, e, found = blockExtent(c)
		} else {
			s, e, found = inlineExtent(c)
		}
		if !found {
			continue
		}
		if !ok || s < start {
			start = s
		}
		if !ok || e > stop {
			stop = e
		}
		ok = true
	}
	return start, stop, ok
}

func inlineExtent(n ast.Node) (int, int, bool) {
	switch v := n.(type) {
	case *ast.Text:
		return v.Segment.Start, v.Segment.Stop, true
	case *ast.RawHTML:
		if v.Segments != nil && v.Segments.Len() > 0 {
			return v.Segments.At(0).Start, v.Segments.At(v.Segments.Len() - 1).Stop, true
		}
		return 0, 0, false
	}
	start, stop, ok := -1, -1, false
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		s, e, found := inlineExtent(c)
		if !found {
			continue
		}
		if !ok {
			start = s
		}
		stop = e
		ok = true
	}
	return start, stop, ok
}

func (b *builder) spanRange(n ast.Node) mdast.Range {
	start, stop, ok := inlineExtent(n)
	if !ok {
		return mdast.Range{}
	}
	return b.rangeOf(start, stop)
}

func (b *builder) blocks(parent ast.Node) []mdast.Block {
	var out []mdast.Block
	for n := parent.FirstChild(); n != nil; n = n.NextSibling() {
		if hb, ok := n.(*ast.HTMLBlock); ok {
			raw := b.htmlRaw(hb)
			if id := CustomBlockID(raw); id != "" {
				r := b.blockRange(hb)
				// The markup a custom conversion reads follows its comment.
				if next, ok := n.NextSibling().(*ast.HTMLBlock); ok {
					raw += "\n" + b.htmlRaw(next)
					r.End = b.blockRange(next).End
					n = next
				}
				out = append(out, &mdast.CustomBlock{Range: r, ID: id, Raw: raw})
				continue
			}
			out = append(out, &mdast.HTMLBlock{Range: b.blockRange(hb), Raw: raw})
			continue
		}
		out = append(out, b.block(n))
	}
	return out
}

func (b *builder) block(n ast.Node) mdast.Block {
	r := b.blockRange(n)
	switch v := n.(type) {
	case *ast.Heading:
		return &mdast.Heading{Range: r, Level: v.Level, Body: b.spans(v)}
	case *ast.Paragraph:
		return &mdast.Paragraph{Range: r, Body: b.spans(v)}
	case *ast.TextBlock:
		return &mdast.SpanBlock{Range: r, Body: b.spans(v)}
	case *ast.Blockquote:
		return &mdast.QuotedBlock{Range: r, Blocks: b.blocks(v)}
	case *ast.List:
		lb := &mdast.ListBlock{Range: r, Ordered: v.IsOrdered()}
		for item := v.FirstChild(); item != nil; item = item.NextSibling() {
			lb.Items = append(lb.Items, b.blocks(item))
		}
		return lb
	case *ast.FencedCodeBlock:
		return &mdast.CodeBlock{Range: r, Language: string(v.Language(b.src)), Code: b.codeText(v)}
	case *ast.CodeBlock:
		return &mdast.CodeBlock{Range: r, Code: b.codeText(v)}
	case *east.Table:
		return b.table(v, r)
	}
	return &mdast.UnsupportedBlock{Range: r, Kind: n.Kind().String()}
}

func (b *builder) codeText(n ast.Node) string {
	var buf bytes.Buffer
	lines := n.Lines()
	for i := 0; i < lines.Len(); i++ {
		seg := lines.At(i)
		buf.Write(seg.Value(b.src))
	}
	return strings.TrimSuffix(buf.String(), "\n")
}

func (b *builder) htmlRaw(hb *ast.HTMLBlock) string {
	var buf bytes.Buffer
	buf.Write(hb.Lines().Value(b.src))
	if hb.HasClosure() {
		buf.Write(hb.ClosureLine.Value(b.src))
	}
	return strings.TrimRight(buf.String(), "\n")
}

func (b *builder) table(t *east.Table, r mdast.Range) *mdast.TableBlock {
	tb := &mdast.TableBlock{Range: r}
	for _, a := range t.Alignments {
		tb.Alignments = append(tb.Alignments, alignment(a))
	}
	for row := t.FirstChild(); row != nil; row = row.NextSibling() {
		var cells []mdast.TableCell
		for c := row.FirstChild(); c != nil; c = c.NextSibling() {
			cells = append(cells, b.tableCell(c))
		}
		if _, isHeader := row.(*east.TableHeader); isHeader {
			tb.Header = cells
			continue
		}
		tb.Rows = append(tb.Rows, cells)
	}
	return tb
}

func (b *builder) tableCell(c ast.Node) mdast.TableCell {
	cell := mdast.TableCell{Range: b.blockRange(c)}
	if body := b.spans(c); len(body) > 0 {
		cell.Blocks = []mdast.Block{&mdast.SpanBlock{Range: cell.Range, Body: body}}
	}
	return cell
}

func alignment(a east.Alignment) mdast.Alignment {
	switch a {
	case east.AlignLeft:
		return mdast.AlignLeft
	case east.AlignCenter:
		return mdast.AlignCenter
	case east.AlignRight:
		return mdast.AlignRight
	}
	return mdast.AlignDefault
}

// spans converts the inline children of n. Adjacent text nodes merge into
// one literal, with soft line breaks kept as "\n".
func (b *builder) spans(n ast.Node) []mdast.Span {
	var out []mdast.Span
	var lit *mdast.Literal
	var buf strings.Builder
	flush := func() {
		if lit != nil {
			lit.Text = escapes.Replace(buf.String())
			out = append(out, lit)
			lit = nil
			buf.Reset()
		}
	}
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		switch v := c.(type) {
		case *ast.Text:
			r := b.spanRange(v)
			if lit == nil {
				lit = &mdast.Literal{Range: r}
			} else if !r.IsZero() {
				lit.End = r.End
			}
			buf.Write(v.Segment.Value(b.src))
			if v.SoftLineBreak() {
				buf.WriteByte('\n')
			}
			if v.HardLineBreak() {
				flush()
				out = append(out, &mdast.HardBreak{Range: r})
			}
		case *ast.String:
			if lit == nil {
				lit = &mdast.Literal{}
			}
			buf.Write(v.Value)
		default:
			flush()
			out = append(out, b.span(c))
		}
	}
	flush()
	return out
}

func (b *builder) span(n ast.Node) mdast.Span {
	r := b.spanRange(n)
	switch v := n.(type) {
	case *ast.Emphasis:
		if v.Level >= 2 {
			return &mdast.Strong{Range: r, Body: b.spans(v)}
		}
		// "***x***" parses as emphasis around strong; treat it as strong
		// around emphasis so it reads as a term definition.
		if inner, ok := v.FirstChild().(*ast.Emphasis); ok && v.ChildCount() == 1 && inner.Level >= 2 {
			return &mdast.Strong{Range: r, Body: []mdast.Span{&mdast.Emphasis{Range: r, Body: b.spans(inner)}}}
		}
		return &mdast.Emphasis{Range: r, Body: b.spans(v)}
	case *ast.CodeSpan:
		var buf bytes.Buffer
		for c := v.FirstChild(); c != nil; c = c.NextSibling() {
			switch t := c.(type) {
			case *ast.Text:
				buf.Write(t.Segment.Value(b.src))
			case *ast.String:
				buf.Write(t.Value)
			}
		}
		return &mdast.InlineCode{Range: r, Code: buf.String()}
	case *ast.Link:
		return &mdast.Link{Range: r, Body: b.spans(v), URL: string(v.Destination), Title: string(v.Title)}
	case *ast.AutoLink:
		label := string(v.Label(b.src))
		return &mdast.Link{Range: r, Body: []mdast.Span{&mdast.Literal{Range: r, Text: label}}, URL: string(v.URL(b.src))}
	case *ast.RawHTML:
		return &mdast.InlineHTML{Range: r, Raw: string(v.Segments.Value(b.src))}
	}
	return &mdast.UnsupportedSpan{Range: r, Kind: n.Kind().String()}
}
