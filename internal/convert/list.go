package convert

import (
	"fmt"
	"strings"

	"github.com/dgallion1/specdocx/internal/docmodel"
	"github.com/dgallion1/specdocx/internal/mdast"
	"github.com/dgallion1/specdocx/internal/spec"
)

// MaxListLevel is the deepest list level Word numbering is set up for.
const MaxListLevel = 3

// FlatItem is one block of a flattened list.
type FlatItem struct {
	Level     int
	HasBullet bool
	IsOrdered bool
	Block     mdast.Block
}

// Flatten turns a nested list into a sequence of items with explicit
// levels. Problems are reported to rep; flattening always completes.
func Flatten(l *mdast.ListBlock, level int, rep *spec.Reporter) []FlatItem {
	items := flatten(l, level, rep)
	validate(items, rep)
	return items
}

func flatten(l *mdast.ListBlock, level int, rep *spec.Reporter) []FlatItem {
	var out []FlatItem
	for _, item := range l.Items {
		first := true
		for _, b := range item {
			switch n := b.(type) {
			case *mdast.Paragraph, *mdast.SpanBlock:
				out = append(out, FlatItem{Level: level, HasBullet: first, IsOrdered: l.Ordered, Block: b})
			case *mdast.ListBlock:
				out = append(out, flatten(n, level+1, rep)...)
			case *mdast.QuotedBlock, *mdast.CodeBlock, *mdast.TableBlock, *mdast.CustomBlock:
				out = append(out, FlatItem{Level: level, IsOrdered: l.Ordered, Block: b})
			default:
				rep.SetParagraph(b)
				rep.Report(spec.MD14, fmt.Sprintf("nothing fancy allowed in lists - specifically not '%s'", mdast.BlockKind(b)))
			}
			first = false
		}
	}
	return out
}

// validate checks that each level uses one marker kind and clamps levels
// that are too deep.
func validate(items []FlatItem, rep *spec.Reporter) {
	ordered := make(map[int]bool)
	tooDeep := false
	for i := range items {
		it := &items[i]
		if prev, seen := ordered[it.Level]; seen && prev != it.IsOrdered {
			rep.SetParagraph(it.Block)
			rep.Report(spec.MD12, "List can't mix ordered and unordered items at same level")
		}
		ordered[it.Level] = it.IsOrdered
		if it.Level > MaxListLevel {
			if !tooDeep {
				rep.SetParagraph(it.Block)
				rep.Report(spec.MD13, "Can't have more than 4 levels in a list")
				tooDeep = true
			}
			it.Level = MaxListLevel
		}
	}
}

// splitCodeSpans rewrites list items whose inline code starts with
// "csharp" plus a line separator into real code blocks. Indented fences
// inside list items are sometimes written that way.
func splitCodeSpans(l *mdast.ListBlock, sep string) {
	marker := "csharp" + sep
	for i, item := range l.Items {
		var out []mdast.Block
		for _, b := range item {
			sb, ok := b.(*mdast.SpanBlock)
			if !ok {
				out = append(out, b)
				continue
			}
			out = append(out, splitSpanBlock(sb, marker)...)
		}
		l.Items[i] = out
	}
}

func splitSpanBlock(sb *mdast.SpanBlock, marker string) []mdast.Block {
	var out []mdast.Block
	var pending []mdast.Span
	flush := func() {
		if len(pending) > 0 {
			out = append(out, &mdast.SpanBlock{Range: sb.Range, Body: pending})
			pending = nil
		}
	}
	for _, s := range sb.Body {
		ic, ok := s.(*mdast.InlineCode)
		if !ok || !strings.HasPrefix(ic.Code, marker) {
			pending = append(pending, s)
			continue
		}
		flush()
		out = append(out, &mdast.CodeBlock{Range: ic.Range, Language: "csharp", Code: strings.TrimPrefix(ic.Code, marker)})
	}
	flush()
	return out
}

var (
	bulletGlyphs   = [MaxListLevel + 1]string{"·", "o", "·", "o"}
	orderedFormats = [MaxListLevel + 1]string{
		docmodel.FormatDecimal,
		docmodel.FormatLowerLetter,
		docmodel.FormatLowerRoman,
		docmodel.FormatLowerRoman,
	}
)

// listLevels builds the four numbering levels of one list.
func listLevels(ordered [MaxListLevel + 1]bool) []*docmodel.NumberingLevel {
	levels := make([]*docmodel.NumberingLevel, 0, MaxListLevel+1)
	for lvl := 0; lvl <= MaxListLevel; lvl++ {
		nl := &docmodel.NumberingLevel{
			Level:  lvl,
			Start:  1,
			Indent: docmodel.Indent{Left: itemIndent(lvl), Hanging: listHangIndent},
		}
		switch {
		case ordered[lvl]:
			nl.Format = orderedFormats[lvl]
			nl.Text = fmt.Sprintf("%%%d.", lvl+1)
		case bulletGlyphs[lvl] == "·":
			nl.Format = docmodel.FormatBullet
			nl.Text = "·"
			nl.Font = "Symbol"
			nl.EastAsiaFont = "Times new Roman"
			nl.ComplexFont = "Times new Roman"
		default:
			nl.Format = docmodel.FormatBullet
			nl.Text = "o"
			nl.Font = "Courier New"
			nl.ComplexFont = "Courier New"
		}
		levels = append(levels, nl)
	}
	return levels
}

func itemIndent(level int) int {
	return listIndent + listLevelIndent*level
}

func (c *Converter) list(l *mdast.ListBlock) []docmodel.Element {
	splitCodeSpans(l, c.opts.LineSeparator)
	items := Flatten(l, 0, c.rep)

	ordered := [MaxListLevel + 1]bool{true, true, true, true}
	for _, it := range items {
		ordered[it.Level] = it.IsOrdered
	}
	nid := c.ctx.Numbering.Add(listLevels(ordered))

	var out []docmodel.Element
	for _, it := range items {
		c.rep.SetParagraph(it.Block)
		indent := itemIndent(it.Level)
		switch b := it.Block.(type) {
		case *mdast.Paragraph:
			out = append(out, c.listParagraph(it, nid, b.Body))
		case *mdast.SpanBlock:
			out = append(out, c.listParagraph(it, nid, b.Body))
		case *mdast.QuotedBlock, *mdast.CodeBlock:
			for _, el := range c.block(b) {
				if p, ok := el.(*docmodel.Paragraph); ok {
					if p.Indent == nil {
						p.Indent = &docmodel.Indent{}
					}
					p.Indent.Left = indent
				}
				out = append(out, el)
			}
		case *mdast.TableBlock:
			for _, el := range c.block(b) {
				if t, ok := el.(*docmodel.Table); ok {
					t.Indent = indent
				}
				out = append(out, el)
			}
		case *mdast.CustomBlock:
			out = append(out, c.custom(b)...)
		default:
			c.rep.Report(spec.MD08, fmt.Sprintf("Unexpected item in list '%s'", mdast.BlockKind(b)))
		}
	}
	return out
}

func (c *Converter) listParagraph(it FlatItem, nid int, body []mdast.Span) *docmodel.Paragraph {
	p := docmodel.NewParagraph("", c.spans(body, false, true)...)
	if it.HasBullet {
		p.Style = StyleListParagraph
		p.Numbering = &docmodel.NumberingRef{Level: it.Level, ID: nid}
	} else {
		p.Indent = &docmodel.Indent{Left: itemIndent(it.Level)}
	}
	return p
}
