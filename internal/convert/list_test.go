package convert

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dgallion1/specdocx/internal/docmodel"
	"github.com/dgallion1/specdocx/internal/mdast"
	"github.com/dgallion1/specdocx/internal/spec"
)

func text(s string) *mdast.SpanBlock {
	return &mdast.SpanBlock{Body: []mdast.Span{&mdast.Literal{Text: s}}}
}

// nestedList builds a bulleted list nested depth levels deep, one item per
// level.
func nestedList(depth int) *mdast.ListBlock {
	l := &mdast.ListBlock{Items: [][]mdast.Block{{text("leaf")}}}
	for i := depth - 1; i > 0; i-- {
		l = &mdast.ListBlock{Items: [][]mdast.Block{{text("item"), l}}}
	}
	return l
}

func levels(items []FlatItem) []int {
	var out []int
	for _, it := range items {
		out = append(out, it.Level)
	}
	return out
}

func TestFlatten_Levels(t *testing.T) {
	l := &mdast.ListBlock{Items: [][]mdast.Block{
		{text("a"), &mdast.ListBlock{Items: [][]mdast.Block{{text("b")}}}},
		{text("c")},
	}}
	rep := spec.NewReporter(nil)
	items := Flatten(l, 0, rep)

	assert.Equal(t, []int{0, 1, 0}, levels(items))
	for i, it := range items {
		assert.True(t, it.HasBullet, "item %d should have a bullet", i)
	}
	assert.Equal(t, 0, rep.Errors())
}

func TestFlatten_OnlyFirstBlockHasBullet(t *testing.T) {
	l := &mdast.ListBlock{Ordered: true, Items: [][]mdast.Block{
		{text("a"), &mdast.CodeBlock{Code: "x"}, &mdast.Paragraph{}},
	}}
	items := Flatten(l, 0, spec.NewReporter(nil))
	require.Len(t, items, 3)
	assert.True(t, items[0].HasBullet)
	assert.False(t, items[1].HasBullet)
	assert.False(t, items[2].HasBullet)
	assert.True(t, items[2].IsOrdered)
}

func TestFlatten_TooDeepReportsOnce(t *testing.T) {
	rep := spec.NewReporter(nil)
	items := Flatten(nestedList(6), 0, rep)

	assert.Equal(t, []int{0, 1, 2, 3, 3, 3}, levels(items))
	codes := 0
	for _, d := range rep.Diagnostics().All() {
		assert.Equal(t, spec.MD13, d.Code)
		codes++
	}
	assert.Equal(t, 1, codes)
}

func TestFlatten_MixedMarkers(t *testing.T) {
	l := &mdast.ListBlock{Items: [][]mdast.Block{
		{text("a"), &mdast.ListBlock{Ordered: true, Items: [][]mdast.Block{{text("b")}}}},
		{text("c"), &mdast.ListBlock{Items: [][]mdast.Block{{text("d")}}}},
	}}
	rep := spec.NewReporter(nil)
	items := Flatten(l, 0, rep)

	assert.Len(t, items, 4)
	diags := rep.Diagnostics().All()
	require.Len(t, diags, 1)
	assert.Equal(t, spec.MD12, diags[0].Code)
}

func TestFlatten_RejectsHeadings(t *testing.T) {
	l := &mdast.ListBlock{Items: [][]mdast.Block{{text("a"), &mdast.Heading{Level: 2}}}}
	rep := spec.NewReporter(nil)
	items := Flatten(l, 0, rep)

	assert.Len(t, items, 1)
	diags := rep.Diagnostics().All()
	require.Len(t, diags, 1)
	assert.Equal(t, spec.MD14, diags[0].Code)
	assert.Equal(t, "nothing fancy allowed in lists - specifically not 'Heading'", diags[0].Message)
}

func TestSplitCodeSpans(t *testing.T) {
	l := &mdast.ListBlock{Items: [][]mdast.Block{{
		&mdast.SpanBlock{Body: []mdast.Span{
			&mdast.Literal{Text: "before"},
			&mdast.InlineCode{Code: "csharp\nint x;"},
			&mdast.Literal{Text: "after"},
		}},
	}}}
	splitCodeSpans(l, "\n")

	item := l.Items[0]
	require.Len(t, item, 3)
	cb, ok := item[1].(*mdast.CodeBlock)
	require.True(t, ok, "expected code block, got %s", mdast.BlockKind(item[1]))
	assert.Equal(t, "csharp", cb.Language)
	assert.Equal(t, "int x;", cb.Code)

	items := Flatten(l, 0, spec.NewReporter(nil))
	require.Len(t, items, 3)
	assert.True(t, items[0].HasBullet)
	assert.False(t, items[2].HasBullet)
}

func TestConvert_ListNumbering(t *testing.T) {
	h := convertMarkdown(t, "1. a\n2. b\n   - c\n")
	require.Len(t, h.out, 3)
	require.Len(t, h.ctx.Numbering.Abstracts, 1)
	nid := h.ctx.Numbering.Instances[0].ID

	lv := h.ctx.Numbering.Abstracts[0].Levels
	require.Len(t, lv, 4)
	assert.Equal(t, docmodel.FormatDecimal, lv[0].Format)
	assert.Equal(t, "%1.", lv[0].Text)
	assert.Equal(t, docmodel.FormatBullet, lv[1].Format)
	assert.Equal(t, "o", lv[1].Text)
	assert.Equal(t, "Courier New", lv[1].Font)
	assert.Equal(t, docmodel.FormatLowerRoman, lv[2].Format)
	assert.Equal(t, "%3.", lv[2].Text)
	assert.Equal(t, docmodel.Indent{Left: 900, Hanging: 360}, lv[1].Indent)

	first := paragraph(t, h.out[0])
	assert.Equal(t, StyleListParagraph, first.Style)
	assert.Equal(t, &docmodel.NumberingRef{Level: 0, ID: nid}, first.Numbering)
	nested := paragraph(t, h.out[2])
	assert.Equal(t, &docmodel.NumberingRef{Level: 1, ID: nid}, nested.Numbering)
	assert.Equal(t, "c", nested.Text())
}

func TestConvert_ListBulletGlyphs(t *testing.T) {
	h := convertMarkdown(t, "- a\n")
	lv := h.ctx.Numbering.Abstracts[0].Levels
	assert.Equal(t, "·", lv[0].Text)
	assert.Equal(t, "Symbol", lv[0].Font)
	assert.Equal(t, "Times new Roman", lv[0].EastAsiaFont)
	assert.Equal(t, docmodel.FormatLowerRoman, lv[3].Format)
	assert.Equal(t, "%4.", lv[3].Text)
}

func TestConvert_ListItemContinuation(t *testing.T) {
	h := convertMarkdown(t, "- a\n\n  more text\n\n  ```\n  code\n  ```\n")
	require.Len(t, h.out, 3)
	assert.Equal(t, &docmodel.Indent{Left: 540}, paragraph(t, h.out[1]).Indent)
	code := paragraph(t, h.out[2])
	assert.Equal(t, StyleCode, code.Style)
	assert.Equal(t, 540, code.Indent.Left)
}

func TestConvert_EndExampleBreak(t *testing.T) {
	h := convertMarkdown(t, "- *end example* more\n")
	p := paragraph(t, h.out[0])
	require.Len(t, p.Children, 3)
	assert.Equal(t, &docmodel.Run{Text: "end example", Italic: true}, p.Children[0])
	assert.IsType(t, &docmodel.Break{}, p.Children[1])

	h = convertMarkdown(t, "- text *end note*\n")
	p = paragraph(t, h.out[0])
	_, last := p.Children[len(p.Children)-1].(*docmodel.Break)
	assert.False(t, last, "span sequence must not end with a break")
}
