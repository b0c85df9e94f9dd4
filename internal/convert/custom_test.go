package convert

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dgallion1/specdocx/internal/docmodel"
	"github.com/dgallion1/specdocx/internal/mdast"
	"github.com/dgallion1/specdocx/internal/spec"
)

func convertCustom(id, raw string) *harness {
	cb := &mdast.CustomBlock{ID: id, Raw: raw}
	return convertDoc(&mdast.Document{Name: "test.md", Blocks: []mdast.Block{cb}})
}

func cellText(c *docmodel.Cell) string {
	return c.Content[0].(*docmodel.Paragraph).Text()
}

func TestCustom_OperatorTables(t *testing.T) {
	tests := []struct {
		id   string
		size int
	}{
		{"multiplication", 8},
		{"division", 8},
		{"remainder", 8},
		{"addition", 7},
		{"subtraction", 7},
	}
	for _, tt := range tests {
		t.Run(tt.id, func(t *testing.T) {
			h := convertCustom(tt.id, "")
			require.Len(t, h.out, 3)
			tbl := h.out[1].(*docmodel.Table)
			assert.Equal(t, 900, tbl.Indent)
			assert.Equal(t, 8000, tbl.Width)
			require.Len(t, tbl.Rows, tt.size)
			for _, row := range tbl.Rows {
				assert.Len(t, row.Cells, tt.size)
			}

			corner := tbl.Rows[0].Cells[0].Content[0].(*docmodel.Paragraph)
			assert.Equal(t, StyleTableCellNormal, corner.Style)
			assert.Equal(t, "", corner.Text())

			last := tbl.Rows[tt.size-1].Cells[tt.size-1].Content[0].(*docmodel.Paragraph)
			assert.Equal(t, StyleCode, last.Style)
			assert.Equal(t, "NaN", last.Text())
			assert.Empty(t, h.codes())
		})
	}
}

func TestCustom_MultiplicationCells(t *testing.T) {
	tbl := convertCustom("multiplication", "").out[1].(*docmodel.Table)
	assert.Equal(t, "+x", cellText(tbl.Rows[1].Cells[0]))
	assert.Equal(t, "-z", cellText(tbl.Rows[1].Cells[2]))
	assert.Equal(t, "+∞", cellText(tbl.Rows[5].Cells[0]))
}

func TestCustom_TestBlock(t *testing.T) {
	tbl := convertCustom("test", "").out[1].(*docmodel.Table)
	require.Len(t, tbl.Rows, 1)
	cells := tbl.Rows[0].Cells
	assert.Equal(t, "Normal cell", cellText(cells[0]))
	assert.Equal(t, StyleTableCellNormal, cells[0].Content[0].(*docmodel.Paragraph).Style)
	code := cells[1].Content[0].(*docmodel.Paragraph)
	assert.Equal(t, StyleCode, code.Style)
	assert.Equal(t, &docmodel.Indent{Left: 0}, code.Indent)
	assert.Equal(t, docmodel.JustifyCenter, code.Justification)
}

func TestCustom_FormatStringPlaceholders(t *testing.T) {
	h := convertCustom("format_strings_2", "")
	require.Len(t, h.out, 1)
	assert.Equal(t, "FIXME: Replace with second format strings table", paragraph(t, h.out[0]).Text())
}

func TestCustom_UnknownID(t *testing.T) {
	h := convertCustom("nope", "")
	assert.Equal(t, []spec.Code{spec.MD29}, h.codes())
	assert.Equal(t, "Invalid custom block ID: nope", h.rep.Diagnostics().All()[0].Message)
	assert.Equal(t, "Custom block nope", paragraph(t, h.out[0]).Text())
}

const membersTable = `<!-- Custom Word conversion: function_members -->
<table>
<tr><th>Member</th><th>Description</th></tr>
<tr><td rowspan="2">Constructor</td><td>Creates a <code>List&lt;T&gt;</code></td></tr>
<tr><td>With <code>capacity</code> set</td></tr>
<tr><td>Method</td><td>Does work</td></tr>
</table>`

func TestCustom_FunctionMembers(t *testing.T) {
	h := convertCustom("function_members", membersTable)
	assert.Empty(t, h.codes())
	tbl := h.out[1].(*docmodel.Table)
	assert.Equal(t, 9000, tbl.Width)
	require.Len(t, tbl.Rows, 4)

	head := paragraph(t, tbl.Rows[0].Cells[0].Content[0])
	assert.True(t, head.Children[0].(*docmodel.Run).Bold)
	assert.Equal(t, docmodel.JustifyLeft, head.Justification)

	assert.Equal(t, docmodel.MergeRestart, tbl.Rows[1].Cells[0].VMerge)
	desc := paragraph(t, tbl.Rows[1].Cells[1].Content[0])
	require.Len(t, desc.Children, 2)
	assert.Equal(t, &docmodel.Run{Text: "List<T>", Style: StyleCodeEmbedded}, desc.Children[1])

	merged := tbl.Rows[2]
	require.Len(t, merged.Cells, 2)
	assert.Equal(t, docmodel.MergeContinue, merged.Cells[0].VMerge)
	assert.Equal(t, "With capacity set", cellText(merged.Cells[1]))

	plain := tbl.Rows[3]
	require.Len(t, plain.Cells, 2)
	assert.Equal(t, "", plain.Cells[0].VMerge)
}

func TestCustom_FunctionMembersInvalid(t *testing.T) {
	h := convertCustom("function_members", "<table><tr><td><b>x</b></td></tr></table>")
	assert.Equal(t, []spec.Code{spec.MD11}, h.codes())
	assert.Empty(t, h.out)
}
