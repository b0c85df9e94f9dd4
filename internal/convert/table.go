package convert

import (
	"github.com/dgallion1/specdocx/internal/docmodel"
	"github.com/dgallion1/specdocx/internal/mdast"
	"github.com/dgallion1/specdocx/internal/spec"
)

func (c *Converter) table(t *mdast.TableBlock) []docmodel.Element {
	header := t.Header
	if header == nil {
		c.rep.Report(spec.MD10, "Github requires all tables to have header rows")
	} else if allEmpty(header) {
		header = nil
	}

	tbl := newTable(tableIndent, 0)
	if header != nil {
		tbl.Rows = append(tbl.Rows, c.tableRow(header, t.Alignments, true))
	}
	for _, row := range t.Rows {
		tbl.Rows = append(tbl.Rows, c.tableRow(row, t.Alignments, false))
	}
	return wrapTable(tbl)
}

func allEmpty(cells []mdast.TableCell) bool {
	for _, cell := range cells {
		if len(cell.Blocks) > 0 {
			return false
		}
	}
	return true
}

func (c *Converter) tableRow(cells []mdast.TableCell, aligns []mdast.Alignment, header bool) *docmodel.Row {
	row := &docmodel.Row{Header: header}
	n := min(len(aligns), len(cells))
	for i := 0; i < n; i++ {
		cell := &docmodel.Cell{}
		for _, el := range c.blocks(cells[i].Blocks) {
			if p, ok := el.(*docmodel.Paragraph); ok {
				p.Style = StyleTableCellNormal
				p.Justification = justification(aligns[i])
				if header {
					for _, in := range p.Children {
						if r, ok := in.(*docmodel.Run); ok {
							r.Bold = true
						}
					}
				}
			}
			cell.Content = append(cell.Content, el)
		}
		if len(cell.Content) == 0 {
			zero := 0
			cell.Content = []docmodel.Element{&docmodel.Paragraph{
				SpacingAfter: &zero,
				Children:     []docmodel.Inline{docmodel.NewRun("")},
			}}
		}
		row.Cells = append(row.Cells, cell)
	}
	return row
}

func justification(a mdast.Alignment) string {
	switch a {
	case mdast.AlignCenter:
		return docmodel.JustifyCenter
	case mdast.AlignRight:
		return docmodel.JustifyRight
	}
	return ""
}

func newTable(indent, width int) *docmodel.Table {
	return &docmodel.Table{
		Style:   StyleTableGrid,
		Indent:  indent,
		Width:   width,
		Borders: docmodel.BorderSingle,
	}
}

// wrapTable surrounds a table with the spacing paragraphs the template
// styles expect.
func wrapTable(t *docmodel.Table) []docmodel.Element {
	return []docmodel.Element{
		docmodel.NewParagraph(StyleTableLineBefore, docmodel.NewRun("")),
		t,
		docmodel.NewParagraph(StyleTableLineAfter, docmodel.NewRun("")),
	}
}
