package convert

import (
	"github.com/dgallion1/specdocx/internal/docmodel"
	"github.com/dgallion1/specdocx/internal/mdast"
	"github.com/dgallion1/specdocx/internal/parser"
	"github.com/dgallion1/specdocx/internal/spec"
)

// Widths of the generated tables in dxa.
const (
	operatorTableWidth = 8000
	membersTableWidth  = 9000
)

// custom renders a "<!-- Custom Word conversion: id -->" block.
func (c *Converter) custom(cb *mdast.CustomBlock) []docmodel.Element {
	switch cb.ID {
	case "multiplication":
		return wrapTable(operatorTable(multiplicationRows))
	case "division":
		return wrapTable(operatorTable(divisionRows))
	case "remainder":
		return wrapTable(operatorTable(remainderRows))
	case "addition":
		return wrapTable(operatorTable(additionRows))
	case "subtraction":
		return wrapTable(operatorTable(subtractionRows))
	case "function_members":
		return c.functionMembers(cb.Raw)
	case "format_strings_1":
		return placeholder("FIXME: Replace with first format strings table")
	case "format_strings_2":
		return placeholder("FIXME: Replace with second format strings table")
	case "test":
		t := newTable(customTableInset, operatorTableWidth)
		t.Rows = append(t.Rows, &docmodel.Row{Cells: []*docmodel.Cell{normalCell("Normal cell"), codeCell("Code cell")}})
		return wrapTable(t)
	}
	c.rep.Report(spec.MD29, "Invalid custom block ID: "+cb.ID)
	return placeholder("Custom block " + cb.ID)
}

func placeholder(text string) []docmodel.Element {
	return []docmodel.Element{docmodel.NewParagraph("", docmodel.NewRun(text))}
}

// Operand and result cells of the IEEE 754 operator tables. An empty
// string is the blank top-left corner cell.
const (
	blank   = ""
	opX     = "x"
	opY     = "y"
	opZ     = "z"
	plusX   = "+x"
	plusY   = "+y"
	plusZ   = "+z"
	minusX  = "-x"
	minusY  = "-y"
	minusZ  = "-z"
	plusInf = "+∞"
	minInf  = "-∞"
	plus0   = "+0"
	minus0  = "-0"
	nan     = "NaN"
)

var multiplicationRows = [][]string{
	{blank, plusY, minusY, plus0, minus0, plusInf, minInf, nan},
	{plusX, plusZ, minusZ, plus0, minus0, plusInf, minInf, nan},
	{minusX, minusZ, plusZ, minus0, plus0, minInf, plusInf, nan},
	{plus0, plus0, minus0, plus0, minus0, nan, nan, nan},
	{minus0, minus0, plus0, minus0, plus0, nan, nan, nan},
	{plusInf, plusInf, minInf, nan, nan, plusInf, minInf, nan},
	{minInf, minInf, plusInf, nan, nan, minInf, plusInf, nan},
	{nan, nan, nan, nan, nan, nan, nan, nan},
}

var divisionRows = [][]string{
	{blank, plusY, minusY, plus0, minus0, plusInf, minInf, nan},
	{plusX, plusZ, minusZ, plusInf, minInf, plus0, minus0, nan},
	{minusX, minusZ, plusZ, minInf, plusInf, minus0, plus0, nan},
	{plus0, plus0, minus0, nan, nan, plus0, minus0, nan},
	{minus0, minus0, plus0, nan, nan, minus0, plus0, nan},
	{plusInf, plusInf, minInf, plusInf, minInf, nan, nan, nan},
	{minInf, minInf, plusInf, minInf, plusInf, nan, nan, nan},
	{nan, nan, nan, nan, nan, nan, nan, nan},
}

var remainderRows = [][]string{
	{blank, plusY, minusY, plus0, minus0, plusInf, minInf, nan},
	{plusX, plusZ, plusZ, nan, nan, plusX, plusX, nan},
	{minusX, minusZ, minusZ, nan, nan, minusX, minusX, nan},
	{plus0, plus0, plus0, nan, nan, plus0, plus0, nan},
	{minus0, minus0, minus0, nan, nan, minus0, minus0, nan},
	{plusInf, nan, nan, nan, nan, nan, nan, nan},
	{minInf, nan, nan, nan, nan, nan, nan, nan},
	{nan, nan, nan, nan, nan, nan, nan, nan},
}

var additionRows = [][]string{
	{blank, opY, plus0, minus0, plusInf, minInf, nan},
	{opX, opZ, opX, opX, plusInf, minInf, nan},
	{plus0, opY, plus0, plus0, plusInf, minInf, nan},
	{minus0, opY, plus0, minus0, plusInf, minInf, nan},
	{plusInf, plusInf, plusInf, plusInf, plusInf, nan, nan},
	{minInf, minInf, minInf, minInf, nan, minInf, nan},
	{nan, nan, nan, nan, nan, nan, nan},
}

var subtractionRows = [][]string{
	{blank, opY, plus0, minus0, plusInf, minInf, nan},
	{opX, opZ, opX, opX, minInf, plusInf, nan},
	{plus0, minusY, plus0, plus0, minInf, plusInf, nan},
	{minus0, minusY, minus0, plus0, minInf, plusInf, nan},
	{plusInf, plusInf, plusInf, plusInf, nan, plusInf, nan},
	{minInf, minInf, minInf, minInf, minInf, nan, nan},
	{nan, nan, nan, nan, nan, nan, nan},
}

func operatorTable(rows [][]string) *docmodel.Table {
	t := newTable(customTableInset, operatorTableWidth)
	for _, cells := range rows {
		row := &docmodel.Row{}
		for _, text := range cells {
			if text == blank {
				row.Cells = append(row.Cells, normalCell(""))
				continue
			}
			row.Cells = append(row.Cells, codeCell(text))
		}
		t.Rows = append(t.Rows, row)
	}
	return t
}

func normalCell(text string) *docmodel.Cell {
	p := docmodel.NewParagraph(StyleTableCellNormal, docmodel.NewRun(text))
	p.Justification = docmodel.JustifyCenter
	return &docmodel.Cell{Content: []docmodel.Element{p}}
}

// codeCell uses the Code style; the zero left indent keeps the text
// centred.
func codeCell(text string) *docmodel.Cell {
	p := docmodel.NewParagraph(StyleCode, docmodel.NewRun(text))
	p.Indent = &docmodel.Indent{Left: 0}
	p.Justification = docmodel.JustifyCenter
	return &docmodel.Cell{Content: []docmodel.Element{p}}
}

// functionMembers renders the HTML members table that follows the marker.
// A rowspan on the first cell of a row starts a vertical merge; the rows it
// covers get a continuation cell in front.
func (c *Converter) functionMembers(raw string) []docmodel.Element {
	rows, err := parser.ParseHTMLTable(raw)
	if err != nil {
		c.rep.Report(spec.MD11, "Invalid function members table: "+err.Error())
		return nil
	}

	t := newTable(tableIndent, membersTableWidth)
	left := 0
	for _, hr := range rows {
		row := &docmodel.Row{}
		for _, hc := range hr.Cells {
			row.Cells = append(row.Cells, memberCell(hc))
		}
		switch {
		case hr.RowSpan > 0 && len(row.Cells) > 0:
			row.Cells[0].VMerge = docmodel.MergeRestart
			left = hr.RowSpan - 1
		case left > 0:
			cont := &docmodel.Cell{
				VMerge:  docmodel.MergeContinue,
				Content: []docmodel.Element{docmodel.NewParagraph(StyleTableCellNormal)},
			}
			row.Cells = append([]*docmodel.Cell{cont}, row.Cells...)
			left--
		}
		t.Rows = append(t.Rows, row)
	}
	return wrapTable(t)
}

func memberCell(hc parser.HTMLCell) *docmodel.Cell {
	p := docmodel.NewParagraph(StyleTableCellNormal)
	p.Justification = docmodel.JustifyLeft
	for _, part := range hc.Parts {
		r := docmodel.NewRun(part.Text)
		switch {
		case hc.Header:
			r.Bold = true
		case part.Code:
			r.Style = StyleCodeEmbedded
		}
		p.Children = append(p.Children, r)
	}
	return &docmodel.Cell{Content: []docmodel.Element{p}}
}
