package wordml

import (
	"encoding/xml"
	"strconv"

	"github.com/fumiama/go-docx"

	"github.com/dgallion1/specdocx/internal/docmodel"
)

// Container elements are declared here so children are written in schema
// order; leaf elements come from go-docx.

type paragraphXML struct {
	XMLName  xml.Name       `xml:"w:p"`
	Props    *paraPropsXML  `xml:"w:pPr,omitempty"`
	Children []interface{}
}

type paraPropsXML struct {
	Style   *docx.Style         `xml:"w:pStyle,omitempty"`
	NumPr   *numPropsXML        `xml:"w:numPr,omitempty"`
	Spacing *spacingXML         `xml:"w:spacing,omitempty"`
	Ind     *indXML             `xml:"w:ind,omitempty"`
	Jc      *docx.Justification `xml:"w:jc,omitempty"`
}

type numPropsXML struct {
	Ilvl  docx.Ilevel `xml:"w:ilvl"`
	NumID docx.NumID  `xml:"w:numId"`
}

type spacingXML struct {
	After int `xml:"w:after,attr"`
}

// indXML always writes w:left so a zero indent overrides the style.
type indXML struct {
	Left    int `xml:"w:left,attr"`
	Hanging int `xml:"w:hanging,attr,omitempty"`
}

type runXML struct {
	XMLName  xml.Name     `xml:"w:r"`
	Props    *runPropsXML `xml:"w:rPr,omitempty"`
	Children []interface{}
}

type runPropsXML struct {
	Style     *docx.RunStyle  `xml:"w:rStyle,omitempty"`
	Bold      *docx.Bold      `xml:"w:b,omitempty"`
	Italic    *docx.Italic    `xml:"w:i,omitempty"`
	Color     *docx.Color     `xml:"w:color,omitempty"`
	Underline *underlineXML   `xml:"w:u,omitempty"`
	VertAlign *docx.VertAlign `xml:"w:vertAlign,omitempty"`
}

type underlineXML struct {
	Val   string `xml:"w:val,attr"`
	Color string `xml:"w:color,attr,omitempty"`
}

type bookmarkStartXML struct {
	XMLName xml.Name `xml:"w:bookmarkStart"`
	ID      int      `xml:"w:id,attr"`
	Name    string   `xml:"w:name,attr"`
}

type bookmarkEndXML struct {
	XMLName xml.Name `xml:"w:bookmarkEnd"`
	ID      int      `xml:"w:id,attr"`
}

type hyperlinkXML struct {
	XMLName xml.Name `xml:"w:hyperlink"`
	RID     string   `xml:"r:id,attr,omitempty"`
	Anchor  string   `xml:"w:anchor,attr,omitempty"`
	Tooltip string   `xml:"w:tooltip,attr,omitempty"`
	Runs    []*runXML
}

type tableXML struct {
	XMLName xml.Name       `xml:"w:tbl"`
	Props   tablePropsXML  `xml:"w:tblPr"`
	Grid    tableGridXML   `xml:"w:tblGrid"`
	Rows    []*tableRowXML `xml:"w:tr"`
}

type tablePropsXML struct {
	Style   *valXML     `xml:"w:tblStyle,omitempty"`
	Width   *widthXML   `xml:"w:tblW,omitempty"`
	Ind     *widthXML   `xml:"w:tblInd,omitempty"`
	Borders *bordersXML `xml:"w:tblBorders,omitempty"`
}

type valXML struct {
	Val string `xml:"w:val,attr"`
}

type widthXML struct {
	W    int    `xml:"w:w,attr"`
	Type string `xml:"w:type,attr"`
}

type bordersXML struct {
	Top     valXML `xml:"w:top"`
	Left    valXML `xml:"w:left"`
	Bottom  valXML `xml:"w:bottom"`
	Right   valXML `xml:"w:right"`
	InsideH valXML `xml:"w:insideH"`
	InsideV valXML `xml:"w:insideV"`
}

type tableGridXML struct {
	Cols []struct{} `xml:"w:gridCol"`
}

type tableRowXML struct {
	Props *rowPropsXML    `xml:"w:trPr,omitempty"`
	Cells []*tableCellXML `xml:"w:tc"`
}

type rowPropsXML struct {
	Header *struct{} `xml:"w:tblHeader"`
}

type tableCellXML struct {
	Props   *cellPropsXML `xml:"w:tcPr,omitempty"`
	Content []interface{}
}

type cellPropsXML struct {
	VMerge *valXML `xml:"w:vMerge"`
}

// linker resolves an external URL to a relationship id.
type linker func(url string) string

type renderer struct {
	link linker
}

func (r *renderer) elements(els []docmodel.Element) []interface{} {
	out := make([]interface{}, 0, len(els))
	for _, el := range els {
		switch n := el.(type) {
		case *docmodel.Paragraph:
			out = append(out, r.paragraph(n))
		case *docmodel.Table:
			out = append(out, r.table(n))
		}
	}
	return out
}

func (r *renderer) paragraph(p *docmodel.Paragraph) *paragraphXML {
	px := &paragraphXML{}
	props := &paraPropsXML{}
	empty := true
	if p.Style != "" {
		props.Style = &docx.Style{Val: p.Style}
		empty = false
	}
	if p.Numbering != nil {
		props.NumPr = &numPropsXML{
			Ilvl:  docx.Ilevel{Val: strconv.Itoa(p.Numbering.Level)},
			NumID: docx.NumID{Val: strconv.Itoa(p.Numbering.ID)},
		}
		empty = false
	}
	if p.SpacingAfter != nil {
		props.Spacing = &spacingXML{After: *p.SpacingAfter}
		empty = false
	}
	if p.Indent != nil {
		props.Ind = &indXML{Left: p.Indent.Left, Hanging: p.Indent.Hanging}
		empty = false
	}
	if p.Justification != "" {
		props.Jc = &docx.Justification{Val: p.Justification}
		empty = false
	}
	if !empty {
		px.Props = props
	}

	for _, in := range p.Children {
		switch n := in.(type) {
		case *docmodel.Run:
			px.Children = append(px.Children, run(n))
		case *docmodel.Break:
			px.Children = append(px.Children, &runXML{Children: []interface{}{&docx.BarterRabbet{}}})
		case *docmodel.BookmarkStart:
			px.Children = append(px.Children, &bookmarkStartXML{ID: n.ID, Name: n.Name})
		case *docmodel.BookmarkEnd:
			px.Children = append(px.Children, &bookmarkEndXML{ID: n.ID})
		case *docmodel.Hyperlink:
			px.Children = append(px.Children, r.hyperlink(n))
		}
	}
	return px
}

func (r *renderer) hyperlink(h *docmodel.Hyperlink) *hyperlinkXML {
	hx := &hyperlinkXML{Anchor: h.Anchor, Tooltip: h.Tooltip}
	if h.Anchor == "" && h.URL != "" && r.link != nil {
		hx.RID = r.link(h.URL)
	}
	for _, rn := range h.Runs {
		hx.Runs = append(hx.Runs, run(rn))
	}
	return hx
}

func run(rn *docmodel.Run) *runXML {
	rx := &runXML{}
	props := &runPropsXML{}
	empty := true
	if rn.Style != "" {
		props.Style = &docx.RunStyle{Val: rn.Style}
		empty = false
	}
	if rn.Bold {
		props.Bold = &docx.Bold{}
		empty = false
	}
	if rn.Italic {
		props.Italic = &docx.Italic{}
		empty = false
	}
	if rn.Color != "" {
		props.Color = &docx.Color{Val: rn.Color}
		empty = false
	}
	if rn.Underline != "" {
		props.Underline = &underlineXML{Val: rn.Underline, Color: rn.UnderlineColor}
		empty = false
	}
	if rn.VertAlign != "" {
		props.VertAlign = &docx.VertAlign{Val: rn.VertAlign}
		empty = false
	}
	if !empty {
		rx.Props = props
	}
	rx.Children = []interface{}{&docx.Text{XMLSpace: "preserve", Text: rn.Text}}
	return rx
}

func (r *renderer) table(t *docmodel.Table) *tableXML {
	tx := &tableXML{}
	if t.Style != "" {
		tx.Props.Style = &valXML{Val: t.Style}
	}
	if t.Width > 0 {
		tx.Props.Width = &widthXML{W: t.Width, Type: "dxa"}
	} else {
		tx.Props.Width = &widthXML{W: 0, Type: "auto"}
	}
	if t.Indent > 0 {
		tx.Props.Ind = &widthXML{W: t.Indent, Type: "dxa"}
	}
	if t.Borders != "" {
		b := valXML{Val: t.Borders}
		tx.Props.Borders = &bordersXML{Top: b, Left: b, Bottom: b, Right: b, InsideH: b, InsideV: b}
	}

	cols := 0
	for _, row := range t.Rows {
		cols = max(cols, len(row.Cells))
		rx := &tableRowXML{}
		if row.Header {
			rx.Props = &rowPropsXML{Header: &struct{}{}}
		}
		for _, cell := range row.Cells {
			rx.Cells = append(rx.Cells, r.cell(cell))
		}
		tx.Rows = append(tx.Rows, rx)
	}
	tx.Grid.Cols = make([]struct{}, cols)
	return tx
}

// cell renders a table cell; a cell must end with a paragraph.
func (r *renderer) cell(c *docmodel.Cell) *tableCellXML {
	cx := &tableCellXML{Content: r.elements(c.Content)}
	if c.VMerge != "" {
		cx.Props = &cellPropsXML{VMerge: &valXML{Val: c.VMerge}}
	}
	if n := len(cx.Content); n == 0 {
		cx.Content = append(cx.Content, &paragraphXML{})
	} else if _, ok := cx.Content[n-1].(*tableXML); ok {
		cx.Content = append(cx.Content, &paragraphXML{})
	}
	return cx
}
