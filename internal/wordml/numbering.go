package wordml

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"regexp"

	"github.com/fumiama/go-docx"

	"github.com/dgallion1/specdocx/internal/docmodel"
)

const (
	numberingPart        = "word/numbering.xml"
	numberingContentType = "application/vnd.openxmlformats-officedocument.wordprocessingml.numbering+xml"
	numberingRelType     = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/numbering"
)

type abstractNumXML struct {
	XMLName xml.Name   `xml:"w:abstractNum"`
	ID      int        `xml:"w:abstractNumId,attr"`
	Multi   valXML     `xml:"w:multiLevelType"`
	Levels  []levelXML `xml:"w:lvl"`
}

type levelXML struct {
	Ilvl    int            `xml:"w:ilvl,attr"`
	Start   intValXML      `xml:"w:start"`
	NumFmt  valXML         `xml:"w:numFmt"`
	LvlText valXML         `xml:"w:lvlText"`
	LvlJc   valXML         `xml:"w:lvlJc"`
	PPr     levelParaXML   `xml:"w:pPr"`
	RPr     *levelRunXML   `xml:"w:rPr,omitempty"`
}

type intValXML struct {
	Val int `xml:"w:val,attr"`
}

type levelParaXML struct {
	Ind indXML `xml:"w:ind"`
}

type levelRunXML struct {
	Fonts *docx.RunFonts `xml:"w:rFonts"`
}

type numXML struct {
	XMLName    xml.Name  `xml:"w:num"`
	ID         int       `xml:"w:numId,attr"`
	AbstractID intValXML `xml:"w:abstractNumId"`
}

type numberingXML struct {
	XMLName   xml.Name `xml:"w:numbering"`
	XMLNSW    string   `xml:"xmlns:w,attr"`
	Abstracts []*abstractNumXML
	Nums      []*numXML
}

func abstractXML(a *docmodel.AbstractNumbering) *abstractNumXML {
	ax := &abstractNumXML{ID: a.ID, Multi: valXML{Val: "hybridMultilevel"}}
	for _, lv := range a.Levels {
		lx := levelXML{
			Ilvl:    lv.Level,
			Start:   intValXML{Val: max(lv.Start, 1)},
			NumFmt:  valXML{Val: lv.Format},
			LvlText: valXML{Val: lv.Text},
			LvlJc:   valXML{Val: "left"},
			PPr:     levelParaXML{Ind: indXML{Left: lv.Indent.Left, Hanging: lv.Indent.Hanging}},
		}
		if lv.Font != "" {
			lx.RPr = &levelRunXML{Fonts: &docx.RunFonts{
				ASCII:    lv.Font,
				HAnsi:    lv.Font,
				EastAsia: lv.EastAsiaFont,
				Hint:     "default",
			}}
		}
		ax.Levels = append(ax.Levels, lx)
	}
	return ax
}

// numberingParts marshals the abstract definitions and instances separately,
// since a merge has to place them apart.
func numberingParts(n *docmodel.Numbering) (abstracts, nums []byte, err error) {
	var ab, nb bytes.Buffer
	for _, a := range n.Abstracts {
		b, err := xml.Marshal(abstractXML(a))
		if err != nil {
			return nil, nil, fmt.Errorf("marshal abstract numbering %d: %w", a.ID, err)
		}
		ab.Write(b)
	}
	for _, inst := range n.Instances {
		b, err := xml.Marshal(&numXML{ID: inst.ID, AbstractID: intValXML{Val: inst.AbstractID}})
		if err != nil {
			return nil, nil, fmt.Errorf("marshal numbering %d: %w", inst.ID, err)
		}
		nb.Write(b)
	}
	return ab.Bytes(), nb.Bytes(), nil
}

// newNumberingPart builds a standalone numbering.xml.
func newNumberingPart(n *docmodel.Numbering) ([]byte, error) {
	part := &numberingXML{XMLNSW: docx.XMLNS_W}
	for _, a := range n.Abstracts {
		part.Abstracts = append(part.Abstracts, abstractXML(a))
	}
	for _, inst := range n.Instances {
		part.Nums = append(part.Nums, &numXML{ID: inst.ID, AbstractID: intValXML{Val: inst.AbstractID}})
	}
	b, err := xml.Marshal(part)
	if err != nil {
		return nil, fmt.Errorf("marshal numbering part: %w", err)
	}
	return append([]byte(xml.Header), b...), nil
}

var (
	firstNumRe   = regexp.MustCompile(`<w:num[ >]`)
	numberingEnd = []byte("</w:numbering>")
)

// mergeNumbering inserts the new definitions into an existing numbering
// part. All abstractNum elements must precede the first num element.
func mergeNumbering(existing []byte, n *docmodel.Numbering) ([]byte, error) {
	abstracts, nums, err := numberingParts(n)
	if err != nil {
		return nil, err
	}
	end := bytes.LastIndex(existing, numberingEnd)
	if end < 0 {
		return nil, fmt.Errorf("%s has no closing numbering element", numberingPart)
	}
	at := end
	if loc := firstNumRe.FindIndex(existing); loc != nil {
		at = loc[0]
	}

	var out bytes.Buffer
	out.Grow(len(existing) + len(abstracts) + len(nums))
	out.Write(existing[:at])
	out.Write(abstracts)
	out.Write(existing[at:end])
	out.Write(nums)
	out.Write(existing[end:])
	return out.Bytes(), nil
}
