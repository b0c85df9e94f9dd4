package wordml

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"errors"
	"strings"
	"testing"

	"github.com/fumiama/go-docx"

	"github.com/dgallion1/specdocx/internal/docmodel"
	"github.com/dgallion1/specdocx/internal/spec"
)

func buildTemplate(t *testing.T, toc bool) []byte {
	t.Helper()
	doc := docx.New().WithDefaultTheme()
	if toc {
		p := doc.AddParagraph()
		p.Children = append(p.Children, &docx.Run{InstrText: ` TOC \o "1-2" \h `})
		doc.AddParagraph().Style("TOC1").AddText("Old entry")
	}
	doc.AddParagraph().AddText("Intro")
	doc.WithA4Page()

	var buf bytes.Buffer
	if _, err := doc.WriteTo(&buf); err != nil {
		t.Fatalf("write template: %v", err)
	}
	return buf.Bytes()
}

func loadTemplate(t *testing.T, data []byte) *Template {
	t.Helper()
	tpl, err := LoadTemplate(data)
	if err != nil {
		t.Fatalf("load template: %v", err)
	}
	return tpl
}

func readPart(t *testing.T, pkg []byte, name string) string {
	t.Helper()
	zr, err := zip.NewReader(bytes.NewReader(pkg), int64(len(pkg)))
	if err != nil {
		t.Fatalf("open package: %v", err)
	}
	for _, f := range zr.File {
		if f.Name == name {
			b, err := readZipFile(f)
			if err != nil {
				t.Fatalf("read %s: %v", name, err)
			}
			return string(b)
		}
	}
	return ""
}

func assemble(t *testing.T, tpl *Template, sections []*spec.SectionRef, els []docmodel.Element, n *docmodel.Numbering) []byte {
	t.Helper()
	var out bytes.Buffer
	if err := Assemble(tpl, sections, els, n, &out); err != nil {
		t.Fatalf("assemble: %v", err)
	}
	return out.Bytes()
}

func TestLoadTemplate_FindsTOC(t *testing.T) {
	tpl := loadTemplate(t, buildTemplate(t, true))
	if !tpl.HasTOC() {
		t.Fatal("expected a table of contents")
	}
	if tpl.tocStart != 0 || tpl.tocEnd != 1 {
		t.Errorf("expected toc range 0..1, got %d..%d", tpl.tocStart, tpl.tocEnd)
	}

	plain := loadTemplate(t, buildTemplate(t, false))
	if plain.HasTOC() {
		t.Error("expected no table of contents")
	}
}

func TestLoadTemplate_Invalid(t *testing.T) {
	if _, err := LoadTemplate([]byte("not a zip")); err == nil {
		t.Fatal("expected error for invalid template")
	}
}

func TestAssemble_RebuildsTOCAndAppendsBody(t *testing.T) {
	tpl := loadTemplate(t, buildTemplate(t, true))
	sections := []*spec.SectionRef{
		{Title: "1 Introduction", Level: 1, BookmarkName: "_Toc00001"},
		{Title: "1.1 Scope", Level: 2, BookmarkName: "_Toc00002"},
		{Title: "1.1.1 Detail", Level: 3, BookmarkName: "_Toc00003"},
	}
	els := []docmodel.Element{docmodel.NewParagraph("Heading1", docmodel.NewRun("Converted body"))}
	pkg := assemble(t, tpl, sections, els, nil)

	doc := readPart(t, pkg, documentPart)
	if strings.Contains(doc, "Old entry") {
		t.Error("expected old toc entries to be replaced")
	}
	for _, want := range []string{`w:anchor="_Toc00001"`, `w:anchor="_Toc00002"`, `w:val="TOC2"`, "1.1 Scope"} {
		if !strings.Contains(doc, want) {
			t.Errorf("expected document to contain %q", want)
		}
	}
	if strings.Contains(doc, "_Toc00003") {
		t.Error("expected level 3 sections to be left out of the toc")
	}

	body := strings.Index(doc, "Converted body")
	intro := strings.Index(doc, "Intro")
	sect := strings.Index(doc, "<w:sectPr")
	if body < 0 || intro < 0 || sect < 0 {
		t.Fatalf("missing content: body=%d intro=%d sectPr=%d", body, intro, sect)
	}
	if !(intro < body && body < sect) {
		t.Errorf("expected converted content between template body and section properties, got %d %d %d", intro, body, sect)
	}
}

func TestAssemble_TemplateIsSingleUse(t *testing.T) {
	tpl := loadTemplate(t, buildTemplate(t, false))
	assemble(t, tpl, nil, nil, nil)
	err := Assemble(tpl, nil, nil, nil, &bytes.Buffer{})
	if !errors.Is(err, ErrTemplateUsed) {
		t.Errorf("expected ErrTemplateUsed, got %v", err)
	}
}

func TestAssemble_CreatesNumberingPart(t *testing.T) {
	tpl := loadTemplate(t, buildTemplate(t, false))
	var n docmodel.Numbering
	n.Seed(tpl.MaxAbstractNumID, tpl.MaxNumID)
	id := n.Add([]*docmodel.NumberingLevel{{Level: 0, Format: docmodel.FormatDecimal, Text: "%1.", Indent: docmodel.Indent{Left: 540, Hanging: 360}}})
	els := []docmodel.Element{&docmodel.Paragraph{
		Style:     "ListParagraph",
		Numbering: &docmodel.NumberingRef{Level: 0, ID: id},
		Children:  []docmodel.Inline{docmodel.NewRun("item")},
	}}
	pkg := assemble(t, tpl, nil, els, &n)

	num := readPart(t, pkg, numberingPart)
	for _, want := range []string{`w:abstractNumId="1"`, `<w:num w:numId="1">`, `w:val="%1."`, `w:hanging="360"`} {
		if !strings.Contains(num, want) {
			t.Errorf("expected numbering part to contain %q, got %s", want, num)
		}
	}
	if rels := readPart(t, pkg, relsPart); !strings.Contains(rels, numberingRelType) {
		t.Error("expected numbering relationship")
	}
	if ct := readPart(t, pkg, contentTypesPart); !strings.Contains(ct, numberingContentType) {
		t.Error("expected numbering content type override")
	}
	if doc := readPart(t, pkg, documentPart); !strings.Contains(doc, `<w:numId w:val="1">`) {
		t.Error("expected paragraph numbering reference")
	}
}

func TestMergeNumbering_KeepsAbstractsFirst(t *testing.T) {
	existing := []byte(`<w:numbering xmlns:w="` + docx.XMLNS_W + `">` +
		`<w:abstractNum w:abstractNumId="3"></w:abstractNum>` +
		`<w:num w:numId="2"><w:abstractNumId w:val="3"/></w:num>` +
		`</w:numbering>`)

	maxAbstract, err := maxAttr(existing, "abstractNum", "abstractNumId")
	if err != nil || maxAbstract != 3 {
		t.Fatalf("expected max abstract 3, got %d (%v)", maxAbstract, err)
	}
	maxNum, err := maxAttr(existing, "num", "numId")
	if err != nil || maxNum != 2 {
		t.Fatalf("expected max num 2, got %d (%v)", maxNum, err)
	}

	var n docmodel.Numbering
	n.Seed(maxAbstract, maxNum)
	n.Add(nil)
	merged, err := mergeNumbering(existing, &n)
	if err != nil {
		t.Fatalf("merge: %v", err)
	}
	s := string(merged)

	newAbstract := strings.Index(s, `w:abstractNumId="4"`)
	oldNum := strings.Index(s, `<w:num w:numId="2">`)
	newNum := strings.Index(s, `<w:num w:numId="3">`)
	if newAbstract < 0 || oldNum < 0 || newNum < 0 {
		t.Fatalf("missing definitions in %s", s)
	}
	if !(newAbstract < oldNum && oldNum < newNum) {
		t.Errorf("expected abstract definitions before instances, got %s", s)
	}
	if !strings.HasSuffix(s, "</w:numbering>") {
		t.Errorf("expected closing element last, got %s", s)
	}
}

func TestMergeNumbering_Malformed(t *testing.T) {
	var n docmodel.Numbering
	n.Add(nil)
	if _, err := mergeNumbering([]byte("<w:numbering>"), &n); err == nil {
		t.Fatal("expected error for unterminated numbering part")
	}
}

func TestAssemble_ExternalLinks(t *testing.T) {
	tpl := loadTemplate(t, buildTemplate(t, false))
	link := func() *docmodel.Hyperlink {
		return &docmodel.Hyperlink{URL: "https://example.com/", Runs: []*docmodel.Run{docmodel.NewRun("site")}}
	}
	els := []docmodel.Element{
		docmodel.NewParagraph("", link()),
		docmodel.NewParagraph("", link()),
	}
	pkg := assemble(t, tpl, nil, els, nil)

	rels := readPart(t, pkg, relsPart)
	if c := strings.Count(rels, `Target="https://example.com/"`); c != 1 {
		t.Errorf("expected one relationship for a repeated url, got %d", c)
	}
	if !strings.Contains(rels, `TargetMode="External"`) {
		t.Error("expected external target mode")
	}
	doc := readPart(t, pkg, documentPart)
	if c := strings.Count(doc, "<w:hyperlink r:id="); c != 2 {
		t.Errorf("expected 2 hyperlinks with relationship ids, got %d", c)
	}
	if strings.Contains(doc, ">https://example.com/<") {
		t.Error("expected the scratch paragraph to be dropped")
	}
}

func TestAssemble_BookmarkMaxRoundTrip(t *testing.T) {
	tpl := loadTemplate(t, buildTemplate(t, false))
	els := []docmodel.Element{docmodel.NewParagraph("",
		&docmodel.BookmarkStart{Name: "_Toc00001", ID: 7},
		docmodel.NewRun("Title"),
		&docmodel.BookmarkEnd{ID: 7},
	)}
	pkg := assemble(t, tpl, nil, els, nil)

	again := loadTemplate(t, pkg)
	if again.MaxBookmarkID != 7 {
		t.Errorf("expected max bookmark id 7, got %d", again.MaxBookmarkID)
	}
}

func marshal(t *testing.T, v interface{}) string {
	t.Helper()
	b, err := xml.Marshal(v)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	return string(b)
}

func TestRender_Paragraph(t *testing.T) {
	zero := 0
	p := &docmodel.Paragraph{
		Style:         "Code",
		Indent:        &docmodel.Indent{Left: 0},
		Justification: docmodel.JustifyCenter,
		SpacingAfter:  &zero,
		Children: []docmodel.Inline{
			&docmodel.Run{Text: " a ", Bold: true, Color: "0000FF", VertAlign: docmodel.Subscript},
			&docmodel.Break{},
			&docmodel.Run{Text: "b", Underline: "dotted", UnderlineColor: "4BACC6"},
			&docmodel.Hyperlink{Anchor: "_Trm00001", Runs: []*docmodel.Run{docmodel.NewRun("t")}},
		},
	}
	got := marshal(t, (&renderer{}).paragraph(p))

	want := []string{
		`<w:pPr><w:pStyle w:val="Code"></w:pStyle><w:spacing w:after="0"></w:spacing><w:ind w:left="0"></w:ind><w:jc w:val="center"></w:jc></w:pPr>`,
		`<w:t xml:space="preserve"> a </w:t>`,
		`<w:b></w:b>`,
		`<w:color w:val="0000FF"></w:color>`,
		`<w:vertAlign w:val="subscript"></w:vertAlign>`,
		`<w:br></w:br>`,
		`<w:u w:val="dotted" w:color="4BACC6"></w:u>`,
		`<w:hyperlink w:anchor="_Trm00001">`,
	}
	for _, w := range want {
		if !strings.Contains(got, w) {
			t.Errorf("expected %q in %s", w, got)
		}
	}
}

func TestRender_Table(t *testing.T) {
	tbl := &docmodel.Table{
		Style:   "TableGrid",
		Indent:  360,
		Width:   8000,
		Borders: docmodel.BorderSingle,
		Rows: []*docmodel.Row{
			{Header: true, Cells: []*docmodel.Cell{{}, {}}},
			{Cells: []*docmodel.Cell{{VMerge: docmodel.MergeRestart}, {}}},
		},
	}
	got := marshal(t, (&renderer{}).table(tbl))

	want := []string{
		`<w:tblStyle w:val="TableGrid"></w:tblStyle>`,
		`<w:tblW w:w="8000" w:type="dxa"></w:tblW>`,
		`<w:tblInd w:w="360" w:type="dxa"></w:tblInd>`,
		`<w:insideV w:val="single"></w:insideV>`,
		`<w:trPr><w:tblHeader></w:tblHeader></w:trPr>`,
		`<w:vMerge w:val="restart"></w:vMerge>`,
	}
	for _, w := range want {
		if !strings.Contains(got, w) {
			t.Errorf("expected %q in %s", w, got)
		}
	}
	if c := strings.Count(got, "<w:gridCol>"); c != 2 {
		t.Errorf("expected 2 grid columns, got %d", c)
	}
	if c := strings.Count(got, "<w:p>"); c != 4 {
		t.Errorf("expected an empty paragraph in each of 4 cells, got %d", c)
	}
}
