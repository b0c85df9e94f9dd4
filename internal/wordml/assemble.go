package wordml

import (
	"archive/zip"
	"bytes"
	"errors"
	"fmt"
	"io"
	"regexp"
	"strconv"

	"github.com/fumiama/go-docx"

	"github.com/dgallion1/specdocx/internal/docmodel"
	"github.com/dgallion1/specdocx/internal/spec"
)

// TOCMaxLevel is the deepest section level listed in the table of contents.
const TOCMaxLevel = 2

const (
	relsPart         = "word/_rels/document.xml.rels"
	contentTypesPart = "[Content_Types].xml"
)

// ErrTemplateUsed is returned when a template is assembled twice.
var ErrTemplateUsed = errors.New("template already assembled")

// Assemble writes the template to w with the converted elements appended to
// its body, the table of contents rebuilt from sections and the list
// definitions in numbering merged into the numbering part.
func Assemble(tpl *Template, sections []*spec.SectionRef, elements []docmodel.Element, numbering *docmodel.Numbering, w io.Writer) error {
	if tpl.doc == nil {
		return ErrTemplateUsed
	}
	doc := tpl.doc
	tpl.doc = nil
	body := doc.Document.Body.Items

	// AddLink registers the hyperlink relationship on the package; the
	// scratch paragraph it is attached to is discarded with the old body.
	var scratch *docx.Paragraph
	rels := make(map[string]string)
	r := &renderer{link: func(url string) string {
		if id, ok := rels[url]; ok {
			return id
		}
		if scratch == nil {
			scratch = doc.AddParagraph()
		}
		id := scratch.AddLink(url, url).ID
		rels[url] = id
		return id
	}}

	items := make([]interface{}, 0, len(body)+len(elements)+len(sections))
	if tpl.HasTOC() {
		items = append(items, body[:tpl.tocStart]...)
		items = append(items, r.elements(tocParagraphs(sections))...)
		items = append(items, body[tpl.tocEnd+1:]...)
	} else {
		items = append(items, body...)
	}

	var tail []interface{}
	if n := len(items); n > 0 {
		if _, ok := items[n-1].(*docx.SectPr); ok {
			tail = []interface{}{items[n-1]}
			items = items[:n-1]
		}
	}
	items = append(items, r.elements(elements)...)
	items = append(items, tail...)
	doc.Document.Body.Items = items

	var buf bytes.Buffer
	if _, err := doc.WriteTo(&buf); err != nil {
		return fmt.Errorf("write docx: %w", err)
	}

	out := buf.Bytes()
	if numbering != nil && !numbering.Empty() {
		var err error
		out, err = injectNumbering(out, tpl.numbering, numbering)
		if err != nil {
			return err
		}
	}
	if _, err := w.Write(out); err != nil {
		return fmt.Errorf("write output: %w", err)
	}
	return nil
}

// tocParagraphs lists the sections down to TOCMaxLevel, each linked to its
// bookmark.
func tocParagraphs(sections []*spec.SectionRef) []docmodel.Element {
	var out []docmodel.Element
	for _, s := range sections {
		if s.Level > TOCMaxLevel {
			continue
		}
		out = append(out, docmodel.NewParagraph("TOC"+strconv.Itoa(s.Level), &docmodel.Hyperlink{
			Anchor: s.BookmarkName,
			Runs:   []*docmodel.Run{docmodel.NewRun(s.Title)},
		}))
	}
	return out
}

// injectNumbering rewrites the written package with the list definitions
// merged into word/numbering.xml. When the template had no numbering part
// one is created along with its relationship and content type override.
func injectNumbering(pkg, existing []byte, n *docmodel.Numbering) ([]byte, error) {
	var part []byte
	var err error
	if existing != nil {
		part, err = mergeNumbering(existing, n)
	} else {
		part, err = newNumberingPart(n)
	}
	if err != nil {
		return nil, err
	}

	zr, err := zip.NewReader(bytes.NewReader(pkg), int64(len(pkg)))
	if err != nil {
		return nil, fmt.Errorf("reopen docx: %w", err)
	}
	var out bytes.Buffer
	zw := zip.NewWriter(&out)
	written := false
	for _, f := range zr.File {
		data, err := readZipFile(f)
		if err != nil {
			return nil, err
		}
		switch f.Name {
		case numberingPart:
			data = part
			written = true
		case relsPart:
			if existing == nil {
				data = addNumberingRelationship(data)
			}
		case contentTypesPart:
			data = addNumberingOverride(data)
		}
		if err := writeZipFile(zw, f.Name, data); err != nil {
			return nil, err
		}
	}
	if !written {
		if err := writeZipFile(zw, numberingPart, part); err != nil {
			return nil, err
		}
	}
	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("close docx: %w", err)
	}
	return out.Bytes(), nil
}

func writeZipFile(zw *zip.Writer, name string, data []byte) error {
	fw, err := zw.Create(name)
	if err != nil {
		return fmt.Errorf("create %s: %w", name, err)
	}
	if _, err := fw.Write(data); err != nil {
		return fmt.Errorf("write %s: %w", name, err)
	}
	return nil
}

var relIDRe = regexp.MustCompile(`Id="rId(\d+)"`)

func addNumberingRelationship(rels []byte) []byte {
	if bytes.Contains(rels, []byte(numberingRelType)) {
		return rels
	}
	next := 1
	for _, m := range relIDRe.FindAllSubmatch(rels, -1) {
		if n, err := strconv.Atoi(string(m[1])); err == nil && n >= next {
			next = n + 1
		}
	}
	rel := fmt.Sprintf(`<Relationship Id="rId%d" Type="%s" Target="numbering.xml"/>`, next, numberingRelType)
	return insertBefore(rels, "</Relationships>", rel)
}

func addNumberingOverride(types []byte) []byte {
	if bytes.Contains(types, []byte(`PartName="/`+numberingPart+`"`)) {
		return types
	}
	override := fmt.Sprintf(`<Override PartName="/%s" ContentType="%s"/>`, numberingPart, numberingContentType)
	return insertBefore(types, "</Types>", override)
}

func insertBefore(data []byte, end, s string) []byte {
	i := bytes.LastIndex(data, []byte(end))
	if i < 0 {
		return data
	}
	out := make([]byte, 0, len(data)+len(s))
	out = append(out, data[:i]...)
	out = append(out, s...)
	return append(out, data[i:]...)
}
