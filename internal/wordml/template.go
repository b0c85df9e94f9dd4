// Package wordml renders the converted document model into a Word template.
// The template is opened with go-docx; converted content is appended to its
// body, the table of contents is rebuilt from the section index and the list
// definitions are merged into the numbering part after the package is
// written.
package wordml

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/fumiama/go-docx"
)

const documentPart = "word/document.xml"

// Template is an opened docx template. A Template is consumed by Assemble
// and cannot be reused.
type Template struct {
	doc *docx.Docx

	// Highest ids already used by the template.
	MaxBookmarkID    int
	MaxAbstractNumID int
	MaxNumID         int

	numbering []byte

	// Index range of the table of contents in the body, or -1.
	tocStart, tocEnd int
}

// OpenTemplate reads a template from disk.
func OpenTemplate(path string) (*Template, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read template: %w", err)
	}
	return LoadTemplate(data)
}

// LoadTemplate parses a template held in memory.
func LoadTemplate(data []byte) (*Template, error) {
	doc, err := docx.Parse(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("parse docx: %w", err)
	}
	t := &Template{doc: doc, tocStart: -1, tocEnd: -1}

	// go-docx drops body elements it does not model, so the id maxima are
	// read from the raw parts.
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("open docx archive: %w", err)
	}
	for _, f := range zr.File {
		switch f.Name {
		case documentPart:
			b, err := readZipFile(f)
			if err != nil {
				return nil, err
			}
			t.MaxBookmarkID, err = maxAttr(b, "bookmarkStart", "id")
			if err != nil {
				return nil, fmt.Errorf("scan %s: %w", f.Name, err)
			}
		case numberingPart:
			b, err := readZipFile(f)
			if err != nil {
				return nil, err
			}
			t.numbering = b
			if t.MaxAbstractNumID, err = maxAttr(b, "abstractNum", "abstractNumId"); err != nil {
				return nil, fmt.Errorf("scan %s: %w", f.Name, err)
			}
			if t.MaxNumID, err = maxAttr(b, "num", "numId"); err != nil {
				return nil, fmt.Errorf("scan %s: %w", f.Name, err)
			}
		}
	}

	t.findTOC()
	return t, nil
}

func readZipFile(f *zip.File) ([]byte, error) {
	rc, err := f.Open()
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", f.Name, err)
	}
	defer rc.Close()
	b, err := io.ReadAll(rc)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", f.Name, err)
	}
	return b, nil
}

// maxAttr returns the highest integer value of attribute attr on elements
// named elem.
func maxAttr(data []byte, elem, attr string) (int, error) {
	d := xml.NewDecoder(bytes.NewReader(data))
	best := 0
	for {
		tok, err := d.Token()
		if err == io.EOF {
			return best, nil
		}
		if err != nil {
			return 0, err
		}
		se, ok := tok.(xml.StartElement)
		if !ok || se.Name.Local != elem {
			continue
		}
		for _, a := range se.Attr {
			if a.Name.Local != attr {
				continue
			}
			if n, err := strconv.Atoi(a.Value); err == nil && n > best {
				best = n
			}
		}
	}
}

// findTOC locates the paragraph holding the TOC field instruction and the
// TOC-styled paragraphs that follow it.
func (t *Template) findTOC() {
	items := t.doc.Document.Body.Items
	for i, item := range items {
		para, ok := item.(*docx.Paragraph)
		if !ok || !strings.Contains(instrText(para), "TOC") {
			continue
		}
		t.tocStart = i
		t.tocEnd = i
		for j := i + 1; j < len(items); j++ {
			next, ok := items[j].(*docx.Paragraph)
			if !ok || !strings.HasPrefix(paragraphStyle(next), "TOC") {
				break
			}
			t.tocEnd = j
		}
		return
	}
}

// HasTOC reports whether the template contains a table of contents field.
func (t *Template) HasTOC() bool {
	return t.tocStart >= 0
}

func paragraphStyle(para *docx.Paragraph) string {
	if para.Properties == nil || para.Properties.Style == nil {
		return ""
	}
	return para.Properties.Style.Val
}

func instrText(para *docx.Paragraph) string {
	var buf strings.Builder
	for _, child := range para.Children {
		run, ok := child.(*docx.Run)
		if !ok {
			continue
		}
		buf.WriteString(run.InstrText)
	}
	return strings.TrimSpace(buf.String())
}
