package spec

import (
	"errors"
	"fmt"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/dgallion1/specdocx/internal/mdast"
)

// FatalError aborts a whole run. Structural problems are reported and
// conversion continues; a FatalError means the input cannot be processed
// at all.
type FatalError struct {
	File string
	Msg  string
}

func (e *FatalError) Error() string {
	if e.File == "" {
		return e.Msg
	}
	return e.File + ": " + e.Msg
}

// Fatalf builds a *FatalError for file.
func Fatalf(file, format string, args ...any) error {
	return &FatalError{File: file, Msg: fmt.Sprintf(format, args...)}
}

// IsFatal checks whether err wraps a *FatalError.
func IsFatal(err error) bool {
	var fe *FatalError
	return errors.As(err, &fe)
}

// OrderingKey ranks a source file by its first heading: the foreword, then
// the introduction, then numbered clauses, then annexes by letter.
func OrderingKey(doc *mdast.Document) (int, error) {
	if len(doc.Blocks) == 0 {
		return 0, Fatalf(doc.Name, "document does not start with a heading")
	}
	h, ok := doc.Blocks[0].(*mdast.Heading)
	if !ok {
		return 0, Fatalf(doc.Name, "document does not start with a heading")
	}
	title, err := HeadingTitle(h)
	if err != nil {
		return 0, Fatalf(doc.Name, "first heading is not a literal: %v", err)
	}

	switch {
	case title == "Foreword":
		return -10, nil
	case title == "Introduction":
		return -5, nil
	case title != "" && title[0] >= '0' && title[0] <= '9':
		end := 0
		for end < len(title) && title[end] >= '0' && title[end] <= '9' {
			end++
		}
		n, err := strconv.Atoi(title[:end])
		if err != nil {
			return 0, Fatalf(doc.Name, "unexpected section title: %s", title)
		}
		return n, nil
	case strings.HasPrefix(title, "Annex ") && len(title) > len("Annex "):
		r := []rune(title[len("Annex "):])[0]
		return 1000 + int(r), nil
	}
	return 0, Fatalf(doc.Name, "unexpected section title: %s", title)
}

// SortDocuments orders docs by OrderingKey, keeping input order for equal
// keys.
func SortDocuments(docs []*mdast.Document) error {
	keys := make(map[*mdast.Document]int, len(docs))
	for _, d := range docs {
		k, err := OrderingKey(d)
		if err != nil {
			return err
		}
		keys[d] = k
	}
	sort.SliceStable(docs, func(i, j int) bool { return keys[docs[i]] < keys[docs[j]] })
	return nil
}

// Index is the section table of a run.
type Index struct {
	Sections []*SectionRef

	byURL     map[string]*SectionRef
	byHeading map[*mdast.Heading]*SectionRef
}

// Lookup finds a section by url ("file.md#slug").
func (ix *Index) Lookup(url string) (*SectionRef, bool) {
	s, ok := ix.byURL[url]
	return s, ok
}

// ForHeading returns the entry created for h, or nil if h was rejected.
func (ix *Index) ForHeading(h *mdast.Heading) *SectionRef {
	return ix.byHeading[h]
}

// BuildIndex walks the top-level headings of docs in order and creates one
// SectionRef for each. Malformed headings (MD03) and duplicate urls (MD02)
// are reported and left out of the index.
func BuildIndex(docs []*mdast.Document, ctx *Context, rep *Reporter) *Index {
	ix := &Index{
		byURL:     make(map[string]*SectionRef),
		byHeading: make(map[*mdast.Heading]*SectionRef),
	}
	for _, doc := range docs {
		file := filepath.Base(doc.Name)
		fileRep := rep.WithFileName(file)
		for _, b := range doc.Blocks {
			h, ok := b.(*mdast.Heading)
			if !ok {
				continue
			}
			fileRep.SetParagraph(h)
			fileRep.SetSection(nil)

			sr, err := ctx.NewSectionRef(h, file)
			if err != nil {
				fileRep.Report(MD03, err.Error())
				continue
			}
			if _, dup := ix.byURL[sr.URL]; dup {
				fileRep.Report(MD02, "Duplicate section title "+sr.URL)
				continue
			}
			ix.Sections = append(ix.Sections, sr)
			ix.byURL[sr.URL] = sr
			ix.byHeading[h] = sr
			fileRep.SetSection(sr)
		}
	}
	return ix
}
