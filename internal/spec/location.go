package spec

import (
	"fmt"

	"github.com/dgallion1/specdocx/internal/mdast"
)

// NoFile is the location description used when no source file is known.
const NoFile = "specdocx"

// SourceLocation points at a file, and optionally at a section, a block and
// a span inside it. Values are never mutated once handed out, so a
// location captured for a term definition stays valid.
type SourceLocation struct {
	File      string
	Section   *SectionRef
	Paragraph mdast.Block
	Span      mdast.Span

	desc     string
	computed bool
}

// Description renders the location as "file(line,col,line,col)",
// "file(line)", "file(line-line)" or just "file". It is computed on first
// use and cached.
func (l *SourceLocation) Description() string {
	if l.computed {
		return l.desc
	}
	l.desc = l.describe()
	l.computed = true
	return l.desc
}

func (l *SourceLocation) describe() string {
	if l.File == "" {
		return NoFile
	}
	if l.Section == nil && l.Paragraph == nil {
		return l.File
	}
	if r, ok := spanRange(l.Span); ok {
		return fmt.Sprintf("%s(%d,%d,%d,%d)", l.File, r.Start.Line, r.Start.Column, r.End.Line, r.End.Column)
	}
	r, ok := blockRange(l.Paragraph)
	if !ok && l.Section != nil && l.Section.Loc != nil {
		r, ok = blockRange(l.Section.Loc.Paragraph)
	}
	if !ok {
		return l.File
	}
	if r.Start.Line == r.End.Line {
		return fmt.Sprintf("%s(%d)", l.File, r.Start.Line)
	}
	return fmt.Sprintf("%s(%d-%d)", l.File, r.Start.Line, r.End.Line)
}

// StartLine returns the first line the location covers, or 0.
func (l *SourceLocation) StartLine() int {
	if r, ok := l.bestRange(); ok {
		return r.Start.Line
	}
	return 0
}

// EndLine returns the last line the location covers, or 0.
func (l *SourceLocation) EndLine() int {
	if r, ok := l.bestRange(); ok {
		return r.End.Line
	}
	return 0
}

func (l *SourceLocation) bestRange() (mdast.Range, bool) {
	if r, ok := spanRange(l.Span); ok {
		return r, true
	}
	if r, ok := blockRange(l.Paragraph); ok {
		return r, true
	}
	if l.Section != nil && l.Section.Loc != nil {
		return blockRange(l.Section.Loc.Paragraph)
	}
	return mdast.Range{}, false
}

func spanRange(s mdast.Span) (mdast.Range, bool) {
	if s == nil {
		return mdast.Range{}, false
	}
	r := s.Source()
	return r, !r.IsZero()
}

func blockRange(b mdast.Block) (mdast.Range, bool) {
	if b == nil {
		return mdast.Range{}, false
	}
	r := b.Source()
	return r, !r.IsZero()
}

// LineLocation builds a location for a whole source line, for checks that
// run on raw text before parsing.
func LineLocation(file string, line int) *SourceLocation {
	r := mdast.Range{Start: mdast.Position{Line: line, Column: 1}, End: mdast.Position{Line: line, Column: 1}}
	return &SourceLocation{File: file, Paragraph: &mdast.SpanBlock{Range: r}}
}
