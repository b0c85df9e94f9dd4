// Package docmodel is the structured document the converter produces and the
// wordml package renders. It knows nothing about XML.
package docmodel

import "strings"

// Element is a body-level element: *Paragraph or *Table.
type Element interface {
	element()
}

// Inline is paragraph content: *Run, *Break, *BookmarkStart, *BookmarkEnd
// or *Hyperlink.
type Inline interface {
	inline()
}

// Indent is a paragraph indentation in twentieths of a point.
type Indent struct {
	Left    int
	Hanging int
}

// NumberingRef attaches a paragraph to a numbering instance.
type NumberingRef struct {
	Level int
	ID    int
}

// Justification values used by the converter.
const (
	JustifyLeft   = "left"
	JustifyCenter = "center"
	JustifyRight  = "right"
)

// Paragraph is one output paragraph.
type Paragraph struct {
	Style         string
	Numbering     *NumberingRef
	Indent        *Indent
	Justification string
	// SpacingAfter is set only when the paragraph overrides its style.
	SpacingAfter *int
	Children     []Inline
}

// NewParagraph returns a paragraph with the given style and content.
func NewParagraph(style string, children ...Inline) *Paragraph {
	return &Paragraph{Style: style, Children: children}
}

// Text returns the concatenated run text of p, with breaks as newlines.
func (p *Paragraph) Text() string {
	var sb strings.Builder
	for _, c := range p.Children {
		switch n := c.(type) {
		case *Run:
			sb.WriteString(n.Text)
		case *Break:
			sb.WriteByte('\n')
		case *Hyperlink:
			for _, r := range n.Runs {
				sb.WriteString(r.Text)
			}
		}
	}
	return sb.String()
}

// VertAlign values for runs.
const (
	Subscript   = "subscript"
	Superscript = "superscript"
)

// Run is a piece of text with uniform formatting.
type Run struct {
	Text      string
	Style     string
	Bold      bool
	Italic    bool
	Color     string
	Underline string
	// UnderlineColor is a hex colour for the underline, without '#'.
	UnderlineColor string
	VertAlign      string
}

// NewRun returns a plain text run.
func NewRun(text string) *Run {
	return &Run{Text: text}
}

// Break is a line break inside a paragraph.
type Break struct{}

// BookmarkStart opens a named bookmark.
type BookmarkStart struct {
	Name string
	ID   int
}

// BookmarkEnd closes the bookmark with the same ID.
type BookmarkEnd struct {
	ID int
}

// Hyperlink points either at a bookmark in this document (Anchor) or at an
// external URL.
type Hyperlink struct {
	Anchor  string
	URL     string
	Tooltip string
	Runs    []*Run
}

// Border values for tables.
const BorderSingle = "single"

// Table is an output table.
type Table struct {
	Style string
	// Indent is the table indentation in dxa.
	Indent int
	// Width in dxa; zero leaves it to the layout.
	Width   int
	Borders string
	Rows    []*Row
}

// Row is one table row. Header rows repeat at the top of each page.
type Row struct {
	Header bool
	Cells  []*Cell
}

// Vertical merge states for cells.
const (
	MergeRestart  = "restart"
	MergeContinue = "continue"
)

// Cell is one table cell. Content holds paragraphs and nested tables.
type Cell struct {
	VMerge  string
	Content []Element
}

func (*Paragraph) element() {}
func (*Table) element()     {}

func (*Run) inline()           {}
func (*Break) inline()         {}
func (*BookmarkStart) inline() {}
func (*BookmarkEnd) inline()   {}
func (*Hyperlink) inline()     {}
