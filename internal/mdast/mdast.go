// Package mdast is the closed Markdown tree the converter works on.
//
// The parser adapter builds it from goldmark's AST. Every node carries its
// own source Range, so diagnostics never have to dig positions out of
// parser-specific node shapes.
package mdast

// Position is a 1-based line and column in a source file.
type Position struct {
	Line   int
	Column int
}

// Range is a span of source text. The zero Range means "unknown".
type Range struct {
	Start Position
	End   Position
}

// IsZero reports whether the range carries no position.
func (r Range) IsZero() bool {
	return r.Start.Line == 0 && r.End.Line == 0
}

// Source returns the range itself; embedding Range gives every node its
// Source method.
func (r Range) Source() Range { return r }

// Alignment of a table column.
type Alignment int

const (
	AlignDefault Alignment = iota
	AlignLeft
	AlignCenter
	AlignRight
)

// Document is one parsed source file.
type Document struct {
	Name   string
	Blocks []Block
}

// Block is a block-level node. The set of implementations is closed.
type Block interface {
	Source() Range
	visit(v blockVisitor)
}

// Span is an inline node. The set of implementations is closed.
type Span interface {
	Source() Range
	visit(v spanVisitor)
}

// Heading is an ATX or setext heading.
type Heading struct {
	Range
	Level int
	Body  []Span
}

// Paragraph is a loose paragraph.
type Paragraph struct {
	Range
	Body []Span
}

// SpanBlock is inline content that is not wrapped in a paragraph, such as
// the text of a tight list item.
type SpanBlock struct {
	Range
	Body []Span
}

// QuotedBlock is a block quote (notes and examples).
type QuotedBlock struct {
	Range
	Blocks []Block
}

// ListBlock is an ordered or bulleted list. Each item is a block sequence.
type ListBlock struct {
	Range
	Ordered bool
	Items   [][]Block
}

// CodeBlock is a fenced or indented code block.
type CodeBlock struct {
	Range
	Language string
	Code     string
}

// TableCell holds the blocks of one cell; an empty cell has no blocks.
type TableCell struct {
	Range
	Blocks []Block
}

// TableBlock is a pipe table. Header is nil when the table has none.
type TableBlock struct {
	Range
	Alignments []Alignment
	Header     []TableCell
	Rows       [][]TableCell
}

// HTMLBlock is raw HTML that is not a custom conversion marker.
type HTMLBlock struct {
	Range
	Raw string
}

// CustomBlock is a "<!-- Custom Word conversion: id -->" marker together
// with any HTML that follows it.
type CustomBlock struct {
	Range
	ID  string
	Raw string
}

// UnsupportedBlock stands in for a node kind the converter cannot render.
type UnsupportedBlock struct {
	Range
	Kind string
}

// Literal is plain text.
type Literal struct {
	Range
	Text string
}

// Strong is **bold** markup.
type Strong struct {
	Range
	Body []Span
}

// Emphasis is *italic* markup.
type Emphasis struct {
	Range
	Body []Span
}

// InlineCode is a `code` span.
type InlineCode struct {
	Range
	Code string
}

// Link is an inline or reference link.
type Link struct {
	Range
	Body  []Span
	URL   string
	Title string
}

// HardBreak is an explicit line break.
type HardBreak struct {
	Range
}

// InlineHTML is raw inline HTML, including comments.
type InlineHTML struct {
	Range
	Raw string
}

// UnsupportedSpan stands in for an inline kind the converter cannot render.
type UnsupportedSpan struct {
	Range
	Kind string
}
