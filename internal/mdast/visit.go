package mdast

// BlockVisitor handles every block kind. Adding a kind to the package adds
// a method here, so every implementation has to deal with it.
type BlockVisitor[R any] interface {
	VisitHeading(*Heading) R
	VisitParagraph(*Paragraph) R
	VisitSpanBlock(*SpanBlock) R
	VisitQuotedBlock(*QuotedBlock) R
	VisitListBlock(*ListBlock) R
	VisitCodeBlock(*CodeBlock) R
	VisitTableBlock(*TableBlock) R
	VisitHTMLBlock(*HTMLBlock) R
	VisitCustomBlock(*CustomBlock) R
	VisitUnsupportedBlock(*UnsupportedBlock) R
}

// SpanVisitor handles every inline kind.
type SpanVisitor[R any] interface {
	VisitLiteral(*Literal) R
	VisitStrong(*Strong) R
	VisitEmphasis(*Emphasis) R
	VisitInlineCode(*InlineCode) R
	VisitLink(*Link) R
	VisitHardBreak(*HardBreak) R
	VisitInlineHTML(*InlineHTML) R
	VisitUnsupportedSpan(*UnsupportedSpan) R
}

// VisitBlock dispatches b to the matching method of v.
func VisitBlock[R any](b Block, v BlockVisitor[R]) R {
	a := &blockAdapter[R]{v: v}
	b.visit(a)
	return a.r
}

// VisitSpan dispatches s to the matching method of v.
func VisitSpan[R any](s Span, v SpanVisitor[R]) R {
	a := &spanAdapter[R]{v: v}
	s.visit(a)
	return a.r
}

type blockVisitor interface {
	heading(*Heading)
	paragraph(*Paragraph)
	spanBlock(*SpanBlock)
	quotedBlock(*QuotedBlock)
	listBlock(*ListBlock)
	codeBlock(*CodeBlock)
	tableBlock(*TableBlock)
	htmlBlock(*HTMLBlock)
	customBlock(*CustomBlock)
	unsupportedBlock(*UnsupportedBlock)
}

type spanVisitor interface {
	literal(*Literal)
	strong(*Strong)
	emphasis(*Emphasis)
	inlineCode(*InlineCode)
	link(*Link)
	hardBreak(*HardBreak)
	inlineHTML(*InlineHTML)
	unsupportedSpan(*UnsupportedSpan)
}

func (n *Heading) visit(v blockVisitor)          { v.heading(n) }
func (n *Paragraph) visit(v blockVisitor)        { v.paragraph(n) }
func (n *SpanBlock) visit(v blockVisitor)        { v.spanBlock(n) }
func (n *QuotedBlock) visit(v blockVisitor)      { v.quotedBlock(n) }
func (n *ListBlock) visit(v blockVisitor)        { v.listBlock(n) }
func (n *CodeBlock) visit(v blockVisitor)        { v.codeBlock(n) }
func (n *TableBlock) visit(v blockVisitor)       { v.tableBlock(n) }
func (n *HTMLBlock) visit(v blockVisitor)        { v.htmlBlock(n) }
func (n *CustomBlock) visit(v blockVisitor)      { v.customBlock(n) }
func (n *UnsupportedBlock) visit(v blockVisitor) { v.unsupportedBlock(n) }

func (n *Literal) visit(v spanVisitor)         { v.literal(n) }
func (n *Strong) visit(v spanVisitor)          { v.strong(n) }
func (n *Emphasis) visit(v spanVisitor)        { v.emphasis(n) }
func (n *InlineCode) visit(v spanVisitor)      { v.inlineCode(n) }
func (n *Link) visit(v spanVisitor)            { v.link(n) }
func (n *HardBreak) visit(v spanVisitor)       { v.hardBreak(n) }
func (n *InlineHTML) visit(v spanVisitor)      { v.inlineHTML(n) }
func (n *UnsupportedSpan) visit(v spanVisitor) { v.unsupportedSpan(n) }

type blockAdapter[R any] struct {
	v BlockVisitor[R]
	r R
}

func (a *blockAdapter[R]) heading(n *Heading)                   { a.r = a.v.VisitHeading(n) }
func (a *blockAdapter[R]) paragraph(n *Paragraph)               { a.r = a.v.VisitParagraph(n) }
func (a *blockAdapter[R]) spanBlock(n *SpanBlock)               { a.r = a.v.VisitSpanBlock(n) }
func (a *blockAdapter[R]) quotedBlock(n *QuotedBlock)           { a.r = a.v.VisitQuotedBlock(n) }
func (a *blockAdapter[R]) listBlock(n *ListBlock)               { a.r = a.v.VisitListBlock(n) }
func (a *blockAdapter[R]) codeBlock(n *CodeBlock)               { a.r = a.v.VisitCodeBlock(n) }
func (a *blockAdapter[R]) tableBlock(n *TableBlock)             { a.r = a.v.VisitTableBlock(n) }
func (a *blockAdapter[R]) htmlBlock(n *HTMLBlock)               { a.r = a.v.VisitHTMLBlock(n) }
func (a *blockAdapter[R]) customBlock(n *CustomBlock)           { a.r = a.v.VisitCustomBlock(n) }
func (a *blockAdapter[R]) unsupportedBlock(n *UnsupportedBlock) { a.r = a.v.VisitUnsupportedBlock(n) }

type spanAdapter[R any] struct {
	v SpanVisitor[R]
	r R
}

func (a *spanAdapter[R]) literal(n *Literal)                 { a.r = a.v.VisitLiteral(n) }
func (a *spanAdapter[R]) strong(n *Strong)                   { a.r = a.v.VisitStrong(n) }
func (a *spanAdapter[R]) emphasis(n *Emphasis)               { a.r = a.v.VisitEmphasis(n) }
func (a *spanAdapter[R]) inlineCode(n *InlineCode)           { a.r = a.v.VisitInlineCode(n) }
func (a *spanAdapter[R]) link(n *Link)                       { a.r = a.v.VisitLink(n) }
func (a *spanAdapter[R]) hardBreak(n *HardBreak)             { a.r = a.v.VisitHardBreak(n) }
func (a *spanAdapter[R]) inlineHTML(n *InlineHTML)           { a.r = a.v.VisitInlineHTML(n) }
func (a *spanAdapter[R]) unsupportedSpan(n *UnsupportedSpan) { a.r = a.v.VisitUnsupportedSpan(n) }

// BlockKind names a block's kind for diagnostics and placeholders.
func BlockKind(b Block) string {
	return VisitBlock[string](b, kindNamer{})
}

// SpanKind names a span's kind for diagnostics and placeholders.
func SpanKind(s Span) string {
	return VisitSpan[string](s, kindNamer{})
}

type kindNamer struct{}

func (kindNamer) VisitHeading(*Heading) string                     { return "Heading" }
func (kindNamer) VisitParagraph(*Paragraph) string                 { return "Paragraph" }
func (kindNamer) VisitSpanBlock(*SpanBlock) string                 { return "SpanBlock" }
func (kindNamer) VisitQuotedBlock(*QuotedBlock) string             { return "QuotedBlock" }
func (kindNamer) VisitListBlock(*ListBlock) string                 { return "ListBlock" }
func (kindNamer) VisitCodeBlock(*CodeBlock) string                 { return "CodeBlock" }
func (kindNamer) VisitTableBlock(*TableBlock) string               { return "TableBlock" }
func (kindNamer) VisitHTMLBlock(*HTMLBlock) string                 { return "HTMLBlock" }
func (kindNamer) VisitCustomBlock(*CustomBlock) string             { return "CustomBlock" }
func (kindNamer) VisitUnsupportedBlock(n *UnsupportedBlock) string { return n.Kind }

func (kindNamer) VisitLiteral(*Literal) string                   { return "Literal" }
func (kindNamer) VisitStrong(*Strong) string                     { return "Strong" }
func (kindNamer) VisitEmphasis(*Emphasis) string                 { return "Emphasis" }
func (kindNamer) VisitInlineCode(*InlineCode) string             { return "InlineCode" }
func (kindNamer) VisitLink(*Link) string                         { return "Link" }
func (kindNamer) VisitHardBreak(*HardBreak) string               { return "HardBreak" }
func (kindNamer) VisitInlineHTML(*InlineHTML) string             { return "InlineHTML" }
func (kindNamer) VisitUnsupportedSpan(n *UnsupportedSpan) string { return n.Kind }
