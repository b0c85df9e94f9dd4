package spec

import (
	"fmt"

	"github.com/dgallion1/specdocx/internal/docmodel"
	"github.com/dgallion1/specdocx/internal/mdast"
)

// Context is the mutable state of one conversion run. Indexing and
// conversion both write to it, so a run uses it from one goroutine.
type Context struct {
	// Terms maps each defined term to its first definition.
	Terms map[string]*TermRef
	// Italics is an audit log of italic renderings.
	Italics []ItalicUse
	// MaxBookmarkID is the last bookmark id handed out in the output.
	MaxBookmarkID int
	// Numbering collects list definitions for the output document.
	Numbering *docmodel.Numbering

	termOrder    []string
	termKeys     []string
	sectionCount int
	termCount    int
}

// NewContext returns a fresh run context; all counters start at zero.
func NewContext() *Context {
	return &Context{
		Terms:     make(map[string]*TermRef),
		Numbering: &docmodel.Numbering{},
	}
}

// NewSectionRef indexes h and assigns the next section bookmark.
func (c *Context) NewSectionRef(h *mdast.Heading, file string) (*SectionRef, error) {
	c.sectionCount++
	return newSectionRef(h, file, fmt.Sprintf("_Toc%05d", c.sectionCount))
}

// NewTermRef assigns the next term bookmark. The counter advances even
// when the caller later rejects the term as a duplicate.
func (c *Context) NewTermRef(term string, loc *SourceLocation) *TermRef {
	c.termCount++
	return &TermRef{Term: term, BookmarkName: fmt.Sprintf("_Trm%05d", c.termCount), Loc: loc}
}

// AddTerm registers t unless its term is already defined, in which case it
// returns the existing definition and false.
func (c *Context) AddTerm(t *TermRef) (*TermRef, bool) {
	if prev, ok := c.Terms[t.Term]; ok {
		return prev, false
	}
	c.Terms[t.Term] = t
	c.termOrder = append(c.termOrder, t.Term)
	c.termKeys = nil
	return t, true
}

// TermKeys returns the defined terms in registration order.
func (c *Context) TermKeys() []string {
	if c.termKeys == nil && len(c.termOrder) > 0 {
		c.termKeys = append([]string(nil), c.termOrder...)
	}
	return c.termKeys
}

// NextBookmarkID returns a new, strictly increasing bookmark id.
func (c *Context) NextBookmarkID() int {
	c.MaxBookmarkID++
	return c.MaxBookmarkID
}

// AddItalic appends to the italic audit log.
func (c *Context) AddItalic(literal string, kind ItalicKind, loc *SourceLocation) {
	c.Italics = append(c.Italics, ItalicUse{Literal: literal, Kind: kind, Loc: loc})
}
