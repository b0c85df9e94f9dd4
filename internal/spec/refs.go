package spec

import (
	"fmt"
	"strings"

	"github.com/dgallion1/specdocx/internal/mdast"
)

// SectionRef is the index entry for one heading.
type SectionRef struct {
	// Number is the printed section number, or empty when the title has
	// none (HasNumber reports which).
	Number             string
	HasNumber          bool
	Title              string
	TitleWithoutNumber string
	Level              int
	URL                string
	BookmarkName       string
	Loc                *SourceLocation
	Heading            *mdast.Heading
}

func (s *SectionRef) String() string { return s.URL }

// TermRef is a defined term and the bookmark of its definition.
type TermRef struct {
	Term         string
	BookmarkName string
	Loc          *SourceLocation
}

// ItalicKind says why a piece of text was italicised.
type ItalicKind int

const (
	ItalicPlain ItalicKind = iota
	ItalicTerm
)

func (k ItalicKind) String() string {
	if k == ItalicTerm {
		return "term"
	}
	return "italic"
}

// ItalicUse records one italic rendering.
type ItalicUse struct {
	Literal string
	Kind    ItalicKind
	Loc     *SourceLocation
}

var unescaper = strings.NewReplacer(
	"&amp;", "&",
	"&lt;", "<",
	"&gt;", ">",
	"&reg;", "®",
	`\<`, "<",
	`\>`, ">",
)

// Unescape decodes the entity and backslash escapes that survive in
// Markdown literals.
func Unescape(s string) string {
	return unescaper.Replace(s)
}

// HeadingTitle returns the unescaped text of a heading whose body is a
// single literal.
func HeadingTitle(h *mdast.Heading) (string, error) {
	if len(h.Body) != 1 {
		return "", fmt.Errorf("heading must be a single literal, got %d spans", len(h.Body))
	}
	lit, ok := h.Body[0].(*mdast.Literal)
	if !ok {
		return "", fmt.Errorf("heading must be a single literal, got %s", mdast.SpanKind(h.Body[0]))
	}
	return Unescape(lit.Text), nil
}

// newSectionRef derives the index entry for h. The bookmark name is
// supplied by the caller so numbering stays with the run's Context.
func newSectionRef(h *mdast.Heading, file, bookmark string) (*SectionRef, error) {
	title, err := HeadingTitle(h)
	if err != nil {
		return nil, err
	}
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, fmt.Errorf("heading must not be empty")
	}

	sr := &SectionRef{
		Title:              title,
		TitleWithoutNumber: title,
		Level:              h.Level,
		URL:                file + "#" + Slug(title),
		BookmarkName:       bookmark,
		Heading:            h,
	}
	if hasSectionNumber(title) {
		num, rest, _ := strings.Cut(title, " ")
		sr.Number = num
		sr.HasNumber = true
		sr.TitleWithoutNumber = rest
	}
	sr.Loc = &SourceLocation{File: file, Section: sr, Paragraph: h}
	return sr, nil
}

// hasSectionNumber reports whether title starts with a clause number such
// as "12.3" or an annex number such as "B.2".
func hasSectionNumber(title string) bool {
	c := title[0]
	if c >= '0' && c <= '9' {
		return true
	}
	return c >= 'A' && c <= 'D' && len(title) > 1 && title[1] == '.'
}

// Slug turns a title into the anchor GitHub generates for it: ASCII
// letters lower-cased, digits, '-' and '_' kept, spaces as '-', everything
// else dropped.
func Slug(title string) string {
	var sb strings.Builder
	for _, c := range title {
		switch {
		case c >= 'a' && c <= 'z', c >= '0' && c <= '9', c == '-', c == '_':
			sb.WriteRune(c)
		case c >= 'A' && c <= 'Z':
			sb.WriteRune(c + ('a' - 'A'))
		case c == ' ':
			sb.WriteByte('-')
		}
	}
	return sb.String()
}
