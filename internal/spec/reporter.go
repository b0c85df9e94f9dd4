package spec

import (
	"context"
	"log/slog"
	"sync"

	"github.com/dgallion1/specdocx/internal/mdast"
)

// Diagnostic is one reported problem.
type Diagnostic struct {
	Code      Code     `json:"code"`
	Severity  Severity `json:"severity"`
	File      string   `json:"file,omitempty"`
	Location  string   `json:"location"`
	StartLine int      `json:"start_line,omitempty"`
	EndLine   int      `json:"end_line,omitempty"`
	Message   string   `json:"message"`
}

// Diagnostics is the list of diagnostics shared by a reporter tree.
type Diagnostics struct {
	mu    sync.Mutex
	items []Diagnostic
}

func (d *Diagnostics) add(diag Diagnostic) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.items = append(d.items, diag)
}

// All returns a copy of the collected diagnostics in report order.
func (d *Diagnostics) All() []Diagnostic {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]Diagnostic, len(d.items))
	copy(out, d.items)
	return out
}

// Reporter counts and logs diagnostics. Child reporters created with
// WithFileName roll their counts up to their parent, and all reporters of
// one tree share a Diagnostics list.
//
// A Reporter also carries the current location cursor, which the converter
// moves as it descends. It is owned by one run and is not safe for
// concurrent use.
type Reporter struct {
	parent *Reporter
	log    *slog.Logger
	diags  *Diagnostics

	errors   int
	warnings int

	loc *SourceLocation
}

// NewReporter returns a root reporter logging to log.
func NewReporter(log *slog.Logger) *Reporter {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	return &Reporter{
		log:   log,
		diags: &Diagnostics{},
		loc:   &SourceLocation{},
	}
}

// WithFileName returns a child reporter for one source file.
func (r *Reporter) WithFileName(file string) *Reporter {
	return &Reporter{
		parent: r,
		log:    r.log.With("file", file),
		diags:  r.diags,
		loc:    &SourceLocation{File: file},
	}
}

// Errors returns the number of errors reported here and in children.
func (r *Reporter) Errors() int { return r.errors }

// Warnings returns the number of warnings reported here and in children.
func (r *Reporter) Warnings() int { return r.warnings }

// Diagnostics returns the list shared by this reporter tree.
func (r *Reporter) Diagnostics() *Diagnostics { return r.diags }

// Location returns the current cursor.
func (r *Reporter) Location() *SourceLocation { return r.loc }

// CurrentFile returns the file of the cursor.
func (r *Reporter) CurrentFile() string { return r.loc.File }

// CurrentSection returns the section of the cursor.
func (r *Reporter) CurrentSection() *SectionRef { return r.loc.Section }

// SetSection moves the cursor to a section and clears the span.
func (r *Reporter) SetSection(s *SectionRef) {
	r.loc = &SourceLocation{File: r.loc.File, Section: s, Paragraph: r.loc.Paragraph}
}

// SetParagraph moves the cursor to a block and clears the span.
func (r *Reporter) SetParagraph(b mdast.Block) {
	r.loc = &SourceLocation{File: r.loc.File, Section: r.loc.Section, Paragraph: b}
}

// SetSpan moves the cursor to a span inside the current block.
func (r *Reporter) SetSpan(s mdast.Span) {
	r.loc = &SourceLocation{File: r.loc.File, Section: r.loc.Section, Paragraph: r.loc.Paragraph, Span: s}
}

// Report records a diagnostic with code's fixed severity at the cursor.
func (r *Reporter) Report(code Code, msg string) {
	r.ReportAt(code, msg, nil)
}

// ReportAt records a diagnostic at loc, or at the cursor when loc is nil.
func (r *Reporter) ReportAt(code Code, msg string, loc *SourceLocation) {
	if loc == nil {
		loc = r.loc
	}
	sev := code.Severity()
	if sev == SeverityWarning {
		r.incrementWarnings()
	} else {
		r.incrementErrors()
	}

	file := loc.File
	if file == "" {
		file = NoFile
	}
	d := Diagnostic{
		Code:      code,
		Severity:  sev,
		File:      file,
		Location:  loc.Description(),
		StartLine: loc.StartLine(),
		EndLine:   loc.EndLine(),
		Message:   msg,
	}
	r.diags.add(d)

	level := slog.LevelError
	if sev == SeverityWarning {
		level = slog.LevelWarn
	}
	r.log.Log(context.Background(), level, msg, "code", string(code), "location", d.Location)
}

// Debug logs progress information without counting it.
func (r *Reporter) Debug(msg string, args ...any) {
	r.log.Debug(msg, args...)
}

func (r *Reporter) incrementErrors() {
	r.errors++
	if r.parent != nil {
		r.parent.incrementErrors()
	}
}

func (r *Reporter) incrementWarnings() {
	r.warnings++
	if r.parent != nil {
		r.parent.incrementWarnings()
	}
}
