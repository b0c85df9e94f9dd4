// Package engine runs one conversion: parse the Markdown sources in
// parallel, order and index them, convert each file and optionally assemble
// the result into a Word template.
package engine

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/dgallion1/specdocx/internal/convert"
	"github.com/dgallion1/specdocx/internal/docmodel"
	"github.com/dgallion1/specdocx/internal/highlight"
	"github.com/dgallion1/specdocx/internal/mdast"
	"github.com/dgallion1/specdocx/internal/parser"
	"github.com/dgallion1/specdocx/internal/spec"
	"github.com/dgallion1/specdocx/internal/wordml"
)

// DefaultParseConcurrency bounds parallel parsing when Options leaves it
// unset.
const DefaultParseConcurrency = 4

// Phase names a stage of a run, reported through Options.OnPhase.
type Phase string

const (
	PhaseParsing    Phase = "parsing"
	PhaseConverting Phase = "converting"
	PhaseAssembling Phase = "assembling"
)

// Options configures a run.
type Options struct {
	ParseConcurrency int
	Convert          convert.Options

	// Template is consumed by the run. Without one nothing is written.
	Template *wordml.Template
	// Output receives the assembled document. When nil, OutputPath is
	// created instead.
	Output     io.Writer
	OutputPath string

	// OnPhase is called as the run enters each phase.
	OnPhase func(Phase)
}

// FileResult is the converted content of one source file.
type FileResult struct {
	Name     string
	Elements []docmodel.Element
}

// Result is the outcome of a run. A run with errors still produces a
// Result; only fatal problems return an error.
type Result struct {
	Sections    []*spec.SectionRef
	Terms       map[string]*spec.TermRef
	Italics     []spec.ItalicUse
	Files       []FileResult
	Errors      int
	Warnings    int
	Diagnostics []spec.Diagnostic
	// Written reports whether a document was assembled.
	Written bool
}

// Elements returns the converted content of all files in document order.
func (r *Result) Elements() []docmodel.Element {
	var out []docmodel.Element
	for _, f := range r.Files {
		out = append(out, f.Elements...)
	}
	return out
}

// Run converts inputs. Diagnostics are logged to log and collected in the
// Result.
func Run(ctx context.Context, inputs []parser.Input, opts Options, log *slog.Logger) (*Result, error) {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	if opts.ParseConcurrency <= 0 {
		opts.ParseConcurrency = DefaultParseConcurrency
	}
	phase := func(p Phase) {
		log.Debug("phase", "phase", string(p))
		if opts.OnPhase != nil {
			opts.OnPhase(p)
		}
	}

	inputs = skipReadme(inputs)
	rep := spec.NewReporter(log)
	sctx := spec.NewContext()
	if opts.Template != nil {
		sctx.MaxBookmarkID = opts.Template.MaxBookmarkID
		sctx.Numbering.Seed(opts.Template.MaxAbstractNumID, opts.Template.MaxNumID)
	}

	phase(PhaseParsing)
	parsed, err := parser.ParseAll(ctx, inputs, opts.ParseConcurrency)
	if err != nil {
		return nil, err
	}
	docs := make([]*mdast.Document, 0, len(parsed))
	for _, p := range parsed {
		fileRep := rep.WithFileName(filepath.Base(p.Doc.Name))
		for _, line := range p.ListIssues {
			fileRep.ReportAt(spec.MD33, "Invalid start of list: needs a blank line.", spec.LineLocation(filepath.Base(p.Doc.Name), line))
		}
		docs = append(docs, p.Doc)
	}
	if err := spec.SortDocuments(docs); err != nil {
		return nil, err
	}

	phase(PhaseConverting)
	ix := spec.BuildIndex(docs, sctx, rep)
	hl := highlight.New()
	res := &Result{Sections: ix.Sections, Terms: sctx.Terms}
	for _, doc := range docs {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		fileRep := rep.WithFileName(filepath.Base(doc.Name))
		c := convert.New(sctx, ix, fileRep, hl, opts.Convert)
		res.Files = append(res.Files, FileResult{Name: doc.Name, Elements: c.ConvertDocument(doc)})
		log.Debug("converted file", "file", doc.Name, "errors", fileRep.Errors(), "warnings", fileRep.Warnings())
	}

	if opts.Template != nil {
		phase(PhaseAssembling)
		res.Written = assemble(opts, sctx, res, rep)
	}

	res.Italics = sctx.Italics
	res.Errors = rep.Errors()
	res.Warnings = rep.Warnings()
	res.Diagnostics = rep.Diagnostics().All()
	return res, nil
}

func assemble(opts Options, sctx *spec.Context, res *Result, rep *spec.Reporter) bool {
	w := opts.Output
	if w == nil {
		if opts.OutputPath == "" {
			return false
		}
		f, err := os.Create(opts.OutputPath)
		if err != nil {
			rep.Report(spec.MD26, fmt.Sprintf("File '%s' could not be created: %v", opts.OutputPath, err))
			return false
		}
		defer f.Close()
		w = f
	}
	if err := wordml.Assemble(opts.Template, res.Sections, res.Elements(), sctx.Numbering, w); err != nil {
		rep.Report(spec.MD27, err.Error())
		return false
	}
	return true
}

// skipReadme drops README.md inputs, which are not part of the document.
func skipReadme(inputs []parser.Input) []parser.Input {
	out := inputs[:0:0]
	for _, in := range inputs {
		if strings.EqualFold(filepath.Base(in.Name), "README.md") {
			continue
		}
		out = append(out, in)
	}
	return out
}

// ReadInputs reads the Markdown files named by args. Arguments containing
// wildcards are expanded with filepath.Glob; unsupported extensions are an
// error.
func ReadInputs(args []string) ([]parser.Input, error) {
	var paths []string
	for _, arg := range args {
		if !strings.ContainsAny(arg, "*?[") {
			paths = append(paths, arg)
			continue
		}
		matches, err := filepath.Glob(arg)
		if err != nil {
			return nil, fmt.Errorf("expand %s: %w", arg, err)
		}
		if len(matches) == 0 {
			return nil, fmt.Errorf("not found - %q", arg)
		}
		sort.Strings(matches)
		paths = append(paths, matches...)
	}

	inputs := make([]parser.Input, 0, len(paths))
	for _, p := range paths {
		if !parser.IsSupportedExtension(p) {
			return nil, fmt.Errorf("not a markdown file: %s", p)
		}
		data, err := os.ReadFile(p)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", p, err)
		}
		inputs = append(inputs, parser.Input{Name: p, Data: data})
	}
	return inputs, nil
}
