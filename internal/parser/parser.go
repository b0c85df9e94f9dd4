package parser

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/dgallion1/specdocx/internal/mdast"
)

// SupportedExtensions lists the source file extensions a run accepts.
var SupportedExtensions = map[string]bool{
	".md":       true,
	".markdown": true,
}

// IsSupportedExtension checks if a file extension is supported.
func IsSupportedExtension(filename string) bool {
	ext := strings.ToLower(filepath.Ext(filename))
	return SupportedExtensions[ext]
}

// Input is one named Markdown source.
type Input struct {
	Name string
	Data []byte
}

// Result is a parsed source together with the list-start lines that failed
// validation on its raw text. Reporting them is left to the caller so that
// diagnostics come out in file order even when parsing runs in parallel.
type Result struct {
	Doc        *mdast.Document
	ListIssues []int
}

// ParseFile preprocesses and parses one source. The only error it returns
// is a fatal comment-marker mismatch.
func ParseFile(in Input) (*Result, error) {
	src := NormalizeNewlines(string(in.Data))
	issues := ValidateLists(src)
	src = EncodePipes(src)
	src, err := RemoveBlockComments(src, filepath.Base(in.Name))
	if err != nil {
		return nil, err
	}
	doc := NewMarkdownParser().Parse([]byte(src), in.Name)
	return &Result{Doc: doc, ListIssues: issues}, nil
}

// ParseAll parses inputs concurrently, at most limit at a time, and returns
// results in input order. The first error cancels the rest.
func ParseAll(ctx context.Context, inputs []Input, limit int) ([]*Result, error) {
	if limit <= 0 {
		limit = 1
	}
	results := make([]*Result, len(inputs))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)
	for i, in := range inputs {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			r, err := ParseFile(in)
			if err != nil {
				return fmt.Errorf("parse %s: %w", in.Name, err)
			}
			results[i] = r
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
