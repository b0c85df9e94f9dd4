package parser

import (
	"context"
	"fmt"
	"reflect"
	"testing"

	"github.com/dgallion1/specdocx/internal/spec"
)

func TestValidateLists(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []int
	}{
		{"text then dash item", "Invalid\n- Item", []int{2}},
		{"marker change after blank", "Invalid\n\n* Item 1\n- Item 2", []int{4}},
		{"two offences", "Multiple invalid\n- Item\n\nText\n- Item", []int{2, 5}},
		{"valid nested list", "Text\n\n- Item 1\n  - Nested\n- Item 2", nil},
		{"thematic break", "Text\n\n---\n\nMore", nil},
		{"star continues star", "* a\n* b", nil},
		{"indented previous line", "- a\n  continued\n- b", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ValidateLists(tt.input)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("expected %v, got %v", tt.want, got)
			}
		})
	}
}

func TestRemoveBlockComments(t *testing.T) {
	in := "Before\n<!--\nhidden\n-->\nAfter\n<!--\nmore\n-->\nEnd\n"
	got, err := RemoveBlockComments(in, "a.md")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := "Before\nAfter\nEnd\n"
	if got != want {
		t.Errorf("expected %q, got %q", want, got)
	}
}

func TestRemoveBlockComments_KeepsInlineComments(t *testing.T) {
	in := "Text\n<!-- Custom Word conversion: test -->\nMore\n"
	got, err := RemoveBlockComments(in, "a.md")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != in {
		t.Errorf("expected input unchanged, got %q", got)
	}
}

func TestRemoveBlockComments_Mismatch(t *testing.T) {
	tests := map[string]string{
		"end without start": "Text\n-->\nMore\n",
		"end before start":  "Text\n-->\nMore\n<!--\nx\n",
		"start without end": "Text\n<!--\nMore\n",
	}
	for name, in := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := RemoveBlockComments(in, "bad.md")
			if !spec.IsFatal(err) {
				t.Fatalf("expected fatal error, got %v", err)
			}
		})
	}
}

func TestEncodePipes(t *testing.T) {
	in := "| `a|b` | x|y |\nnot `a|b` a table"
	got := EncodePipes(in)
	want := "| `a" + PipePlaceholder + "b` | x|y |\nnot `a|b` a table"
	if got != want {
		t.Errorf("expected %q, got %q", want, got)
	}
	if DecodeCode("a"+PipePlaceholder+"b \\| c") != "a|b | c" {
		t.Errorf("expected placeholder and escape to decode")
	}
}

func TestParseFile_NormalizesAndReportsLists(t *testing.T) {
	r, err := ParseFile(Input{Name: "dir/a.md", Data: []byte("# 1 Scope\r\nText\r\n- item\r\n")})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !reflect.DeepEqual(r.ListIssues, []int{3}) {
		t.Errorf("expected [3], got %v", r.ListIssues)
	}
	if r.Doc.Name != "dir/a.md" {
		t.Errorf("expected %q, got %q", "dir/a.md", r.Doc.Name)
	}
}

func TestParseAll_KeepsInputOrder(t *testing.T) {
	var inputs []Input
	for i := 0; i < 20; i++ {
		inputs = append(inputs, Input{Name: fmt.Sprintf("f%02d.md", i), Data: []byte(fmt.Sprintf("# %d Clause\n", i+1))})
	}
	results, err := ParseAll(context.Background(), inputs, 4)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for i, r := range results {
		if r.Doc.Name != inputs[i].Name {
			t.Errorf("result %d: expected %q, got %q", i, inputs[i].Name, r.Doc.Name)
		}
	}
}

func TestParseAll_FatalStops(t *testing.T) {
	inputs := []Input{
		{Name: "ok.md", Data: []byte("# 1 Scope\n")},
		{Name: "bad.md", Data: []byte("# 2 Terms\n-->\n")},
	}
	_, err := ParseAll(context.Background(), inputs, 2)
	if !spec.IsFatal(err) {
		t.Fatalf("expected fatal error, got %v", err)
	}
}

func TestIsSupportedExtension(t *testing.T) {
	for name, want := range map[string]bool{"a.md": true, "B.MARKDOWN": true, "c.txt": false, "d": false} {
		if got := IsSupportedExtension(name); got != want {
			t.Errorf("%s: expected %v, got %v", name, want, got)
		}
	}
}
