package docmodel

import "testing"

func TestNumbering_AddStartsAtOne(t *testing.T) {
	var n Numbering
	id := n.Add(nil)
	if id != 1 {
		t.Errorf("expected id 1, got %d", id)
	}
	if n.Abstracts[0].ID != 1 {
		t.Errorf("expected abstract id 1, got %d", n.Abstracts[0].ID)
	}
}

func TestNumbering_SeedContinuesAfterTemplate(t *testing.T) {
	var n Numbering
	n.Seed(7, 3)
	first := n.Add([]*NumberingLevel{{Level: 0}})
	second := n.Add([]*NumberingLevel{{Level: 0}})
	if first != 4 || second != 5 {
		t.Fatalf("expected ids 4 and 5, got %d and %d", first, second)
	}
	if a := n.AbstractFor(second); a == nil || a.ID != 9 {
		t.Fatalf("expected abstract 9 for instance 5, got %+v", a)
	}
}

func TestNumbering_SeedNeverLowers(t *testing.T) {
	var n Numbering
	n.Seed(5, 5)
	n.Seed(2, 2)
	if id := n.Add(nil); id != 6 {
		t.Errorf("expected id 6, got %d", id)
	}
}

func TestNumbering_AbstractForUnknown(t *testing.T) {
	var n Numbering
	n.Add(nil)
	if a := n.AbstractFor(0); a != nil {
		t.Errorf("expected nil for unknown instance, got %+v", a)
	}
}

func TestParagraph_Text(t *testing.T) {
	p := NewParagraph("",
		NewRun("a"),
		&Break{},
		&Hyperlink{Anchor: "_Toc00001", Runs: []*Run{NewRun("b")}},
		&BookmarkEnd{ID: 1},
	)
	if got := p.Text(); got != "a\nb" {
		t.Errorf("expected %q, got %q", "a\nb", got)
	}
}
