package highlight

import (
	"errors"
	"testing"
)

func TestNormalize(t *testing.T) {
	cases := []struct {
		in, want string
	}{
		{"Berlin", "berlin"},
		{"New   York", "new york"},
		{"tab\there\nnewline", "tab here newline"},
		{"  padded  ", " padded "},
		{"ÄRGER", "ärger"},
		{"", ""},
	}
	for _, c := range cases {
		if got := Normalize(c.in); got != c.want {
			t.Errorf("Normalize(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestGuard_NoneAllowsEverything(t *testing.T) {
	g := NewGuard(ScopeNone)
	own := []Range{{Start: 0, End: 6, Text: "Berlin"}}
	c := Candidate{Start: 10, End: 16, Text: "berlin"}
	if err := g.Check("a", c, own, nil); err != nil {
		t.Errorf("expected no error, got %v", err)
	}
}

func TestGuard_SameDocument(t *testing.T) {
	g := NewGuard(ScopeSameDocument)
	own := []Range{{Start: 0, End: 6, Text: "Berlin"}}

	err := g.Check("a", Candidate{Start: 10, End: 16, Text: "BERLIN"}, own, nil)
	var dup *DuplicateError
	if !errors.As(err, &dup) {
		t.Fatalf("expected DuplicateError, got %v", err)
	}
	if dup.Where != SameDocument {
		t.Errorf("expected SameDocument, got %s", dup.Where)
	}
	if !errors.Is(err, ErrDuplicateText) {
		t.Error("expected errors.Is(err, ErrDuplicateText)")
	}

	// Re-selecting the identical span is not a duplicate.
	if err := g.Check("a", Candidate{Start: 0, End: 6, Text: "Berlin"}, own, nil); err != nil {
		t.Errorf("same position should be allowed, got %v", err)
	}
}

func TestGuard_SameDocumentIgnoresOtherDocuments(t *testing.T) {
	g := NewGuard(ScopeSameDocument)
	entries := []Entry{{DocumentID: "b", Start: 0, End: 6, Text: "Berlin"}}
	if err := g.Check("a", Candidate{Start: 0, End: 6, Text: "Berlin"}, nil, entries); err != nil {
		t.Errorf("expected no error, got %v", err)
	}
}

func TestGuard_CrossDocument(t *testing.T) {
	g := NewGuard(ScopeCrossDocument)
	entries := []Entry{
		{DocumentID: "doc1", Start: 0, End: 6, Text: "Berlin"},
		{DocumentID: "doc2", Start: 3, End: 8, Text: "Paris"},
	}

	err := g.Check("doc2", Candidate{Start: 20, End: 26, Text: "berlin"}, nil, entries)
	var dup *DuplicateError
	if !errors.As(err, &dup) {
		t.Fatalf("expected DuplicateError, got %v", err)
	}
	if dup.Where != OtherDocument || dup.DocumentID != "doc1" {
		t.Errorf("expected OtherDocument in doc1, got %s in %s", dup.Where, dup.DocumentID)
	}

	// Entries of the candidate's own document are not considered.
	own := []Range{{Start: 3, End: 8, Text: "Paris"}}
	if err := g.Check("doc2", Candidate{Start: 30, End: 35, Text: "paris"}, own, entries); err != nil {
		t.Errorf("expected no error for same-document repeat, got %v", err)
	}
}

func TestGuard_AllChecksBoth(t *testing.T) {
	g := NewGuard(ScopeAll)
	own := []Range{{Start: 0, End: 5, Text: "Paris"}}
	entries := []Entry{{DocumentID: "b", Start: 0, End: 6, Text: "Berlin"}}

	err := g.Check("a", Candidate{Start: 10, End: 15, Text: "paris"}, own, entries)
	var dup *DuplicateError
	if !errors.As(err, &dup) || dup.Where != SameDocument {
		t.Errorf("expected same-document duplicate, got %v", err)
	}
	err = g.Check("a", Candidate{Start: 10, End: 16, Text: "berlin"}, own, entries)
	if !errors.As(err, &dup) || dup.Where != OtherDocument {
		t.Errorf("expected other-document duplicate, got %v", err)
	}
}

func TestGuard_WhitespaceCollapseMatches(t *testing.T) {
	g := NewGuard(ScopeCrossDocument)
	entries := []Entry{{DocumentID: "b", Text: "New York"}}
	if err := g.Check("a", Candidate{Text: "new\n  york"}, nil, entries); !errors.Is(err, ErrDuplicateText) {
		t.Errorf("expected duplicate after whitespace collapse, got %v", err)
	}
}

func TestParseScope(t *testing.T) {
	for _, s := range Scopes {
		if got, err := ParseScope(string(s)); err != nil || got != s {
			t.Errorf("ParseScope(%q) = %q, %v", s, got, err)
		}
	}
	if _, err := ParseScope("global"); err == nil {
		t.Error("expected error for unknown scope")
	}
}
