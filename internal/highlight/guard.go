package highlight

import (
	"fmt"
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Scope selects which existing highlights a candidate is compared against.
type Scope string

const (
	ScopeNone          Scope = "none"
	ScopeSameDocument  Scope = "same-document"
	ScopeCrossDocument Scope = "cross-document"
	// ScopeAll combines the same-document and cross-document checks.
	ScopeAll Scope = "all"
)

// Scopes lists every supported scope.
var Scopes = []Scope{ScopeNone, ScopeSameDocument, ScopeCrossDocument, ScopeAll}

// ParseScope accepts a scope name, case-insensitively.
func ParseScope(s string) (Scope, error) {
	sc := Scope(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Scopes {
		if sc == known {
			return sc, nil
		}
	}
	return "", fmt.Errorf("unknown duplicate scope %q", s)
}

// Normalize lowercases text and collapses every whitespace run to one space.
// It is used only for duplicate comparison, never for stored offsets.
func Normalize(text string) string {
	// A Caser carries state, so one is built per call.
	lower := cases.Lower(language.Und).String(text)

	var b strings.Builder
	b.Grow(len(lower))
	inSpace := false
	for _, r := range lower {
		if unicode.IsSpace(r) {
			if !inSpace {
				b.WriteByte(' ')
				inSpace = true
			}
			continue
		}
		inSpace = false
		b.WriteRune(r)
	}
	return b.String()
}

// Guard rejects candidates whose normalized text is already highlighted
// within its configured scope.
type Guard struct {
	scope Scope
}

// NewGuard returns a guard for scope. An empty scope disables checking.
func NewGuard(scope Scope) Guard {
	if scope == "" {
		scope = ScopeNone
	}
	return Guard{scope: scope}
}

// Scope returns the configured scope.
func (g Guard) Scope() Scope { return g.scope }

// Check compares c, proposed for document docID, against own (the ranges
// already in that document) and entries (the cross-document registry).
// It never mutates anything; a nil return means the candidate may proceed.
func (g Guard) Check(docID string, c Candidate, own []Range, entries []Entry) error {
	if g.scope == ScopeNone {
		return nil
	}
	norm := Normalize(c.Text)

	if g.scope == ScopeSameDocument || g.scope == ScopeAll {
		for _, r := range own {
			if r.SameSpan(c.Range()) {
				continue
			}
			if Normalize(r.Text) == norm {
				return &DuplicateError{Text: c.Text, Where: SameDocument, DocumentID: docID}
			}
		}
	}

	if g.scope == ScopeCrossDocument || g.scope == ScopeAll {
		for _, e := range entries {
			if e.DocumentID == docID {
				continue
			}
			if Normalize(e.Text) == norm {
				return &DuplicateError{Text: c.Text, Where: OtherDocument, DocumentID: e.DocumentID}
			}
		}
	}
	return nil
}
