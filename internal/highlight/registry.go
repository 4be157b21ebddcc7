package highlight

import (
	"sort"
	"strings"
)

// Entry is one committed highlight tagged with its document.
type Entry struct {
	DocumentID string `json:"document_id"`
	Start      int    `json:"start"`
	End        int    `json:"end"`
	Text       string `json:"text"`
}

// Registry is the cross-document view of committed highlights, ordered by
// (document registration index, Start). Documents are ordered by when they
// were first registered, not by name.
//
// Registry is not safe for concurrent use.
type Registry struct {
	order   map[string]int
	next    int
	entries []Entry
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{order: make(map[string]int)}
}

// Register assigns docID the next registration index. Registering a known
// document keeps its first position.
func (g *Registry) Register(docID string) {
	if _, ok := g.order[docID]; ok {
		return
	}
	g.order[docID] = g.next
	g.next++
}

// Unregister drops docID and all its entries. Remaining documents keep their
// relative order.
func (g *Registry) Unregister(docID string) {
	if _, ok := g.order[docID]; !ok {
		return
	}
	delete(g.order, docID)
	kept := g.entries[:0]
	for _, e := range g.entries {
		if e.DocumentID != docID {
			kept = append(kept, e)
		}
	}
	g.entries = kept
}

// Add inserts r for docID at its sorted position.
func (g *Registry) Add(docID string, r Range) {
	g.Register(docID)
	e := Entry{DocumentID: docID, Start: r.Start, End: r.End, Text: r.Text}
	i := sort.Search(len(g.entries), func(i int) bool { return g.less(e, g.entries[i]) })
	g.entries = append(g.entries, Entry{})
	copy(g.entries[i+1:], g.entries[i:])
	g.entries[i] = e
}

// Remove deletes the entry of docID spanning exactly r.
func (g *Registry) Remove(docID string, r Range) bool {
	for i, e := range g.entries {
		if e.DocumentID == docID && e.Start == r.Start && e.End == r.End {
			g.entries = append(g.entries[:i], g.entries[i+1:]...)
			return true
		}
	}
	return false
}

// RemoveText deletes every entry of docID whose text normalizes equal to
// text and returns how many were removed.
func (g *Registry) RemoveText(docID, text string) int {
	norm := Normalize(text)
	n := 0
	kept := g.entries[:0]
	for _, e := range g.entries {
		if e.DocumentID == docID && Normalize(e.Text) == norm {
			n++
			continue
		}
		kept = append(kept, e)
	}
	g.entries = kept
	return n
}

// Apply mirrors a Store change for docID.
func (g *Registry) Apply(docID string, c Change) {
	for _, r := range c.Removed {
		g.Remove(docID, r)
	}
	g.Add(docID, c.Added)
}

// All returns a copy of every entry in registry order.
func (g *Registry) All() []Entry {
	out := make([]Entry, len(g.entries))
	copy(out, g.entries)
	return out
}

// Len returns the number of entries.
func (g *Registry) Len() int { return len(g.entries) }

// ConcatenatedText joins every highlighted text with a single space, in
// registry order.
func (g *Registry) ConcatenatedText() string {
	texts := make([]string, len(g.entries))
	for i, e := range g.entries {
		texts[i] = e.Text
	}
	return strings.Join(texts, " ")
}

func (g *Registry) less(a, b Entry) bool {
	oa, ob := g.order[a.DocumentID], g.order[b.DocumentID]
	if oa != ob {
		return oa < ob
	}
	return a.Start < b.Start
}
