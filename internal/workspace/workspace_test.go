package workspace

import (
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/dgallion1/docmark/internal/highlight"
	"github.com/dgallion1/docmark/internal/selection"
)

const fox = "the quick brown fox"

func spans(rs []highlight.Range) string {
	return fmt.Sprint(func() [][2]int {
		out := make([][2]int, len(rs))
		for i, r := range rs {
			out[i] = [2]int{r.Start, r.End}
		}
		return out
	}())
}

// selectSpan builds a selection for [start, end) against the document's
// current render tree, the way a view would report a mouse selection.
func selectSpan(t *testing.T, w *Workspace, docID string, start, end int) selection.Selection {
	t.Helper()
	tree, _, err := w.RenderTree(docID)
	if err != nil {
		t.Fatalf("render tree: %v", err)
	}
	ix, err := selection.NewIndex(tree)
	if err != nil {
		t.Fatalf("index: %v", err)
	}
	a, ok := ix.AnchorAt(start)
	if !ok {
		t.Fatalf("no anchor at %d", start)
	}
	b, ok := ix.AnchorAt(end)
	if !ok {
		t.Fatalf("no anchor at %d", end)
	}
	return selection.Selection{Start: a, End: b}
}

func load(t *testing.T, w *Workspace, name, content string) string {
	t.Helper()
	id, err := w.LoadDocument(name, content)
	if err != nil {
		t.Fatalf("load %s: %v", name, err)
	}
	return id
}

func TestScenario_InsertListRemove(t *testing.T) {
	w := New(Options{Policy: highlight.RejectOverlap, Scope: highlight.ScopeSameDocument})
	doc := load(t, w, "fox.txt", fox)

	r, err := w.InsertHighlight(doc, selectSpan(t, w, doc, 4, 9))
	if err != nil {
		t.Fatalf("insert quick: %v", err)
	}
	if r.Text != "quick" {
		t.Errorf("expected %q, got %q", "quick", r.Text)
	}
	got, _ := w.ListHighlights(doc)
	if spans(got) != "[[4 9]]" {
		t.Fatalf("expected [[4 9]], got %s", spans(got))
	}

	if _, err := w.InsertHighlight(doc, selectSpan(t, w, doc, 0, 3)); err != nil {
		t.Fatalf("insert the: %v", err)
	}
	got, _ = w.ListHighlights(doc)
	if spans(got) != "[[0 3] [4 9]]" {
		t.Fatalf("expected [[0 3] [4 9]], got %s", spans(got))
	}

	// Overlapping selection is rejected without side effects.
	_, err = w.InsertHighlight(doc, selectSpan(t, w, doc, 2, 6))
	if !errors.Is(err, highlight.ErrOverlapRejected) {
		t.Fatalf("expected ErrOverlapRejected, got %v", err)
	}
	got, _ = w.ListHighlights(doc)
	if spans(got) != "[[0 3] [4 9]]" {
		t.Fatalf("state changed after rejection: %s", spans(got))
	}
	if n := len(w.ExportAll()); n != 2 {
		t.Fatalf("expected 2 registry entries, got %d", n)
	}

	ok, err := w.RemoveHighlight(doc, 4, 9)
	if err != nil || !ok {
		t.Fatalf("remove: ok=%v err=%v", ok, err)
	}
	got, _ = w.ListHighlights(doc)
	if spans(got) != "[[0 3]]" {
		t.Fatalf("expected [[0 3]], got %s", spans(got))
	}
	ok, err = w.RemoveHighlight(doc, 4, 9)
	if err != nil || ok {
		t.Fatalf("second remove: expected false, got ok=%v err=%v", ok, err)
	}
	if all := w.ExportAll(); len(all) != 1 || all[0].Text != "the" {
		t.Fatalf("registry out of sync: %+v", all)
	}
}

func TestScenario_MergeUnion(t *testing.T) {
	w := New(Options{Policy: highlight.MergeUnion})
	doc := load(t, w, "fox.txt", fox)

	w.InsertRange(doc, 4, 9)
	w.InsertRange(doc, 0, 3)
	r, err := w.InsertHighlight(doc, selectSpan(t, w, doc, 2, 6))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if r.Start != 0 || r.End != 9 || r.Text != "the quick" {
		t.Errorf("expected merged [0,9) %q, got %s %q", "the quick", r, r.Text)
	}

	all := w.ExportAll()
	if len(all) != 1 || all[0].Text != "the quick" {
		t.Errorf("registry should hold the merged range only, got %+v", all)
	}
}

func TestScenario_CrossDocumentDuplicate(t *testing.T) {
	w := New(Options{Scope: highlight.ScopeCrossDocument})
	d1 := load(t, w, "one.txt", "News from Berlin today.")
	d2 := load(t, w, "two.txt", "berlin is a city.")

	if _, err := w.InsertRange(d1, 10, 16); err != nil {
		t.Fatalf("insert Berlin: %v", err)
	}

	_, err := w.InsertRange(d2, 0, 6)
	var dup *highlight.DuplicateError
	if !errors.As(err, &dup) {
		t.Fatalf("expected DuplicateError, got %v", err)
	}
	if dup.Where != highlight.OtherDocument || dup.DocumentID != d1 {
		t.Errorf("expected OtherDocument in %s, got %s in %s", d1, dup.Where, dup.DocumentID)
	}
	if got, _ := w.ListHighlights(d2); len(got) != 0 {
		t.Errorf("rejected insert must not mutate, got %s", spans(got))
	}
}

func TestInsertRange_TrimsAndRejectsBlank(t *testing.T) {
	w := New(Options{})
	doc := load(t, w, "fox.txt", fox)

	r, err := w.InsertRange(doc, 3, 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if r.Start != 4 || r.End != 9 {
		t.Errorf("expected trimmed [4,9), got %s", r)
	}
	if _, err := w.InsertRange(doc, 9, 10); !errors.Is(err, highlight.ErrEmptySelection) {
		t.Errorf("expected ErrEmptySelection, got %v", err)
	}
	if _, err := w.InsertRange(doc, 0, 100); !errors.Is(err, highlight.ErrOutOfBounds) {
		t.Errorf("expected ErrOutOfBounds, got %v", err)
	}
}

func TestRemoveHighlightByText(t *testing.T) {
	w := New(Options{Scope: highlight.ScopeNone})
	doc := load(t, w, "a.txt", "Berlin, berlin and Paris")
	w.InsertRange(doc, 0, 6)
	w.InsertRange(doc, 8, 14)
	w.InsertRange(doc, 19, 24)

	ok, err := w.RemoveHighlightByText(doc, "BERLIN")
	if err != nil || !ok {
		t.Fatalf("expected removal, got ok=%v err=%v", ok, err)
	}
	got, _ := w.ListHighlights(doc)
	if spans(got) != "[[19 24]]" {
		t.Errorf("expected [[19 24]], got %s", spans(got))
	}
	if all := w.ExportAll(); len(all) != 1 || all[0].Text != "Paris" {
		t.Errorf("registry out of sync: %+v", all)
	}

	ok, _ = w.RemoveHighlightByText(doc, "berlin")
	if ok {
		t.Error("expected false when nothing matches")
	}
}

func TestRemoveControl(t *testing.T) {
	w := New(Options{})
	doc := load(t, w, "fox.txt", fox)
	w.InsertRange(doc, 4, 9)

	ok, err := w.RemoveControl(doc, "h1.x")
	if err != nil || !ok {
		t.Fatalf("expected removal, got ok=%v err=%v", ok, err)
	}
	if got, _ := w.ListHighlights(doc); len(got) != 0 {
		t.Errorf("expected no highlights, got %s", spans(got))
	}
}

func TestExportAll_FollowsLoadOrder(t *testing.T) {
	w := New(Options{Scope: highlight.ScopeNone})
	zed := load(t, w, "zed.txt", "zzz yyy")
	abe := load(t, w, "abe.txt", "aaa bbb")

	w.InsertRange(abe, 0, 3)
	w.InsertRange(zed, 4, 7)
	w.InsertRange(zed, 0, 3)

	all := w.ExportAll()
	want := []string{"zzz", "yyy", "aaa"}
	for i, txt := range want {
		if all[i].Text != txt {
			t.Errorf("entry[%d]: expected %q, got %q", i, txt, all[i].Text)
		}
	}
	if got := w.ConcatenatedText(); got != "zzz yyy aaa" {
		t.Errorf("unexpected concatenation %q", got)
	}
}

func TestUnloadDocument_DiscardsHighlights(t *testing.T) {
	w := New(Options{})
	a := load(t, w, "a.txt", fox)
	b := load(t, w, "b.txt", fox)
	w.InsertRange(a, 0, 3)
	w.InsertRange(b, 4, 9)

	if err := w.UnloadDocument(a); err != nil {
		t.Fatalf("unload: %v", err)
	}
	all := w.ExportAll()
	if len(all) != 1 || all[0].DocumentID != b {
		t.Errorf("expected only b's entry, got %+v", all)
	}
	if _, err := w.ListHighlights(a); !errors.Is(err, ErrUnknownDocument) {
		t.Errorf("expected ErrUnknownDocument, got %v", err)
	}
	if _, ok := w.Current(); ok {
		t.Error("unloading the current document should clear the pointer")
	}

	// The name is free again.
	if _, err := w.LoadDocument("a.txt", fox); err != nil {
		t.Errorf("reload: %v", err)
	}
}

func TestLoadDocument_DuplicateName(t *testing.T) {
	w := New(Options{})
	load(t, w, "a.txt", fox)
	if _, err := w.LoadDocument("a.txt", "other"); !errors.Is(err, ErrDuplicateName) {
		t.Errorf("expected ErrDuplicateName, got %v", err)
	}
}

func TestDocumentInfo_ContentHash(t *testing.T) {
	w := New(Options{})
	a := load(t, w, "a.txt", fox)
	b := load(t, w, "b.txt", fox)
	c := load(t, w, "c.txt", "lazy dog")

	ia, _, _ := w.Document(a)
	ib, _, _ := w.Document(b)
	ic, _, _ := w.Document(c)
	if len(ia.SHA256) != 64 {
		t.Errorf("expected 64-char hex hash, got %d chars", len(ia.SHA256))
	}
	if ia.SHA256 != ib.SHA256 {
		t.Error("same content should hash the same")
	}
	if ia.SHA256 == ic.SHA256 {
		t.Error("different content should hash differently")
	}
}

func TestCurrentAlias(t *testing.T) {
	w := New(Options{})
	if _, err := w.ListHighlights(CurrentID); !errors.Is(err, ErrNoCurrentDocument) {
		t.Fatalf("expected ErrNoCurrentDocument, got %v", err)
	}
	a := load(t, w, "a.txt", fox)
	b := load(t, w, "b.txt", "lazy dog")

	if cur, _ := w.Current(); cur != a {
		t.Errorf("first loaded document should be current")
	}
	if err := w.Open(b); err != nil {
		t.Fatalf("open: %v", err)
	}
	r, err := w.InsertRange(CurrentID, 0, 4)
	if err != nil {
		t.Fatalf("insert: %v", err)
	}
	if r.Text != "lazy" {
		t.Errorf("expected insert into b, got %q", r.Text)
	}

	docs := w.Documents()
	if len(docs) != 2 || docs[0].ID != a || !docs[1].Current || docs[1].Highlights != 1 {
		t.Errorf("unexpected listing %+v", docs)
	}
}

func TestSubscribe_ReceivesCommittedChanges(t *testing.T) {
	w := New(Options{Policy: highlight.MergeUnion})
	var got []EventKind
	var seenEntries []int
	cancel := w.Subscribe(func(ev Event) {
		got = append(got, ev.Kind)
		// Observers may read back; the registry is already consistent.
		seenEntries = append(seenEntries, len(w.ExportAll()))
	})

	doc := load(t, w, "fox.txt", fox)
	w.InsertRange(doc, 0, 3)
	w.InsertRange(doc, 2, 9)
	w.InsertRange(doc, 0, 100) // rejected, no event

	want := []EventKind{DocumentLoaded, HighlightAdded, HighlightRemoved, HighlightAdded}
	if fmt.Sprint(got) != fmt.Sprint(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
	if fmt.Sprint(seenEntries) != "[0 1 1 1]" {
		t.Errorf("observers saw intermediate state: %v", seenEntries)
	}

	cancel()
	w.RemoveHighlight(doc, 0, 9)
	if len(got) != len(want) {
		t.Error("cancelled observer still called")
	}
}

func TestSubscribe_ObserverMayMutate(t *testing.T) {
	w := New(Options{})
	doc := load(t, w, "fox.txt", fox)

	var kinds []EventKind
	w.Subscribe(func(ev Event) {
		kinds = append(kinds, ev.Kind)
		if ev.Kind == HighlightAdded && ev.Range.Start == 0 {
			w.InsertRange(doc, 4, 9)
		}
	})
	w.InsertRange(doc, 0, 3)

	if len(kinds) != 2 {
		t.Fatalf("expected nested event to be delivered, got %v", kinds)
	}
	if got, _ := w.ListHighlights(doc); len(got) != 2 {
		t.Errorf("expected 2 highlights, got %s", spans(got))
	}
}

func TestConcurrentInserts_KeepStoreAndRegistryInSync(t *testing.T) {
	w := New(Options{Policy: highlight.SplitTruncate, Scope: highlight.ScopeNone})
	content := "aaaa bbbb cccc dddd eeee ffff gggg hhhh"
	doc := load(t, w, "c.txt", content)

	var wg sync.WaitGroup
	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func(g int) {
			defer wg.Done()
			for i := 0; i < 50; i++ {
				start := (g*5 + i) % (len(content) - 4)
				w.InsertRange(doc, start, start+4)
				if i%7 == 0 {
					w.RemoveHighlight(doc, start, start+4)
				}
			}
		}(g)
	}
	wg.Wait()

	list, _ := w.ListHighlights(doc)
	all := w.ExportAll()
	if len(list) != len(all) {
		t.Fatalf("store has %d ranges, registry %d", len(list), len(all))
	}
	for i := range list {
		if list[i].Start != all[i].Start || list[i].End != all[i].End {
			t.Fatalf("mismatch at %d: %s vs [%d,%d)", i, list[i], all[i].Start, all[i].End)
		}
		if i > 0 && list[i-1].End > list[i].Start {
			t.Fatalf("overlap: %s", spans(list))
		}
	}
}

func TestSubscribe_PanickingObserverDoesNotStallEvents(t *testing.T) {
	w := New(Options{})
	doc := load(t, w, "fox.txt", fox)

	panicked := false
	w.Subscribe(func(ev Event) {
		if !panicked {
			panicked = true
			panic("observer failure")
		}
	})
	var kinds []EventKind
	w.Subscribe(func(ev Event) { kinds = append(kinds, ev.Kind) })

	if _, err := w.InsertRange(doc, 0, 3); err != nil {
		t.Fatalf("insert: %v", err)
	}
	if _, err := w.InsertRange(doc, 4, 9); err != nil {
		t.Fatalf("insert: %v", err)
	}
	if _, err := w.InsertRange(doc, 10, 15); err != nil {
		t.Fatalf("insert: %v", err)
	}

	if !panicked {
		t.Fatal("first observer never ran")
	}
	if len(kinds) != 3 {
		t.Errorf("expected 3 events after a panicking observer, got %v", kinds)
	}
	w.mu.Lock()
	draining, pending := w.draining, len(w.pending)
	w.mu.Unlock()
	if draining || pending != 0 {
		t.Errorf("notify state not reset: draining=%v pending=%d", draining, pending)
	}
}

func TestMergeUnion_RejectsMergedDuplicate(t *testing.T) {
	w := New(Options{Policy: highlight.MergeUnion, Scope: highlight.ScopeCrossDocument})
	a := load(t, w, "a.txt", "the quick")
	b := load(t, w, "b.txt", fox)

	if _, err := w.InsertRange(a, 0, 9); err != nil {
		t.Fatalf("insert a: %v", err)
	}
	if _, err := w.InsertRange(b, 0, 3); err != nil {
		t.Fatalf("insert b: %v", err)
	}

	// "e quick" alone is new, but merging with "the" commits "the quick".
	_, err := w.InsertRange(b, 2, 9)
	var dup *highlight.DuplicateError
	if !errors.As(err, &dup) || dup.Where != highlight.OtherDocument {
		t.Fatalf("expected DuplicateText(OtherDocument), got %v", err)
	}
	if got, _ := w.ListHighlights(b); spans(got) != "[[0 3]]" {
		t.Errorf("state changed after rejection: %s", spans(got))
	}
	if n := len(w.ExportAll()); n != 2 {
		t.Errorf("registry has %d entries, want 2", n)
	}
}

func TestView_AnchorsAddressHighlights(t *testing.T) {
	w := New(Options{})
	doc := load(t, w, "fox.txt", fox)
	w.InsertRange(doc, 4, 9)
	w.InsertRange(doc, 16, 19)

	v, err := w.View(doc)
	if err != nil {
		t.Fatalf("view: %v", err)
	}
	if v.Content != fox || len(v.Highlights) != 2 || len(v.Anchors) != 2 {
		t.Fatalf("unexpected view %+v", v)
	}
	ix, err := selection.NewIndex(v.Tree)
	if err != nil {
		t.Fatal(err)
	}
	for i, r := range v.Highlights {
		c, err := selection.Resolve(ix, v.Content, v.Anchors[i])
		if err != nil {
			t.Fatalf("resolve anchors %d: %v", i, err)
		}
		if c.Start != r.Start || c.End != r.End {
			t.Errorf("anchors %d resolve to [%d,%d), want %s", i, c.Start, c.End, r)
		}
	}
	if v.Document.Highlights != 2 {
		t.Errorf("document info reports %d highlights", v.Document.Highlights)
	}
}

func TestRemoveControl_UnknownControl(t *testing.T) {
	w := New(Options{})
	doc := load(t, w, "fox.txt", fox)
	w.InsertRange(doc, 4, 9)

	ok, err := w.RemoveControl(doc, "p0")
	if err != nil || ok {
		t.Errorf("expected (false, nil) for a non-control node, got (%v, %v)", ok, err)
	}
	if _, err := w.RemoveControl("missing", "h1.x"); !errors.Is(err, ErrUnknownDocument) {
		t.Errorf("expected ErrUnknownDocument, got %v", err)
	}
}
