package workspace

import (
	"github.com/dgallion1/docmark/internal/highlight"
	"github.com/dgallion1/docmark/internal/selection"
)

// InsertHighlight resolves sel against the document's current render tree
// and commits the result. On any error nothing changes.
func (w *Workspace) InsertHighlight(id string, sel selection.Selection) (highlight.Range, error) {
	w.mu.Lock()
	doc, err := w.lookup(id)
	if err != nil {
		w.mu.Unlock()
		return highlight.Range{}, err
	}

	content := doc.store.Content()
	tree := selection.BuildRenderTree(highlight.Segments(content, doc.store.List()))
	ix, err := selection.NewIndex(tree)
	if err != nil {
		w.mu.Unlock()
		return highlight.Range{}, err
	}
	cand, err := selection.Resolve(ix, content, sel)
	if err != nil {
		w.mu.Unlock()
		w.log.Debug("selection rejected", "doc_id", doc.id, "error", err)
		return highlight.Range{}, err
	}
	return w.commit(doc, cand)
}

// InsertRange commits [start, end) directly, applying the same whitespace
// trimming as a selection.
func (w *Workspace) InsertRange(id string, start, end int) (highlight.Range, error) {
	w.mu.Lock()
	doc, err := w.lookup(id)
	if err != nil {
		w.mu.Unlock()
		return highlight.Range{}, err
	}
	cand, err := selection.Trim(doc.store.Content(), start, end)
	if err != nil {
		w.mu.Unlock()
		w.log.Debug("range rejected", "doc_id", doc.id, "start", start, "end", end, "error", err)
		return highlight.Range{}, err
	}
	return w.commit(doc, cand)
}

// commit runs the duplicate guard and the store's policy, then mirrors the
// change into the registry. Called with w.mu held; releases it.
func (w *Workspace) commit(doc *document, cand highlight.Candidate) (highlight.Range, error) {
	log := w.log.With("doc_id", doc.id, "start", cand.Start, "end", cand.End)

	if err := w.guard.Check(doc.id, cand, doc.store.List(), w.registry.All()); err != nil {
		w.mu.Unlock()
		log.Debug("duplicate rejected", "error", err)
		return highlight.Range{}, err
	}

	change, err := doc.store.Plan(cand.Start, cand.End)
	if err != nil {
		w.mu.Unlock()
		log.Debug("insert rejected", "policy", doc.store.Policy(), "error", err)
		return highlight.Range{}, err
	}
	// A merge commits a wider span than was selected; its text must pass too.
	if !change.Added.SameSpan(cand.Range()) {
		merged := highlight.Candidate{Start: change.Added.Start, End: change.Added.End, Text: change.Added.Text}
		if err := w.guard.Check(doc.id, merged, remaining(doc.store.List(), change.Removed), w.registry.All()); err != nil {
			w.mu.Unlock()
			log.Debug("merged duplicate rejected", "merged", change.Added.String(), "error", err)
			return highlight.Range{}, err
		}
	}
	doc.store.Apply(change)
	w.registry.Apply(doc.id, change)

	log.Info("highlight committed", "range", change.Added.String(), "replaced", len(change.Removed))

	events := make([]Event, 0, len(change.Removed)+1)
	for _, r := range change.Removed {
		events = append(events, rangeEvent(HighlightRemoved, doc.id, r))
	}
	events = append(events, rangeEvent(HighlightAdded, doc.id, change.Added))
	w.unlockAndNotify(events...)
	return change.Added, nil
}

// RemoveHighlight deletes the range spanning exactly [start, end). It
// reports false, with a nil error, when no such range exists.
func (w *Workspace) RemoveHighlight(id string, start, end int) (bool, error) {
	w.mu.Lock()
	doc, err := w.lookup(id)
	if err != nil {
		w.mu.Unlock()
		return false, err
	}
	return w.remove(doc, start, end), nil
}

// remove is called with w.mu held and releases it.
func (w *Workspace) remove(doc *document, start, end int) bool {
	r, ok := doc.store.Remove(start, end)
	if !ok {
		w.mu.Unlock()
		return false
	}
	w.registry.Remove(doc.id, r)

	w.log.Info("highlight removed", "doc_id", doc.id, "range", r.String())
	w.unlockAndNotify(rangeEvent(HighlightRemoved, doc.id, r))
	return true
}

// RemoveHighlightByText deletes every range of the document whose text
// normalizes equal to text.
func (w *Workspace) RemoveHighlightByText(id, text string) (bool, error) {
	w.mu.Lock()
	doc, err := w.lookup(id)
	if err != nil {
		w.mu.Unlock()
		return false, err
	}
	removed := doc.store.RemoveByText(text)
	if len(removed) == 0 {
		w.mu.Unlock()
		return false, nil
	}

	w.registry.RemoveText(doc.id, text)

	events := make([]Event, 0, len(removed))
	for _, r := range removed {
		events = append(events, rangeEvent(HighlightRemoved, doc.id, r))
	}

	w.log.Info("highlights removed by text", "doc_id", doc.id, "count", len(removed))
	w.unlockAndNotify(events...)
	return true, nil
}

// RemoveControl handles a click on the remove control with the given node
// ID in the document's current render tree.
func (w *Workspace) RemoveControl(id, controlID string) (bool, error) {
	w.mu.Lock()
	doc, err := w.lookup(id)
	if err != nil {
		w.mu.Unlock()
		return false, err
	}
	segs := highlight.Segments(doc.store.Content(), doc.store.List())
	r, ok := selection.RemoveTarget(segs, controlID)
	if !ok {
		w.mu.Unlock()
		return false, nil
	}
	return w.remove(doc, r.Start, r.End), nil
}

// remaining returns ranges without the spans listed in drop.
func remaining(ranges, drop []highlight.Range) []highlight.Range {
	out := make([]highlight.Range, 0, len(ranges))
	for _, r := range ranges {
		dropped := false
		for _, d := range drop {
			if r.SameSpan(d) {
				dropped = true
				break
			}
		}
		if !dropped {
			out = append(out, r)
		}
	}
	return out
}
