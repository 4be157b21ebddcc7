package workspace

import (
	"time"

	"github.com/dgallion1/docmark/internal/highlight"
)

// EventKind names a workspace change.
type EventKind string

const (
	DocumentLoaded   EventKind = "document_loaded"
	DocumentUnloaded EventKind = "document_unloaded"
	DocumentOpened   EventKind = "document_opened"
	HighlightAdded   EventKind = "highlight_added"
	HighlightRemoved EventKind = "highlight_removed"
)

// Event is delivered to subscribers after a change has been fully applied.
type Event struct {
	Kind       EventKind        `json:"kind"`
	DocumentID string           `json:"doc_id"`
	Range      *highlight.Range `json:"range,omitempty"`
	At         time.Time        `json:"at"`
}

func rangeEvent(kind EventKind, docID string, r highlight.Range) Event {
	return Event{Kind: kind, DocumentID: docID, Range: &r}
}

type observer struct {
	id int
	fn func(Event)
}

// Subscribe registers fn for every subsequent event and returns a function
// that removes it. Events arrive in commit order. fn may call back into the
// workspace; events caused by such calls are delivered after the current ones.
func (w *Workspace) Subscribe(fn func(Event)) (cancel func()) {
	w.notifyMu.Lock()
	defer w.notifyMu.Unlock()
	id := w.nextObs
	w.nextObs++
	w.observers = append(w.observers, observer{id: id, fn: fn})
	return func() {
		w.notifyMu.Lock()
		defer w.notifyMu.Unlock()
		for i, o := range w.observers {
			if o.id == id {
				w.observers = append(w.observers[:i:i], w.observers[i+1:]...)
				return
			}
		}
	}
}

// unlockAndNotify queues events, releases w.mu and, unless another call is
// already draining the queue, delivers everything queued in order. w.mu is
// never held while observers run.
func (w *Workspace) unlockAndNotify(events ...Event) {
	now := time.Now()
	for i := range events {
		events[i].At = now
	}
	w.pending = append(w.pending, events...)
	if w.draining {
		w.mu.Unlock()
		return
	}

	w.draining = true
	for len(w.pending) > 0 {
		batch := w.pending
		w.pending = nil
		w.mu.Unlock()

		w.notifyMu.Lock()
		observers := append([]observer(nil), w.observers...)
		w.notifyMu.Unlock()

		for _, ev := range batch {
			for _, o := range observers {
				w.deliver(o, ev)
			}
		}
		w.mu.Lock()
	}
	w.draining = false
	w.mu.Unlock()
}

// deliver runs one observer. A panicking observer is logged and skipped so
// the remaining observers and later events still go out.
func (w *Workspace) deliver(o observer, ev Event) {
	defer func() {
		if p := recover(); p != nil {
			w.log.Error("observer panicked", "observer", o.id, "kind", ev.Kind, "doc_id", ev.DocumentID, "panic", p)
		}
	}()
	o.fn(ev)
}
