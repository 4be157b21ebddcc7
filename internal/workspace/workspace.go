// Package workspace is the application controller: it owns the loaded
// documents, their highlight stores and the cross-document registry, and
// applies every mutation to both as one step.
package workspace

import (
	"crypto/sha256"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/dgallion1/docmark/internal/highlight"
	"github.com/dgallion1/docmark/internal/selection"
	"github.com/google/uuid"
)

var (
	ErrUnknownDocument   = errors.New("unknown document")
	ErrDuplicateName     = errors.New("a document with this name is already loaded")
	ErrNoCurrentDocument = errors.New("no document is open")
)

// CurrentID may be passed wherever a document ID is expected to address the
// currently open document.
const CurrentID = "current"

// Options configures a Workspace.
type Options struct {
	Policy highlight.Policy
	Scope  highlight.Scope
	Log    *slog.Logger
}

type document struct {
	id       string
	name     string
	loadedAt time.Time
	sha256   string
	store    *highlight.Store
}

// DocumentInfo is a read-only summary of a loaded document.
type DocumentInfo struct {
	ID         string    `json:"doc_id"`
	Name       string    `json:"name"`
	Length     int       `json:"length"`
	SHA256     string    `json:"sha256"`
	Highlights int       `json:"highlights"`
	LoadedAt   time.Time `json:"loaded_at"`
	Current    bool      `json:"current"`
}

// Workspace is safe for concurrent use. All mutating calls are serialized
// behind one lock, so no caller ever sees a store and the registry disagree.
type Workspace struct {
	mu       sync.Mutex
	docs     map[string]*document
	order    []string
	byName   map[string]string
	current  string
	registry *highlight.Registry
	guard    highlight.Guard
	policy   highlight.Policy
	log      *slog.Logger

	pending  []Event // guarded by mu
	draining bool    // guarded by mu

	notifyMu  sync.Mutex
	observers []observer
	nextObs   int
}

// New creates an empty workspace.
func New(opts Options) *Workspace {
	if opts.Policy == "" {
		opts.Policy = highlight.RejectOverlap
	}
	if opts.Log == nil {
		opts.Log = slog.New(slog.DiscardHandler)
	}
	return &Workspace{
		docs:     make(map[string]*document),
		byName:   make(map[string]string),
		registry: highlight.NewRegistry(),
		guard:    highlight.NewGuard(opts.Scope),
		policy:   opts.Policy,
		log:      opts.Log,
	}
}

// Policy returns the overlap policy every document store uses.
func (w *Workspace) Policy() highlight.Policy { return w.policy }

// Scope returns the duplicate-check scope.
func (w *Workspace) Scope() highlight.Scope { return w.guard.Scope() }

// LoadDocument registers content under name and returns its ID. The first
// loaded document becomes the current one.
func (w *Workspace) LoadDocument(name, content string) (string, error) {
	w.mu.Lock()
	if _, ok := w.byName[name]; ok {
		w.mu.Unlock()
		return "", fmt.Errorf("%q: %w", name, ErrDuplicateName)
	}

	doc := &document{
		id:       uuid.NewString(),
		name:     name,
		loadedAt: time.Now(),
		sha256:   contentHashHex(content),
		store:    highlight.NewStore(content, w.policy),
	}
	w.docs[doc.id] = doc
	w.byName[name] = doc.id
	w.order = append(w.order, doc.id)
	w.registry.Register(doc.id)
	if w.current == "" {
		w.current = doc.id
	}

	w.log.Info("document loaded", "doc_id", doc.id, "name", name, "bytes", len(content))
	w.unlockAndNotify(Event{Kind: DocumentLoaded, DocumentID: doc.id})
	return doc.id, nil
}

// UnloadDocument discards a document together with all its highlights.
func (w *Workspace) UnloadDocument(id string) error {
	w.mu.Lock()
	doc, err := w.lookup(id)
	if err != nil {
		w.mu.Unlock()
		return err
	}

	delete(w.docs, doc.id)
	delete(w.byName, doc.name)
	for i, d := range w.order {
		if d == doc.id {
			w.order = append(w.order[:i], w.order[i+1:]...)
			break
		}
	}
	w.registry.Unregister(doc.id)
	if w.current == doc.id {
		w.current = ""
	}

	w.log.Info("document unloaded", "doc_id", doc.id, "name", doc.name)
	w.unlockAndNotify(Event{Kind: DocumentUnloaded, DocumentID: doc.id})
	return nil
}

// Open makes id the current document.
func (w *Workspace) Open(id string) error {
	w.mu.Lock()
	doc, err := w.lookup(id)
	if err != nil {
		w.mu.Unlock()
		return err
	}
	w.current = doc.id
	w.unlockAndNotify(Event{Kind: DocumentOpened, DocumentID: doc.id})
	return nil
}

// Current returns the ID of the open document.
func (w *Workspace) Current() (string, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.current, w.current != ""
}

// Documents lists loaded documents in load order.
func (w *Workspace) Documents() []DocumentInfo {
	w.mu.Lock()
	defer w.mu.Unlock()
	out := make([]DocumentInfo, 0, len(w.order))
	for _, id := range w.order {
		out = append(out, w.info(w.docs[id]))
	}
	return out
}

// Document returns the summary and content of one document.
func (w *Workspace) Document(id string) (DocumentInfo, string, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	doc, err := w.lookup(id)
	if err != nil {
		return DocumentInfo{}, "", err
	}
	return w.info(doc), doc.store.Content(), nil
}

// ListHighlights returns the document's ranges sorted by start.
func (w *Workspace) ListHighlights(id string) ([]highlight.Range, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	doc, err := w.lookup(id)
	if err != nil {
		return nil, err
	}
	return doc.store.List(), nil
}

// Segments returns the render partition of the document's content.
func (w *Workspace) Segments(id string) ([]highlight.Segment, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	doc, err := w.lookup(id)
	if err != nil {
		return nil, err
	}
	return highlight.Segments(doc.store.Content(), doc.store.List()), nil
}

// View is a consistent snapshot of one document: everything a view needs
// to render it, taken under a single lock.
type View struct {
	Document   DocumentInfo          `json:"document"`
	Content    string                `json:"content"`
	Highlights []highlight.Range     `json:"highlights"`
	Segments   []highlight.Segment   `json:"segments"`
	Tree       *selection.Node       `json:"tree"`
	Anchors    []selection.Selection `json:"anchors"`
}

// View returns a snapshot of the document. Anchors[i] addresses
// Highlights[i] in Tree.
func (w *Workspace) View(id string) (View, error) {
	w.mu.Lock()
	doc, err := w.lookup(id)
	if err != nil {
		w.mu.Unlock()
		return View{}, err
	}
	v := View{
		Document:   w.info(doc),
		Content:    doc.store.Content(),
		Highlights: doc.store.List(),
	}
	w.mu.Unlock()

	v.Segments = highlight.Segments(v.Content, v.Highlights)
	v.Tree = selection.BuildRenderTree(v.Segments)
	ix, err := selection.NewIndex(v.Tree)
	if err != nil {
		return View{}, err
	}
	v.Anchors = selection.Anchors(ix, v.Highlights)
	return v, nil
}

// RenderTree returns the segments and the node tree a view renders from
// them. Selections passed to InsertHighlight are anchored in this tree.
func (w *Workspace) RenderTree(id string) (*selection.Node, []highlight.Segment, error) {
	segs, err := w.Segments(id)
	if err != nil {
		return nil, nil, err
	}
	return selection.BuildRenderTree(segs), segs, nil
}

// ExportAll returns every committed highlight ordered by document load
// order, then start offset.
func (w *Workspace) ExportAll() []highlight.Entry {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.registry.All()
}

// ConcatenatedText joins all highlighted texts in export order.
func (w *Workspace) ConcatenatedText() string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.registry.ConcatenatedText()
}

func (w *Workspace) info(doc *document) DocumentInfo {
	return DocumentInfo{
		ID:         doc.id,
		Name:       doc.name,
		Length:     len(doc.store.Content()),
		SHA256:     doc.sha256,
		Highlights: doc.store.Len(),
		LoadedAt:   doc.loadedAt,
		Current:    doc.id == w.current,
	}
}

// contentHashHex computes SHA-256 of content and returns hex string.
func contentHashHex(content string) string {
	h := sha256.Sum256([]byte(content))
	return fmt.Sprintf("%x", h[:])
}

// lookup must be called with w.mu held.
func (w *Workspace) lookup(id string) (*document, error) {
	if id == CurrentID {
		if w.current == "" {
			return nil, ErrNoCurrentDocument
		}
		id = w.current
	}
	doc, ok := w.docs[id]
	if !ok {
		return nil, fmt.Errorf("%q: %w", id, ErrUnknownDocument)
	}
	return doc, nil
}
