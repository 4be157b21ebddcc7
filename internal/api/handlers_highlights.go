package api

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/dgallion1/docmark/internal/highlight"
	"github.com/dgallion1/docmark/internal/selection"
	"github.com/go-chi/chi/v5"
)

// insertRequest carries either a selection anchored in the document's render
// tree or a direct byte range.
type insertRequest struct {
	Start *selection.Anchor `json:"start,omitempty"`
	End   *selection.Anchor `json:"end,omitempty"`
	Range *struct {
		Start int `json:"start"`
		End   int `json:"end"`
	} `json:"range,omitempty"`
}

func (s *Server) handleInsertHighlight(w http.ResponseWriter, r *http.Request) {
	docID := chi.URLParam(r, "docID")

	var req insertRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 64<<10)).Decode(&req); err != nil {
		jsonError(w, "invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}

	var (
		added highlight.Range
		err   error
	)
	switch {
	case req.Start != nil && req.End != nil:
		added, err = s.ws.InsertHighlight(docID, selection.Selection{Start: *req.Start, End: *req.End})
	case req.Range != nil:
		added, err = s.ws.InsertRange(docID, req.Range.Start, req.Range.End)
	default:
		jsonError(w, "either start and end anchors or range is required", http.StatusBadRequest)
		return
	}
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"highlight": added})
}

func (s *Server) handleListHighlights(w http.ResponseWriter, r *http.Request) {
	docID := chi.URLParam(r, "docID")
	ranges, err := s.ws.ListHighlights(docID)
	if err != nil {
		writeError(w, err)
		return
	}
	if ranges == nil {
		ranges = []highlight.Range{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"highlights": ranges})
}

// handleRemoveHighlight removes by exact span (?start=&end=) or by the node
// ID of a rendered remove control (?control=).
func (s *Server) handleRemoveHighlight(w http.ResponseWriter, r *http.Request) {
	docID := chi.URLParam(r, "docID")
	q := r.URL.Query()

	var (
		ok  bool
		err error
	)
	if control := q.Get("control"); control != "" {
		ok, err = s.ws.RemoveControl(docID, control)
	} else {
		start, serr := strconv.Atoi(q.Get("start"))
		end, eerr := strconv.Atoi(q.Get("end"))
		if serr != nil || eerr != nil {
			jsonError(w, "integer start and end query parameters are required", http.StatusBadRequest)
			return
		}
		ok, err = s.ws.RemoveHighlight(docID, start, end)
	}
	if err != nil {
		writeError(w, err)
		return
	}
	if !ok {
		writeError(w, highlight.ErrNotFound)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"removed": true})
}

func (s *Server) handleRemoveByText(w http.ResponseWriter, r *http.Request) {
	docID := chi.URLParam(r, "docID")

	var req struct {
		Text string `json:"text"`
	}
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 64<<10)).Decode(&req); err != nil {
		jsonError(w, "invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}
	if req.Text == "" {
		jsonError(w, "text is required", http.StatusBadRequest)
		return
	}

	ok, err := s.ws.RemoveHighlightByText(docID, req.Text)
	if err != nil {
		writeError(w, err)
		return
	}
	if !ok {
		writeError(w, highlight.ErrNotFound)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"removed": true})
}

// handleExport returns every highlight across documents in load order.
func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	entries := s.ws.ExportAll()
	if entries == nil {
		entries = []highlight.Entry{}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"highlights": entries,
		"text":       s.ws.ConcatenatedText(),
	})
}
