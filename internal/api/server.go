package api

import (
	"log/slog"
	"net/http"

	"github.com/dgallion1/docmark/internal/config"
	"github.com/dgallion1/docmark/internal/workspace"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// Server is the HTTP API server for docmark.
type Server struct {
	router chi.Router
	ws     *workspace.Workspace
	hub    *Hub
	log    *slog.Logger
	cfg    config.Config
}

// NewServer creates and configures the HTTP server. hub may be nil, in which
// case the event feed is not served.
func NewServer(ws *workspace.Workspace, hub *Hub, log *slog.Logger, cfg config.Config) *Server {
	s := &Server{
		ws:  ws,
		hub: hub,
		log: log,
		cfg: cfg,
	}
	s.setupRoutes()
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) setupRoutes() {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(RequestLogger(s.log))

	// Public endpoints.
	r.Get("/health", s.handleHealth)

	// Authenticated endpoints.
	r.Group(func(r chi.Router) {
		r.Use(AuthMiddleware(s.cfg.DocmarkAPIKey, s.log))

		r.Post("/api/documents", s.handleUpload)
		r.Get("/api/documents", s.handleListDocuments)
		r.Route("/api/documents/{docID}", func(r chi.Router) {
			r.Get("/", s.handleGetDocument)
			r.Delete("/", s.handleDeleteDocument)
			r.Put("/open", s.handleOpenDocument)
			r.Get("/segments", s.handleSegments)
			r.Get("/highlights", s.handleListHighlights)
			r.Post("/highlights", s.handleInsertHighlight)
			r.Delete("/highlights", s.handleRemoveHighlight)
			r.Post("/highlights/remove-by-text", s.handleRemoveByText)
		})

		r.Get("/api/highlights", s.handleExport)
		if s.hub != nil {
			r.Get("/api/events", s.hub.ServeWS)
		}
	})

	s.router = r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	resp := map[string]any{
		"status":    "ok",
		"documents": len(s.ws.Documents()),
		"policy":    s.ws.Policy(),
		"scope":     s.ws.Scope(),
	}
	if s.hub != nil {
		resp["event_clients"] = s.hub.Clients()
	}
	writeJSON(w, http.StatusOK, resp)
}
