// Package server exposes the workspace boundary to the desktop frontend as a
// local JSON API.
//
// Requests are served concurrently. Two simultaneous creates of the same
// project folder are not serialised: one wins and the other reports
// already_exists, or fails while copying if both passed the existence check.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"gamegrove/internal/workspace"
	"gamegrove/pkg/listing"
	"gamegrove/pkg/project"
	"gamegrove/pkg/template"
)

// Service is the workspace boundary served over HTTP.
type Service interface {
	ListWorkspace(order listing.SortOrder) ([]listing.FolderEntry, error)
	ListDefault(order listing.SortOrder) ([]listing.FolderEntry, error)
	CreateProject(parent, name, category string) (string, error)
	OpenInEditor(ctx context.Context, path string) error
	OpenInBrowser(ctx context.Context, path string) error
	Templates() []template.TemplateInfo
}

type HTTPServer struct {
	addr         string
	router       *chi.Mux
	service      Service
	defaultOrder listing.SortOrder
	server       *http.Server
}

func NewHTTPServer(addr string, service Service, defaultOrder listing.SortOrder) *HTTPServer {
	if defaultOrder == "" {
		defaultOrder = listing.SortByName
	}
	s := &HTTPServer{
		addr:         addr,
		router:       chi.NewRouter(),
		service:      service,
		defaultOrder: defaultOrder,
	}
	s.registerRoutes()
	return s
}

func (s *HTTPServer) registerRoutes() {
	s.router.Use(middleware.Recoverer)
	s.router.Use(requestLogger)

	s.router.Get("/health", s.handleHealth)
	s.router.Route("/api/v1", func(r chi.Router) {
		r.Get("/folders", s.handleListFolders)
		r.Get("/templates", s.handleTemplates)
		r.Post("/projects", s.handleCreateProject)
		r.Post("/projects/open", s.handleOpenProject)
	})
}

func (s *HTTPServer) Handler() http.Handler {
	return s.router
}

func (s *HTTPServer) Start() error {
	s.server = &http.Server{
		Addr:              s.addr,
		Handler:           s.router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      5 * time.Minute,
	}
	slog.Info("http bridge listening", "addr", s.addr)
	return s.server.ListenAndServe()
}

func (s *HTTPServer) Stop() error {
	if s.server == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	return s.server.Shutdown(ctx)
}

func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		slog.Debug("http request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"duration", time.Since(start))
	})
}

func (s *HTTPServer) handleHealth(w http.ResponseWriter, r *http.Request) {
	WriteJSON(w, http.StatusOK, map[string]string{
		"status": "healthy",
		"time":   time.Now().Format(time.RFC3339),
	})
}

func (s *HTTPServer) handleListFolders(w http.ResponseWriter, r *http.Request) {
	order := s.defaultOrder
	if v := r.URL.Query().Get("order"); v != "" {
		parsed, err := listing.ParseSortOrder(v)
		if err != nil {
			writeError(w, http.StatusBadRequest, errorResponse{Error: err.Error(), Kind: "invalid_order"})
			return
		}
		order = parsed
	}

	var entries []listing.FolderEntry
	var err error
	switch root := r.URL.Query().Get("root"); root {
	case "", "workspace":
		entries, err = s.service.ListWorkspace(order)
	case "default":
		entries, err = s.service.ListDefault(order)
	default:
		writeError(w, http.StatusBadRequest, errorResponse{Error: "unknown root " + root, Kind: "invalid_root"})
		return
	}
	if err != nil {
		writeServiceError(w, err)
		return
	}

	WriteJSON(w, http.StatusOK, entries)
}

type templateResponse struct {
	Category     string   `json:"category"`
	Path         string   `json:"path,omitempty"`
	Found        bool     `json:"found"`
	CheckedPaths []string `json:"checkedPaths,omitempty"`
}

func (s *HTTPServer) handleTemplates(w http.ResponseWriter, r *http.Request) {
	infos := s.service.Templates()
	out := make([]templateResponse, 0, len(infos))
	for _, info := range infos {
		out = append(out, templateResponse{
			Category:     string(info.Category),
			Path:         info.Path,
			Found:        info.Err == nil,
			CheckedPaths: project.CheckedPaths(info.Err),
		})
	}
	WriteJSON(w, http.StatusOK, out)
}

type createProjectRequest struct {
	Parent   string `json:"parent"`
	Name     string `json:"name"`
	Category string `json:"category"`
}

type createProjectResponse struct {
	Path string `json:"path"`
}

func (s *HTTPServer) handleCreateProject(w http.ResponseWriter, r *http.Request) {
	var req createProjectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, errorResponse{Error: "invalid request body", Kind: "invalid_request"})
		return
	}

	path, err := s.service.CreateProject(req.Parent, req.Name, req.Category)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	WriteJSON(w, http.StatusCreated, createProjectResponse{Path: path})
}

type openProjectRequest struct {
	Path   string `json:"path"`
	Target string `json:"target"`
}

func (s *HTTPServer) handleOpenProject(w http.ResponseWriter, r *http.Request) {
	var req openProjectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, errorResponse{Error: "invalid request body", Kind: "invalid_request"})
		return
	}

	var err error
	switch req.Target {
	case "", "editor":
		err = s.service.OpenInEditor(r.Context(), req.Path)
	case "browser":
		err = s.service.OpenInBrowser(r.Context(), req.Path)
	default:
		writeError(w, http.StatusBadRequest, errorResponse{Error: "unknown target " + req.Target, Kind: "invalid_target"})
		return
	}
	if err != nil {
		writeServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

type errorResponse struct {
	Error        string   `json:"error"`
	Kind         string   `json:"kind"`
	Path         string   `json:"path,omitempty"`
	CheckedPaths []string `json:"checkedPaths,omitempty"`
}

func writeServiceError(w http.ResponseWriter, err error) {
	resp := errorResponse{
		Error:        workspace.Message(err),
		Kind:         kindFor(err),
		CheckedPaths: project.CheckedPaths(err),
	}
	var perr *project.Error
	if errors.As(err, &perr) {
		resp.Path = perr.Path
	}

	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		slog.Error("request failed", "error", err)
	}
	writeError(w, status, resp)
}

func kindFor(err error) string {
	switch {
	case errors.Is(err, workspace.ErrRelativePath):
		return "relative_path"
	case errors.Is(err, workspace.ErrNotAProject):
		return "not_a_project"
	case errors.Is(err, workspace.ErrNoEntryPage):
		return "no_entry_page"
	}
	return project.Kind(err)
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, project.ErrInvalidCategory),
		errors.Is(err, project.ErrInvalidName),
		errors.Is(err, project.ErrInvalidParent),
		errors.Is(err, workspace.ErrRelativePath),
		errors.Is(err, listing.ErrUnknownOrder):
		return http.StatusBadRequest
	case errors.Is(err, project.ErrAlreadyExists):
		return http.StatusConflict
	case errors.Is(err, project.ErrTemplateNotFound),
		errors.Is(err, workspace.ErrNotAProject),
		errors.Is(err, workspace.ErrNoEntryPage):
		return http.StatusNotFound
	}
	return http.StatusInternalServerError
}

func WriteJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Warn("failed to encode response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, resp errorResponse) {
	WriteJSON(w, status, resp)
}
