// Package web exposes the timeline engine over HTTP: JSON CRUD for
// projects, tracks and keyframes, a composition query, and a websocket
// transport for live playhead sync.
package web

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sync"

	"montage/compose"
	"montage/media"
	"montage/playback"
	"montage/timeline"
	"montage/util"
)

// Server holds the shared collaborators and the per-project edit sessions.
type Server struct {
	DB         *util.Database
	Processing *media.ProcessingClient
	Resolver   *media.Resolver

	mu       sync.Mutex
	sessions map[string]*session
}

// session is one project's loaded store plus its preview transport.
type session struct {
	store      *timeline.Store
	controller *playback.Controller
}

// NewServer creates the API server.
func NewServer(db *util.Database, processing *media.ProcessingClient) *Server {
	return &Server{
		DB:         db,
		Processing: processing,
		Resolver:   media.NewResolver(),
		sessions:   make(map[string]*session),
	}
}

// SetupRoutes registers all API routes on the mux.
func (s *Server) SetupRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/projects", s.handleListProjects)
	mux.HandleFunc("POST /api/projects", s.handleCreateProject)
	mux.HandleFunc("GET /api/projects/{id}", s.handleGetProject)
	mux.HandleFunc("PATCH /api/projects/{id}", s.handleUpdateProject)
	mux.HandleFunc("DELETE /api/projects/{id}", s.handleDeleteProject)
	mux.HandleFunc("POST /api/projects/{id}/tracks", s.handleAddTrack)
	mux.HandleFunc("PATCH /api/projects/{id}/tracks/{trackId}", s.handleUpdateTrack)
	mux.HandleFunc("DELETE /api/projects/{id}/tracks/{trackId}", s.handleRemoveTrack)
	mux.HandleFunc("POST /api/projects/{id}/keyframes", s.handleAddKeyframe)
	mux.HandleFunc("PATCH /api/projects/{id}/keyframes/{keyframeId}", s.handleUpdateKeyframe)
	mux.HandleFunc("DELETE /api/projects/{id}/keyframes/{keyframeId}", s.handleRemoveKeyframe)
	mux.HandleFunc("POST /api/projects/{id}/keyframes/{keyframeId}/move", s.handleMoveKeyframe)
	mux.HandleFunc("GET /api/projects/{id}/composition", s.handleComposition)
	mux.HandleFunc("GET /api/projects/{id}/sync", s.handleSync)
}

// Serve runs the HTTP server on the given port.
func (s *Server) Serve(port string) error {
	mux := http.NewServeMux()
	s.SetupRoutes(mux)
	fmt.Printf("Server starting on port %s...\n", port)
	return http.ListenAndServe(":"+port, mux)
}

// session loads (or returns the cached) edit session for a project.
func (s *Server) session(projectID string) (*session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if sess, ok := s.sessions[projectID]; ok {
		return sess, nil
	}
	project, tracks, keyframes, err := s.DB.LoadProject(projectID)
	if err != nil {
		return nil, err
	}
	store, err := timeline.NewStore(project, tracks, keyframes, s.DB)
	if err != nil {
		return nil, err
	}
	sess := &session{
		store:      store,
		controller: playback.NewController(nil, project.Duration),
	}
	s.sessions[projectID] = sess
	return sess, nil
}

func (s *Server) dropSession(projectID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if sess, ok := s.sessions[projectID]; ok {
		sess.controller.Close()
		delete(s.sessions, projectID)
	}
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

func (s *Server) handleListProjects(w http.ResponseWriter, r *http.Request) {
	projects, err := s.DB.ListProjects()
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	if projects == nil {
		projects = []timeline.Project{}
	}
	writeJSON(w, http.StatusOK, projects)
}

func (s *Server) handleCreateProject(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Title       string               `json:"title"`
		AspectRatio timeline.AspectRatio `json:"aspect_ratio"`
		Width       *int                 `json:"width"`
		Height      *int                 `json:"height"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("invalid JSON: %v", err))
		return
	}
	if req.Title == "" {
		writeError(w, http.StatusBadRequest, fmt.Errorf("title is required"))
		return
	}
	if req.AspectRatio == "" {
		req.AspectRatio = timeline.AspectWide
	}
	project := timeline.NewProject(req.Title, req.AspectRatio)
	project.Width = req.Width
	project.Height = req.Height
	if err := project.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if err := s.DB.SaveProject(project); err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusCreated, project)
}

func (s *Server) handleGetProject(w http.ResponseWriter, r *http.Request) {
	sess, err := s.session(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusNotFound, err)
		return
	}
	project, tracks, keyframes := sess.store.Snapshot()
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"project":   project,
		"tracks":    tracks,
		"keyframes": keyframes,
	})
}

func (s *Server) handleUpdateProject(w http.ResponseWriter, r *http.Request) {
	sess, err := s.session(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusNotFound, err)
		return
	}
	var req struct {
		Title       *string               `json:"title"`
		Description *string               `json:"description"`
		Duration    *int64                `json:"duration"`
		Width       *int                  `json:"width"`
		Height      *int                  `json:"height"`
		AspectRatio *timeline.AspectRatio `json:"aspect_ratio"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("invalid JSON: %v", err))
		return
	}
	update := timeline.ProjectUpdate{
		Title:       req.Title,
		Description: req.Description,
		Duration:    req.Duration,
		Width:       req.Width,
		Height:      req.Height,
		AspectRatio: req.AspectRatio,
	}
	if err := sess.store.UpdateProject(update); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if req.Duration != nil {
		sess.controller.SetDuration(*req.Duration)
	}
	writeJSON(w, http.StatusOK, sess.store.Project())
}

func (s *Server) handleDeleteProject(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	s.dropSession(id)
	if err := s.DB.DeleteProject(id); err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleComposition(w http.ResponseWriter, r *http.Request) {
	sess, err := s.session(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusNotFound, err)
		return
	}
	project, tracks, keyframes := sess.store.Snapshot()
	comp := compose.Resolve(project, tracks, keyframes)
	writeJSON(w, http.StatusOK, comp)
}
