package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"

	"github.com/kurobon/workbench/internal/git"
	"github.com/kurobon/workbench/internal/scm"
	"github.com/kurobon/workbench/internal/state"
)

// Server exposes one project over HTTP. Every handler holds mu while it
// touches the project.
type Server struct {
	mu      sync.Mutex
	project *git.Project
	log     zerolog.Logger
	router  *mux.Router

	httpServer *http.Server
}

func NewServer(project *git.Project, log zerolog.Logger) *Server {
	s := &Server{
		project: project,
		log:     log.With().Str("component", "server").Logger(),
		router:  mux.NewRouter(),
	}
	s.routes()
	return s
}

func (s *Server) routes() {
	s.router.Use(s.requestID, s.recoverPanic)

	s.router.HandleFunc("/ping", s.handlePing).Methods(http.MethodGet)

	api := s.router.PathPrefix("/api").Subrouter()
	api.HandleFunc("/state", s.handleGetState).Methods(http.MethodGet)
	api.HandleFunc("/tree", s.handleGetTree).Methods(http.MethodGet)
	api.HandleFunc("/report/staged", s.handleReportStaged).Methods(http.MethodGet)
	api.HandleFunc("/report/untracked", s.handleReportUntracked).Methods(http.MethodGet)
	api.HandleFunc("/log", s.handleGetLog).Methods(http.MethodGet)
	api.HandleFunc("/command", s.handleExecCommand).Methods(http.MethodPost)
	api.HandleFunc("/refresh", s.handleRefresh).Methods(http.MethodPost)
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// ListenAndServe serves on addr until ctx is cancelled.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	s.httpServer = &http.Server{
		Addr:         addr,
		Handler:      s,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 5 * time.Minute,
		IdleTimeout:  120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info().Str("addr", addr).Str("project", s.project.Name()).Msg("server listening")
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	s.log.Info().Msg("server shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return s.httpServer.Shutdown(shutdownCtx)
}

// FilesChanged is the watcher callback: it reconciles the project again.
func (s *Server) FilesChanged(paths []string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.log.Debug().Strs("paths", paths).Msg("working tree changed")
	if err := s.project.Refresh(); err != nil {
		s.log.Error().Err(err).Msg("refresh after file change failed")
	}
}

func (s *Server) handlePing(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, map[string]string{
		"message": "pong",
		"system":  "workbench",
	})
}

func (s *Server) handleGetState(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.respondJSON(w, http.StatusOK, buildStateView(s.project))
}

func (s *Server) handleGetTree(w http.ResponseWriter, r *http.Request) {
	flat := r.URL.Query().Get("flat") == "true"

	s.mu.Lock()
	defer s.mu.Unlock()

	root := s.project.Tree()
	if flat {
		root = s.project.FlatTree()
	}
	s.respondJSON(w, http.StatusOK, buildTreeView(s.project, root))
}

func (s *Server) handleReportStaged(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.respondJSON(w, http.StatusOK, buildReportView(s.project.ReportStagedFiles()))
}

func (s *Server) handleReportUntracked(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.respondJSON(w, http.StatusOK, buildReportView(s.project.ReportUntrackedFiles()))
}

func (s *Server) handleGetLog(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	opts := scm.LogOptions{}
	if v := q.Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			s.respondError(w, http.StatusBadRequest, "limit must be a non-negative integer")
			return
		}
		opts.Limit = n
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if opts.Limit == 0 {
		opts.Limit = s.project.HistoryLimit()
	}

	var (
		nodes []*state.CommitLogNode
		err   error
	)
	if path := q.Get("path"); path != "" {
		nodes, err = s.project.CmdCommitLogForFile(nil, path, opts)
	} else {
		nodes, err = s.project.CmdCommitLogForRepository(nil, opts)
	}
	if err != nil {
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.respondJSON(w, http.StatusOK, buildLogView(nodes))
}

func (s *Server) respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.log.Error().Err(err).Msg("failed to encode JSON response")
	}
}

func (s *Server) respondError(w http.ResponseWriter, status int, message string) {
	s.respondJSON(w, status, map[string]string{"error": message})
}
