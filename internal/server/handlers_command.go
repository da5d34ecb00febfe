package server

import (
	"encoding/json"
	"net/http"

	"github.com/kurobon/workbench/internal/git"
)

type CommandRequest struct {
	Command string `json:"command"`
}

func (s *Server) handleExecCommand(w http.ResponseWriter, r *http.Request) {
	var req CommandRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	log := s.log.With().Str("request_id", requestIDFrom(r.Context())).Logger()
	log.Info().Str("cmd", req.Command).Msg("command received")

	cmdName, _ := git.ParseCommand(req.Command)
	if cmdName == "" {
		s.respondJSON(w, http.StatusOK, map[string]string{"output": ""})
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	output, err := git.Run(r.Context(), s.project, req.Command)
	if err != nil {
		log.Warn().Err(err).Str("cmd", cmdName).Msg("command failed")
		s.respondJSON(w, http.StatusOK, map[string]string{"error": err.Error()})
		return
	}

	s.respondJSON(w, http.StatusOK, map[string]string{"output": output})
}

func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.project.Refresh(); err != nil {
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.respondJSON(w, http.StatusOK, buildStateView(s.project))
}
