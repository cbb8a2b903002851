package server

import (
	"net/http"
)

// handleMatch scores one candidate against one job
func (s *Server) handleMatch(w http.ResponseWriter, r *http.Request) {
	candidateID, ok := s.pathID(w, r, "candidate_id", "candidate")
	if !ok {
		return
	}
	jobID, ok := s.pathID(w, r, "job_id", "job")
	if !ok {
		return
	}

	res, err := s.svc.Match(r.Context(), candidateID, jobID)
	if err != nil {
		s.serviceError(w, r, err)
		return
	}

	s.jsonResponse(w, http.StatusOK, res)
}

// handleMatchAll ranks every candidate against a job
func (s *Server) handleMatchAll(w http.ResponseWriter, r *http.Request) {
	jobID, ok := s.pathID(w, r, "id", "job")
	if !ok {
		return
	}

	ranking, err := s.svc.MatchAll(r.Context(), jobID)
	if err != nil {
		s.serviceError(w, r, err)
		return
	}

	s.jsonResponse(w, http.StatusOK, ranking)
}
