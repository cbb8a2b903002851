package server

import (
	"context"
	"net/http"

	"github.com/google/uuid"
	"github.com/jonathan/talent-matcher/internal/server/middleware"
	"github.com/jonathan/talent-matcher/internal/store"
	"github.com/jonathan/talent-matcher/internal/types"
	"go.uber.org/zap"
)

// handleCreateCandidate stores a new candidate
func (s *Server) handleCreateCandidate(w http.ResponseWriter, r *http.Request) {
	var req types.CreateCandidateRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.errorResponse(w, http.StatusBadRequest, err.Error())
		return
	}

	c, err := s.svc.CreateCandidate(r.Context(), &req)
	if err != nil {
		s.serviceError(w, r, err)
		return
	}

	setETag(w, c.Version)
	s.jsonResponse(w, http.StatusCreated, c)
}

// handleListCandidates lists candidates with an optional status filter
func (s *Server) handleListCandidates(w http.ResponseWriter, r *http.Request) {
	filter := store.CandidateFilter{}
	if status := r.URL.Query().Get("status"); status != "" {
		filter.Status = types.CandidateStatus(status)
		if !filter.Status.Valid() {
			s.errorResponse(w, http.StatusBadRequest, "Invalid status filter")
			return
		}
	}

	candidates, err := s.svc.ListCandidates(r.Context(), filter)
	if err != nil {
		s.serviceError(w, r, err)
		return
	}

	s.jsonResponse(w, http.StatusOK, paginate(r, candidates))
}

// handleGetCandidate retrieves a candidate by its ID
func (s *Server) handleGetCandidate(w http.ResponseWriter, r *http.Request) {
	id, ok := s.pathID(w, r, "id", "candidate")
	if !ok {
		return
	}

	c, err := s.svc.GetCandidate(r.Context(), id)
	if err != nil {
		s.serviceError(w, r, err)
		return
	}

	setETag(w, c.Version)
	s.jsonResponse(w, http.StatusOK, c)
}

// handleUpdateCandidate edits a candidate. A status change is an operator
// action and needs a token when auth is enabled.
func (s *Server) handleUpdateCandidate(w http.ResponseWriter, r *http.Request) {
	id, ok := s.pathID(w, r, "id", "candidate")
	if !ok {
		return
	}
	expected, err := expectedVersion(r)
	if err != nil {
		s.errorResponse(w, http.StatusBadRequest, err.Error())
		return
	}

	var req types.UpdateCandidateRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.errorResponse(w, http.StatusBadRequest, err.Error())
		return
	}

	update := func(w http.ResponseWriter, r *http.Request) {
		c, err := s.svc.UpdateCandidate(r.Context(), id, expected, &req)
		if err != nil {
			s.serviceError(w, r, err)
			return
		}
		setETag(w, c.Version)
		s.jsonResponse(w, http.StatusOK, c)
	}

	if req.Status != nil {
		s.operator(update).ServeHTTP(w, r)
		return
	}
	update(w, r)
}

// handleDeleteCandidate removes a candidate and its resumes
func (s *Server) handleDeleteCandidate(w http.ResponseWriter, r *http.Request) {
	id, ok := s.pathID(w, r, "id", "candidate")
	if !ok {
		return
	}

	if err := s.svc.DeleteCandidate(r.Context(), id); err != nil {
		s.serviceError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// handleShortlist moves a candidate to shortlisted
func (s *Server) handleShortlist(w http.ResponseWriter, r *http.Request) {
	s.handleTransition(w, r, "shortlist", s.svc.Shortlist)
}

// handleReject moves a candidate to rejected
func (s *Server) handleReject(w http.ResponseWriter, r *http.Request) {
	s.handleTransition(w, r, "reject", s.svc.Reject)
}

// handleReset moves a candidate back to new
func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	s.handleTransition(w, r, "reset", s.svc.Reset)
}

func (s *Server) handleTransition(w http.ResponseWriter, r *http.Request, action string, apply func(ctx context.Context, id uuid.UUID) (*types.Candidate, error)) {
	id, ok := s.pathID(w, r, "id", "candidate")
	if !ok {
		return
	}

	c, err := apply(r.Context(), id)
	if err != nil {
		s.serviceError(w, r, err)
		return
	}

	s.logOperatorAction(r, action, id)
	setETag(w, c.Version)
	s.jsonResponse(w, http.StatusOK, c)
}

// handleSendEmail renders a template for the candidate and dispatches it
func (s *Server) handleSendEmail(w http.ResponseWriter, r *http.Request) {
	id, ok := s.pathID(w, r, "id", "candidate")
	if !ok {
		return
	}

	var req types.SendEmailRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.errorResponse(w, http.StatusBadRequest, err.Error())
		return
	}

	res, err := s.svc.SendEmail(r.Context(), id, &req)
	if err != nil {
		s.serviceError(w, r, err)
		return
	}

	s.logOperatorAction(r, "email", id)
	s.jsonResponse(w, http.StatusOK, res)
}

func (s *Server) logOperatorAction(r *http.Request, action string, candidateID uuid.UUID) {
	fields := []zap.Field{zap.String("action", action), zap.String("candidate_id", candidateID.String())}
	if op, err := middleware.GetOperator(r); err == nil {
		fields = append(fields, zap.String("operator", op))
	}
	s.log.Info("operator action", fields...)
}
