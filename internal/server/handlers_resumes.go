package server

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/jonathan/talent-matcher/internal/store"
	"github.com/jonathan/talent-matcher/internal/types"
)

// handleCreateResume registers a resume for an existing candidate
func (s *Server) handleCreateResume(w http.ResponseWriter, r *http.Request) {
	var req types.CreateResumeRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.errorResponse(w, http.StatusBadRequest, err.Error())
		return
	}

	resume, err := s.svc.CreateResume(r.Context(), &req)
	if err != nil {
		s.serviceError(w, r, err)
		return
	}

	setETag(w, resume.Version)
	s.jsonResponse(w, http.StatusCreated, resume)
}

// handleListResumes lists resumes, optionally for one candidate or status
func (s *Server) handleListResumes(w http.ResponseWriter, r *http.Request) {
	filter := store.ResumeFilter{}
	if candidateID := r.URL.Query().Get("candidate_id"); candidateID != "" {
		id, err := uuid.Parse(candidateID)
		if err != nil {
			s.errorResponse(w, http.StatusBadRequest, "Invalid candidate_id")
			return
		}
		filter.CandidateID = id
	}
	if status := r.URL.Query().Get("status"); status != "" {
		filter.Status = types.ProcessingStatus(status)
		if !filter.Status.Valid() {
			s.errorResponse(w, http.StatusBadRequest, "Invalid status filter")
			return
		}
	}

	resumes, err := s.svc.ListResumes(r.Context(), filter)
	if err != nil {
		s.serviceError(w, r, err)
		return
	}

	s.jsonResponse(w, http.StatusOK, paginate(r, resumes))
}

// handleGetResume retrieves a resume by its ID
func (s *Server) handleGetResume(w http.ResponseWriter, r *http.Request) {
	id, ok := s.pathID(w, r, "id", "resume")
	if !ok {
		return
	}

	resume, err := s.svc.GetResume(r.Context(), id)
	if err != nil {
		s.serviceError(w, r, err)
		return
	}

	setETag(w, resume.Version)
	s.jsonResponse(w, http.StatusOK, resume)
}

// handleDeleteResume removes a resume and clears the owner's reference
func (s *Server) handleDeleteResume(w http.ResponseWriter, r *http.Request) {
	id, ok := s.pathID(w, r, "id", "resume")
	if !ok {
		return
	}

	if err := s.svc.DeleteResume(r.Context(), id); err != nil {
		s.serviceError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
