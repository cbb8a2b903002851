package server

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/jonathan/talent-matcher/internal/store"
	"github.com/jonathan/talent-matcher/internal/types"
)

// pathID parses a UUID path value, writing a 400 response when it is invalid.
func (s *Server) pathID(w http.ResponseWriter, r *http.Request, name, label string) (uuid.UUID, bool) {
	id, err := uuid.Parse(r.PathValue(name))
	if err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid "+label+" ID")
		return uuid.Nil, false
	}
	return id, true
}

// handleCreateJob stores a job description and schedules its summary
func (s *Server) handleCreateJob(w http.ResponseWriter, r *http.Request) {
	var req types.CreateJobRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.errorResponse(w, http.StatusBadRequest, err.Error())
		return
	}

	job, err := s.svc.CreateJob(r.Context(), &req)
	if err != nil {
		s.serviceError(w, r, err)
		return
	}

	setETag(w, job.Version)
	s.jsonResponse(w, http.StatusCreated, job)
}

// handleListJobs lists job descriptions with an optional status filter
func (s *Server) handleListJobs(w http.ResponseWriter, r *http.Request) {
	filter := store.JobFilter{}
	if status := r.URL.Query().Get("status"); status != "" {
		filter.Status = types.ProcessingStatus(status)
		if !filter.Status.Valid() {
			s.errorResponse(w, http.StatusBadRequest, "Invalid status filter")
			return
		}
	}

	jobs, err := s.svc.ListJobs(r.Context(), filter)
	if err != nil {
		s.serviceError(w, r, err)
		return
	}

	s.jsonResponse(w, http.StatusOK, paginate(r, jobs))
}

// handleGetJob retrieves a job description by its ID
func (s *Server) handleGetJob(w http.ResponseWriter, r *http.Request) {
	id, ok := s.pathID(w, r, "id", "job")
	if !ok {
		return
	}

	job, err := s.svc.GetJob(r.Context(), id)
	if err != nil {
		s.serviceError(w, r, err)
		return
	}

	setETag(w, job.Version)
	s.jsonResponse(w, http.StatusOK, job)
}

// handleUpdateJob edits a job's title, company or location
func (s *Server) handleUpdateJob(w http.ResponseWriter, r *http.Request) {
	id, ok := s.pathID(w, r, "id", "job")
	if !ok {
		return
	}
	expected, err := expectedVersion(r)
	if err != nil {
		s.errorResponse(w, http.StatusBadRequest, err.Error())
		return
	}

	var req types.UpdateJobRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.errorResponse(w, http.StatusBadRequest, err.Error())
		return
	}

	job, err := s.svc.UpdateJob(r.Context(), id, expected, &req)
	if err != nil {
		s.serviceError(w, r, err)
		return
	}

	setETag(w, job.Version)
	s.jsonResponse(w, http.StatusOK, job)
}

// handleDeleteJob removes a job description
func (s *Server) handleDeleteJob(w http.ResponseWriter, r *http.Request) {
	id, ok := s.pathID(w, r, "id", "job")
	if !ok {
		return
	}

	if err := s.svc.DeleteJob(r.Context(), id); err != nil {
		s.serviceError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
