package server

import (
	"net/http"

	"github.com/jonathan/talent-matcher/internal/email"
	"github.com/jonathan/talent-matcher/internal/types"
)

// TemplateResponse is an email template plus the placeholder names a sender
// can fill through the send request variables.
type TemplateResponse struct {
	*types.EmailTemplate
	Placeholders []string `json:"placeholders"`
}

func newTemplateResponse(tpl *types.EmailTemplate) TemplateResponse {
	return TemplateResponse{EmailTemplate: tpl, Placeholders: email.Placeholders(tpl)}
}

// handleCreateTemplate stores an email template
func (s *Server) handleCreateTemplate(w http.ResponseWriter, r *http.Request) {
	var req types.CreateEmailTemplateRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.errorResponse(w, http.StatusBadRequest, err.Error())
		return
	}

	tpl, err := s.svc.CreateTemplate(r.Context(), &req)
	if err != nil {
		s.serviceError(w, r, err)
		return
	}

	setETag(w, tpl.Version)
	s.jsonResponse(w, http.StatusCreated, newTemplateResponse(tpl))
}

// handleListTemplates lists every email template
func (s *Server) handleListTemplates(w http.ResponseWriter, r *http.Request) {
	templates, err := s.svc.ListTemplates(r.Context())
	if err != nil {
		s.serviceError(w, r, err)
		return
	}

	items := make([]TemplateResponse, len(templates))
	for i, tpl := range templates {
		items[i] = newTemplateResponse(tpl)
	}
	s.jsonResponse(w, http.StatusOK, paginate(r, items))
}

// handleGetTemplate retrieves an email template by its ID
func (s *Server) handleGetTemplate(w http.ResponseWriter, r *http.Request) {
	id, ok := s.pathID(w, r, "id", "email template")
	if !ok {
		return
	}

	tpl, err := s.svc.GetTemplate(r.Context(), id)
	if err != nil {
		s.serviceError(w, r, err)
		return
	}

	setETag(w, tpl.Version)
	s.jsonResponse(w, http.StatusOK, newTemplateResponse(tpl))
}

// handleUpdateTemplate edits an email template
func (s *Server) handleUpdateTemplate(w http.ResponseWriter, r *http.Request) {
	id, ok := s.pathID(w, r, "id", "email template")
	if !ok {
		return
	}
	expected, err := expectedVersion(r)
	if err != nil {
		s.errorResponse(w, http.StatusBadRequest, err.Error())
		return
	}

	var req types.UpdateEmailTemplateRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.errorResponse(w, http.StatusBadRequest, err.Error())
		return
	}

	tpl, err := s.svc.UpdateTemplate(r.Context(), id, expected, &req)
	if err != nil {
		s.serviceError(w, r, err)
		return
	}

	setETag(w, tpl.Version)
	s.jsonResponse(w, http.StatusOK, newTemplateResponse(tpl))
}

// handleDeleteTemplate removes an email template
func (s *Server) handleDeleteTemplate(w http.ResponseWriter, r *http.Request) {
	id, ok := s.pathID(w, r, "id", "email template")
	if !ok {
		return
	}

	if err := s.svc.DeleteTemplate(r.Context(), id); err != nil {
		s.serviceError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
