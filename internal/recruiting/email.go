package recruiting

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jonathan/talent-matcher/internal/email"
	"github.com/jonathan/talent-matcher/internal/lifecycle"
	"github.com/jonathan/talent-matcher/internal/types"
	"go.uber.org/zap"
)

// EmailResult is the outcome of a successful SendEmail.
type EmailResult struct {
	Candidate *types.Candidate `json:"candidate"`
	Message   email.Message    `json:"message"`
}

// SendEmail renders the template for the candidate and dispatches it. The
// candidate becomes contacted only after the dispatcher accepts the message.
func (s *Service) SendEmail(ctx context.Context, candidateID uuid.UUID, req *types.SendEmailRequest) (*EmailResult, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	templateID, err := uuid.Parse(req.TemplateID)
	if err != nil {
		return nil, &types.ValidationError{Field: "templateId", Message: "must be a valid UUID"}
	}

	candidate, err := s.store.GetCandidate(ctx, candidateID)
	if err != nil {
		return nil, err
	}
	tpl, err := s.store.GetTemplate(ctx, templateID)
	if err != nil {
		return nil, err
	}

	msg := email.Render(tpl, candidate, req.Variables)
	if err := s.dispatcher.Send(ctx, msg); err != nil {
		s.log.Warn("email dispatch failed",
			zap.String("candidate_id", candidateID.String()),
			zap.String("template_id", templateID.String()),
			zap.Error(err))
		return nil, fmt.Errorf("%w: %v", ErrDeliveryFailed, err)
	}

	updated, err := s.transition(ctx, candidateID, lifecycle.EmailSent())
	if err != nil {
		return nil, fmt.Errorf("email sent but status update failed: %w", err)
	}
	return &EmailResult{Candidate: updated, Message: msg}, nil
}

// CreateTemplate stores an email template.
func (s *Service) CreateTemplate(ctx context.Context, req *types.CreateEmailTemplateRequest) (*types.EmailTemplate, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	tpl, err := s.store.CreateTemplate(ctx, &types.EmailTemplate{
		Name:    req.Name,
		Subject: req.Subject,
		Body:    req.Body,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create email template: %w", err)
	}
	return tpl, nil
}

// GetTemplate returns one email template.
func (s *Service) GetTemplate(ctx context.Context, id uuid.UUID) (*types.EmailTemplate, error) {
	return s.store.GetTemplate(ctx, id)
}

// ListTemplates returns every email template, newest first.
func (s *Service) ListTemplates(ctx context.Context) ([]*types.EmailTemplate, error) {
	return s.store.ListTemplates(ctx)
}

// UpdateTemplate edits an email template.
func (s *Service) UpdateTemplate(ctx context.Context, id uuid.UUID, expected int64, req *types.UpdateEmailTemplateRequest) (*types.EmailTemplate, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	return s.store.UpdateTemplate(ctx, id, expected, func(t *types.EmailTemplate) error {
		req.Apply(t)
		return nil
	})
}

// DeleteTemplate removes an email template.
func (s *Service) DeleteTemplate(ctx context.Context, id uuid.UUID) error {
	return s.store.DeleteTemplate(ctx, id)
}

// SeedTemplates stores the default templates when none exist yet and
// returns how many were created.
func (s *Service) SeedTemplates(ctx context.Context) (int, error) {
	existing, err := s.store.ListTemplates(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to list email templates: %w", err)
	}
	if len(existing) > 0 {
		return 0, nil
	}
	for i, tpl := range email.DefaultTemplates() {
		if _, err := s.store.CreateTemplate(ctx, tpl); err != nil {
			return i, fmt.Errorf("failed to seed email template %q: %w", tpl.Name, err)
		}
	}
	return len(email.DefaultTemplates()), nil
}
