package server

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/jonathan/talent-matcher/internal/recruiting"
	"github.com/jonathan/talent-matcher/internal/types"
	"github.com/stretchr/testify/assert"
)

func TestHTTPStatus(t *testing.T) {
	id := uuid.New()
	tests := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{name: "not found", err: &types.NotFoundError{Kind: types.KindJob, ID: id}, status: http.StatusNotFound, code: CodeNotFound},
		{name: "not ready", err: &types.NotReadyError{Kind: types.KindResume, ID: id}, status: http.StatusConflict, code: CodeNotReady},
		{name: "validation", err: &types.ValidationError{Field: "email", Message: "bad"}, status: http.StatusBadRequest, code: CodeValidation},
		{name: "conflict", err: &types.ConflictError{Kind: types.KindCandidate, ID: id, Expected: 1, Actual: 2}, status: http.StatusConflict, code: CodeConflict},
		{name: "wrapped not found", err: fmt.Errorf("lookup: %w", &types.NotFoundError{Kind: types.KindCandidate, ID: id}), status: http.StatusNotFound, code: CodeNotFound},
		{name: "delivery", err: fmt.Errorf("%w: smtp down", recruiting.ErrDeliveryFailed), status: http.StatusBadGateway, code: CodeDeliveryFailed},
		{name: "unknown", err: errors.New("boom"), status: http.StatusInternalServerError, code: CodeInternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.status, HTTPStatus(tt.err))
			assert.Equal(t, tt.code, ErrorCode(tt.err))
		})
	}
}
