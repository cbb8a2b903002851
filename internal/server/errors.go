package server

import (
	"errors"
	"net/http"

	"github.com/jonathan/talent-matcher/internal/recruiting"
	"github.com/jonathan/talent-matcher/internal/types"
)

// Error codes returned in the "error" field of failed responses.
const (
	CodeNotFound       = "not_found"
	CodeNotReady       = "not_ready"
	CodeValidation     = "validation_error"
	CodeConflict       = "conflict"
	CodeDeliveryFailed = "delivery_failed"
	CodeInternal       = "internal_error"
	CodeBadRequest     = "bad_request"
	CodeRateLimited    = "rate_limit_exceeded"
)

// HTTPStatus returns the appropriate HTTP status code for an error
func HTTPStatus(err error) int {
	status, _ := classify(err)
	return status
}

// ErrorCode returns the machine-readable code for an error.
func ErrorCode(err error) string {
	_, code := classify(err)
	return code
}

func classify(err error) (int, string) {
	var (
		notFound   *types.NotFoundError
		notReady   *types.NotReadyError
		validation *types.ValidationError
		conflict   *types.ConflictError
	)
	switch {
	case errors.As(err, &notFound):
		return http.StatusNotFound, CodeNotFound
	case errors.As(err, &notReady):
		return http.StatusConflict, CodeNotReady
	case errors.As(err, &validation):
		return http.StatusBadRequest, CodeValidation
	case errors.As(err, &conflict):
		return http.StatusConflict, CodeConflict
	case errors.Is(err, recruiting.ErrDeliveryFailed):
		return http.StatusBadGateway, CodeDeliveryFailed
	default:
		return http.StatusInternalServerError, CodeInternal
	}
}
