package response

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/newthinker/datahub/internal/core"
)

// Meta contains response metadata.
type Meta struct {
	Timestamp time.Time `json:"timestamp"`
}

// SuccessResponse is the standard success response format.
type SuccessResponse struct {
	Data any  `json:"data"`
	Meta Meta `json:"meta"`
}

// ErrorDetail contains error information.
type ErrorDetail struct {
	Code       string `json:"code"`
	Message    string `json:"message"`
	Suggestion string `json:"suggestion,omitempty"`
	Cause      string `json:"cause,omitempty"`
}

// ErrorResponse is the standard error response format.
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

// JSON writes a success response with data.
func JSON(w http.ResponseWriter, status int, data any) {
	resp := SuccessResponse{
		Data: data,
		Meta: Meta{Timestamp: time.Now().UTC()},
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(resp)
}

// Error writes an error response.
func Error(w http.ResponseWriter, status int, err error) {
	detail := ErrorDetail{
		Code:    "INTERNAL_ERROR",
		Message: "an internal error occurred",
	}

	var coreErr *core.Error
	if errors.As(err, &coreErr) {
		detail.Code = coreErr.Code
		detail.Message = coreErr.Message
		detail.Suggestion = coreErr.Suggestion
		if coreErr.Cause != nil {
			detail.Cause = coreErr.Cause.Error()
		}
	}

	resp := ErrorResponse{Error: detail}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(resp)
}

// StatusFor maps an error code onto an HTTP status.
func StatusFor(err error) int {
	switch core.Code(err) {
	case core.ErrInvalidRequest.Code:
		return http.StatusBadRequest
	case core.ErrUnauthorized.Code, core.ErrAPIKeyInvalid.Code:
		return http.StatusUnauthorized
	case core.ErrNoData.Code, core.ErrSymbolNotFound.Code:
		return http.StatusNotFound
	case core.ErrNotSupported.Code, core.ErrExchangeUnsupported.Code:
		return http.StatusUnprocessableEntity
	case core.ErrRateLimitExceeded.Code, core.ErrQuotaExceeded.Code:
		return http.StatusTooManyRequests
	case core.ErrAllSourcesFailed.Code, core.ErrProviderFailed.Code:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
