// internal/api/handler/api/sources.go
package api

import (
	"context"
	"net/http"

	"github.com/newthinker/datahub/internal/api/response"
	"github.com/newthinker/datahub/internal/compat"
	"github.com/newthinker/datahub/internal/core"
	"github.com/newthinker/datahub/internal/unified"
)

// SourcesService defines the introspection calls served over HTTP.
type SourcesService interface {
	HealthCheck(ctx context.Context) unified.HealthReport
	Status(ctx context.Context) map[string]unified.SourceStatus
	AvailableSources() map[core.DataType][]string
	Matrix() *compat.Matrix
}

// SourcesHandler handles data source introspection requests.
type SourcesHandler struct {
	svc SourcesService
}

// NewSourcesHandler creates a new sources handler.
func NewSourcesHandler(svc SourcesService) *SourcesHandler {
	return &SourcesHandler{svc: svc}
}

// Health handles GET /api/v1/health. Any unhealthy source yields 503.
func (h *SourcesHandler) Health(w http.ResponseWriter, r *http.Request) {
	report := h.svc.HealthCheck(r.Context())
	status := http.StatusOK
	if !report.Healthy() {
		status = http.StatusServiceUnavailable
	}
	response.JSON(w, status, report)
}

// Status handles GET /api/v1/status.
func (h *SourcesHandler) Status(w http.ResponseWriter, r *http.Request) {
	response.JSON(w, http.StatusOK, h.svc.Status(r.Context()))
}

// Sources handles GET /api/v1/sources.
func (h *SourcesHandler) Sources(w http.ResponseWriter, r *http.Request) {
	response.JSON(w, http.StatusOK, h.svc.AvailableSources())
}

// Compat handles GET /api/v1/compat?symbol=
func (h *SourcesHandler) Compat(w http.ResponseWriter, r *http.Request) {
	sym, err := symbolParam(r)
	if err != nil {
		writeError(w, err, false)
		return
	}
	response.JSON(w, http.StatusOK, h.svc.Matrix().Report(sym))
}
