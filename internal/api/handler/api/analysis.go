// internal/api/handler/api/analysis.go
package api

import (
	"context"
	"net/http"

	"github.com/newthinker/datahub/internal/api/response"
	"github.com/newthinker/datahub/internal/unified"
)

// AnalysisService defines the interface needed from unified.Service.
type AnalysisService interface {
	Analyze(ctx context.Context, symbol string, days int) *unified.Analysis
}

// AnalysisHandler handles comprehensive analysis API requests.
type AnalysisHandler struct {
	svc AnalysisService
}

// NewAnalysisHandler creates a new analysis handler.
func NewAnalysisHandler(svc AnalysisService) *AnalysisHandler {
	return &AnalysisHandler{svc: svc}
}

// Analyze handles GET /api/v1/analyze?symbol=&days=
// Part failures are reported inside the result, so the status is 200.
func (h *AnalysisHandler) Analyze(w http.ResponseWriter, r *http.Request) {
	sym, err := symbolParam(r)
	if err != nil {
		writeError(w, err, false)
		return
	}
	days, err := intParam(r, "days", unified.DefaultAnalysisDays, 365)
	if err != nil {
		writeError(w, err, false)
		return
	}

	response.JSON(w, http.StatusOK, h.svc.Analyze(r.Context(), sym, days))
}
