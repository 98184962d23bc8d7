// internal/api/handler/api/data.go
package api

import (
	"context"
	"net/http"
	"time"

	"github.com/newthinker/datahub/internal/api/response"
	"github.com/newthinker/datahub/internal/core"
)

// DataService defines the unified lookups served over HTTP.
type DataService interface {
	GetCompanyNewsUnified(ctx context.Context, symbol string, start, end time.Time, requested string, limit int) ([]core.Article, error)
	GetCompanyProfileUnified(ctx context.Context, symbol, requested string, detailed bool) (*core.Profile, error)
}

// DataHandler handles news and profile API requests.
type DataHandler struct {
	svc DataService
	now func() time.Time
}

// NewDataHandler creates a new data handler.
func NewDataHandler(svc DataService) *DataHandler {
	return &DataHandler{svc: svc, now: time.Now}
}

// News handles GET /api/v1/news?symbol=&start=&end=&limit=&source=
func (h *DataHandler) News(w http.ResponseWriter, r *http.Request) {
	sym, err := symbolParam(r)
	if err != nil {
		writeError(w, err, true)
		return
	}

	today := h.now()
	end, err := dateParam(r, "end", today)
	if err != nil {
		writeError(w, err, true)
		return
	}
	start, err := dateParam(r, "start", end.AddDate(0, 0, -DefaultNewsDays))
	if err != nil {
		writeError(w, err, true)
		return
	}
	if start.After(end) {
		writeError(w, core.NewError(core.ErrInvalidRequest, "start must not be after end"), true)
		return
	}
	limit, err := intParam(r, "limit", DefaultNewsLimit, MaxNewsLimit)
	if err != nil {
		writeError(w, err, true)
		return
	}

	articles, err := h.svc.GetCompanyNewsUnified(r.Context(), sym, start, end, sourceParam(r), limit)
	if err != nil {
		writeError(w, err, true)
		return
	}
	response.JSON(w, http.StatusOK, articles)
}

// Profile handles GET /api/v1/profile?symbol=&source=&detailed=
func (h *DataHandler) Profile(w http.ResponseWriter, r *http.Request) {
	sym, err := symbolParam(r)
	if err != nil {
		writeError(w, err, false)
		return
	}

	p, err := h.svc.GetCompanyProfileUnified(r.Context(), sym, sourceParam(r), boolParam(r, "detailed"))
	if err != nil {
		writeError(w, err, false)
		return
	}
	response.JSON(w, http.StatusOK, p)
}
