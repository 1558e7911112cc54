package web

import (
	"errors"
	"net/http"

	"log/slog"

	"github.com/gophora/portal/internal/models"
	"github.com/gophora/portal/pkg/gophora"
)

type HomeHandler struct {
	api *gophora.Client
}

func NewHomeHandler(api *gophora.Client) *HomeHandler {
	return &HomeHandler{api: api}
}

type landingData struct {
	Opportunities []models.Opportunity
}

// Landing renders the public front page with the open listings. A backend
// failure degrades to an empty list with a banner instead of an error page.
func (h *HomeHandler) Landing(w http.ResponseWriter, r *http.Request) {
	p := newPage(r, "Welcome")
	data := landingData{}

	ops, err := h.api.Opportunities(r.Context())
	if err != nil {
		logger.Warn("landing listing failed", slog.Any("err", err))
		p.Error = errText(err)
	} else {
		for _, op := range ops {
			if op.Status == models.StatusOpen {
				data.Opportunities = append(data.Opportunities, op)
			}
		}
	}

	p.Data = data
	render(w, http.StatusOK, "landing", p)
}

// NotFound renders the catch-all page for unmatched paths.
func NotFound(w http.ResponseWriter, r *http.Request) {
	p := newPage(r, "Not Found")
	render(w, http.StatusNotFound, "notfound", p)
}

// errText extracts the banner text for a failed backend call. API errors
// carry the backend's own detail string, which is rendered verbatim.
func errText(err error) string {
	var apiErr *gophora.APIError
	if errors.As(err, &apiErr) {
		return apiErr.Message
	}
	return err.Error()
}
