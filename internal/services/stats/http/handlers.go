// Package http provides http transport for marketplace statistics
package http

import (
	stdhttp "net/http"
	"strconv"

	"auditforge/internal/modkit/httpkit"
	perr "auditforge/internal/platform/errors"
	"auditforge/internal/services/stats/domain"
)

// Register mounts the router
func Register(r httpkit.Router, q domain.QueryPort) {
	h := &handlers{svc: q}
	httpkit.Get(r, "/activity", h.activity)
	httpkit.Get(r, "/kpi", h.kpi)
}

type handlers struct{ svc domain.QueryPort }

// swagger:route GET /stats/activity Stats activity
// @Summary Daily lifecycle transition counts
// @Tags stats
// @Produce json
// @Param days query int false "window in days"
// @Success 200 {array} domain.ActivityPoint "ok"
// @Router /stats/activity [get]
func (h *handlers) activity(r *stdhttp.Request) (any, error) {
	var f domain.ActivityFilter
	if raw := r.URL.Query().Get("days"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			return nil, perr.Validationf("invalid days %q", raw)
		}
		f.Days = n
	}
	return h.svc.Activity(r.Context(), f)
}

// swagger:route GET /stats/kpi Stats kpi
// @Summary Marketplace headline counters
// @Tags stats
// @Produce json
// @Success 200 {object} domain.KPI "ok"
// @Router /stats/kpi [get]
func (h *handlers) kpi(r *stdhttp.Request) (any, error) {
	return h.svc.KPI(r.Context())
}
