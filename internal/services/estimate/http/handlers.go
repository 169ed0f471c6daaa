// Package http provides http transport for estimation
package http

import (
	stdhttp "net/http"

	"auditforge/internal/modkit/httpkit"
	"auditforge/internal/services/estimate/domain"
)

// Register mounts the router
func Register(r httpkit.Router, q domain.QuotePort) {
	h := &handlers{svc: q}
	httpkit.PostJSON[domain.QuoteInput](r, "/quote", h.quote)
}

type handlers struct{ svc domain.QuotePort }

// swagger:route POST /estimates/quote Estimates quote
// @Summary Quote an audit for a repository
// @Tags estimates
// @Accept json
// @Produce json
// @Param payload body domain.QuoteInput true "Quote"
// @Success 200 {object} domain.Quote "ok"
// @Router /estimates/quote [post]
func (h *handlers) quote(r *stdhttp.Request, in domain.QuoteInput) (any, error) {
	return h.svc.Quote(r.Context(), in)
}
