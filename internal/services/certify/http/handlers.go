// Package http provides http transport for certificate discovery
package http

import (
	stdhttp "net/http"

	"auditforge/internal/modkit/httpkit"
	"auditforge/internal/services/certify/domain"
)

// Register mounts the router
func Register(r httpkit.Router, reg domain.RegistryPort) {
	h := &handlers{reg: reg}
	httpkit.Get(r, "/{address}", h.issued)
}

type handlers struct{ reg domain.RegistryPort }

// swagger:route GET /certificates/{address} Certificates issued
// @Summary List records issued to an address, read back from the ledger
// @Tags certificates
// @Produce json
// @Param address path string true "owner address"
// @Success 200 {array} domain.IssuedRecord "ok"
// @Router /certificates/{address} [get]
func (h *handlers) issued(r *stdhttp.Request) (any, error) {
	return h.reg.Issued(r.Context(), httpkit.Param(r, "address"))
}
