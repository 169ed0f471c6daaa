// Package http provides http transport for evidence documents
package http

import (
	stdhttp "net/http"
	"time"

	"auditforge/internal/modkit/httpkit"
	"auditforge/internal/services/evidence/domain"
)

// Register mounts the router
func Register(r httpkit.Router, pkg domain.PackagerPort, res domain.ResolverPort) {
	h := &handlers{packager: pkg, resolver: res}
	httpkit.PostJSON[ProfileInput](r, "/profiles", h.publishProfile)
	httpkit.Get(r, "/{cid}", h.resolve)
}

type handlers struct {
	packager domain.PackagerPort
	resolver domain.ResolverPort
}

// ProfileInput publishes an auditor profile document
type ProfileInput struct {
	Address         string   `json:"address" validate:"required,wallet_addr"`
	DisplayName     string   `json:"display_name" validate:"max=120"`
	Specialties     []string `json:"specialties" validate:"max=16,dive,max=40"`
	CompletedAudits int      `json:"completed_audits" validate:"min=0"`
}

// ProfileResponse carries the resulting content identifier
type ProfileResponse struct {
	CID string `json:"cid"`
}

// swagger:route POST /evidence/profiles Evidence publishProfile
// @Summary Publish an auditor profile document
// @Tags evidence
// @Accept json
// @Produce json
// @Param payload body ProfileInput true "Profile"
// @Success 200 {object} ProfileResponse "ok"
// @Router /evidence/profiles [post]
func (h *handlers) publishProfile(r *stdhttp.Request, in ProfileInput) (any, error) {
	cid, err := h.packager.PublishProfile(r.Context(), domain.ProfilePayload{
		Address:         in.Address,
		DisplayName:     in.DisplayName,
		Specialties:     in.Specialties,
		CompletedAudits: in.CompletedAudits,
		CreatedAt:       time.Now().UTC(),
	})
	if err != nil {
		return nil, err
	}
	return ProfileResponse{CID: cid}, nil
}

// swagger:route GET /evidence/{cid} Evidence resolve
// @Summary Resolve a content-addressed evidence document
// @Tags evidence
// @Produce json
// @Param cid path string true "Content identifier"
// @Success 200 {object} domain.ResolvedDocument "ok"
// @Failure 404 {object} httpkit.Envelope "not found"
// @Router /evidence/{cid} [get]
func (h *handlers) resolve(r *stdhttp.Request) (any, error) {
	return h.resolver.Resolve(r.Context(), httpkit.Param(r, "cid"))
}
