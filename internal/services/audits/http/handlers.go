// Package http provides http transport for the audit lifecycle
package http

import (
	stdhttp "net/http"
	"strconv"

	"github.com/google/uuid"

	"auditforge/internal/modkit/httpkit"
	perr "auditforge/internal/platform/errors"
	"auditforge/internal/services/audits/domain"
)

// Register mounts the router
func Register(r httpkit.Router, c domain.ControllerPort) {
	h := &handlers{svc: c}
	httpkit.PostJSON[domain.SubmitInput](r, "/", h.submit)
	httpkit.Get(r, "/", h.list)
	httpkit.Get(r, "/{id}", h.get)
	httpkit.Get(r, "/{id}/report", h.report)
	httpkit.PostJSON[domain.AcceptInput](r, "/{id}/accept", h.accept)
	httpkit.PostJSON[domain.SubmitResultsInput](r, "/{id}/results", h.results)
	httpkit.PostJSON[domain.CancelInput](r, "/{id}/cancel", h.cancel)
}

type handlers struct{ svc domain.ControllerPort }

func requestID(r *stdhttp.Request) (uuid.UUID, error) {
	raw := httpkit.Param(r, "id")
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, perr.Validationf("invalid audit request id %q", raw)
	}
	return id, nil
}

// swagger:route POST /audits Audits submit
// @Summary Submit a repository for audit
// @Tags audits
// @Accept json
// @Produce json
// @Param payload body domain.SubmitInput true "Submission"
// @Success 201 {object} domain.AuditRequest "created"
// @Router /audits [post]
func (h *handlers) submit(r *stdhttp.Request, in domain.SubmitInput) (any, error) {
	a, err := h.svc.Submit(r.Context(), in)
	if err != nil {
		return nil, err
	}
	return httpkit.Created(a), nil
}

// swagger:route GET /audits Audits list
// @Summary List audit requests
// @Tags audits
// @Produce json
// @Param status query string false "lifecycle status"
// @Param reviewer query string false "reviewer address"
// @Param limit query int false "page size"
// @Success 200 {array} domain.AuditRequest "ok"
// @Router /audits [get]
func (h *handlers) list(r *stdhttp.Request) (any, error) {
	f := domain.ListFilter{
		Status:          domain.Status(r.URL.Query().Get("status")),
		ReviewerAddress: r.URL.Query().Get("reviewer"),
	}
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			return nil, perr.Validationf("invalid limit %q", raw)
		}
		f.Limit = n
	}
	return h.svc.List(r.Context(), f)
}

// swagger:route GET /audits/{id} Audits get
// @Summary Fetch one audit request
// @Tags audits
// @Produce json
// @Param id path string true "audit request id"
// @Success 200 {object} domain.AuditRequest "ok"
// @Router /audits/{id} [get]
func (h *handlers) get(r *stdhttp.Request) (any, error) {
	id, err := requestID(r)
	if err != nil {
		return nil, err
	}
	return h.svc.Get(r.Context(), id)
}

// swagger:route GET /audits/{id}/report Audits report
// @Summary Full report with findings, pricing, and certificate chain
// @Tags audits
// @Produce json
// @Param id path string true "audit request id"
// @Success 200 {object} domain.Report "ok"
// @Router /audits/{id}/report [get]
func (h *handlers) report(r *stdhttp.Request) (any, error) {
	id, err := requestID(r)
	if err != nil {
		return nil, err
	}
	return h.svc.Report(r.Context(), id)
}

// swagger:route POST /audits/{id}/accept Audits accept
// @Summary Commit a reviewer to an available request
// @Tags audits
// @Accept json
// @Produce json
// @Param id path string true "audit request id"
// @Param payload body domain.AcceptInput true "Reviewer"
// @Success 200 {object} domain.AuditRequest "ok"
// @Router /audits/{id}/accept [post]
func (h *handlers) accept(r *stdhttp.Request, in domain.AcceptInput) (any, error) {
	id, err := requestID(r)
	if err != nil {
		return nil, err
	}
	return h.svc.Accept(r.Context(), id, in)
}

// swagger:route POST /audits/{id}/results Audits results
// @Summary Submit findings and complete an in-progress audit
// @Tags audits
// @Accept json
// @Produce json
// @Param id path string true "audit request id"
// @Param payload body domain.SubmitResultsInput true "Results"
// @Success 200 {object} domain.AuditRequest "ok"
// @Router /audits/{id}/results [post]
func (h *handlers) results(r *stdhttp.Request, in domain.SubmitResultsInput) (any, error) {
	id, err := requestID(r)
	if err != nil {
		return nil, err
	}
	return h.svc.SubmitResults(r.Context(), id, in)
}

// swagger:route POST /audits/{id}/cancel Audits cancel
// @Summary Abandon a request before completion
// @Tags audits
// @Accept json
// @Produce json
// @Param id path string true "audit request id"
// @Param payload body domain.CancelInput true "Cancellation"
// @Success 200 {object} domain.AuditRequest "ok"
// @Router /audits/{id}/cancel [post]
func (h *handlers) cancel(r *stdhttp.Request, in domain.CancelInput) (any, error) {
	id, err := requestID(r)
	if err != nil {
		return nil, err
	}
	return h.svc.Cancel(r.Context(), id, in)
}
