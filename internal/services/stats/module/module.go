// Package module wires the statistics service using modkit
package module

import (
	"net/http"

	modkit "auditforge/internal/modkit"
	"auditforge/internal/modkit/httpkit"

	"auditforge/internal/services/stats/domain"
	shttp "auditforge/internal/services/stats/http"
	srepo "auditforge/internal/services/stats/repo"
	ssvc "auditforge/internal/services/stats/service"
)

// Ports exposed by the stats module
type Ports struct {
	Query domain.QueryPort
}

// Module implements the stats service module
type Module struct {
	deps   modkit.Deps
	name   string
	prefix string

	mws      []func(http.Handler) http.Handler
	ports    Ports
	register func(httpkit.Router)
}

// New constructs the stats module
func New(deps modkit.Deps, opts ...modkit.Option) *Module {
	b := modkit.Build(append([]modkit.Option{
		modkit.WithName("stats"),
		modkit.WithPrefix("/stats"),
	}, opts...)...)

	var activity *srepo.Activity
	if deps.CH != nil {
		activity = srepo.NewActivity(deps.CH)
	}
	svc := ssvc.New(deps.PG, srepo.NewPG(), activity, ssvc.Config{})

	m := &Module{
		deps:   deps,
		name:   b.Name,
		prefix: b.Prefix,
		mws:    b.Mw,
		ports:  Ports{Query: svc},
	}

	external := b.Register
	m.register = func(r httpkit.Router) {
		shttp.Register(r, svc)
		if external != nil {
			external(r)
		}
	}
	return m
}

// MountRoutes mounts the module routes on the given router
func (m *Module) MountRoutes(r httpkit.Router) {
	httpkit.MountUnder(r, m.prefix, m.mws, m.register)
}

// Name satisfies modkit.Module
func (m *Module) Name() string { return m.name }

// Ports satisfies modkit.Module
func (m *Module) Ports() any { return m.ports }
