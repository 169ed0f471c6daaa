// Package module wires the evidence packager and resolver into the API
package module

import (
	"net/http"

	"auditforge/internal/adapters/pinning"
	modkit "auditforge/internal/modkit"
	"auditforge/internal/modkit/httpkit"

	"auditforge/internal/services/evidence/domain"
	ehttp "auditforge/internal/services/evidence/http"
	esvc "auditforge/internal/services/evidence/service"
)

// Ports exposed by the evidence module
type Ports struct {
	Packager domain.PackagerPort
	Resolver domain.ResolverPort
}

// Module implements the evidence service module
type Module struct {
	deps   modkit.Deps
	name   string
	prefix string

	mws      []func(http.Handler) http.Handler
	ports    Ports
	register func(httpkit.Router)
}

// New constructs the evidence module
func New(deps modkit.Deps, opts ...modkit.Option) *Module {
	b := modkit.Build(append([]modkit.Option{
		modkit.WithName("evidence"),
		modkit.WithPrefix("/evidence"),
	}, opts...)...)

	cfg := FromConfig(deps.Cfg)

	pin := pinning.NewClient(pinning.Options{
		BaseURL:    cfg.PinBaseURL,
		GatewayURL: cfg.GatewayURL,
		APIKey:     cfg.APIKey,
		Timeout:    cfg.Timeout,
	})
	svc := esvc.New(pin)

	m := &Module{
		deps:   deps,
		name:   b.Name,
		prefix: b.Prefix,
		mws:    b.Mw,
		ports:  Ports{Packager: svc, Resolver: svc},
	}

	external := b.Register
	m.register = func(r httpkit.Router) {
		ehttp.Register(r, svc, svc)
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
