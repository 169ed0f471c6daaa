// Package module wires the estimation engine into the API using modkit
package module

import (
	"net/http"

	"auditforge/internal/adapters/oracle"
	modkit "auditforge/internal/modkit"
	"auditforge/internal/modkit/httpkit"

	"auditforge/internal/services/estimate/domain"
	ehttp "auditforge/internal/services/estimate/http"
	esvc "auditforge/internal/services/estimate/service"
)

// Ports exposed by the estimate module
type Ports struct {
	Quote domain.QuotePort
}

// Module implements the estimate service module
type Module struct {
	deps   modkit.Deps
	name   string
	prefix string

	mws      []func(http.Handler) http.Handler
	ports    Ports
	register func(httpkit.Router)
}

// New constructs the estimate module
func New(deps modkit.Deps, opts ...modkit.Option) *Module {
	b := modkit.Build(append([]modkit.Option{
		modkit.WithName("estimate"),
		modkit.WithPrefix("/estimates"),
	}, opts...)...)

	cfg := FromConfig(deps.Cfg)

	var oc esvc.OraclePort
	if cfg.OracleBaseURL != "" {
		oc = oracle.NewClient(oracle.Options{
			BaseURL: cfg.OracleBaseURL,
			APIKey:  cfg.OracleAPIKey,
			Timeout: cfg.OracleTimeout,
		})
	}
	svc := esvc.New(oc)

	m := &Module{
		deps:   deps,
		name:   b.Name,
		prefix: b.Prefix,
		mws:    b.Mw,
		ports:  Ports{Quote: svc},
	}

	external := b.Register
	m.register = func(r httpkit.Router) {
		ehttp.Register(r, svc)
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
