// Package module wires the audit lifecycle controller using modkit
package module

import (
	"context"
	"net/http"

	modkit "auditforge/internal/modkit"
	"auditforge/internal/modkit/httpkit"
	"auditforge/internal/modkit/repokit"

	"auditforge/internal/services/audits/domain"
	ahttp "auditforge/internal/services/audits/http"
	arepo "auditforge/internal/services/audits/repo"
	asvc "auditforge/internal/services/audits/service"
	certdom "auditforge/internal/services/certify/domain"
	estdom "auditforge/internal/services/estimate/domain"
	evdom "auditforge/internal/services/evidence/domain"
)

// Ports exposed by the audits module
type Ports struct {
	Controller domain.ControllerPort
}

// InPorts are the upstream ports the controller consumes, injected by
// the composition root via modkit.WithPorts
type InPorts struct {
	Quote    estdom.QuotePort
	Packager evdom.PackagerPort
	Resolver evdom.ResolverPort
	Minter   certdom.MinterPort
}

// Module implements the audits service module
type Module struct {
	deps   modkit.Deps
	name   string
	prefix string

	mws      []func(http.Handler) http.Handler
	ports    Ports
	register func(httpkit.Router)
}

// New constructs the audits module.
// It panics when the injected ports are missing: the lifecycle cannot
// run without estimation, packaging, and minting behind it.
func New(deps modkit.Deps, opts ...modkit.Option) *Module {
	b := modkit.Build(append([]modkit.Option{
		modkit.WithName("audits"),
		modkit.WithPrefix("/audits"),
	}, opts...)...)

	in, ok := b.Ports.(InPorts)
	if !ok {
		panic("audits: module requires InPorts via modkit.WithPorts")
	}

	// completion transactions must stay short; a stuck findings insert
	// should fail rather than hold the row lock
	db := repokit.WithBeginHooks(deps.PG, func(ctx context.Context, q repokit.Queryer) error {
		_, err := q.Exec(ctx, "SET LOCAL statement_timeout = '5s'")
		return err
	})

	svc := asvc.New(db, arepo.NewPG(), asvc.Ports{
		Quote:    in.Quote,
		Packager: in.Packager,
		Resolver: in.Resolver,
		Minter:   in.Minter,
	}, deps.CH)

	m := &Module{
		deps:   deps,
		name:   b.Name,
		prefix: b.Prefix,
		mws:    b.Mw,
		ports:  Ports{Controller: svc},
	}

	external := b.Register
	m.register = func(r httpkit.Router) {
		ahttp.Register(r, svc)
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
