// Package module wires the certificate minter using modkit
package module

import (
	"net/http"

	"auditforge/internal/adapters/ledger"
	modkit "auditforge/internal/modkit"
	"auditforge/internal/modkit/httpkit"

	"auditforge/internal/services/certify/domain"
	chttp "auditforge/internal/services/certify/http"
	crepo "auditforge/internal/services/certify/repo"
	csvc "auditforge/internal/services/certify/service"
)

// Ports exposed by the certify module
type Ports struct {
	Minter   domain.MinterPort
	Registry domain.RegistryPort
	Signer   ledger.Signer
}

// Module implements the certify service module.
// Minting happens only inside the audit pipeline; the routes it mounts
// are the read-only record discovery endpoints.
type Module struct {
	deps   modkit.Deps
	name   string
	prefix string

	mws      []func(http.Handler) http.Handler
	ports    Ports
	register func(httpkit.Router)
}

// New constructs the certify module.
// It panics on a malformed signer seed since no mint can ever succeed
// without a working signer.
func New(deps modkit.Deps, opts ...modkit.Option) *Module {
	b := modkit.Build(append([]modkit.Option{
		modkit.WithName("certify"),
		modkit.WithPrefix("/certificates"),
	}, opts...)...)

	cfg := FromConfig(deps.Cfg)

	signer, err := ledger.NewKeySigner(cfg.SignerSeed)
	if err != nil {
		panic("certify: bad LEDGER_SIGNER_SEED: " + err.Error())
	}

	chain := ledger.NewClient(ledger.Options{
		RPCURL:      cfg.RPCURL,
		ExplorerURL: cfg.ExplorerURL,
		Timeout:     cfg.Timeout,
	})

	svc := csvc.New(deps.PG, crepo.NewPG(), chain, signer)

	m := &Module{
		deps:   deps,
		name:   b.Name,
		prefix: b.Prefix,
		mws:    b.Mw,
		ports:  Ports{Minter: svc, Registry: svc, Signer: signer},
	}

	external := b.Register
	m.register = func(r httpkit.Router) {
		chttp.Register(r, svc)
		if external != nil {
			external(r)
		}
	}
	return m
}

// MountRoutes satisfies modkit.Module
func (m *Module) MountRoutes(r httpkit.Router) {
	httpkit.MountUnder(r, m.prefix, m.mws, m.register)
}

// Name satisfies modkit.Module
func (m *Module) Name() string { return m.name }

// Ports satisfies modkit.Module
func (m *Module) Ports() any { return m.ports }
