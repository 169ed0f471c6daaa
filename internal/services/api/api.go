// Package api provides the HTTP API for the marketplace
package api

import (
	"auditforge/internal/platform/config"
	"auditforge/internal/platform/logger"
	"auditforge/internal/platform/metrics"
	phttp "auditforge/internal/platform/net/http"
	"auditforge/internal/platform/net/middleware"
	"auditforge/internal/platform/store"

	"auditforge/internal/modkit"
	"auditforge/internal/modkit/httpkit"
	"auditforge/internal/modkit/module"
	"auditforge/internal/modkit/swaggerkit"

	auditsmod "auditforge/internal/services/audits/module"
	certifymod "auditforge/internal/services/certify/module"
	estimatemod "auditforge/internal/services/estimate/module"
	evidencemod "auditforge/internal/services/evidence/module"
	metamod "auditforge/internal/services/meta/module"
	statsmod "auditforge/internal/services/stats/module"
)

// Options are the API options
type Options struct {
	Config         config.Conf
	Store          *store.Store
	Logger         *logger.Logger
	EnableSwagger  bool
	EnableProfiler bool
}

// Mount mounts the API service onto the given router
func Mount(r phttp.Router, opt Options) {
	// shared deps for modules
	deps := modkit.Deps{
		Cfg: opt.Config,
		PG:  opt.Store.PG,
		CH:  opt.Store.CH,
	}

	// Upstream modules first so their ports can feed the lifecycle
	certify := certifymod.New(deps)
	evidence := evidencemod.New(deps)
	estimate := estimatemod.New(deps)

	minter := module.MustPortsOf[certifymod.Ports](certify).Minter
	evPorts := module.MustPortsOf[evidencemod.Ports](evidence)
	quote := module.MustPortsOf[estimatemod.Ports](estimate).Quote

	// submissions fan out to the pinning gateway and the ledger, so cap
	// concurrent lifecycle requests instead of queueing them unbounded
	audits := auditsmod.New(deps,
		modkit.WithPorts(auditsmod.InPorts{
			Quote:    quote,
			Packager: evPorts.Packager,
			Resolver: evPorts.Resolver,
			Minter:   minter,
		}),
		modkit.WithMiddlewares(middleware.Throttle(64)),
	)

	mods := []module.Module{
		metamod.New(deps),
		statsmod.New(deps),
		certify,
		evidence,
		estimate,
		audits,
	}

	// versioned API with a common middleware stack
	httpkit.MountAPIV1(r, httpkit.CommonStack(), func(api httpkit.Router) {
		swaggerkit.Mount(r, opt.EnableSwagger)
		phttp.MountProfiler(r, "/debug", opt.EnableProfiler)
		r.Handle("/metrics", metrics.Handler())

		for _, m := range mods {
			module.Register(m.Name(), m.Ports())
			m.MountRoutes(api)
		}
	})
}
