package modkit

import (
	"net/http"

	"auditforge/internal/modkit/httpkit"
	pstrings "auditforge/internal/platform/strings"
)

// Built is a plain struct with the fields modules care about
type Built struct {
	Name   string
	Prefix string
	Mw     []func(http.Handler) http.Handler
	Ports  any

	// Register appends caller-supplied endpoints after the module's own
	Register func(httpkit.Router)
}

// Build applies Option funcs to an internal buildCfg and returns a plain struct
func Build(opts ...Option) Built {
	var c buildCfg
	for _, o := range opts {
		o(&c)
	}
	if c.register == nil {
		c.register = func(httpkit.Router) {}
	}
	// routeless modules may skip the prefix; a set prefix must be well formed
	prefix := c.prefix
	if prefix != "" {
		prefix = pstrings.MustPrefix(prefix)
	}
	return Built{
		Name:     pstrings.MustString(c.name, "module name"),
		Prefix:   prefix,
		Mw:       append([]func(http.Handler) http.Handler(nil), c.mw...),
		Ports:    c.ports,
		Register: c.register,
	}
}
