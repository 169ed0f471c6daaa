package module

import (
	"testing"

	modkit "auditforge/internal/modkit"
	"auditforge/internal/platform/config"
	"auditforge/internal/platform/testkit"
)

func TestNewRequiresInjectedPorts(t *testing.T) {
	t.Parallel()

	deps := modkit.Deps{Cfg: config.New()}
	testkit.MustPanic(t, func() { New(deps) })
}
