package module

import (
	"time"

	"auditforge/internal/platform/config"
)

// Options holds configuration for the certify module
type Options struct {
	RPCURL      string
	ExplorerURL string
	SignerSeed  string
	Timeout     time.Duration
}

// FromConfig reads with LEDGER_ prefix
func FromConfig(cfg config.Conf) Options {
	c := cfg.Prefix("LEDGER_")
	return Options{
		RPCURL:      c.MayString("RPC_URL", ""),
		ExplorerURL: c.MayString("EXPLORER_URL", ""),
		// no mint can ever succeed without a signer, so an absent seed is
		// a missing-config failure at boot, not a later signer error
		SignerSeed: c.MustString("SIGNER_SEED"),
		Timeout:    c.MayDuration("TIMEOUT", 20*time.Second),
	}
}
