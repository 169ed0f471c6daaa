package module

import (
	"time"

	"auditforge/internal/platform/config"
)

// Options holds configuration for the estimation module
type Options struct {
	OracleBaseURL string
	OracleAPIKey  string
	OracleTimeout time.Duration
}

// FromConfig reads with ORACLE_ prefix
func FromConfig(cfg config.Conf) Options {
	c := cfg.Prefix("ORACLE_")
	return Options{
		OracleBaseURL: c.MayString("BASE_URL", ""),
		OracleAPIKey:  c.MayString("API_KEY", ""),
		OracleTimeout: c.MayDuration("TIMEOUT", 8*time.Second),
	}
}
