package module

import (
	"time"

	"auditforge/internal/platform/config"
)

// Options holds configuration for the evidence module
type Options struct {
	PinBaseURL string
	GatewayURL string
	APIKey     string
	Timeout    time.Duration
}

// FromConfig reads with PINNING_ prefix.
// BASE_URL is required: there is no fallback store for evidence, so a
// misconfigured pinning endpoint should stop the process at boot
func FromConfig(cfg config.Conf) Options {
	c := cfg.Prefix("PINNING_")
	return Options{
		PinBaseURL: c.MustURL("BASE_URL").String(),
		GatewayURL: c.MayString("GATEWAY_URL", ""),
		APIKey:     c.MayString("API_KEY", ""),
		Timeout:    c.MayDuration("TIMEOUT", 15*time.Second),
	}
}
