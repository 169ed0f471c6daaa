// Package domain defines the estimation engine types
package domain

import (
	core "auditforge/internal/core/estimate"
)

// Source names which estimation path produced a quote
type Source string

// Quote sources
const (
	SourceOracle   Source = "oracle"
	SourceFallback Source = "fallback"
)

// QuoteInput is a request for an audit quote
type QuoteInput struct {
	RepositoryURL string            `json:"repository_url" validate:"required,max=512"`
	Analysis      *core.RawAnalysis `json:"analysis,omitempty"`
}

// Quote is an estimation plus its provenance
type Quote struct {
	core.Estimate
	Source Source `json:"source"`
}
