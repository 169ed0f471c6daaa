// Package service provides the estimation engine implementation
package service

import (
	"context"
	"strings"

	"auditforge/internal/adapters/oracle"
	core "auditforge/internal/core/estimate"
	perr "auditforge/internal/platform/errors"
	"auditforge/internal/platform/logger"
	"auditforge/internal/platform/metrics"
	"auditforge/internal/services/estimate/domain"
)

// OraclePort is the slice of the oracle client the service needs
type OraclePort interface {
	Configured() bool
	Estimate(ctx context.Context, repositoryURL string) (oracle.Estimation, error)
}

// Service implements domain.QuotePort
type Service struct {
	oracle OraclePort
	log    logger.Logger
}

// New constructs the estimation service. oracle may be nil when no
// backend is configured; every quote then takes the fallback path.
func New(o OraclePort) *Service {
	return &Service{
		oracle: o,
		log:    *logger.Named("estimate"),
	}
}

// Quote implements domain.QuotePort.
// Backend faults never reach the caller: any oracle failure converts to
// the deterministic fallback classifier.
func (s *Service) Quote(ctx context.Context, in domain.QuoteInput) (domain.Quote, error) {
	repo := strings.TrimSpace(in.RepositoryURL)
	if repo == "" {
		return domain.Quote{}, perr.Validationf("repository_url must not be empty")
	}

	if s.oracle != nil && s.oracle.Configured() {
		if q, ok := s.tryOracle(ctx, repo); ok {
			metrics.EstimatesTotal.WithLabelValues(string(domain.SourceOracle)).Inc()
			return q, nil
		}
	}

	metrics.EstimatesTotal.WithLabelValues(string(domain.SourceFallback)).Inc()
	return domain.Quote{
		Estimate: core.Classify(repo, in.Analysis),
		Source:   domain.SourceFallback,
	}, nil
}

// tryOracle asks the backend and normalizes its answer into the fixed
// enum and positive ranges; anything off-shape rejects the answer
func (s *Service) tryOracle(ctx context.Context, repo string) (domain.Quote, bool) {
	raw, err := s.oracle.Estimate(ctx, repo)
	if err != nil {
		s.log.Warn().Err(err).Str("repository", repo).Msg("oracle estimate failed, using fallback")
		return domain.Quote{}, false
	}

	cx := core.Complexity(strings.ToLower(strings.TrimSpace(raw.Complexity)))
	if !cx.Valid() || raw.Price <= 0 || raw.DurationDays <= 0 {
		s.log.Warn().
			Str("complexity", raw.Complexity).
			Int64("price", raw.Price).
			Int("duration_days", raw.DurationDays).
			Msg("oracle estimate off-shape, using fallback")
		return domain.Quote{}, false
	}

	return domain.Quote{
		Estimate: core.Estimate{
			Complexity:      cx,
			DurationDays:    raw.DurationDays,
			Price:           raw.Price,
			MinimumPrice:    core.MinimumPrice(raw.Price),
			Reasoning:       raw.Reasoning,
			RiskFactors:     raw.RiskFactors,
			Recommendations: raw.Recommendations,
		},
		Source: domain.SourceOracle,
	}, true
}
