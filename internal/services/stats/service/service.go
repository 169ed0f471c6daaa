// Package service provides the statistics service implementation
package service

import (
	"context"

	"auditforge/internal/modkit/repokit"
	"auditforge/internal/services/stats/domain"
	"auditforge/internal/services/stats/repo"
)

// Config for the stats service
type Config struct {
	MaxWindowDays int
}

// Service implements domain.QueryPort
type Service struct {
	db       repokit.TxRunner
	binder   repokit.Binder[repo.Storage]
	activity *repo.Activity
	cfg      Config
}

// New constructs a new stats service; activity may be nil when the
// transition log backend is disabled
func New(db repokit.TxRunner, binder repokit.Binder[repo.Storage], activity *repo.Activity, cfg Config) *Service {
	if cfg.MaxWindowDays <= 0 {
		cfg.MaxWindowDays = 90
	}
	return &Service{db: db, binder: binder, activity: activity, cfg: cfg}
}

// Activity implements domain.QueryPort
func (s *Service) Activity(ctx context.Context, f domain.ActivityFilter) ([]domain.ActivityPoint, error) {
	days := f.Days
	if days <= 0 || days > s.cfg.MaxWindowDays {
		days = s.cfg.MaxWindowDays
	}
	return s.activity.Daily(ctx, days)
}

// KPI implements domain.QueryPort
func (s *Service) KPI(ctx context.Context) (domain.KPI, error) {
	return s.binder.Bind(s.db).KPI(ctx)
}
