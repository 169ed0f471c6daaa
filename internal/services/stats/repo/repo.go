// Package repo provides the statistics repository implementations.
// KPI counts come from Postgres; daily activity comes from the
// ClickHouse transition log.
package repo

import (
	"context"

	"auditforge/internal/modkit/repokit"
	perr "auditforge/internal/platform/errors"
	"auditforge/internal/platform/store"
	"auditforge/internal/services/stats/domain"
)

type (
	pg     struct{ q repokit.Queryer }
	binder struct{}
)

// NewPG constructs a new repo binder for Postgres
func NewPG() repokit.Binder[Storage] { return binder{} }

// Bind implements repokit.Binder
func (binder) Bind(q repokit.Queryer) Storage { return &pg{q: q} }

// Storage defines the KPI side of the statistics repository
type Storage interface {
	KPI(ctx context.Context) (domain.KPI, error)
}

// KPI implements Storage
func (s *pg) KPI(ctx context.Context) (domain.KPI, error) {
	out := domain.KPI{ByStatus: map[string]int64{}}

	rows, err := s.q.Query(ctx, `SELECT status, count(*) FROM audit_requests GROUP BY status`)
	if err != nil {
		return out, perr.FromDB(err, "kpi status counts failed")
	}
	defer rows.Close()
	for rows.Next() {
		var status string
		var n int64
		if err := rows.Scan(&status, &n); err != nil {
			return out, perr.FromDB(err, "kpi status scan failed")
		}
		out.ByStatus[status] = n
		out.TotalRequests += n
	}
	if err := rows.Err(); err != nil {
		return out, perr.FromDB(err, "kpi status counts failed")
	}

	err = s.q.QueryRow(ctx, `
		SELECT count(*), count(*) FILTER (WHERE severity = 'critical')
		FROM findings`).Scan(&out.TotalFindings, &out.CriticalFindings)
	if err != nil {
		return out, perr.FromDB(err, "kpi finding counts failed")
	}

	err = s.q.QueryRow(ctx, `
		SELECT COALESCE(sum(COALESCE(negotiated_price, proposed_price)), 0)
		FROM audit_requests WHERE status = 'completed'`).Scan(&out.CompletedVolume)
	if err != nil {
		return out, perr.FromDB(err, "kpi volume failed")
	}
	return out, nil
}

// Activity is the ClickHouse side of the statistics repository
type Activity struct{ ch store.Clickhouse }

// NewActivity wraps the clickhouse seam
func NewActivity(ch store.Clickhouse) *Activity { return &Activity{ch: ch} }

// Daily returns per-day per-status transition counts for the last n days
func (a *Activity) Daily(ctx context.Context, days int) ([]domain.ActivityPoint, error) {
	if a == nil || a.ch == nil {
		return nil, nil
	}

	rows, err := a.ch.Query(ctx, `
		SELECT toStartOfDay(at) AS day, to_status, count() AS n
		FROM audit_activity
		WHERE at >= now() - INTERVAL ? DAY
		GROUP BY day, to_status
		ORDER BY day, to_status`, days)
	if err != nil {
		return nil, perr.Wrapf(err, perr.ErrorCodeDB, "activity query failed")
	}
	defer rows.Close()

	var out []domain.ActivityPoint
	for rows.Next() {
		var p domain.ActivityPoint
		if err := rows.Scan(&p.Day, &p.Status, &p.Count); err != nil {
			return nil, perr.Wrapf(err, perr.ErrorCodeDB, "activity scan failed")
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, perr.Wrapf(err, perr.ErrorCodeDB, "activity query failed")
	}
	return out, nil
}
