package domain

import "context"

// QueryPort reads marketplace statistics
type QueryPort interface {
	Activity(ctx context.Context, f ActivityFilter) ([]ActivityPoint, error)
	KPI(ctx context.Context) (KPI, error)
}
