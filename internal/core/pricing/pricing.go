// Package pricing derives settlement numbers from a base audit price.
//
// All arithmetic is integer on whole currency units so a breakdown is
// reproducible wherever it is computed.
package pricing

import (
	perr "auditforge/internal/platform/errors"
)

// Reviewer count bounds accepted by Calculate
const (
	MinReviewers = 1
	MaxReviewers = 3
)

// Breakdown is the settlement split for one audit engagement
type Breakdown struct {
	InitialEngagementFee int64 `json:"initial_engagement_fee"`
	ReviewerPayout       int64 `json:"reviewer_payout"`
	PlatformFee          int64 `json:"platform_fee"`
	TotalPrice           int64 `json:"total_price"`
}

// Calculate splits base across reviewers and the platform.
// Each reviewer beyond the first adds 25% of base before the split;
// the platform fee is 15% of the reviewer payout.
func Calculate(base int64, reviewers int) (Breakdown, error) {
	if base <= 0 {
		return Breakdown{}, perr.Validationf("base price must be positive, got %d", base)
	}
	if reviewers < MinReviewers || reviewers > MaxReviewers {
		return Breakdown{}, perr.Validationf("reviewer count must be between %d and %d, got %d", MinReviewers, MaxReviewers, reviewers)
	}

	payout := base + int64(reviewers-1)*base/4
	fee := payout * 15 / 100
	total := payout + fee

	return Breakdown{
		InitialEngagementFee: total / 2,
		ReviewerPayout:       payout,
		PlatformFee:          fee,
		TotalPrice:           total,
	}, nil
}
