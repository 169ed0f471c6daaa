// Package domain defines the marketplace statistics types
package domain

import "time"

// ActivityPoint is one day/status bucket from the activity log
type ActivityPoint struct {
	Day    time.Time `json:"day"`
	Status string    `json:"status"`
	Count  uint64    `json:"count"`
}

// KPI is the marketplace headline view
type KPI struct {
	TotalRequests    int64            `json:"total_requests"`
	ByStatus         map[string]int64 `json:"by_status"`
	TotalFindings    int64            `json:"total_findings"`
	CriticalFindings int64            `json:"critical_findings"`
	CompletedVolume  int64            `json:"completed_volume"`
}

// ActivityFilter bounds an activity query
type ActivityFilter struct {
	Days int `json:"days,omitempty"`
}
