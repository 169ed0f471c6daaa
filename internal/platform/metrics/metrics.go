// Package metrics exposes prometheus counters for the certification pipeline
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// EstimatesTotal counts quotes by source ("oracle" or "fallback")
	EstimatesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "auditforge",
		Name:      "estimates_total",
		Help:      "Complexity estimates produced, by source",
	}, []string{"source"})

	// EvidencePublishedTotal counts evidence documents pinned, by kind
	EvidencePublishedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "auditforge",
		Name:      "evidence_published_total",
		Help:      "Evidence documents published to the content store, by kind",
	}, []string{"kind"})

	// CertificatesMintedTotal counts ledger mints, by stage ("request" or "result")
	CertificatesMintedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "auditforge",
		Name:      "certificates_minted_total",
		Help:      "Certificates minted on the ledger, by stage",
	}, []string{"stage"})

	// TransitionConflictsTotal counts guarded status updates that lost the race
	TransitionConflictsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "auditforge",
		Name:      "transition_conflicts_total",
		Help:      "Lifecycle transitions rejected by the conditional status guard",
	})

	// PipelineStepFailuresTotal counts external-step failures, by step
	PipelineStepFailuresTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "auditforge",
		Name:      "pipeline_step_failures_total",
		Help:      "External pipeline step failures, by step",
	}, []string{"step"})
)

// Handler returns the prometheus scrape handler for mounting under /metrics
func Handler() http.Handler { return promhttp.Handler() }
