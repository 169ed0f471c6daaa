// Package domain defines the audit lifecycle types and transition rules
package domain

import (
	"time"

	"github.com/google/uuid"

	core "auditforge/internal/core/estimate"
	ev "auditforge/internal/core/evidence"
)

// Status is the lifecycle state of an audit request
type Status string

// Lifecycle states. PendingAcceptance is reserved for the negotiated
// quote flow where the submitter still has to confirm a reviewer's
// counter-offer; plain accepts go straight to InProgress.
const (
	StatusAvailable         Status = "available"
	StatusPendingAcceptance Status = "pending_acceptance"
	StatusInProgress        Status = "in_progress"
	StatusCompleted         Status = "completed"
	StatusCancelled         Status = "cancelled"
)

// Valid reports whether s is a known status
func (s Status) Valid() bool {
	switch s {
	case StatusAvailable, StatusPendingAcceptance, StatusInProgress, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

// Terminal reports whether no further transition may leave s
func (s Status) Terminal() bool { return s == StatusCompleted || s == StatusCancelled }

// transitions is the full legality table; persistence-level conditional
// updates enforce it under concurrency
var transitions = map[Status][]Status{
	StatusAvailable:         {StatusPendingAcceptance, StatusInProgress, StatusCancelled},
	StatusPendingAcceptance: {StatusInProgress, StatusAvailable, StatusCancelled},
	StatusInProgress:        {StatusCompleted, StatusCancelled},
}

// CanTransition reports whether from -> to is a legal transition
func CanTransition(from, to Status) bool {
	for _, t := range transitions[from] {
		if t == to {
			return true
		}
	}
	return false
}

// FindingSeverity grades a single finding
type FindingSeverity string

// Finding severities
const (
	SeverityLow      FindingSeverity = "low"
	SeverityMedium   FindingSeverity = "medium"
	SeverityHigh     FindingSeverity = "high"
	SeverityCritical FindingSeverity = "critical"
)

// Valid reports whether v is a known severity
func (v FindingSeverity) Valid() bool {
	switch v {
	case SeverityLow, SeverityMedium, SeverityHigh, SeverityCritical:
		return true
	}
	return false
}

// FindingCategories is the fixed vulnerability taxonomy
var FindingCategories = []string{
	"access-control",
	"arithmetic",
	"reentrancy",
	"oracle-manipulation",
	"flash-loan",
	"front-running",
	"denial-of-service",
	"logic-error",
	"gas",
	"upgradeability",
	"signature",
	"other",
}

// ValidCategory reports whether c is in the taxonomy
func ValidCategory(c string) bool {
	for _, k := range FindingCategories {
		if k == c {
			return true
		}
	}
	return false
}

// FindingStatus tracks remediation of a finding
type FindingStatus string

// Finding statuses
const (
	FindingOpen         FindingStatus = "open"
	FindingAcknowledged FindingStatus = "acknowledged"
	FindingResolved     FindingStatus = "resolved"
)

// Finding is one issue raised by a reviewer
type Finding struct {
	ID          uuid.UUID       `json:"id"`
	RequestID   uuid.UUID       `json:"request_id"`
	Severity    FindingSeverity `json:"severity"`
	Category    string          `json:"category"`
	Title       string          `json:"title"`
	Description string          `json:"description"`
	FileName    string          `json:"file_name,omitempty"`
	LineNumber  int             `json:"line_number,omitempty"`
	Status      FindingStatus   `json:"status"`
	CreatedAt   time.Time       `json:"created_at"`
}

// AuditRequest is the central entity of the marketplace
type AuditRequest struct {
	ID             uuid.UUID `json:"id"`
	RepositoryHash string    `json:"repository_hash"`

	ProjectName        string   `json:"project_name"`
	ProjectDescription string   `json:"project_description"`
	SourceURL          string   `json:"source_url"`
	Tags               []string `json:"tags"`

	Complexity            core.Complexity `json:"complexity"`
	EstimatedDurationDays int             `json:"estimated_duration_days"`
	ProposedPrice         int64           `json:"proposed_price"`
	MinimumPrice          int64           `json:"minimum_price"`
	NegotiatedPrice       *int64          `json:"negotiated_price,omitempty"`
	ReviewerCount         int             `json:"reviewer_count"`

	SubmitterAddress string `json:"submitter_address"`
	ReviewerAddress  string `json:"reviewer_address,omitempty"`

	Status                  Status     `json:"status"`
	CreatedAt               time.Time  `json:"created_at"`
	StartDate               *time.Time `json:"start_date,omitempty"`
	EstimatedCompletionDate *time.Time `json:"estimated_completion_date,omitempty"`
	CompletedAt             *time.Time `json:"completed_at,omitempty"`

	RequestRecordID    string `json:"request_record_id,omitempty"`
	RequestEvidenceCID string `json:"request_evidence_cid,omitempty"`
	RequestTxID        string `json:"request_tx_id,omitempty"`
	ResultRecordID     string `json:"result_record_id,omitempty"`
	ResultEvidenceCID  string `json:"result_evidence_cid,omitempty"`
	ResultTxID         string `json:"result_tx_id,omitempty"`
}

// Price is the price in force: negotiated when present, proposed otherwise
func (a AuditRequest) Price() int64 {
	if a.NegotiatedPrice != nil {
		return *a.NegotiatedPrice
	}
	return a.ProposedPrice
}

// SubmitInput creates a new audit request
type SubmitInput struct {
	ProjectName        string   `json:"project_name" validate:"required,max=160"`
	ProjectDescription string   `json:"project_description" validate:"max=4000"`
	SourceURL          string   `json:"source_url" validate:"required,max=512"`
	RepositoryHash     string   `json:"repository_hash" validate:"required,max=128"`
	Tags               []string `json:"tags" validate:"max=16,dive,max=40"`
	ReviewerCount      int      `json:"reviewer_count" validate:"omitempty,min=1,max=3"`
	NegotiatedPrice    *int64   `json:"negotiated_price,omitempty"`
	SubmitterAddress   string   `json:"submitter_address" validate:"required,wallet_addr"`

	// Analysis feeds the estimation pass when the caller pre-scanned the repo
	Analysis *core.RawAnalysis `json:"analysis,omitempty"`

	// ResumeEvidenceCID replays a submission whose evidence was already
	// published but whose mint or persist failed; the pipeline reuses the
	// durable document instead of publishing a duplicate
	ResumeEvidenceCID string `json:"resume_evidence_cid,omitempty"`
}

// AcceptInput commits a reviewer to an available request
type AcceptInput struct {
	ReviewerAddress string `json:"reviewer_address" validate:"required,wallet_addr"`
}

// FindingInput is one finding in a result submission
type FindingInput struct {
	Severity    FindingSeverity `json:"severity" validate:"required"`
	Category    string          `json:"category" validate:"required"`
	Title       string          `json:"title" validate:"required,max=200"`
	Description string          `json:"description" validate:"max=4000"`
	FileName    string          `json:"file_name,omitempty" validate:"max=300"`
	LineNumber  int             `json:"line_number,omitempty" validate:"min=0"`
}

// SubmitResultsInput completes an in-progress request
type SubmitResultsInput struct {
	ReviewerAddress string         `json:"reviewer_address" validate:"required,wallet_addr"`
	Summary         string         `json:"summary" validate:"required,max=8000"`
	Findings        []FindingInput `json:"findings" validate:"max=200"`

	// ResumeEvidenceCID has the same resume semantics as on submission
	ResumeEvidenceCID string `json:"resume_evidence_cid,omitempty"`
}

// CancelInput abandons a request before completion
type CancelInput struct {
	RequestedBy string `json:"requested_by" validate:"required,wallet_addr"`
	Reason      string `json:"reason,omitempty" validate:"max=1000"`
}

// ListFilter narrows dashboard queries
type ListFilter struct {
	Status          Status `json:"status,omitempty"`
	ReviewerAddress string `json:"reviewer_address,omitempty"`
	Limit           int    `json:"limit,omitempty"`
}

// CertificateRef points at one ledger anchor from a report
type CertificateRef struct {
	Stage       string `json:"stage"`
	RecordID    string `json:"record_id,omitempty"`
	CID         string `json:"cid,omitempty"`
	TxID        string `json:"tx_id,omitempty"`
	GatewayURL  string `json:"gateway_url,omitempty"`
	Issued      bool   `json:"issued"`
	PlannedNote string `json:"planned_note,omitempty"`
}

// Report is the full view of a request for verification and display
type Report struct {
	Request      AuditRequest     `json:"request"`
	Findings     []Finding        `json:"findings"`
	Pricing      PricingView      `json:"pricing"`
	Certificates []CertificateRef `json:"certificates"`
}

// PricingView is the settlement breakdown shown on reports
type PricingView struct {
	BasePrice            int64 `json:"base_price"`
	InitialEngagementFee int64 `json:"initial_engagement_fee"`
	ReviewerPayout       int64 `json:"reviewer_payout"`
	PlatformFee          int64 `json:"platform_fee"`
	TotalPrice           int64 `json:"total_price"`
}

// ResultFindings converts finding inputs to the evidence document form
func ResultFindings(in []FindingInput) []ev.ResultFinding {
	out := make([]ev.ResultFinding, 0, len(in))
	for _, f := range in {
		out = append(out, ev.ResultFinding{
			Severity:    string(f.Severity),
			Category:    f.Category,
			Title:       f.Title,
			Description: f.Description,
			FileName:    f.FileName,
			LineNumber:  f.LineNumber,
		})
	}
	return out
}
