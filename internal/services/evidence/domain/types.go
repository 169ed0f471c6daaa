// Package domain defines the evidence packager and resolver types
package domain

import (
	"encoding/json"
	"time"

	core "auditforge/internal/core/evidence"
)

// RequestPayload is the logical content of a request evidence document.
// CreatedAt is part of the logical input, never sampled at publish time,
// so republishing the same request yields the same bytes and CID.
type RequestPayload struct {
	RepositoryHash     string
	ProjectName        string
	ProjectDescription string
	SourceURL          string
	Tags               []string
	Complexity         string
	EstimatedDuration  int
	ProposedPrice      int64
	MinimumPrice       int64
	ReviewerCount      int
	SubmitterAddress   string
	CreatedAt          time.Time
}

// ResultPayload is the logical content of a result evidence document
type ResultPayload struct {
	RequestRecordID    string
	RequestEvidenceCID string
	ReviewerAddress    string
	Summary            string
	Findings           []core.ResultFinding
	CompletedAt        time.Time
}

// ProfilePayload is the logical content of a reviewer profile document
type ProfilePayload struct {
	Address         string
	DisplayName     string
	Specialties     []string
	CompletedAudits int
	CreatedAt       time.Time
}

// ResolvedDocument is a fetched evidence document normalized for display
type ResolvedDocument struct {
	CID           string          `json:"cid"`
	Kind          core.Kind       `json:"kind"`
	SchemaVersion string          `json:"schema_version"`
	Name          string          `json:"name"`
	CreatedAt     string          `json:"created_at"`
	GatewayURL    string          `json:"gateway_url"`
	Document      json.RawMessage `json:"document"`
}
