// Package evidence defines the canonical content-addressed document schemas.
//
// Every document kind has a fixed field set and is encoded with
// encoding/json in declaration order, so two semantically identical
// payloads produce byte-identical documents and therefore the same
// content identifier. Documents are immutable after publication; a new
// fact means a new document that may cross-reference the prior one.
package evidence

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"
)

// SchemaVersion is embedded in every document so old records stay parseable
const SchemaVersion = "1"

// Kind tags the document union
type Kind string

// Document kinds
const (
	KindRequest Kind = "audit_request"
	KindResult  Kind = "audit_result"
	KindProfile Kind = "auditor_profile"
)

// Valid reports whether k is a known document kind
func (k Kind) Valid() bool {
	switch k {
	case KindRequest, KindResult, KindProfile:
		return true
	}
	return false
}

// Header is the common front matter of every document
type Header struct {
	Kind          Kind   `json:"kind"`
	SchemaVersion string `json:"schema_version"`
	Name          string `json:"name"`
	CreatedAt     string `json:"created_at"`
}

// RequestEvidence is published when an audit request is submitted
type RequestEvidence struct {
	Header
	RepositoryHash     string   `json:"repository_hash"`
	ProjectName        string   `json:"project_name"`
	ProjectDescription string   `json:"project_description"`
	SourceURL          string   `json:"source_url"`
	Tags               []string `json:"tags"`
	Complexity         string   `json:"complexity"`
	EstimatedDuration  int      `json:"estimated_duration_days"`
	ProposedPrice      int64    `json:"proposed_price"`
	MinimumPrice       int64    `json:"minimum_price"`
	ReviewerCount      int      `json:"reviewer_count"`
	SubmitterAddress   string   `json:"submitter_address"`
}

// OriginalAuditRequest links a result document back to the request record
type OriginalAuditRequest struct {
	RequestNFTID string `json:"request_nft_id"`
	EvidenceCID  string `json:"evidence_cid"`
}

// ResultFinding is one finding inside a result document
type ResultFinding struct {
	Severity    string `json:"severity"`
	Category    string `json:"category"`
	Title       string `json:"title"`
	Description string `json:"description"`
	FileName    string `json:"file_name,omitempty"`
	LineNumber  int    `json:"line_number,omitempty"`
}

// ResultEvidence is published when an audit completes.
// It must reference the request certificate so the chain of records is
// verifiable from the result alone.
type ResultEvidence struct {
	Header
	OriginalAuditRequest OriginalAuditRequest `json:"original_audit_request"`
	ReviewerAddress      string               `json:"reviewer_address"`
	Summary              string               `json:"summary"`
	Findings             []ResultFinding      `json:"findings"`
	TotalFindings        int                  `json:"total_findings"`
}

// ProfileEvidence is published for a reviewer's public ledger profile
type ProfileEvidence struct {
	Header
	Address         string   `json:"address"`
	DisplayName     string   `json:"display_name"`
	Specialties     []string `json:"specialties"`
	CompletedAudits int      `json:"completed_audits"`
}

// NewHeader stamps the shared front matter for a document kind.
// The timestamp is truncated to the second and rendered in UTC so the
// encoding has no sub-second jitter.
func NewHeader(kind Kind, name string, at time.Time) Header {
	return Header{
		Kind:          kind,
		SchemaVersion: SchemaVersion,
		Name:          name,
		CreatedAt:     at.UTC().Truncate(time.Second).Format(time.RFC3339),
	}
}

// Marshal encodes a document in its canonical byte form
func Marshal(doc any) ([]byte, error) {
	b, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("evidence: marshal: %w", err)
	}
	return b, nil
}

// Digest returns the content digest of canonical bytes as sha256:<hex>
func Digest(b []byte) string {
	sum := sha256.Sum256(b)
	return "sha256:" + hex.EncodeToString(sum[:])
}

// DigestOf marshals doc canonically and digests it
func DigestOf(doc any) (string, error) {
	b, err := Marshal(doc)
	if err != nil {
		return "", err
	}
	return Digest(b), nil
}
