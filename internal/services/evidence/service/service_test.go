package service

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	core "auditforge/internal/core/evidence"
	perr "auditforge/internal/platform/errors"
	"auditforge/internal/services/evidence/domain"
)

// capturePinner content-addresses in memory so identical bytes share a CID
type capturePinner struct {
	puts    int
	byCID   map[string][]byte
	lastRaw []byte
}

func newCapturePinner() *capturePinner {
	return &capturePinner{byCID: map[string][]byte{}}
}

func (p *capturePinner) Put(ctx context.Context, name string, payload []byte) (string, error) {
	p.puts++
	p.lastRaw = payload
	cid := core.Digest(payload)
	p.byCID[cid] = payload
	return cid, nil
}

func (p *capturePinner) Get(ctx context.Context, cid string) ([]byte, error) {
	b, ok := p.byCID[cid]
	if !ok {
		return nil, perr.NotFoundf("document %s not found", cid)
	}
	return b, nil
}

func (p *capturePinner) GatewayURL(cid string) string { return "https://gate.test/gate/" + cid }

func samplePayload() domain.RequestPayload {
	return domain.RequestPayload{
		RepositoryHash:     "sha256:ab12cd34ef56",
		ProjectName:        "acme-bridge",
		ProjectDescription: "bridge contracts",
		SourceURL:          "https://example.com/acme/bridge",
		Tags:               []string{"bridge", " solidity ", ""},
		Complexity:         "critical",
		EstimatedDuration:  12,
		ProposedPrice:      35000,
		MinimumPrice:       26250,
		ReviewerCount:      1,
		SubmitterAddress:   "0xsubmitter",
		CreatedAt:          time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC),
	}
}

func TestPublishRequestIdempotentCID(t *testing.T) {
	t.Parallel()

	pin := newCapturePinner()
	s := New(pin)

	a, err := s.PublishRequest(context.Background(), samplePayload())
	if err != nil {
		t.Fatalf("publish: %v", err)
	}
	b, err := s.PublishRequest(context.Background(), samplePayload())
	if err != nil {
		t.Fatalf("publish: %v", err)
	}
	if a != b {
		t.Fatalf("same logical document produced different cids: %s vs %s", a, b)
	}
}

func TestPublishResultEmbedsRequestLink(t *testing.T) {
	t.Parallel()

	pin := newCapturePinner()
	s := New(pin)

	_, err := s.PublishResult(context.Background(), domain.ResultPayload{
		RequestRecordID:    "42",
		RequestEvidenceCID: "sha256:reqcid",
		ReviewerAddress:    "0xreviewer",
		Summary:            "one low finding",
		Findings: []core.ResultFinding{
			{Severity: "low", Category: "gas", Title: "unbounded loop", Description: "..."},
		},
		CompletedAt: time.Date(2026, 4, 1, 9, 0, 0, 0, time.UTC),
	})
	if err != nil {
		t.Fatalf("publish: %v", err)
	}

	var doc core.ResultEvidence
	if err := json.Unmarshal(pin.lastRaw, &doc); err != nil {
		t.Fatalf("unmarshal published doc: %v", err)
	}
	if doc.OriginalAuditRequest.RequestNFTID != "42" {
		t.Fatalf("request_nft_id = %q, want 42", doc.OriginalAuditRequest.RequestNFTID)
	}
	if doc.OriginalAuditRequest.EvidenceCID != "sha256:reqcid" {
		t.Fatalf("evidence_cid = %q", doc.OriginalAuditRequest.EvidenceCID)
	}
	if doc.TotalFindings != 1 {
		t.Fatalf("total_findings = %d, want 1", doc.TotalFindings)
	}
}

func TestPublishResultRequiresRequestLink(t *testing.T) {
	t.Parallel()

	s := New(newCapturePinner())
	_, err := s.PublishResult(context.Background(), domain.ResultPayload{ReviewerAddress: "0xr"})
	if perr.CodeOf(err) != perr.ErrorCodeValidation {
		t.Fatalf("missing link should be a validation error, got %v", err)
	}
}

func TestResolveRoundtrip(t *testing.T) {
	t.Parallel()

	pin := newCapturePinner()
	s := New(pin)

	cid, err := s.PublishRequest(context.Background(), samplePayload())
	if err != nil {
		t.Fatalf("publish: %v", err)
	}

	got, err := s.Resolve(context.Background(), cid)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if got.Kind != core.KindRequest {
		t.Fatalf("kind = %q, want %q", got.Kind, core.KindRequest)
	}
	if got.SchemaVersion != core.SchemaVersion {
		t.Fatalf("schema_version = %q", got.SchemaVersion)
	}
	if got.GatewayURL == "" || got.CID != cid {
		t.Fatalf("resolved document incomplete: %+v", got)
	}
}

func TestResolveRejectsUnknownKind(t *testing.T) {
	t.Parallel()

	pin := newCapturePinner()
	s := New(pin)

	cid, _ := pin.Put(context.Background(), "x", []byte(`{"kind":"mystery","schema_version":"1"}`))
	_, err := s.Resolve(context.Background(), cid)
	if perr.CodeOf(err) != perr.ErrorCodeExternal {
		t.Fatalf("unknown kind should resolve to external error, got %v", err)
	}
	if perr.StepOf(err) != "resolve" {
		t.Fatalf("step = %q, want resolve", perr.StepOf(err))
	}
}
