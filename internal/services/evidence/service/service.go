// Package service implements the evidence packager and resolver
package service

import (
	"context"
	"encoding/json"
	"strings"

	core "auditforge/internal/core/evidence"
	perr "auditforge/internal/platform/errors"
	"auditforge/internal/platform/logger"
	"auditforge/internal/platform/metrics"
	"auditforge/internal/services/evidence/domain"
)

// Pinner is the slice of the pinning client the service needs
type Pinner interface {
	Put(ctx context.Context, name string, payload []byte) (string, error)
	Get(ctx context.Context, cid string) ([]byte, error)
	GatewayURL(cid string) string
}

// Service implements domain.PackagerPort and domain.ResolverPort
type Service struct {
	pin Pinner
	log logger.Logger
}

// New constructs the evidence service
func New(pin Pinner) *Service {
	return &Service{pin: pin, log: *logger.Named("evidence")}
}

// PublishRequest implements domain.PackagerPort
func (s *Service) PublishRequest(ctx context.Context, p domain.RequestPayload) (string, error) {
	if p.RepositoryHash == "" || p.SubmitterAddress == "" {
		return "", perr.Validationf("request evidence needs repository_hash and submitter_address")
	}

	doc := core.RequestEvidence{
		Header:             core.NewHeader(core.KindRequest, docName("audit-request", p.RepositoryHash), p.CreatedAt),
		RepositoryHash:     p.RepositoryHash,
		ProjectName:        p.ProjectName,
		ProjectDescription: p.ProjectDescription,
		SourceURL:          p.SourceURL,
		Tags:               normalizeTags(p.Tags),
		Complexity:         p.Complexity,
		EstimatedDuration:  p.EstimatedDuration,
		ProposedPrice:      p.ProposedPrice,
		MinimumPrice:       p.MinimumPrice,
		ReviewerCount:      p.ReviewerCount,
		SubmitterAddress:   p.SubmitterAddress,
	}
	return s.publish(ctx, doc.Name, core.KindRequest, doc)
}

// PublishResult implements domain.PackagerPort.
// The document embeds the request certificate's record id so the chain
// is verifiable from the result alone.
func (s *Service) PublishResult(ctx context.Context, p domain.ResultPayload) (string, error) {
	if p.RequestRecordID == "" || p.RequestEvidenceCID == "" {
		return "", perr.Validationf("result evidence needs the original request record id and evidence cid")
	}

	doc := core.ResultEvidence{
		Header: core.NewHeader(core.KindResult, docName("audit-result", p.RequestRecordID), p.CompletedAt),
		OriginalAuditRequest: core.OriginalAuditRequest{
			RequestNFTID: p.RequestRecordID,
			EvidenceCID:  p.RequestEvidenceCID,
		},
		ReviewerAddress: p.ReviewerAddress,
		Summary:         p.Summary,
		Findings:        p.Findings,
		TotalFindings:   len(p.Findings),
	}
	return s.publish(ctx, doc.Name, core.KindResult, doc)
}

// PublishProfile implements domain.PackagerPort
func (s *Service) PublishProfile(ctx context.Context, p domain.ProfilePayload) (string, error) {
	if p.Address == "" {
		return "", perr.Validationf("profile evidence needs an address")
	}

	doc := core.ProfileEvidence{
		Header:          core.NewHeader(core.KindProfile, docName("auditor-profile", p.Address), p.CreatedAt),
		Address:         p.Address,
		DisplayName:     p.DisplayName,
		Specialties:     normalizeTags(p.Specialties),
		CompletedAudits: p.CompletedAudits,
	}
	return s.publish(ctx, doc.Name, core.KindProfile, doc)
}

// Resolve implements domain.ResolverPort
func (s *Service) Resolve(ctx context.Context, cid string) (domain.ResolvedDocument, error) {
	var out domain.ResolvedDocument
	if strings.TrimSpace(cid) == "" {
		return out, perr.Validationf("cid must not be empty")
	}

	raw, err := s.pin.Get(ctx, cid)
	if err != nil {
		return out, err
	}

	var hdr core.Header
	if err := json.Unmarshal(raw, &hdr); err != nil {
		return out, perr.Externalf("resolve", "document %s is not valid json", cid)
	}
	if !hdr.Kind.Valid() {
		return out, perr.Externalf("resolve", "document %s has unknown kind %q", cid, hdr.Kind)
	}

	return domain.ResolvedDocument{
		CID:           cid,
		Kind:          hdr.Kind,
		SchemaVersion: hdr.SchemaVersion,
		Name:          hdr.Name,
		CreatedAt:     hdr.CreatedAt,
		GatewayURL:    s.pin.GatewayURL(cid),
		Document:      json.RawMessage(raw),
	}, nil
}

// GatewayURL implements domain.ResolverPort
func (s *Service) GatewayURL(cid string) string { return s.pin.GatewayURL(cid) }

func (s *Service) publish(ctx context.Context, name string, kind core.Kind, doc any) (string, error) {
	b, err := core.Marshal(doc)
	if err != nil {
		return "", err
	}
	cid, err := s.pin.Put(ctx, name, b)
	if err != nil {
		return "", err
	}
	metrics.EvidencePublishedTotal.WithLabelValues(string(kind)).Inc()
	s.log.Debug().Str("kind", string(kind)).Str("cid", cid).Msg("evidence published")
	return cid, nil
}

// docName keys a document by its kind and a stable identity fragment
func docName(prefix, ident string) string {
	ident = strings.TrimPrefix(ident, "sha256:")
	if len(ident) > 12 {
		ident = ident[:12]
	}
	return prefix + "-" + ident
}

// normalizeTags trims and drops empty entries without reordering
func normalizeTags(in []string) []string {
	out := make([]string, 0, len(in))
	for _, t := range in {
		t = strings.TrimSpace(t)
		if t != "" {
			out = append(out, t)
		}
	}
	return out
}
