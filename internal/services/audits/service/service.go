// Package service implements the audit lifecycle controller
package service

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"

	core "auditforge/internal/core/estimate"
	evcore "auditforge/internal/core/evidence"
	"auditforge/internal/core/pricing"
	"auditforge/internal/modkit/repokit"
	perr "auditforge/internal/platform/errors"
	"auditforge/internal/platform/logger"
	"auditforge/internal/platform/metrics"
	"auditforge/internal/platform/store"
	"auditforge/internal/services/audits/domain"
	"auditforge/internal/services/audits/repo"
	certdom "auditforge/internal/services/certify/domain"
	estdom "auditforge/internal/services/estimate/domain"
	evdom "auditforge/internal/services/evidence/domain"
)

// seams for tests
var (
	nowFn = time.Now
	newID = uuid.New
)

// Ports are the pipeline collaborators the controller drives
type Ports struct {
	Quote    estdom.QuotePort
	Packager evdom.PackagerPort
	Resolver evdom.ResolverPort
	Minter   certdom.MinterPort
}

// Service implements domain.ControllerPort
type Service struct {
	db       repokit.TxRunner
	binder   repokit.Binder[repo.Storage]
	ports    Ports
	activity store.Clickhouse
	log      logger.Logger
}

// New constructs the controller. activity may be nil; transition events
// are then skipped entirely.
func New(db repokit.TxRunner, binder repokit.Binder[repo.Storage], ports Ports, activity store.Clickhouse) *Service {
	if ports.Quote == nil || ports.Packager == nil || ports.Resolver == nil || ports.Minter == nil {
		panic("audits: controller requires quote, packager, resolver, and minter ports")
	}
	return &Service{
		db:       db,
		binder:   binder,
		ports:    ports,
		activity: activity,
		log:      *logger.Named("audits"),
	}
}

// Submit runs the full submission pipeline: estimate, package, mint,
// persist. Estimation is captured once here and persisted immediately,
// so the stored numbers can never drift from what the submitter saw.
//
// Failure semantics follow durability: before packaging nothing exists,
// so the caller retries the whole call; after packaging the evidence
// CID is durable and rides on the error, and a retry with
// ResumeEvidenceCID set replays the published document instead of
// estimating again.
func (s *Service) Submit(ctx context.Context, in domain.SubmitInput) (domain.AuditRequest, error) {
	var zero domain.AuditRequest

	if in.ResumeEvidenceCID != "" {
		return s.resumeSubmit(ctx, in)
	}

	if in.ReviewerCount == 0 {
		in.ReviewerCount = 1
	}
	if in.ReviewerCount < pricing.MinReviewers || in.ReviewerCount > pricing.MaxReviewers {
		return zero, perr.Validationf("reviewer count must be between %d and %d",
			pricing.MinReviewers, pricing.MaxReviewers)
	}

	quote, err := s.ports.Quote.Quote(ctx, estdom.QuoteInput{
		RepositoryURL: in.SourceURL,
		Analysis:      in.Analysis,
	})
	if err != nil {
		return zero, err
	}

	if in.NegotiatedPrice != nil && *in.NegotiatedPrice < quote.MinimumPrice {
		return zero, perr.Validationf("negotiated price %d is below the minimum %d",
			*in.NegotiatedPrice, quote.MinimumPrice)
	}

	createdAt := nowFn().UTC()

	cid, err := s.ports.Packager.PublishRequest(ctx, evdom.RequestPayload{
		RepositoryHash:     in.RepositoryHash,
		ProjectName:        in.ProjectName,
		ProjectDescription: in.ProjectDescription,
		SourceURL:          in.SourceURL,
		Tags:               in.Tags,
		Complexity:         string(quote.Complexity),
		EstimatedDuration:  quote.DurationDays,
		ProposedPrice:      quote.Price,
		MinimumPrice:       quote.MinimumPrice,
		ReviewerCount:      in.ReviewerCount,
		SubmitterAddress:   in.SubmitterAddress,
		CreatedAt:          createdAt,
	})
	if err != nil {
		// nothing durable exists yet, a plain retry is safe
		metrics.PipelineStepFailuresTotal.WithLabelValues("package").Inc()
		return zero, err
	}

	return s.mintAndStore(ctx, domain.AuditRequest{
		RepositoryHash:        in.RepositoryHash,
		ProjectName:           in.ProjectName,
		ProjectDescription:    in.ProjectDescription,
		SourceURL:             in.SourceURL,
		Tags:                  in.Tags,
		Complexity:            quote.Complexity,
		EstimatedDurationDays: quote.DurationDays,
		ProposedPrice:         quote.Price,
		MinimumPrice:          quote.MinimumPrice,
		NegotiatedPrice:       in.NegotiatedPrice,
		ReviewerCount:         in.ReviewerCount,
		SubmitterAddress:      in.SubmitterAddress,
		CreatedAt:             createdAt,
	}, cid)
}

// resumeSubmit finishes a submission whose mint or persist failed after
// the evidence document became durable. The published document is the
// anchor: every descriptive and estimation field is read back from it,
// never re-derived, so the stored row cannot contradict the evidence a
// certificate will point at.
func (s *Service) resumeSubmit(ctx context.Context, in domain.SubmitInput) (domain.AuditRequest, error) {
	var zero domain.AuditRequest
	cid := in.ResumeEvidenceCID

	doc, err := s.ports.Resolver.Resolve(ctx, cid)
	if err != nil {
		metrics.PipelineStepFailuresTotal.WithLabelValues("resolve").Inc()
		return zero, perr.WithCID(err, cid)
	}
	if doc.Kind != evcore.KindRequest {
		return zero, perr.Validationf("evidence %s is a %s document, not an audit request", cid, doc.Kind)
	}

	var rec evcore.RequestEvidence
	if err := json.Unmarshal(doc.Document, &rec); err != nil {
		return zero, perr.JSONErrf("evidence %s does not decode as a request document: %v", cid, err)
	}
	if !core.Complexity(rec.Complexity).Valid() {
		return zero, perr.Validationf("evidence %s carries unknown complexity %q", cid, rec.Complexity)
	}
	createdAt, err := time.Parse(time.RFC3339, rec.Header.CreatedAt)
	if err != nil {
		return zero, perr.JSONErrf("evidence %s carries a bad created_at %q: %v", cid, rec.Header.CreatedAt, err)
	}

	if in.NegotiatedPrice != nil && *in.NegotiatedPrice < rec.MinimumPrice {
		return zero, perr.Validationf("negotiated price %d is below the minimum %d",
			*in.NegotiatedPrice, rec.MinimumPrice)
	}

	return s.mintAndStore(ctx, domain.AuditRequest{
		RepositoryHash:        rec.RepositoryHash,
		ProjectName:           rec.ProjectName,
		ProjectDescription:    rec.ProjectDescription,
		SourceURL:             rec.SourceURL,
		Tags:                  rec.Tags,
		Complexity:            core.Complexity(rec.Complexity),
		EstimatedDurationDays: rec.EstimatedDuration,
		ProposedPrice:         rec.ProposedPrice,
		MinimumPrice:          rec.MinimumPrice,
		NegotiatedPrice:       in.NegotiatedPrice,
		ReviewerCount:         rec.ReviewerCount,
		SubmitterAddress:      rec.SubmitterAddress,
		CreatedAt:             createdAt.UTC(),
	}, cid)
}

// mintAndStore is the tail both submission paths share: mint the
// request certificate for the evidence CID, then persist the row
func (s *Service) mintAndStore(ctx context.Context, a domain.AuditRequest, cid string) (domain.AuditRequest, error) {
	var zero domain.AuditRequest

	cert, err := s.ports.Minter.MintRequest(ctx, certdom.MintInput{
		Recipient: a.SubmitterAddress,
		CID:       cid,
	})
	if err != nil {
		metrics.PipelineStepFailuresTotal.WithLabelValues("mint").Inc()
		// the evidence document is durable, carry its CID for resumption
		return zero, perr.WithCID(err, cid)
	}

	a.ID = newID()
	a.Status = domain.StatusAvailable
	a.RequestRecordID = cert.RecordID
	a.RequestEvidenceCID = cid
	a.RequestTxID = cert.TxID

	if err := repokit.MustBind(s.binder, s.db).Create(ctx, a); err != nil {
		metrics.PipelineStepFailuresTotal.WithLabelValues("store").Inc()
		return zero, perr.WithCID(perr.WithStep(err, "store"), cid)
	}

	s.event(ctx, a.ID, "", domain.StatusAvailable, a.SubmitterAddress)
	s.log.Info().
		Str("id", a.ID.String()).
		Str("record_id", cert.RecordID).
		Str("cid", cid).
		Msg("audit request submitted")
	return a, nil
}

// Accept claims an available request for a reviewer.
// The conditional update is the only concurrency guard; losing the race
// is a conflict for the caller to resolve, never a retry here.
func (s *Service) Accept(ctx context.Context, id uuid.UUID, in domain.AcceptInput) (domain.AuditRequest, error) {
	var zero domain.AuditRequest

	st := repokit.MustBind(s.binder, s.db)
	a, err := st.Get(ctx, id)
	if err != nil {
		return zero, err
	}
	if a.Status != domain.StatusAvailable {
		return zero, perr.Conflictf("audit request %s is %s, not available", id, a.Status)
	}

	start := nowFn().UTC()
	completion := start.AddDate(0, 0, a.EstimatedDurationDays)

	ok, err := st.AcceptGuarded(ctx, id, in.ReviewerAddress, start, completion)
	if err != nil {
		return zero, err
	}
	if !ok {
		metrics.TransitionConflictsTotal.Inc()
		return zero, perr.Conflictf("audit request %s is no longer available", id)
	}

	// reviewer commitment is a state change only; the owner certificate
	// stage exists in the enum but is not minted here
	s.event(ctx, id, domain.StatusAvailable, domain.StatusInProgress, in.ReviewerAddress)

	a.Status = domain.StatusInProgress
	a.ReviewerAddress = in.ReviewerAddress
	a.StartDate = &start
	a.EstimatedCompletionDate = &completion
	return a, nil
}

// SubmitResults completes an in-progress request: package the result
// evidence referencing the request record, mint the result certificate,
// then apply the guarded completion with the findings in one
// transaction. Resume semantics match Submit.
func (s *Service) SubmitResults(ctx context.Context, id uuid.UUID, in domain.SubmitResultsInput) (domain.AuditRequest, error) {
	var zero domain.AuditRequest

	for _, f := range in.Findings {
		if !f.Severity.Valid() {
			return zero, perr.Validationf("unknown finding severity %q", f.Severity)
		}
		if !domain.ValidCategory(f.Category) {
			return zero, perr.Validationf("unknown finding category %q", f.Category)
		}
	}

	st := repokit.MustBind(s.binder, s.db)
	a, err := st.Get(ctx, id)
	if err != nil {
		return zero, err
	}
	if a.Status != domain.StatusInProgress {
		return zero, perr.Conflictf("audit request %s is %s, not in progress", id, a.Status)
	}
	if a.ReviewerAddress != in.ReviewerAddress {
		return zero, perr.Authorizationf("reviewer %s is not committed to audit request %s", in.ReviewerAddress, id)
	}
	if a.RequestRecordID == "" {
		return zero, perr.Conflictf("audit request %s has no request certificate to reference", id)
	}

	completedAt := nowFn().UTC()

	cid := in.ResumeEvidenceCID
	if cid == "" {
		cid, err = s.ports.Packager.PublishResult(ctx, evdom.ResultPayload{
			RequestRecordID:    a.RequestRecordID,
			RequestEvidenceCID: a.RequestEvidenceCID,
			ReviewerAddress:    in.ReviewerAddress,
			Summary:            in.Summary,
			Findings:           domain.ResultFindings(in.Findings),
			CompletedAt:        completedAt,
		})
		if err != nil {
			metrics.PipelineStepFailuresTotal.WithLabelValues("package").Inc()
			return zero, err
		}
	}

	cert, err := s.ports.Minter.MintResult(ctx, certdom.MintInput{
		Recipient: in.ReviewerAddress,
		CID:       cid,
	})
	if err != nil {
		metrics.PipelineStepFailuresTotal.WithLabelValues("mint").Inc()
		return zero, perr.WithCID(err, cid)
	}

	findings := make([]domain.Finding, 0, len(in.Findings))
	for _, f := range in.Findings {
		findings = append(findings, domain.Finding{
			ID:          newID(),
			RequestID:   id,
			Severity:    f.Severity,
			Category:    f.Category,
			Title:       f.Title,
			Description: f.Description,
			FileName:    f.FileName,
			LineNumber:  f.LineNumber,
			Status:      domain.FindingOpen,
			CreatedAt:   completedAt,
		})
	}

	var guarded bool
	err = repokit.WithTx(ctx, s.db, func(q repokit.Queryer) error {
		tx := s.binder.Bind(q)
		ok, err := tx.CompleteGuarded(ctx, id, in.ReviewerAddress, cert.RecordID, cid, cert.TxID, completedAt)
		if err != nil {
			return err
		}
		if !ok {
			return nil
		}
		guarded = true
		return tx.InsertFindings(ctx, id, findings)
	})
	if err != nil {
		metrics.PipelineStepFailuresTotal.WithLabelValues("store").Inc()
		return zero, perr.WithCID(perr.WithStep(err, "store"), cid)
	}
	if !guarded {
		metrics.TransitionConflictsTotal.Inc()
		return zero, perr.Conflictf("audit request %s is no longer in progress", id)
	}

	s.event(ctx, id, domain.StatusInProgress, domain.StatusCompleted, in.ReviewerAddress)
	s.log.Info().
		Str("id", id.String()).
		Str("result_record_id", cert.RecordID).
		Int("findings", len(findings)).
		Msg("audit completed")

	a.Status = domain.StatusCompleted
	a.ResultRecordID = cert.RecordID
	a.ResultEvidenceCID = cid
	a.ResultTxID = cert.TxID
	a.CompletedAt = &completedAt
	return a, nil
}

// Cancel abandons a non-terminal request, persist only
func (s *Service) Cancel(ctx context.Context, id uuid.UUID, in domain.CancelInput) (domain.AuditRequest, error) {
	var zero domain.AuditRequest

	st := repokit.MustBind(s.binder, s.db)
	a, err := st.Get(ctx, id)
	if err != nil {
		return zero, err
	}
	if a.SubmitterAddress != in.RequestedBy && a.ReviewerAddress != in.RequestedBy {
		return zero, perr.Authorizationf("%s is not a party to audit request %s", in.RequestedBy, id)
	}

	ok, err := st.CancelGuarded(ctx, id)
	if err != nil {
		return zero, err
	}
	if !ok {
		metrics.TransitionConflictsTotal.Inc()
		return zero, perr.Conflictf("audit request %s is already %s", id, a.Status)
	}

	s.event(ctx, id, a.Status, domain.StatusCancelled, in.RequestedBy)

	a.Status = domain.StatusCancelled
	return a, nil
}

// Get implements domain.ControllerPort
func (s *Service) Get(ctx context.Context, id uuid.UUID) (domain.AuditRequest, error) {
	return repokit.MustBind(s.binder, s.db).Get(ctx, id)
}

// List implements domain.ControllerPort
func (s *Service) List(ctx context.Context, f domain.ListFilter) ([]domain.AuditRequest, error) {
	if f.Status != "" && !f.Status.Valid() {
		return nil, perr.Validationf("unknown status %q", f.Status)
	}
	return repokit.MustBind(s.binder, s.db).List(ctx, f)
}

// Report assembles the verification view of a request
func (s *Service) Report(ctx context.Context, id uuid.UUID) (domain.Report, error) {
	var zero domain.Report

	st := repokit.MustBind(s.binder, s.db)
	a, err := st.Get(ctx, id)
	if err != nil {
		return zero, err
	}
	findings, err := st.ListFindings(ctx, id)
	if err != nil {
		return zero, err
	}

	breakdown, err := pricing.Calculate(a.Price(), a.ReviewerCount)
	if err != nil {
		return zero, err
	}

	return domain.Report{
		Request:  a,
		Findings: findings,
		Pricing: domain.PricingView{
			BasePrice:            a.Price(),
			InitialEngagementFee: breakdown.InitialEngagementFee,
			ReviewerPayout:       breakdown.ReviewerPayout,
			PlatformFee:          breakdown.PlatformFee,
			TotalPrice:           breakdown.TotalPrice,
		},
		Certificates: s.certificates(a),
	}, nil
}

// certificates lists the three-stage chain, including the planned
// owner stage so the gap is visible rather than implicit
func (s *Service) certificates(a domain.AuditRequest) []domain.CertificateRef {
	gate := func(cid string) string {
		if cid == "" {
			return ""
		}
		return s.ports.Resolver.GatewayURL(cid)
	}

	return []domain.CertificateRef{
		{
			Stage:      string(certdom.StageRequest),
			RecordID:   a.RequestRecordID,
			CID:        a.RequestEvidenceCID,
			TxID:       a.RequestTxID,
			GatewayURL: gate(a.RequestEvidenceCID),
			Issued:     a.RequestRecordID != "",
		},
		{
			Stage:       string(certdom.StageOwner),
			Issued:      false,
			PlannedNote: "reviewer commitment is recorded in the request state only",
		},
		{
			Stage:      string(certdom.StageResult),
			RecordID:   a.ResultRecordID,
			CID:        a.ResultEvidenceCID,
			TxID:       a.ResultTxID,
			GatewayURL: gate(a.ResultEvidenceCID),
			Issued:     a.ResultRecordID != "",
		},
	}
}

// event appends a transition to the activity log, best effort with its
// own short deadline so the pipeline never blocks on it
func (s *Service) event(ctx context.Context, id uuid.UUID, from, to domain.Status, actor string) {
	if s.activity == nil {
		return
	}
	cctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 2*time.Second)
	defer cancel()

	err := s.activity.Insert(cctx, "audit_activity",
		[]string{"request_id", "from_status", "to_status", "actor", "at"},
		[][]any{{id.String(), string(from), string(to), actor, nowFn().UTC()}},
	)
	if err != nil {
		s.log.Warn().Err(err).Str("id", id.String()).Msg("activity event dropped")
	}
}
