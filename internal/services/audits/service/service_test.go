package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"

	core "auditforge/internal/core/estimate"
	evcore "auditforge/internal/core/evidence"
	"auditforge/internal/modkit/repokit"
	perr "auditforge/internal/platform/errors"
	"auditforge/internal/platform/testkit"
	"auditforge/internal/services/audits/domain"
	"auditforge/internal/services/audits/repo"
	certdom "auditforge/internal/services/certify/domain"
	estdom "auditforge/internal/services/estimate/domain"
	evdom "auditforge/internal/services/evidence/domain"
)

// memStorage is an in-memory repo.Storage with the same guarded
// transition semantics as the pg implementation
type memStorage struct {
	audits   map[uuid.UUID]domain.AuditRequest
	findings map[uuid.UUID][]domain.Finding
}

func newMemStorage() *memStorage {
	return &memStorage{
		audits:   map[uuid.UUID]domain.AuditRequest{},
		findings: map[uuid.UUID][]domain.Finding{},
	}
}

func (m *memStorage) Create(_ context.Context, a domain.AuditRequest) error {
	m.audits[a.ID] = a
	return nil
}

func (m *memStorage) Get(_ context.Context, id uuid.UUID) (domain.AuditRequest, error) {
	a, ok := m.audits[id]
	if !ok {
		return domain.AuditRequest{}, perr.NotFoundf("audit request %s not found", id)
	}
	return a, nil
}

func (m *memStorage) List(_ context.Context, f domain.ListFilter) ([]domain.AuditRequest, error) {
	var out []domain.AuditRequest
	for _, a := range m.audits {
		if f.Status != "" && a.Status != f.Status {
			continue
		}
		out = append(out, a)
	}
	return out, nil
}

func (m *memStorage) AcceptGuarded(
	_ context.Context, id uuid.UUID, reviewer string, start, completion time.Time,
) (bool, error) {
	a, ok := m.audits[id]
	if !ok || a.Status != domain.StatusAvailable {
		return false, nil
	}
	a.Status = domain.StatusInProgress
	a.ReviewerAddress = reviewer
	a.StartDate = &start
	a.EstimatedCompletionDate = &completion
	m.audits[id] = a
	return true, nil
}

func (m *memStorage) CompleteGuarded(
	_ context.Context, id uuid.UUID, reviewer, recordID, cid, txID string, completedAt time.Time,
) (bool, error) {
	a, ok := m.audits[id]
	if !ok || a.Status != domain.StatusInProgress || a.ReviewerAddress != reviewer {
		return false, nil
	}
	a.Status = domain.StatusCompleted
	a.ResultRecordID = recordID
	a.ResultEvidenceCID = cid
	a.ResultTxID = txID
	a.CompletedAt = &completedAt
	m.audits[id] = a
	return true, nil
}

func (m *memStorage) CancelGuarded(_ context.Context, id uuid.UUID) (bool, error) {
	a, ok := m.audits[id]
	if !ok || a.Status.Terminal() {
		return false, nil
	}
	a.Status = domain.StatusCancelled
	m.audits[id] = a
	return true, nil
}

func (m *memStorage) InsertFindings(_ context.Context, requestID uuid.UUID, xs []domain.Finding) error {
	m.findings[requestID] = append(m.findings[requestID], xs...)
	return nil
}

func (m *memStorage) ListFindings(_ context.Context, requestID uuid.UUID) ([]domain.Finding, error) {
	return m.findings[requestID], nil
}

type memBinder struct{ st *memStorage }

func (b memBinder) Bind(_ repokit.Queryer) repo.Storage { return b.st }

// stubTx satisfies TxRunner for the in-memory binder; queries are never
// issued against it
type stubTx struct{ repokit.Queryer }

func (stubTx) Tx(_ context.Context, fn func(q repokit.Queryer) error) error { return fn(nil) }

type fakeQuote struct {
	calls int
	quote estdom.Quote
}

func (f *fakeQuote) Quote(_ context.Context, _ estdom.QuoteInput) (estdom.Quote, error) {
	f.calls++
	return f.quote, nil
}

// capturePackager records payloads, returns deterministic CIDs, and
// keeps the encoded documents so the paired resolver can serve them
type capturePackager struct {
	requests []evdom.RequestPayload
	results  []evdom.ResultPayload
	docs     map[string]evdom.ResolvedDocument
}

func newCapturePackager() *capturePackager {
	return &capturePackager{docs: map[string]evdom.ResolvedDocument{}}
}

func (p *capturePackager) PublishRequest(_ context.Context, in evdom.RequestPayload) (string, error) {
	p.requests = append(p.requests, in)
	cid := fmt.Sprintf("bafyreq%d", len(p.requests))
	doc := evcore.RequestEvidence{
		Header:             evcore.NewHeader(evcore.KindRequest, "audit-request", in.CreatedAt),
		RepositoryHash:     in.RepositoryHash,
		ProjectName:        in.ProjectName,
		ProjectDescription: in.ProjectDescription,
		SourceURL:          in.SourceURL,
		Tags:               in.Tags,
		Complexity:         in.Complexity,
		EstimatedDuration:  in.EstimatedDuration,
		ProposedPrice:      in.ProposedPrice,
		MinimumPrice:       in.MinimumPrice,
		ReviewerCount:      in.ReviewerCount,
		SubmitterAddress:   in.SubmitterAddress,
	}
	b, err := evcore.Marshal(doc)
	if err != nil {
		return "", err
	}
	p.docs[cid] = evdom.ResolvedDocument{CID: cid, Kind: evcore.KindRequest, Document: b}
	return cid, nil
}

func (p *capturePackager) PublishResult(_ context.Context, in evdom.ResultPayload) (string, error) {
	p.results = append(p.results, in)
	cid := fmt.Sprintf("bafyres%d", len(p.results))
	p.docs[cid] = evdom.ResolvedDocument{CID: cid, Kind: evcore.KindResult}
	return cid, nil
}

func (p *capturePackager) PublishProfile(_ context.Context, _ evdom.ProfilePayload) (string, error) {
	return "bafyprofile", nil
}

type fakeMinter struct {
	mints    int
	failNext int
	lastCID  string
}

func (f *fakeMinter) mint(in certdom.MintInput) (certdom.Certificate, error) {
	if f.failNext > 0 {
		f.failNext--
		return certdom.Certificate{}, perr.Externalf("mint", "ledger unavailable")
	}
	f.mints++
	f.lastCID = in.CID
	return certdom.Certificate{
		RecordID: fmt.Sprintf("rec-%d", f.mints),
		TxID:     fmt.Sprintf("0xtx%d", f.mints),
		CID:      in.CID,
	}, nil
}

func (f *fakeMinter) MintRequest(_ context.Context, in certdom.MintInput) (certdom.Certificate, error) {
	return f.mint(in)
}

func (f *fakeMinter) MintResult(_ context.Context, in certdom.MintInput) (certdom.Certificate, error) {
	return f.mint(in)
}

// fakeResolver serves whatever the paired packager pinned
type fakeResolver struct {
	docs map[string]evdom.ResolvedDocument
}

func (f fakeResolver) Resolve(_ context.Context, cid string) (evdom.ResolvedDocument, error) {
	d, ok := f.docs[cid]
	if !ok {
		return evdom.ResolvedDocument{}, perr.NotFoundf("evidence %s is not pinned", cid)
	}
	return d, nil
}

func (fakeResolver) GatewayURL(cid string) string { return "https://gate.test/gate/" + cid }

type fixture struct {
	svc      *Service
	st       *memStorage
	quote    *fakeQuote
	packager *capturePackager
	minter   *fakeMinter
}

func newFixture() *fixture {
	st := newMemStorage()
	q := &fakeQuote{quote: estdom.Quote{
		Estimate: core.Estimate{
			Complexity:   core.High,
			Price:        25000,
			MinimumPrice: 18750,
			DurationDays: 10,
		},
		Source: estdom.SourceFallback,
	}}
	p := newCapturePackager()
	m := &fakeMinter{}
	svc := New(stubTx{}, memBinder{st: st}, Ports{
		Quote:    q,
		Packager: p,
		Resolver: fakeResolver{docs: p.docs},
		Minter:   m,
	}, nil)
	return &fixture{svc: svc, st: st, quote: q, packager: p, minter: m}
}

func submitInput() domain.SubmitInput {
	return domain.SubmitInput{
		ProjectName:      "Vault Protocol",
		SourceURL:        "https://example.com/vault-protocol",
		RepositoryHash:   "sha256:feedbead",
		Tags:             []string{"vault", "defi"},
		ReviewerCount:    1,
		SubmitterAddress: "0x00112233445566778899aabbccddeeff00112233",
	}
}

func TestSubmitPipeline(t *testing.T) {
	testkit.Serial(t)
	fixed := time.Date(2026, 3, 1, 10, 30, 0, 0, time.UTC)
	testkit.Swap(t, &nowFn, func() time.Time { return fixed })

	fx := newFixture()
	a, err := fx.svc.Submit(context.Background(), submitInput())
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}

	if a.Status != domain.StatusAvailable {
		t.Fatalf("status = %s, want available", a.Status)
	}
	if a.Complexity != core.High || a.ProposedPrice != 25000 || a.MinimumPrice != 18750 {
		t.Fatalf("estimation not captured: %+v", a)
	}
	if a.RequestRecordID == "" || a.RequestEvidenceCID == "" || a.RequestTxID == "" {
		t.Fatalf("request certificate fields missing: %+v", a)
	}
	if !a.CreatedAt.Equal(fixed) {
		t.Fatalf("CreatedAt = %v, want %v", a.CreatedAt, fixed)
	}

	if len(fx.packager.requests) != 1 {
		t.Fatalf("published %d request documents, want 1", len(fx.packager.requests))
	}
	pub := fx.packager.requests[0]
	if pub.SubmitterAddress != a.SubmitterAddress || !pub.CreatedAt.Equal(fixed) {
		t.Fatalf("published payload mismatch: %+v", pub)
	}

	stored, err := fx.st.Get(context.Background(), a.ID)
	if err != nil {
		t.Fatalf("Get after submit: %v", err)
	}
	if stored.RequestRecordID != a.RequestRecordID {
		t.Fatalf("stored record id %q != returned %q", stored.RequestRecordID, a.RequestRecordID)
	}
}

func TestSubmitDefaultsToSingleReviewer(t *testing.T) {
	t.Parallel()

	fx := newFixture()
	in := submitInput()
	in.ReviewerCount = 0

	a, err := fx.svc.Submit(context.Background(), in)
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if a.ReviewerCount != 1 {
		t.Fatalf("reviewer count = %d, want 1", a.ReviewerCount)
	}
	if fx.packager.requests[0].ReviewerCount != 1 {
		t.Fatalf("published reviewer count = %d, want 1", fx.packager.requests[0].ReviewerCount)
	}
}

func TestSubmitRejectsLowNegotiatedPrice(t *testing.T) {
	t.Parallel()

	fx := newFixture()
	in := submitInput()
	low := int64(10000) // below 18750
	in.NegotiatedPrice = &low

	_, err := fx.svc.Submit(context.Background(), in)
	if perr.CodeOf(err) != perr.ErrorCodeValidation {
		t.Fatalf("err = %v, want validation", err)
	}
	testkit.MustContain(t, err.Error(), "below the minimum")
	if len(fx.packager.requests) != 0 {
		t.Fatalf("evidence published for rejected submission")
	}
}

func TestSubmitMintFailureCarriesCIDAndResumes(t *testing.T) {
	t.Parallel()

	fx := newFixture()
	fx.minter.failNext = 1

	_, err := fx.svc.Submit(context.Background(), submitInput())
	if err == nil {
		t.Fatal("expected mint failure")
	}
	cid := perr.CIDOf(err)
	if cid == "" {
		t.Fatalf("mint failure does not carry evidence CID: %v", err)
	}
	if len(fx.packager.requests) != 1 {
		t.Fatalf("published %d documents before mint, want 1", len(fx.packager.requests))
	}

	// retry with the durable document; no second publish happens
	in := submitInput()
	in.ResumeEvidenceCID = cid
	a, err := fx.svc.Submit(context.Background(), in)
	if err != nil {
		t.Fatalf("resumed Submit: %v", err)
	}
	if len(fx.packager.requests) != 1 {
		t.Fatalf("resume published a duplicate document")
	}
	if a.RequestEvidenceCID != cid {
		t.Fatalf("resume stored cid %q, want %q", a.RequestEvidenceCID, cid)
	}
	if fx.minter.lastCID != cid {
		t.Fatalf("mint used cid %q, want %q", fx.minter.lastCID, cid)
	}
}

func TestResumedSubmitReplaysPublishedEstimation(t *testing.T) {
	t.Parallel()

	fx := newFixture()
	fx.minter.failNext = 1

	_, err := fx.svc.Submit(context.Background(), submitInput())
	cid := perr.CIDOf(err)
	if cid == "" {
		t.Fatalf("mint failure does not carry evidence CID: %v", err)
	}

	// the oracle drifts between attempts; the anchored document wins
	fx.quote.quote = estdom.Quote{
		Estimate: core.Estimate{
			Complexity:   core.Critical,
			Price:        31000,
			MinimumPrice: 23250,
			DurationDays: 14,
		},
		Source: estdom.SourceFallback,
	}
	quoteCalls := fx.quote.calls

	in := submitInput()
	in.ResumeEvidenceCID = cid
	a, err := fx.svc.Submit(context.Background(), in)
	if err != nil {
		t.Fatalf("resumed Submit: %v", err)
	}

	if fx.quote.calls != quoteCalls {
		t.Fatal("resumed submit re-ran estimation")
	}
	if a.Complexity != core.High || a.EstimatedDurationDays != 10 {
		t.Fatalf("resumed request drifted from the published document: %+v", a)
	}
	if a.ProposedPrice != 25000 || a.MinimumPrice != 18750 {
		t.Fatalf("resumed prices drifted from the published document: %+v", a)
	}

	stored, err := fx.st.Get(context.Background(), a.ID)
	if err != nil {
		t.Fatalf("Get after resume: %v", err)
	}
	if stored.ProposedPrice != 25000 || stored.MinimumPrice != 18750 {
		t.Fatalf("stored row drifted from the published document: %+v", stored)
	}
}

func TestResumedSubmitChecksNegotiatedAgainstDocument(t *testing.T) {
	t.Parallel()

	fx := newFixture()
	fx.minter.failNext = 1

	_, err := fx.svc.Submit(context.Background(), submitInput())
	cid := perr.CIDOf(err)
	if cid == "" {
		t.Fatalf("mint failure does not carry evidence CID: %v", err)
	}

	in := submitInput()
	in.ResumeEvidenceCID = cid
	low := int64(10000) // below the document's 18750
	in.NegotiatedPrice = &low

	_, err = fx.svc.Submit(context.Background(), in)
	if perr.CodeOf(err) != perr.ErrorCodeValidation {
		t.Fatalf("err = %v, want validation", err)
	}
	if fx.minter.mints != 0 {
		t.Fatal("mint happened for a rejected resume")
	}
}

func TestResumedSubmitRejectsForeignDocuments(t *testing.T) {
	t.Parallel()

	fx := newFixture()

	in := submitInput()
	in.ResumeEvidenceCID = "bafyunknown"
	if _, err := fx.svc.Submit(context.Background(), in); perr.CodeOf(err) != perr.ErrorCodeNotFound {
		t.Fatalf("unpinned cid err = %v, want not found", err)
	}

	fx.packager.docs["bafyres9"] = evdom.ResolvedDocument{CID: "bafyres9", Kind: evcore.KindResult}
	in.ResumeEvidenceCID = "bafyres9"
	if _, err := fx.svc.Submit(context.Background(), in); perr.CodeOf(err) != perr.ErrorCodeValidation {
		t.Fatalf("result-kind cid err = %v, want validation", err)
	}
}

func TestAcceptClaimsAndConflicts(t *testing.T) {
	t.Parallel()

	fx := newFixture()
	a, err := fx.svc.Submit(context.Background(), submitInput())
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}

	first, err := fx.svc.Accept(context.Background(), a.ID, domain.AcceptInput{
		ReviewerAddress: "0xaaaa0000000000000000000000000000000000aa",
	})
	if err != nil {
		t.Fatalf("first Accept: %v", err)
	}
	if first.Status != domain.StatusInProgress || first.StartDate == nil || first.EstimatedCompletionDate == nil {
		t.Fatalf("accepted request incomplete: %+v", first)
	}
	wantCompletion := first.StartDate.AddDate(0, 0, a.EstimatedDurationDays)
	if !first.EstimatedCompletionDate.Equal(wantCompletion) {
		t.Fatalf("completion = %v, want %v", first.EstimatedCompletionDate, wantCompletion)
	}

	_, err = fx.svc.Accept(context.Background(), a.ID, domain.AcceptInput{
		ReviewerAddress: "0xbbbb0000000000000000000000000000000000bb",
	})
	if perr.CodeOf(err) != perr.ErrorCodeConflict {
		t.Fatalf("second accept err = %v, want conflict", err)
	}

	stored, _ := fx.st.Get(context.Background(), a.ID)
	if stored.ReviewerAddress != first.ReviewerAddress {
		t.Fatalf("losing accept mutated the row: %+v", stored)
	}
}

func TestSubmitResultsLinksRequestRecord(t *testing.T) {
	t.Parallel()

	fx := newFixture()
	reviewer := "0xaaaa0000000000000000000000000000000000aa"

	a, err := fx.svc.Submit(context.Background(), submitInput())
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if _, err := fx.svc.Accept(context.Background(), a.ID, domain.AcceptInput{ReviewerAddress: reviewer}); err != nil {
		t.Fatalf("Accept: %v", err)
	}

	done, err := fx.svc.SubmitResults(context.Background(), a.ID, domain.SubmitResultsInput{
		ReviewerAddress: reviewer,
		Summary:         "One reentrancy path in the withdraw flow.",
		Findings: []domain.FindingInput{
			{Severity: domain.SeverityCritical, Category: "reentrancy", Title: "Reentrant withdraw"},
			{Severity: domain.SeverityLow, Category: "gas", Title: "Redundant storage read"},
		},
	})
	if err != nil {
		t.Fatalf("SubmitResults: %v", err)
	}
	if done.Status != domain.StatusCompleted || done.ResultRecordID == "" || done.CompletedAt == nil {
		t.Fatalf("completed request incomplete: %+v", done)
	}

	if len(fx.packager.results) != 1 {
		t.Fatalf("published %d result documents, want 1", len(fx.packager.results))
	}
	res := fx.packager.results[0]
	if res.RequestRecordID != a.RequestRecordID {
		t.Fatalf("result evidence links record %q, want %q", res.RequestRecordID, a.RequestRecordID)
	}
	if res.RequestEvidenceCID != a.RequestEvidenceCID {
		t.Fatalf("result evidence links cid %q, want %q", res.RequestEvidenceCID, a.RequestEvidenceCID)
	}

	findings, _ := fx.st.ListFindings(context.Background(), a.ID)
	if len(findings) != 2 {
		t.Fatalf("stored %d findings, want 2", len(findings))
	}
	for _, f := range findings {
		if f.Status != domain.FindingOpen {
			t.Fatalf("finding status = %s, want open", f.Status)
		}
	}
}

func TestSubmitResultsRejectsWrongReviewer(t *testing.T) {
	t.Parallel()

	fx := newFixture()
	a, _ := fx.svc.Submit(context.Background(), submitInput())
	_, _ = fx.svc.Accept(context.Background(), a.ID, domain.AcceptInput{
		ReviewerAddress: "0xaaaa0000000000000000000000000000000000aa",
	})

	before := fx.minter.mints
	_, err := fx.svc.SubmitResults(context.Background(), a.ID, domain.SubmitResultsInput{
		ReviewerAddress: "0xcccc0000000000000000000000000000000000cc",
		Summary:         "not mine",
	})
	if perr.CodeOf(err) != perr.ErrorCodeAuthorization {
		t.Fatalf("err = %v, want authorization", err)
	}
	if fx.minter.mints != before {
		t.Fatal("mint happened for unauthorized reviewer")
	}
	if len(fx.packager.results) != 0 {
		t.Fatal("result evidence published for unauthorized reviewer")
	}
}

func TestSubmitResultsRequiresInProgress(t *testing.T) {
	t.Parallel()

	fx := newFixture()
	a, _ := fx.svc.Submit(context.Background(), submitInput())

	_, err := fx.svc.SubmitResults(context.Background(), a.ID, domain.SubmitResultsInput{
		ReviewerAddress: "0xaaaa0000000000000000000000000000000000aa",
		Summary:         "too early",
	})
	if perr.CodeOf(err) != perr.ErrorCodeConflict {
		t.Fatalf("err = %v, want conflict", err)
	}
}

func TestSubmitResultsRejectsUnknownTaxonomy(t *testing.T) {
	t.Parallel()

	fx := newFixture()
	a, _ := fx.svc.Submit(context.Background(), submitInput())
	reviewer := "0xaaaa0000000000000000000000000000000000aa"
	_, _ = fx.svc.Accept(context.Background(), a.ID, domain.AcceptInput{ReviewerAddress: reviewer})

	_, err := fx.svc.SubmitResults(context.Background(), a.ID, domain.SubmitResultsInput{
		ReviewerAddress: reviewer,
		Summary:         "s",
		Findings:        []domain.FindingInput{{Severity: "fatal", Category: "reentrancy", Title: "x"}},
	})
	if perr.CodeOf(err) != perr.ErrorCodeValidation {
		t.Fatalf("bad severity err = %v, want validation", err)
	}

	_, err = fx.svc.SubmitResults(context.Background(), a.ID, domain.SubmitResultsInput{
		ReviewerAddress: reviewer,
		Summary:         "s",
		Findings:        []domain.FindingInput{{Severity: domain.SeverityLow, Category: "vibes", Title: "x"}},
	})
	if perr.CodeOf(err) != perr.ErrorCodeValidation {
		t.Fatalf("bad category err = %v, want validation", err)
	}
}

func TestCancelAuthorizationAndTerminal(t *testing.T) {
	t.Parallel()

	fx := newFixture()
	in := submitInput()
	a, _ := fx.svc.Submit(context.Background(), in)

	_, err := fx.svc.Cancel(context.Background(), a.ID, domain.CancelInput{
		RequestedBy: "0xdddd0000000000000000000000000000000000dd",
	})
	if perr.CodeOf(err) != perr.ErrorCodeAuthorization {
		t.Fatalf("stranger cancel err = %v, want authorization", err)
	}

	got, err := fx.svc.Cancel(context.Background(), a.ID, domain.CancelInput{RequestedBy: in.SubmitterAddress})
	if err != nil {
		t.Fatalf("Cancel: %v", err)
	}
	if got.Status != domain.StatusCancelled {
		t.Fatalf("status = %s, want cancelled", got.Status)
	}

	_, err = fx.svc.Cancel(context.Background(), a.ID, domain.CancelInput{RequestedBy: in.SubmitterAddress})
	if perr.CodeOf(err) != perr.ErrorCodeConflict {
		t.Fatalf("double cancel err = %v, want conflict", err)
	}
}

func TestReportAssemblesCertificateChain(t *testing.T) {
	t.Parallel()

	fx := newFixture()
	reviewer := "0xaaaa0000000000000000000000000000000000aa"

	a, _ := fx.svc.Submit(context.Background(), submitInput())
	_, _ = fx.svc.Accept(context.Background(), a.ID, domain.AcceptInput{ReviewerAddress: reviewer})
	_, err := fx.svc.SubmitResults(context.Background(), a.ID, domain.SubmitResultsInput{
		ReviewerAddress: reviewer,
		Summary:         "clean",
	})
	if err != nil {
		t.Fatalf("SubmitResults: %v", err)
	}

	rep, err := fx.svc.Report(context.Background(), a.ID)
	if err != nil {
		t.Fatalf("Report: %v", err)
	}

	if len(rep.Certificates) != 3 {
		t.Fatalf("got %d certificates, want 3", len(rep.Certificates))
	}
	req, owner, res := rep.Certificates[0], rep.Certificates[1], rep.Certificates[2]
	if !req.Issued || req.RecordID == "" || req.GatewayURL == "" {
		t.Fatalf("request certificate incomplete: %+v", req)
	}
	if owner.Issued || owner.PlannedNote == "" {
		t.Fatalf("owner stage should be planned only: %+v", owner)
	}
	if !res.Issued || res.RecordID == "" {
		t.Fatalf("result certificate incomplete: %+v", res)
	}

	// 25000 base, single reviewer: payout 25000, fee 3750, total 28750
	if rep.Pricing.ReviewerPayout != 25000 || rep.Pricing.PlatformFee != 3750 || rep.Pricing.TotalPrice != 28750 {
		t.Fatalf("pricing view wrong: %+v", rep.Pricing)
	}
	if rep.Pricing.InitialEngagementFee != 14375 {
		t.Fatalf("engagement fee = %d, want 14375", rep.Pricing.InitialEngagementFee)
	}
}

func TestListRejectsUnknownStatus(t *testing.T) {
	t.Parallel()

	fx := newFixture()
	if _, err := fx.svc.List(context.Background(), domain.ListFilter{Status: "archived"}); perr.CodeOf(err) != perr.ErrorCodeValidation {
		t.Fatalf("err expected validation, got %v", err)
	}
}
