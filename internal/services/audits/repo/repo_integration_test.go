//go:build integration_pg
// +build integration_pg

package repo

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	tc "github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	core "auditforge/internal/core/estimate"
	"auditforge/internal/modkit/repokit"
	perr "auditforge/internal/platform/errors"
	"auditforge/internal/platform/store"
	"auditforge/internal/services/audits/domain"
)

const schemaDDL = `
CREATE TABLE audit_requests (
	id uuid PRIMARY KEY,
	repository_hash text NOT NULL,
	project_name text NOT NULL,
	project_description text NOT NULL DEFAULT '',
	source_url text NOT NULL,
	tags text[] NOT NULL DEFAULT '{}',
	complexity text NOT NULL,
	estimated_duration_days int NOT NULL,
	proposed_price bigint NOT NULL,
	minimum_price bigint NOT NULL,
	negotiated_price bigint,
	reviewer_count int NOT NULL,
	submitter_address text NOT NULL,
	reviewer_address text,
	status text NOT NULL,
	created_at timestamptz NOT NULL,
	start_date timestamptz,
	estimated_completion_date timestamptz,
	completed_at timestamptz,
	request_record_id text,
	request_evidence_cid text,
	request_tx_id text,
	result_record_id text,
	result_evidence_cid text,
	result_tx_id text
);

CREATE TABLE findings (
	id uuid PRIMARY KEY,
	request_id uuid NOT NULL REFERENCES audit_requests(id),
	severity text NOT NULL,
	category text NOT NULL,
	title text NOT NULL,
	description text NOT NULL DEFAULT '',
	file_name text,
	line_number int,
	status text NOT NULL,
	created_at timestamptz NOT NULL
);

CREATE TABLE registry_contracts (
	owner_address text PRIMARY KEY,
	contract_address text NOT NULL,
	created_at timestamptz NOT NULL DEFAULT now()
);
`

func startPostgres(t *testing.T) (dsn string, stop func()) {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Minute)

	req := tc.ContainerRequest{
		Image:        "postgres:16-alpine",
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_USER":     "postgres",
			"POSTGRES_PASSWORD": "postgres",
			"POSTGRES_DB":       "postgres",
		},
		WaitingFor: wait.ForAll(
			wait.ForListeningPort("5432/tcp"),
			wait.ForLog("database system is ready to accept connections"),
		).WithDeadline(2 * time.Minute),
	}
	c, err := tc.GenericContainer(ctx, tc.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		cancel()
		t.Fatalf("failed to start postgres container: %v", err)
	}

	host, err := c.Host(ctx)
	if err != nil {
		_ = c.Terminate(context.Background())
		cancel()
		t.Fatalf("failed to get container host: %v", err)
	}
	mapped, err := c.MappedPort(ctx, "5432/tcp")
	if err != nil {
		_ = c.Terminate(context.Background())
		cancel()
		t.Fatalf("failed to get mapped port: %v", err)
	}

	dsn = fmt.Sprintf("postgres://postgres:postgres@%s:%s/postgres?sslmode=disable", host, mapped.Port())
	stop = func() {
		_ = c.Terminate(context.Background())
		cancel()
	}
	return dsn, stop
}

func openStore(t *testing.T, ctx context.Context, dsn string) repokit.TxRunner {
	t.Helper()

	s, err := store.Open(ctx, store.Config{
		AppName: "auditforge-repo-integration",
		PG:      store.PGConfig{Enabled: true, URL: dsn},
	})
	if err != nil {
		t.Fatalf("store open: %v", err)
	}
	t.Cleanup(func() { _ = s.Close(context.Background()) })

	if _, err := s.PG.Exec(ctx, schemaDDL); err != nil {
		t.Fatalf("apply schema: %v", err)
	}
	return s.PG
}

func seedRequest(submitter string) domain.AuditRequest {
	now := time.Now().UTC().Truncate(time.Microsecond)
	return domain.AuditRequest{
		ID:                    uuid.New(),
		RepositoryHash:        "sha256:cafe",
		ProjectName:           "Vault",
		SourceURL:             "https://example.com/vault",
		Tags:                  []string{"vault", "defi"},
		Complexity:            core.High,
		EstimatedDurationDays: 10,
		ProposedPrice:         25000,
		MinimumPrice:          18750,
		ReviewerCount:         1,
		SubmitterAddress:      submitter,
		Status:                domain.StatusAvailable,
		CreatedAt:             now,
		RequestRecordID:       "rec-1",
		RequestEvidenceCID:    "bafyreq1",
		RequestTxID:           "0xtx1",
	}
}

func TestAuditRepoRoundtrip_Integration(t *testing.T) {
	dsn, stop := startPostgres(t)
	defer stop()

	ctx, cancel := context.WithTimeout(context.Background(), 90*time.Second)
	defer cancel()

	db := openStore(t, ctx, dsn)
	st := NewPG().Bind(db)

	a := seedRequest("0xsubmitter")
	if err := st.Create(ctx, a); err != nil {
		t.Fatalf("create: %v", err)
	}

	got, err := st.Get(ctx, a.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Status != domain.StatusAvailable || got.RequestRecordID != a.RequestRecordID {
		t.Fatalf("roundtrip mismatch: %+v", got)
	}
	if got.NegotiatedPrice != nil || got.ReviewerAddress != "" || got.CompletedAt != nil {
		t.Fatalf("nullable fields not empty: %+v", got)
	}
	if len(got.Tags) != 2 || got.Tags[0] != "vault" {
		t.Fatalf("tags = %v", got.Tags)
	}

	if _, err := st.Get(ctx, uuid.New()); perr.CodeOf(err) != perr.ErrorCodeNotFound {
		t.Fatalf("missing row err = %v, want not found", err)
	}
}

func TestAcceptGuarded_ConcurrentClaims_Integration(t *testing.T) {
	dsn, stop := startPostgres(t)
	defer stop()

	ctx, cancel := context.WithTimeout(context.Background(), 90*time.Second)
	defer cancel()

	db := openStore(t, ctx, dsn)
	st := NewPG().Bind(db)

	a := seedRequest("0xsubmitter")
	if err := st.Create(ctx, a); err != nil {
		t.Fatalf("create: %v", err)
	}

	const claimers = 8
	start := time.Now().UTC()
	completion := start.AddDate(0, 0, a.EstimatedDurationDays)

	var wg sync.WaitGroup
	wins := make(chan string, claimers)
	for i := 0; i < claimers; i++ {
		reviewer := fmt.Sprintf("0xreviewer%02d", i)
		wg.Add(1)
		go func() {
			defer wg.Done()
			ok, err := st.AcceptGuarded(ctx, a.ID, reviewer, start, completion)
			if err != nil {
				t.Errorf("accept %s: %v", reviewer, err)
				return
			}
			if ok {
				wins <- reviewer
			}
		}()
	}
	wg.Wait()
	close(wins)

	var winners []string
	for w := range wins {
		winners = append(winners, w)
	}
	if len(winners) != 1 {
		t.Fatalf("got %d winners, want exactly 1", len(winners))
	}

	got, err := st.Get(ctx, a.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Status != domain.StatusInProgress || got.ReviewerAddress != winners[0] {
		t.Fatalf("claimed row mismatch: %+v", got)
	}
}

func TestCompleteAndFindings_Integration(t *testing.T) {
	dsn, stop := startPostgres(t)
	defer stop()

	ctx, cancel := context.WithTimeout(context.Background(), 90*time.Second)
	defer cancel()

	db := openStore(t, ctx, dsn)
	binder := NewPG()
	st := binder.Bind(db)

	a := seedRequest("0xsubmitter")
	if err := st.Create(ctx, a); err != nil {
		t.Fatalf("create: %v", err)
	}

	reviewer := "0xreviewer"
	startAt := time.Now().UTC()
	if ok, err := st.AcceptGuarded(ctx, a.ID, reviewer, startAt, startAt.AddDate(0, 0, 10)); err != nil || !ok {
		t.Fatalf("accept: ok=%v err=%v", ok, err)
	}

	// wrong reviewer never completes
	if ok, err := st.CompleteGuarded(ctx, a.ID, "0xother", "rec-2", "bafyres1", "0xtx2", time.Now().UTC()); err != nil || ok {
		t.Fatalf("foreign reviewer completed: ok=%v err=%v", ok, err)
	}

	completedAt := time.Now().UTC().Truncate(time.Microsecond)
	findings := []domain.Finding{
		{ID: uuid.New(), RequestID: a.ID, Severity: domain.SeverityLow, Category: "gas", Title: "redundant read", Status: domain.FindingOpen, CreatedAt: completedAt},
		{ID: uuid.New(), RequestID: a.ID, Severity: domain.SeverityCritical, Category: "reentrancy", Title: "reentrant withdraw", Status: domain.FindingOpen, CreatedAt: completedAt},
	}

	err := repokit.WithTx(ctx, db, func(q repokit.Queryer) error {
		tx := binder.Bind(q)
		ok, err := tx.CompleteGuarded(ctx, a.ID, reviewer, "rec-2", "bafyres1", "0xtx2", completedAt)
		if err != nil {
			return err
		}
		if !ok {
			t.Fatal("complete lost the guard")
		}
		return tx.InsertFindings(ctx, a.ID, findings)
	})
	if err != nil {
		t.Fatalf("complete tx: %v", err)
	}

	got, err := st.Get(ctx, a.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Status != domain.StatusCompleted || got.ResultRecordID != "rec-2" || got.CompletedAt == nil {
		t.Fatalf("completed row mismatch: %+v", got)
	}

	xs, err := st.ListFindings(ctx, a.ID)
	if err != nil {
		t.Fatalf("list findings: %v", err)
	}
	if len(xs) != 2 {
		t.Fatalf("got %d findings, want 2", len(xs))
	}
	// severity rank ordering puts critical first
	if xs[0].Severity != domain.SeverityCritical {
		t.Fatalf("first finding severity = %s, want critical", xs[0].Severity)
	}

	// completed request is terminal for cancellation
	if ok, err := st.CancelGuarded(ctx, a.ID); err != nil || ok {
		t.Fatalf("cancelled a completed request: ok=%v err=%v", ok, err)
	}
}

func TestListFilter_Integration(t *testing.T) {
	dsn, stop := startPostgres(t)
	defer stop()

	ctx, cancel := context.WithTimeout(context.Background(), 90*time.Second)
	defer cancel()

	db := openStore(t, ctx, dsn)
	st := NewPG().Bind(db)

	open := seedRequest("0xsubmitter")
	if err := st.Create(ctx, open); err != nil {
		t.Fatalf("create: %v", err)
	}
	claimed := seedRequest("0xsubmitter")
	claimed.ID = uuid.New()
	if err := st.Create(ctx, claimed); err != nil {
		t.Fatalf("create: %v", err)
	}
	startAt := time.Now().UTC()
	if ok, err := st.AcceptGuarded(ctx, claimed.ID, "0xreviewer", startAt, startAt.AddDate(0, 0, 10)); err != nil || !ok {
		t.Fatalf("accept: ok=%v err=%v", ok, err)
	}

	avail, err := st.List(ctx, domain.ListFilter{Status: domain.StatusAvailable})
	if err != nil {
		t.Fatalf("list available: %v", err)
	}
	if len(avail) != 1 || avail[0].ID != open.ID {
		t.Fatalf("available list wrong: %+v", avail)
	}

	mine, err := st.List(ctx, domain.ListFilter{ReviewerAddress: "0xreviewer"})
	if err != nil {
		t.Fatalf("list by reviewer: %v", err)
	}
	if len(mine) != 1 || mine[0].ID != claimed.ID {
		t.Fatalf("reviewer list wrong: %+v", mine)
	}
}
