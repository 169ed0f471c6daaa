// Package repo provides the audit request repository implementation
package repo

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	core "auditforge/internal/core/estimate"
	"auditforge/internal/modkit/repokit"
	perr "auditforge/internal/platform/errors"
	pstrings "auditforge/internal/platform/strings"
	"auditforge/internal/services/audits/domain"
)

type (
	pg     struct{ q repokit.Queryer }
	binder struct{}
)

// NewPG constructs a new repo binder for Postgres
func NewPG() repokit.Binder[Storage] { return binder{} }

// Bind implements repokit.Binder
func (binder) Bind(q repokit.Queryer) Storage { return &pg{q: q} }

// Storage defines the audit request repository.
// The Guarded methods apply a conditional update keyed on the current
// status; ok=false means the row was not in the expected state.
type Storage interface {
	Create(ctx context.Context, a domain.AuditRequest) error
	Get(ctx context.Context, id uuid.UUID) (domain.AuditRequest, error)
	List(ctx context.Context, f domain.ListFilter) ([]domain.AuditRequest, error)

	AcceptGuarded(
		ctx context.Context,
		id uuid.UUID,
		reviewer string,
		start, completion time.Time,
	) (bool, error)
	CompleteGuarded(
		ctx context.Context,
		id uuid.UUID,
		reviewer, recordID, cid, txID string,
		completedAt time.Time,
	) (bool, error)
	CancelGuarded(ctx context.Context, id uuid.UUID) (bool, error)

	InsertFindings(ctx context.Context, requestID uuid.UUID, xs []domain.Finding) error
	ListFindings(ctx context.Context, requestID uuid.UUID) ([]domain.Finding, error)
}

const auditColumns = `
	id, repository_hash, project_name, project_description, source_url, tags,
	complexity, estimated_duration_days, proposed_price, minimum_price,
	negotiated_price, reviewer_count, submitter_address, reviewer_address,
	status, created_at, start_date, estimated_completion_date, completed_at,
	request_record_id, request_evidence_cid, request_tx_id,
	result_record_id, result_evidence_cid, result_tx_id`

// Create inserts a fully-formed request row.
// request_record_id is written exactly once here; no update path exists
// for it, which keeps the minted record id immutable.
func (s *pg) Create(ctx context.Context, a domain.AuditRequest) error {
	const q = `
		INSERT INTO audit_requests (` + auditColumns + `)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19,$20,$21,$22,$23,$24,$25)`

	_, err := s.q.Exec(ctx, q,
		a.ID, a.RepositoryHash, a.ProjectName, a.ProjectDescription, a.SourceURL, a.Tags,
		string(a.Complexity), a.EstimatedDurationDays, a.ProposedPrice, a.MinimumPrice,
		a.NegotiatedPrice, a.ReviewerCount, a.SubmitterAddress, pstrings.SQLNull(a.ReviewerAddress),
		string(a.Status), a.CreatedAt, a.StartDate, a.EstimatedCompletionDate, a.CompletedAt,
		pstrings.SQLNull(a.RequestRecordID), pstrings.SQLNull(a.RequestEvidenceCID), pstrings.SQLNull(a.RequestTxID),
		pstrings.SQLNull(a.ResultRecordID), pstrings.SQLNull(a.ResultEvidenceCID), pstrings.SQLNull(a.ResultTxID),
	)
	if err != nil {
		return perr.FromDB(err, "audit request insert failed")
	}
	return nil
}

// Get fetches one request by id
func (s *pg) Get(ctx context.Context, id uuid.UUID) (domain.AuditRequest, error) {
	q := `SELECT ` + auditColumns + ` FROM audit_requests WHERE id = $1`

	a, err := scanAudit(s.q.QueryRow(ctx, q, id))
	if err != nil {
		if perr.IsNoRows(err) {
			return domain.AuditRequest{}, perr.NotFoundf("audit request %s not found", id)
		}
		return domain.AuditRequest{}, perr.FromDB(err, "audit request fetch failed")
	}
	return a, nil
}

// List returns requests matching the filter, newest first
func (s *pg) List(ctx context.Context, f domain.ListFilter) ([]domain.AuditRequest, error) {
	var sb strings.Builder
	sb.WriteString(`SELECT ` + auditColumns + ` FROM audit_requests`)

	var conds []string
	var args []any
	if f.Status != "" {
		args = append(args, string(f.Status))
		conds = append(conds, fmt.Sprintf("status = $%d", len(args)))
	}
	if f.ReviewerAddress != "" {
		args = append(args, f.ReviewerAddress)
		conds = append(conds, fmt.Sprintf("reviewer_address = $%d", len(args)))
	}
	if len(conds) > 0 {
		sb.WriteString(" WHERE " + strings.Join(conds, " AND "))
	}
	sb.WriteString(" ORDER BY created_at DESC")

	limit := f.Limit
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	args = append(args, limit)
	fmt.Fprintf(&sb, " LIMIT $%d", len(args))

	rows, err := s.q.Query(ctx, sb.String(), args...)
	if err != nil {
		return nil, perr.FromDB(err, "audit request list failed")
	}
	defer rows.Close()

	var out []domain.AuditRequest
	for rows.Next() {
		a, err := scanAudit(rows)
		if err != nil {
			return nil, perr.FromDB(err, "audit request scan failed")
		}
		out = append(out, a)
	}
	if err := rows.Err(); err != nil {
		return nil, perr.FromDB(err, "audit request list failed")
	}
	return out, nil
}

// AcceptGuarded moves available -> in_progress, claiming the request
// for reviewer. The status predicate is the sole concurrency guard.
func (s *pg) AcceptGuarded(
	ctx context.Context,
	id uuid.UUID,
	reviewer string,
	start, completion time.Time,
) (bool, error) {
	const q = `
		UPDATE audit_requests
		SET status = $3, reviewer_address = $4, start_date = $5, estimated_completion_date = $6
		WHERE id = $1 AND status = $2`

	tag, err := s.q.Exec(ctx, q,
		id, string(domain.StatusAvailable), string(domain.StatusInProgress),
		reviewer, start, completion)
	if err != nil {
		return false, perr.FromDB(err, "audit accept update failed")
	}
	return tag.RowsAffected() == 1, nil
}

// CompleteGuarded moves in_progress -> completed for the committed
// reviewer, attaching the result certificate references
func (s *pg) CompleteGuarded(
	ctx context.Context,
	id uuid.UUID,
	reviewer, recordID, cid, txID string,
	completedAt time.Time,
) (bool, error) {
	const q = `
		UPDATE audit_requests
		SET status = $4, result_record_id = $5, result_evidence_cid = $6,
			result_tx_id = $7, completed_at = $8
		WHERE id = $1 AND status = $2 AND reviewer_address = $3`

	tag, err := s.q.Exec(ctx, q,
		id, string(domain.StatusInProgress), reviewer, string(domain.StatusCompleted),
		recordID, cid, txID, completedAt)
	if err != nil {
		return false, perr.FromDB(err, "audit complete update failed")
	}
	return tag.RowsAffected() == 1, nil
}

// CancelGuarded moves any non-terminal status -> cancelled
func (s *pg) CancelGuarded(ctx context.Context, id uuid.UUID) (bool, error) {
	const q = `
		UPDATE audit_requests
		SET status = $2
		WHERE id = $1 AND status IN ($3, $4, $5)`

	tag, err := s.q.Exec(ctx, q,
		id, string(domain.StatusCancelled),
		string(domain.StatusAvailable), string(domain.StatusPendingAcceptance), string(domain.StatusInProgress))
	if err != nil {
		return false, perr.FromDB(err, "audit cancel update failed")
	}
	return tag.RowsAffected() == 1, nil
}

// InsertFindings appends findings for a request
func (s *pg) InsertFindings(ctx context.Context, requestID uuid.UUID, xs []domain.Finding) error {
	if len(xs) == 0 {
		return nil
	}

	var sb strings.Builder
	sb.WriteString(`INSERT INTO findings
		(id, request_id, severity, category, title, description, file_name, line_number, status, created_at) VALUES `)

	args := make([]any, 0, len(xs)*10)
	for i, f := range xs {
		if i > 0 {
			sb.WriteByte(',')
		}
		base := i*10 + 1
		fmt.Fprintf(&sb, "($%d,$%d,$%d,$%d,$%d,$%d,$%d,$%d,$%d,$%d)",
			base, base+1, base+2, base+3, base+4, base+5, base+6, base+7, base+8, base+9)
		args = append(args,
			f.ID, requestID, string(f.Severity), f.Category, f.Title, f.Description,
			pstrings.SQLNull(f.FileName), zeroNull(f.LineNumber), string(f.Status), f.CreatedAt,
		)
	}

	if _, err := s.q.Exec(ctx, sb.String(), args...); err != nil {
		return perr.FromDB(err, "finding insert failed")
	}
	return nil
}

// ListFindings returns findings for a request ordered by severity rank
func (s *pg) ListFindings(ctx context.Context, requestID uuid.UUID) ([]domain.Finding, error) {
	const q = `
		SELECT id, request_id, severity, category, title, description,
			COALESCE(file_name, ''), COALESCE(line_number, 0), status, created_at
		FROM findings
		WHERE request_id = $1
		ORDER BY array_position(ARRAY['critical','high','medium','low'], severity), created_at`

	rows, err := s.q.Query(ctx, q, requestID)
	if err != nil {
		return nil, perr.FromDB(err, "finding list failed")
	}
	defer rows.Close()

	var out []domain.Finding
	for rows.Next() {
		var f domain.Finding
		var sev, status string
		if err := rows.Scan(
			&f.ID, &f.RequestID, &sev, &f.Category, &f.Title, &f.Description,
			&f.FileName, &f.LineNumber, &status, &f.CreatedAt,
		); err != nil {
			return nil, perr.FromDB(err, "finding scan failed")
		}
		f.Severity = domain.FindingSeverity(sev)
		f.Status = domain.FindingStatus(status)
		out = append(out, f)
	}
	if err := rows.Err(); err != nil {
		return nil, perr.FromDB(err, "finding list failed")
	}
	return out, nil
}

// scanAudit reads one audit row from any scanner
func scanAudit(row repokit.Row) (domain.AuditRequest, error) {
	var a domain.AuditRequest
	var complexity, status string
	var reviewer, reqRecord, reqCID, reqTx, resRecord, resCID, resTx *string

	err := row.Scan(
		&a.ID, &a.RepositoryHash, &a.ProjectName, &a.ProjectDescription, &a.SourceURL, &a.Tags,
		&complexity, &a.EstimatedDurationDays, &a.ProposedPrice, &a.MinimumPrice,
		&a.NegotiatedPrice, &a.ReviewerCount, &a.SubmitterAddress, &reviewer,
		&status, &a.CreatedAt, &a.StartDate, &a.EstimatedCompletionDate, &a.CompletedAt,
		&reqRecord, &reqCID, &reqTx, &resRecord, &resCID, &resTx,
	)
	if err != nil {
		return a, err
	}

	a.Complexity = core.Complexity(complexity)
	a.Status = domain.Status(status)
	a.ReviewerAddress = pstrings.Deref(reviewer)
	a.RequestRecordID = pstrings.Deref(reqRecord)
	a.RequestEvidenceCID = pstrings.Deref(reqCID)
	a.RequestTxID = pstrings.Deref(reqTx)
	a.ResultRecordID = pstrings.Deref(resRecord)
	a.ResultEvidenceCID = pstrings.Deref(resCID)
	a.ResultTxID = pstrings.Deref(resTx)
	return a, nil
}

func zeroNull(n int) *int {
	if n == 0 {
		return nil
	}
	return &n
}
