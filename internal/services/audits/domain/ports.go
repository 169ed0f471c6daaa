package domain

import (
	"context"

	"github.com/google/uuid"
)

// ControllerPort drives the audit lifecycle.
// Every transition is guarded by the persisted status read at update
// time; a guard miss surfaces as a conflict, never a silent retry.
type ControllerPort interface {
	Submit(ctx context.Context, in SubmitInput) (AuditRequest, error)
	Accept(ctx context.Context, id uuid.UUID, in AcceptInput) (AuditRequest, error)
	SubmitResults(ctx context.Context, id uuid.UUID, in SubmitResultsInput) (AuditRequest, error)
	Cancel(ctx context.Context, id uuid.UUID, in CancelInput) (AuditRequest, error)
	Get(ctx context.Context, id uuid.UUID) (AuditRequest, error)
	List(ctx context.Context, f ListFilter) ([]AuditRequest, error)
	Report(ctx context.Context, id uuid.UUID) (Report, error)
}
