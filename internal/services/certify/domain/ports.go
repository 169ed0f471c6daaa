package domain

import "context"

// MinterPort submits one signed mint transaction per call.
// It performs no retries; a caller resuming after a failure reuses the
// content identifier carried on the returned error.
type MinterPort interface {
	MintRequest(ctx context.Context, in MintInput) (Certificate, error)
	MintResult(ctx context.Context, in MintInput) (Certificate, error)
}

// RegistryPort reads issued records back from the chain
type RegistryPort interface {
	Issued(ctx context.Context, owner Address) ([]IssuedRecord, error)
}
