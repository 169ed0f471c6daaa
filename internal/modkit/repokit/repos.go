// Package repokit provides common types and helpers for repository implementations
package repokit

import (
	"context"

	"auditforge/internal/platform/store"
)

// Queryer is the minimal read and write surface for SQL repos
type Queryer = store.RowQuerier

// TxRunner can execute a function inside a transaction
type TxRunner = store.TxRunner

// Row is a single row result from a query
type Row = store.Row

// Rows is an iterable result set
type Rows = store.Rows

// CommandTag reports the outcome of an Exec
type CommandTag = store.CommandTag

// WithTx runs fn inside a transaction using the provided TxRunner
func WithTx(ctx context.Context, tx TxRunner, fn func(q Queryer) error) error {
	return tx.Tx(ctx, fn)
}
