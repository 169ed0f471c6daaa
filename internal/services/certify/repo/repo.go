// Package repo provides the registry contract repository
package repo

import (
	"context"

	"auditforge/internal/modkit/repokit"
	perr "auditforge/internal/platform/errors"
)

type (
	pg     struct{ q repokit.Queryer }
	binder struct{}
)

// NewPG constructs a new repo binder for Postgres
func NewPG() repokit.Binder[Storage] { return binder{} }

// Bind implements repokit.Binder
func (binder) Bind(q repokit.Queryer) Storage { return &pg{q: q} }

// Storage caches deployed registry contracts per owner address
type Storage interface {
	ContractFor(ctx context.Context, owner string) (string, error)
	SaveContract(ctx context.Context, owner, contract string) error
}

// ContractFor returns the cached contract for owner, empty when none
func (s *pg) ContractFor(ctx context.Context, owner string) (string, error) {
	const q = `SELECT contract_address FROM registry_contracts WHERE owner_address = $1`

	var contract string
	err := s.q.QueryRow(ctx, q, owner).Scan(&contract)
	if err != nil {
		if perr.IsNoRows(err) {
			return "", nil
		}
		return "", perr.FromDB(err, "registry contract lookup failed")
	}
	return contract, nil
}

// SaveContract stores the deployed contract for owner.
// A concurrent deploy for the same owner keeps the first row.
func (s *pg) SaveContract(ctx context.Context, owner, contract string) error {
	const q = `
		INSERT INTO registry_contracts (owner_address, contract_address)
		VALUES ($1, $2)
		ON CONFLICT (owner_address) DO NOTHING`

	if _, err := s.q.Exec(ctx, q, owner, contract); err != nil {
		return perr.FromDB(err, "registry contract save failed")
	}
	return nil
}
