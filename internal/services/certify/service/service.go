// Package service implements the certificate minter
package service

import (
	"context"
	"strings"

	"auditforge/internal/adapters/ledger"
	"auditforge/internal/modkit/repokit"
	perr "auditforge/internal/platform/errors"
	"auditforge/internal/platform/logger"
	"auditforge/internal/platform/metrics"
	"auditforge/internal/services/certify/domain"
	"auditforge/internal/services/certify/repo"
)

// Chain is the slice of the ledger client the service needs
type Chain interface {
	DeployRegistry(ctx context.Context, signer ledger.Signer) (string, error)
	Mint(ctx context.Context, contract, recipient, cid string, signer ledger.Signer) (ledger.MintOutcome, error)
	Logs(ctx context.Context, contract string) ([]ledger.EventLog, error)
}

// Service implements domain.MinterPort
type Service struct {
	db     repokit.TxRunner
	binder repokit.Binder[repo.Storage]
	chain  Chain
	signer ledger.Signer
	log    logger.Logger
}

// New constructs the certify service
func New(db repokit.TxRunner, binder repokit.Binder[repo.Storage], chain Chain, signer ledger.Signer) *Service {
	return &Service{
		db:     db,
		binder: binder,
		chain:  chain,
		signer: signer,
		log:    *logger.Named("certify"),
	}
}

// MintRequest implements domain.MinterPort
func (s *Service) MintRequest(ctx context.Context, in domain.MintInput) (domain.Certificate, error) {
	return s.mint(ctx, domain.StageRequest, in)
}

// MintResult implements domain.MinterPort
func (s *Service) MintResult(ctx context.Context, in domain.MintInput) (domain.Certificate, error) {
	return s.mint(ctx, domain.StageResult, in)
}

// mint runs the precondition checks then submits exactly one transaction.
// A failure after this point still carries the CID so the caller can
// resume without re-packaging.
func (s *Service) mint(ctx context.Context, stage domain.Stage, in domain.MintInput) (domain.Certificate, error) {
	var zero domain.Certificate

	if strings.TrimSpace(in.CID) == "" {
		return zero, perr.Validationf("mint needs a content identifier")
	}
	if strings.TrimSpace(in.Recipient) == "" {
		return zero, perr.Validationf("mint needs a recipient address")
	}

	// the signer must be the recipient-authorized address; checked here so
	// the mismatch is a deterministic refusal instead of a ledger reject,
	// and never retried with a different signer
	if !strings.EqualFold(s.signer.Address(), in.Recipient) {
		return zero, perr.Authorizationf(
			"signer %s is not authorized for recipient %s", s.signer.Address(), in.Recipient)
	}

	contract, err := s.ensureContract(ctx, in.Recipient)
	if err != nil {
		return zero, perr.WithCID(err, in.CID)
	}

	out, err := s.chain.Mint(ctx, contract, in.Recipient, in.CID, s.signer)
	if err != nil {
		return zero, perr.WithCID(err, in.CID)
	}

	metrics.CertificatesMintedTotal.WithLabelValues(string(stage)).Inc()
	s.log.Info().
		Str("stage", string(stage)).
		Str("record_id", out.RecordID).
		Str("tx_id", out.TxID).
		Str("cid", in.CID).
		Msg("certificate minted")

	return domain.Certificate{
		Stage:       stage,
		RecordID:    out.RecordID,
		TxID:        out.TxID,
		ExplorerRef: out.ExplorerRef,
		CID:         in.CID,
		Recipient:   in.Recipient,
		Contract:    contract,
	}, nil
}

// Issued implements domain.RegistryPort. The listing is read back from
// the chain rather than local state, so it reflects what is actually
// anchored; an owner with no contract yet simply has no records.
func (s *Service) Issued(ctx context.Context, owner domain.Address) ([]domain.IssuedRecord, error) {
	if strings.TrimSpace(owner) == "" {
		return nil, perr.Validationf("record listing needs an owner address")
	}

	contract, err := s.binder.Bind(s.db).ContractFor(ctx, owner)
	if err != nil {
		return nil, err
	}
	if contract == "" {
		return []domain.IssuedRecord{}, nil
	}

	logs, err := s.chain.Logs(ctx, contract)
	if err != nil {
		return nil, err
	}

	out := make([]domain.IssuedRecord, 0, len(logs))
	for _, l := range logs {
		if l.TokenID == "" {
			continue
		}
		out = append(out, domain.IssuedRecord{RecordID: l.TokenID, Owner: l.To})
	}
	return out, nil
}

// ensureContract returns the owner's registry contract, deploying on
// first use. A concurrent deploy for the same owner is settled by the
// insert keeping the first row; the loser re-reads and uses that one.
func (s *Service) ensureContract(ctx context.Context, owner string) (string, error) {
	st := s.binder.Bind(s.db)

	contract, err := st.ContractFor(ctx, owner)
	if err != nil {
		return "", err
	}
	if contract != "" {
		return contract, nil
	}

	deployed, err := s.chain.DeployRegistry(ctx, s.signer)
	if err != nil {
		return "", err
	}
	if err := st.SaveContract(ctx, owner, deployed); err != nil {
		return "", err
	}

	// re-read in case another session deployed first
	contract, err = st.ContractFor(ctx, owner)
	if err != nil {
		return "", err
	}
	if contract == "" {
		contract = deployed
	}
	if contract != deployed {
		s.log.Warn().
			Str("owner", owner).
			Str("kept", contract).
			Str("orphaned", deployed).
			Msg("concurrent registry deploy, keeping first contract")
	}
	return contract, nil
}
