// Package domain defines the certificate minter types
package domain

// Stage names one tier of the certificate chain.
// StageOwner is declared but never minted: reviewer commitment lives
// only in the request's state-machine fields today, and keeping the
// stage in the enum makes that gap a visible, typed state instead of
// an implicit omission.
type Stage string

// Certificate stages
const (
	StageRequest Stage = "request"
	StageOwner   Stage = "owner"
	StageResult  Stage = "result"
)

// Issued reports whether certificates of this stage are actually minted
func (s Stage) Issued() bool { return s == StageRequest || s == StageResult }

// MintInput is a request to anchor a content identifier to a recipient
type MintInput struct {
	Recipient Address
	CID       string
}

// Address is a ledger address
type Address = string

// Certificate is the outcome of a mint, or a typed placeholder for a
// planned stage
type Certificate struct {
	Stage       Stage   `json:"stage"`
	RecordID    string  `json:"record_id"`
	TxID        string  `json:"tx_id"`
	ExplorerRef string  `json:"explorer_ref,omitempty"`
	CID         string  `json:"cid"`
	Recipient   Address `json:"recipient"`
	Contract    string  `json:"contract"`
}

// IssuedRecord is one record read back from an owner's registry contract
type IssuedRecord struct {
	RecordID string  `json:"record_id"`
	Owner    Address `json:"owner"`
}
