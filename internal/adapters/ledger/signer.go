package ledger

import (
	"crypto/ed25519"
	"crypto/sha256"
	"encoding/hex"

	perr "auditforge/internal/platform/errors"
)

// Signer authorizes ledger transactions for one address
type Signer interface {
	// Address is the ledger address the signatures belong to
	Address() string
	// Sign signs the canonical payload bytes of a transaction
	Sign(payload []byte) ([]byte, error)
}

// KeySigner signs locally with an ed25519 private key.
// The address is derived from the public key so it cannot drift from
// the key material.
type KeySigner struct {
	priv ed25519.PrivateKey
	addr string
}

// NewKeySigner builds a KeySigner from a hex encoded ed25519 seed
func NewKeySigner(seedHex string) (*KeySigner, error) {
	seed, err := hex.DecodeString(seedHex)
	if err != nil {
		return nil, perr.Validationf("signer seed is not hex: %v", err)
	}
	if len(seed) != ed25519.SeedSize {
		return nil, perr.Validationf("signer seed must be %d bytes, got %d", ed25519.SeedSize, len(seed))
	}
	priv := ed25519.NewKeyFromSeed(seed)
	return &KeySigner{priv: priv, addr: DeriveAddress(priv.Public().(ed25519.PublicKey))}, nil
}

// Address returns the derived ledger address
func (s *KeySigner) Address() string { return s.addr }

// Sign signs payload with the private key
func (s *KeySigner) Sign(payload []byte) ([]byte, error) {
	if s == nil || len(s.priv) == 0 {
		return nil, perr.New(perr.ErrorCodeUnknown, "signer has no key")
	}
	return ed25519.Sign(s.priv, payload), nil
}

// DeriveAddress maps a public key to its 0x ledger address
func DeriveAddress(pub ed25519.PublicKey) string {
	sum := sha256.Sum256(pub)
	return "0x" + hex.EncodeToString(sum[:20])
}
