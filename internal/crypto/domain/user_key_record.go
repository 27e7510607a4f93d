// Package domain defines the core domain models for the envelope-encryption
// key lifecycle: user key records (KEK generations), master key records,
// and the wrapped-key envelope produced by the AEAD wrapper.
//
// Key hierarchy: user secret → KEK (derived, never persisted) → DEK → document
// content. A validation hash proves a derived KEK is correct without storing
// the KEK itself.
package domain

import (
	"time"

	"github.com/google/uuid"
)

// UserKeyRecord identifies one KEK generation for a user. The KEK itself is
// derived on demand from the user's secret and never persisted; the record
// stores only the derivation parameters and an Argon2id validation hash.
//
// Invariant: at most one record with IsActive=true per user at any time.
// Deactivated records are retained forever so envelopes wrapped under old
// generations stay decryptable until a rotation migrates them.
type UserKeyRecord struct {
	KeyID             uuid.UUID        // Globally unique key id (UUIDv7)
	UserID            uuid.UUID        // Owning user
	Algorithm         Algorithm        // AEAD used when wrapping DEKs under this KEK
	DerivationMethod  DerivationMethod // How the KEK is derived from the secret
	Iterations        int              // PBKDF2 iterations or Argon2id time cost
	Salt              []byte           // Random per-record derivation salt
	ValidationHash    string           // Argon2id hash of the derived KEK
	Hint              string           // Optional user-supplied secret hint
	IsActive          bool
	CreatedAt         time.Time
	ExpiresAt         *time.Time
	DeactivatedAt     *time.Time
	DeactivatedReason string
}

// Deactivation reasons recorded on superseded key records.
const (
	DeactivatedReasonRotation = "rotated"
	DeactivatedReasonRecovery = "escrow-recovery"
	DeactivatedReasonReplaced = "replaced"
)

// Deactivate marks the record inactive with the given reason and timestamp.
func (r *UserKeyRecord) Deactivate(reason string, at time.Time) {
	r.IsActive = false
	r.DeactivatedAt = &at
	r.DeactivatedReason = reason
}
