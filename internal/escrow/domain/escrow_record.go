// Package domain defines escrow records: single-use recovery copies of a
// user KEK, wrapped under a server-held master key.
package domain

import (
	"time"

	"github.com/google/uuid"

	"github.com/ameerarsath/publicdocsafe-sub002/internal/crypto/domain"
	"github.com/ameerarsath/publicdocsafe-sub002/internal/errors"
)

// EscrowMethodMasterKeyWrap wraps the KEK under the active escrow master key.
// The closed set of methods leaves room for split-knowledge schemes later.
const EscrowMethodMasterKeyWrap = "master-key-wrap"

var (
	// ErrEscrowNotFound indicates no escrow record matches the requested id.
	ErrEscrowNotFound = errors.Wrap(errors.ErrNotFound, "escrow record not found")

	// ErrAlreadyRecovered indicates the single-use record was consumed.
	ErrAlreadyRecovered = errors.Wrap(errors.ErrConflict, "escrow record already recovered")

	// ErrThresholdNotMet indicates fewer approvals than the record requires.
	ErrThresholdNotMet = errors.Wrap(errors.ErrForbidden, "recovery threshold not met")
)

// EscrowRecord holds one wrapped recovery copy of a user KEK. The record is
// single-use: RecoveredAt is stamped exactly once and a consumed record never
// releases key material again. Continued escrow after a recovery requires a
// new record.
//
// MasterKeyID pins the master key generation that wrapped this record;
// master key rotation does not re-wrap existing records.
type EscrowRecord struct {
	ID                uuid.UUID
	KeyID             uuid.UUID // Protected user key record
	UserID            uuid.UUID
	MasterKeyID       string
	EscrowData        []byte
	Nonce             []byte
	AuthTag           []byte
	EscrowMethod      string
	RecoveryThreshold int // Independent approvals required to recover
	CreatedAt         time.Time
	RecoveredAt       *time.Time
	RecoveredBy       string
	RecoveryReason    string
}

// Recovered reports whether the record has been consumed.
func (e *EscrowRecord) Recovered() bool {
	return e.RecoveredAt != nil
}

// WrappedKey assembles the record's wrapping fields for the unwrapper.
func (e *EscrowRecord) WrappedKey() domain.WrappedKey {
	return domain.WrappedKey{
		Ciphertext: e.EscrowData,
		Nonce:      e.Nonce,
		AuthTag:    e.AuthTag,
	}
}

// AAD binds the record's identity into the AEAD wrap.
func (e *EscrowRecord) AAD() []byte {
	aad := make([]byte, 0, 64)
	aad = append(aad, e.ID[:]...)
	aad = append(aad, e.KeyID[:]...)
	aad = append(aad, []byte(e.MasterKeyID)...)
	return aad
}

// ApprovalProof accompanies a recovery call. The approval workflow itself
// (who may approve, how approvals are verified) is enforced upstream; this
// core only checks the count against the record's threshold.
type ApprovalProof struct {
	RecoveredBy string   // Operator performing the recovery
	Reason      string   // Recorded on the record and in the audit trail
	Approvals   []string // Identifiers of the independent approvers
}
