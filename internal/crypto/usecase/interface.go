// Package usecase implements the key lifecycle business logic: user key
// creation and replacement, master key bootstrap and rotation.
//
// Use cases coordinate between the crypto services (derivation, wrapping,
// KMS sealing) and the repositories, and own the "exactly one active key"
// invariants. Every mutation of an active-key invariant runs inside a
// TxManager transaction behind a per-subject lock, with an optimistic
// active-count check on write as the last line of defense.
package usecase

import (
	"context"

	"github.com/google/uuid"

	auditDomain "github.com/ameerarsath/publicdocsafe-sub002/internal/audit/domain"
	cryptoDomain "github.com/ameerarsath/publicdocsafe-sub002/internal/crypto/domain"
)

// UserKeyRepository defines persistence for user key records.
//
// Implementations must be transaction-aware via context propagation
// (database.GetTx), so activation swaps can run atomically. Deactivated
// records are never deleted: envelopes wrapped under old generations resolve
// their wrapping key by id forever.
type UserKeyRepository interface {
	// Create stores a new user key record.
	Create(ctx context.Context, rec *cryptoDomain.UserKeyRecord) error

	// Update modifies the lifecycle fields (is_active, expires_at,
	// deactivated_at, deactivated_reason) of an existing record.
	Update(ctx context.Context, rec *cryptoDomain.UserKeyRecord) error

	// GetActive returns the single active record for a user, or
	// ErrNoActiveKey.
	GetActive(ctx context.Context, userID uuid.UUID) (*cryptoDomain.UserKeyRecord, error)

	// GetByID returns a record by key id, active or historical, or
	// ErrKeyRecordNotFound.
	GetByID(ctx context.Context, keyID uuid.UUID) (*cryptoDomain.UserKeyRecord, error)

	// CountActive returns the number of active records for a user. Used as
	// the optimistic duplicate-active check inside creation transactions.
	CountActive(ctx context.Context, userID uuid.UUID) (int, error)
}

// MasterKeyRepository defines persistence for master key records.
type MasterKeyRepository interface {
	// Create stores a new master key record. The record must be sealed:
	// plaintext key material never reaches the repository.
	Create(ctx context.Context, rec *cryptoDomain.MasterKeyRecord) error

	// Update modifies the lifecycle fields of an existing record.
	Update(ctx context.Context, rec *cryptoDomain.MasterKeyRecord) error

	// GetActive returns the single active record for a purpose, or
	// ErrMasterKeyNotFound.
	GetActive(ctx context.Context, purpose cryptoDomain.KeyPurpose) (*cryptoDomain.MasterKeyRecord, error)

	// GetByID returns a record by id, active or historical, or
	// ErrMasterKeyNotFound. Historical records back escrow recovery and must
	// stay resolvable while referenced.
	GetByID(ctx context.Context, keyID string) (*cryptoDomain.MasterKeyRecord, error)
}

// AuditRecorder records finished key lifecycle mutations. A recording failure
// fails the mutation.
type AuditRecorder interface {
	Record(ctx context.Context, event auditDomain.Event) error
}

// UserKeyStore manages the lifecycle of user key records (KEK generations).
//
// CreateKey and Promote serialize per user: two concurrent calls for the
// same user queue behind the same lock instead of racing the single-active
// invariant. Concurrent calls for different users run fully in parallel.
type UserKeyStore interface {
	// CreateKey derives a fresh KEK from the secret with a random salt,
	// computes the validation hash, and installs the record as the user's
	// new active key, deactivating any prior active record in the same
	// transaction. A concurrent reader never observes zero or two active
	// keys. Returns ErrDuplicateActiveKey if a race is detected on write,
	// ErrWeakParameters if the derivation parameters are below the floor.
	//
	// The derived KEK is zeroed before returning; only the record survives.
	CreateKey(
		ctx context.Context,
		userID uuid.UUID,
		secret []byte,
		params cryptoDomain.KeyParams,
	) (*cryptoDomain.UserKeyRecord, error)

	// CreateDormantKey creates an inactive record for the given secret
	// without touching the user's current active key. The rotation engine
	// uses this to stage the new key generation before migrating envelopes.
	CreateDormantKey(
		ctx context.Context,
		userID uuid.UUID,
		secret []byte,
		params cryptoDomain.KeyParams,
	) (*cryptoDomain.UserKeyRecord, error)

	// GetActive returns the user's active key record, or ErrNoActiveKey.
	GetActive(ctx context.Context, userID uuid.UUID) (*cryptoDomain.UserKeyRecord, error)

	// GetByID returns a key record by id, active or historical.
	GetByID(ctx context.Context, keyID uuid.UUID) (*cryptoDomain.UserKeyRecord, error)

	// Deactivate marks a non-active record with a deactivation reason.
	// Deactivating the currently active key is forbidden
	// (ErrActiveKeyDeactivation): active keys are only ever replaced through
	// CreateKey or Promote, which install a successor in the same
	// transaction.
	Deactivate(ctx context.Context, keyID uuid.UUID, reason string) error

	// Promote atomically deactivates oldKeyID and activates newKeyID for the
	// user, in one transaction behind the per-user lock. Idempotent: if the
	// swap already happened, Promote succeeds without changes. This is the
	// rotation engine's final activation step.
	Promote(ctx context.Context, userID, oldKeyID, newKeyID uuid.UUID) error
}

// MasterKeyStore manages server-held master keys, sealed at rest by a KMS
// keeper. Exactly one key is active per purpose; rotation chains generations
// through PreviousKeyID and never deletes historical records, because escrow
// records are tied to the master key active at their creation time.
type MasterKeyStore interface {
	// Bootstrap creates the first active master key for a purpose. If one
	// already exists it is returned unchanged. The returned record is
	// unsealed; the caller must Close it.
	Bootstrap(ctx context.Context, purpose cryptoDomain.KeyPurpose) (*cryptoDomain.MasterKeyRecord, error)

	// GetActive returns the active master key for a purpose with its key
	// material unsealed. The caller must Close the record.
	GetActive(ctx context.Context, purpose cryptoDomain.KeyPurpose) (*cryptoDomain.MasterKeyRecord, error)

	// GetByID returns a master key by id, active or historical, with its key
	// material unsealed. The caller must Close the record.
	GetByID(ctx context.Context, keyID string) (*cryptoDomain.MasterKeyRecord, error)

	// Rotate generates a new master key for the purpose, seals it, links
	// PreviousKeyID, deactivates the prior key and schedules NextRotationAt,
	// all in one transaction behind the per-purpose lock. Existing escrow
	// records keep their creation-time master key and are not re-wrapped.
	Rotate(ctx context.Context, purpose cryptoDomain.KeyPurpose) (*cryptoDomain.MasterKeyRecord, error)
}
