package domain

import (
	"github.com/ameerarsath/publicdocsafe-sub002/internal/errors"
)

// Key lifecycle error definitions.
//
// These domain-specific errors wrap the standard sentinels from
// internal/errors so callers can branch on class (not found, conflict,
// invalid input) while logs and audit entries keep the precise code.
var (
	// ErrUnsupportedAlgorithm indicates an unknown AEAD algorithm tag.
	ErrUnsupportedAlgorithm = errors.Wrap(errors.ErrInvalidInput, "unsupported algorithm")

	// ErrUnsupportedDerivationMethod indicates an unknown key derivation tag.
	ErrUnsupportedDerivationMethod = errors.Wrap(errors.ErrInvalidInput, "unsupported derivation method")

	// ErrWeakParameters indicates derivation parameters below the configured
	// floor (iteration count too low or method not allow-listed).
	ErrWeakParameters = errors.Wrap(errors.ErrInvalidInput, "weak derivation parameters")

	// ErrInvalidKeySize indicates key material that is not exactly 32 bytes.
	ErrInvalidKeySize = errors.Wrap(errors.ErrInvalidInput, "invalid key size")

	// ErrAuthenticationFailure indicates an AEAD tag mismatch on unwrap.
	// Always fatal to the operation: no partial key material is ever returned
	// and the same inputs must never be retried.
	ErrAuthenticationFailure = errors.Wrap(errors.ErrInvalidInput, "authentication failure")

	// ErrNoActiveKey indicates the user has no active key record, for example
	// after a mid-rotation failure or before first key setup.
	ErrNoActiveKey = errors.Wrap(errors.ErrNotFound, "no active key")

	// ErrDuplicateActiveKey indicates a concurrent writer raced the
	// single-active-key invariant; detected by an optimistic check on write.
	ErrDuplicateActiveKey = errors.Wrap(errors.ErrConflict, "duplicate active key")

	// ErrKeyRecordNotFound indicates the wrapping key record named by an
	// envelope no longer exists. Under the retention invariant deactivated
	// records are kept forever, so this signals an integrity problem.
	ErrKeyRecordNotFound = errors.Wrap(errors.ErrNotFound, "key record not found")

	// ErrMasterKeyNotFound indicates no master key record matches the
	// requested id or purpose.
	ErrMasterKeyNotFound = errors.Wrap(errors.ErrNotFound, "master key not found")

	// ErrActiveKeyDeactivation indicates an attempt to deactivate the
	// currently active key outside a replacement transaction.
	ErrActiveKeyDeactivation = errors.Wrap(errors.ErrConflict, "cannot deactivate the active key without a replacement")
)
