// Package usecase implements the document key service: per-version DEK
// creation under the caller's active KEK and DEK access for reads, plus the
// batch re-wrap primitive the rotation engine drives.
package usecase

import (
	"context"

	"github.com/google/uuid"

	auditDomain "github.com/ameerarsath/publicdocsafe-sub002/internal/audit/domain"
	cryptoDomain "github.com/ameerarsath/publicdocsafe-sub002/internal/crypto/domain"
	"github.com/ameerarsath/publicdocsafe-sub002/internal/documents/domain"
)

// DocumentKeyRepository defines persistence for document key envelopes.
type DocumentKeyRepository interface {
	// Create stores a new envelope.
	Create(ctx context.Context, env *domain.DocumentKeyEnvelope) error

	// GetByID returns an envelope by id, or ErrEnvelopeNotFound.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.DocumentKeyEnvelope, error)

	// GetByDocumentVersion returns the envelope for one document version, or
	// ErrEnvelopeNotFound.
	GetByDocumentVersion(ctx context.Context, documentID, versionID uuid.UUID) (*domain.DocumentKeyEnvelope, error)

	// ListBatchByWrappingKey returns up to limit envelopes wrapped by the
	// given key in stable id order, starting strictly after afterID.
	ListBatchByWrappingKey(ctx context.Context, wrappingKeyID, afterID uuid.UUID, limit int) ([]*domain.DocumentKeyEnvelope, error)

	// UpdateWrapping swaps the envelope's wrapping fields if it is still
	// wrapped by fromKeyID. Returns false when another worker got there first.
	UpdateWrapping(ctx context.Context, env *domain.DocumentKeyEnvelope, fromKeyID uuid.UUID) (bool, error)

	// CountByWrappingKey returns the number of envelopes wrapped by a key.
	CountByWrappingKey(ctx context.Context, wrappingKeyID uuid.UUID) (int, error)
}

// AuditRecorder appends signed audit entries. Recording is fail-closed: a
// recording error fails the operation that produced the event.
type AuditRecorder interface {
	Record(ctx context.Context, event auditDomain.Event) error
}

// RewrapResult reports one rotation batch: how many envelopes were read,
// how many this worker migrated, and the cursor for the next batch.
// Processed < the requested batch size means the key has no more envelopes
// past the cursor.
type RewrapResult struct {
	Processed int
	Migrated  int
	LastID    uuid.UUID
}

// DocumentKeyService manages per-document-version data encryption keys.
//
// The plaintext DEK only ever exists inside the callback passed by the
// caller; it is zeroed before the method returns. Both entry points verify
// the presented KEK against a key record's validation hash before any
// cryptographic use, and both retry transient store failures with
// exponential backoff.
type DocumentKeyService interface {
	// CreateDocumentKey generates a random DEK for one document version,
	// hands it to the seal callback for the content-encryption step, wraps it
	// under the user's active KEK, and persists the envelope. Fails with
	// ErrAuthenticationFailure when presentedKek does not match the active
	// key record.
	CreateDocumentKey(
		ctx context.Context,
		userID uuid.UUID,
		documentID, versionID uuid.UUID,
		presentedKek []byte,
		seal func(dek []byte) error,
	) (*domain.DocumentKeyEnvelope, error)

	// OpenDocumentKey unwraps the DEK of an envelope and hands it to the use
	// callback for the duration of one content-decryption step. The wrapping
	// key record is resolved by the envelope's WrappingKeyID and may be a
	// deactivated historical generation. Fails with ErrKeyRecordNotFound when
	// the wrapping key no longer resolves, ErrAuthenticationFailure on a KEK
	// mismatch or a tampered envelope.
	OpenDocumentKey(
		ctx context.Context,
		userID uuid.UUID,
		envelopeID uuid.UUID,
		presentedKek []byte,
		use func(dek []byte) error,
	) error

	// CountWrappedBy returns the number of envelopes currently wrapped by a
	// key generation. The rotation engine uses it for the migration census.
	CountWrappedBy(ctx context.Context, wrappingKeyID uuid.UUID) (int, error)

	// RewrapBatch migrates one batch of envelopes from oldKey to newKey:
	// unwraps each DEK with oldKek, re-wraps with newKek, and swaps the
	// wrapping fields with a compare-and-swap on the old key id. Envelopes
	// already wrapped by newKey count as processed but not migrated, so a
	// resumed job passes over completed work. Re-wraps within the batch run
	// concurrently; cancellation is honored between envelopes.
	RewrapBatch(
		ctx context.Context,
		oldKey, newKey *cryptoDomain.UserKeyRecord,
		oldKek, newKek []byte,
		afterID uuid.UUID,
		batchSize int,
	) (RewrapResult, error)
}
