// Package usecase implements the rotation engine: a resumable state machine
// that stages a new user key, migrates every document envelope off the old
// generation in bounded batches, and finishes with the activation swap.
package usecase

import (
	"context"

	"github.com/google/uuid"

	auditDomain "github.com/ameerarsath/publicdocsafe-sub002/internal/audit/domain"
	cryptoDomain "github.com/ameerarsath/publicdocsafe-sub002/internal/crypto/domain"
	documentsUsecase "github.com/ameerarsath/publicdocsafe-sub002/internal/documents/usecase"
	"github.com/ameerarsath/publicdocsafe-sub002/internal/rotation/domain"
)

// RotationJobRepository defines persistence for rotation jobs.
type RotationJobRepository interface {
	// Create stores a new rotation job.
	Create(ctx context.Context, job *domain.RotationJob) error

	// Update persists progress and state fields of an existing job.
	Update(ctx context.Context, job *domain.RotationJob) error

	// GetByID returns a job by id, or ErrRotationJobNotFound.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.RotationJob, error)

	// GetRunningByUser returns the user's pending or in-progress job, or
	// ErrRotationJobNotFound when none is running.
	GetRunningByUser(ctx context.Context, userID uuid.UUID) (*domain.RotationJob, error)

	// ListByUser returns the user's jobs, most recent first.
	ListByUser(ctx context.Context, userID uuid.UUID, limit int) ([]*domain.RotationJob, error)
}

// DocumentKeyService is the slice of the document key service the engine
// drives: the envelope census and the batch migration primitive.
type DocumentKeyService interface {
	CountWrappedBy(ctx context.Context, wrappingKeyID uuid.UUID) (int, error)
	RewrapBatch(
		ctx context.Context,
		oldKey, newKey *cryptoDomain.UserKeyRecord,
		oldKek, newKek []byte,
		afterID uuid.UUID,
		batchSize int,
	) (documentsUsecase.RewrapResult, error)
}

// AuditRecorder appends signed audit entries, fail-closed.
type AuditRecorder interface {
	Record(ctx context.Context, event auditDomain.Event) error
}

// RotationEngine rotates a user's key generation.
//
// StartRotation and Resume serialize per user behind a rotation lock and run
// the migration synchronously to completion: the call returns once the job is
// completed or failed. A failed job leaves the old key active and the new key
// dormant, and is never retried automatically.
type RotationEngine interface {
	// StartRotation stages a dormant key derived from newSecret, records a
	// job with the envelope census, migrates every envelope, and promotes the
	// new key. presentedKek must match the user's current active key
	// (ErrAuthenticationFailure otherwise). Fails with ErrRotationInProgress
	// while another job is running for the user. A zero census completes
	// immediately.
	StartRotation(
		ctx context.Context,
		userID uuid.UUID,
		presentedKek []byte,
		newSecret []byte,
		params cryptoDomain.KeyParams,
	) (*domain.RotationJob, error)

	// Resume continues a failed or interrupted job from its cursorless
	// idempotent migration: envelopes already on the new key pass through
	// untouched. presentedKek must match the old key and newSecret must be
	// the secret the staged key was created from. Completed jobs are not
	// resumable.
	Resume(ctx context.Context, jobID uuid.UUID, presentedKek, newSecret []byte) (*domain.RotationJob, error)

	// GetJob returns a rotation job by id.
	GetJob(ctx context.Context, jobID uuid.UUID) (*domain.RotationJob, error)

	// ListJobs returns the user's rotation jobs, most recent first.
	ListJobs(ctx context.Context, userID uuid.UUID, limit int) ([]*domain.RotationJob, error)
}
