package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	auditDomain "github.com/ameerarsath/publicdocsafe-sub002/internal/audit/domain"
	cryptoDomain "github.com/ameerarsath/publicdocsafe-sub002/internal/crypto/domain"
	cryptoService "github.com/ameerarsath/publicdocsafe-sub002/internal/crypto/service"
	cryptoUsecase "github.com/ameerarsath/publicdocsafe-sub002/internal/crypto/usecase"
	apperrors "github.com/ameerarsath/publicdocsafe-sub002/internal/errors"
	"github.com/ameerarsath/publicdocsafe-sub002/internal/locker"
	"github.com/ameerarsath/publicdocsafe-sub002/internal/rotation/domain"
)

// maxMigrationPasses bounds how often one migration run re-walks the cursor
// when envelopes keep appearing under the old key, which can happen while
// the old key is still active and documents are being uploaded concurrently.
const maxMigrationPasses = 3

type rotationEngine struct {
	jobs      RotationJobRepository
	userKeys  cryptoUsecase.UserKeyStore
	documents DocumentKeyService
	deriver   cryptoService.KeyDeriver
	auditor   AuditRecorder
	locks     *locker.KeyedMutex
	batchSize int
}

// NewRotationEngine creates the rotation engine. batchSize bounds how many
// envelopes one migration batch loads and re-wraps.
func NewRotationEngine(
	jobs RotationJobRepository,
	userKeys cryptoUsecase.UserKeyStore,
	documents DocumentKeyService,
	deriver cryptoService.KeyDeriver,
	auditor AuditRecorder,
	locks *locker.KeyedMutex,
	batchSize int,
) RotationEngine {
	return &rotationEngine{
		jobs:      jobs,
		userKeys:  userKeys,
		documents: documents,
		deriver:   deriver,
		auditor:   auditor,
		locks:     locks,
		batchSize: batchSize,
	}
}

func rotationLockKey(userID uuid.UUID) string {
	return "rotation:" + userID.String()
}

func (e *rotationEngine) audit(
	ctx context.Context,
	userID uuid.UUID,
	keyID string,
	action auditDomain.Action,
	operationID uuid.UUID,
	start time.Time,
	opErr error,
) error {
	event := auditDomain.NewEvent(&userID, keyID, action, operationID, time.Since(start), opErr)
	if err := e.auditor.Record(ctx, event); err != nil {
		return apperrors.Wrap(err, "failed to record audit entry")
	}
	return opErr
}

func (e *rotationEngine) StartRotation(
	ctx context.Context,
	userID uuid.UUID,
	presentedKek []byte,
	newSecret []byte,
	params cryptoDomain.KeyParams,
) (*domain.RotationJob, error) {
	start := time.Now()
	operationID := uuid.Must(uuid.NewV7())

	unlock := e.locks.Lock(rotationLockKey(userID))
	defer unlock()

	job, keyID, err := e.startRotation(ctx, userID, presentedKek, newSecret, params, operationID)
	if auditErr := e.audit(ctx, userID, keyID, auditDomain.ActionRotationStart, operationID, start, err); auditErr != nil {
		return job, auditErr
	}
	return job, nil
}

func (e *rotationEngine) startRotation(
	ctx context.Context,
	userID uuid.UUID,
	presentedKek []byte,
	newSecret []byte,
	params cryptoDomain.KeyParams,
	operationID uuid.UUID,
) (*domain.RotationJob, string, error) {
	if _, err := e.jobs.GetRunningByUser(ctx, userID); err == nil {
		return nil, "", domain.ErrRotationInProgress
	} else if !apperrors.Is(err, domain.ErrRotationJobNotFound) {
		return nil, "", err
	}

	oldKey, err := e.userKeys.GetActive(ctx, userID)
	if err != nil {
		return nil, "", err
	}
	if !e.deriver.Verify(presentedKek, oldKey.ValidationHash) {
		return nil, oldKey.KeyID.String(), cryptoDomain.ErrAuthenticationFailure
	}

	// The new generation stays dormant until every envelope is migrated.
	newKey, err := e.userKeys.CreateDormantKey(ctx, userID, newSecret, params)
	if err != nil {
		return nil, oldKey.KeyID.String(), err
	}

	total, err := e.documents.CountWrappedBy(ctx, oldKey.KeyID)
	if err != nil {
		return nil, oldKey.KeyID.String(), err
	}

	job := &domain.RotationJob{
		ID:             uuid.Must(uuid.NewV7()),
		UserID:         userID,
		OldKeyID:       oldKey.KeyID,
		NewKeyID:       newKey.KeyID,
		RotationType:   domain.RotationTypeUserRequested,
		DocumentsTotal: total,
		Status:         domain.StatusPending,
		StartedAt:      time.Now().UTC(),
	}
	if err := e.jobs.Create(ctx, job); err != nil {
		return nil, oldKey.KeyID.String(), err
	}

	job.Status = domain.StatusInProgress
	if err := e.jobs.Update(ctx, job); err != nil {
		return job, oldKey.KeyID.String(), err
	}

	newKek, err := e.deriveNewKek(newSecret, newKey)
	if err != nil {
		return job, oldKey.KeyID.String(), e.fail(ctx, job, err)
	}
	defer cryptoDomain.Zero(newKek)

	if err := e.runMigration(ctx, job, oldKey, newKey, presentedKek, newKek, operationID); err != nil {
		return job, oldKey.KeyID.String(), err
	}
	return job, oldKey.KeyID.String(), nil
}

func (e *rotationEngine) Resume(ctx context.Context, jobID uuid.UUID, presentedKek, newSecret []byte) (*domain.RotationJob, error) {
	start := time.Now()
	operationID := uuid.Must(uuid.NewV7())

	// First read resolves the user for the lock; the job is re-read under it.
	job, err := e.jobs.GetByID(ctx, jobID)
	if err != nil {
		return nil, err
	}
	userID := job.UserID

	unlock := e.locks.Lock(rotationLockKey(userID))
	defer unlock()

	job, keyID, err := e.resume(ctx, jobID, presentedKek, newSecret, operationID)
	if auditErr := e.audit(ctx, userID, keyID, auditDomain.ActionRotationResume, operationID, start, err); auditErr != nil {
		return job, auditErr
	}
	return job, nil
}

func (e *rotationEngine) resume(
	ctx context.Context,
	jobID uuid.UUID,
	presentedKek, newSecret []byte,
	operationID uuid.UUID,
) (*domain.RotationJob, string, error) {
	job, err := e.jobs.GetByID(ctx, jobID)
	if err != nil {
		return nil, "", err
	}
	if job.Status == domain.StatusCompleted {
		return job, job.OldKeyID.String(), domain.ErrRotationNotResumable
	}

	oldKey, err := e.userKeys.GetByID(ctx, job.OldKeyID)
	if err != nil {
		return job, job.OldKeyID.String(), err
	}
	newKey, err := e.userKeys.GetByID(ctx, job.NewKeyID)
	if err != nil {
		return job, oldKey.KeyID.String(), err
	}

	// A crash between the activation swap and the job update leaves the swap
	// done but the job in progress; only the bookkeeping is missing.
	if newKey.IsActive && !oldKey.IsActive {
		return job, oldKey.KeyID.String(), e.complete(ctx, job, operationID)
	}

	if !e.deriver.Verify(presentedKek, oldKey.ValidationHash) {
		return job, oldKey.KeyID.String(), cryptoDomain.ErrAuthenticationFailure
	}
	newKek, err := e.deriveNewKek(newSecret, newKey)
	if err != nil {
		return job, oldKey.KeyID.String(), err
	}
	defer cryptoDomain.Zero(newKek)
	if !e.deriver.Verify(newKek, newKey.ValidationHash) {
		return job, oldKey.KeyID.String(), apperrors.Wrap(cryptoDomain.ErrAuthenticationFailure, "secret does not match the staged key")
	}

	job.Status = domain.StatusInProgress
	job.ErrorMessage = ""
	if err := e.jobs.Update(ctx, job); err != nil {
		return job, oldKey.KeyID.String(), err
	}

	if err := e.runMigration(ctx, job, oldKey, newKey, presentedKek, newKek, operationID); err != nil {
		return job, oldKey.KeyID.String(), err
	}
	return job, oldKey.KeyID.String(), nil
}

func (e *rotationEngine) GetJob(ctx context.Context, jobID uuid.UUID) (*domain.RotationJob, error) {
	return e.jobs.GetByID(ctx, jobID)
}

func (e *rotationEngine) ListJobs(ctx context.Context, userID uuid.UUID, limit int) ([]*domain.RotationJob, error) {
	return e.jobs.ListByUser(ctx, userID, limit)
}

func (e *rotationEngine) deriveNewKek(newSecret []byte, newKey *cryptoDomain.UserKeyRecord) ([]byte, error) {
	kek, err := e.deriver.Derive(newSecret, newKey.Salt, newKey.Iterations, newKey.DerivationMethod)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to derive new kek")
	}
	return kek, nil
}

// runMigration drives the cursor over the old key's envelopes, persists
// progress after every batch, and finishes with the activation swap. Any
// error marks the job failed; the old key stays active.
func (e *rotationEngine) runMigration(
	ctx context.Context,
	job *domain.RotationJob,
	oldKey, newKey *cryptoDomain.UserKeyRecord,
	oldKek, newKek []byte,
	operationID uuid.UUID,
) error {
	for pass := 0; ; pass++ {
		if pass >= maxMigrationPasses {
			return e.fail(ctx, job, fmt.Errorf("envelopes still wrapped by the old key after %d passes", pass))
		}

		cursor := uuid.Nil
		for {
			result, err := e.documents.RewrapBatch(ctx, oldKey, newKey, oldKek, newKek, cursor, e.batchSize)
			if err != nil {
				return e.fail(ctx, job, err)
			}
			if result.Migrated > 0 {
				job.DocumentsMigrated += result.Migrated
				if err := e.jobs.Update(ctx, job); err != nil {
					return e.fail(ctx, job, err)
				}
			}
			if result.Processed < e.batchSize {
				break
			}
			cursor = result.LastID
		}

		// Uploads under the still-active old key may have outrun the cursor.
		remaining, err := e.documents.CountWrappedBy(ctx, oldKey.KeyID)
		if err != nil {
			return e.fail(ctx, job, err)
		}
		if remaining == 0 {
			break
		}
	}

	if err := e.userKeys.Promote(ctx, job.UserID, oldKey.KeyID, newKey.KeyID); err != nil {
		return e.fail(ctx, job, err)
	}
	return e.complete(ctx, job, operationID)
}

// complete marks the job terminal and records the completion audit entry.
func (e *rotationEngine) complete(ctx context.Context, job *domain.RotationJob, operationID uuid.UUID) error {
	job.Complete(time.Now().UTC())
	if err := e.jobs.Update(ctx, job); err != nil {
		return err
	}

	event := auditDomain.NewEvent(&job.UserID, job.NewKeyID.String(), auditDomain.ActionRotationComplete, operationID, time.Since(job.StartedAt), nil)
	if err := e.auditor.Record(ctx, event); err != nil {
		return apperrors.Wrap(err, "failed to record audit entry")
	}
	return nil
}

// fail persists the failure and returns the original error. A failing state
// update is reported alongside the migration error.
func (e *rotationEngine) fail(ctx context.Context, job *domain.RotationJob, cause error) error {
	job.Fail(cause.Error())
	if err := e.jobs.Update(ctx, job); err != nil {
		return apperrors.Wrap(cause, "failed to persist rotation failure: "+err.Error())
	}
	return cause
}
