package usecase

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	auditDomain "github.com/ameerarsath/publicdocsafe-sub002/internal/audit/domain"
	cryptoDomain "github.com/ameerarsath/publicdocsafe-sub002/internal/crypto/domain"
	cryptoService "github.com/ameerarsath/publicdocsafe-sub002/internal/crypto/service"
	cryptoUsecase "github.com/ameerarsath/publicdocsafe-sub002/internal/crypto/usecase"
	"github.com/ameerarsath/publicdocsafe-sub002/internal/documents/domain"
	apperrors "github.com/ameerarsath/publicdocsafe-sub002/internal/errors"
)

const (
	// storeRetryAttempts bounds the automatic retries on ErrUnavailable.
	// Persistent outages surface to the caller after the last attempt.
	storeRetryAttempts = 3

	// rewrapParallelism bounds concurrent re-wraps within one rotation batch.
	rewrapParallelism = 8
)

type documentKeyService struct {
	repo     DocumentKeyRepository
	userKeys cryptoUsecase.UserKeyStore
	wrapper  cryptoService.KeyWrapper
	deriver  cryptoService.KeyDeriver
	auditor  AuditRecorder
	limiter  *rate.Limiter
}

// NewDocumentKeyService creates the document key service. rewrapLimiter
// throttles rotation re-wraps across all batches; pass rate.NewLimiter with
// the configured envelopes-per-second cap.
func NewDocumentKeyService(
	repo DocumentKeyRepository,
	userKeys cryptoUsecase.UserKeyStore,
	wrapper cryptoService.KeyWrapper,
	deriver cryptoService.KeyDeriver,
	auditor AuditRecorder,
	rewrapLimiter *rate.Limiter,
) DocumentKeyService {
	return &documentKeyService{
		repo:     repo,
		userKeys: userKeys,
		wrapper:  wrapper,
		deriver:  deriver,
		auditor:  auditor,
		limiter:  rewrapLimiter,
	}
}

// retryStore runs fn, retrying with exponential backoff while the failure is
// the retryable ErrUnavailable class. Any other error stops immediately.
func retryStore(ctx context.Context, fn func() error) error {
	op := func() error {
		err := fn()
		if err != nil && !apperrors.Is(err, apperrors.ErrUnavailable) {
			return backoff.Permanent(err)
		}
		return err
	}
	policy := backoff.WithContext(backoff.WithMaxRetries(backoff.NewExponentialBackOff(), storeRetryAttempts), ctx)
	return backoff.Retry(op, policy)
}

// audit reports the finished operation and merges the outcomes: a recording
// failure fails the operation even when the operation itself succeeded.
func (d *documentKeyService) audit(
	ctx context.Context,
	userID uuid.UUID,
	keyID string,
	action auditDomain.Action,
	operationID uuid.UUID,
	start time.Time,
	opErr error,
) error {
	event := auditDomain.NewEvent(&userID, keyID, action, operationID, time.Since(start), opErr)
	if err := d.auditor.Record(ctx, event); err != nil {
		return apperrors.Wrap(err, "failed to record audit entry")
	}
	return opErr
}

func (d *documentKeyService) CreateDocumentKey(
	ctx context.Context,
	userID uuid.UUID,
	documentID, versionID uuid.UUID,
	presentedKek []byte,
	seal func(dek []byte) error,
) (*domain.DocumentKeyEnvelope, error) {
	start := time.Now()
	operationID := uuid.Must(uuid.NewV7())

	env, wrappingKeyID, err := d.createDocumentKey(ctx, userID, documentID, versionID, presentedKek, seal)
	if auditErr := d.audit(ctx, userID, wrappingKeyID, auditDomain.ActionDocumentKeyCreate, operationID, start, err); auditErr != nil {
		return nil, auditErr
	}
	return env, nil
}

func (d *documentKeyService) createDocumentKey(
	ctx context.Context,
	userID uuid.UUID,
	documentID, versionID uuid.UUID,
	presentedKek []byte,
	seal func(dek []byte) error,
) (*domain.DocumentKeyEnvelope, string, error) {
	if documentID == uuid.Nil || versionID == uuid.Nil {
		return nil, "", apperrors.Wrap(apperrors.ErrInvalidInput, "document and version ids are required")
	}
	if seal == nil {
		return nil, "", apperrors.Wrap(apperrors.ErrInvalidInput, "seal callback is required")
	}

	var active *cryptoDomain.UserKeyRecord
	err := retryStore(ctx, func() error {
		var getErr error
		active, getErr = d.userKeys.GetActive(ctx, userID)
		return getErr
	})
	if err != nil {
		return nil, "", err
	}

	if !d.deriver.Verify(presentedKek, active.ValidationHash) {
		return nil, active.KeyID.String(), cryptoDomain.ErrAuthenticationFailure
	}

	dek, err := d.wrapper.GenerateKey()
	if err != nil {
		return nil, active.KeyID.String(), apperrors.Wrap(err, "failed to generate dek")
	}
	defer cryptoDomain.Zero(dek)

	env := &domain.DocumentKeyEnvelope{
		ID:            uuid.Must(uuid.NewV7()),
		DocumentID:    documentID,
		VersionID:     versionID,
		Algorithm:     active.Algorithm,
		WrappingKeyID: active.KeyID,
		CreatedAt:     time.Now().UTC(),
	}

	wrapped, err := d.wrapper.Wrap(dek, presentedKek, env.AAD(), active.Algorithm)
	if err != nil {
		return nil, active.KeyID.String(), apperrors.Wrap(err, "failed to wrap dek")
	}
	env.WrappedDek = wrapped.Ciphertext
	env.Nonce = wrapped.Nonce
	env.AuthTag = wrapped.AuthTag

	// Content encryption happens here, inside the same operation; the
	// deferred zeroing destroys the DEK as soon as we return.
	if err := seal(dek); err != nil {
		return nil, active.KeyID.String(), apperrors.Wrap(err, "content encryption failed")
	}

	err = retryStore(ctx, func() error {
		return d.repo.Create(ctx, env)
	})
	if err != nil {
		return nil, active.KeyID.String(), err
	}
	return env, active.KeyID.String(), nil
}

func (d *documentKeyService) OpenDocumentKey(
	ctx context.Context,
	userID uuid.UUID,
	envelopeID uuid.UUID,
	presentedKek []byte,
	use func(dek []byte) error,
) error {
	start := time.Now()
	operationID := uuid.Must(uuid.NewV7())

	keyID, err := d.openDocumentKey(ctx, userID, envelopeID, presentedKek, use)
	return d.audit(ctx, userID, keyID, auditDomain.ActionDocumentKeyOpen, operationID, start, err)
}

func (d *documentKeyService) openDocumentKey(
	ctx context.Context,
	userID uuid.UUID,
	envelopeID uuid.UUID,
	presentedKek []byte,
	use func(dek []byte) error,
) (string, error) {
	if use == nil {
		return "", apperrors.Wrap(apperrors.ErrInvalidInput, "use callback is required")
	}

	var env *domain.DocumentKeyEnvelope
	err := retryStore(ctx, func() error {
		var getErr error
		env, getErr = d.repo.GetByID(ctx, envelopeID)
		return getErr
	})
	if err != nil {
		return "", err
	}

	// The wrapping key may be a deactivated historical generation; only its
	// existence matters here. Hard deletion of referenced keys would strand
	// the envelope permanently, which is why key records are never deleted.
	rec, err := d.userKeys.GetByID(ctx, env.WrappingKeyID)
	if err != nil {
		return env.WrappingKeyID.String(), err
	}
	if rec.UserID != userID {
		return rec.KeyID.String(), apperrors.Wrap(apperrors.ErrForbidden, "envelope is wrapped by another user's key")
	}

	if !d.deriver.Verify(presentedKek, rec.ValidationHash) {
		return rec.KeyID.String(), cryptoDomain.ErrAuthenticationFailure
	}

	dek, err := d.wrapper.Unwrap(env.WrappedKey(), presentedKek, env.AAD(), env.Algorithm)
	if err != nil {
		return rec.KeyID.String(), err
	}
	defer cryptoDomain.Zero(dek)

	if err := use(dek); err != nil {
		return rec.KeyID.String(), apperrors.Wrap(err, "content decryption failed")
	}
	return rec.KeyID.String(), nil
}

func (d *documentKeyService) CountWrappedBy(ctx context.Context, wrappingKeyID uuid.UUID) (int, error) {
	var count int
	err := retryStore(ctx, func() error {
		var countErr error
		count, countErr = d.repo.CountByWrappingKey(ctx, wrappingKeyID)
		return countErr
	})
	return count, err
}

func (d *documentKeyService) RewrapBatch(
	ctx context.Context,
	oldKey, newKey *cryptoDomain.UserKeyRecord,
	oldKek, newKek []byte,
	afterID uuid.UUID,
	batchSize int,
) (RewrapResult, error) {
	if batchSize < 1 {
		return RewrapResult{}, apperrors.Wrap(apperrors.ErrInvalidInput, "batch size must be at least 1")
	}

	var envelopes []*domain.DocumentKeyEnvelope
	err := retryStore(ctx, func() error {
		var listErr error
		envelopes, listErr = d.repo.ListBatchByWrappingKey(ctx, oldKey.KeyID, afterID, batchSize)
		return listErr
	})
	if err != nil {
		return RewrapResult{}, err
	}

	result := RewrapResult{Processed: len(envelopes), LastID: afterID}
	if len(envelopes) == 0 {
		return result, nil
	}
	result.LastID = envelopes[len(envelopes)-1].ID

	migrated := make([]bool, len(envelopes))
	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(rewrapParallelism)
	for i, env := range envelopes {
		// A resumed job may list envelopes already carrying the new key id;
		// those pass through as processed without a swap.
		if env.WrappingKeyID == newKey.KeyID {
			continue
		}

		group.Go(func() error {
			if err := d.limiter.Wait(groupCtx); err != nil {
				return err
			}

			swapped, err := d.rewrapEnvelope(groupCtx, env, oldKey, newKey, oldKek, newKek)
			if err != nil {
				return err
			}
			migrated[i] = swapped
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return RewrapResult{}, err
	}

	for _, swapped := range migrated {
		if swapped {
			result.Migrated++
		}
	}
	return result, nil
}

// rewrapEnvelope moves one envelope from the old key generation to the new
// one. The AAD binds the wrapping key id, so the DEK is re-wrapped under
// the new id before the swap is attempted. Returns false when a concurrent
// worker already swapped this envelope.
func (d *documentKeyService) rewrapEnvelope(
	ctx context.Context,
	env *domain.DocumentKeyEnvelope,
	oldKey, newKey *cryptoDomain.UserKeyRecord,
	oldKek, newKek []byte,
) (bool, error) {
	dek, err := d.wrapper.Unwrap(env.WrappedKey(), oldKek, env.AAD(), env.Algorithm)
	if err != nil {
		return false, apperrors.Wrap(err, "failed to unwrap dek with old key")
	}
	defer cryptoDomain.Zero(dek)

	next := *env
	next.WrappingKeyID = newKey.KeyID
	next.Algorithm = newKey.Algorithm

	wrapped, err := d.wrapper.Wrap(dek, newKek, next.AAD(), next.Algorithm)
	if err != nil {
		return false, apperrors.Wrap(err, "failed to re-wrap dek with new key")
	}
	next.WrappedDek = wrapped.Ciphertext
	next.Nonce = wrapped.Nonce
	next.AuthTag = wrapped.AuthTag

	var swapped bool
	err = retryStore(ctx, func() error {
		var swapErr error
		swapped, swapErr = d.repo.UpdateWrapping(ctx, &next, oldKey.KeyID)
		return swapErr
	})
	if err != nil {
		return false, err
	}
	return swapped, nil
}
