package usecase

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/google/uuid"
	validation "github.com/jellydator/validation"

	auditDomain "github.com/ameerarsath/publicdocsafe-sub002/internal/audit/domain"
	cryptoDomain "github.com/ameerarsath/publicdocsafe-sub002/internal/crypto/domain"
	cryptoService "github.com/ameerarsath/publicdocsafe-sub002/internal/crypto/service"
	cryptoUsecase "github.com/ameerarsath/publicdocsafe-sub002/internal/crypto/usecase"
	apperrors "github.com/ameerarsath/publicdocsafe-sub002/internal/errors"
	"github.com/ameerarsath/publicdocsafe-sub002/internal/escrow/domain"
	appValidation "github.com/ameerarsath/publicdocsafe-sub002/internal/validation"
)

// storeRetryAttempts bounds the automatic retries on ErrUnavailable.
const storeRetryAttempts = 3

type escrowService struct {
	repo       EscrowRepository
	userKeys   cryptoUsecase.UserKeyStore
	masterKeys cryptoUsecase.MasterKeyStore
	wrapper    cryptoService.KeyWrapper
	deriver    cryptoService.KeyDeriver
	auditor    AuditRecorder
}

// NewEscrowService creates the escrow service.
func NewEscrowService(
	repo EscrowRepository,
	userKeys cryptoUsecase.UserKeyStore,
	masterKeys cryptoUsecase.MasterKeyStore,
	wrapper cryptoService.KeyWrapper,
	deriver cryptoService.KeyDeriver,
	auditor AuditRecorder,
) EscrowService {
	return &escrowService{
		repo:       repo,
		userKeys:   userKeys,
		masterKeys: masterKeys,
		wrapper:    wrapper,
		deriver:    deriver,
		auditor:    auditor,
	}
}

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

func (e *escrowService) audit(
	ctx context.Context,
	userID *uuid.UUID,
	keyID string,
	action auditDomain.Action,
	operationID uuid.UUID,
	start time.Time,
	opErr error,
) error {
	event := auditDomain.NewEvent(userID, keyID, action, operationID, time.Since(start), opErr)
	if err := e.auditor.Record(ctx, event); err != nil {
		return apperrors.Wrap(err, "failed to record audit entry")
	}
	return opErr
}

func (e *escrowService) CreateEscrow(
	ctx context.Context,
	keyID uuid.UUID,
	presentedKek []byte,
	recoveryThreshold int,
) (*domain.EscrowRecord, error) {
	start := time.Now()
	operationID := uuid.Must(uuid.NewV7())

	rec, userID, err := e.createEscrow(ctx, keyID, presentedKek, recoveryThreshold)
	if auditErr := e.audit(ctx, userID, keyID.String(), auditDomain.ActionEscrowCreate, operationID, start, err); auditErr != nil {
		return nil, auditErr
	}
	return rec, nil
}

func (e *escrowService) createEscrow(
	ctx context.Context,
	keyID uuid.UUID,
	presentedKek []byte,
	recoveryThreshold int,
) (*domain.EscrowRecord, *uuid.UUID, error) {
	if recoveryThreshold < 1 {
		return nil, nil, apperrors.Wrap(apperrors.ErrInvalidInput, "recovery threshold must be at least 1")
	}

	var keyRec *cryptoDomain.UserKeyRecord
	err := retryStore(ctx, func() error {
		var getErr error
		keyRec, getErr = e.userKeys.GetByID(ctx, keyID)
		return getErr
	})
	if err != nil {
		return nil, nil, err
	}

	// A wrong secret must not end up in escrow: recovery would then release
	// key material that unwraps nothing.
	if !e.deriver.Verify(presentedKek, keyRec.ValidationHash) {
		return nil, &keyRec.UserID, cryptoDomain.ErrAuthenticationFailure
	}

	masterKey, err := e.masterKeys.GetActive(ctx, cryptoDomain.PurposeEscrow)
	if err != nil {
		return nil, &keyRec.UserID, err
	}
	defer masterKey.Close()

	rec := &domain.EscrowRecord{
		ID:                uuid.Must(uuid.NewV7()),
		KeyID:             keyRec.KeyID,
		UserID:            keyRec.UserID,
		MasterKeyID:       masterKey.KeyID,
		EscrowMethod:      domain.EscrowMethodMasterKeyWrap,
		RecoveryThreshold: recoveryThreshold,
		CreatedAt:         time.Now().UTC(),
	}

	wrapped, err := e.wrapper.Wrap(presentedKek, masterKey.Key, rec.AAD(), masterKey.Algorithm)
	if err != nil {
		return nil, &keyRec.UserID, apperrors.Wrap(err, "failed to wrap kek under master key")
	}
	rec.EscrowData = wrapped.Ciphertext
	rec.Nonce = wrapped.Nonce
	rec.AuthTag = wrapped.AuthTag

	err = retryStore(ctx, func() error {
		return e.repo.Create(ctx, rec)
	})
	if err != nil {
		return nil, &keyRec.UserID, err
	}
	return rec, &keyRec.UserID, nil
}

func (e *escrowService) Recover(
	ctx context.Context,
	escrowID uuid.UUID,
	proof domain.ApprovalProof,
) ([]byte, error) {
	start := time.Now()
	operationID := uuid.Must(uuid.NewV7())

	kek, userID, keyID, err := e.recover(ctx, escrowID, proof)
	if auditErr := e.audit(ctx, userID, keyID, auditDomain.ActionEscrowRecover, operationID, start, err); auditErr != nil {
		cryptoDomain.Zero(kek)
		return nil, auditErr
	}
	return kek, nil
}

func validateProof(proof domain.ApprovalProof) error {
	err := validation.ValidateStruct(&proof,
		validation.Field(&proof.RecoveredBy,
			validation.Required.Error("an operator identity is required"),
			appValidation.NotBlank,
			appValidation.NoWhitespace,
		),
		validation.Field(&proof.Reason,
			validation.Required.Error("a recovery reason is required"),
			appValidation.NotBlank,
		),
	)
	return appValidation.WrapValidationError(err)
}

func (e *escrowService) recover(
	ctx context.Context,
	escrowID uuid.UUID,
	proof domain.ApprovalProof,
) ([]byte, *uuid.UUID, string, error) {
	if err := validateProof(proof); err != nil {
		return nil, nil, "", err
	}

	var rec *domain.EscrowRecord
	err := retryStore(ctx, func() error {
		var getErr error
		rec, getErr = e.repo.GetByID(ctx, escrowID)
		return getErr
	})
	if err != nil {
		return nil, nil, "", err
	}

	if rec.Recovered() {
		return nil, &rec.UserID, rec.KeyID.String(), domain.ErrAlreadyRecovered
	}
	if len(proof.Approvals) < rec.RecoveryThreshold {
		return nil, &rec.UserID, rec.KeyID.String(), domain.ErrThresholdNotMet
	}

	// Claim the record before touching any key material. Of two concurrent
	// recoveries, the loser sees zero rows affected and no KEK ever exists
	// on its side.
	now := time.Now().UTC()
	rec.RecoveredAt = &now
	rec.RecoveredBy = proof.RecoveredBy
	rec.RecoveryReason = proof.Reason

	var claimed bool
	err = retryStore(ctx, func() error {
		var markErr error
		claimed, markErr = e.repo.MarkRecovered(ctx, rec)
		return markErr
	})
	if err != nil {
		return nil, &rec.UserID, rec.KeyID.String(), err
	}
	if !claimed {
		return nil, &rec.UserID, rec.KeyID.String(), domain.ErrAlreadyRecovered
	}

	// The record is tied to the master key active at its creation time, not
	// the currently active one.
	masterKey, err := e.masterKeys.GetByID(ctx, rec.MasterKeyID)
	if err != nil {
		return nil, &rec.UserID, rec.KeyID.String(), err
	}
	defer masterKey.Close()

	kek, err := e.wrapper.Unwrap(rec.WrappedKey(), masterKey.Key, rec.AAD(), masterKey.Algorithm)
	if err != nil {
		return nil, &rec.UserID, rec.KeyID.String(), err
	}
	return kek, &rec.UserID, rec.KeyID.String(), nil
}

func (e *escrowService) ListEscrows(ctx context.Context, userID uuid.UUID, limit int) ([]*domain.EscrowRecord, error) {
	var records []*domain.EscrowRecord
	err := retryStore(ctx, func() error {
		var listErr error
		records, listErr = e.repo.ListByUser(ctx, userID, limit)
		return listErr
	})
	return records, err
}
