package usecase

import (
	"context"
	"crypto/rand"
	"time"

	"github.com/google/uuid"
	"github.com/jellydator/validation"

	cryptoDomain "github.com/ameerarsath/publicdocsafe-sub002/internal/crypto/domain"
	cryptoService "github.com/ameerarsath/publicdocsafe-sub002/internal/crypto/service"
	"github.com/ameerarsath/publicdocsafe-sub002/internal/database"
	apperrors "github.com/ameerarsath/publicdocsafe-sub002/internal/errors"
	"github.com/ameerarsath/publicdocsafe-sub002/internal/locker"
	appValidation "github.com/ameerarsath/publicdocsafe-sub002/internal/validation"
)

const saltSize = 16

// userKeyUseCase implements UserKeyStore.
//
// The per-user lock plus the creation transaction guarantee the
// single-active-key invariant against concurrent CreateKey/Promote calls;
// the CountActive check inside the transaction catches writers that slipped
// past the lock (e.g. a second process).
type userKeyUseCase struct {
	txManager   database.TxManager
	userKeyRepo UserKeyRepository
	deriver     cryptoService.KeyDeriver
	locks       *locker.KeyedMutex
}

// NewUserKeyStore creates a new user key store.
func NewUserKeyStore(
	txManager database.TxManager,
	userKeyRepo UserKeyRepository,
	deriver cryptoService.KeyDeriver,
	locks *locker.KeyedMutex,
) UserKeyStore {
	return &userKeyUseCase{
		txManager:   txManager,
		userKeyRepo: userKeyRepo,
		deriver:     deriver,
		locks:       locks,
	}
}

func userLockKey(userID uuid.UUID) string {
	return "user-key:" + userID.String()
}

func validateKeyParams(params cryptoDomain.KeyParams) error {
	err := validation.ValidateStruct(&params,
		validation.Field(&params.Algorithm,
			validation.Required.Error("algorithm is required"),
		),
		validation.Field(&params.DerivationMethod,
			validation.Required.Error("derivation method is required"),
		),
		validation.Field(&params.Iterations,
			validation.Required.Error("iterations is required"),
			validation.Min(1).Error("iterations must be positive"),
		),
		validation.Field(&params.Hint,
			validation.Length(0, 255).Error("hint must be at most 255 characters"),
		),
	)
	if err != nil {
		return appValidation.WrapValidationError(err)
	}

	if _, err := cryptoDomain.ParseAlgorithm(string(params.Algorithm)); err != nil {
		return err
	}
	if _, err := cryptoDomain.ParseDerivationMethod(string(params.DerivationMethod)); err != nil {
		return err
	}
	return nil
}

// newRecord derives the KEK, computes the validation hash and assembles the
// record. The derived KEK never leaves this function.
func (u *userKeyUseCase) newRecord(
	userID uuid.UUID,
	secret []byte,
	params cryptoDomain.KeyParams,
	active bool,
) (*cryptoDomain.UserKeyRecord, error) {
	if err := validateKeyParams(params); err != nil {
		return nil, err
	}

	salt := make([]byte, saltSize)
	if _, err := rand.Read(salt); err != nil {
		return nil, apperrors.Wrap(err, "failed to generate salt")
	}

	kek, err := u.deriver.Derive(secret, salt, params.Iterations, params.DerivationMethod)
	if err != nil {
		return nil, err
	}
	defer cryptoDomain.Zero(kek)

	validationHash, err := u.deriver.ValidationHash(kek)
	if err != nil {
		return nil, err
	}

	return &cryptoDomain.UserKeyRecord{
		KeyID:            uuid.Must(uuid.NewV7()),
		UserID:           userID,
		Algorithm:        params.Algorithm,
		DerivationMethod: params.DerivationMethod,
		Iterations:       params.Iterations,
		Salt:             salt,
		ValidationHash:   validationHash,
		Hint:             params.Hint,
		IsActive:         active,
		CreatedAt:        time.Now().UTC(),
	}, nil
}

// CreateKey installs a new active key for the user, deactivating any prior
// active record in the same transaction.
func (u *userKeyUseCase) CreateKey(
	ctx context.Context,
	userID uuid.UUID,
	secret []byte,
	params cryptoDomain.KeyParams,
) (*cryptoDomain.UserKeyRecord, error) {
	rec, err := u.newRecord(userID, secret, params, true)
	if err != nil {
		return nil, err
	}

	unlock := u.locks.Lock(userLockKey(userID))
	defer unlock()

	err = u.txManager.WithTx(ctx, func(ctx context.Context) error {
		current, err := u.userKeyRepo.GetActive(ctx, userID)
		switch {
		case err == nil:
			current.Deactivate(cryptoDomain.DeactivatedReasonReplaced, time.Now().UTC())
			if err := u.userKeyRepo.Update(ctx, current); err != nil {
				return err
			}
		case apperrors.Is(err, cryptoDomain.ErrNoActiveKey):
			// First key for this user.
		default:
			return err
		}

		if err := u.userKeyRepo.Create(ctx, rec); err != nil {
			return err
		}

		// Optimistic check: a writer that slipped past the lock shows up as
		// a second active record here and rolls the transaction back.
		count, err := u.userKeyRepo.CountActive(ctx, userID)
		if err != nil {
			return err
		}
		if count != 1 {
			return cryptoDomain.ErrDuplicateActiveKey
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return rec, nil
}

// CreateDormantKey stages an inactive key record for a future rotation.
func (u *userKeyUseCase) CreateDormantKey(
	ctx context.Context,
	userID uuid.UUID,
	secret []byte,
	params cryptoDomain.KeyParams,
) (*cryptoDomain.UserKeyRecord, error) {
	rec, err := u.newRecord(userID, secret, params, false)
	if err != nil {
		return nil, err
	}
	if err := u.userKeyRepo.Create(ctx, rec); err != nil {
		return nil, err
	}
	return rec, nil
}

// GetActive returns the user's active key record.
func (u *userKeyUseCase) GetActive(ctx context.Context, userID uuid.UUID) (*cryptoDomain.UserKeyRecord, error) {
	return u.userKeyRepo.GetActive(ctx, userID)
}

// GetByID returns a key record by id, active or historical.
func (u *userKeyUseCase) GetByID(ctx context.Context, keyID uuid.UUID) (*cryptoDomain.UserKeyRecord, error) {
	return u.userKeyRepo.GetByID(ctx, keyID)
}

// Deactivate marks a non-active record with a reason. Deactivating the
// active key is forbidden outside a replacement transaction.
func (u *userKeyUseCase) Deactivate(ctx context.Context, keyID uuid.UUID, reason string) error {
	return u.txManager.WithTx(ctx, func(ctx context.Context) error {
		rec, err := u.userKeyRepo.GetByID(ctx, keyID)
		if err != nil {
			return err
		}
		if rec.IsActive {
			return cryptoDomain.ErrActiveKeyDeactivation
		}
		if rec.DeactivatedAt != nil {
			return nil
		}
		rec.Deactivate(reason, time.Now().UTC())
		return u.userKeyRepo.Update(ctx, rec)
	})
}

// Promote swaps the active key from oldKeyID to newKeyID in one transaction.
func (u *userKeyUseCase) Promote(ctx context.Context, userID, oldKeyID, newKeyID uuid.UUID) error {
	unlock := u.locks.Lock(userLockKey(userID))
	defer unlock()

	return u.txManager.WithTx(ctx, func(ctx context.Context) error {
		oldRec, err := u.userKeyRepo.GetByID(ctx, oldKeyID)
		if err != nil {
			return err
		}
		newRec, err := u.userKeyRepo.GetByID(ctx, newKeyID)
		if err != nil {
			return err
		}
		if oldRec.UserID != userID || newRec.UserID != userID {
			return apperrors.Wrap(apperrors.ErrInvalidInput, "key records belong to a different user")
		}

		// Resuming after a crash between swap and job completion.
		if !oldRec.IsActive && newRec.IsActive {
			return nil
		}

		if oldRec.IsActive {
			oldRec.Deactivate(cryptoDomain.DeactivatedReasonRotation, time.Now().UTC())
			if err := u.userKeyRepo.Update(ctx, oldRec); err != nil {
				return err
			}
		}

		if !newRec.IsActive {
			newRec.IsActive = true
			if err := u.userKeyRepo.Update(ctx, newRec); err != nil {
				return err
			}
		}

		count, err := u.userKeyRepo.CountActive(ctx, userID)
		if err != nil {
			return err
		}
		if count != 1 {
			return cryptoDomain.ErrDuplicateActiveKey
		}
		return nil
	})
}
