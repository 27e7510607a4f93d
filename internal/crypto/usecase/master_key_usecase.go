package usecase

import (
	"context"
	"crypto/rand"
	"fmt"
	"time"

	"github.com/google/uuid"

	cryptoDomain "github.com/ameerarsath/publicdocsafe-sub002/internal/crypto/domain"
	cryptoService "github.com/ameerarsath/publicdocsafe-sub002/internal/crypto/service"
	"github.com/ameerarsath/publicdocsafe-sub002/internal/database"
	apperrors "github.com/ameerarsath/publicdocsafe-sub002/internal/errors"
	"github.com/ameerarsath/publicdocsafe-sub002/internal/locker"
)

// masterKeyUseCase implements MasterKeyStore.
//
// Key material is generated locally and sealed by the configured KMS keeper
// before it touches the repository. Unsealing happens on read; callers own
// the returned plaintext and must Close the record.
type masterKeyUseCase struct {
	txManager        database.TxManager
	masterKeyRepo    MasterKeyRepository
	kms              cryptoService.KMSService
	kmsKeyURI        string
	rotationInterval time.Duration
	locks            *locker.KeyedMutex
}

// NewMasterKeyStore creates a new master key store. kmsKeyURI selects the
// keeper that seals key material at rest (awskms://, gcpkms://,
// azurekeyvault://, hashivault://, or base64key:// for development).
func NewMasterKeyStore(
	txManager database.TxManager,
	masterKeyRepo MasterKeyRepository,
	kms cryptoService.KMSService,
	kmsKeyURI string,
	rotationInterval time.Duration,
	locks *locker.KeyedMutex,
) MasterKeyStore {
	return &masterKeyUseCase{
		txManager:        txManager,
		masterKeyRepo:    masterKeyRepo,
		kms:              kms,
		kmsKeyURI:        kmsKeyURI,
		rotationInterval: rotationInterval,
		locks:            locks,
	}
}

func purposeLockKey(purpose cryptoDomain.KeyPurpose) string {
	return "master-key:" + string(purpose)
}

// newSealedRecord generates fresh key material and seals it with the KMS
// keeper. The returned record carries both the sealed and plaintext key.
func (m *masterKeyUseCase) newSealedRecord(
	ctx context.Context,
	purpose cryptoDomain.KeyPurpose,
	previousKeyID string,
) (*cryptoDomain.MasterKeyRecord, error) {
	keeper, err := m.kms.OpenKeeper(ctx, m.kmsKeyURI)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = keeper.Close()
	}()

	key := make([]byte, cryptoDomain.KeySize)
	if _, err := rand.Read(key); err != nil {
		return nil, apperrors.Wrap(err, "failed to generate master key material")
	}

	sealed, err := keeper.Encrypt(ctx, key)
	if err != nil {
		cryptoDomain.Zero(key)
		return nil, apperrors.Wrap(err, "failed to seal master key")
	}

	now := time.Now().UTC()
	return &cryptoDomain.MasterKeyRecord{
		KeyID:          fmt.Sprintf("%s-%s", purpose, uuid.Must(uuid.NewV7())),
		Purpose:        purpose,
		Algorithm:      cryptoDomain.AESGCM,
		SealedKey:      sealed,
		Key:            key,
		IsActive:       true,
		PreviousKeyID:  previousKeyID,
		CreatedAt:      now,
		NextRotationAt: now.Add(m.rotationInterval),
	}, nil
}

// unseal decrypts the record's key material in place.
func (m *masterKeyUseCase) unseal(ctx context.Context, rec *cryptoDomain.MasterKeyRecord) error {
	keeper, err := m.kms.OpenKeeper(ctx, m.kmsKeyURI)
	if err != nil {
		return err
	}
	defer func() {
		_ = keeper.Close()
	}()

	key, err := keeper.Decrypt(ctx, rec.SealedKey)
	if err != nil {
		return apperrors.Wrap(err, "failed to unseal master key")
	}
	rec.Key = key
	return nil
}

// Bootstrap creates the first active master key for a purpose, or returns
// the existing one.
func (m *masterKeyUseCase) Bootstrap(ctx context.Context, purpose cryptoDomain.KeyPurpose) (*cryptoDomain.MasterKeyRecord, error) {
	unlock := m.locks.Lock(purposeLockKey(purpose))
	defer unlock()

	existing, err := m.masterKeyRepo.GetActive(ctx, purpose)
	if err == nil {
		if err := m.unseal(ctx, existing); err != nil {
			return nil, err
		}
		return existing, nil
	}
	if !apperrors.Is(err, cryptoDomain.ErrMasterKeyNotFound) {
		return nil, err
	}

	rec, err := m.newSealedRecord(ctx, purpose, "")
	if err != nil {
		return nil, err
	}
	if err := m.masterKeyRepo.Create(ctx, rec); err != nil {
		rec.Close()
		return nil, err
	}
	return rec, nil
}

// GetActive returns the active master key for a purpose, unsealed.
func (m *masterKeyUseCase) GetActive(ctx context.Context, purpose cryptoDomain.KeyPurpose) (*cryptoDomain.MasterKeyRecord, error) {
	rec, err := m.masterKeyRepo.GetActive(ctx, purpose)
	if err != nil {
		return nil, err
	}
	if err := m.unseal(ctx, rec); err != nil {
		return nil, err
	}
	return rec, nil
}

// GetByID returns a master key by id, unsealed. Historical keys stay
// resolvable so escrow records created under an old generation can recover.
func (m *masterKeyUseCase) GetByID(ctx context.Context, keyID string) (*cryptoDomain.MasterKeyRecord, error) {
	rec, err := m.masterKeyRepo.GetByID(ctx, keyID)
	if err != nil {
		return nil, err
	}
	if err := m.unseal(ctx, rec); err != nil {
		return nil, err
	}
	return rec, nil
}

// Rotate installs a new active master key for the purpose, deactivating the
// prior key in the same transaction. The first rotation on an empty purpose
// behaves like Bootstrap.
func (m *masterKeyUseCase) Rotate(ctx context.Context, purpose cryptoDomain.KeyPurpose) (*cryptoDomain.MasterKeyRecord, error) {
	unlock := m.locks.Lock(purposeLockKey(purpose))
	defer unlock()

	current, err := m.masterKeyRepo.GetActive(ctx, purpose)
	if err != nil && !apperrors.Is(err, cryptoDomain.ErrMasterKeyNotFound) {
		return nil, err
	}

	previousKeyID := ""
	if current != nil {
		previousKeyID = current.KeyID
	}

	rec, err := m.newSealedRecord(ctx, purpose, previousKeyID)
	if err != nil {
		return nil, err
	}

	err = m.txManager.WithTx(ctx, func(ctx context.Context) error {
		if current != nil {
			current.IsActive = false
			if err := m.masterKeyRepo.Update(ctx, current); err != nil {
				return err
			}
		}
		return m.masterKeyRepo.Create(ctx, rec)
	})
	if err != nil {
		rec.Close()
		return nil, err
	}
	return rec, nil
}
