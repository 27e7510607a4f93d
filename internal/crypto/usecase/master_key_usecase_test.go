package usecase_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	cryptoDomain "github.com/ameerarsath/publicdocsafe-sub002/internal/crypto/domain"
	cryptoService "github.com/ameerarsath/publicdocsafe-sub002/internal/crypto/service"
	"github.com/ameerarsath/publicdocsafe-sub002/internal/crypto/usecase"
	cryptoUsecaseMocks "github.com/ameerarsath/publicdocsafe-sub002/internal/crypto/usecase/mocks"
	dbMocks "github.com/ameerarsath/publicdocsafe-sub002/internal/database/mocks"
	apperrors "github.com/ameerarsath/publicdocsafe-sub002/internal/errors"
	"github.com/ameerarsath/publicdocsafe-sub002/internal/locker"
)

// Local keeper so tests run without cloud credentials.
const testKMSKeyURI = "base64key://smGbjm71Nxd1Ig5FS0wj9SlbzAIrnolCz9bQQ6uAhl4="

const testRotationInterval = 90 * 24 * time.Hour

func newMasterKeyStore(repo *cryptoUsecaseMocks.MockMasterKeyRepository) usecase.MasterKeyStore {
	return usecase.NewMasterKeyStore(
		dbMocks.NewMockTxManager(),
		repo,
		cryptoService.NewKMSService(),
		testKMSKeyURI,
		testRotationInterval,
		locker.NewKeyedMutex(),
	)
}

// sealTestKey encrypts key material the way the store would, so mocked
// repository rows hold realistic sealed blobs.
func sealTestKey(t *testing.T, key []byte) []byte {
	t.Helper()

	keeper, err := cryptoService.NewKMSService().OpenKeeper(context.Background(), testKMSKeyURI)
	require.NoError(t, err)
	defer func() {
		_ = keeper.Close()
	}()

	sealed, err := keeper.Encrypt(context.Background(), key)
	require.NoError(t, err)
	return sealed
}

func TestMasterKeyStore_Bootstrap(t *testing.T) {
	t.Run("Creates first key sealed", func(t *testing.T) {
		repo := &cryptoUsecaseMocks.MockMasterKeyRepository{}
		store := newMasterKeyStore(repo)
		ctx := context.Background()

		repo.On("GetActive", mock.Anything, cryptoDomain.PurposeEscrow).
			Return(nil, cryptoDomain.ErrMasterKeyNotFound)
		repo.On("Create", mock.Anything, mock.MatchedBy(func(rec *cryptoDomain.MasterKeyRecord) bool {
			return rec.Purpose == cryptoDomain.PurposeEscrow &&
				rec.IsActive &&
				rec.PreviousKeyID == "" &&
				len(rec.SealedKey) > 0
		})).Return(nil)

		rec, err := store.Bootstrap(ctx, cryptoDomain.PurposeEscrow)
		require.NoError(t, err)
		defer rec.Close()

		assert.Len(t, rec.Key, cryptoDomain.KeySize)
		assert.NotEqual(t, rec.Key, rec.SealedKey)
		assert.False(t, rec.NextRotationAt.IsZero())
		repo.AssertExpectations(t)
	})

	t.Run("Returns existing key unsealed", func(t *testing.T) {
		repo := &cryptoUsecaseMocks.MockMasterKeyRepository{}
		store := newMasterKeyStore(repo)
		ctx := context.Background()

		key := make([]byte, cryptoDomain.KeySize)
		for i := range key {
			key[i] = byte(i)
		}
		existing := &cryptoDomain.MasterKeyRecord{
			KeyID:     "escrow-existing",
			Purpose:   cryptoDomain.PurposeEscrow,
			Algorithm: cryptoDomain.AESGCM,
			SealedKey: sealTestKey(t, key),
			IsActive:  true,
		}
		repo.On("GetActive", mock.Anything, cryptoDomain.PurposeEscrow).Return(existing, nil)

		rec, err := store.Bootstrap(ctx, cryptoDomain.PurposeEscrow)
		require.NoError(t, err)
		defer rec.Close()

		assert.Equal(t, "escrow-existing", rec.KeyID)
		assert.Equal(t, key, rec.Key)
		repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})
}

func TestMasterKeyStore_GetActive(t *testing.T) {
	repo := &cryptoUsecaseMocks.MockMasterKeyRepository{}
	store := newMasterKeyStore(repo)
	ctx := context.Background()

	key := []byte("0123456789abcdef0123456789abcdef")
	active := &cryptoDomain.MasterKeyRecord{
		KeyID:     "escrow-1",
		Purpose:   cryptoDomain.PurposeEscrow,
		SealedKey: sealTestKey(t, key),
		IsActive:  true,
	}
	repo.On("GetActive", mock.Anything, cryptoDomain.PurposeEscrow).Return(active, nil)

	rec, err := store.GetActive(ctx, cryptoDomain.PurposeEscrow)
	require.NoError(t, err)
	defer rec.Close()

	assert.Equal(t, key, rec.Key)
	assert.False(t, rec.Sealed())
}

func TestMasterKeyStore_GetActive_NotFound(t *testing.T) {
	repo := &cryptoUsecaseMocks.MockMasterKeyRepository{}
	store := newMasterKeyStore(repo)
	ctx := context.Background()

	repo.On("GetActive", mock.Anything, cryptoDomain.PurposeAuditSigning).
		Return(nil, cryptoDomain.ErrMasterKeyNotFound)

	rec, err := store.GetActive(ctx, cryptoDomain.PurposeAuditSigning)
	assert.Nil(t, rec)
	assert.True(t, apperrors.Is(err, cryptoDomain.ErrMasterKeyNotFound))
}

func TestMasterKeyStore_GetByID_Historical(t *testing.T) {
	repo := &cryptoUsecaseMocks.MockMasterKeyRepository{}
	store := newMasterKeyStore(repo)
	ctx := context.Background()

	key := []byte("fedcba9876543210fedcba9876543210")
	historical := &cryptoDomain.MasterKeyRecord{
		KeyID:     "escrow-old",
		Purpose:   cryptoDomain.PurposeEscrow,
		SealedKey: sealTestKey(t, key),
		IsActive:  false,
	}
	repo.On("GetByID", mock.Anything, "escrow-old").Return(historical, nil)

	// Inactive keys still unseal: escrow recovery depends on it.
	rec, err := store.GetByID(ctx, "escrow-old")
	require.NoError(t, err)
	defer rec.Close()

	assert.Equal(t, key, rec.Key)
	assert.False(t, rec.IsActive)
}

func TestMasterKeyStore_Rotate(t *testing.T) {
	t.Run("Chains and deactivates prior key", func(t *testing.T) {
		repo := &cryptoUsecaseMocks.MockMasterKeyRepository{}
		store := newMasterKeyStore(repo)
		ctx := context.Background()

		current := &cryptoDomain.MasterKeyRecord{
			KeyID:     "escrow-gen1",
			Purpose:   cryptoDomain.PurposeEscrow,
			SealedKey: sealTestKey(t, make([]byte, cryptoDomain.KeySize)),
			IsActive:  true,
		}

		repo.On("GetActive", mock.Anything, cryptoDomain.PurposeEscrow).Return(current, nil)
		repo.On("Update", mock.Anything, mock.MatchedBy(func(rec *cryptoDomain.MasterKeyRecord) bool {
			return rec.KeyID == "escrow-gen1" && !rec.IsActive
		})).Return(nil)
		repo.On("Create", mock.Anything, mock.MatchedBy(func(rec *cryptoDomain.MasterKeyRecord) bool {
			return rec.PreviousKeyID == "escrow-gen1" && rec.IsActive && len(rec.SealedKey) > 0
		})).Return(nil)

		before := time.Now().UTC()
		rec, err := store.Rotate(ctx, cryptoDomain.PurposeEscrow)
		require.NoError(t, err)
		defer rec.Close()

		assert.NotEqual(t, "escrow-gen1", rec.KeyID)
		assert.True(t, rec.NextRotationAt.After(before.Add(testRotationInterval-time.Minute)))
		repo.AssertExpectations(t)
	})

	t.Run("First rotation on empty purpose bootstraps", func(t *testing.T) {
		repo := &cryptoUsecaseMocks.MockMasterKeyRepository{}
		store := newMasterKeyStore(repo)
		ctx := context.Background()

		repo.On("GetActive", mock.Anything, cryptoDomain.PurposeEscrow).
			Return(nil, cryptoDomain.ErrMasterKeyNotFound)
		repo.On("Create", mock.Anything, mock.MatchedBy(func(rec *cryptoDomain.MasterKeyRecord) bool {
			return rec.PreviousKeyID == "" && rec.IsActive
		})).Return(nil)

		rec, err := store.Rotate(ctx, cryptoDomain.PurposeEscrow)
		require.NoError(t, err)
		defer rec.Close()

		repo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
	})
}
