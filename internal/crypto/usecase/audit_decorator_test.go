package usecase_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	auditDomain "github.com/ameerarsath/publicdocsafe-sub002/internal/audit/domain"
	auditMocks "github.com/ameerarsath/publicdocsafe-sub002/internal/audit/mocks"
	cryptoDomain "github.com/ameerarsath/publicdocsafe-sub002/internal/crypto/domain"
	"github.com/ameerarsath/publicdocsafe-sub002/internal/crypto/usecase"
	"github.com/ameerarsath/publicdocsafe-sub002/internal/crypto/usecase/mocks"
	apperrors "github.com/ameerarsath/publicdocsafe-sub002/internal/errors"
)

func TestUserKeyStoreWithAudit_CreateKey(t *testing.T) {
	ctx := context.Background()
	userID := uuid.Must(uuid.NewV7())
	secret := []byte("user-secret")
	params := cryptoDomain.DefaultKeyParams()

	t.Run("records the created key", func(t *testing.T) {
		mockNext := &mocks.MockUserKeyStore{}
		recorder := auditMocks.NewRecorder()
		store := usecase.NewUserKeyStoreWithAudit(mockNext, recorder)

		rec := &cryptoDomain.UserKeyRecord{
			KeyID:  uuid.Must(uuid.NewV7()),
			UserID: userID,
		}
		mockNext.On("CreateKey", ctx, userID, secret, params).Return(rec, nil).Once()

		result, err := store.CreateKey(ctx, userID, secret, params)

		require.NoError(t, err)
		assert.Equal(t, rec, result)

		event, ok := recorder.Last()
		require.True(t, ok)
		assert.Equal(t, auditDomain.ActionUserKeyCreate, event.Action)
		assert.Equal(t, rec.KeyID.String(), event.KeyID)
		require.NotNil(t, event.UserID)
		assert.Equal(t, userID, *event.UserID)
		assert.True(t, event.Success)
		mockNext.AssertExpectations(t)
	})

	t.Run("records the failure and keeps the original error", func(t *testing.T) {
		mockNext := &mocks.MockUserKeyStore{}
		recorder := auditMocks.NewRecorder()
		store := usecase.NewUserKeyStoreWithAudit(mockNext, recorder)

		mockNext.On("CreateKey", ctx, userID, secret, params).
			Return(nil, cryptoDomain.ErrDuplicateActiveKey).
			Once()

		_, err := store.CreateKey(ctx, userID, secret, params)

		require.Error(t, err)
		assert.ErrorIs(t, err, cryptoDomain.ErrDuplicateActiveKey)

		event, ok := recorder.Last()
		require.True(t, ok)
		assert.Equal(t, auditDomain.ActionUserKeyCreate, event.Action)
		assert.False(t, event.Success)
		assert.Equal(t, "conflict", event.ErrorCode)
	})

	t.Run("a failed audit write fails the creation", func(t *testing.T) {
		mockNext := &mocks.MockUserKeyStore{}
		recorder := auditMocks.NewRecorder()
		recorder.Err = apperrors.New("audit store down")
		store := usecase.NewUserKeyStoreWithAudit(mockNext, recorder)

		rec := &cryptoDomain.UserKeyRecord{
			KeyID:  uuid.Must(uuid.NewV7()),
			UserID: userID,
		}
		mockNext.On("CreateKey", ctx, userID, secret, params).Return(rec, nil).Once()

		result, err := store.CreateKey(ctx, userID, secret, params)

		require.Error(t, err)
		assert.ErrorIs(t, err, recorder.Err)
		assert.Nil(t, result)
	})
}

func TestUserKeyStoreWithAudit_Deactivate(t *testing.T) {
	ctx := context.Background()
	keyID := uuid.Must(uuid.NewV7())

	t.Run("records the deactivation", func(t *testing.T) {
		mockNext := &mocks.MockUserKeyStore{}
		recorder := auditMocks.NewRecorder()
		store := usecase.NewUserKeyStoreWithAudit(mockNext, recorder)

		mockNext.On("Deactivate", ctx, keyID, "compromised").Return(nil).Once()

		err := store.Deactivate(ctx, keyID, "compromised")

		require.NoError(t, err)
		event, ok := recorder.Last()
		require.True(t, ok)
		assert.Equal(t, auditDomain.ActionUserKeyDeactivate, event.Action)
		assert.Equal(t, keyID.String(), event.KeyID)
		assert.True(t, event.Success)
	})

	t.Run("a failed audit write fails the deactivation", func(t *testing.T) {
		mockNext := &mocks.MockUserKeyStore{}
		recorder := auditMocks.NewRecorder()
		recorder.Err = apperrors.New("audit store down")
		store := usecase.NewUserKeyStoreWithAudit(mockNext, recorder)

		mockNext.On("Deactivate", ctx, keyID, "compromised").Return(nil).Once()

		err := store.Deactivate(ctx, keyID, "compromised")

		require.Error(t, err)
		assert.ErrorIs(t, err, recorder.Err)
	})
}

func TestUserKeyStoreWithAudit_PassThrough(t *testing.T) {
	ctx := context.Background()
	userID := uuid.Must(uuid.NewV7())

	mockNext := &mocks.MockUserKeyStore{}
	recorder := auditMocks.NewRecorder()
	store := usecase.NewUserKeyStoreWithAudit(mockNext, recorder)

	rec := &cryptoDomain.UserKeyRecord{KeyID: uuid.Must(uuid.NewV7()), UserID: userID}
	oldKeyID := uuid.Must(uuid.NewV7())

	mockNext.On("GetActive", ctx, userID).Return(rec, nil).Once()
	mockNext.On("GetByID", ctx, rec.KeyID).Return(rec, nil).Once()
	mockNext.On("CreateDormantKey", ctx, userID, []byte("s"), cryptoDomain.DefaultKeyParams()).Return(rec, nil).Once()
	mockNext.On("Promote", ctx, userID, oldKeyID, rec.KeyID).Return(nil).Once()

	_, err := store.GetActive(ctx, userID)
	require.NoError(t, err)
	_, err = store.GetByID(ctx, rec.KeyID)
	require.NoError(t, err)
	_, err = store.CreateDormantKey(ctx, userID, []byte("s"), cryptoDomain.DefaultKeyParams())
	require.NoError(t, err)
	require.NoError(t, store.Promote(ctx, userID, oldKeyID, rec.KeyID))

	// Reads and rotation-interior steps leave no entries of their own.
	assert.Empty(t, recorder.Events())
	mockNext.AssertExpectations(t)
}

func TestMasterKeyStoreWithAudit_Bootstrap(t *testing.T) {
	ctx := context.Background()

	t.Run("records the created key", func(t *testing.T) {
		mockNext := &mocks.MockMasterKeyStore{}
		recorder := auditMocks.NewRecorder()
		store := usecase.NewMasterKeyStoreWithAudit(mockNext, recorder)

		rec := &cryptoDomain.MasterKeyRecord{
			KeyID:   "escrow-2026-08",
			Purpose: cryptoDomain.PurposeEscrow,
		}
		mockNext.On("Bootstrap", ctx, cryptoDomain.PurposeEscrow).Return(rec, nil).Once()

		result, err := store.Bootstrap(ctx, cryptoDomain.PurposeEscrow)

		require.NoError(t, err)
		assert.Equal(t, rec, result)

		event, ok := recorder.Last()
		require.True(t, ok)
		assert.Equal(t, auditDomain.ActionMasterKeyCreate, event.Action)
		assert.Equal(t, "escrow-2026-08", event.KeyID)
		assert.Nil(t, event.UserID)
		assert.True(t, event.Success)
	})

	t.Run("audit-signing bootstrap is not recorded", func(t *testing.T) {
		mockNext := &mocks.MockMasterKeyStore{}
		recorder := auditMocks.NewRecorder()
		store := usecase.NewMasterKeyStoreWithAudit(mockNext, recorder)

		rec := &cryptoDomain.MasterKeyRecord{
			KeyID:   "audit-signing-2026-08",
			Purpose: cryptoDomain.PurposeAuditSigning,
		}
		mockNext.On("Bootstrap", ctx, cryptoDomain.PurposeAuditSigning).Return(rec, nil).Once()

		result, err := store.Bootstrap(ctx, cryptoDomain.PurposeAuditSigning)

		require.NoError(t, err)
		assert.Equal(t, rec, result)
		assert.Empty(t, recorder.Events())
	})

	t.Run("a failed audit write fails the bootstrap and zeroes the key", func(t *testing.T) {
		mockNext := &mocks.MockMasterKeyStore{}
		recorder := auditMocks.NewRecorder()
		recorder.Err = apperrors.New("audit store down")
		store := usecase.NewMasterKeyStoreWithAudit(mockNext, recorder)

		rec := &cryptoDomain.MasterKeyRecord{
			KeyID:   "escrow-2026-08",
			Purpose: cryptoDomain.PurposeEscrow,
			Key:     []byte{1, 2, 3, 4},
		}
		mockNext.On("Bootstrap", ctx, cryptoDomain.PurposeEscrow).Return(rec, nil).Once()

		result, err := store.Bootstrap(ctx, cryptoDomain.PurposeEscrow)

		require.Error(t, err)
		assert.ErrorIs(t, err, recorder.Err)
		assert.Nil(t, result)
		assert.True(t, rec.Sealed())
	})
}

func TestMasterKeyStoreWithAudit_Rotate(t *testing.T) {
	ctx := context.Background()

	t.Run("records the rotation", func(t *testing.T) {
		mockNext := &mocks.MockMasterKeyStore{}
		recorder := auditMocks.NewRecorder()
		store := usecase.NewMasterKeyStoreWithAudit(mockNext, recorder)

		rec := &cryptoDomain.MasterKeyRecord{
			KeyID:         "escrow-2026-11",
			Purpose:       cryptoDomain.PurposeEscrow,
			PreviousKeyID: "escrow-2026-08",
		}
		mockNext.On("Rotate", ctx, cryptoDomain.PurposeEscrow).Return(rec, nil).Once()

		result, err := store.Rotate(ctx, cryptoDomain.PurposeEscrow)

		require.NoError(t, err)
		assert.Equal(t, rec, result)

		event, ok := recorder.Last()
		require.True(t, ok)
		assert.Equal(t, auditDomain.ActionMasterKeyRotate, event.Action)
		assert.Equal(t, "escrow-2026-11", event.KeyID)
		assert.True(t, event.Success)
	})

	t.Run("records the failure", func(t *testing.T) {
		mockNext := &mocks.MockMasterKeyStore{}
		recorder := auditMocks.NewRecorder()
		store := usecase.NewMasterKeyStoreWithAudit(mockNext, recorder)

		mockNext.On("Rotate", ctx, cryptoDomain.PurposeEscrow).
			Return(nil, apperrors.Wrap(apperrors.ErrUnavailable, "store timeout")).
			Once()

		_, err := store.Rotate(ctx, cryptoDomain.PurposeEscrow)

		require.Error(t, err)
		assert.ErrorIs(t, err, apperrors.ErrUnavailable)

		event, ok := recorder.Last()
		require.True(t, ok)
		assert.Equal(t, auditDomain.ActionMasterKeyRotate, event.Action)
		assert.False(t, event.Success)
		assert.Equal(t, "store_unavailable", event.ErrorCode)
	})
}
