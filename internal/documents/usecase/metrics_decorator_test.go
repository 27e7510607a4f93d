package usecase_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	cryptoDomain "github.com/ameerarsath/publicdocsafe-sub002/internal/crypto/domain"
	"github.com/ameerarsath/publicdocsafe-sub002/internal/documents/domain"
	"github.com/ameerarsath/publicdocsafe-sub002/internal/documents/usecase"
)

// mockBusinessMetrics is a local mock for metrics.BusinessMetrics to avoid dependency issues.
type mockBusinessMetrics struct {
	mock.Mock
}

func (m *mockBusinessMetrics) RecordOperation(ctx context.Context, domain, operation, status string) {
	m.Called(ctx, domain, operation, status)
}

func (m *mockBusinessMetrics) RecordDuration(
	ctx context.Context,
	domain, operation string,
	duration time.Duration,
	status string,
) {
	m.Called(ctx, domain, operation, duration, status)
}

// mockDocumentKeyService is a local mock for DocumentKeyService.
type mockDocumentKeyService struct {
	mock.Mock
}

func (m *mockDocumentKeyService) CreateDocumentKey(
	ctx context.Context,
	userID uuid.UUID,
	documentID, versionID uuid.UUID,
	presentedKek []byte,
	seal func(dek []byte) error,
) (*domain.DocumentKeyEnvelope, error) {
	args := m.Called(ctx, userID, documentID, versionID, presentedKek, seal)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.DocumentKeyEnvelope), args.Error(1)
}

func (m *mockDocumentKeyService) OpenDocumentKey(
	ctx context.Context,
	userID uuid.UUID,
	envelopeID uuid.UUID,
	presentedKek []byte,
	use func(dek []byte) error,
) error {
	args := m.Called(ctx, userID, envelopeID, presentedKek, use)
	return args.Error(0)
}

func (m *mockDocumentKeyService) CountWrappedBy(ctx context.Context, wrappingKeyID uuid.UUID) (int, error) {
	args := m.Called(ctx, wrappingKeyID)
	return args.Int(0), args.Error(1)
}

func (m *mockDocumentKeyService) RewrapBatch(
	ctx context.Context,
	oldKey, newKey *cryptoDomain.UserKeyRecord,
	oldKek, newKek []byte,
	afterID uuid.UUID,
	batchSize int,
) (usecase.RewrapResult, error) {
	args := m.Called(ctx, oldKey, newKey, oldKek, newKek, afterID, batchSize)
	return args.Get(0).(usecase.RewrapResult), args.Error(1)
}

func TestDocumentKeyServiceWithMetrics_CreateDocumentKey(t *testing.T) {
	ctx := context.Background()
	userID := uuid.Must(uuid.NewV7())
	documentID := uuid.Must(uuid.NewV7())
	versionID := uuid.Must(uuid.NewV7())
	kek := []byte("presented-kek")
	seal := func(dek []byte) error { return nil }

	t.Run("Create_Success", func(t *testing.T) {
		mockNext := &mockDocumentKeyService{}
		mockMetrics := &mockBusinessMetrics{}
		service := usecase.NewDocumentKeyServiceWithMetrics(mockNext, mockMetrics)

		expectedEnv := &domain.DocumentKeyEnvelope{
			ID:         uuid.Must(uuid.NewV7()),
			DocumentID: documentID,
			VersionID:  versionID,
		}

		mockNext.On("CreateDocumentKey", ctx, userID, documentID, versionID, kek, mock.AnythingOfType("func([]uint8) error")).
			Return(expectedEnv, nil).
			Once()
		mockMetrics.On("RecordOperation", ctx, "document_key", "document_key_create", "success").Return().Once()
		mockMetrics.On("RecordDuration", ctx, "document_key", "document_key_create", mock.AnythingOfType("time.Duration"), "success").
			Return().
			Once()

		result, err := service.CreateDocumentKey(ctx, userID, documentID, versionID, kek, seal)

		assert.NoError(t, err)
		assert.Equal(t, expectedEnv, result)
		mockNext.AssertExpectations(t)
		mockMetrics.AssertExpectations(t)
	})

	t.Run("Create_Error", func(t *testing.T) {
		mockNext := &mockDocumentKeyService{}
		mockMetrics := &mockBusinessMetrics{}
		service := usecase.NewDocumentKeyServiceWithMetrics(mockNext, mockMetrics)

		expectedErr := errors.New("authentication failure")

		mockNext.On("CreateDocumentKey", ctx, userID, documentID, versionID, kek, mock.AnythingOfType("func([]uint8) error")).
			Return(nil, expectedErr).
			Once()
		mockMetrics.On("RecordOperation", ctx, "document_key", "document_key_create", "error").Return().Once()
		mockMetrics.On("RecordDuration", ctx, "document_key", "document_key_create", mock.AnythingOfType("time.Duration"), "error").
			Return().
			Once()

		result, err := service.CreateDocumentKey(ctx, userID, documentID, versionID, kek, seal)

		assert.Error(t, err)
		assert.Nil(t, result)
		assert.Equal(t, expectedErr, err)
		mockNext.AssertExpectations(t)
		mockMetrics.AssertExpectations(t)
	})
}

func TestDocumentKeyServiceWithMetrics_OpenDocumentKey(t *testing.T) {
	ctx := context.Background()
	userID := uuid.Must(uuid.NewV7())
	envelopeID := uuid.Must(uuid.NewV7())
	kek := []byte("presented-kek")
	use := func(dek []byte) error { return nil }

	t.Run("Open_Success", func(t *testing.T) {
		mockNext := &mockDocumentKeyService{}
		mockMetrics := &mockBusinessMetrics{}
		service := usecase.NewDocumentKeyServiceWithMetrics(mockNext, mockMetrics)

		mockNext.On("OpenDocumentKey", ctx, userID, envelopeID, kek, mock.AnythingOfType("func([]uint8) error")).
			Return(nil).
			Once()
		mockMetrics.On("RecordOperation", ctx, "document_key", "document_key_open", "success").Return().Once()
		mockMetrics.On("RecordDuration", ctx, "document_key", "document_key_open", mock.AnythingOfType("time.Duration"), "success").
			Return().
			Once()

		err := service.OpenDocumentKey(ctx, userID, envelopeID, kek, use)

		assert.NoError(t, err)
		mockNext.AssertExpectations(t)
		mockMetrics.AssertExpectations(t)
	})

	t.Run("Open_Error", func(t *testing.T) {
		mockNext := &mockDocumentKeyService{}
		mockMetrics := &mockBusinessMetrics{}
		service := usecase.NewDocumentKeyServiceWithMetrics(mockNext, mockMetrics)

		expectedErr := errors.New("envelope not found")

		mockNext.On("OpenDocumentKey", ctx, userID, envelopeID, kek, mock.AnythingOfType("func([]uint8) error")).
			Return(expectedErr).
			Once()
		mockMetrics.On("RecordOperation", ctx, "document_key", "document_key_open", "error").Return().Once()
		mockMetrics.On("RecordDuration", ctx, "document_key", "document_key_open", mock.AnythingOfType("time.Duration"), "error").
			Return().
			Once()

		err := service.OpenDocumentKey(ctx, userID, envelopeID, kek, use)

		assert.Error(t, err)
		assert.Equal(t, expectedErr, err)
		mockNext.AssertExpectations(t)
		mockMetrics.AssertExpectations(t)
	})
}

func TestDocumentKeyServiceWithMetrics_RewrapBatch(t *testing.T) {
	ctx := context.Background()
	oldKey := &cryptoDomain.UserKeyRecord{KeyID: uuid.Must(uuid.NewV7())}
	newKey := &cryptoDomain.UserKeyRecord{KeyID: uuid.Must(uuid.NewV7())}
	oldKek := []byte("old-kek")
	newKek := []byte("new-kek")
	afterID := uuid.Nil
	batchSize := 100

	mockNext := &mockDocumentKeyService{}
	mockMetrics := &mockBusinessMetrics{}
	service := usecase.NewDocumentKeyServiceWithMetrics(mockNext, mockMetrics)

	expectedResult := usecase.RewrapResult{Processed: 100, Migrated: 97, LastID: uuid.Must(uuid.NewV7())}

	mockNext.On("RewrapBatch", ctx, oldKey, newKey, oldKek, newKek, afterID, batchSize).
		Return(expectedResult, nil).
		Once()
	mockMetrics.On("RecordOperation", ctx, "document_key", "document_key_rewrap_batch", "success").Return().Once()
	mockMetrics.On("RecordDuration", ctx, "document_key", "document_key_rewrap_batch", mock.AnythingOfType("time.Duration"), "success").
		Return().
		Once()

	result, err := service.RewrapBatch(ctx, oldKey, newKey, oldKek, newKek, afterID, batchSize)

	assert.NoError(t, err)
	assert.Equal(t, expectedResult, result)
	mockNext.AssertExpectations(t)
	mockMetrics.AssertExpectations(t)
}

func TestDocumentKeyServiceWithMetrics_CountWrappedBy(t *testing.T) {
	ctx := context.Background()
	wrappingKeyID := uuid.Must(uuid.NewV7())

	mockNext := &mockDocumentKeyService{}
	mockMetrics := &mockBusinessMetrics{}
	service := usecase.NewDocumentKeyServiceWithMetrics(mockNext, mockMetrics)

	mockNext.On("CountWrappedBy", ctx, wrappingKeyID).Return(42, nil).Once()
	mockMetrics.On("RecordOperation", ctx, "document_key", "document_key_count", "success").Return().Once()
	mockMetrics.On("RecordDuration", ctx, "document_key", "document_key_count", mock.AnythingOfType("time.Duration"), "success").
		Return().
		Once()

	count, err := service.CountWrappedBy(ctx, wrappingKeyID)

	assert.NoError(t, err)
	assert.Equal(t, 42, count)
	mockNext.AssertExpectations(t)
	mockMetrics.AssertExpectations(t)
}
