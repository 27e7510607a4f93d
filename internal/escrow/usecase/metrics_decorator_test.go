package usecase_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/ameerarsath/publicdocsafe-sub002/internal/escrow/domain"
	"github.com/ameerarsath/publicdocsafe-sub002/internal/escrow/usecase"
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

// mockEscrowService is a local mock for EscrowService.
type mockEscrowService struct {
	mock.Mock
}

func (m *mockEscrowService) CreateEscrow(
	ctx context.Context,
	keyID uuid.UUID,
	presentedKek []byte,
	recoveryThreshold int,
) (*domain.EscrowRecord, error) {
	args := m.Called(ctx, keyID, presentedKek, recoveryThreshold)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.EscrowRecord), args.Error(1)
}

func (m *mockEscrowService) Recover(
	ctx context.Context,
	escrowID uuid.UUID,
	proof domain.ApprovalProof,
) ([]byte, error) {
	args := m.Called(ctx, escrowID, proof)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

func (m *mockEscrowService) ListEscrows(
	ctx context.Context,
	userID uuid.UUID,
	limit int,
) ([]*domain.EscrowRecord, error) {
	args := m.Called(ctx, userID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.EscrowRecord), args.Error(1)
}

func TestEscrowServiceWithMetrics_CreateEscrow(t *testing.T) {
	ctx := context.Background()
	keyID := uuid.Must(uuid.NewV7())
	kek := []byte("presented-kek")

	t.Run("Create_Success", func(t *testing.T) {
		mockNext := &mockEscrowService{}
		mockMetrics := &mockBusinessMetrics{}
		service := usecase.NewEscrowServiceWithMetrics(mockNext, mockMetrics)

		expectedRec := &domain.EscrowRecord{
			ID:    uuid.Must(uuid.NewV7()),
			KeyID: keyID,
		}

		mockNext.On("CreateEscrow", ctx, keyID, kek, 2).Return(expectedRec, nil).Once()
		mockMetrics.On("RecordOperation", ctx, "escrow", "escrow_create", "success").Return().Once()
		mockMetrics.On("RecordDuration", ctx, "escrow", "escrow_create", mock.AnythingOfType("time.Duration"), "success").
			Return().
			Once()

		result, err := service.CreateEscrow(ctx, keyID, kek, 2)

		assert.NoError(t, err)
		assert.Equal(t, expectedRec, result)
		mockNext.AssertExpectations(t)
		mockMetrics.AssertExpectations(t)
	})

	t.Run("Create_Error", func(t *testing.T) {
		mockNext := &mockEscrowService{}
		mockMetrics := &mockBusinessMetrics{}
		service := usecase.NewEscrowServiceWithMetrics(mockNext, mockMetrics)

		expectedErr := errors.New("authentication failure")

		mockNext.On("CreateEscrow", ctx, keyID, kek, 2).Return(nil, expectedErr).Once()
		mockMetrics.On("RecordOperation", ctx, "escrow", "escrow_create", "error").Return().Once()
		mockMetrics.On("RecordDuration", ctx, "escrow", "escrow_create", mock.AnythingOfType("time.Duration"), "error").
			Return().
			Once()

		result, err := service.CreateEscrow(ctx, keyID, kek, 2)

		assert.Error(t, err)
		assert.Nil(t, result)
		assert.Equal(t, expectedErr, err)
		mockNext.AssertExpectations(t)
		mockMetrics.AssertExpectations(t)
	})
}

func TestEscrowServiceWithMetrics_Recover(t *testing.T) {
	ctx := context.Background()
	escrowID := uuid.Must(uuid.NewV7())
	proof := domain.ApprovalProof{
		RecoveredBy: "security-officer",
		Reason:      "user lost secret",
		Approvals:   []string{"approver-1", "approver-2"},
	}

	t.Run("Recover_Success", func(t *testing.T) {
		mockNext := &mockEscrowService{}
		mockMetrics := &mockBusinessMetrics{}
		service := usecase.NewEscrowServiceWithMetrics(mockNext, mockMetrics)

		expectedKek := []byte("recovered-kek")

		mockNext.On("Recover", ctx, escrowID, proof).Return(expectedKek, nil).Once()
		mockMetrics.On("RecordOperation", ctx, "escrow", "escrow_recover", "success").Return().Once()
		mockMetrics.On("RecordDuration", ctx, "escrow", "escrow_recover", mock.AnythingOfType("time.Duration"), "success").
			Return().
			Once()

		result, err := service.Recover(ctx, escrowID, proof)

		assert.NoError(t, err)
		assert.Equal(t, expectedKek, result)
		mockNext.AssertExpectations(t)
		mockMetrics.AssertExpectations(t)
	})

	t.Run("Recover_Error", func(t *testing.T) {
		mockNext := &mockEscrowService{}
		mockMetrics := &mockBusinessMetrics{}
		service := usecase.NewEscrowServiceWithMetrics(mockNext, mockMetrics)

		expectedErr := errors.New("already recovered")

		mockNext.On("Recover", ctx, escrowID, proof).Return(nil, expectedErr).Once()
		mockMetrics.On("RecordOperation", ctx, "escrow", "escrow_recover", "error").Return().Once()
		mockMetrics.On("RecordDuration", ctx, "escrow", "escrow_recover", mock.AnythingOfType("time.Duration"), "error").
			Return().
			Once()

		result, err := service.Recover(ctx, escrowID, proof)

		assert.Error(t, err)
		assert.Nil(t, result)
		mockNext.AssertExpectations(t)
		mockMetrics.AssertExpectations(t)
	})
}

func TestEscrowServiceWithMetrics_ListEscrows(t *testing.T) {
	ctx := context.Background()
	userID := uuid.Must(uuid.NewV7())

	mockNext := &mockEscrowService{}
	mockMetrics := &mockBusinessMetrics{}
	service := usecase.NewEscrowServiceWithMetrics(mockNext, mockMetrics)

	expectedRecords := []*domain.EscrowRecord{
		{ID: uuid.Must(uuid.NewV7()), UserID: userID},
		{ID: uuid.Must(uuid.NewV7()), UserID: userID},
	}

	mockNext.On("ListEscrows", ctx, userID, 50).Return(expectedRecords, nil).Once()
	mockMetrics.On("RecordOperation", ctx, "escrow", "escrow_list", "success").Return().Once()
	mockMetrics.On("RecordDuration", ctx, "escrow", "escrow_list", mock.AnythingOfType("time.Duration"), "success").
		Return().
		Once()

	result, err := service.ListEscrows(ctx, userID, 50)

	assert.NoError(t, err)
	assert.Equal(t, expectedRecords, result)
	mockNext.AssertExpectations(t)
	mockMetrics.AssertExpectations(t)
}
