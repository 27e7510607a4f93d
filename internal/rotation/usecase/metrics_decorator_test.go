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
	"github.com/ameerarsath/publicdocsafe-sub002/internal/rotation/domain"
	"github.com/ameerarsath/publicdocsafe-sub002/internal/rotation/usecase"
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

// mockRotationEngine is a local mock for RotationEngine.
type mockRotationEngine struct {
	mock.Mock
}

func (m *mockRotationEngine) StartRotation(
	ctx context.Context,
	userID uuid.UUID,
	presentedKek []byte,
	newSecret []byte,
	params cryptoDomain.KeyParams,
) (*domain.RotationJob, error) {
	args := m.Called(ctx, userID, presentedKek, newSecret, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.RotationJob), args.Error(1)
}

func (m *mockRotationEngine) Resume(
	ctx context.Context,
	jobID uuid.UUID,
	presentedKek, newSecret []byte,
) (*domain.RotationJob, error) {
	args := m.Called(ctx, jobID, presentedKek, newSecret)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.RotationJob), args.Error(1)
}

func (m *mockRotationEngine) GetJob(ctx context.Context, jobID uuid.UUID) (*domain.RotationJob, error) {
	args := m.Called(ctx, jobID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.RotationJob), args.Error(1)
}

func (m *mockRotationEngine) ListJobs(
	ctx context.Context,
	userID uuid.UUID,
	limit int,
) ([]*domain.RotationJob, error) {
	args := m.Called(ctx, userID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.RotationJob), args.Error(1)
}

func TestRotationEngineWithMetrics_StartRotation(t *testing.T) {
	ctx := context.Background()
	userID := uuid.Must(uuid.NewV7())
	presentedKek := []byte("presented-kek")
	newSecret := []byte("new-secret")
	params := cryptoDomain.DefaultKeyParams()

	t.Run("StartRotation_Success", func(t *testing.T) {
		mockNext := &mockRotationEngine{}
		mockMetrics := &mockBusinessMetrics{}
		engine := usecase.NewRotationEngineWithMetrics(mockNext, mockMetrics)

		expectedJob := &domain.RotationJob{
			ID:     uuid.Must(uuid.NewV7()),
			UserID: userID,
			Status: domain.StatusCompleted,
		}

		mockNext.On("StartRotation", ctx, userID, presentedKek, newSecret, params).
			Return(expectedJob, nil).
			Once()
		mockMetrics.On("RecordOperation", ctx, "rotation", "rotation_start", "success").Return().Once()
		mockMetrics.On("RecordDuration", ctx, "rotation", "rotation_start", mock.AnythingOfType("time.Duration"), "success").
			Return().
			Once()

		result, err := engine.StartRotation(ctx, userID, presentedKek, newSecret, params)

		assert.NoError(t, err)
		assert.Equal(t, expectedJob, result)
		mockNext.AssertExpectations(t)
		mockMetrics.AssertExpectations(t)
	})

	t.Run("StartRotation_Error", func(t *testing.T) {
		mockNext := &mockRotationEngine{}
		mockMetrics := &mockBusinessMetrics{}
		engine := usecase.NewRotationEngineWithMetrics(mockNext, mockMetrics)

		expectedErr := errors.New("rotation already running")

		mockNext.On("StartRotation", ctx, userID, presentedKek, newSecret, params).
			Return(nil, expectedErr).
			Once()
		mockMetrics.On("RecordOperation", ctx, "rotation", "rotation_start", "error").Return().Once()
		mockMetrics.On("RecordDuration", ctx, "rotation", "rotation_start", mock.AnythingOfType("time.Duration"), "error").
			Return().
			Once()

		result, err := engine.StartRotation(ctx, userID, presentedKek, newSecret, params)

		assert.Error(t, err)
		assert.Nil(t, result)
		assert.Equal(t, expectedErr, err)
		mockNext.AssertExpectations(t)
		mockMetrics.AssertExpectations(t)
	})
}

func TestRotationEngineWithMetrics_Resume(t *testing.T) {
	ctx := context.Background()
	jobID := uuid.Must(uuid.NewV7())
	presentedKek := []byte("presented-kek")
	newSecret := []byte("new-secret")

	t.Run("Resume_Success", func(t *testing.T) {
		mockNext := &mockRotationEngine{}
		mockMetrics := &mockBusinessMetrics{}
		engine := usecase.NewRotationEngineWithMetrics(mockNext, mockMetrics)

		expectedJob := &domain.RotationJob{
			ID:     jobID,
			Status: domain.StatusCompleted,
		}

		mockNext.On("Resume", ctx, jobID, presentedKek, newSecret).Return(expectedJob, nil).Once()
		mockMetrics.On("RecordOperation", ctx, "rotation", "rotation_resume", "success").Return().Once()
		mockMetrics.On("RecordDuration", ctx, "rotation", "rotation_resume", mock.AnythingOfType("time.Duration"), "success").
			Return().
			Once()

		result, err := engine.Resume(ctx, jobID, presentedKek, newSecret)

		assert.NoError(t, err)
		assert.Equal(t, expectedJob, result)
		mockNext.AssertExpectations(t)
		mockMetrics.AssertExpectations(t)
	})

	t.Run("Resume_Error", func(t *testing.T) {
		mockNext := &mockRotationEngine{}
		mockMetrics := &mockBusinessMetrics{}
		engine := usecase.NewRotationEngineWithMetrics(mockNext, mockMetrics)

		expectedErr := errors.New("job not resumable")

		mockNext.On("Resume", ctx, jobID, presentedKek, newSecret).Return(nil, expectedErr).Once()
		mockMetrics.On("RecordOperation", ctx, "rotation", "rotation_resume", "error").Return().Once()
		mockMetrics.On("RecordDuration", ctx, "rotation", "rotation_resume", mock.AnythingOfType("time.Duration"), "error").
			Return().
			Once()

		result, err := engine.Resume(ctx, jobID, presentedKek, newSecret)

		assert.Error(t, err)
		assert.Nil(t, result)
		mockNext.AssertExpectations(t)
		mockMetrics.AssertExpectations(t)
	})
}

func TestRotationEngineWithMetrics_ListJobs(t *testing.T) {
	ctx := context.Background()
	userID := uuid.Must(uuid.NewV7())

	mockNext := &mockRotationEngine{}
	mockMetrics := &mockBusinessMetrics{}
	engine := usecase.NewRotationEngineWithMetrics(mockNext, mockMetrics)

	expectedJobs := []*domain.RotationJob{
		{ID: uuid.Must(uuid.NewV7()), UserID: userID, Status: domain.StatusCompleted},
		{ID: uuid.Must(uuid.NewV7()), UserID: userID, Status: domain.StatusFailed},
	}

	mockNext.On("ListJobs", ctx, userID, 50).Return(expectedJobs, nil).Once()
	mockMetrics.On("RecordOperation", ctx, "rotation", "rotation_job_list", "success").Return().Once()
	mockMetrics.On("RecordDuration", ctx, "rotation", "rotation_job_list", mock.AnythingOfType("time.Duration"), "success").
		Return().
		Once()

	result, err := engine.ListJobs(ctx, userID, 50)

	assert.NoError(t, err)
	assert.Equal(t, expectedJobs, result)
	mockNext.AssertExpectations(t)
	mockMetrics.AssertExpectations(t)
}
