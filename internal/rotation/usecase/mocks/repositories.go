// Package mocks provides mock implementations for rotation engine testing.
package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	cryptoDomain "github.com/ameerarsath/publicdocsafe-sub002/internal/crypto/domain"
	documentsUsecase "github.com/ameerarsath/publicdocsafe-sub002/internal/documents/usecase"
	"github.com/ameerarsath/publicdocsafe-sub002/internal/rotation/domain"
)

// MockRotationJobRepository is a mock implementation of RotationJobRepository.
type MockRotationJobRepository struct {
	mock.Mock
}

// Create mocks the Create method.
func (m *MockRotationJobRepository) Create(ctx context.Context, job *domain.RotationJob) error {
	args := m.Called(ctx, job)
	return args.Error(0)
}

// Update mocks the Update method.
func (m *MockRotationJobRepository) Update(ctx context.Context, job *domain.RotationJob) error {
	args := m.Called(ctx, job)
	return args.Error(0)
}

// GetByID mocks the GetByID method.
func (m *MockRotationJobRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.RotationJob, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.RotationJob), args.Error(1)
}

// GetRunningByUser mocks the GetRunningByUser method.
func (m *MockRotationJobRepository) GetRunningByUser(ctx context.Context, userID uuid.UUID) (*domain.RotationJob, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.RotationJob), args.Error(1)
}

// ListByUser mocks the ListByUser method.
func (m *MockRotationJobRepository) ListByUser(ctx context.Context, userID uuid.UUID, limit int) ([]*domain.RotationJob, error) {
	args := m.Called(ctx, userID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.RotationJob), args.Error(1)
}

// MockDocumentKeyService is a mock implementation of the engine's view of the
// document key service.
type MockDocumentKeyService struct {
	mock.Mock
}

// CountWrappedBy mocks the CountWrappedBy method.
func (m *MockDocumentKeyService) CountWrappedBy(ctx context.Context, wrappingKeyID uuid.UUID) (int, error) {
	args := m.Called(ctx, wrappingKeyID)
	return args.Int(0), args.Error(1)
}

// RewrapBatch mocks the RewrapBatch method.
func (m *MockDocumentKeyService) RewrapBatch(
	ctx context.Context,
	oldKey, newKey *cryptoDomain.UserKeyRecord,
	oldKek, newKek []byte,
	afterID uuid.UUID,
	batchSize int,
) (documentsUsecase.RewrapResult, error) {
	args := m.Called(ctx, oldKey, newKey, oldKek, newKek, afterID, batchSize)
	return args.Get(0).(documentsUsecase.RewrapResult), args.Error(1)
}
