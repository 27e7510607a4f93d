// Package mocks provides testify mocks for the escrow usecase interfaces.
package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/ameerarsath/publicdocsafe-sub002/internal/escrow/domain"
)

// MockEscrowRepository is a mock implementation of EscrowRepository.
type MockEscrowRepository struct {
	mock.Mock
}

func (m *MockEscrowRepository) Create(ctx context.Context, rec *domain.EscrowRecord) error {
	args := m.Called(ctx, rec)
	return args.Error(0)
}

func (m *MockEscrowRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.EscrowRecord, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.EscrowRecord), args.Error(1)
}

func (m *MockEscrowRepository) MarkRecovered(ctx context.Context, rec *domain.EscrowRecord) (bool, error) {
	args := m.Called(ctx, rec)
	return args.Bool(0), args.Error(1)
}

func (m *MockEscrowRepository) ListByUser(ctx context.Context, userID uuid.UUID, limit int) ([]*domain.EscrowRecord, error) {
	args := m.Called(ctx, userID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.EscrowRecord), args.Error(1)
}
