// Package mocks provides mock implementations for document key testing.
package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/ameerarsath/publicdocsafe-sub002/internal/documents/domain"
)

// MockDocumentKeyRepository is a mock implementation of DocumentKeyRepository.
type MockDocumentKeyRepository struct {
	mock.Mock
}

// Create mocks the Create method.
func (m *MockDocumentKeyRepository) Create(ctx context.Context, env *domain.DocumentKeyEnvelope) error {
	args := m.Called(ctx, env)
	return args.Error(0)
}

// GetByID mocks the GetByID method.
func (m *MockDocumentKeyRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.DocumentKeyEnvelope, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.DocumentKeyEnvelope), args.Error(1)
}

// GetByDocumentVersion mocks the GetByDocumentVersion method.
func (m *MockDocumentKeyRepository) GetByDocumentVersion(ctx context.Context, documentID, versionID uuid.UUID) (*domain.DocumentKeyEnvelope, error) {
	args := m.Called(ctx, documentID, versionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.DocumentKeyEnvelope), args.Error(1)
}

// ListBatchByWrappingKey mocks the ListBatchByWrappingKey method.
func (m *MockDocumentKeyRepository) ListBatchByWrappingKey(ctx context.Context, wrappingKeyID, afterID uuid.UUID, limit int) ([]*domain.DocumentKeyEnvelope, error) {
	args := m.Called(ctx, wrappingKeyID, afterID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.DocumentKeyEnvelope), args.Error(1)
}

// UpdateWrapping mocks the UpdateWrapping method.
func (m *MockDocumentKeyRepository) UpdateWrapping(ctx context.Context, env *domain.DocumentKeyEnvelope, fromKeyID uuid.UUID) (bool, error) {
	args := m.Called(ctx, env, fromKeyID)
	return args.Bool(0), args.Error(1)
}

// CountByWrappingKey mocks the CountByWrappingKey method.
func (m *MockDocumentKeyRepository) CountByWrappingKey(ctx context.Context, wrappingKeyID uuid.UUID) (int, error) {
	args := m.Called(ctx, wrappingKeyID)
	return args.Int(0), args.Error(1)
}
