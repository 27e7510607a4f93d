// Package mocks provides mock implementations for key lifecycle testing.
package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	cryptoDomain "github.com/ameerarsath/publicdocsafe-sub002/internal/crypto/domain"
)

// MockUserKeyRepository is a mock implementation of UserKeyRepository.
type MockUserKeyRepository struct {
	mock.Mock
}

// Create mocks the Create method.
func (m *MockUserKeyRepository) Create(ctx context.Context, rec *cryptoDomain.UserKeyRecord) error {
	args := m.Called(ctx, rec)
	return args.Error(0)
}

// Update mocks the Update method.
func (m *MockUserKeyRepository) Update(ctx context.Context, rec *cryptoDomain.UserKeyRecord) error {
	args := m.Called(ctx, rec)
	return args.Error(0)
}

// GetActive mocks the GetActive method.
func (m *MockUserKeyRepository) GetActive(ctx context.Context, userID uuid.UUID) (*cryptoDomain.UserKeyRecord, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*cryptoDomain.UserKeyRecord), args.Error(1)
}

// GetByID mocks the GetByID method.
func (m *MockUserKeyRepository) GetByID(ctx context.Context, keyID uuid.UUID) (*cryptoDomain.UserKeyRecord, error) {
	args := m.Called(ctx, keyID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*cryptoDomain.UserKeyRecord), args.Error(1)
}

// CountActive mocks the CountActive method.
func (m *MockUserKeyRepository) CountActive(ctx context.Context, userID uuid.UUID) (int, error) {
	args := m.Called(ctx, userID)
	return args.Int(0), args.Error(1)
}

// MockMasterKeyRepository is a mock implementation of MasterKeyRepository.
type MockMasterKeyRepository struct {
	mock.Mock
}

// Create mocks the Create method.
func (m *MockMasterKeyRepository) Create(ctx context.Context, rec *cryptoDomain.MasterKeyRecord) error {
	args := m.Called(ctx, rec)
	return args.Error(0)
}

// Update mocks the Update method.
func (m *MockMasterKeyRepository) Update(ctx context.Context, rec *cryptoDomain.MasterKeyRecord) error {
	args := m.Called(ctx, rec)
	return args.Error(0)
}

// GetActive mocks the GetActive method.
func (m *MockMasterKeyRepository) GetActive(ctx context.Context, purpose cryptoDomain.KeyPurpose) (*cryptoDomain.MasterKeyRecord, error) {
	args := m.Called(ctx, purpose)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*cryptoDomain.MasterKeyRecord), args.Error(1)
}

// GetByID mocks the GetByID method.
func (m *MockMasterKeyRepository) GetByID(ctx context.Context, keyID string) (*cryptoDomain.MasterKeyRecord, error) {
	args := m.Called(ctx, keyID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*cryptoDomain.MasterKeyRecord), args.Error(1)
}
