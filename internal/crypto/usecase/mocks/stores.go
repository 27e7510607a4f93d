package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	cryptoDomain "github.com/ameerarsath/publicdocsafe-sub002/internal/crypto/domain"
)

// MockUserKeyStore is a mock implementation of UserKeyStore.
type MockUserKeyStore struct {
	mock.Mock
}

// CreateKey mocks the CreateKey method.
func (m *MockUserKeyStore) CreateKey(ctx context.Context, userID uuid.UUID, secret []byte, params cryptoDomain.KeyParams) (*cryptoDomain.UserKeyRecord, error) {
	args := m.Called(ctx, userID, secret, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*cryptoDomain.UserKeyRecord), args.Error(1)
}

// CreateDormantKey mocks the CreateDormantKey method.
func (m *MockUserKeyStore) CreateDormantKey(ctx context.Context, userID uuid.UUID, secret []byte, params cryptoDomain.KeyParams) (*cryptoDomain.UserKeyRecord, error) {
	args := m.Called(ctx, userID, secret, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*cryptoDomain.UserKeyRecord), args.Error(1)
}

// GetActive mocks the GetActive method.
func (m *MockUserKeyStore) GetActive(ctx context.Context, userID uuid.UUID) (*cryptoDomain.UserKeyRecord, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*cryptoDomain.UserKeyRecord), args.Error(1)
}

// GetByID mocks the GetByID method.
func (m *MockUserKeyStore) GetByID(ctx context.Context, keyID uuid.UUID) (*cryptoDomain.UserKeyRecord, error) {
	args := m.Called(ctx, keyID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*cryptoDomain.UserKeyRecord), args.Error(1)
}

// Deactivate mocks the Deactivate method.
func (m *MockUserKeyStore) Deactivate(ctx context.Context, keyID uuid.UUID, reason string) error {
	args := m.Called(ctx, keyID, reason)
	return args.Error(0)
}

// Promote mocks the Promote method.
func (m *MockUserKeyStore) Promote(ctx context.Context, userID, oldKeyID, newKeyID uuid.UUID) error {
	args := m.Called(ctx, userID, oldKeyID, newKeyID)
	return args.Error(0)
}

// MockMasterKeyStore is a mock implementation of MasterKeyStore.
type MockMasterKeyStore struct {
	mock.Mock
}

// Bootstrap mocks the Bootstrap method.
func (m *MockMasterKeyStore) Bootstrap(ctx context.Context, purpose cryptoDomain.KeyPurpose) (*cryptoDomain.MasterKeyRecord, error) {
	args := m.Called(ctx, purpose)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*cryptoDomain.MasterKeyRecord), args.Error(1)
}

// GetActive mocks the GetActive method.
func (m *MockMasterKeyStore) GetActive(ctx context.Context, purpose cryptoDomain.KeyPurpose) (*cryptoDomain.MasterKeyRecord, error) {
	args := m.Called(ctx, purpose)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*cryptoDomain.MasterKeyRecord), args.Error(1)
}

// GetByID mocks the GetByID method.
func (m *MockMasterKeyStore) GetByID(ctx context.Context, keyID string) (*cryptoDomain.MasterKeyRecord, error) {
	args := m.Called(ctx, keyID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*cryptoDomain.MasterKeyRecord), args.Error(1)
}

// Rotate mocks the Rotate method.
func (m *MockMasterKeyStore) Rotate(ctx context.Context, purpose cryptoDomain.KeyPurpose) (*cryptoDomain.MasterKeyRecord, error) {
	args := m.Called(ctx, purpose)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*cryptoDomain.MasterKeyRecord), args.Error(1)
}
