package commands

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	auditDomain "github.com/ameerarsath/publicdocsafe-sub002/internal/audit/domain"
	cryptoDomain "github.com/ameerarsath/publicdocsafe-sub002/internal/crypto/domain"
	escrowDomain "github.com/ameerarsath/publicdocsafe-sub002/internal/escrow/domain"
	rotationDomain "github.com/ameerarsath/publicdocsafe-sub002/internal/rotation/domain"
)

type mockUserKeyStore struct {
	mock.Mock
}

func (m *mockUserKeyStore) CreateKey(ctx context.Context, userID uuid.UUID, secret []byte, params cryptoDomain.KeyParams) (*cryptoDomain.UserKeyRecord, error) {
	args := m.Called(ctx, userID, secret, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*cryptoDomain.UserKeyRecord), args.Error(1)
}

func (m *mockUserKeyStore) CreateDormantKey(ctx context.Context, userID uuid.UUID, secret []byte, params cryptoDomain.KeyParams) (*cryptoDomain.UserKeyRecord, error) {
	args := m.Called(ctx, userID, secret, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*cryptoDomain.UserKeyRecord), args.Error(1)
}

func (m *mockUserKeyStore) GetActive(ctx context.Context, userID uuid.UUID) (*cryptoDomain.UserKeyRecord, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*cryptoDomain.UserKeyRecord), args.Error(1)
}

func (m *mockUserKeyStore) GetByID(ctx context.Context, keyID uuid.UUID) (*cryptoDomain.UserKeyRecord, error) {
	args := m.Called(ctx, keyID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*cryptoDomain.UserKeyRecord), args.Error(1)
}

func (m *mockUserKeyStore) Deactivate(ctx context.Context, keyID uuid.UUID, reason string) error {
	args := m.Called(ctx, keyID, reason)
	return args.Error(0)
}

func (m *mockUserKeyStore) Promote(ctx context.Context, userID, oldKeyID, newKeyID uuid.UUID) error {
	args := m.Called(ctx, userID, oldKeyID, newKeyID)
	return args.Error(0)
}

type mockMasterKeyStore struct {
	mock.Mock
}

func (m *mockMasterKeyStore) Bootstrap(ctx context.Context, purpose cryptoDomain.KeyPurpose) (*cryptoDomain.MasterKeyRecord, error) {
	args := m.Called(ctx, purpose)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*cryptoDomain.MasterKeyRecord), args.Error(1)
}

func (m *mockMasterKeyStore) GetActive(ctx context.Context, purpose cryptoDomain.KeyPurpose) (*cryptoDomain.MasterKeyRecord, error) {
	args := m.Called(ctx, purpose)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*cryptoDomain.MasterKeyRecord), args.Error(1)
}

func (m *mockMasterKeyStore) GetByID(ctx context.Context, keyID string) (*cryptoDomain.MasterKeyRecord, error) {
	args := m.Called(ctx, keyID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*cryptoDomain.MasterKeyRecord), args.Error(1)
}

func (m *mockMasterKeyStore) Rotate(ctx context.Context, purpose cryptoDomain.KeyPurpose) (*cryptoDomain.MasterKeyRecord, error) {
	args := m.Called(ctx, purpose)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*cryptoDomain.MasterKeyRecord), args.Error(1)
}

type mockKeyDeriver struct {
	mock.Mock
}

func (m *mockKeyDeriver) Derive(secret, salt []byte, iterations int, method cryptoDomain.DerivationMethod) ([]byte, error) {
	args := m.Called(secret, salt, iterations, method)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

func (m *mockKeyDeriver) ValidationHash(kek []byte) (string, error) {
	args := m.Called(kek)
	return args.String(0), args.Error(1)
}

func (m *mockKeyDeriver) Verify(kek []byte, validationHash string) bool {
	args := m.Called(kek, validationHash)
	return args.Bool(0)
}

type mockRotationEngine struct {
	mock.Mock
}

func (m *mockRotationEngine) StartRotation(ctx context.Context, userID uuid.UUID, presentedKek, newSecret []byte, params cryptoDomain.KeyParams) (*rotationDomain.RotationJob, error) {
	args := m.Called(ctx, userID, presentedKek, newSecret, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*rotationDomain.RotationJob), args.Error(1)
}

func (m *mockRotationEngine) Resume(ctx context.Context, jobID uuid.UUID, presentedKek, newSecret []byte) (*rotationDomain.RotationJob, error) {
	args := m.Called(ctx, jobID, presentedKek, newSecret)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*rotationDomain.RotationJob), args.Error(1)
}

func (m *mockRotationEngine) GetJob(ctx context.Context, jobID uuid.UUID) (*rotationDomain.RotationJob, error) {
	args := m.Called(ctx, jobID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*rotationDomain.RotationJob), args.Error(1)
}

func (m *mockRotationEngine) ListJobs(ctx context.Context, userID uuid.UUID, limit int) ([]*rotationDomain.RotationJob, error) {
	args := m.Called(ctx, userID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*rotationDomain.RotationJob), args.Error(1)
}

type mockEscrowService struct {
	mock.Mock
}

func (m *mockEscrowService) CreateEscrow(ctx context.Context, keyID uuid.UUID, presentedKek []byte, recoveryThreshold int) (*escrowDomain.EscrowRecord, error) {
	args := m.Called(ctx, keyID, presentedKek, recoveryThreshold)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*escrowDomain.EscrowRecord), args.Error(1)
}

func (m *mockEscrowService) Recover(ctx context.Context, escrowID uuid.UUID, proof escrowDomain.ApprovalProof) ([]byte, error) {
	args := m.Called(ctx, escrowID, proof)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

func (m *mockEscrowService) ListEscrows(ctx context.Context, userID uuid.UUID, limit int) ([]*escrowDomain.EscrowRecord, error) {
	args := m.Called(ctx, userID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*escrowDomain.EscrowRecord), args.Error(1)
}

type mockAuditLog struct {
	mock.Mock
}

func (m *mockAuditLog) Record(ctx context.Context, event auditDomain.Event) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

func (m *mockAuditLog) Verify(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}

func (m *mockAuditLog) ListByUser(ctx context.Context, userID uuid.UUID, limit int) ([]*auditDomain.Entry, error) {
	args := m.Called(ctx, userID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*auditDomain.Entry), args.Error(1)
}

func TestParsePurpose(t *testing.T) {
	t.Run("escrow", func(t *testing.T) {
		purpose, err := parsePurpose("escrow")
		require.NoError(t, err)
		require.Equal(t, cryptoDomain.PurposeEscrow, purpose)
	})

	t.Run("audit-signing", func(t *testing.T) {
		purpose, err := parsePurpose("audit-signing")
		require.NoError(t, err)
		require.Equal(t, cryptoDomain.PurposeAuditSigning, purpose)
	})

	t.Run("invalid", func(t *testing.T) {
		_, err := parsePurpose("signing")
		require.Error(t, err)
		require.Contains(t, err.Error(), "invalid purpose")
	})
}
