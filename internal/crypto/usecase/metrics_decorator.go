package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"

	cryptoDomain "github.com/ameerarsath/publicdocsafe-sub002/internal/crypto/domain"
	"github.com/ameerarsath/publicdocsafe-sub002/internal/metrics"
)

// userKeyStoreWithMetrics decorates UserKeyStore with metrics instrumentation.
type userKeyStoreWithMetrics struct {
	next    UserKeyStore
	metrics metrics.BusinessMetrics
}

// NewUserKeyStoreWithMetrics wraps a UserKeyStore with metrics recording.
func NewUserKeyStoreWithMetrics(store UserKeyStore, m metrics.BusinessMetrics) UserKeyStore {
	return &userKeyStoreWithMetrics{
		next:    store,
		metrics: m,
	}
}

// CreateKey records metrics for user key creation operations.
func (u *userKeyStoreWithMetrics) CreateKey(
	ctx context.Context,
	userID uuid.UUID,
	secret []byte,
	params cryptoDomain.KeyParams,
) (*cryptoDomain.UserKeyRecord, error) {
	start := time.Now()
	rec, err := u.next.CreateKey(ctx, userID, secret, params)

	status := "success"
	if err != nil {
		status = "error"
	}

	u.metrics.RecordOperation(ctx, "user_key", "user_key_create", status)
	u.metrics.RecordDuration(ctx, "user_key", "user_key_create", time.Since(start), status)

	return rec, err
}

// CreateDormantKey records metrics for dormant key staging operations.
func (u *userKeyStoreWithMetrics) CreateDormantKey(
	ctx context.Context,
	userID uuid.UUID,
	secret []byte,
	params cryptoDomain.KeyParams,
) (*cryptoDomain.UserKeyRecord, error) {
	start := time.Now()
	rec, err := u.next.CreateDormantKey(ctx, userID, secret, params)

	status := "success"
	if err != nil {
		status = "error"
	}

	u.metrics.RecordOperation(ctx, "user_key", "user_key_create_dormant", status)
	u.metrics.RecordDuration(ctx, "user_key", "user_key_create_dormant", time.Since(start), status)

	return rec, err
}

// GetActive records metrics for active key lookups.
func (u *userKeyStoreWithMetrics) GetActive(
	ctx context.Context,
	userID uuid.UUID,
) (*cryptoDomain.UserKeyRecord, error) {
	start := time.Now()
	rec, err := u.next.GetActive(ctx, userID)

	status := "success"
	if err != nil {
		status = "error"
	}

	u.metrics.RecordOperation(ctx, "user_key", "user_key_get_active", status)
	u.metrics.RecordDuration(ctx, "user_key", "user_key_get_active", time.Since(start), status)

	return rec, err
}

// GetByID records metrics for key lookups by id.
func (u *userKeyStoreWithMetrics) GetByID(
	ctx context.Context,
	keyID uuid.UUID,
) (*cryptoDomain.UserKeyRecord, error) {
	start := time.Now()
	rec, err := u.next.GetByID(ctx, keyID)

	status := "success"
	if err != nil {
		status = "error"
	}

	u.metrics.RecordOperation(ctx, "user_key", "user_key_get", status)
	u.metrics.RecordDuration(ctx, "user_key", "user_key_get", time.Since(start), status)

	return rec, err
}

// Deactivate records metrics for key deactivation operations.
func (u *userKeyStoreWithMetrics) Deactivate(ctx context.Context, keyID uuid.UUID, reason string) error {
	start := time.Now()
	err := u.next.Deactivate(ctx, keyID, reason)

	status := "success"
	if err != nil {
		status = "error"
	}

	u.metrics.RecordOperation(ctx, "user_key", "user_key_deactivate", status)
	u.metrics.RecordDuration(ctx, "user_key", "user_key_deactivate", time.Since(start), status)

	return err
}

// Promote records metrics for key activation swaps.
func (u *userKeyStoreWithMetrics) Promote(ctx context.Context, userID, oldKeyID, newKeyID uuid.UUID) error {
	start := time.Now()
	err := u.next.Promote(ctx, userID, oldKeyID, newKeyID)

	status := "success"
	if err != nil {
		status = "error"
	}

	u.metrics.RecordOperation(ctx, "user_key", "user_key_promote", status)
	u.metrics.RecordDuration(ctx, "user_key", "user_key_promote", time.Since(start), status)

	return err
}

// masterKeyStoreWithMetrics decorates MasterKeyStore with metrics instrumentation.
type masterKeyStoreWithMetrics struct {
	next    MasterKeyStore
	metrics metrics.BusinessMetrics
}

// NewMasterKeyStoreWithMetrics wraps a MasterKeyStore with metrics recording.
func NewMasterKeyStoreWithMetrics(store MasterKeyStore, m metrics.BusinessMetrics) MasterKeyStore {
	return &masterKeyStoreWithMetrics{
		next:    store,
		metrics: m,
	}
}

// Bootstrap records metrics for master key bootstrap operations.
func (s *masterKeyStoreWithMetrics) Bootstrap(
	ctx context.Context,
	purpose cryptoDomain.KeyPurpose,
) (*cryptoDomain.MasterKeyRecord, error) {
	start := time.Now()
	rec, err := s.next.Bootstrap(ctx, purpose)

	status := "success"
	if err != nil {
		status = "error"
	}

	s.metrics.RecordOperation(ctx, "master_key", "master_key_bootstrap", status)
	s.metrics.RecordDuration(ctx, "master_key", "master_key_bootstrap", time.Since(start), status)

	return rec, err
}

// GetActive records metrics for active master key lookups.
func (s *masterKeyStoreWithMetrics) GetActive(
	ctx context.Context,
	purpose cryptoDomain.KeyPurpose,
) (*cryptoDomain.MasterKeyRecord, error) {
	start := time.Now()
	rec, err := s.next.GetActive(ctx, purpose)

	status := "success"
	if err != nil {
		status = "error"
	}

	s.metrics.RecordOperation(ctx, "master_key", "master_key_get_active", status)
	s.metrics.RecordDuration(ctx, "master_key", "master_key_get_active", time.Since(start), status)

	return rec, err
}

// GetByID records metrics for master key lookups by id.
func (s *masterKeyStoreWithMetrics) GetByID(
	ctx context.Context,
	keyID string,
) (*cryptoDomain.MasterKeyRecord, error) {
	start := time.Now()
	rec, err := s.next.GetByID(ctx, keyID)

	status := "success"
	if err != nil {
		status = "error"
	}

	s.metrics.RecordOperation(ctx, "master_key", "master_key_get", status)
	s.metrics.RecordDuration(ctx, "master_key", "master_key_get", time.Since(start), status)

	return rec, err
}

// Rotate records metrics for master key rotation operations.
func (s *masterKeyStoreWithMetrics) Rotate(
	ctx context.Context,
	purpose cryptoDomain.KeyPurpose,
) (*cryptoDomain.MasterKeyRecord, error) {
	start := time.Now()
	rec, err := s.next.Rotate(ctx, purpose)

	status := "success"
	if err != nil {
		status = "error"
	}

	s.metrics.RecordOperation(ctx, "master_key", "master_key_rotate", status)
	s.metrics.RecordDuration(ctx, "master_key", "master_key_rotate", time.Since(start), status)

	return rec, err
}
