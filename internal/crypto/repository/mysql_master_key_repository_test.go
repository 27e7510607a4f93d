package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	cryptoDomain "github.com/ameerarsath/publicdocsafe-sub002/internal/crypto/domain"
	apperrors "github.com/ameerarsath/publicdocsafe-sub002/internal/errors"
	"github.com/ameerarsath/publicdocsafe-sub002/internal/testutil"
)

func TestMySQLMasterKeyRepository_CreateAndGet(t *testing.T) {
	testutil.SkipIfNoMySQL(t)

	db := testutil.SetupMySQLDB(t)
	defer testutil.TeardownDB(t, db)
	defer testutil.CleanupMySQLDB(t, db)

	repo := NewMySQLMasterKeyRepository(db)
	ctx := context.Background()

	rec := newTestMasterKeyRecord(t, "mk-escrow-001", cryptoDomain.PurposeEscrow, true)
	require.NoError(t, repo.Create(ctx, rec))

	created, err := repo.GetByID(ctx, rec.KeyID)
	assert.NoError(t, err)
	assert.Equal(t, rec.KeyID, created.KeyID)
	assert.Equal(t, rec.Purpose, created.Purpose)
	assert.Equal(t, rec.SealedKey, created.SealedKey)
	assert.True(t, created.IsActive)

	got, err := repo.GetActive(ctx, cryptoDomain.PurposeEscrow)
	assert.NoError(t, err)
	assert.Equal(t, rec.KeyID, got.KeyID)
}

func TestMySQLMasterKeyRepository_GetActive_NotFound(t *testing.T) {
	testutil.SkipIfNoMySQL(t)

	db := testutil.SetupMySQLDB(t)
	defer testutil.TeardownDB(t, db)
	defer testutil.CleanupMySQLDB(t, db)

	repo := NewMySQLMasterKeyRepository(db)
	ctx := context.Background()

	got, err := repo.GetActive(ctx, cryptoDomain.PurposeAuditSigning)
	assert.Error(t, err)
	assert.Nil(t, got)
	assert.True(t, apperrors.Is(err, cryptoDomain.ErrMasterKeyNotFound))
}

func TestMySQLMasterKeyRepository_Update(t *testing.T) {
	testutil.SkipIfNoMySQL(t)

	db := testutil.SetupMySQLDB(t)
	defer testutil.TeardownDB(t, db)
	defer testutil.CleanupMySQLDB(t, db)

	repo := NewMySQLMasterKeyRepository(db)
	ctx := context.Background()

	rec := newTestMasterKeyRecord(t, "mk-escrow-001", cryptoDomain.PurposeEscrow, true)
	require.NoError(t, repo.Create(ctx, rec))

	rec.IsActive = false
	require.NoError(t, repo.Update(ctx, rec))

	got, err := repo.GetByID(ctx, rec.KeyID)
	assert.NoError(t, err)
	assert.False(t, got.IsActive)

	missing := newTestMasterKeyRecord(t, "mk-missing", cryptoDomain.PurposeEscrow, false)
	err = repo.Update(ctx, missing)
	assert.True(t, apperrors.Is(err, cryptoDomain.ErrMasterKeyNotFound))
}
