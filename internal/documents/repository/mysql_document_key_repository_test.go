package repository

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ameerarsath/publicdocsafe-sub002/internal/documents/domain"
	"github.com/ameerarsath/publicdocsafe-sub002/internal/testutil"
)

func TestMySQLDocumentKeyRepository_CreateAndGet(t *testing.T) {
	testutil.SkipIfNoMySQL(t)

	db := testutil.SetupMySQLDB(t)
	defer testutil.TeardownDB(t, db)
	defer testutil.CleanupMySQLDB(t, db)

	repo := NewMySQLDocumentKeyRepository(db)
	ctx := context.Background()

	keyID := testutil.CreateTestUserKey(t, db, "mysql", uuid.Must(uuid.NewV7()), true)
	env := newTestEnvelope(t, keyID)

	err := repo.Create(ctx, env)
	require.NoError(t, err)

	created, err := repo.GetByID(ctx, env.ID)
	require.NoError(t, err)
	assert.Equal(t, env.ID, created.ID)
	assert.Equal(t, env.DocumentID, created.DocumentID)
	assert.Equal(t, env.VersionID, created.VersionID)
	assert.Equal(t, env.WrappedDek, created.WrappedDek)
	assert.Equal(t, env.Nonce, created.Nonce)
	assert.Equal(t, env.AuthTag, created.AuthTag)
	assert.Equal(t, env.WrappingKeyID, created.WrappingKeyID)

	byVersion, err := repo.GetByDocumentVersion(ctx, env.DocumentID, env.VersionID)
	require.NoError(t, err)
	assert.Equal(t, env.ID, byVersion.ID)

	_, err = repo.GetByID(ctx, uuid.Must(uuid.NewV7()))
	assert.ErrorIs(t, err, domain.ErrEnvelopeNotFound)
}

func TestMySQLDocumentKeyRepository_ListAndMigrate(t *testing.T) {
	testutil.SkipIfNoMySQL(t)

	db := testutil.SetupMySQLDB(t)
	defer testutil.TeardownDB(t, db)
	defer testutil.CleanupMySQLDB(t, db)

	repo := NewMySQLDocumentKeyRepository(db)
	ctx := context.Background()

	userID := uuid.Must(uuid.NewV7())
	oldKeyID := testutil.CreateTestUserKey(t, db, "mysql", userID, true)
	newKeyID := testutil.CreateTestUserKey(t, db, "mysql", userID, false)

	var created []*domain.DocumentKeyEnvelope
	for i := 0; i < 3; i++ {
		env := newTestEnvelope(t, oldKeyID)
		require.NoError(t, repo.Create(ctx, env))
		created = append(created, env)
	}

	count, err := repo.CountByWrappingKey(ctx, oldKeyID)
	require.NoError(t, err)
	assert.Equal(t, 3, count)

	// BINARY(16) ordering matches UUIDv7 time ordering.
	batch, err := repo.ListBatchByWrappingKey(ctx, oldKeyID, uuid.Nil, 2)
	require.NoError(t, err)
	require.Len(t, batch, 2)
	assert.Equal(t, created[0].ID, batch[0].ID)
	assert.Equal(t, created[1].ID, batch[1].ID)

	rest, err := repo.ListBatchByWrappingKey(ctx, oldKeyID, batch[1].ID, 2)
	require.NoError(t, err)
	require.Len(t, rest, 1)
	assert.Equal(t, created[2].ID, rest[0].ID)

	next := newTestEnvelope(t, newKeyID)
	next.ID = created[0].ID
	swapped, err := repo.UpdateWrapping(ctx, next, oldKeyID)
	require.NoError(t, err)
	assert.True(t, swapped)

	swapped, err = repo.UpdateWrapping(ctx, next, oldKeyID)
	require.NoError(t, err)
	assert.False(t, swapped)

	count, err = repo.CountByWrappingKey(ctx, oldKeyID)
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}
