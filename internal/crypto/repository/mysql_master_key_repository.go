package repository

import (
	"context"
	"database/sql"

	cryptoDomain "github.com/ameerarsath/publicdocsafe-sub002/internal/crypto/domain"
	"github.com/ameerarsath/publicdocsafe-sub002/internal/database"
)

// MySQLMasterKeyRepository implements master key record persistence for MySQL.
type MySQLMasterKeyRepository struct {
	db *sql.DB
}

// NewMySQLMasterKeyRepository creates a new MySQL master key repository.
func NewMySQLMasterKeyRepository(db *sql.DB) *MySQLMasterKeyRepository {
	return &MySQLMasterKeyRepository{db: db}
}

// Create inserts a new master key record.
func (m *MySQLMasterKeyRepository) Create(ctx context.Context, rec *cryptoDomain.MasterKeyRecord) error {
	querier := database.GetTx(ctx, m.db)

	query := `INSERT INTO master_keys (key_id, purpose, algorithm, sealed_key, is_active,
				previous_key_id, created_at, next_rotation_at)
			  VALUES (?, ?, ?, ?, ?, ?, ?, ?)`

	_, err := querier.ExecContext(
		ctx,
		query,
		rec.KeyID,
		rec.Purpose,
		rec.Algorithm,
		rec.SealedKey,
		rec.IsActive,
		rec.PreviousKeyID,
		rec.CreatedAt,
		rec.NextRotationAt,
	)
	return database.WrapStoreError(err, "failed to create master key record")
}

// Update modifies the lifecycle fields of an existing master key record.
func (m *MySQLMasterKeyRepository) Update(ctx context.Context, rec *cryptoDomain.MasterKeyRecord) error {
	querier := database.GetTx(ctx, m.db)

	query := `UPDATE master_keys
			  SET is_active = ?,
				  next_rotation_at = ?
			  WHERE key_id = ?`

	result, err := querier.ExecContext(ctx, query, rec.IsActive, rec.NextRotationAt, rec.KeyID)
	if err != nil {
		return database.WrapStoreError(err, "failed to update master key record")
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return database.WrapStoreError(err, "failed to update master key record")
	}
	if rows == 0 {
		return cryptoDomain.ErrMasterKeyNotFound
	}
	return nil
}

// GetActive returns the single active master key record for a purpose.
func (m *MySQLMasterKeyRepository) GetActive(ctx context.Context, purpose cryptoDomain.KeyPurpose) (*cryptoDomain.MasterKeyRecord, error) {
	querier := database.GetTx(ctx, m.db)

	query := selectMasterKeyMySQL + ` WHERE purpose = ? AND is_active = TRUE`

	rec, err := scanMasterKey(querier.QueryRowContext(ctx, query, purpose))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, cryptoDomain.ErrMasterKeyNotFound
		}
		return nil, database.WrapStoreError(err, "failed to get active master key record")
	}
	return rec, nil
}

// GetByID returns a master key record by id, active or historical.
func (m *MySQLMasterKeyRepository) GetByID(ctx context.Context, keyID string) (*cryptoDomain.MasterKeyRecord, error) {
	querier := database.GetTx(ctx, m.db)

	query := selectMasterKeyMySQL + ` WHERE key_id = ?`

	rec, err := scanMasterKey(querier.QueryRowContext(ctx, query, keyID))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, cryptoDomain.ErrMasterKeyNotFound
		}
		return nil, database.WrapStoreError(err, "failed to get master key record")
	}
	return rec, nil
}

const selectMasterKeyMySQL = `SELECT key_id, purpose, algorithm, sealed_key, is_active,
	previous_key_id, created_at, next_rotation_at
	FROM master_keys`
