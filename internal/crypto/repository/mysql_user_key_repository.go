package repository

import (
	"context"
	"database/sql"

	"github.com/google/uuid"

	cryptoDomain "github.com/ameerarsath/publicdocsafe-sub002/internal/crypto/domain"
	"github.com/ameerarsath/publicdocsafe-sub002/internal/database"
	apperrors "github.com/ameerarsath/publicdocsafe-sub002/internal/errors"
)

// MySQLUserKeyRepository implements user key record persistence for MySQL.
// Uses BINARY(16) for UUIDs and BLOB for binary data.
type MySQLUserKeyRepository struct {
	db *sql.DB
}

// NewMySQLUserKeyRepository creates a new MySQL user key repository.
func NewMySQLUserKeyRepository(db *sql.DB) *MySQLUserKeyRepository {
	return &MySQLUserKeyRepository{db: db}
}

// Create inserts a new user key record.
func (m *MySQLUserKeyRepository) Create(ctx context.Context, rec *cryptoDomain.UserKeyRecord) error {
	querier := database.GetTx(ctx, m.db)

	query := `INSERT INTO user_keys (key_id, user_id, algorithm, derivation_method, iterations, salt,
				validation_hash, hint, is_active, created_at, expires_at, deactivated_at, deactivated_reason)
			  VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	keyID, err := rec.KeyID.MarshalBinary()
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal key id")
	}
	userID, err := rec.UserID.MarshalBinary()
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal user id")
	}

	_, err = querier.ExecContext(
		ctx,
		query,
		keyID,
		userID,
		rec.Algorithm,
		rec.DerivationMethod,
		rec.Iterations,
		rec.Salt,
		rec.ValidationHash,
		rec.Hint,
		rec.IsActive,
		rec.CreatedAt,
		rec.ExpiresAt,
		rec.DeactivatedAt,
		rec.DeactivatedReason,
	)
	return database.WrapStoreError(err, "failed to create user key record")
}

// Update modifies an existing user key record, identified by key_id.
func (m *MySQLUserKeyRepository) Update(ctx context.Context, rec *cryptoDomain.UserKeyRecord) error {
	querier := database.GetTx(ctx, m.db)

	query := `UPDATE user_keys
			  SET is_active = ?,
				  expires_at = ?,
				  deactivated_at = ?,
				  deactivated_reason = ?
			  WHERE key_id = ?`

	keyID, err := rec.KeyID.MarshalBinary()
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal key id")
	}

	result, err := querier.ExecContext(
		ctx,
		query,
		rec.IsActive,
		rec.ExpiresAt,
		rec.DeactivatedAt,
		rec.DeactivatedReason,
		keyID,
	)
	if err != nil {
		return database.WrapStoreError(err, "failed to update user key record")
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return database.WrapStoreError(err, "failed to update user key record")
	}
	if rows == 0 {
		return cryptoDomain.ErrKeyRecordNotFound
	}
	return nil
}

// GetActive returns the single active key record for a user.
func (m *MySQLUserKeyRepository) GetActive(ctx context.Context, userID uuid.UUID) (*cryptoDomain.UserKeyRecord, error) {
	querier := database.GetTx(ctx, m.db)

	id, err := userID.MarshalBinary()
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to marshal user id")
	}

	query := selectUserKeyMySQL + ` WHERE user_id = ? AND is_active = TRUE`

	rec, err := scanUserKey(querier.QueryRowContext(ctx, query, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, cryptoDomain.ErrNoActiveKey
		}
		return nil, database.WrapStoreError(err, "failed to get active user key record")
	}
	return rec, nil
}

// GetByID returns a key record by id, active or historical.
func (m *MySQLUserKeyRepository) GetByID(ctx context.Context, keyID uuid.UUID) (*cryptoDomain.UserKeyRecord, error) {
	querier := database.GetTx(ctx, m.db)

	id, err := keyID.MarshalBinary()
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to marshal key id")
	}

	query := selectUserKeyMySQL + ` WHERE key_id = ?`

	rec, err := scanUserKey(querier.QueryRowContext(ctx, query, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, cryptoDomain.ErrKeyRecordNotFound
		}
		return nil, database.WrapStoreError(err, "failed to get user key record")
	}
	return rec, nil
}

// CountActive returns the number of active key records for a user.
func (m *MySQLUserKeyRepository) CountActive(ctx context.Context, userID uuid.UUID) (int, error) {
	querier := database.GetTx(ctx, m.db)

	id, err := userID.MarshalBinary()
	if err != nil {
		return 0, apperrors.Wrap(err, "failed to marshal user id")
	}

	query := `SELECT COUNT(*) FROM user_keys WHERE user_id = ? AND is_active = TRUE`

	var count int
	if err := querier.QueryRowContext(ctx, query, id).Scan(&count); err != nil {
		return 0, database.WrapStoreError(err, "failed to count active user key records")
	}
	return count, nil
}

const selectUserKeyMySQL = `SELECT key_id, user_id, algorithm, derivation_method, iterations, salt,
	validation_hash, hint, is_active, created_at, expires_at, deactivated_at, deactivated_reason
	FROM user_keys`
