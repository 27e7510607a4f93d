// Package repository implements persistence for user key records and master
// key records.
//
// Each record type has a PostgreSQL and a MySQL implementation. PostgreSQL
// uses native UUID and BYTEA types; MySQL uses BINARY(16) for UUIDs and BLOB
// for binary data. All repositories are transaction-aware via database.GetTx,
// so the activation swaps performed by the key stores and the rotation engine
// run atomically inside a TxManager transaction.
package repository

import (
	"context"
	"database/sql"

	"github.com/google/uuid"

	cryptoDomain "github.com/ameerarsath/publicdocsafe-sub002/internal/crypto/domain"
	"github.com/ameerarsath/publicdocsafe-sub002/internal/database"
)

// PostgreSQLUserKeyRepository implements user key record persistence for PostgreSQL.
type PostgreSQLUserKeyRepository struct {
	db *sql.DB
}

// NewPostgreSQLUserKeyRepository creates a new PostgreSQL user key repository.
func NewPostgreSQLUserKeyRepository(db *sql.DB) *PostgreSQLUserKeyRepository {
	return &PostgreSQLUserKeyRepository{db: db}
}

// Create inserts a new user key record.
func (p *PostgreSQLUserKeyRepository) Create(ctx context.Context, rec *cryptoDomain.UserKeyRecord) error {
	querier := database.GetTx(ctx, p.db)

	query := `INSERT INTO user_keys (key_id, user_id, algorithm, derivation_method, iterations, salt,
				validation_hash, hint, is_active, created_at, expires_at, deactivated_at, deactivated_reason)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`

	_, err := querier.ExecContext(
		ctx,
		query,
		rec.KeyID,
		rec.UserID,
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
func (p *PostgreSQLUserKeyRepository) Update(ctx context.Context, rec *cryptoDomain.UserKeyRecord) error {
	querier := database.GetTx(ctx, p.db)

	query := `UPDATE user_keys
			  SET is_active = $1,
				  expires_at = $2,
				  deactivated_at = $3,
				  deactivated_reason = $4
			  WHERE key_id = $5`

	result, err := querier.ExecContext(
		ctx,
		query,
		rec.IsActive,
		rec.ExpiresAt,
		rec.DeactivatedAt,
		rec.DeactivatedReason,
		rec.KeyID,
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
func (p *PostgreSQLUserKeyRepository) GetActive(ctx context.Context, userID uuid.UUID) (*cryptoDomain.UserKeyRecord, error) {
	querier := database.GetTx(ctx, p.db)

	query := selectUserKeyPG + ` WHERE user_id = $1 AND is_active = TRUE`

	rec, err := scanUserKey(querier.QueryRowContext(ctx, query, userID))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, cryptoDomain.ErrNoActiveKey
		}
		return nil, database.WrapStoreError(err, "failed to get active user key record")
	}
	return rec, nil
}

// GetByID returns a key record by id, active or historical.
func (p *PostgreSQLUserKeyRepository) GetByID(ctx context.Context, keyID uuid.UUID) (*cryptoDomain.UserKeyRecord, error) {
	querier := database.GetTx(ctx, p.db)

	query := selectUserKeyPG + ` WHERE key_id = $1`

	rec, err := scanUserKey(querier.QueryRowContext(ctx, query, keyID))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, cryptoDomain.ErrKeyRecordNotFound
		}
		return nil, database.WrapStoreError(err, "failed to get user key record")
	}
	return rec, nil
}

// CountActive returns the number of active key records for a user. Used as
// the optimistic duplicate-active check inside the creation transaction.
func (p *PostgreSQLUserKeyRepository) CountActive(ctx context.Context, userID uuid.UUID) (int, error) {
	querier := database.GetTx(ctx, p.db)

	query := `SELECT COUNT(*) FROM user_keys WHERE user_id = $1 AND is_active = TRUE`

	var count int
	if err := querier.QueryRowContext(ctx, query, userID).Scan(&count); err != nil {
		return 0, database.WrapStoreError(err, "failed to count active user key records")
	}
	return count, nil
}

const selectUserKeyPG = `SELECT key_id, user_id, algorithm, derivation_method, iterations, salt,
	validation_hash, hint, is_active, created_at, expires_at, deactivated_at, deactivated_reason
	FROM user_keys`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUserKey(row rowScanner) (*cryptoDomain.UserKeyRecord, error) {
	var rec cryptoDomain.UserKeyRecord
	err := row.Scan(
		&rec.KeyID,
		&rec.UserID,
		&rec.Algorithm,
		&rec.DerivationMethod,
		&rec.Iterations,
		&rec.Salt,
		&rec.ValidationHash,
		&rec.Hint,
		&rec.IsActive,
		&rec.CreatedAt,
		&rec.ExpiresAt,
		&rec.DeactivatedAt,
		&rec.DeactivatedReason,
	)
	if err != nil {
		return nil, err
	}
	return &rec, nil
}
