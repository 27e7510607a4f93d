package repository

import (
	"context"
	"database/sql"

	cryptoDomain "github.com/ameerarsath/publicdocsafe-sub002/internal/crypto/domain"
	"github.com/ameerarsath/publicdocsafe-sub002/internal/database"
)

// PostgreSQLMasterKeyRepository implements master key record persistence for
// PostgreSQL. Only the KMS-sealed key material is ever written; the plaintext
// Key field never reaches the store.
type PostgreSQLMasterKeyRepository struct {
	db *sql.DB
}

// NewPostgreSQLMasterKeyRepository creates a new PostgreSQL master key repository.
func NewPostgreSQLMasterKeyRepository(db *sql.DB) *PostgreSQLMasterKeyRepository {
	return &PostgreSQLMasterKeyRepository{db: db}
}

// Create inserts a new master key record.
func (p *PostgreSQLMasterKeyRepository) Create(ctx context.Context, rec *cryptoDomain.MasterKeyRecord) error {
	querier := database.GetTx(ctx, p.db)

	query := `INSERT INTO master_keys (key_id, purpose, algorithm, sealed_key, is_active,
				previous_key_id, created_at, next_rotation_at)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

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
func (p *PostgreSQLMasterKeyRepository) Update(ctx context.Context, rec *cryptoDomain.MasterKeyRecord) error {
	querier := database.GetTx(ctx, p.db)

	query := `UPDATE master_keys
			  SET is_active = $1,
				  next_rotation_at = $2
			  WHERE key_id = $3`

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
func (p *PostgreSQLMasterKeyRepository) GetActive(ctx context.Context, purpose cryptoDomain.KeyPurpose) (*cryptoDomain.MasterKeyRecord, error) {
	querier := database.GetTx(ctx, p.db)

	query := selectMasterKeyPG + ` WHERE purpose = $1 AND is_active = TRUE`

	rec, err := scanMasterKey(querier.QueryRowContext(ctx, query, purpose))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, cryptoDomain.ErrMasterKeyNotFound
		}
		return nil, database.WrapStoreError(err, "failed to get active master key record")
	}
	return rec, nil
}

// GetByID returns a master key record by id, active or historical. Escrow
// recovery resolves the key that was active when the escrow was created.
func (p *PostgreSQLMasterKeyRepository) GetByID(ctx context.Context, keyID string) (*cryptoDomain.MasterKeyRecord, error) {
	querier := database.GetTx(ctx, p.db)

	query := selectMasterKeyPG + ` WHERE key_id = $1`

	rec, err := scanMasterKey(querier.QueryRowContext(ctx, query, keyID))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, cryptoDomain.ErrMasterKeyNotFound
		}
		return nil, database.WrapStoreError(err, "failed to get master key record")
	}
	return rec, nil
}

const selectMasterKeyPG = `SELECT key_id, purpose, algorithm, sealed_key, is_active,
	previous_key_id, created_at, next_rotation_at
	FROM master_keys`

func scanMasterKey(row rowScanner) (*cryptoDomain.MasterKeyRecord, error) {
	var rec cryptoDomain.MasterKeyRecord
	err := row.Scan(
		&rec.KeyID,
		&rec.Purpose,
		&rec.Algorithm,
		&rec.SealedKey,
		&rec.IsActive,
		&rec.PreviousKeyID,
		&rec.CreatedAt,
		&rec.NextRotationAt,
	)
	if err != nil {
		return nil, err
	}
	return &rec, nil
}
