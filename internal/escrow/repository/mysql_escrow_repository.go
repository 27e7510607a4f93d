package repository

import (
	"context"
	"database/sql"

	"github.com/google/uuid"

	"github.com/ameerarsath/publicdocsafe-sub002/internal/database"
	apperrors "github.com/ameerarsath/publicdocsafe-sub002/internal/errors"
	"github.com/ameerarsath/publicdocsafe-sub002/internal/escrow/domain"
)

// MySQLEscrowRepository implements escrow record persistence for MySQL.
type MySQLEscrowRepository struct {
	db *sql.DB
}

// NewMySQLEscrowRepository creates a new MySQL escrow repository.
func NewMySQLEscrowRepository(db *sql.DB) *MySQLEscrowRepository {
	return &MySQLEscrowRepository{db: db}
}

// Create inserts a new escrow record.
func (m *MySQLEscrowRepository) Create(ctx context.Context, rec *domain.EscrowRecord) error {
	querier := database.GetTx(ctx, m.db)

	idBytes, err := rec.ID.MarshalBinary()
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal escrow record id")
	}
	keyIDBytes, err := rec.KeyID.MarshalBinary()
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal key id")
	}
	userIDBytes, err := rec.UserID.MarshalBinary()
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal user id")
	}

	query := `INSERT INTO escrow_records (id, key_id, user_id, master_key_id, escrow_data, nonce,
				auth_tag, escrow_method, recovery_threshold, created_at, recovered_at, recovered_by,
				recovery_reason)
			  VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	_, err = querier.ExecContext(
		ctx,
		query,
		idBytes,
		keyIDBytes,
		userIDBytes,
		rec.MasterKeyID,
		rec.EscrowData,
		rec.Nonce,
		rec.AuthTag,
		rec.EscrowMethod,
		rec.RecoveryThreshold,
		rec.CreatedAt,
		rec.RecoveredAt,
		rec.RecoveredBy,
		rec.RecoveryReason,
	)
	return database.WrapStoreError(err, "failed to create escrow record")
}

// GetByID returns an escrow record by id.
func (m *MySQLEscrowRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.EscrowRecord, error) {
	querier := database.GetTx(ctx, m.db)

	idBytes, err := id.MarshalBinary()
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to marshal escrow record id")
	}

	query := selectEscrowRecordMySQL + ` WHERE id = ?`

	rec, err := scanEscrowRecordMySQL(querier.QueryRowContext(ctx, query, idBytes))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, domain.ErrEscrowNotFound
		}
		return nil, database.WrapStoreError(err, "failed to get escrow record")
	}
	return rec, nil
}

// MarkRecovered stamps the recovery fields, conditioned on the record not
// having been recovered yet. Returns false when the record was already
// consumed.
func (m *MySQLEscrowRepository) MarkRecovered(ctx context.Context, rec *domain.EscrowRecord) (bool, error) {
	querier := database.GetTx(ctx, m.db)

	idBytes, err := rec.ID.MarshalBinary()
	if err != nil {
		return false, apperrors.Wrap(err, "failed to marshal escrow record id")
	}

	query := `UPDATE escrow_records
			  SET recovered_at = ?,
				  recovered_by = ?,
				  recovery_reason = ?
			  WHERE id = ? AND recovered_at IS NULL`

	result, err := querier.ExecContext(
		ctx,
		query,
		rec.RecoveredAt,
		rec.RecoveredBy,
		rec.RecoveryReason,
		idBytes,
	)
	if err != nil {
		return false, database.WrapStoreError(err, "failed to mark escrow record recovered")
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return false, database.WrapStoreError(err, "failed to mark escrow record recovered")
	}
	return rows == 1, nil
}

// ListByUser returns a user's escrow records, most recent first.
func (m *MySQLEscrowRepository) ListByUser(ctx context.Context, userID uuid.UUID, limit int) ([]*domain.EscrowRecord, error) {
	querier := database.GetTx(ctx, m.db)

	userIDBytes, err := userID.MarshalBinary()
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to marshal user id")
	}

	query := selectEscrowRecordMySQL + ` WHERE user_id = ? ORDER BY created_at DESC LIMIT ?`

	rows, err := querier.QueryContext(ctx, query, userIDBytes, limit)
	if err != nil {
		return nil, database.WrapStoreError(err, "failed to list escrow records")
	}
	defer rows.Close()

	var records []*domain.EscrowRecord
	for rows.Next() {
		rec, err := scanEscrowRecordMySQL(rows)
		if err != nil {
			return nil, database.WrapStoreError(err, "failed to scan escrow record")
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, database.WrapStoreError(err, "failed to list escrow records")
	}
	return records, nil
}

const selectEscrowRecordMySQL = `SELECT id, key_id, user_id, master_key_id, escrow_data, nonce,
	auth_tag, escrow_method, recovery_threshold, created_at, recovered_at, recovered_by,
	recovery_reason
	FROM escrow_records`

func scanEscrowRecordMySQL(row rowScanner) (*domain.EscrowRecord, error) {
	var rec domain.EscrowRecord
	var idBytes, keyIDBytes, userIDBytes []byte
	err := row.Scan(
		&idBytes,
		&keyIDBytes,
		&userIDBytes,
		&rec.MasterKeyID,
		&rec.EscrowData,
		&rec.Nonce,
		&rec.AuthTag,
		&rec.EscrowMethod,
		&rec.RecoveryThreshold,
		&rec.CreatedAt,
		&rec.RecoveredAt,
		&rec.RecoveredBy,
		&rec.RecoveryReason,
	)
	if err != nil {
		return nil, err
	}
	if err := rec.ID.UnmarshalBinary(idBytes); err != nil {
		return nil, err
	}
	if err := rec.KeyID.UnmarshalBinary(keyIDBytes); err != nil {
		return nil, err
	}
	if err := rec.UserID.UnmarshalBinary(userIDBytes); err != nil {
		return nil, err
	}
	return &rec, nil
}
