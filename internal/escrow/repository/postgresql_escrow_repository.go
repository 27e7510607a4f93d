// Package repository implements persistence for escrow records.
//
// The single-use property is enforced with a conditional update on
// recovered_at IS NULL: of two concurrent recoveries, exactly one claims the
// record.
package repository

import (
	"context"
	"database/sql"

	"github.com/google/uuid"

	"github.com/ameerarsath/publicdocsafe-sub002/internal/database"
	"github.com/ameerarsath/publicdocsafe-sub002/internal/escrow/domain"
)

// PostgreSQLEscrowRepository implements escrow record persistence for PostgreSQL.
type PostgreSQLEscrowRepository struct {
	db *sql.DB
}

// NewPostgreSQLEscrowRepository creates a new PostgreSQL escrow repository.
func NewPostgreSQLEscrowRepository(db *sql.DB) *PostgreSQLEscrowRepository {
	return &PostgreSQLEscrowRepository{db: db}
}

// Create inserts a new escrow record.
func (p *PostgreSQLEscrowRepository) Create(ctx context.Context, rec *domain.EscrowRecord) error {
	querier := database.GetTx(ctx, p.db)

	query := `INSERT INTO escrow_records (id, key_id, user_id, master_key_id, escrow_data, nonce,
				auth_tag, escrow_method, recovery_threshold, created_at, recovered_at, recovered_by,
				recovery_reason)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`

	_, err := querier.ExecContext(
		ctx,
		query,
		rec.ID,
		rec.KeyID,
		rec.UserID,
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
func (p *PostgreSQLEscrowRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.EscrowRecord, error) {
	querier := database.GetTx(ctx, p.db)

	query := selectEscrowRecordPG + ` WHERE id = $1`

	rec, err := scanEscrowRecord(querier.QueryRowContext(ctx, query, id))
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
func (p *PostgreSQLEscrowRepository) MarkRecovered(ctx context.Context, rec *domain.EscrowRecord) (bool, error) {
	querier := database.GetTx(ctx, p.db)

	query := `UPDATE escrow_records
			  SET recovered_at = $1,
				  recovered_by = $2,
				  recovery_reason = $3
			  WHERE id = $4 AND recovered_at IS NULL`

	result, err := querier.ExecContext(
		ctx,
		query,
		rec.RecoveredAt,
		rec.RecoveredBy,
		rec.RecoveryReason,
		rec.ID,
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
func (p *PostgreSQLEscrowRepository) ListByUser(ctx context.Context, userID uuid.UUID, limit int) ([]*domain.EscrowRecord, error) {
	querier := database.GetTx(ctx, p.db)

	query := selectEscrowRecordPG + ` WHERE user_id = $1 ORDER BY created_at DESC LIMIT $2`

	rows, err := querier.QueryContext(ctx, query, userID, limit)
	if err != nil {
		return nil, database.WrapStoreError(err, "failed to list escrow records")
	}
	defer rows.Close()

	var records []*domain.EscrowRecord
	for rows.Next() {
		rec, err := scanEscrowRecord(rows)
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

const selectEscrowRecordPG = `SELECT id, key_id, user_id, master_key_id, escrow_data, nonce,
	auth_tag, escrow_method, recovery_threshold, created_at, recovered_at, recovered_by,
	recovery_reason
	FROM escrow_records`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanEscrowRecord(row rowScanner) (*domain.EscrowRecord, error) {
	var rec domain.EscrowRecord
	err := row.Scan(
		&rec.ID,
		&rec.KeyID,
		&rec.UserID,
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
	return &rec, nil
}
