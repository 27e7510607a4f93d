// Package repository implements persistence for the append-only audit trail.
// There is no update or delete path: tampering is a direct SQL write, which
// the signature verification walk detects.
package repository

import (
	"context"
	"database/sql"

	"github.com/google/uuid"

	"github.com/ameerarsath/publicdocsafe-sub002/internal/audit/domain"
	"github.com/ameerarsath/publicdocsafe-sub002/internal/database"
)

// PostgreSQLAuditLogRepository implements audit log persistence for PostgreSQL.
type PostgreSQLAuditLogRepository struct {
	db *sql.DB
}

// NewPostgreSQLAuditLogRepository creates a new PostgreSQL audit log repository.
func NewPostgreSQLAuditLogRepository(db *sql.DB) *PostgreSQLAuditLogRepository {
	return &PostgreSQLAuditLogRepository{db: db}
}

// Create appends a signed entry to the trail.
func (p *PostgreSQLAuditLogRepository) Create(ctx context.Context, entry *domain.Entry) error {
	querier := database.GetTx(ctx, p.db)

	query := `INSERT INTO audit_logs (id, user_id, key_id, action, operation_id, success,
				error_code, risk_score, duration_ms, created_at, signature)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`

	var userID uuid.NullUUID
	if entry.UserID != nil {
		userID = uuid.NullUUID{UUID: *entry.UserID, Valid: true}
	}

	_, err := querier.ExecContext(
		ctx,
		query,
		entry.ID,
		userID,
		entry.KeyID,
		entry.Action,
		entry.OperationID,
		entry.Success,
		entry.ErrorCode,
		entry.RiskScore,
		entry.DurationMs,
		entry.CreatedAt,
		entry.Signature,
	)
	return database.WrapStoreError(err, "failed to create audit entry")
}

// ListBatch walks the trail in id order after the given cursor. UUIDv7 ids
// make id order the append order.
func (p *PostgreSQLAuditLogRepository) ListBatch(ctx context.Context, afterID uuid.UUID, limit int) ([]*domain.Entry, error) {
	querier := database.GetTx(ctx, p.db)

	query := selectAuditEntryPG + ` WHERE id > $1 ORDER BY id LIMIT $2`

	rows, err := querier.QueryContext(ctx, query, afterID, limit)
	if err != nil {
		return nil, database.WrapStoreError(err, "failed to list audit entries")
	}
	defer rows.Close()

	var entries []*domain.Entry
	for rows.Next() {
		entry, err := scanAuditEntry(rows)
		if err != nil {
			return nil, database.WrapStoreError(err, "failed to scan audit entry")
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, database.WrapStoreError(err, "failed to list audit entries")
	}
	return entries, nil
}

// ListByUser returns a user's entries, most recent first.
func (p *PostgreSQLAuditLogRepository) ListByUser(ctx context.Context, userID uuid.UUID, limit int) ([]*domain.Entry, error) {
	querier := database.GetTx(ctx, p.db)

	query := selectAuditEntryPG + ` WHERE user_id = $1 ORDER BY id DESC LIMIT $2`

	rows, err := querier.QueryContext(ctx, query, userID, limit)
	if err != nil {
		return nil, database.WrapStoreError(err, "failed to list audit entries")
	}
	defer rows.Close()

	var entries []*domain.Entry
	for rows.Next() {
		entry, err := scanAuditEntry(rows)
		if err != nil {
			return nil, database.WrapStoreError(err, "failed to scan audit entry")
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, database.WrapStoreError(err, "failed to list audit entries")
	}
	return entries, nil
}

const selectAuditEntryPG = `SELECT id, user_id, key_id, action, operation_id, success,
	error_code, risk_score, duration_ms, created_at, signature
	FROM audit_logs`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAuditEntry(row rowScanner) (*domain.Entry, error) {
	var entry domain.Entry
	var userID uuid.NullUUID
	err := row.Scan(
		&entry.ID,
		&userID,
		&entry.KeyID,
		&entry.Action,
		&entry.OperationID,
		&entry.Success,
		&entry.ErrorCode,
		&entry.RiskScore,
		&entry.DurationMs,
		&entry.CreatedAt,
		&entry.Signature,
	)
	if err != nil {
		return nil, err
	}
	if userID.Valid {
		entry.UserID = &userID.UUID
	}
	return &entry, nil
}
