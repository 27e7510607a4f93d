package repository

import (
	"context"
	"database/sql"

	"github.com/google/uuid"

	"github.com/ameerarsath/publicdocsafe-sub002/internal/audit/domain"
	"github.com/ameerarsath/publicdocsafe-sub002/internal/database"
	apperrors "github.com/ameerarsath/publicdocsafe-sub002/internal/errors"
)

// MySQLAuditLogRepository implements audit log persistence for MySQL.
type MySQLAuditLogRepository struct {
	db *sql.DB
}

// NewMySQLAuditLogRepository creates a new MySQL audit log repository.
func NewMySQLAuditLogRepository(db *sql.DB) *MySQLAuditLogRepository {
	return &MySQLAuditLogRepository{db: db}
}

// Create appends a signed entry to the trail.
func (m *MySQLAuditLogRepository) Create(ctx context.Context, entry *domain.Entry) error {
	querier := database.GetTx(ctx, m.db)

	idBytes, err := entry.ID.MarshalBinary()
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal audit entry id")
	}
	operationIDBytes, err := entry.OperationID.MarshalBinary()
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal operation id")
	}
	var userIDBytes []byte
	if entry.UserID != nil {
		userIDBytes, err = entry.UserID.MarshalBinary()
		if err != nil {
			return apperrors.Wrap(err, "failed to marshal user id")
		}
	}

	query := `INSERT INTO audit_logs (id, user_id, key_id, action, operation_id, success,
				error_code, risk_score, duration_ms, created_at, signature)
			  VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	_, err = querier.ExecContext(
		ctx,
		query,
		idBytes,
		userIDBytes,
		entry.KeyID,
		entry.Action,
		operationIDBytes,
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
// compare bytewise in append order, so BINARY(16) ordering matches.
func (m *MySQLAuditLogRepository) ListBatch(ctx context.Context, afterID uuid.UUID, limit int) ([]*domain.Entry, error) {
	querier := database.GetTx(ctx, m.db)

	afterIDBytes, err := afterID.MarshalBinary()
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to marshal cursor id")
	}

	query := selectAuditEntryMySQL + ` WHERE id > ? ORDER BY id LIMIT ?`

	rows, err := querier.QueryContext(ctx, query, afterIDBytes, limit)
	if err != nil {
		return nil, database.WrapStoreError(err, "failed to list audit entries")
	}
	defer rows.Close()

	return collectAuditEntries(rows)
}

// ListByUser returns a user's entries, most recent first.
func (m *MySQLAuditLogRepository) ListByUser(ctx context.Context, userID uuid.UUID, limit int) ([]*domain.Entry, error) {
	querier := database.GetTx(ctx, m.db)

	userIDBytes, err := userID.MarshalBinary()
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to marshal user id")
	}

	query := selectAuditEntryMySQL + ` WHERE user_id = ? ORDER BY id DESC LIMIT ?`

	rows, err := querier.QueryContext(ctx, query, userIDBytes, limit)
	if err != nil {
		return nil, database.WrapStoreError(err, "failed to list audit entries")
	}
	defer rows.Close()

	return collectAuditEntries(rows)
}

func collectAuditEntries(rows *sql.Rows) ([]*domain.Entry, error) {
	var entries []*domain.Entry
	for rows.Next() {
		entry, err := scanAuditEntryMySQL(rows)
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

const selectAuditEntryMySQL = `SELECT id, user_id, key_id, action, operation_id, success,
	error_code, risk_score, duration_ms, created_at, signature
	FROM audit_logs`

func scanAuditEntryMySQL(row rowScanner) (*domain.Entry, error) {
	var entry domain.Entry
	var idBytes, userIDBytes, operationIDBytes []byte
	err := row.Scan(
		&idBytes,
		&userIDBytes,
		&entry.KeyID,
		&entry.Action,
		&operationIDBytes,
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
	if err := entry.ID.UnmarshalBinary(idBytes); err != nil {
		return nil, err
	}
	if err := entry.OperationID.UnmarshalBinary(operationIDBytes); err != nil {
		return nil, err
	}
	if userIDBytes != nil {
		var userID uuid.UUID
		if err := userID.UnmarshalBinary(userIDBytes); err != nil {
			return nil, err
		}
		entry.UserID = &userID
	}
	return &entry, nil
}
