// Package usecase implements the append-only, tamper-evident audit log.
//
// Operations report Events; the log assigns id, timestamp and risk score,
// signs the resulting entry with an HKDF-derived key from the audit-signing
// master key, and appends it. Recording is fail-closed: callers treat a
// Record failure as a failure of their own operation.
package usecase

import (
	"context"

	"github.com/google/uuid"

	"github.com/ameerarsath/publicdocsafe-sub002/internal/audit/domain"
)

// AuditLogRepository defines persistence for audit entries. Append-only:
// there is no update or delete method.
type AuditLogRepository interface {
	// Create appends a signed entry.
	Create(ctx context.Context, entry *domain.Entry) error

	// ListBatch walks the trail in append order after the given cursor.
	ListBatch(ctx context.Context, afterID uuid.UUID, limit int) ([]*domain.Entry, error)

	// ListByUser returns a user's entries, most recent first.
	ListByUser(ctx context.Context, userID uuid.UUID, limit int) ([]*domain.Entry, error)
}

// AuditLog records key lifecycle operations and verifies the recorded trail.
type AuditLog interface {
	// Record signs and appends an entry for the event. Any failure must fail
	// the operation that reported the event.
	Record(ctx context.Context, event domain.Event) error

	// Verify walks the whole trail and recomputes every signature. Returns
	// the number of verified entries; ErrSignatureMismatch identifies the
	// first altered entry.
	Verify(ctx context.Context) (int, error)

	// ListByUser returns a user's entries, most recent first.
	ListByUser(ctx context.Context, userID uuid.UUID, limit int) ([]*domain.Entry, error)
}
