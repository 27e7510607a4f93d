// Package usecase implements supervised KEK recovery through escrow.
//
// An escrow record holds a recovery copy of a user's KEK wrapped under the
// active escrow master key. Recovery is threshold-gated and single-use: the
// record is claimed with a conditional update before any key material is
// unwrapped, so two concurrent recoveries cannot both obtain the KEK.
package usecase

import (
	"context"

	"github.com/google/uuid"

	auditDomain "github.com/ameerarsath/publicdocsafe-sub002/internal/audit/domain"
	"github.com/ameerarsath/publicdocsafe-sub002/internal/escrow/domain"
)

// EscrowRepository defines persistence for escrow records.
type EscrowRepository interface {
	// Create stores a new escrow record.
	Create(ctx context.Context, rec *domain.EscrowRecord) error

	// GetByID returns a record by id, or ErrEscrowNotFound.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.EscrowRecord, error)

	// MarkRecovered stamps the recovery fields if and only if the record has
	// not been recovered yet. Returns false when another caller claimed the
	// record first.
	MarkRecovered(ctx context.Context, rec *domain.EscrowRecord) (bool, error)

	// ListByUser returns a user's records, most recent first.
	ListByUser(ctx context.Context, userID uuid.UUID, limit int) ([]*domain.EscrowRecord, error)
}

// AuditRecorder records finished escrow operations. A recording failure fails
// the operation.
type AuditRecorder interface {
	Record(ctx context.Context, event auditDomain.Event) error
}

// EscrowService wraps recovery copies of user KEKs under master keys and
// performs supervised recovery.
type EscrowService interface {
	// CreateEscrow wraps the presented KEK under the active escrow master key
	// and stores the record. The KEK is verified against the key record's
	// validation hash first, so a wrong secret cannot poison the escrow.
	// recoveryThreshold must be at least 1.
	CreateEscrow(
		ctx context.Context,
		keyID uuid.UUID,
		presentedKek []byte,
		recoveryThreshold int,
	) (*domain.EscrowRecord, error)

	// Recover releases the escrowed KEK. Fails with ErrAlreadyRecovered on a
	// consumed record and ErrThresholdNotMet when the proof carries fewer
	// approvals than the record's threshold. Unwrapping uses the record's own
	// master key id, which may be a historical generation.
	//
	// The caller owns the returned KEK and must zero it after use.
	Recover(ctx context.Context, escrowID uuid.UUID, proof domain.ApprovalProof) ([]byte, error)

	// ListEscrows returns a user's escrow records, most recent first.
	ListEscrows(ctx context.Context, userID uuid.UUID, limit int) ([]*domain.EscrowRecord, error)
}
