package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/ameerarsath/publicdocsafe-sub002/internal/escrow/domain"
	"github.com/ameerarsath/publicdocsafe-sub002/internal/metrics"
)

// escrowServiceWithMetrics decorates EscrowService with metrics instrumentation.
type escrowServiceWithMetrics struct {
	next    EscrowService
	metrics metrics.BusinessMetrics
}

// NewEscrowServiceWithMetrics wraps an EscrowService with metrics recording.
func NewEscrowServiceWithMetrics(service EscrowService, m metrics.BusinessMetrics) EscrowService {
	return &escrowServiceWithMetrics{
		next:    service,
		metrics: m,
	}
}

// CreateEscrow records metrics for escrow creation operations.
func (e *escrowServiceWithMetrics) CreateEscrow(
	ctx context.Context,
	keyID uuid.UUID,
	presentedKek []byte,
	recoveryThreshold int,
) (*domain.EscrowRecord, error) {
	start := time.Now()
	rec, err := e.next.CreateEscrow(ctx, keyID, presentedKek, recoveryThreshold)

	status := "success"
	if err != nil {
		status = "error"
	}

	e.metrics.RecordOperation(ctx, "escrow", "escrow_create", status)
	e.metrics.RecordDuration(ctx, "escrow", "escrow_create", time.Since(start), status)

	return rec, err
}

// Recover records metrics for escrow recovery operations.
func (e *escrowServiceWithMetrics) Recover(
	ctx context.Context,
	escrowID uuid.UUID,
	proof domain.ApprovalProof,
) ([]byte, error) {
	start := time.Now()
	kek, err := e.next.Recover(ctx, escrowID, proof)

	status := "success"
	if err != nil {
		status = "error"
	}

	e.metrics.RecordOperation(ctx, "escrow", "escrow_recover", status)
	e.metrics.RecordDuration(ctx, "escrow", "escrow_recover", time.Since(start), status)

	return kek, err
}

// ListEscrows records metrics for escrow listings.
func (e *escrowServiceWithMetrics) ListEscrows(
	ctx context.Context,
	userID uuid.UUID,
	limit int,
) ([]*domain.EscrowRecord, error) {
	start := time.Now()
	records, err := e.next.ListEscrows(ctx, userID, limit)

	status := "success"
	if err != nil {
		status = "error"
	}

	e.metrics.RecordOperation(ctx, "escrow", "escrow_list", status)
	e.metrics.RecordDuration(ctx, "escrow", "escrow_list", time.Since(start), status)

	return records, err
}
