package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"

	cryptoDomain "github.com/ameerarsath/publicdocsafe-sub002/internal/crypto/domain"
	"github.com/ameerarsath/publicdocsafe-sub002/internal/documents/domain"
	"github.com/ameerarsath/publicdocsafe-sub002/internal/metrics"
)

// documentKeyServiceWithMetrics decorates DocumentKeyService with metrics
// instrumentation.
type documentKeyServiceWithMetrics struct {
	next    DocumentKeyService
	metrics metrics.BusinessMetrics
}

// NewDocumentKeyServiceWithMetrics wraps a DocumentKeyService with metrics recording.
func NewDocumentKeyServiceWithMetrics(service DocumentKeyService, m metrics.BusinessMetrics) DocumentKeyService {
	return &documentKeyServiceWithMetrics{
		next:    service,
		metrics: m,
	}
}

// CreateDocumentKey records metrics for envelope creation operations.
func (d *documentKeyServiceWithMetrics) CreateDocumentKey(
	ctx context.Context,
	userID uuid.UUID,
	documentID, versionID uuid.UUID,
	presentedKek []byte,
	seal func(dek []byte) error,
) (*domain.DocumentKeyEnvelope, error) {
	start := time.Now()
	env, err := d.next.CreateDocumentKey(ctx, userID, documentID, versionID, presentedKek, seal)

	status := "success"
	if err != nil {
		status = "error"
	}

	d.metrics.RecordOperation(ctx, "document_key", "document_key_create", status)
	d.metrics.RecordDuration(ctx, "document_key", "document_key_create", time.Since(start), status)

	return env, err
}

// OpenDocumentKey records metrics for envelope open operations.
func (d *documentKeyServiceWithMetrics) OpenDocumentKey(
	ctx context.Context,
	userID uuid.UUID,
	envelopeID uuid.UUID,
	presentedKek []byte,
	use func(dek []byte) error,
) error {
	start := time.Now()
	err := d.next.OpenDocumentKey(ctx, userID, envelopeID, presentedKek, use)

	status := "success"
	if err != nil {
		status = "error"
	}

	d.metrics.RecordOperation(ctx, "document_key", "document_key_open", status)
	d.metrics.RecordDuration(ctx, "document_key", "document_key_open", time.Since(start), status)

	return err
}

// CountWrappedBy records metrics for envelope census operations.
func (d *documentKeyServiceWithMetrics) CountWrappedBy(
	ctx context.Context,
	wrappingKeyID uuid.UUID,
) (int, error) {
	start := time.Now()
	count, err := d.next.CountWrappedBy(ctx, wrappingKeyID)

	status := "success"
	if err != nil {
		status = "error"
	}

	d.metrics.RecordOperation(ctx, "document_key", "document_key_count", status)
	d.metrics.RecordDuration(ctx, "document_key", "document_key_count", time.Since(start), status)

	return count, err
}

// RewrapBatch records metrics for batch re-wrap operations.
func (d *documentKeyServiceWithMetrics) RewrapBatch(
	ctx context.Context,
	oldKey, newKey *cryptoDomain.UserKeyRecord,
	oldKek, newKek []byte,
	afterID uuid.UUID,
	batchSize int,
) (RewrapResult, error) {
	start := time.Now()
	result, err := d.next.RewrapBatch(ctx, oldKey, newKey, oldKek, newKek, afterID, batchSize)

	status := "success"
	if err != nil {
		status = "error"
	}

	d.metrics.RecordOperation(ctx, "document_key", "document_key_rewrap_batch", status)
	d.metrics.RecordDuration(ctx, "document_key", "document_key_rewrap_batch", time.Since(start), status)

	return result, err
}
