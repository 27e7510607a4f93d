package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"

	cryptoDomain "github.com/ameerarsath/publicdocsafe-sub002/internal/crypto/domain"
	"github.com/ameerarsath/publicdocsafe-sub002/internal/metrics"
	"github.com/ameerarsath/publicdocsafe-sub002/internal/rotation/domain"
)

// rotationEngineWithMetrics decorates RotationEngine with metrics instrumentation.
type rotationEngineWithMetrics struct {
	next    RotationEngine
	metrics metrics.BusinessMetrics
}

// NewRotationEngineWithMetrics wraps a RotationEngine with metrics recording.
func NewRotationEngineWithMetrics(engine RotationEngine, m metrics.BusinessMetrics) RotationEngine {
	return &rotationEngineWithMetrics{
		next:    engine,
		metrics: m,
	}
}

// StartRotation records metrics for rotation start operations.
func (r *rotationEngineWithMetrics) StartRotation(
	ctx context.Context,
	userID uuid.UUID,
	presentedKek []byte,
	newSecret []byte,
	params cryptoDomain.KeyParams,
) (*domain.RotationJob, error) {
	start := time.Now()
	job, err := r.next.StartRotation(ctx, userID, presentedKek, newSecret, params)

	status := "success"
	if err != nil {
		status = "error"
	}

	r.metrics.RecordOperation(ctx, "rotation", "rotation_start", status)
	r.metrics.RecordDuration(ctx, "rotation", "rotation_start", time.Since(start), status)

	return job, err
}

// Resume records metrics for rotation resume operations.
func (r *rotationEngineWithMetrics) Resume(
	ctx context.Context,
	jobID uuid.UUID,
	presentedKek, newSecret []byte,
) (*domain.RotationJob, error) {
	start := time.Now()
	job, err := r.next.Resume(ctx, jobID, presentedKek, newSecret)

	status := "success"
	if err != nil {
		status = "error"
	}

	r.metrics.RecordOperation(ctx, "rotation", "rotation_resume", status)
	r.metrics.RecordDuration(ctx, "rotation", "rotation_resume", time.Since(start), status)

	return job, err
}

// GetJob records metrics for job lookups.
func (r *rotationEngineWithMetrics) GetJob(ctx context.Context, jobID uuid.UUID) (*domain.RotationJob, error) {
	start := time.Now()
	job, err := r.next.GetJob(ctx, jobID)

	status := "success"
	if err != nil {
		status = "error"
	}

	r.metrics.RecordOperation(ctx, "rotation", "rotation_job_get", status)
	r.metrics.RecordDuration(ctx, "rotation", "rotation_job_get", time.Since(start), status)

	return job, err
}

// ListJobs records metrics for job listings.
func (r *rotationEngineWithMetrics) ListJobs(
	ctx context.Context,
	userID uuid.UUID,
	limit int,
) ([]*domain.RotationJob, error) {
	start := time.Now()
	jobs, err := r.next.ListJobs(ctx, userID, limit)

	status := "success"
	if err != nil {
		status = "error"
	}

	r.metrics.RecordOperation(ctx, "rotation", "rotation_job_list", status)
	r.metrics.RecordDuration(ctx, "rotation", "rotation_job_list", time.Since(start), status)

	return jobs, err
}
