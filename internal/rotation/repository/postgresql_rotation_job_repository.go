// Package repository implements persistence for rotation jobs.
//
// A partial unique index (PostgreSQL) and a generated-column unique index
// (MySQL) on the running states back the one-running-job-per-user invariant
// at the schema level, in addition to the engine's lock and pre-check.
package repository

import (
	"context"
	"database/sql"

	"github.com/google/uuid"

	"github.com/ameerarsath/publicdocsafe-sub002/internal/database"
	"github.com/ameerarsath/publicdocsafe-sub002/internal/rotation/domain"
)

// PostgreSQLRotationJobRepository implements rotation job persistence for PostgreSQL.
type PostgreSQLRotationJobRepository struct {
	db *sql.DB
}

// NewPostgreSQLRotationJobRepository creates a new PostgreSQL rotation job repository.
func NewPostgreSQLRotationJobRepository(db *sql.DB) *PostgreSQLRotationJobRepository {
	return &PostgreSQLRotationJobRepository{db: db}
}

// Create inserts a new rotation job.
func (p *PostgreSQLRotationJobRepository) Create(ctx context.Context, job *domain.RotationJob) error {
	querier := database.GetTx(ctx, p.db)

	query := `INSERT INTO rotation_jobs (id, user_id, old_key_id, new_key_id, rotation_type,
				documents_total, documents_migrated, migration_completed, status, error_message,
				started_at, completed_at)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`

	_, err := querier.ExecContext(
		ctx,
		query,
		job.ID,
		job.UserID,
		job.OldKeyID,
		job.NewKeyID,
		job.RotationType,
		job.DocumentsTotal,
		job.DocumentsMigrated,
		job.MigrationCompleted,
		job.Status,
		job.ErrorMessage,
		job.StartedAt,
		job.CompletedAt,
	)
	return database.WrapStoreError(err, "failed to create rotation job")
}

// Update persists the job's progress and state fields.
func (p *PostgreSQLRotationJobRepository) Update(ctx context.Context, job *domain.RotationJob) error {
	querier := database.GetTx(ctx, p.db)

	query := `UPDATE rotation_jobs
			  SET documents_migrated = $1,
				  migration_completed = $2,
				  status = $3,
				  error_message = $4,
				  completed_at = $5
			  WHERE id = $6`

	result, err := querier.ExecContext(
		ctx,
		query,
		job.DocumentsMigrated,
		job.MigrationCompleted,
		job.Status,
		job.ErrorMessage,
		job.CompletedAt,
		job.ID,
	)
	if err != nil {
		return database.WrapStoreError(err, "failed to update rotation job")
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return database.WrapStoreError(err, "failed to update rotation job")
	}
	if rows == 0 {
		return domain.ErrRotationJobNotFound
	}
	return nil
}

// GetByID returns a rotation job by id.
func (p *PostgreSQLRotationJobRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.RotationJob, error) {
	querier := database.GetTx(ctx, p.db)

	query := selectRotationJobPG + ` WHERE id = $1`

	job, err := scanRotationJob(querier.QueryRowContext(ctx, query, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, domain.ErrRotationJobNotFound
		}
		return nil, database.WrapStoreError(err, "failed to get rotation job")
	}
	return job, nil
}

// GetRunningByUser returns the user's pending or in-progress job, or
// ErrRotationJobNotFound when none is running.
func (p *PostgreSQLRotationJobRepository) GetRunningByUser(ctx context.Context, userID uuid.UUID) (*domain.RotationJob, error) {
	querier := database.GetTx(ctx, p.db)

	query := selectRotationJobPG + ` WHERE user_id = $1 AND status IN ('pending', 'in_progress')`

	job, err := scanRotationJob(querier.QueryRowContext(ctx, query, userID))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, domain.ErrRotationJobNotFound
		}
		return nil, database.WrapStoreError(err, "failed to get running rotation job")
	}
	return job, nil
}

// ListByUser returns the user's jobs, most recent first.
func (p *PostgreSQLRotationJobRepository) ListByUser(ctx context.Context, userID uuid.UUID, limit int) ([]*domain.RotationJob, error) {
	querier := database.GetTx(ctx, p.db)

	query := selectRotationJobPG + ` WHERE user_id = $1 ORDER BY started_at DESC LIMIT $2`

	rows, err := querier.QueryContext(ctx, query, userID, limit)
	if err != nil {
		return nil, database.WrapStoreError(err, "failed to list rotation jobs")
	}
	defer rows.Close()

	var jobs []*domain.RotationJob
	for rows.Next() {
		job, err := scanRotationJob(rows)
		if err != nil {
			return nil, database.WrapStoreError(err, "failed to scan rotation job")
		}
		jobs = append(jobs, job)
	}
	if err := rows.Err(); err != nil {
		return nil, database.WrapStoreError(err, "failed to list rotation jobs")
	}
	return jobs, nil
}

const selectRotationJobPG = `SELECT id, user_id, old_key_id, new_key_id, rotation_type,
	documents_total, documents_migrated, migration_completed, status, error_message,
	started_at, completed_at
	FROM rotation_jobs`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRotationJob(row rowScanner) (*domain.RotationJob, error) {
	var job domain.RotationJob
	err := row.Scan(
		&job.ID,
		&job.UserID,
		&job.OldKeyID,
		&job.NewKeyID,
		&job.RotationType,
		&job.DocumentsTotal,
		&job.DocumentsMigrated,
		&job.MigrationCompleted,
		&job.Status,
		&job.ErrorMessage,
		&job.StartedAt,
		&job.CompletedAt,
	)
	if err != nil {
		return nil, err
	}
	return &job, nil
}
