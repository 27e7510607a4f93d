package repository

import (
	"context"
	"database/sql"

	"github.com/google/uuid"

	"github.com/ameerarsath/publicdocsafe-sub002/internal/database"
	apperrors "github.com/ameerarsath/publicdocsafe-sub002/internal/errors"
	"github.com/ameerarsath/publicdocsafe-sub002/internal/rotation/domain"
)

// MySQLRotationJobRepository implements rotation job persistence for MySQL.
type MySQLRotationJobRepository struct {
	db *sql.DB
}

// NewMySQLRotationJobRepository creates a new MySQL rotation job repository.
func NewMySQLRotationJobRepository(db *sql.DB) *MySQLRotationJobRepository {
	return &MySQLRotationJobRepository{db: db}
}

// Create inserts a new rotation job.
func (m *MySQLRotationJobRepository) Create(ctx context.Context, job *domain.RotationJob) error {
	querier := database.GetTx(ctx, m.db)

	query := `INSERT INTO rotation_jobs (id, user_id, old_key_id, new_key_id, rotation_type,
				documents_total, documents_migrated, migration_completed, status, error_message,
				started_at, completed_at)
			  VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	id, err := job.ID.MarshalBinary()
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal job id")
	}
	userID, err := job.UserID.MarshalBinary()
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal user id")
	}
	oldKeyID, err := job.OldKeyID.MarshalBinary()
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal old key id")
	}
	newKeyID, err := job.NewKeyID.MarshalBinary()
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal new key id")
	}

	_, err = querier.ExecContext(
		ctx,
		query,
		id,
		userID,
		oldKeyID,
		newKeyID,
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
func (m *MySQLRotationJobRepository) Update(ctx context.Context, job *domain.RotationJob) error {
	querier := database.GetTx(ctx, m.db)

	query := `UPDATE rotation_jobs
			  SET documents_migrated = ?,
				  migration_completed = ?,
				  status = ?,
				  error_message = ?,
				  completed_at = ?
			  WHERE id = ?`

	id, err := job.ID.MarshalBinary()
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal job id")
	}

	result, err := querier.ExecContext(
		ctx,
		query,
		job.DocumentsMigrated,
		job.MigrationCompleted,
		job.Status,
		job.ErrorMessage,
		job.CompletedAt,
		id,
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
func (m *MySQLRotationJobRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.RotationJob, error) {
	querier := database.GetTx(ctx, m.db)

	rawID, err := id.MarshalBinary()
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to marshal job id")
	}

	query := selectRotationJobMySQL + ` WHERE id = ?`

	job, err := scanRotationJob(querier.QueryRowContext(ctx, query, rawID))
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
func (m *MySQLRotationJobRepository) GetRunningByUser(ctx context.Context, userID uuid.UUID) (*domain.RotationJob, error) {
	querier := database.GetTx(ctx, m.db)

	rawUserID, err := userID.MarshalBinary()
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to marshal user id")
	}

	query := selectRotationJobMySQL + ` WHERE user_id = ? AND status IN ('pending', 'in_progress')`

	job, err := scanRotationJob(querier.QueryRowContext(ctx, query, rawUserID))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, domain.ErrRotationJobNotFound
		}
		return nil, database.WrapStoreError(err, "failed to get running rotation job")
	}
	return job, nil
}

// ListByUser returns the user's jobs, most recent first.
func (m *MySQLRotationJobRepository) ListByUser(ctx context.Context, userID uuid.UUID, limit int) ([]*domain.RotationJob, error) {
	querier := database.GetTx(ctx, m.db)

	rawUserID, err := userID.MarshalBinary()
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to marshal user id")
	}

	query := selectRotationJobMySQL + ` WHERE user_id = ? ORDER BY started_at DESC LIMIT ?`

	rows, err := querier.QueryContext(ctx, query, rawUserID, limit)
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

const selectRotationJobMySQL = `SELECT id, user_id, old_key_id, new_key_id, rotation_type,
	documents_total, documents_migrated, migration_completed, status, error_message,
	started_at, completed_at
	FROM rotation_jobs`
