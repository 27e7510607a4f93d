// Package domain defines the persisted state machine of a user key rotation:
// a resumable batch job migrating every document envelope from the old key
// generation to the new one before the activation swap.
package domain

import (
	"time"

	"github.com/google/uuid"

	"github.com/ameerarsath/publicdocsafe-sub002/internal/errors"
)

// Status is the lifecycle state of a rotation job.
type Status string

const (
	StatusPending    Status = "pending"
	StatusInProgress Status = "in_progress"
	StatusCompleted  Status = "completed"
	StatusFailed     Status = "failed"
)

// Rotation types recorded on jobs.
const (
	RotationTypeUserRequested = "user-requested"
	RotationTypeScheduled     = "scheduled"
	RotationTypeRecovery      = "recovery"
)

var (
	// ErrRotationInProgress indicates the user already has a pending or
	// running rotation job. Concurrent rotations for one user never run.
	ErrRotationInProgress = errors.Wrap(errors.ErrConflict, "rotation already in progress")

	// ErrRotationJobNotFound indicates no job matches the requested id.
	ErrRotationJobNotFound = errors.Wrap(errors.ErrNotFound, "rotation job not found")

	// ErrRotationNotResumable indicates a resume attempt on a completed job.
	ErrRotationNotResumable = errors.Wrap(errors.ErrConflict, "rotation job is not resumable")
)

// RotationJob tracks one key rotation for a user. Only the rotation engine
// mutates it. DocumentsMigrated is monotonic non-decreasing until it reaches
// DocumentsTotal; a failed job keeps the old key active and the new key
// dormant, and stays failed until explicitly resumed.
type RotationJob struct {
	ID                 uuid.UUID
	UserID             uuid.UUID
	OldKeyID           uuid.UUID
	NewKeyID           uuid.UUID
	RotationType       string
	DocumentsTotal     int
	DocumentsMigrated  int
	MigrationCompleted bool
	Status             Status
	ErrorMessage       string
	StartedAt          time.Time
	CompletedAt        *time.Time
}

// Running reports whether the job blocks a new rotation for the same user.
func (j *RotationJob) Running() bool {
	return j.Status == StatusPending || j.Status == StatusInProgress
}

// Complete marks the migration finished and the job terminal. Envelopes
// created mid-rotation and migrated in a later pass can push the migrated
// count past the initial census, so the total is reconciled upwards; the
// migrated counter never moves backwards.
func (j *RotationJob) Complete(at time.Time) {
	if j.DocumentsMigrated > j.DocumentsTotal {
		j.DocumentsTotal = j.DocumentsMigrated
	}
	j.DocumentsMigrated = j.DocumentsTotal
	j.MigrationCompleted = true
	j.Status = StatusCompleted
	j.ErrorMessage = ""
	j.CompletedAt = &at
}

// Fail marks the job failed with the given message. Failed jobs are terminal
// until an operator resumes them.
func (j *RotationJob) Fail(message string) {
	j.Status = StatusFailed
	j.ErrorMessage = message
}
