package commands

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/google/uuid"

	cryptoDomain "github.com/ameerarsath/publicdocsafe-sub002/internal/crypto/domain"
	cryptoService "github.com/ameerarsath/publicdocsafe-sub002/internal/crypto/service"
	cryptoUseCase "github.com/ameerarsath/publicdocsafe-sub002/internal/crypto/usecase"
	rotationDomain "github.com/ameerarsath/publicdocsafe-sub002/internal/rotation/domain"
	rotationUseCase "github.com/ameerarsath/publicdocsafe-sub002/internal/rotation/usecase"
)

// RunRotateUserKey rotates a user's key generation: stages a dormant key from
// the new secret, migrates every document envelope and promotes the new key.
// The call runs the migration synchronously to completion.
func RunRotateUserKey(
	ctx context.Context,
	engine rotationUseCase.RotationEngine,
	userKeys cryptoUseCase.UserKeyStore,
	deriver cryptoService.KeyDeriver,
	logger *slog.Logger,
	writer io.Writer,
	userIDStr string,
	oldSecret, newSecret []byte,
	iterations int,
) error {
	userID, err := uuid.Parse(userIDStr)
	if err != nil {
		return fmt.Errorf("invalid user id: %w", err)
	}
	if len(oldSecret) == 0 || len(newSecret) == 0 {
		return fmt.Errorf("old and new secrets must not be empty")
	}

	kek, _, err := deriveActiveKek(ctx, userKeys, deriver, userID, oldSecret)
	if err != nil {
		return err
	}
	defer cryptoDomain.Zero(kek)

	params := cryptoDomain.DefaultKeyParams()
	if iterations > 0 {
		params.Iterations = iterations
	}

	logger.Info("starting key rotation", slog.String("user_id", userID.String()))

	job, err := engine.StartRotation(ctx, userID, kek, newSecret, params)
	if err != nil {
		return fmt.Errorf("failed to rotate user key: %w", err)
	}

	printRotationJob(writer, job)
	return nil
}

// RunResumeRotation continues a failed or interrupted rotation job. The old
// secret must match the key the job rotates away from and the new secret must
// be the one the staged key was created from.
func RunResumeRotation(
	ctx context.Context,
	engine rotationUseCase.RotationEngine,
	userKeys cryptoUseCase.UserKeyStore,
	deriver cryptoService.KeyDeriver,
	logger *slog.Logger,
	writer io.Writer,
	jobIDStr string,
	oldSecret, newSecret []byte,
) error {
	jobID, err := uuid.Parse(jobIDStr)
	if err != nil {
		return fmt.Errorf("invalid job id: %w", err)
	}
	if len(oldSecret) == 0 || len(newSecret) == 0 {
		return fmt.Errorf("old and new secrets must not be empty")
	}

	job, err := engine.GetJob(ctx, jobID)
	if err != nil {
		return fmt.Errorf("failed to get rotation job: %w", err)
	}

	oldKey, err := userKeys.GetByID(ctx, job.OldKeyID)
	if err != nil {
		return fmt.Errorf("failed to get rotation source key: %w", err)
	}

	kek, err := deriveKekForRecord(deriver, oldSecret, oldKey)
	if err != nil {
		return err
	}
	defer cryptoDomain.Zero(kek)

	logger.Info("resuming key rotation",
		slog.String("job_id", jobID.String()),
		slog.String("user_id", job.UserID.String()),
	)

	job, err = engine.Resume(ctx, jobID, kek, newSecret)
	if err != nil {
		return fmt.Errorf("failed to resume rotation: %w", err)
	}

	printRotationJob(writer, job)
	return nil
}

func printRotationJob(writer io.Writer, job *rotationDomain.RotationJob) {
	_, _ = fmt.Fprintf(writer, "Rotation Job\n")
	_, _ = fmt.Fprintf(writer, "============\n\n")
	_, _ = fmt.Fprintf(writer, "Job ID:     %s\n", job.ID)
	_, _ = fmt.Fprintf(writer, "User ID:    %s\n", job.UserID)
	_, _ = fmt.Fprintf(writer, "Old Key:    %s\n", job.OldKeyID)
	_, _ = fmt.Fprintf(writer, "New Key:    %s\n", job.NewKeyID)
	_, _ = fmt.Fprintf(writer, "Migrated:   %d/%d\n", job.DocumentsMigrated, job.DocumentsTotal)
	_, _ = fmt.Fprintf(writer, "Status:     %s\n", job.Status)
	if job.ErrorMessage != "" {
		_, _ = fmt.Fprintf(writer, "Error:      %s\n", job.ErrorMessage)
	}
}
