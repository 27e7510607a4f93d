// Package commands contains CLI command implementations for the application.
package commands

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/golang-migrate/migrate/v4"
	"github.com/google/uuid"

	"github.com/ameerarsath/publicdocsafe-sub002/internal/app"
	cryptoDomain "github.com/ameerarsath/publicdocsafe-sub002/internal/crypto/domain"
	cryptoService "github.com/ameerarsath/publicdocsafe-sub002/internal/crypto/service"
	cryptoUseCase "github.com/ameerarsath/publicdocsafe-sub002/internal/crypto/usecase"
)

// IOTuple holds reader and writer for commands, allowing for testing.
type IOTuple struct {
	Reader io.Reader
	Writer io.Writer
}

// DefaultIO returns an IOTuple with os.Stdin and os.Stdout.
func DefaultIO() IOTuple {
	return IOTuple{
		Reader: os.Stdin,
		Writer: os.Stdout,
	}
}

// closeContainer closes all resources in the container and logs any errors.
func closeContainer(container *app.Container, logger *slog.Logger) {
	if err := container.Shutdown(context.Background()); err != nil {
		logger.Error("failed to shutdown container", slog.Any("error", err))
	}
}

// closeMigrate closes the migration instance and logs any errors.
func closeMigrate(migrate *migrate.Migrate, logger *slog.Logger) {
	sourceError, databaseError := migrate.Close()
	if sourceError != nil || databaseError != nil {
		logger.Error(
			"failed to close the migrate",
			slog.Any("source_error", sourceError),
			slog.Any("database_error", databaseError),
		)
	}
}

// parsePurpose converts a purpose string to cryptoDomain.KeyPurpose.
// Returns an error if the purpose string is invalid.
func parsePurpose(purpose string) (cryptoDomain.KeyPurpose, error) {
	switch purpose {
	case "escrow":
		return cryptoDomain.PurposeEscrow, nil
	case "audit-signing":
		return cryptoDomain.PurposeAuditSigning, nil
	default:
		return "", fmt.Errorf("invalid purpose %q (expected escrow or audit-signing)", purpose)
	}
}

// deriveKekForRecord derives the KEK for a key record from the presented
// secret using the record's own salt and parameters. The caller owns the
// returned KEK and must zero it.
func deriveKekForRecord(
	deriver cryptoService.KeyDeriver,
	secret []byte,
	rec *cryptoDomain.UserKeyRecord,
) ([]byte, error) {
	kek, err := deriver.Derive(secret, rec.Salt, rec.Iterations, rec.DerivationMethod)
	if err != nil {
		return nil, fmt.Errorf("failed to derive key encryption key: %w", err)
	}
	return kek, nil
}

// deriveActiveKek resolves the user's active key record and derives its KEK
// from the presented secret. The caller owns the returned KEK and must zero it.
func deriveActiveKek(
	ctx context.Context,
	userKeys cryptoUseCase.UserKeyStore,
	deriver cryptoService.KeyDeriver,
	userID uuid.UUID,
	secret []byte,
) ([]byte, *cryptoDomain.UserKeyRecord, error) {
	rec, err := userKeys.GetActive(ctx, userID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to get active key for user %s: %w", userID, err)
	}

	kek, err := deriveKekForRecord(deriver, secret, rec)
	if err != nil {
		return nil, nil, err
	}
	return kek, rec, nil
}
