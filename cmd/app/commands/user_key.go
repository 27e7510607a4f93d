package commands

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/google/uuid"

	cryptoDomain "github.com/ameerarsath/publicdocsafe-sub002/internal/crypto/domain"
	cryptoUseCase "github.com/ameerarsath/publicdocsafe-sub002/internal/crypto/usecase"
)

// RunSetupUserKey installs the first active key generation for a user. The
// KEK is derived from the secret, proven via the validation hash and zeroed;
// only the record survives.
func RunSetupUserKey(
	ctx context.Context,
	userKeys cryptoUseCase.UserKeyStore,
	logger *slog.Logger,
	writer io.Writer,
	userIDStr string,
	secret []byte,
	iterations int,
	hint string,
) error {
	userID, err := uuid.Parse(userIDStr)
	if err != nil {
		return fmt.Errorf("invalid user id: %w", err)
	}
	if len(secret) == 0 {
		return fmt.Errorf("secret must not be empty")
	}

	params := cryptoDomain.DefaultKeyParams()
	if iterations > 0 {
		params.Iterations = iterations
	}
	params.Hint = hint

	logger.Info("creating user key",
		slog.String("user_id", userID.String()),
		slog.Int("iterations", params.Iterations),
	)

	rec, err := userKeys.CreateKey(ctx, userID, secret, params)
	if err != nil {
		return fmt.Errorf("failed to create user key: %w", err)
	}

	_, _ = fmt.Fprintf(writer, "User Key Created\n")
	_, _ = fmt.Fprintf(writer, "================\n\n")
	_, _ = fmt.Fprintf(writer, "Key ID:      %s\n", rec.KeyID)
	_, _ = fmt.Fprintf(writer, "User ID:     %s\n", rec.UserID)
	_, _ = fmt.Fprintf(writer, "Algorithm:   %s\n", rec.Algorithm)
	_, _ = fmt.Fprintf(writer, "Derivation:  %s (%d iterations)\n", rec.DerivationMethod, rec.Iterations)
	_, _ = fmt.Fprintf(writer, "Active:      %t\n", rec.IsActive)

	return nil
}
