package commands

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	cryptoUseCase "github.com/ameerarsath/publicdocsafe-sub002/internal/crypto/usecase"
)

// RunCreateMasterKey bootstraps the first active master key for a purpose.
// The key material is generated server-side, sealed with the configured KMS
// keeper and persisted; plaintext never leaves the process. Idempotent: if an
// active key already exists for the purpose it is reported unchanged.
func RunCreateMasterKey(
	ctx context.Context,
	masterKeys cryptoUseCase.MasterKeyStore,
	logger *slog.Logger,
	writer io.Writer,
	purpose string,
) error {
	keyPurpose, err := parsePurpose(purpose)
	if err != nil {
		return err
	}

	logger.Info("bootstrapping master key", slog.String("purpose", purpose))

	rec, err := masterKeys.Bootstrap(ctx, keyPurpose)
	if err != nil {
		return fmt.Errorf("failed to bootstrap master key: %w", err)
	}
	defer rec.Close()

	_, _ = fmt.Fprintf(writer, "Master Key\n")
	_, _ = fmt.Fprintf(writer, "==========\n\n")
	_, _ = fmt.Fprintf(writer, "Key ID:         %s\n", rec.KeyID)
	_, _ = fmt.Fprintf(writer, "Purpose:        %s\n", rec.Purpose)
	_, _ = fmt.Fprintf(writer, "Algorithm:      %s\n", rec.Algorithm)
	_, _ = fmt.Fprintf(writer, "Created At:     %s\n", rec.CreatedAt.Format("2006-01-02 15:04:05"))
	_, _ = fmt.Fprintf(writer, "Next Rotation:  %s\n", rec.NextRotationAt.Format("2006-01-02 15:04:05"))

	return nil
}

// RunRotateMasterKey rotates the master key for a purpose: a new sealed key
// becomes active, the prior generation is deactivated but stays resolvable for
// payloads wrapped under it.
func RunRotateMasterKey(
	ctx context.Context,
	masterKeys cryptoUseCase.MasterKeyStore,
	logger *slog.Logger,
	writer io.Writer,
	purpose string,
) error {
	keyPurpose, err := parsePurpose(purpose)
	if err != nil {
		return err
	}

	logger.Info("rotating master key", slog.String("purpose", purpose))

	rec, err := masterKeys.Rotate(ctx, keyPurpose)
	if err != nil {
		return fmt.Errorf("failed to rotate master key: %w", err)
	}
	defer rec.Close()

	_, _ = fmt.Fprintf(writer, "Master Key Rotated\n")
	_, _ = fmt.Fprintf(writer, "==================\n\n")
	_, _ = fmt.Fprintf(writer, "New Key ID:     %s\n", rec.KeyID)
	_, _ = fmt.Fprintf(writer, "Previous Key:   %s\n", rec.PreviousKeyID)
	_, _ = fmt.Fprintf(writer, "Purpose:        %s\n", rec.Purpose)
	_, _ = fmt.Fprintf(writer, "Next Rotation:  %s\n", rec.NextRotationAt.Format("2006-01-02 15:04:05"))
	_, _ = fmt.Fprintln(writer)
	_, _ = fmt.Fprintln(writer, "Existing payloads stay wrapped under their creation-time key.")

	return nil
}
