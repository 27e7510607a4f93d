package commands

import (
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"log/slog"

	"github.com/google/uuid"

	cryptoDomain "github.com/ameerarsath/publicdocsafe-sub002/internal/crypto/domain"
	cryptoService "github.com/ameerarsath/publicdocsafe-sub002/internal/crypto/service"
	cryptoUseCase "github.com/ameerarsath/publicdocsafe-sub002/internal/crypto/usecase"
	escrowDomain "github.com/ameerarsath/publicdocsafe-sub002/internal/escrow/domain"
	escrowUseCase "github.com/ameerarsath/publicdocsafe-sub002/internal/escrow/usecase"
)

// RunCreateEscrow escrows the user's active KEK under the active escrow
// master key. The presented secret is verified against the key record before
// anything is escrowed.
func RunCreateEscrow(
	ctx context.Context,
	escrows escrowUseCase.EscrowService,
	userKeys cryptoUseCase.UserKeyStore,
	deriver cryptoService.KeyDeriver,
	logger *slog.Logger,
	writer io.Writer,
	userIDStr string,
	secret []byte,
	threshold int,
) error {
	userID, err := uuid.Parse(userIDStr)
	if err != nil {
		return fmt.Errorf("invalid user id: %w", err)
	}
	if len(secret) == 0 {
		return fmt.Errorf("secret must not be empty")
	}

	kek, keyRec, err := deriveActiveKek(ctx, userKeys, deriver, userID, secret)
	if err != nil {
		return err
	}
	defer cryptoDomain.Zero(kek)

	logger.Info("creating escrow record",
		slog.String("user_id", userID.String()),
		slog.String("key_id", keyRec.KeyID.String()),
	)

	rec, err := escrows.CreateEscrow(ctx, keyRec.KeyID, kek, threshold)
	if err != nil {
		return fmt.Errorf("failed to create escrow: %w", err)
	}

	_, _ = fmt.Fprintf(writer, "Escrow Record Created\n")
	_, _ = fmt.Fprintf(writer, "=====================\n\n")
	_, _ = fmt.Fprintf(writer, "Escrow ID:   %s\n", rec.ID)
	_, _ = fmt.Fprintf(writer, "Key ID:      %s\n", rec.KeyID)
	_, _ = fmt.Fprintf(writer, "Master Key:  %s\n", rec.MasterKeyID)
	_, _ = fmt.Fprintf(writer, "Threshold:   %d approval(s)\n", rec.RecoveryThreshold)

	return nil
}

// RunRecoverEscrow performs a single-use escrow recovery and prints the
// recovered KEK. The record is consumed first: a second recovery of the same
// escrow fails even if this one crashes after the claim.
func RunRecoverEscrow(
	ctx context.Context,
	escrows escrowUseCase.EscrowService,
	logger *slog.Logger,
	writer io.Writer,
	escrowIDStr string,
	recoveredBy, reason string,
	approvals []string,
) error {
	escrowID, err := uuid.Parse(escrowIDStr)
	if err != nil {
		return fmt.Errorf("invalid escrow id: %w", err)
	}

	proof := escrowDomain.ApprovalProof{
		RecoveredBy: recoveredBy,
		Reason:      reason,
		Approvals:   approvals,
	}

	logger.Info("recovering escrowed key",
		slog.String("escrow_id", escrowID.String()),
		slog.String("recovered_by", recoveredBy),
		slog.Int("approvals", len(approvals)),
	)

	kek, err := escrows.Recover(ctx, escrowID, proof)
	if err != nil {
		return fmt.Errorf("failed to recover escrow: %w", err)
	}
	defer cryptoDomain.Zero(kek)

	_, _ = fmt.Fprintf(writer, "Escrow Recovered\n")
	_, _ = fmt.Fprintf(writer, "================\n\n")
	_, _ = fmt.Fprintf(writer, "Escrow ID:  %s\n", escrowID)
	_, _ = fmt.Fprintf(writer, "KEK:        %s\n", base64.StdEncoding.EncodeToString(kek))
	_, _ = fmt.Fprintln(writer)
	_, _ = fmt.Fprintln(writer, "This record is now consumed. Handle the key material accordingly")
	_, _ = fmt.Fprintln(writer, "and rotate the user's key once access is restored.")

	return nil
}
