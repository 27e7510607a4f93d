package usecase

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/google/uuid"

	"github.com/ameerarsath/publicdocsafe-sub002/internal/audit/domain"
	auditService "github.com/ameerarsath/publicdocsafe-sub002/internal/audit/service"
	cryptoDomain "github.com/ameerarsath/publicdocsafe-sub002/internal/crypto/domain"
	cryptoUsecase "github.com/ameerarsath/publicdocsafe-sub002/internal/crypto/usecase"
	apperrors "github.com/ameerarsath/publicdocsafe-sub002/internal/errors"
)

const (
	// storeRetryAttempts bounds the automatic retries on ErrUnavailable.
	storeRetryAttempts = 3

	// verifyBatchSize pages the verification walk.
	verifyBatchSize = 500
)

type auditLog struct {
	repo       AuditLogRepository
	masterKeys cryptoUsecase.MasterKeyStore
	signer     auditService.EntrySigner
}

// NewAuditLog creates the audit log. Entries are signed with the active
// audit-signing master key.
func NewAuditLog(
	repo AuditLogRepository,
	masterKeys cryptoUsecase.MasterKeyStore,
	signer auditService.EntrySigner,
) AuditLog {
	return &auditLog{
		repo:       repo,
		masterKeys: masterKeys,
		signer:     signer,
	}
}

func retryStore(ctx context.Context, fn func() error) error {
	op := func() error {
		err := fn()
		if err != nil && !apperrors.Is(err, apperrors.ErrUnavailable) {
			return backoff.Permanent(err)
		}
		return err
	}
	policy := backoff.WithContext(backoff.WithMaxRetries(backoff.NewExponentialBackOff(), storeRetryAttempts), ctx)
	return backoff.Retry(op, policy)
}

func (a *auditLog) Record(ctx context.Context, event domain.Event) error {
	entry := &domain.Entry{
		ID:          uuid.Must(uuid.NewV7()),
		UserID:      event.UserID,
		KeyID:       event.KeyID,
		Action:      event.Action,
		OperationID: event.OperationID,
		Success:     event.Success,
		ErrorCode:   event.ErrorCode,
		RiskScore:   domain.RiskScore(event.Action, event.Success),
		DurationMs:  event.Duration.Milliseconds(),
		CreatedAt:   time.Now().UTC(),
	}

	rootKey, err := a.masterKeys.GetActive(ctx, cryptoDomain.PurposeAuditSigning)
	if err != nil {
		return apperrors.Wrap(err, "failed to load audit signing key")
	}
	defer rootKey.Close()

	entry.Signature, err = a.signer.Sign(rootKey.Key, entry)
	if err != nil {
		return err
	}

	return retryStore(ctx, func() error {
		return a.repo.Create(ctx, entry)
	})
}

func (a *auditLog) Verify(ctx context.Context) (int, error) {
	chain, err := a.signingKeyChain(ctx)
	if err != nil {
		return 0, err
	}
	defer func() {
		for _, key := range chain {
			cryptoDomain.Zero(key)
		}
	}()

	verified := 0
	cursor := uuid.Nil
	for {
		var entries []*domain.Entry
		err := retryStore(ctx, func() error {
			var listErr error
			entries, listErr = a.repo.ListBatch(ctx, cursor, verifyBatchSize)
			return listErr
		})
		if err != nil {
			return verified, err
		}
		if len(entries) == 0 {
			return verified, nil
		}

		for _, entry := range entries {
			if err := a.verifyWithChain(chain, entry); err != nil {
				return verified, apperrors.Wrap(err, "audit entry "+entry.ID.String())
			}
			verified++
		}
		cursor = entries[len(entries)-1].ID
	}
}

// signingKeyChain unseals the active audit-signing key and every previous
// generation it links to. Entries written before a signing key rotation still
// verify against their generation's key.
func (a *auditLog) signingKeyChain(ctx context.Context) ([][]byte, error) {
	var chain [][]byte

	rec, err := a.masterKeys.GetActive(ctx, cryptoDomain.PurposeAuditSigning)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to load audit signing key")
	}
	for {
		chain = append(chain, append([]byte(nil), rec.Key...))
		previousKeyID := rec.PreviousKeyID
		rec.Close()
		if previousKeyID == "" {
			return chain, nil
		}
		rec, err = a.masterKeys.GetByID(ctx, previousKeyID)
		if err != nil {
			for _, key := range chain {
				cryptoDomain.Zero(key)
			}
			return nil, apperrors.Wrap(err, "failed to load historical audit signing key")
		}
	}
}

func (a *auditLog) verifyWithChain(chain [][]byte, entry *domain.Entry) error {
	var lastErr error
	for _, key := range chain {
		lastErr = a.signer.Verify(key, entry)
		if lastErr == nil {
			return nil
		}
	}
	return lastErr
}

func (a *auditLog) ListByUser(ctx context.Context, userID uuid.UUID, limit int) ([]*domain.Entry, error) {
	var entries []*domain.Entry
	err := retryStore(ctx, func() error {
		var listErr error
		entries, listErr = a.repo.ListByUser(ctx, userID, limit)
		return listErr
	})
	return entries, err
}
