package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"

	auditDomain "github.com/ameerarsath/publicdocsafe-sub002/internal/audit/domain"
	cryptoDomain "github.com/ameerarsath/publicdocsafe-sub002/internal/crypto/domain"
	apperrors "github.com/ameerarsath/publicdocsafe-sub002/internal/errors"
)

// recordAudit appends the audit entry for a finished key lifecycle mutation.
// Recording is fail-closed: when the write fails, the caller's operation
// fails, even if the mutation itself succeeded.
func recordAudit(
	ctx context.Context,
	auditor AuditRecorder,
	userID *uuid.UUID,
	keyID string,
	action auditDomain.Action,
	operationID uuid.UUID,
	start time.Time,
	opErr error,
) error {
	event := auditDomain.NewEvent(userID, keyID, action, operationID, time.Since(start), opErr)
	if err := auditor.Record(ctx, event); err != nil {
		return apperrors.Wrap(err, "failed to record audit entry")
	}
	return opErr
}

// userKeyStoreWithAudit decorates UserKeyStore with audit recording of the
// lifecycle mutations. Reads pass through unrecorded. CreateDormantKey and
// Promote also pass through: they are interior steps of a rotation, which the
// rotation engine records as one operation.
type userKeyStoreWithAudit struct {
	next    UserKeyStore
	auditor AuditRecorder
}

// NewUserKeyStoreWithAudit wraps a UserKeyStore with fail-closed audit
// recording.
func NewUserKeyStoreWithAudit(store UserKeyStore, auditor AuditRecorder) UserKeyStore {
	return &userKeyStoreWithAudit{
		next:    store,
		auditor: auditor,
	}
}

func (u *userKeyStoreWithAudit) CreateKey(
	ctx context.Context,
	userID uuid.UUID,
	secret []byte,
	params cryptoDomain.KeyParams,
) (*cryptoDomain.UserKeyRecord, error) {
	start := time.Now()
	operationID := uuid.Must(uuid.NewV7())

	rec, err := u.next.CreateKey(ctx, userID, secret, params)
	keyID := ""
	if rec != nil {
		keyID = rec.KeyID.String()
	}
	if auditErr := recordAudit(ctx, u.auditor, &userID, keyID, auditDomain.ActionUserKeyCreate, operationID, start, err); auditErr != nil {
		return nil, auditErr
	}
	return rec, nil
}

func (u *userKeyStoreWithAudit) CreateDormantKey(
	ctx context.Context,
	userID uuid.UUID,
	secret []byte,
	params cryptoDomain.KeyParams,
) (*cryptoDomain.UserKeyRecord, error) {
	return u.next.CreateDormantKey(ctx, userID, secret, params)
}

func (u *userKeyStoreWithAudit) GetActive(ctx context.Context, userID uuid.UUID) (*cryptoDomain.UserKeyRecord, error) {
	return u.next.GetActive(ctx, userID)
}

func (u *userKeyStoreWithAudit) GetByID(ctx context.Context, keyID uuid.UUID) (*cryptoDomain.UserKeyRecord, error) {
	return u.next.GetByID(ctx, keyID)
}

func (u *userKeyStoreWithAudit) Deactivate(ctx context.Context, keyID uuid.UUID, reason string) error {
	start := time.Now()
	operationID := uuid.Must(uuid.NewV7())

	err := u.next.Deactivate(ctx, keyID, reason)
	return recordAudit(ctx, u.auditor, nil, keyID.String(), auditDomain.ActionUserKeyDeactivate, operationID, start, err)
}

func (u *userKeyStoreWithAudit) Promote(ctx context.Context, userID, oldKeyID, newKeyID uuid.UUID) error {
	return u.next.Promote(ctx, userID, oldKeyID, newKeyID)
}

// masterKeyStoreWithAudit decorates MasterKeyStore with audit recording of
// Bootstrap and Rotate. Reads pass through unrecorded.
type masterKeyStoreWithAudit struct {
	next    MasterKeyStore
	auditor AuditRecorder
}

// NewMasterKeyStoreWithAudit wraps a MasterKeyStore with fail-closed audit
// recording.
func NewMasterKeyStoreWithAudit(store MasterKeyStore, auditor AuditRecorder) MasterKeyStore {
	return &masterKeyStoreWithAudit{
		next:    store,
		auditor: auditor,
	}
}

func (s *masterKeyStoreWithAudit) Bootstrap(
	ctx context.Context,
	purpose cryptoDomain.KeyPurpose,
) (*cryptoDomain.MasterKeyRecord, error) {
	// Entries are signed with the audit-signing key, so bootstrapping that
	// key is the one mutation that cannot itself be recorded.
	if purpose == cryptoDomain.PurposeAuditSigning {
		return s.next.Bootstrap(ctx, purpose)
	}

	start := time.Now()
	operationID := uuid.Must(uuid.NewV7())

	rec, err := s.next.Bootstrap(ctx, purpose)
	keyID := ""
	if rec != nil {
		keyID = rec.KeyID
	}
	if auditErr := recordAudit(ctx, s.auditor, nil, keyID, auditDomain.ActionMasterKeyCreate, operationID, start, err); auditErr != nil {
		if rec != nil {
			rec.Close()
		}
		return nil, auditErr
	}
	return rec, nil
}

func (s *masterKeyStoreWithAudit) GetActive(
	ctx context.Context,
	purpose cryptoDomain.KeyPurpose,
) (*cryptoDomain.MasterKeyRecord, error) {
	return s.next.GetActive(ctx, purpose)
}

func (s *masterKeyStoreWithAudit) GetByID(ctx context.Context, keyID string) (*cryptoDomain.MasterKeyRecord, error) {
	return s.next.GetByID(ctx, keyID)
}

func (s *masterKeyStoreWithAudit) Rotate(
	ctx context.Context,
	purpose cryptoDomain.KeyPurpose,
) (*cryptoDomain.MasterKeyRecord, error) {
	start := time.Now()
	operationID := uuid.Must(uuid.NewV7())

	rec, err := s.next.Rotate(ctx, purpose)
	keyID := ""
	if rec != nil {
		keyID = rec.KeyID
	}
	if auditErr := recordAudit(ctx, s.auditor, nil, keyID, auditDomain.ActionMasterKeyRotate, operationID, start, err); auditErr != nil {
		if rec != nil {
			rec.Close()
		}
		return nil, auditErr
	}
	return rec, nil
}
