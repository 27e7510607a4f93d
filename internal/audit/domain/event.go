package domain

import (
	"time"

	"github.com/google/uuid"

	apperrors "github.com/ameerarsath/publicdocsafe-sub002/internal/errors"
)

// Event is what an operation reports to the audit log. The log turns it into
// a signed Entry: id, timestamp, risk score and signature are assigned at
// record time, not by the caller.
type Event struct {
	UserID      *uuid.UUID
	KeyID       string
	Action      Action
	OperationID uuid.UUID
	Success     bool
	ErrorCode   string
	Duration    time.Duration
}

// NewEvent builds an event for one finished operation. opErr nil means the
// operation succeeded; otherwise its sentinel class becomes the error code.
func NewEvent(userID *uuid.UUID, keyID string, action Action, operationID uuid.UUID, duration time.Duration, opErr error) Event {
	return Event{
		UserID:      userID,
		KeyID:       keyID,
		Action:      action,
		OperationID: operationID,
		Success:     opErr == nil,
		ErrorCode:   ErrorCode(opErr),
		Duration:    duration,
	}
}

// ErrorCode maps an operation error to the sentinel class stored on the audit
// entry. Returns empty for nil. Unclassified errors report as internal.
func ErrorCode(err error) string {
	switch {
	case err == nil:
		return ""
	case apperrors.Is(err, apperrors.ErrInvalidInput):
		return "invalid_input"
	case apperrors.Is(err, apperrors.ErrNotFound):
		return "not_found"
	case apperrors.Is(err, apperrors.ErrConflict):
		return "conflict"
	case apperrors.Is(err, apperrors.ErrUnauthorized):
		return "unauthorized"
	case apperrors.Is(err, apperrors.ErrForbidden):
		return "forbidden"
	case apperrors.Is(err, apperrors.ErrUnavailable):
		return "store_unavailable"
	default:
		return "internal"
	}
}
