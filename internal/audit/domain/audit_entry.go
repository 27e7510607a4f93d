// Package domain defines the append-only audit trail written by every key
// lifecycle operation.
package domain

import (
	"time"

	"github.com/google/uuid"

	"github.com/ameerarsath/publicdocsafe-sub002/internal/errors"
)

// Action identifies the key lifecycle operation an audit entry records.
type Action string

const (
	ActionUserKeyCreate     Action = "user_key.create"
	ActionUserKeyDeactivate Action = "user_key.deactivate"
	ActionDocumentKeyCreate Action = "document_key.create"
	ActionDocumentKeyOpen   Action = "document_key.open"
	ActionRotationStart     Action = "rotation.start"
	ActionRotationResume    Action = "rotation.resume"
	ActionRotationComplete  Action = "rotation.complete"
	ActionMasterKeyCreate   Action = "master_key.create"
	ActionMasterKeyRotate   Action = "master_key.rotate"
	ActionEscrowCreate      Action = "escrow.create"
	ActionEscrowRecover     Action = "escrow.recover"
)

// ErrSignatureMismatch indicates an entry whose stored signature does not
// match its recomputed signature, meaning the entry was altered after write.
var ErrSignatureMismatch = errors.Wrap(errors.ErrInvalidInput, "audit entry signature mismatch")

// Entry records one key lifecycle operation. Entries are append-only: no
// update or delete path exists. Signature is an HMAC over the canonical
// encoding of all other fields, so post-hoc tampering with the trail is
// detectable by a verification walk.
type Entry struct {
	ID          uuid.UUID
	UserID      *uuid.UUID // nil for purpose-scoped operations (master keys)
	KeyID       string     // user key uuid or master key id, empty when not applicable
	Action      Action
	OperationID uuid.UUID // correlates entries emitted by one logical operation
	Success     bool
	ErrorCode   string // sentinel class of the failure, empty on success
	RiskScore   int
	DurationMs  int64
	CreatedAt   time.Time
	Signature   []byte
}

// Risk scores range 0-100. Escrow recovery always lands in the high-risk
// band so SIEM consumers can alert on it regardless of outcome.
const (
	RiskScoreEscrowRecovery = 80
	riskScoreFailureBump    = 20
	maxRiskScore            = 100
)

var baselineRiskScores = map[Action]int{
	ActionUserKeyCreate:     10,
	ActionUserKeyDeactivate: 30,
	ActionDocumentKeyCreate: 5,
	ActionDocumentKeyOpen:   5,
	ActionRotationStart:     30,
	ActionRotationResume:    30,
	ActionRotationComplete:  20,
	ActionMasterKeyCreate:   40,
	ActionMasterKeyRotate:   40,
	ActionEscrowCreate:      50,
	ActionEscrowRecover:     RiskScoreEscrowRecovery,
}

// RiskScore returns the risk score for an action outcome: the action's
// baseline, bumped on failure, capped at 100.
func RiskScore(action Action, success bool) int {
	score := baselineRiskScores[action]
	if !success {
		score += riskScoreFailureBump
	}
	if score > maxRiskScore {
		score = maxRiskScore
	}
	return score
}
