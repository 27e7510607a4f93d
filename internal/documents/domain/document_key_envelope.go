// Package domain defines the envelope attached to each document version:
// the wrapped DEK, its nonce and tag, and the id of the user key generation
// that wrapped it.
package domain

import (
	"time"

	"github.com/google/uuid"

	cryptoDomain "github.com/ameerarsath/publicdocsafe-sub002/internal/crypto/domain"
	"github.com/ameerarsath/publicdocsafe-sub002/internal/errors"
)

// ErrEnvelopeNotFound indicates no envelope matches the requested id.
var ErrEnvelopeNotFound = errors.Wrap(errors.ErrNotFound, "document key envelope not found")

// DocumentKeyEnvelope protects one document version's DEK. Created once at
// encryption time and immutable afterwards, except for the wrapping fields
// (WrappingKeyID, WrappedDek, Nonce, AuthTag), which the rotation engine
// swaps atomically when migrating the envelope to a new key generation.
// The plaintext DEK is never stored.
type DocumentKeyEnvelope struct {
	ID            uuid.UUID
	DocumentID    uuid.UUID
	VersionID     uuid.UUID
	Algorithm     cryptoDomain.Algorithm // Content cipher the DEK is used with
	WrappedDek    []byte
	Nonce         []byte
	AuthTag       []byte
	WrappingKeyID uuid.UUID // UserKeyRecord that wrapped this DEK
	CreatedAt     time.Time
}

// WrappedKey assembles the envelope's wrapping fields for the unwrapper.
func (e *DocumentKeyEnvelope) WrappedKey() cryptoDomain.WrappedKey {
	return cryptoDomain.WrappedKey{
		Ciphertext: e.WrappedDek,
		Nonce:      e.Nonce,
		AuthTag:    e.AuthTag,
	}
}

// AAD binds the envelope's identity into the AEAD so a wrapped DEK cannot be
// transplanted onto another document or key generation unnoticed.
func (e *DocumentKeyEnvelope) AAD() []byte {
	aad := make([]byte, 0, 48)
	aad = append(aad, e.DocumentID[:]...)
	aad = append(aad, e.VersionID[:]...)
	aad = append(aad, e.WrappingKeyID[:]...)
	return aad
}
