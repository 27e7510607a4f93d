package domain

import (
	"time"
)

// MasterKeyRecord is a server-held key used to protect escrow payloads and
// other server-side secrets. The raw key material is sealed with a KMS keeper
// before persistence; the plaintext Key field is populated only after
// unsealing and never written to the store.
//
// Invariant: exactly one active record per purpose. Rotation chains records
// through PreviousKeyID; escrow records stay tied to the master key active at
// their creation time, so historical (inactive) records must remain
// resolvable by id and are never deleted while referenced.
type MasterKeyRecord struct {
	KeyID          string     // Unique identifier (e.g. "escrow-2026-01")
	Purpose        KeyPurpose // Single use this key is scoped to
	Algorithm      Algorithm  // AEAD used when wrapping payloads under this key
	SealedKey      []byte     // Key material encrypted by the KMS keeper
	Key            []byte     // Plaintext key (populated after unsealing, never persisted)
	IsActive       bool
	PreviousKeyID  string // Rotation chain; empty for the first generation
	CreatedAt      time.Time
	NextRotationAt time.Time
}

// Sealed reports whether the plaintext key material is absent.
func (m *MasterKeyRecord) Sealed() bool {
	return len(m.Key) == 0
}

// Close zeroes the plaintext key material.
func (m *MasterKeyRecord) Close() {
	Zero(m.Key)
	m.Key = nil
}
