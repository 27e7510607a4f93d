// Package service implements the HMAC signing scheme for audit entries.
package service

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/binary"
	"io"

	"golang.org/x/crypto/hkdf"

	auditDomain "github.com/ameerarsath/publicdocsafe-sub002/internal/audit/domain"
	cryptoDomain "github.com/ameerarsath/publicdocsafe-sub002/internal/crypto/domain"
	apperrors "github.com/ameerarsath/publicdocsafe-sub002/internal/errors"
)

// EntrySigner signs and verifies audit entries with a key derived from the
// audit-signing master key.
type EntrySigner interface {
	// Sign computes the HMAC-SHA256 signature over the entry's canonical
	// encoding. The Signature field itself is not part of the encoding.
	Sign(rootKey []byte, entry *auditDomain.Entry) ([]byte, error)

	// Verify recomputes the signature and compares in constant time. Returns
	// ErrSignatureMismatch when the entry was altered after signing.
	Verify(rootKey []byte, entry *auditDomain.Entry) error
}

type entrySigner struct{}

// NewEntrySigner creates an HMAC-based audit entry signer using HKDF-SHA256
// for key derivation and HMAC-SHA256 for signature generation.
func NewEntrySigner() EntrySigner {
	return &entrySigner{}
}

// deriveSigningKey uses HKDF-SHA256 to separate signing key usage from the
// master key's other uses. Info string is versioned for future algorithm
// changes.
func (e *entrySigner) deriveSigningKey(rootKey []byte) ([]byte, error) {
	info := []byte("audit-entry-signing-v1")
	kdf := hkdf.New(sha256.New, rootKey, nil, info)

	signingKey := make([]byte, 32)
	if _, err := io.ReadFull(kdf, signingKey); err != nil {
		return nil, apperrors.Wrap(err, "failed to derive signing key")
	}
	return signingKey, nil
}

// canonicalize converts an entry to its canonical byte representation.
// Variable-length fields are length-prefixed to prevent ambiguity; a nil
// user id encodes as a zero-length field, distinct from any real uuid.
func (e *entrySigner) canonicalize(entry *auditDomain.Entry) []byte {
	buf := make([]byte, 0, 256)

	buf = append(buf, entry.ID[:]...)
	if entry.UserID != nil {
		buf = appendLengthPrefixed(buf, entry.UserID[:])
	} else {
		buf = appendLengthPrefixed(buf, nil)
	}
	buf = appendLengthPrefixed(buf, []byte(entry.KeyID))
	buf = appendLengthPrefixed(buf, []byte(entry.Action))
	buf = append(buf, entry.OperationID[:]...)

	if entry.Success {
		buf = append(buf, 1)
	} else {
		buf = append(buf, 0)
	}
	buf = appendLengthPrefixed(buf, []byte(entry.ErrorCode))

	var nums [20]byte
	binary.BigEndian.PutUint32(nums[0:4], uint32(entry.RiskScore))
	binary.BigEndian.PutUint64(nums[4:12], uint64(entry.DurationMs))
	binary.BigEndian.PutUint64(nums[12:20], uint64(entry.CreatedAt.UnixNano()))
	buf = append(buf, nums[:]...)

	return buf
}

// appendLengthPrefixed adds a 4-byte big-endian length prefix followed by data.
func appendLengthPrefixed(buf []byte, data []byte) []byte {
	var length [4]byte
	binary.BigEndian.PutUint32(length[:], uint32(len(data)))
	buf = append(buf, length[:]...)
	buf = append(buf, data...)
	return buf
}

func (e *entrySigner) Sign(rootKey []byte, entry *auditDomain.Entry) ([]byte, error) {
	signingKey, err := e.deriveSigningKey(rootKey)
	if err != nil {
		return nil, err
	}
	defer cryptoDomain.Zero(signingKey)

	mac := hmac.New(sha256.New, signingKey)
	mac.Write(e.canonicalize(entry))
	return mac.Sum(nil), nil
}

func (e *entrySigner) Verify(rootKey []byte, entry *auditDomain.Entry) error {
	expected, err := e.Sign(rootKey, entry)
	if err != nil {
		return err
	}
	if !hmac.Equal(entry.Signature, expected) {
		return auditDomain.ErrSignatureMismatch
	}
	return nil
}
