package service

import (
	"crypto/rand"
	"fmt"

	cryptoDomain "github.com/ameerarsath/publicdocsafe-sub002/internal/crypto/domain"
)

// Both supported AEADs produce a 16-byte authentication tag appended to the
// ciphertext; Wrap splits it off so envelopes persist it as a separate field.
const authTagSize = 16

// KeyWrapperService implements KeyWrapper on top of the AEADManager ciphers.
// It is stateless and safe for concurrent use.
type KeyWrapperService struct {
	aeadManager AEADManager
}

// NewKeyWrapper creates a KeyWrapperService using the provided AEADManager.
func NewKeyWrapper(aeadManager AEADManager) *KeyWrapperService {
	return &KeyWrapperService{aeadManager: aeadManager}
}

// GenerateKey returns 32 bytes of cryptographically secure random key material.
func (w *KeyWrapperService) GenerateKey() ([]byte, error) {
	key := make([]byte, cryptoDomain.KeySize)
	if _, err := rand.Read(key); err != nil {
		return nil, fmt.Errorf("failed to generate key: %w", err)
	}
	return key, nil
}

// Wrap encrypts plaintextKey under wrappingKey with the given algorithm,
// binding aad (typically the wrapping key id or subject id) into the tag.
func (w *KeyWrapperService) Wrap(
	plaintextKey, wrappingKey, aad []byte,
	alg cryptoDomain.Algorithm,
) (cryptoDomain.WrappedKey, error) {
	aead, err := w.aeadManager.CreateCipher(wrappingKey, alg)
	if err != nil {
		return cryptoDomain.WrappedKey{}, err
	}

	sealed, nonce, err := aead.Encrypt(plaintextKey, aad)
	if err != nil {
		return cryptoDomain.WrappedKey{}, fmt.Errorf("failed to wrap key: %w", err)
	}

	split := len(sealed) - authTagSize
	return cryptoDomain.WrappedKey{
		Ciphertext: sealed[:split],
		Nonce:      nonce,
		AuthTag:    sealed[split:],
	}, nil
}

// Unwrap decrypts a wrapped key. On any AEAD failure it returns
// ErrAuthenticationFailure without key material; the underlying Open is a
// single constant-time tag check, so the error carries no information about
// where the mismatch occurred.
func (w *KeyWrapperService) Unwrap(
	wrapped cryptoDomain.WrappedKey,
	wrappingKey, aad []byte,
	alg cryptoDomain.Algorithm,
) ([]byte, error) {
	aead, err := w.aeadManager.CreateCipher(wrappingKey, alg)
	if err != nil {
		return nil, err
	}

	sealed := make([]byte, 0, len(wrapped.Ciphertext)+len(wrapped.AuthTag))
	sealed = append(sealed, wrapped.Ciphertext...)
	sealed = append(sealed, wrapped.AuthTag...)

	plaintext, err := aead.Decrypt(sealed, wrapped.Nonce, aad)
	if err != nil {
		return nil, cryptoDomain.ErrAuthenticationFailure
	}

	return plaintext, nil
}
