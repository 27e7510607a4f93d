// Package service provides the cryptographic primitives for the key
// lifecycle: KEK derivation from user secrets, AEAD key wrapping
// (AES-256-GCM, ChaCha20-Poly1305), and KMS sealing of master key material.
package service

import (
	cryptoDomain "github.com/ameerarsath/publicdocsafe-sub002/internal/crypto/domain"
)

// AEAD defines the interface for Authenticated Encryption with Associated Data.
type AEAD interface {
	// Encrypt encrypts plaintext with optional AAD and returns ciphertext and nonce.
	Encrypt(plaintext, aad []byte) (ciphertext, nonce []byte, err error)

	// Decrypt decrypts ciphertext using the provided nonce and AAD.
	Decrypt(ciphertext, nonce, aad []byte) ([]byte, error)
}

// AEADManager defines the interface for creating AEAD cipher instances.
type AEADManager interface {
	// CreateCipher creates an AEAD cipher instance for the specified algorithm.
	CreateCipher(key []byte, alg cryptoDomain.Algorithm) (AEAD, error)
}

// KeyDeriver turns a user secret into a KEK and proves a derived KEK correct
// without the KEK ever being persisted.
type KeyDeriver interface {
	// Derive stretches the secret into a fixed-length 32-byte KEK.
	// Fails with ErrWeakParameters when iterations are below the configured
	// floor or the method is not allow-listed.
	Derive(secret, salt []byte, iterations int, method cryptoDomain.DerivationMethod) ([]byte, error)

	// ValidationHash computes the Argon2id hash stored on the key record.
	ValidationHash(kek []byte) (string, error)

	// Verify checks a candidate KEK against a stored validation hash in
	// constant time.
	Verify(kek []byte, validationHash string) bool
}

// KeyWrapper wraps and unwraps key material under a KEK or master key using
// an AEAD construction.
type KeyWrapper interface {
	// Wrap encrypts plaintextKey under wrappingKey, binding aad.
	Wrap(plaintextKey, wrappingKey, aad []byte, alg cryptoDomain.Algorithm) (cryptoDomain.WrappedKey, error)

	// Unwrap decrypts a wrapped key. A tag mismatch fails with
	// ErrAuthenticationFailure and returns no key material.
	Unwrap(wrapped cryptoDomain.WrappedKey, wrappingKey, aad []byte, alg cryptoDomain.Algorithm) ([]byte, error)

	// GenerateKey returns 32 bytes of cryptographically secure random key material.
	GenerateKey() ([]byte, error)
}
