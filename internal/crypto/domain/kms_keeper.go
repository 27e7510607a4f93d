package domain

import (
	"context"
)

// KMSKeeper abstracts the KMS primitive used to seal and unseal master key
// material at rest. *secrets.Keeper from gocloud.dev implements it.
type KMSKeeper interface {
	Encrypt(ctx context.Context, plaintext []byte) ([]byte, error)
	Decrypt(ctx context.Context, ciphertext []byte) ([]byte, error)
	Close() error
}
