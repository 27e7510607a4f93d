package service

import (
	"crypto/sha256"

	"github.com/allisson/go-pwdhash"
	"golang.org/x/crypto/argon2"
	"golang.org/x/crypto/pbkdf2"

	cryptoDomain "github.com/ameerarsath/publicdocsafe-sub002/internal/crypto/domain"
	apperrors "github.com/ameerarsath/publicdocsafe-sub002/internal/errors"
)

// Argon2id memory and parallelism parameters. The time cost comes from the
// key record's iteration field so it can be raised on rotation.
const (
	argon2Memory  = 64 * 1024 // 64 MiB
	argon2Threads = 4
)

// KeyDerivationService implements KeyDeriver. It is stateless and pure:
// the same secret, salt, iterations and method always produce the same KEK,
// fixed at 32 bytes regardless of secret length.
type KeyDerivationService struct {
	minIterations int
	hasher        *pwdhash.PasswordHasher
}

// NewKeyDerivation creates a KeyDerivationService with the given PBKDF2
// iteration floor. Validation hashes use Argon2id via go-pwdhash with the
// interactive policy, which keeps key-record verification fast enough for
// every document read.
func NewKeyDerivation(minIterations int) *KeyDerivationService {
	hasher, err := pwdhash.New(pwdhash.WithPolicy(pwdhash.PolicyInteractive))
	if err != nil {
		// This should never happen with a valid policy
		panic(err)
	}

	if minIterations <= 0 {
		minIterations = cryptoDomain.MinPBKDF2Iterations
	}

	return &KeyDerivationService{
		minIterations: minIterations,
		hasher:        hasher,
	}
}

// Derive stretches a user secret into a 32-byte KEK.
//
// PBKDF2-SHA256 interprets iterations as the PBKDF2 round count and enforces
// the configured floor. Argon2id interprets iterations as the time cost with
// fixed memory and parallelism. Unknown methods and sub-floor parameters fail
// with ErrWeakParameters before any work is done.
func (k *KeyDerivationService) Derive(
	secret, salt []byte,
	iterations int,
	method cryptoDomain.DerivationMethod,
) ([]byte, error) {
	if len(salt) == 0 {
		return nil, apperrors.Wrap(cryptoDomain.ErrWeakParameters, "empty salt")
	}

	switch method {
	case cryptoDomain.PBKDF2SHA256:
		if iterations < k.minIterations {
			return nil, cryptoDomain.ErrWeakParameters
		}
		return pbkdf2.Key(secret, salt, iterations, cryptoDomain.KeySize, sha256.New), nil
	case cryptoDomain.Argon2id:
		if iterations < cryptoDomain.MinArgon2Time {
			return nil, cryptoDomain.ErrWeakParameters
		}
		return argon2.IDKey(
			secret,
			salt,
			uint32(iterations),
			argon2Memory,
			argon2Threads,
			cryptoDomain.KeySize,
		), nil
	default:
		return nil, cryptoDomain.ErrWeakParameters
	}
}

// ValidationHash computes the Argon2id hash of a derived KEK. The hash is
// stored on the key record so the system can confirm a presented secret is
// correct without persisting the secret or the KEK.
func (k *KeyDerivationService) ValidationHash(kek []byte) (string, error) {
	hash, err := k.hasher.Hash(kek)
	if err != nil {
		return "", apperrors.Wrap(err, "failed to hash kek")
	}
	return hash, nil
}

// Verify checks a candidate KEK against a stored validation hash.
// The comparison is constant time; any hasher error reads as a mismatch.
func (k *KeyDerivationService) Verify(kek []byte, validationHash string) bool {
	ok, err := k.hasher.Verify(kek, validationHash)
	if err != nil {
		return false
	}
	return ok
}
