package domain

// Algorithm identifies the AEAD construction used to wrap keys and encrypt
// document content. It is a closed enum: unknown tags are rejected with
// ErrUnsupportedAlgorithm instead of falling through stringly-typed dispatch.
type Algorithm string

const (
	// AESGCM is AES-256-GCM: 256-bit key, 12-byte nonce, 16-byte tag.
	// Preferred on hardware with AES-NI acceleration.
	AESGCM Algorithm = "aes-256-gcm"

	// ChaCha20 is ChaCha20-Poly1305: 256-bit key, 12-byte nonce, 16-byte tag.
	// Constant-time in software, preferred where AES-NI is unavailable.
	ChaCha20 Algorithm = "chacha20-poly1305"
)

// ParseAlgorithm converts a stored algorithm tag into an Algorithm.
func ParseAlgorithm(s string) (Algorithm, error) {
	switch Algorithm(s) {
	case AESGCM:
		return AESGCM, nil
	case ChaCha20:
		return ChaCha20, nil
	default:
		return "", ErrUnsupportedAlgorithm
	}
}

// DerivationMethod identifies how a user secret is stretched into a KEK.
type DerivationMethod string

const (
	// PBKDF2SHA256 is PBKDF2 with HMAC-SHA256 and a configurable iteration count.
	PBKDF2SHA256 DerivationMethod = "pbkdf2-sha256"

	// Argon2id is Argon2id with the iteration count interpreted as time cost.
	Argon2id DerivationMethod = "argon2id"
)

// ParseDerivationMethod converts a stored derivation tag into a DerivationMethod.
func ParseDerivationMethod(s string) (DerivationMethod, error) {
	switch DerivationMethod(s) {
	case PBKDF2SHA256:
		return PBKDF2SHA256, nil
	case Argon2id:
		return Argon2id, nil
	default:
		return "", ErrUnsupportedDerivationMethod
	}
}

// KeyPurpose scopes a master key to a single use. Exactly one master key is
// active per purpose at any time.
type KeyPurpose string

const (
	// PurposeEscrow protects escrow payloads (recovery copies of user KEKs).
	PurposeEscrow KeyPurpose = "escrow"

	// PurposeAuditSigning is the root for HKDF-derived audit log signing keys.
	PurposeAuditSigning KeyPurpose = "audit-signing"
)

const (
	// KeySize is the length in bytes of every KEK, DEK and master key (256 bits).
	KeySize = 32

	// MinPBKDF2Iterations is the floor below which PBKDF2 parameters are
	// rejected as weak.
	MinPBKDF2Iterations = 100000

	// MinArgon2Time is the minimum Argon2id time cost.
	MinArgon2Time = 1
)
