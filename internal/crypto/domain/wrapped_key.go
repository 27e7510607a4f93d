package domain

// WrappedKey is the output of an AEAD wrap operation, split into the parts
// persisted on a document envelope or an escrow record. AuthTag is kept
// separate from the ciphertext so tampering with either field is detectable
// independently.
type WrappedKey struct {
	Ciphertext []byte // Encrypted key material, tag stripped
	Nonce      []byte // Per-wrap random nonce (12 bytes)
	AuthTag    []byte // AEAD authentication tag (16 bytes)
}
