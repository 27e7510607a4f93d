package domain

// KeyParams carries the caller-chosen parameters for a new user key.
type KeyParams struct {
	Algorithm        Algorithm
	DerivationMethod DerivationMethod
	Iterations       int
	Hint             string
}

// DefaultKeyParams returns the parameter set used when the caller does not
// override anything: AES-256-GCM with PBKDF2-SHA256 at the minimum allowed
// iteration count.
func DefaultKeyParams() KeyParams {
	return KeyParams{
		Algorithm:        AESGCM,
		DerivationMethod: PBKDF2SHA256,
		Iterations:       MinPBKDF2Iterations,
	}
}
