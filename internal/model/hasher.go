package model

// PasswordHasher wraps a slow, salted one-way hash. The salt is embedded
// in the digest, so verification needs no side channel.
type PasswordHasher interface {
	Hash(plaintext string) (string, error)
	// Verify reports whether plaintext matches digest. A mismatch is
	// (false, nil); only a corrupted digest yields ErrHashing.
	Verify(plaintext, digest string) (bool, error)
}
