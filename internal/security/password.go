package security

import (
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// Cost is the bcrypt work factor used for every stored secret.
const Cost = 10

// HashingFailure reports that the hashing algorithm itself failed, or that a
// stored hash could not be parsed. Callers must fail the whole operation.
type HashingFailure struct {
	Op  string
	Err error
}

func (e *HashingFailure) Error() string {
	return fmt.Sprintf("hashing failure during %s: %v", e.Op, e.Err)
}

func (e *HashingFailure) Unwrap() error { return e.Err }

// Hasher hashes and verifies secrets (passwords, security answers) with bcrypt.
type Hasher struct {
	cost int
}

func NewHasher() *Hasher {
	return &Hasher{cost: Cost}
}

// Hash returns a salted bcrypt hash of secret. Two calls with the same secret
// produce different hashes.
func (h *Hasher) Hash(secret string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(secret), h.cost)

	if err != nil {
		return "", &HashingFailure{Op: "hash", Err: err}
	}

	return string(hash), nil
}

// Verify reports whether secret matches storedHash. A mismatch is (false, nil);
// a malformed hash is (false, *HashingFailure).
func (h *Hasher) Verify(secret, storedHash string) (bool, error) {
	err := bcrypt.CompareHashAndPassword([]byte(storedHash), []byte(secret))

	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, bcrypt.ErrMismatchedHashAndPassword):
		return false, nil
	default:
		return false, &HashingFailure{Op: "verify", Err: err}
	}
}
