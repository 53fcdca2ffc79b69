package auth

import "golang.org/x/crypto/bcrypt"

// Hasher implements PasswordHasher with bcrypt.
type Hasher struct {
	cost int
}

// NewHasher creates a Hasher with the default bcrypt cost.
func NewHasher() *Hasher {
	return &Hasher{cost: bcrypt.DefaultCost}
}

// HashPassword derives a salted one-way digest of plaintext. The salt is
// randomized per call, so two digests of the same password differ.
func (h *Hasher) HashPassword(plaintext string) (string, error) {
	digest, err := bcrypt.GenerateFromPassword([]byte(plaintext), h.cost)
	if err != nil {
		return "", err
	}
	return string(digest), nil
}

// CheckPassword reports whether plaintext matches digest. The comparison is
// constant-time; a wrong password is a normal false, not an error.
func (h *Hasher) CheckPassword(plaintext, digest string) bool {
	return bcrypt.CompareHashAndPassword([]byte(digest), []byte(plaintext)) == nil
}
