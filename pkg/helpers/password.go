package helpers

import "golang.org/x/crypto/bcrypt"

// HashPassword hashes a plain text password with bcrypt at the default cost
// (10). Hashing is CPU-bound; callers run it on their own request goroutine.
func HashPassword(plain string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(plain), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// CompareHashAndPassword compares a bcrypt hash with a plain password
func CompareHashAndPassword(hash string, plain string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain)) == nil
}
