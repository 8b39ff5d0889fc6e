package helpers

import (
	"crypto/rand"
	"encoding/base64"
)

// GenToken returns a URL-safe random string from n bytes of entropy. Used for
// password-reset tokens (32 bytes) and rotated initialization codes; treat the
// result as a bearer credential and keep it out of logs.
func GenToken(n int) (string, error) {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}
