package auth

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"strings"
)

// NewTokenKey mints an opaque bearer token key: 32 random bytes, hex
// encoded. The key carries no claims; it is only meaningful as a database
// lookup handle.
func NewTokenKey() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to generate token: %w", err)
	}
	return hex.EncodeToString(buf), nil
}

// ExtractToken pulls the bearer token out of an Authorization header value.
func ExtractToken(authHeader string) (string, error) {
	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || parts[0] != "Bearer" || parts[1] == "" {
		return "", fmt.Errorf("invalid authorization header")
	}
	return parts[1], nil
}
