package security

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// GenerateNumericCode returns a random numeric string of the given length.
// Bytes past the largest multiple of ten are rejected so every digit is
// equally likely.
func GenerateNumericCode(length int) (string, error) {
	if length <= 0 {
		return "", fmt.Errorf("length must be positive")
	}

	digits := make([]byte, 0, length)
	buf := make([]byte, length)
	for len(digits) < length {
		if _, err := rand.Read(buf); err != nil {
			return "", fmt.Errorf("generate code: %w", err)
		}
		for _, b := range buf {
			if b >= 250 || len(digits) == length {
				continue
			}
			digits = append(digits, '0'+b%10)
		}
	}

	return string(digits), nil
}

// HashToken calculates a SHA-256 hash of the provided value. Verification
// codes are stored hashed so the recovery store never holds them in clear.
func HashToken(value string) string {
	sum := sha256.Sum256([]byte(value))
	return hex.EncodeToString(sum[:])
}
