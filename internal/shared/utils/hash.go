package utils

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"github.com/bytedance/sonic"
)

// Hash returns the hex SHA-256 of data
func Hash(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// Fingerprint hashes the JSON encoding of v. Map keys are sorted so equal
// values always give the same fingerprint.
func Fingerprint(v any) (string, error) {
	data, err := sonic.ConfigStd.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("failed to marshal JSON: %w", err)
	}
	return Hash(data), nil
}

// ShortHash truncates a hash for display
func ShortHash(full string) string {
	if len(full) < 16 {
		return full
	}
	return full[:16]
}
