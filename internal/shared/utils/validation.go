package utils

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// Size limits for user-supplied text
const (
	MaxMessageSize    = 16 * 1024 // 16KB - single chat message
	MaxNameLength     = 64        // workspace names
	MaxCredentialSize = 512       // one provider API key
)

// ValidateString checks a required string field's length in runes and
// rejects embedded NUL bytes
func ValidateString(value, fieldName string, minLen, maxLen int) error {
	if value == "" {
		return fmt.Errorf("%s is required", fieldName)
	}

	length := utf8.RuneCountInString(value)
	if length < minLen {
		return fmt.Errorf("%s must be at least %d characters", fieldName, minLen)
	}
	if length > maxLen {
		return fmt.Errorf("%s must not exceed %d characters", fieldName, maxLen)
	}

	if strings.Contains(value, "\x00") {
		return fmt.Errorf("%s contains invalid characters", fieldName)
	}
	return nil
}

// ValidateSize checks a byte payload against a limit
func ValidateSize(data []byte, fieldName string, maxSize int) error {
	if len(data) > maxSize {
		return fmt.Errorf("%s size %d exceeds maximum %d bytes", fieldName, len(data), maxSize)
	}
	return nil
}
