package utils

import (
	"github.com/google/uuid"
)

// GenerateUUID returns a time-ordered UUID string, falling back to random
func GenerateUUID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}

// IsValidUUID reports whether the string parses as a UUID
func IsValidUUID(uuidStr string) bool {
	_, err := uuid.Parse(uuidStr)
	return err == nil
}
