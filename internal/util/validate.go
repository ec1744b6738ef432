package util

import (
	"fmt"
	"path/filepath"
	"strings"
)

// IsConfigured reports whether all provided values are non-empty.
func IsConfigured(values ...string) bool {
	for _, v := range values {
		if v == "" {
			return false
		}
	}
	return true
}

// ValidatePath validates a file path for security.
func ValidatePath(field, path string) error {
	if path == "" {
		return fmt.Errorf("%s: is required", field)
	}

	// Reject path traversal attempts before cleaning
	// This catches both explicit "../" and encoded variants
	if strings.Contains(path, "..") {
		return fmt.Errorf("%s: path cannot contain '..'", field)
	}

	// Clean the path to normalize it
	cleaned := filepath.Clean(path)

	// After cleaning, verify no traversal components remain
	if strings.Contains(cleaned, "..") {
		return fmt.Errorf("%s: invalid path", field)
	}

	return nil
}
