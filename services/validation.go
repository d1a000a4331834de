// ABOUTME: Input validation functions for API parameters
// ABOUTME: Prevents path traversal via view name and log file name validation

package services

import (
	"fmt"
	"regexp"
	"strings"
)

// viewNamePattern matches reporting view names (lowercase, digits, underscores)
var viewNamePattern = regexp.MustCompile(`^[a-z0-9_]+$`)

// logFileNamePattern matches application log file names (no separators, .log or .txt)
var logFileNamePattern = regexp.MustCompile(`^[a-zA-Z0-9][a-zA-Z0-9._-]*\.(log|txt)$`)

// sanitizeForLog removes control characters from strings to prevent log injection
// when including user input in error messages
func sanitizeForLog(s string) string {
	return strings.Map(func(r rune) rune {
		if r < 32 || r == 127 {
			return -1 // Remove control characters
		}
		return r
	}, s)
}

// ValidateViewName validates that a reporting view name has a safe format.
// This prevents URL path traversal when the name is forwarded upstream.
func ValidateViewName(name string) error {
	if name == "" {
		return fmt.Errorf("view name cannot be empty")
	}
	if !viewNamePattern.MatchString(name) {
		return fmt.Errorf("invalid view name format: %s", sanitizeForLog(name))
	}
	return nil
}

// ValidateLogFileName validates that a log file name cannot escape the log
// directory. Names with path separators or leading dots are rejected.
func ValidateLogFileName(name string) error {
	if name == "" {
		return fmt.Errorf("log file name cannot be empty")
	}
	if strings.ContainsAny(name, "/\\") || strings.Contains(name, "..") {
		return fmt.Errorf("invalid log file name: %s", sanitizeForLog(name))
	}
	if !logFileNamePattern.MatchString(name) {
		return fmt.Errorf("invalid log file name format: %s", sanitizeForLog(name))
	}
	return nil
}
