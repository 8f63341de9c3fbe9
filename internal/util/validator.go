package util

import (
	"fmt"
	"regexp"
	"strconv"
)

var usernameRe = regexp.MustCompile(`^[A-Za-z0-9_]{3,32}$`)

// ValidateUsername: 3-32 letters, digits or underscores.
func ValidateUsername(username string) error {
	if !usernameRe.MatchString(username) {
		return fmt.Errorf("username must be 3-32 letters, digits or underscores")
	}
	return nil
}

// ValidatePassword: 8-72 bytes (bcrypt ignores anything longer).
func ValidatePassword(pwd string) error {
	if len(pwd) < 8 {
		return fmt.Errorf("password must be at least 8 characters")
	}
	if len(pwd) > 72 {
		return fmt.Errorf("password must be at most 72 bytes")
	}
	return nil
}

// MaxPage is the highest page number accepted from a query string.
const MaxPage = 100_000

// IntParam parses a positive integer, falling back to def when s is empty or
// invalid and capping at max when max > 0.
func IntParam(s string, def, max int) int {
	n, err := strconv.Atoi(s)
	if err != nil || n <= 0 {
		n = def
	}
	if max > 0 && n > max {
		n = max
	}
	return n
}

// BoolParam parses "true"/"false"/"1"/"0"; ok is false when s is not a boolean.
func BoolParam(s string) (value bool, ok bool) {
	b, err := strconv.ParseBool(s)
	if err != nil {
		return false, false
	}
	return b, true
}
