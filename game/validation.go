package game

import (
	"fmt"
	"regexp"
	"strings"
)

var (
	// validUsernameRE matches valid usernames: 1-16 chars, starts with letter,
	// contains only letters, numbers, hyphens, or underscores.
	validUsernameRE = regexp.MustCompile(`^[a-zA-Z][a-zA-Z0-9_-]{0,15}$`)

	// reservedUsernames collide with record field names.
	reservedUsernames = map[string]bool{
		"id":    true,
		"class": true,
	}
)

// InvalidUsernameError is returned when a username fails validation.
type InvalidUsernameError struct {
	Username string
}

func (e InvalidUsernameError) Error() string {
	return fmt.Sprintf("Username '%s' is invalid, please try again.", e.Username)
}

// validateUsername checks if a username is valid.
// Returns nil if valid, or an InvalidUsernameError describing the problem.
func validateUsername(name string) error {
	if reservedUsernames[strings.ToLower(name)] || !validUsernameRE.MatchString(name) {
		return InvalidUsernameError{Username: name}
	}
	return nil
}
