package profile

import (
	"errors"
	"fmt"
)

const maxNameLen = 64

// ErrInvalidName reports a profile name that cannot be used as a directory.
var ErrInvalidName = errors.New("invalid profile name")

// ValidateName accepts 1 to 64 characters of lowercase letters, digits,
// '-' and '_'. The name becomes a directory under the state home.
func ValidateName(name string) error {
	switch {
	case name == "":
		return fmt.Errorf("%w: empty", ErrInvalidName)
	case len(name) > maxNameLen:
		return fmt.Errorf("%w: %q is longer than %d characters", ErrInvalidName, name, maxNameLen)
	}
	for _, r := range name {
		if !validNameRune(r) {
			return fmt.Errorf("%w: %q contains %q; use a-z, 0-9, '-' or '_'", ErrInvalidName, name, r)
		}
	}
	return nil
}

func validNameRune(r rune) bool {
	return r >= 'a' && r <= 'z' || r >= '0' && r <= '9' || r == '-' || r == '_'
}
