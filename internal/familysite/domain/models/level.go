package models

import (
	"strconv"
	"strings"
)

const (
	// AnonymousLevel is the level of a viewer without a session.
	AnonymousLevel = 0
	// DefaultLevel is assumed whenever a stored level is missing or unparsable.
	DefaultLevel = 1
)

// ParseLevel converts a stored level value. When raw is empty or not an
// integer it returns DefaultLevel and false.
func ParseLevel(raw string) (int, bool) {
	lvl, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return DefaultLevel, false
	}

	return lvl, true
}
