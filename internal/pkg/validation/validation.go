package validation

import (
	"errors"
	"regexp"
	"strconv"
	"strings"
	"time"
)

var (
	ErrInvalidID   = errors.New("id must be a positive integer")
	ErrInvalidDate = errors.New("Invalid date format")
)

// Usernames: letters, digits, dot, dash, underscore; 3 to 32 characters.
var usernameRe = regexp.MustCompile(`^[A-Za-z0-9._\-]{3,32}$`)

// dateLayouts are the accepted event date inputs: HTML date inputs and the day/month/year form.
var dateLayouts = []string{"2006-01-02", "02/01/2006", time.RFC3339}

func IsValidUsername(username string) bool {
	return usernameRe.MatchString(username)
}

// IsValidPassword requires a non-blank password that bcrypt can hash (at most 72 bytes).
func IsValidPassword(password string) bool {
	return strings.TrimSpace(password) != "" && len(password) <= 72
}

// ParseID parses a path or query id. Ids are system-assigned positive integers.
func ParseID(s string) (uint, error) {
	n, err := strconv.ParseUint(strings.TrimSpace(s), 10, 32)
	if err != nil || n == 0 {
		return 0, ErrInvalidID
	}
	return uint(n), nil
}

// ParseOptionalID parses a query id that may be absent. Returns 0 when s is empty.
func ParseOptionalID(s string) (uint, error) {
	if strings.TrimSpace(s) == "" {
		return 0, nil
	}
	return ParseID(s)
}

// ParseDate parses an event date and truncates it to the calendar day (UTC).
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			y, m, d := t.Date()
			return time.Date(y, m, d, 0, 0, 0, 0, time.UTC), nil
		}
	}
	return time.Time{}, ErrInvalidDate
}
