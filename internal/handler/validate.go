// validate.go holds the input validation helpers shared by the auth and
// timesheet handlers. Each helper returns a human-readable message that goes
// straight into the 400 response body; an empty message means the value is
// acceptable. Messages match the wire contract of the service, so they are
// asserted by tests.
package handler

import (
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"
)

var emailRegexp = regexp.MustCompile(`^\S+@\S+\.\S+$`)

func trim(s string) string { return strings.TrimSpace(s) }

const (
	nameMinLen     = 2
	nameMaxLen     = 50
	passwordMinLen = 8
	passwordMaxLen = 128
	maxDailyHours  = 24

	defaultPage  = 1
	defaultLimit = 10
)

// validateName trims the name and checks its length bounds. Length is
// measured in runes so a multi-byte name like "Çağla" counts its letters,
// not its encoding.
func validateName(raw string) (string, string) {
	name := strings.TrimSpace(raw)
	n := utf8.RuneCountInString(name)
	if n < nameMinLen {
		return "", "Name must be at least 2 characters long"
	}
	if n > nameMaxLen {
		return "", "Name cannot exceed 50 characters"
	}
	return name, ""
}

// validateEmail normalizes the email (trim + lower-case) and checks the
// basic local@domain shape.
func validateEmail(raw string) (string, string) {
	email := strings.ToLower(strings.TrimSpace(raw))
	if !emailRegexp.MatchString(email) {
		return "", "Please provide a valid email address"
	}
	return email, ""
}

// validatePassword checks the password length bounds. The raw password is
// never trimmed: leading or trailing spaces are part of the secret.
func validatePassword(raw string) string {
	if len(raw) < passwordMinLen {
		return "Password must be at least 8 characters long"
	}
	if len(raw) > passwordMaxLen {
		return "Password cannot exceed 128 characters"
	}
	return ""
}

// validateHours checks the inclusive [0,24] bound.
func validateHours(h float64) string {
	if h < 0 || h > maxDailyHours {
		return "Hours must be a number between 0 and 24"
	}
	return ""
}

// parseDate accepts a plain date or an RFC 3339 timestamp and normalizes the
// result to UTC midnight of that day.
func parseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	var t time.Time
	var err error
	if t, err = time.Parse("2006-01-02", s); err != nil {
		if t, err = time.Parse(time.RFC3339, s); err != nil {
			return time.Time{}, false
		}
	}
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), true
}

// parsePagination turns raw query values into a (page, limit) pair. Absent,
// non-numeric or sub-1 values fall back to the defaults 1/10.
func parsePagination(pageStr, limitStr string) (int, int) {
	page := defaultPage
	if n, err := strconv.Atoi(strings.TrimSpace(pageStr)); err == nil && n >= 1 {
		page = n
	}
	limit := defaultLimit
	if n, err := strconv.Atoi(strings.TrimSpace(limitStr)); err == nil && n >= 1 {
		limit = n
	}
	return page, limit
}

// totalPages is ceil(totalItems/limit), never below 1 so an empty result set
// still reports one (empty) page.
func totalPages(totalItems, limit int) int {
	if totalItems <= 0 {
		return 1
	}
	return (totalItems + limit - 1) / limit
}

// clampPage pulls an out-of-range page back to the last existing page.
func clampPage(page, pages int) int {
	if page > pages {
		return pages
	}
	return page
}
