// Package repository defines error types that are reused across multiple
// repositories. These sentinel values allow higher layers such as
// handlers to distinguish between different failure scenarios without
// inspecting driver-specific errors. For example, ErrWeekExists signals
// that a timesheet for the exact week pair already exists, while
// ErrTimesheetNotFound covers both a missing record and a record owned
// by a different user so that handlers never leak existence.
package repository

import "errors"

// ErrEmailExists is returned when registration collides with an
// already registered email address. Handlers translate this into an
// HTTP 400 response.
var ErrEmailExists = errors.New("email already exists")

// ErrUserNotFound is returned when no user matches the given id,
// email or session token.
var ErrUserNotFound = errors.New("user not found")

// ErrWeekExists is returned when a timesheet with the exact
// (user, week start, week end) combination already exists.
var ErrWeekExists = errors.New("timesheet for week already exists")

// ErrTimesheetNotFound is returned when a timesheet does not exist or
// does not belong to the acting user. The two cases are deliberately
// indistinguishable.
var ErrTimesheetNotFound = errors.New("timesheet not found")

// ErrTaskNotFound is returned when a daily task does not exist inside
// the given timesheet.
var ErrTaskNotFound = errors.New("daily task not found")
