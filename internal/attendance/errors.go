package attendance

import "errors"

var (
	ErrCodeNotFound     = errors.New("attendance code not found")
	ErrCodeInactive     = errors.New("attendance code is inactive")
	ErrCodeExpired      = errors.New("attendance code has expired")
	ErrAlreadyCheckedIn = errors.New("student already checked in today")
	ErrCodeExhausted    = errors.New("could not allocate a unique attendance code")
	ErrStudentNotFound  = errors.New("student not found")

	// ErrDuplicate is returned by repositories when an insert hits a unique
	// constraint (code value or student/class/day record).
	ErrDuplicate = errors.New("duplicate row")
)
