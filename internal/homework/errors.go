package homework

import (
	"errors"
	"fmt"
)

// MaxImageBytes is the per-image size ceiling for submissions.
const MaxImageBytes = 2 << 20 // 2 MiB

var (
	ErrNoImages           = errors.New("submission requires at least one image")
	ErrStudentNotFound    = errors.New("student not found")
	ErrAssignmentNotFound = errors.New("assignment not found")
	ErrAssignmentClosed   = errors.New("assignment is closed")
	ErrSubmissionNotFound = errors.New("submission not found")
	ErrNotTargeted        = errors.New("student is not targeted by this assignment")
)

// ImageTooLargeError names the offending image so the caller can retry with
// a smaller capture instead of resending the whole batch.
type ImageTooLargeError struct {
	Index int
	Size  int
}

func (e *ImageTooLargeError) Error() string {
	return fmt.Sprintf("image %d exceeds %d bytes (got %d)", e.Index, MaxImageBytes, e.Size)
}
