package attendance

import (
	"context"
	"time"

	"github.com/hagwonhq/academy_backend_v1/internal/models"
)

// Repository persists attendance state. Lookups return (nil, nil) when the
// row does not exist; writes return ErrDuplicate on unique-constraint hits.
type Repository interface {
	// CreateCode persists a new active code and retires the student's
	// previously active ones in the same transaction. On failure nothing
	// changes, so a student never loses a working code to a failed mint.
	CreateCode(ctx context.Context, code *models.AttendanceCode) error
	SaveCode(ctx context.Context, code *models.AttendanceCode) error
	CodeByValue(ctx context.Context, code string) (*models.AttendanceCode, error)
	// CodeByStudent returns the student's most recently issued code in any
	// state, or nil.
	CodeByStudent(ctx context.Context, studentID string) (*models.AttendanceCode, error)
	DeactivateCodes(ctx context.Context, studentID string) error

	CreateRecord(ctx context.Context, rec *models.AttendanceRecord) error
	RecordForDay(ctx context.Context, studentID, classID, day string) (*models.AttendanceRecord, error)

	ScheduleFor(ctx context.Context, classID string, weekday time.Weekday) (*models.ClassSchedule, error)
	AcademyTimezone(ctx context.Context, academyID string) (string, error)
	StudentExists(ctx context.Context, studentID string) (bool, error)
}
