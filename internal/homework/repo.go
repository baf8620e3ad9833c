package homework

import (
	"context"
	"time"

	"github.com/hagwonhq/academy_backend_v1/internal/models"
)

// Repository persists homework state. Lookups return (nil, nil) when the row
// does not exist.
type Repository interface {
	StudentByID(ctx context.Context, id string) (*models.User, error)

	CreateAssignment(ctx context.Context, a *models.HomeworkAssignment, targets []models.HomeworkAssignmentTarget) error
	AssignmentByID(ctx context.Context, id string) (*models.HomeworkAssignment, error)
	SaveAssignment(ctx context.Context, a *models.HomeworkAssignment) error
	// ActiveAssignmentsFor returns active assignments due at or after asOf
	// that target the student, either broadcast or through an explicit
	// target row, excluding ones the student already submitted. Callers
	// pass the start of the day so due dates compare by calendar day.
	// Ordered by due date ascending then creation time descending.
	ActiveAssignmentsFor(ctx context.Context, studentID, academyID string, asOf time.Time) ([]models.HomeworkAssignment, error)

	TargetFor(ctx context.Context, assignmentID, studentID string) (*models.HomeworkAssignmentTarget, error)
	EnsureTarget(ctx context.Context, assignmentID, studentID string) (*models.HomeworkAssignmentTarget, error)
	SaveTarget(ctx context.Context, t *models.HomeworkAssignmentTarget) error
	SubmittedTargets(ctx context.Context, studentID string) ([]models.HomeworkAssignmentTarget, error)

	CreateSubmission(ctx context.Context, sub *models.HomeworkSubmission, images []models.HomeworkImage) error
	SubmissionByID(ctx context.Context, id string) (*models.HomeworkSubmission, error)
	SaveSubmission(ctx context.Context, sub *models.HomeworkSubmission) error
	ImagesBySubmission(ctx context.Context, submissionID string) ([]models.HomeworkImage, error)
}
