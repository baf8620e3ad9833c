package homework

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/hagwonhq/academy_backend_v1/internal/grader"
	"github.com/hagwonhq/academy_backend_v1/internal/models"
	"github.com/hagwonhq/academy_backend_v1/internal/queue"
)

// Notifier pushes grading outcomes to connected students. The websocket hub
// implements it in the server process; the standalone worker runs without
// one.
type Notifier interface {
	HomeworkGraded(studentID string, sub *models.HomeworkSubmission)
}

// Service owns the submit-now, grade-later pipeline and assignment
// targeting.
type Service struct {
	repo     Repository
	queue    queue.Queue
	notifier Notifier
	log      zerolog.Logger
	now      func() time.Time
}

func NewService(repo Repository, q queue.Queue, notifier Notifier, log zerolog.Logger) *Service {
	return &Service{repo: repo, queue: q, notifier: notifier, log: log, now: time.Now}
}

type SubmitInput struct {
	StudentID    string
	AssignmentID string
	Images       [][]byte
}

// Submit validates and persists a submission with its images, enqueues
// grading and returns immediately: the caller acknowledges the student
// before any score exists.
func (s *Service) Submit(ctx context.Context, in SubmitInput) (*models.HomeworkSubmission, error) {
	if len(in.Images) == 0 {
		return nil, ErrNoImages
	}
	for i, img := range in.Images {
		if len(img) > MaxImageBytes {
			return nil, &ImageTooLargeError{Index: i, Size: len(img)}
		}
	}

	student, err := s.repo.StudentByID(ctx, in.StudentID)
	if err != nil {
		return nil, err
	}
	if student == nil {
		return nil, ErrStudentNotFound
	}

	if in.AssignmentID != "" {
		assignment, err := s.repo.AssignmentByID(ctx, in.AssignmentID)
		if err != nil {
			return nil, err
		}
		if assignment == nil {
			return nil, ErrAssignmentNotFound
		}
		if assignment.Status != models.AssignmentActive {
			return nil, ErrAssignmentClosed
		}
		if assignment.TargetType == models.TargetTypeSpecific {
			target, err := s.repo.TargetFor(ctx, in.AssignmentID, in.StudentID)
			if err != nil {
				return nil, err
			}
			if target == nil {
				return nil, ErrNotTargeted
			}
		}
	}

	sub := &models.HomeworkSubmission{
		StudentID:    in.StudentID,
		AcademyID:    student.AcademyID,
		AssignmentID: in.AssignmentID,
		Status:       models.SubmissionPending,
		SubmittedAt:  s.now().UTC(),
	}
	images := make([]models.HomeworkImage, 0, len(in.Images))
	for i, img := range in.Images {
		images = append(images, models.HomeworkImage{
			Position: i,
			Size:     len(img),
			Data:     img,
		})
	}
	if err := s.repo.CreateSubmission(ctx, sub, images); err != nil {
		return nil, err
	}

	// Fire and forget: the submission row is already durable, a lost
	// message only delays scoring until the grader is re-run.
	if s.queue != nil {
		msg := queue.Message{Type: "grade", Body: []byte(sub.ID)}
		if err := s.queue.Publish(ctx, msg); err != nil {
			s.log.Warn().Err(err).Str("submission_id", sub.ID).Msg("failed to enqueue grading")
		}
	}
	return sub, nil
}

// Submission returns a submission by id.
func (s *Service) Submission(ctx context.Context, id string) (*models.HomeworkSubmission, error) {
	sub, err := s.repo.SubmissionByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if sub == nil {
		return nil, ErrSubmissionNotFound
	}
	return sub, nil
}

// Images returns the stored image payloads for a submission in position
// order.
func (s *Service) Images(ctx context.Context, submissionID string) ([]models.HomeworkImage, error) {
	return s.repo.ImagesBySubmission(ctx, submissionID)
}

// ApplyGrade records a validated grading result on the submission and, when
// it is linked to an assignment, advances the student's target to submitted.
// Re-applying to an already graded submission keeps the stored scores but
// still reconciles the target, so a retry after a partial failure finishes
// the job instead of short-circuiting.
func (s *Service) ApplyGrade(ctx context.Context, submissionID string, res grader.Result) (*models.HomeworkSubmission, error) {
	sub, err := s.repo.SubmissionByID(ctx, submissionID)
	if err != nil {
		return nil, err
	}
	if sub == nil {
		return nil, ErrSubmissionNotFound
	}

	graded := sub.Status == models.SubmissionGraded
	if !graded {
		sub.Status = models.SubmissionGraded
		sub.Completeness = &res.Completeness
		sub.Accuracy = &res.Accuracy
		sub.Effort = &res.Effort
		sub.OverallScore = &res.OverallScore
		sub.Feedback = res.Feedback
		if err := s.repo.SaveSubmission(ctx, sub); err != nil {
			return nil, err
		}
	}

	advanced := !graded
	if sub.AssignmentID != "" {
		target, err := s.repo.EnsureTarget(ctx, sub.AssignmentID, sub.StudentID)
		if err != nil {
			return nil, err
		}
		if target.Status != models.TargetSubmitted {
			target.Status = models.TargetSubmitted
			target.SubmissionID = &sub.ID
			target.Score = sub.OverallScore
			if err := s.repo.SaveTarget(ctx, target); err != nil {
				return nil, err
			}
			advanced = true
		}
	}

	if advanced && s.notifier != nil {
		s.notifier.HomeworkGraded(sub.StudentID, sub)
	}
	return sub, nil
}

// MarkGradingFailed records a terminal grading failure. The assignment
// target stays pending so the student is still shown as owing the work.
func (s *Service) MarkGradingFailed(ctx context.Context, submissionID string) error {
	sub, err := s.repo.SubmissionByID(ctx, submissionID)
	if err != nil {
		return err
	}
	if sub == nil {
		return ErrSubmissionNotFound
	}
	if sub.Status == models.SubmissionGraded {
		return nil
	}
	sub.Status = models.SubmissionFailed
	return s.repo.SaveSubmission(ctx, sub)
}

// ResolveTargets returns the active assignments a student owes as of a date:
// broadcast assignments for their academy unioned with explicitly targeted
// ones, soonest due first, newest created first among equal due dates.
// Due dates are compared by calendar day, so an assignment due at midnight
// today still counts as owed all day.
func (s *Service) ResolveTargets(ctx context.Context, studentID, academyID string, asOf time.Time) ([]models.HomeworkAssignment, error) {
	y, m, d := asOf.Date()
	dayStart := time.Date(y, m, d, 0, 0, 0, 0, asOf.Location())
	return s.repo.ActiveAssignmentsFor(ctx, studentID, academyID, dayStart)
}

// Feed groups a student's assignments the way the mobile home screen shows
// them. Overdue is a derived property of pending + past due, not a state.
type Feed struct {
	Today     []models.HomeworkAssignment
	Upcoming  []models.HomeworkAssignment
	Submitted []models.HomeworkAssignmentTarget
}

// AssignmentFeed splits owed assignments into due-today and upcoming, and
// appends the student's submitted targets with their scores.
func (s *Service) AssignmentFeed(ctx context.Context, studentID, academyID string, asOf time.Time) (*Feed, error) {
	owed, err := s.ResolveTargets(ctx, studentID, academyID, asOf)
	if err != nil {
		return nil, err
	}
	feed := &Feed{
		Today:     []models.HomeworkAssignment{},
		Upcoming:  []models.HomeworkAssignment{},
		Submitted: []models.HomeworkAssignmentTarget{},
	}
	day := asOf.Format("2006-01-02")
	for _, a := range owed {
		if a.DueDate.Format("2006-01-02") == day {
			feed.Today = append(feed.Today, a)
		} else {
			feed.Upcoming = append(feed.Upcoming, a)
		}
	}
	submitted, err := s.repo.SubmittedTargets(ctx, studentID)
	if err != nil {
		return nil, err
	}
	feed.Submitted = submitted
	return feed, nil
}

type CreateAssignmentInput struct {
	TeacherID   string
	AcademyID   string
	Title       string
	Description string
	DueDate     time.Time
	TargetType  string
	StudentIDs  []string // roster for target_type=specific
}

// CreateAssignment creates an assignment; for explicit rosters the target
// rows are created in the same transaction. Broadcast assignments get their
// target rows lazily, on first submission.
func (s *Service) CreateAssignment(ctx context.Context, in CreateAssignmentInput) (*models.HomeworkAssignment, error) {
	a := &models.HomeworkAssignment{
		TeacherID:   in.TeacherID,
		AcademyID:   in.AcademyID,
		Title:       in.Title,
		Description: in.Description,
		DueDate:     in.DueDate,
		TargetType:  in.TargetType,
		Status:      models.AssignmentActive,
	}
	var targets []models.HomeworkAssignmentTarget
	if in.TargetType == models.TargetTypeSpecific {
		for _, sid := range in.StudentIDs {
			targets = append(targets, models.HomeworkAssignmentTarget{
				StudentID: sid,
				Status:    models.TargetPending,
			})
		}
	}
	if err := s.repo.CreateAssignment(ctx, a, targets); err != nil {
		return nil, err
	}
	return a, nil
}

// CloseAssignment moves an assignment out of every student's owed list.
func (s *Service) CloseAssignment(ctx context.Context, id string) (*models.HomeworkAssignment, error) {
	a, err := s.repo.AssignmentByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if a == nil {
		return nil, ErrAssignmentNotFound
	}
	if a.Status != models.AssignmentClosed {
		a.Status = models.AssignmentClosed
		if err := s.repo.SaveAssignment(ctx, a); err != nil {
			return nil, err
		}
	}
	return a, nil
}
