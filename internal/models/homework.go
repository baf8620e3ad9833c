package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	TargetTypeAll      = "all"
	TargetTypeSpecific = "specific"

	AssignmentActive = "active"
	AssignmentClosed = "closed"

	TargetPending   = "pending"
	TargetSubmitted = "submitted"

	SubmissionPending = "pending"
	SubmissionGraded  = "graded"
	SubmissionFailed  = "failed"
)

type HomeworkAssignment struct {
	ID          string `gorm:"type:uuid;primaryKey"`
	TeacherID   string `gorm:"index"`
	AcademyID   string `gorm:"index"`
	Title       string
	Description string
	DueDate     time.Time `gorm:"index"`
	TargetType  string    `gorm:"size:16"`
	Status      string    `gorm:"size:16;index"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func (h *HomeworkAssignment) BeforeCreate(tx *gorm.DB) (err error) {
	if h.ID == "" {
		h.ID = uuid.NewString()
	}
	return nil
}

// HomeworkAssignmentTarget tracks one student owing one assignment. There is
// no stored overdue state: overdue-ness is derived at read time from the
// assignment due date while the target is still pending.
type HomeworkAssignmentTarget struct {
	ID           string `gorm:"type:uuid;primaryKey"`
	AssignmentID string `gorm:"uniqueIndex:uniq_assignment_student"`
	StudentID    string `gorm:"uniqueIndex:uniq_assignment_student"`
	Status       string `gorm:"size:16;default:'pending'"`
	SubmissionID *string
	Score        *float64
	CreatedAt    time.Time
	UpdatedAt    time.Time

	Assignment HomeworkAssignment `gorm:"foreignKey:AssignmentID"`
}

func (h *HomeworkAssignmentTarget) BeforeCreate(tx *gorm.DB) (err error) {
	if h.ID == "" {
		h.ID = uuid.NewString()
	}
	return nil
}

// HomeworkSubmission is created atomically with its images and only ever
// mutated by the grading step. Score fields stay nil until a grading payload
// passes validation; "ungraded" is never represented by a zero score.
type HomeworkSubmission struct {
	ID           string `gorm:"type:uuid;primaryKey"`
	StudentID    string `gorm:"index"`
	AcademyID    string `gorm:"index"`
	AssignmentID string // empty for free-form submissions
	Status       string `gorm:"size:16;index"`
	Completeness *float64
	Accuracy     *float64
	Effort       *float64
	OverallScore *float64
	Feedback     string
	SubmittedAt  time.Time
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func (h *HomeworkSubmission) BeforeCreate(tx *gorm.DB) (err error) {
	if h.ID == "" {
		h.ID = uuid.NewString()
	}
	return nil
}

// HomeworkImage stores one captured page. Kept separate from the submission
// row so oversized payloads never block metadata reads.
type HomeworkImage struct {
	ID           string `gorm:"type:uuid;primaryKey"`
	SubmissionID string `gorm:"index"`
	Position     int
	Size         int
	Data         []byte
	CreatedAt    time.Time
}

func (h *HomeworkImage) BeforeCreate(tx *gorm.DB) (err error) {
	if h.ID == "" {
		h.ID = uuid.NewString()
	}
	return nil
}
