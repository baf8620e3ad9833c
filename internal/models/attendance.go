package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	AttendancePresent = "PRESENT"
	AttendanceLate    = "LATE"
)

// AttendanceCode is the short numeric credential a student redeems at
// check-in. Codes are retired by flipping IsActive, never deleted, so the
// same code can be reactivated across terms.
type AttendanceCode struct {
	ID        string `gorm:"type:uuid;primaryKey"`
	StudentID string `gorm:"index"`
	AcademyID string `gorm:"index"`
	ClassID   string // empty when the code is academy-wide
	Code      string `gorm:"size:6;uniqueIndex"`
	IsActive  bool   `gorm:"index"`
	ExpiresAt *time.Time
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (a *AttendanceCode) BeforeCreate(tx *gorm.DB) (err error) {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	return nil
}

// AttendanceRecord is the append-only check-in fact. CheckInDay is the
// academy-local calendar day ("2006-01-02"); the composite unique index is
// what makes concurrent check-ins for the same student/class/day fail closed
// instead of double-inserting. ClassID is stored as "" rather than NULL so
// the index always applies.
type AttendanceRecord struct {
	ID          string `gorm:"type:uuid;primaryKey"`
	StudentID   string `gorm:"uniqueIndex:uniq_student_class_day"`
	ClassID     string `gorm:"uniqueIndex:uniq_student_class_day"`
	CheckInDay  string `gorm:"size:10;uniqueIndex:uniq_student_class_day"`
	AcademyID   string `gorm:"index"`
	Code        string `gorm:"size:6"`
	Status      string `gorm:"size:8"`
	CheckInTime time.Time
	CreatedAt   time.Time
}

func (a *AttendanceRecord) BeforeCreate(tx *gorm.DB) (err error) {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	return nil
}
