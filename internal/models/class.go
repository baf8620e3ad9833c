package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Class struct {
	ID        string `gorm:"type:uuid;primaryKey"`
	AcademyID string `gorm:"index"`
	Name      string
	Active    bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (c *Class) BeforeCreate(tx *gorm.DB) (err error) {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	return nil
}

// ClassSchedule holds one start time per weekday. Weekday follows
// time.Weekday (0 = Sunday). StartTime is zero-padded "HH:MM".
type ClassSchedule struct {
	ID        uint   `gorm:"primaryKey"`
	ClassID   string `gorm:"uniqueIndex:uniq_class_weekday"`
	Weekday   int    `gorm:"uniqueIndex:uniq_class_weekday"`
	StartTime string `gorm:"size:5"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

// ClassStudent maps a student to the classes they are enrolled in.
type ClassStudent struct {
	ID        uint   `gorm:"primaryKey"`
	ClassID   string `gorm:"uniqueIndex:uniq_class_student"`
	StudentID string `gorm:"uniqueIndex:uniq_class_student"`
	CreatedAt time.Time
}
