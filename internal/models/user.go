package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// User is the single canonical person entity: directors/admins, teachers
// and students all live here, distinguished by Role and scoped by Academy.
type User struct {
	ID        string `gorm:"type:uuid;primaryKey"`
	FullName  string
	Email     string `gorm:"uniqueIndex"`
	Phone     string `gorm:"size:32"`
	Password  string
	Role      string `gorm:"size:16;index"`
	AcademyID string `gorm:"index"`
	Active    bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (u *User) BeforeCreate(tx *gorm.DB) (err error) {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	return nil
}
