package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Academy is a tenant. Timezone is an IANA name and drives the local
// calendar day used by attendance check-in.
type Academy struct {
	ID        string `gorm:"type:uuid;primaryKey"`
	Name      string `gorm:"uniqueIndex"`
	Timezone  string `gorm:"size:64"`
	Active    bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (a *Academy) BeforeCreate(tx *gorm.DB) (err error) {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	return nil
}
