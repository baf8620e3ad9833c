package models

import "time"

// RefreshToken is one row per issued refresh token, stored as a SHA-256
// digest. Rotation revokes the old row and points it at its successor via
// ReplacedByTokenID, so a replayed old token is detectable.
type RefreshToken struct {
	ID                uint      `gorm:"primaryKey"`
	TokenID           string    `gorm:"index"` // jti
	UserIDRef         string    `gorm:"index"`
	TokenHash         string    `gorm:"uniqueIndex"`
	ExpiresAt         time.Time `gorm:"index"`
	RevokedAt         *time.Time
	ReplacedByTokenID *string
	CreatedAt         time.Time
}
