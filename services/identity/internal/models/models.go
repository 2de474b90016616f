package models

import (
	"time"

	"github.com/google/uuid"
)

type User struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Username     string    `gorm:"uniqueIndex;not null" json:"username"`
	Email        string    `gorm:"uniqueIndex;not null" json:"email"`
	PasswordHash string    `gorm:"not null"             json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}

// RefreshToken is a single-use rotation token. Only the sha256 digest of the
// opaque value is stored; deletion on use is what enforces single use.
type RefreshToken struct {
	ID        uint      `gorm:"primaryKey"           json:"id"`
	TokenHash string    `gorm:"uniqueIndex;not null" json:"-"`
	UserID    uuid.UUID `gorm:"type:uuid;index;not null" json:"user_id"`
	ExpiresAt time.Time `gorm:"not null"             json:"expires_at"`
	CreatedAt time.Time `json:"created_at"`
}
