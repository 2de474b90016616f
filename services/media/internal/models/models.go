package models

import (
	"time"

	"github.com/google/uuid"
)

type Media struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey"     json:"id"`
	UserID       uuid.UUID `gorm:"type:uuid;index;not null" json:"userId"`
	OriginalName string    `gorm:"not null"                 json:"originalName"`
	MimeType     string    `gorm:"not null"                 json:"mimeType"`
	StorageKey   string    `gorm:"uniqueIndex;not null"     json:"-"`
	URL          string    `gorm:"not null"                 json:"url"`
	CreatedAt    time.Time `json:"createdAt"`
}
