package models

import (
	"time"

	"github.com/google/uuid"
)

type Post struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"     json:"id"`
	UserID    uuid.UUID `gorm:"type:uuid;index;not null" json:"userId"`
	Content   string    `gorm:"not null"                 json:"content"`
	MediaIDs  []string  `gorm:"serializer:json"          json:"mediaIds"`
	CreatedAt time.Time `json:"createdAt"`
}
