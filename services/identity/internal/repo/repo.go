package repo

import (
	"errors"

	"gorm.io/gorm"
)

var (
	ErrUserExists   = errors.New("user already exists")
	ErrTokenInvalid = errors.New("refresh token invalid or expired")
)

type GormRepo struct {
	DB *gorm.DB
}
