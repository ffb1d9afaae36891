package models

import (
	"time"

	"gorm.io/gorm"
)

// User is an account that can sign in. Passwords are stored as bcrypt hashes
// and expire; an expired password blocks login until it is reset.
type User struct {
	ID                uint `gorm:"primaryKey"`
	CreatedAt         time.Time
	UpdatedAt         time.Time
	DeletedAt         gorm.DeletedAt `gorm:"index"`
	Username          string     `gorm:"size:255;not null;unique"`
	Email             string     `gorm:"size:255;not null;unique"`
	PasswordHash      []byte     `gorm:"not null"`
	PasswordExpiresAt time.Time  `gorm:"not null"`
	LastLoginAt       *time.Time
	RoleID            uint `gorm:"index;not null"`
	Role              Role `gorm:"foreignKey:RoleID;references:ID"`
}
