package models

import (
	"time"

	"gorm.io/gorm"
)

// Employee is a staff record. It may be linked to a User account but does not
// have to be (not every employee signs in).
type Employee struct {
	ID        uint `gorm:"primaryKey"`
	CreatedAt time.Time
	UpdatedAt time.Time
	DeletedAt gorm.DeletedAt `gorm:"index"`
	FirstName string     `gorm:"size:128;not null"`
	LastName  string     `gorm:"size:128;not null"`
	Email     string     `gorm:"size:255"`
	Phone     string     `gorm:"size:64"`
	Position  string     `gorm:"size:128"`
	HiredAt   *time.Time
	UserID    *uint `gorm:"uniqueIndex"`
	User      *User `gorm:"foreignKey:UserID;constraint:OnUpdate:CASCADE,OnDelete:SET NULL;"`
}
