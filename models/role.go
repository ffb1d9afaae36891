package models

import "time"

// Role bundles permissions under a stable key (e.g. "admin"). The key is what
// gets baked into access tokens, the name is for display.
type Role struct {
	ID          uint `gorm:"primaryKey"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
	Key         string `gorm:"size:32;uniqueIndex;not null"`
	Name        string `gorm:"size:64;not null"`
	Description string `gorm:"size:255"`
	Permissions []Permission `gorm:"many2many:role_permissions;"`
}
