package models

import "time"

// Permission is an atomic capability key. The closed set of keys lives in
// pkg/permissions; rows are synced against it at startup.
type Permission struct {
	ID          uint `gorm:"primaryKey"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
	Key         string `gorm:"size:64;uniqueIndex;not null"`
	Description string `gorm:"size:255"`
}
