package models

import "time"

// Backup origins.
const (
	BackupOriginAPI     = "api"
	BackupOriginWatcher = "watcher"
)

// Backup is a registered database snapshot file in the backup directory.
// Rows with origin "watcher" were dropped into the directory externally and
// picked up by the fsnotify watcher.
type Backup struct {
	ID        string `gorm:"primaryKey;size:36"`
	CreatedAt time.Time
	UpdatedAt time.Time
	FileName  string `gorm:"size:255;not null;uniqueIndex"`
	SizeBytes int64  `gorm:"not null"`
	Origin    string `gorm:"size:16;not null;default:api"`
}
