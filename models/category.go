package models

import "time"

// Category is a node in the product category tree. ParentID nil means root.
type Category struct {
	ID        uint `gorm:"primaryKey"`
	CreatedAt time.Time
	UpdatedAt time.Time
	Name      string `gorm:"size:128;not null;uniqueIndex:idx_cat_parent_name"`
	ParentID  *uint  `gorm:"index;uniqueIndex:idx_cat_parent_name"`
	Children  []Category `gorm:"foreignKey:ParentID"`
}
