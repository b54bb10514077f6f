// SPDX-License-Identifier: MIT
package models

import (
	"time"

	"gorm.io/gorm"
)

// Project is a smart SVG project and its settings
type Project struct {
	ID   string `gorm:"primaryKey;size:36"` // UUID
	Name string `gorm:"not null"`
	// "logo", "icon", "favicon" or "illustration"
	Kind string `gorm:"not null;index"`
	// JSON envelope of the project settings
	Config    string         `gorm:"type:text"`
	Phase     string         `gorm:"default:empty"`
	CreatedAt time.Time
	UpdatedAt time.Time
	DeletedAt gorm.DeletedAt `gorm:"index"`

	// Relationships
	Variants  []Variant  `gorm:"foreignKey:ProjectID;constraint:OnDelete:CASCADE"`
	Artifacts []Artifact `gorm:"foreignKey:ProjectID"`
}

// Variant holds the state of one device of a project
type Variant struct {
	ID        uint   `gorm:"primaryKey"`
	ProjectID string `gorm:"size:36;not null;uniqueIndex:idx_variant_device"`
	Device    string `gorm:"size:16;not null;uniqueIndex:idx_variant_device"`
	// JSON texts, palettes, edits and locks
	State     string `gorm:"type:text"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Artifact is a composed smart SVG kept in artifact storage
type Artifact struct {
	ID          uint   `gorm:"primaryKey"`
	ProjectID   string `gorm:"size:36;not null;index"`
	StorageKey  string `gorm:"not null"`
	StorageType string `gorm:"default:local"`
	Size        int64
	CreatedAt   time.Time `gorm:"index"`
}

// TableName overrides for consistent naming
func (Project) TableName() string {
	return "projects"
}

func (Variant) TableName() string {
	return "variants"
}

func (Artifact) TableName() string {
	return "artifacts"
}

// All lists every model for migrations
func All() []any {
	return []any{&Project{}, &Variant{}, &Artifact{}}
}
