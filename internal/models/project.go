package models

import "time"

// Project owns a git-backed source tree and all pipeline state derived
// from it. The repository lives under the configured projects directory,
// named after Slug.
type Project struct {
	ID            string `gorm:"primaryKey;size:36"`
	Name          string `gorm:"size:255;not null"`
	Slug          string `gorm:"size:255;not null;uniqueIndex"`
	Language      string `gorm:"size:50;not null;default:python"`
	SourceFile    string `gorm:"size:255;not null"`
	DefaultBranch string `gorm:"size:255;not null;default:main"`
	CreatedAt     time.Time
	UpdatedAt     time.Time
}
