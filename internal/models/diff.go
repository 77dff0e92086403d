package models

import "time"

// Diff status values. Transitions are one-directional:
// approved_by_reviewer -> committed or approved_by_reviewer -> rejected_by_human.
// Both committed and rejected_by_human are terminal.
const (
	DiffApprovedByReviewer = "approved_by_reviewer"
	DiffRejectedByHuman    = "rejected_by_human"
	DiffCommitted          = "committed"
)

// Diff is the durable, reviewable unit of change. Rows are never deleted;
// outside Status, CommittedRevision, HumanFeedback and the test-result
// cache, a Diff is immutable once created.
type Diff struct {
	ID        string `gorm:"primaryKey;size:36"`
	SessionID string `gorm:"size:36;not null;index"`
	ProjectID string `gorm:"size:36;not null;index"`

	BaseRevision string `gorm:"size:64;not null"`
	TargetBranch string `gorm:"size:255;not null"`

	PatchText         string `gorm:"type:text;not null"`
	Description       string `gorm:"type:text;not null"`
	ReviewerReasoning string `gorm:"type:text;not null"`
	GeneratorPrompt   string `gorm:"type:text;not null"`
	CommitMessage     string `gorm:"type:text;not null"`

	Status            string `gorm:"size:32;not null;index"`
	HumanFeedback     string `gorm:"type:text"`
	CommittedRevision string `gorm:"size:64"`

	TestResults string `gorm:"type:text"`
	TestsRunAt  *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Terminal reports whether the diff can accept no further status changes.
func (d *Diff) Terminal() bool {
	return d.Status == DiffCommitted || d.Status == DiffRejectedByHuman
}
