package models

import "time"

// Session is the pipeline scope: one conversation context and at most one
// in-flight run per (project, optional node) pair.
type Session struct {
	ID        string `gorm:"primaryKey;size:36"`
	ProjectID string `gorm:"size:36;not null;index:idx_session_project_node,unique"`
	NodeID    string `gorm:"size:255;not null;default:'';index:idx_session_project_node,unique"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

// ScopeKey identifies the conversation context and serialization unit for
// this session.
func (s *Session) ScopeKey() string {
	if s.NodeID == "" {
		return "project:" + s.ProjectID
	}
	return "project:" + s.ProjectID + ":node:" + s.NodeID
}
