package models

import "time"

// Conversation roles. Generator and reviewer turns are stored in the same
// transcript; reviewer turns are the portion cleared after a commit.
const (
	RoleUser      = "user"
	RoleGenerator = "generator"
	RoleReviewer  = "reviewer"
)

// ConversationMessage is one turn of a session's durable transcript.
// Seq is assigned by the repository and is strictly increasing per session.
type ConversationMessage struct {
	ID         string `gorm:"primaryKey;size:36"`
	SessionID  string `gorm:"size:36;not null;index"`
	Seq        int    `gorm:"not null"`
	Role       string `gorm:"size:20;not null"`
	Content    string `gorm:"type:text;not null"`
	ResultJSON string `gorm:"type:text"`
	Attempt    int    `gorm:"not null;default:0"`
	TokenUsage int    `gorm:"not null;default:0"`
	CreatedAt  time.Time
}
