package models

import "time"

// Tag is a vocabulary item; UserID is nil for system tags.
type Tag struct {
	ID       string
	UserID   *string
	Name     string
	Slug     string
	IsSystem bool
}

type AchievementTag struct {
	ID            string
	AchievementID string
	TagID         string
	IsAISuggested bool
	IsConfirmed   bool
	CreatedAt     time.Time
}
