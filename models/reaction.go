package models

import "time"

// Reaction is an emoji reaction on a message. The (message_id, user_id, emoji)
// triple is unique; duplicate inserts fail on the constraint and are swallowed
// by callers.
type Reaction struct {
	ID        string    `json:"id" gorm:"primaryKey;type:uuid;default:gen_random_uuid()"`
	MessageID string    `json:"message_id" gorm:"index;not null;uniqueIndex:idx_reaction_once,priority:1"`
	UserID    string    `json:"user_id" gorm:"not null;uniqueIndex:idx_reaction_once,priority:2"`
	Emoji     string    `json:"emoji" gorm:"type:varchar(16);not null;uniqueIndex:idx_reaction_once,priority:3"`
	CreatedAt time.Time `json:"created_at"`
}
