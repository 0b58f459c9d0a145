package models

import "time"

// Conversation is a 1:1 thread between two users. The participant pair is
// stored normalized (Participant1ID < Participant2ID) so one pair of users can
// only ever map to one row.
type Conversation struct {
	ID             string    `json:"id" gorm:"primaryKey;type:uuid;default:gen_random_uuid()"`
	Participant1ID string    `json:"participant1_id" gorm:"not null;uniqueIndex:idx_conversation_pair,priority:1"`
	Participant2ID string    `json:"participant2_id" gorm:"not null;uniqueIndex:idx_conversation_pair,priority:2"`
	LastMessageAt  time.Time `json:"last_message_at"`
	CreatedAt      time.Time `json:"created_at"`

	// Client-computed fields for the conversation list.
	OtherParticipant *Profile `json:"other_participant,omitempty" gorm:"-"`
	LastMessage      *Message `json:"last_message,omitempty" gorm:"-"`
	UnreadCount      int64    `json:"unread_count" gorm:"-"`
}

// OtherParticipantID returns the participant that is not userID.
func (c *Conversation) OtherParticipantID(userID string) string {
	if c.Participant1ID == userID {
		return c.Participant2ID
	}
	return c.Participant1ID
}

// NormalizeParticipants orders a user pair so lookups are call-order
// independent.
func NormalizeParticipants(a, b string) (string, string) {
	if a > b {
		return b, a
	}
	return a, b
}
