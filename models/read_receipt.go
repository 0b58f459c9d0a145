package models

import "time"

// ReadReceipt records that a user has seen a chat message. At most one per
// (message_id, user_id); senders never receipt their own messages.
type ReadReceipt struct {
	ID        string    `json:"id" gorm:"primaryKey;type:uuid;default:gen_random_uuid()"`
	MessageID string    `json:"message_id" gorm:"index;not null;uniqueIndex:idx_receipt_once,priority:1"`
	UserID    string    `json:"user_id" gorm:"not null;uniqueIndex:idx_receipt_once,priority:2"`
	ReadAt    time.Time `json:"read_at"`
}
