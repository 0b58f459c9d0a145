package models

import "time"

// Attachment is a file attached to a peer message. FilePath is an opaque
// storage key; download URLs are signed on demand and never stored.
type Attachment struct {
	ID        string    `json:"id" gorm:"primaryKey;type:uuid;default:gen_random_uuid()"`
	MessageID string    `json:"message_id" gorm:"index;not null"`
	FileName  string    `json:"file_name"`
	FilePath  string    `json:"file_path"`
	FileType  string    `json:"file_type"`
	FileSize  int64     `json:"file_size"`
	CreatedAt time.Time `json:"created_at"`
}
