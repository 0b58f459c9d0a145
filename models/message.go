package models

import "time"

// MaxMessageLength ограничение длины текста сообщения (в символах)
const MaxMessageLength = 1000

// AttachmentPlaceholder подставляется вместо пустого текста, когда есть файлы
const AttachmentPlaceholder = "(attached file)"

// MaxAttachments ограничение числа файлов в одном сообщении
const MaxAttachments = 5

// Message is a chat message, either building-wide (BuildingID set) or
// belonging to a peer conversation (ConversationID set). Exactly one of
// the two scopes is set.
type Message struct {
	ID             string     `json:"id" gorm:"primaryKey;type:uuid;default:gen_random_uuid()"`
	BuildingID     *string    `json:"building_id,omitempty" gorm:"index"`
	ConversationID *string    `json:"conversation_id,omitempty" gorm:"index"`
	SenderID       string     `json:"sender_id" gorm:"index;not null"`
	Content        string     `json:"content" gorm:"type:text"`
	ReplyToID      *string    `json:"reply_to_message_id,omitempty" gorm:"index"`
	IsDeleted      bool       `json:"is_deleted"`
	EditedAt       *time.Time `json:"edited_at,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`

	Sender       Profile       `json:"sender" gorm:"foreignKey:SenderID"`
	Reactions    []Reaction    `json:"reactions" gorm:"foreignKey:MessageID"`
	ReadReceipts []ReadReceipt `json:"read_receipts" gorm:"foreignKey:MessageID"`
	Attachments  []Attachment  `json:"attachments" gorm:"foreignKey:MessageID"`

	// RepliedMessage is a denormalized snippet of the message this one replies
	// to. Resolved separately, never stored. Nil when the original is gone.
	RepliedMessage *MessageSnippet `json:"replied_message,omitempty" gorm:"-"`
}

// MessageSnippet is the minimal projection used for reply previews.
type MessageSnippet struct {
	ID         string `json:"id"`
	Content    string `json:"content"`
	SenderName string `json:"sender_name"`
}

// HasReadReceiptFrom reports whether userID already has a receipt on m.
func (m *Message) HasReadReceiptFrom(userID string) bool {
	for _, r := range m.ReadReceipts {
		if r.UserID == userID {
			return true
		}
	}
	return false
}

// HasReactionFrom reports whether userID already reacted with emoji on m.
func (m *Message) HasReactionFrom(userID, emoji string) bool {
	for _, r := range m.Reactions {
		if r.UserID == userID && r.Emoji == emoji {
			return true
		}
	}
	return false
}
