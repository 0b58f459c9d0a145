package realtime

import (
	"time"

	"Majanaaber/models"
)

// Event types carried on a channel. One tagged stream covers everything a
// scope can observe: inserts, edits, deletes, reactions, receipts and typing.
const (
	EventMessageCreated      = "message_created"
	EventMessageUpdated      = "message_updated"
	EventMessageDeleted      = "message_deleted"
	EventReactionAdded       = "reaction_added"
	EventReactionRemoved     = "reaction_removed"
	EventReadReceiptAdded    = "read_receipt_added"
	EventNoticeReceiptAdded  = "notice_receipt_added"
	EventTyping              = "typing"
	EventConversationChanged = "conversation_changed"
)

// Event is one realtime notification on a scope. Type selects which payload
// fields are meaningful. message_created carries only the MessageID: receivers
// re-fetch the row with its relations, so the event stays small and the
// projection they append is always the authoritative joined one.
type Event struct {
	Type  string `json:"type"`
	Scope string `json:"scope"`

	MessageID string     `json:"message_id,omitempty"`
	Content   string     `json:"content,omitempty"`
	EditedAt  *time.Time `json:"edited_at,omitempty"`

	Reaction      *models.Reaction          `json:"reaction,omitempty"`
	Receipt       *models.ReadReceipt       `json:"receipt,omitempty"`
	NoticeReceipt *models.NoticeReadReceipt `json:"notice_receipt,omitempty"`

	UserID   string `json:"user_id,omitempty"`
	UserName string `json:"user_name,omitempty"`
	Emoji    string `json:"emoji,omitempty"`
	IsTyping bool   `json:"is_typing,omitempty"`
}

// Scope name builders. A session owns exactly one scope at a time.
func BuildingScope(buildingID string) string { return "building:" + buildingID }
func ConversationScope(convID string) string { return "conversation:" + convID }
func NoticeScope(noticeID string) string     { return "notice:" + noticeID }
func UserScope(userID string) string         { return "user:" + userID }
