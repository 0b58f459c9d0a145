package repositories

import (
	"time"

	"Majanaaber/models"
)

type ChatRepository interface {
	// GetBuildingMessages returns every message of a building chat, oldest
	// first, with sender/reactions/read receipts/attachments loaded.
	GetBuildingMessages(buildingID string) ([]models.Message, error)
	// GetConversationMessages returns the newest page of a peer conversation,
	// newest first. Callers reverse it for display.
	GetConversationMessages(conversationID string, limit int) ([]models.Message, error)
	GetMessageWithRelations(messageID string) (models.Message, error)
	// GetMessageSnippet loads the reply-preview projection of a message.
	// Returns (nil, nil) when the message no longer exists.
	GetMessageSnippet(messageID string) (*models.MessageSnippet, error)
	SaveMessage(message *models.Message) error
	DeleteMessage(messageID string) error
	SoftDeleteMessage(messageID string) error
	UpdateMessageContent(messageID, content string, editedAt time.Time) error
	AddReaction(reaction *models.Reaction) error
	RemoveReaction(messageID, userID, emoji string) error
	AddReadReceipt(receipt *models.ReadReceipt) error
	AddAttachment(attachment *models.Attachment) error
}
