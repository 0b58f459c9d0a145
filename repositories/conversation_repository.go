package repositories

import (
	"time"

	"Majanaaber/models"
)

type ConversationRepository interface {
	GetByID(conversationID string) (models.Conversation, error)
	GetForUser(userID string) ([]models.Conversation, error)
	// GetOrCreate returns the single conversation for an unordered user pair,
	// creating it on first use. Call order of the two ids never matters.
	GetOrCreate(userID, otherUserID string) (models.Conversation, error)
	GetLastMessage(conversationID string) (*models.Message, error)
	CountMessagesFrom(conversationID, senderID string) (int64, error)
	// CountReadByUser counts senderID's messages in the conversation that
	// readerID has a read receipt for.
	CountReadByUser(conversationID, senderID, readerID string) (int64, error)
	TouchLastMessageAt(conversationID string, at time.Time) error
}
