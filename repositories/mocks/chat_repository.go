package mocks

import (
	"time"

	"Majanaaber/models"

	"github.com/stretchr/testify/mock"
)

// ChatRepository is a testify mock of repositories.ChatRepository.
type ChatRepository struct {
	mock.Mock
}

func (m *ChatRepository) GetBuildingMessages(buildingID string) ([]models.Message, error) {
	args := m.Called(buildingID)
	return args.Get(0).([]models.Message), args.Error(1)
}

func (m *ChatRepository) GetConversationMessages(conversationID string, limit int) ([]models.Message, error) {
	args := m.Called(conversationID, limit)
	return args.Get(0).([]models.Message), args.Error(1)
}

func (m *ChatRepository) GetMessageWithRelations(messageID string) (models.Message, error) {
	args := m.Called(messageID)
	return args.Get(0).(models.Message), args.Error(1)
}

func (m *ChatRepository) GetMessageSnippet(messageID string) (*models.MessageSnippet, error) {
	args := m.Called(messageID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.MessageSnippet), args.Error(1)
}

func (m *ChatRepository) SaveMessage(message *models.Message) error {
	args := m.Called(message)
	return args.Error(0)
}

func (m *ChatRepository) DeleteMessage(messageID string) error {
	args := m.Called(messageID)
	return args.Error(0)
}

func (m *ChatRepository) SoftDeleteMessage(messageID string) error {
	args := m.Called(messageID)
	return args.Error(0)
}

func (m *ChatRepository) UpdateMessageContent(messageID, content string, editedAt time.Time) error {
	args := m.Called(messageID, content, editedAt)
	return args.Error(0)
}

func (m *ChatRepository) AddReaction(reaction *models.Reaction) error {
	args := m.Called(reaction)
	return args.Error(0)
}

func (m *ChatRepository) RemoveReaction(messageID, userID, emoji string) error {
	args := m.Called(messageID, userID, emoji)
	return args.Error(0)
}

func (m *ChatRepository) AddReadReceipt(receipt *models.ReadReceipt) error {
	args := m.Called(receipt)
	return args.Error(0)
}

func (m *ChatRepository) AddAttachment(attachment *models.Attachment) error {
	args := m.Called(attachment)
	return args.Error(0)
}
