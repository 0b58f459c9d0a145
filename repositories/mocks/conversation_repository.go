package mocks

import (
	"time"

	"Majanaaber/models"

	"github.com/stretchr/testify/mock"
)

// ConversationRepository is a testify mock of repositories.ConversationRepository.
type ConversationRepository struct {
	mock.Mock
}

func (m *ConversationRepository) GetByID(conversationID string) (models.Conversation, error) {
	args := m.Called(conversationID)
	return args.Get(0).(models.Conversation), args.Error(1)
}

func (m *ConversationRepository) GetForUser(userID string) ([]models.Conversation, error) {
	args := m.Called(userID)
	return args.Get(0).([]models.Conversation), args.Error(1)
}

func (m *ConversationRepository) GetOrCreate(userID, otherUserID string) (models.Conversation, error) {
	args := m.Called(userID, otherUserID)
	return args.Get(0).(models.Conversation), args.Error(1)
}

func (m *ConversationRepository) GetLastMessage(conversationID string) (*models.Message, error) {
	args := m.Called(conversationID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Message), args.Error(1)
}

func (m *ConversationRepository) CountMessagesFrom(conversationID, senderID string) (int64, error) {
	args := m.Called(conversationID, senderID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *ConversationRepository) CountReadByUser(conversationID, senderID, readerID string) (int64, error) {
	args := m.Called(conversationID, senderID, readerID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *ConversationRepository) TouchLastMessageAt(conversationID string, at time.Time) error {
	args := m.Called(conversationID, at)
	return args.Error(0)
}
