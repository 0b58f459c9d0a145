package services

import (
	"strings"
	"testing"

	"Majanaaber/models"
	"Majanaaber/repositories/mocks"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"gorm.io/gorm"
)

func TestSendBuildingMessageTrimsContent(t *testing.T) {
	chatRepo := new(mocks.ChatRepository)
	chatRepo.On("SaveMessage", mock.AnythingOfType("*models.Message")).Run(func(args mock.Arguments) {
		args.Get(0).(*models.Message).ID = "m1"
	}).Return(nil)

	chat := newTestChatService(chatRepo, new(mocks.ConversationRepository), new(mocks.ProfileRepository))

	message, err := chat.SendBuildingMessage("b1", "u1", "  hello  ")
	assert.NoError(t, err)
	assert.Equal(t, "hello", message.Content)
	assert.Equal(t, "b1", *message.BuildingID)
}

func TestSendBuildingMessageLengthBoundary(t *testing.T) {
	chatRepo := new(mocks.ChatRepository)
	chatRepo.On("SaveMessage", mock.AnythingOfType("*models.Message")).Run(func(args mock.Arguments) {
		args.Get(0).(*models.Message).ID = "m1"
	}).Return(nil)

	chat := newTestChatService(chatRepo, new(mocks.ConversationRepository), new(mocks.ProfileRepository))

	// Ровно лимит проходит; лимит считается в рунах, не в байтах
	exact := strings.Repeat("ф", models.MaxMessageLength)
	_, err := chat.SendBuildingMessage("b1", "u1", exact)
	assert.NoError(t, err)

	_, err = chat.SendBuildingMessage("b1", "u1", exact+"ф")
	assert.ErrorIs(t, err, models.ErrMessageTooLong)
}

func TestAddReactionDuplicateReturnsNil(t *testing.T) {
	chatRepo := new(mocks.ChatRepository)
	chatRepo.On("AddReaction", mock.AnythingOfType("*models.Reaction")).Return(gorm.ErrDuplicatedKey)

	chat := newTestChatService(chatRepo, new(mocks.ConversationRepository), new(mocks.ProfileRepository))

	reaction, err := chat.AddReaction("building:b1", "m1", "u1", "👍")
	assert.NoError(t, err)
	assert.Nil(t, reaction)
}

func TestAddReadReceiptDuplicateReturnsNil(t *testing.T) {
	chatRepo := new(mocks.ChatRepository)
	chatRepo.On("AddReadReceipt", mock.AnythingOfType("*models.ReadReceipt")).Return(gorm.ErrDuplicatedKey)

	chat := newTestChatService(chatRepo, new(mocks.ConversationRepository), new(mocks.ProfileRepository))

	receipt, err := chat.AddReadReceipt("building:b1", "m1", "u1")
	assert.NoError(t, err)
	assert.Nil(t, receipt)
}

func TestAttachmentURLWithoutStorage(t *testing.T) {
	chat := newTestChatService(new(mocks.ChatRepository), new(mocks.ConversationRepository), new(mocks.ProfileRepository))

	_, err := chat.AttachmentURL("chat-attachments/u1/m1/file.pdf")
	assert.Error(t, err)
}
