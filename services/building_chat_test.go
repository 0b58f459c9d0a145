package services

import (
	"strings"
	"testing"
	"time"

	"Majanaaber/models"
	"Majanaaber/realtime"
	"Majanaaber/repositories/mocks"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"gorm.io/gorm"
)

func newTestChatService(chatRepo *mocks.ChatRepository, convRepo *mocks.ConversationRepository, profileRepo *mocks.ProfileRepository) *ChatService {
	hub := realtime.NewHub()
	go hub.Run()
	return NewChatService(chatRepo, convRepo, profileRepo, hub, nil, nil)
}

func waitFor(t *testing.T, condition func() bool, msg string) {
	t.Helper()
	assert.Eventually(t, condition, 2*time.Second, 10*time.Millisecond, msg)
}

func TestBuildingChatLoadsInitialMessages(t *testing.T) {
	chatRepo := new(mocks.ChatRepository)
	chatRepo.On("GetBuildingMessages", "b1").Return([]models.Message{
		{ID: "m1", Content: "first"},
		{ID: "m2", Content: "second"},
	}, nil)

	chat := newTestChatService(chatRepo, new(mocks.ConversationRepository), new(mocks.ProfileRepository))
	session, err := NewBuildingChatSession(chat, "b1", models.TypingUser{UserID: "u1", UserName: "Anna"})
	assert.NoError(t, err)
	defer session.Close()

	messages := session.Messages()
	assert.Len(t, messages, 2)
	assert.Equal(t, "m1", messages[0].ID)
}

func TestBuildingChatSendValidation(t *testing.T) {
	chatRepo := new(mocks.ChatRepository)
	chatRepo.On("GetBuildingMessages", "b1").Return([]models.Message{}, nil)

	chat := newTestChatService(chatRepo, new(mocks.ConversationRepository), new(mocks.ProfileRepository))
	session, err := NewBuildingChatSession(chat, "b1", models.TypingUser{UserID: "u1"})
	assert.NoError(t, err)
	defer session.Close()

	assert.ErrorIs(t, session.SendMessage("   "), models.ErrEmptyMessage)
	assert.ErrorIs(t, session.SendMessage(strings.Repeat("я", models.MaxMessageLength+1)), models.ErrMessageTooLong)

	// Ничего не должно было дойти до базы
	chatRepo.AssertNotCalled(t, "SaveMessage", mock.Anything)
}

func TestBuildingChatSendEchoAppearsOnce(t *testing.T) {
	chatRepo := new(mocks.ChatRepository)
	chatRepo.On("GetBuildingMessages", "b1").Return([]models.Message{}, nil)
	chatRepo.On("SaveMessage", mock.AnythingOfType("*models.Message")).Run(func(args mock.Arguments) {
		args.Get(0).(*models.Message).ID = "m1"
	}).Return(nil)
	chatRepo.On("GetMessageWithRelations", "m1").Return(models.Message{
		ID:       "m1",
		Content:  "hello",
		SenderID: "u1",
		Sender:   models.Profile{ID: "u1", FullName: "Anna"},
	}, nil)

	chat := newTestChatService(chatRepo, new(mocks.ConversationRepository), new(mocks.ProfileRepository))
	session, err := NewBuildingChatSession(chat, "b1", models.TypingUser{UserID: "u1", UserName: "Anna"})
	assert.NoError(t, err)
	defer session.Close()

	assert.NoError(t, session.SendMessage("hello"))

	waitFor(t, func() bool { return len(session.Messages()) == 1 }, "echo never arrived")

	// Повторная доставка того же события не дублирует сообщение
	chat.Hub.Publish(realtime.Event{
		Type:      realtime.EventMessageCreated,
		Scope:     realtime.BuildingScope("b1"),
		MessageID: "m1",
	})
	time.Sleep(100 * time.Millisecond)
	assert.Len(t, session.Messages(), 1)
}

func TestBuildingChatTwoSubscribersConverge(t *testing.T) {
	chatRepo := new(mocks.ChatRepository)
	chatRepo.On("GetBuildingMessages", "b1").Return([]models.Message{}, nil)
	chatRepo.On("SaveMessage", mock.AnythingOfType("*models.Message")).Run(func(args mock.Arguments) {
		args.Get(0).(*models.Message).ID = "m1"
	}).Return(nil)
	chatRepo.On("GetMessageWithRelations", "m1").Return(models.Message{ID: "m1", Content: "hi", SenderID: "u1"}, nil)

	chat := newTestChatService(chatRepo, new(mocks.ConversationRepository), new(mocks.ProfileRepository))

	sender, err := NewBuildingChatSession(chat, "b1", models.TypingUser{UserID: "u1", UserName: "Anna"})
	assert.NoError(t, err)
	defer sender.Close()
	viewer, err := NewBuildingChatSession(chat, "b1", models.TypingUser{UserID: "u2", UserName: "Boris"})
	assert.NoError(t, err)
	defer viewer.Close()

	assert.NoError(t, sender.SendMessage("hi"))

	waitFor(t, func() bool { return len(sender.Messages()) == 1 }, "sender did not converge")
	waitFor(t, func() bool { return len(viewer.Messages()) == 1 }, "viewer did not converge")
	assert.Equal(t, sender.Messages()[0].ID, viewer.Messages()[0].ID)
}

func TestBuildingChatDeleteVanishesEverywhere(t *testing.T) {
	chatRepo := new(mocks.ChatRepository)
	chatRepo.On("GetBuildingMessages", "b1").Return([]models.Message{{ID: "m1", Content: "bye", SenderID: "u1"}}, nil)
	chatRepo.On("DeleteMessage", "m1").Return(nil)

	chat := newTestChatService(chatRepo, new(mocks.ConversationRepository), new(mocks.ProfileRepository))

	deleter, err := NewBuildingChatSession(chat, "b1", models.TypingUser{UserID: "u1"})
	assert.NoError(t, err)
	defer deleter.Close()
	viewer, err := NewBuildingChatSession(chat, "b1", models.TypingUser{UserID: "u2"})
	assert.NoError(t, err)
	defer viewer.Close()

	assert.NoError(t, deleter.DeleteMessage("m1"))

	// Жёсткое удаление: сообщение исчезает у всех, без надгробия
	assert.Empty(t, deleter.Messages())
	waitFor(t, func() bool { return len(viewer.Messages()) == 0 }, "viewer still sees the deleted message")
	chatRepo.AssertCalled(t, "DeleteMessage", "m1")
}

func TestBuildingChatDuplicateReactionSwallowed(t *testing.T) {
	chatRepo := new(mocks.ChatRepository)
	chatRepo.On("GetBuildingMessages", "b1").Return([]models.Message{{ID: "m1", SenderID: "u2"}}, nil)
	chatRepo.On("AddReaction", mock.AnythingOfType("*models.Reaction")).Return(gorm.ErrDuplicatedKey)

	chat := newTestChatService(chatRepo, new(mocks.ConversationRepository), new(mocks.ProfileRepository))
	session, err := NewBuildingChatSession(chat, "b1", models.TypingUser{UserID: "u1"})
	assert.NoError(t, err)
	defer session.Close()

	assert.NoError(t, session.AddReaction("m1", "👍"))
	assert.Empty(t, session.Messages()[0].Reactions)
}

func TestBuildingChatMarkAsReadIsIdempotent(t *testing.T) {
	chatRepo := new(mocks.ChatRepository)
	chatRepo.On("GetBuildingMessages", "b1").Return([]models.Message{{ID: "m1", SenderID: "u2"}}, nil)
	chatRepo.On("AddReadReceipt", mock.AnythingOfType("*models.ReadReceipt")).Return(nil).Once()

	chat := newTestChatService(chatRepo, new(mocks.ConversationRepository), new(mocks.ProfileRepository))
	session, err := NewBuildingChatSession(chat, "b1", models.TypingUser{UserID: "u1"})
	assert.NoError(t, err)
	defer session.Close()

	assert.NoError(t, session.MarkMessageAsRead("m1"))
	waitFor(t, func() bool { return session.Messages()[0].HasReadReceiptFrom("u1") }, "receipt not applied")

	// Второй вызов не пишет в базу
	assert.NoError(t, session.MarkMessageAsRead("m1"))
	assert.Len(t, session.Messages()[0].ReadReceipts, 1)
	chatRepo.AssertExpectations(t)
}

func TestBuildingChatMarkOwnMessageNoop(t *testing.T) {
	chatRepo := new(mocks.ChatRepository)
	chatRepo.On("GetBuildingMessages", "b1").Return([]models.Message{{ID: "m1", SenderID: "u1"}}, nil)

	chat := newTestChatService(chatRepo, new(mocks.ConversationRepository), new(mocks.ProfileRepository))
	session, err := NewBuildingChatSession(chat, "b1", models.TypingUser{UserID: "u1"})
	assert.NoError(t, err)
	defer session.Close()

	assert.NoError(t, session.MarkMessageAsRead("m1"))
	chatRepo.AssertNotCalled(t, "AddReadReceipt", mock.Anything)
}

func TestBuildingChatTypingVisibleToOthers(t *testing.T) {
	chatRepo := new(mocks.ChatRepository)
	chatRepo.On("GetBuildingMessages", "b1").Return([]models.Message{}, nil)

	chat := newTestChatService(chatRepo, new(mocks.ConversationRepository), new(mocks.ProfileRepository))

	typist, err := NewBuildingChatSession(chat, "b1", models.TypingUser{UserID: "u1", UserName: "Anna"})
	assert.NoError(t, err)
	defer typist.Close()
	viewer, err := NewBuildingChatSession(chat, "b1", models.TypingUser{UserID: "u2", UserName: "Boris"})
	assert.NoError(t, err)
	defer viewer.Close()

	typist.HandleTypingStart()

	waitFor(t, func() bool { return len(viewer.TypingUsers()) == 1 }, "typing signal never arrived")
	// Собственное эхо не попадает в свой список
	assert.Empty(t, typist.TypingUsers())

	typist.HandleTypingStop()
	waitFor(t, func() bool { return len(viewer.TypingUsers()) == 0 }, "typing signal never cleared")
}
