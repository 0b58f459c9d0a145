package controllers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"Majanaaber/models"
	"Majanaaber/realtime"
	"Majanaaber/repositories/mocks"
	"Majanaaber/services"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

// fakeAuth подставляет пользователя вместо настоящего JWT middleware
func fakeAuth(userID, userName string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set("user_id", userID)
		c.Set("user_name", userName)
		c.Next()
	}
}

func newTestRouter(chatRepo *mocks.ChatRepository, convRepo *mocks.ConversationRepository, userID string) *gin.Engine {
	gin.SetMode(gin.TestMode)

	hub := realtime.NewHub()
	go hub.Run()
	chat := services.NewChatService(chatRepo, convRepo, new(mocks.ProfileRepository), hub, nil, nil)
	ctl := NewChatController(chat)

	r := gin.New()
	r.Use(fakeAuth(userID, "Anna"))
	r.GET("/buildings/:building_id/messages", ctl.GetBuildingMessages)
	r.POST("/buildings/:building_id/messages", ctl.SendBuildingMessage)
	r.GET("/conversations/:conversation_id/messages", ctl.GetConversationMessages)
	r.POST("/messages/:message_id/read", ctl.MarkMessageAsRead)
	r.POST("/messages/:message_id/reactions", ctl.AddReaction)
	r.DELETE("/messages/:message_id/reactions", ctl.RemoveReaction)
	return r
}

func TestGetBuildingMessages(t *testing.T) {
	chatRepo := new(mocks.ChatRepository)
	chatRepo.On("GetBuildingMessages", "b1").Return([]models.Message{
		{ID: "m1", Content: "hello"},
	}, nil)

	r := newTestRouter(chatRepo, new(mocks.ConversationRepository), "u1")

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/buildings/b1/messages", nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var response struct {
		Data []models.Message `json:"data"`
	}
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Len(t, response.Data, 1)
	assert.Equal(t, "m1", response.Data[0].ID)
}

func TestSendBuildingMessage(t *testing.T) {
	chatRepo := new(mocks.ChatRepository)
	chatRepo.On("SaveMessage", mock.AnythingOfType("*models.Message")).Run(func(args mock.Arguments) {
		args.Get(0).(*models.Message).ID = "m1"
	}).Return(nil)

	r := newTestRouter(chatRepo, new(mocks.ConversationRepository), "u1")

	body, _ := json.Marshal(gin.H{"content": "hello"})
	w := httptest.NewRecorder()
	req, _ := http.NewRequest("POST", "/buildings/b1/messages", bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestSendBuildingMessageTooLong(t *testing.T) {
	chatRepo := new(mocks.ChatRepository)

	r := newTestRouter(chatRepo, new(mocks.ConversationRepository), "u1")

	body, _ := json.Marshal(gin.H{"content": strings.Repeat("a", models.MaxMessageLength+1)})
	w := httptest.NewRecorder()
	req, _ := http.NewRequest("POST", "/buildings/b1/messages", bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	chatRepo.AssertNotCalled(t, "SaveMessage", mock.Anything)
}

func TestGetConversationMessagesRequiresParticipant(t *testing.T) {
	convRepo := new(mocks.ConversationRepository)
	convRepo.On("GetByID", "c1").Return(models.Conversation{
		ID: "c1", Participant1ID: "u2", Participant2ID: "u3",
	}, nil)

	// u1 не участник беседы
	r := newTestRouter(new(mocks.ChatRepository), convRepo, "u1")

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/conversations/c1/messages", nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestGetConversationMessagesNotFound(t *testing.T) {
	convRepo := new(mocks.ConversationRepository)
	convRepo.On("GetByID", "missing").Return(models.Conversation{}, models.ErrNotFound)

	r := newTestRouter(new(mocks.ChatRepository), convRepo, "u1")

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/conversations/missing/messages", nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestMarkMessageAsReadIdempotentOverREST(t *testing.T) {
	buildingID := "b1"
	chatRepo := new(mocks.ChatRepository)
	chatRepo.On("GetMessageWithRelations", "m1").Return(models.Message{
		ID: "m1", BuildingID: &buildingID, SenderID: "u2",
	}, nil)
	chatRepo.On("AddReadReceipt", mock.AnythingOfType("*models.ReadReceipt")).Return(nil)

	r := newTestRouter(chatRepo, new(mocks.ConversationRepository), "u1")

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("POST", "/messages/m1/read", nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestMarkOwnMessageAsReadIsNoOp(t *testing.T) {
	buildingID := "b1"
	chatRepo := new(mocks.ChatRepository)
	chatRepo.On("GetMessageWithRelations", "m1").Return(models.Message{
		ID: "m1", BuildingID: &buildingID, SenderID: "u1",
	}, nil)

	// Своё сообщение не получает отметки о прочтении
	r := newTestRouter(chatRepo, new(mocks.ConversationRepository), "u1")

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("POST", "/messages/m1/read", nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	chatRepo.AssertNotCalled(t, "AddReadReceipt", mock.Anything)
}

func TestAddReactionRequiresParticipant(t *testing.T) {
	conversationID := "c1"
	chatRepo := new(mocks.ChatRepository)
	chatRepo.On("GetMessageWithRelations", "m1").Return(models.Message{
		ID: "m1", ConversationID: &conversationID, SenderID: "u2",
	}, nil)
	convRepo := new(mocks.ConversationRepository)
	convRepo.On("GetByID", "c1").Return(models.Conversation{
		ID: "c1", Participant1ID: "u2", Participant2ID: "u3",
	}, nil)

	// u1 не участник беседы: область действия выводится из самой строки
	r := newTestRouter(chatRepo, convRepo, "u1")

	body, _ := json.Marshal(gin.H{"emoji": "👍"})
	w := httptest.NewRecorder()
	req, _ := http.NewRequest("POST", "/messages/m1/reactions", bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusForbidden, w.Code)
	chatRepo.AssertNotCalled(t, "AddReaction", mock.Anything)
}

func TestAddReactionUnknownMessage(t *testing.T) {
	chatRepo := new(mocks.ChatRepository)
	chatRepo.On("GetMessageWithRelations", "missing").Return(models.Message{}, models.ErrNotFound)

	r := newTestRouter(chatRepo, new(mocks.ConversationRepository), "u1")

	body, _ := json.Marshal(gin.H{"emoji": "👍"})
	w := httptest.NewRecorder()
	req, _ := http.NewRequest("POST", "/messages/missing/reactions", bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}
