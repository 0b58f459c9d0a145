package controllers

import (
	"net/http"

	"Majanaaber/services"

	"github.com/gin-gonic/gin"
)

// ConversationController serves the conversation directory over REST: the
// enriched list and pair resolution.
type ConversationController struct {
	Chat *services.ChatService
}

func NewConversationController(chat *services.ChatService) *ConversationController {
	return &ConversationController{Chat: chat}
}

// ListConversations возвращает список бесед пользователя с собеседником,
// последним сообщением и числом непрочитанных.
func (ctl *ConversationController) ListConversations(c *gin.Context) {
	userID := c.GetString("user_id")

	conversations, err := ctl.Chat.ConversationList(userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": conversations})
}

// GetOrCreateConversation resolves the single conversation between the caller
// and other_user_id, creating it on first contact. Argument order never
// matters; the pair is stored normalized.
func (ctl *ConversationController) GetOrCreateConversation(c *gin.Context) {
	var input struct {
		OtherUserID string `json:"other_user_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	userID := c.GetString("user_id")
	if input.OtherUserID == userID {
		c.JSON(http.StatusBadRequest, gin.H{"error": "cannot open a conversation with yourself"})
		return
	}

	conversation, err := ctl.Chat.ConvRepo.GetOrCreate(userID, input.OtherUserID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": conversation})
}
