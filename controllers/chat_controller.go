package controllers

import (
	"errors"
	"net/http"
	"strconv"

	"Majanaaber/models"
	"Majanaaber/realtime"
	"Majanaaber/services"

	"github.com/gin-gonic/gin"
)

// ChatController serves the REST side of both chat flavors. Writes go through
// the same ChatService as the websocket sessions, so REST-originated changes
// reach live subscribers the same way.
type ChatController struct {
	Chat *services.ChatService
}

func NewChatController(chat *services.ChatService) *ChatController {
	return &ChatController{Chat: chat}
}

// GetBuildingMessages возвращает все сообщения чата дома
func (ctl *ChatController) GetBuildingMessages(c *gin.Context) {
	buildingID := c.Param("building_id")

	messages, err := ctl.Chat.ChatRepo.GetBuildingMessages(buildingID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": messages})
}

// SendBuildingMessage отправляет сообщение в чат дома
func (ctl *ChatController) SendBuildingMessage(c *gin.Context) {
	buildingID := c.Param("building_id")

	var input struct {
		Content string `json:"content" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	userID := c.GetString("user_id")
	message, err := ctl.Chat.SendBuildingMessage(buildingID, userID, input.Content)
	if err != nil {
		c.JSON(statusForChatError(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": message})
}

// DeleteBuildingMessage удаляет сообщение из чата дома без следа
func (ctl *ChatController) DeleteBuildingMessage(c *gin.Context) {
	buildingID := c.Param("building_id")
	messageID := c.Param("message_id")

	if err := ctl.Chat.DeleteBuildingMessage(buildingID, messageID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}

// GetConversationMessages returns a page of a peer conversation, newest
// first. The caller must be a participant.
func (ctl *ChatController) GetConversationMessages(c *gin.Context) {
	conversation, ok := ctl.participantConversation(c)
	if !ok {
		return
	}

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	messages, err := ctl.Chat.ChatRepo.GetConversationMessages(conversation.ID, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": messages})
}

// SendConversationMessage отправляет сообщение в личный чат. Multipart: text
// fields plus optional "files" parts become attachments.
func (ctl *ChatController) SendConversationMessage(c *gin.Context) {
	conversation, ok := ctl.participantConversation(c)
	if !ok {
		return
	}

	content := c.PostForm("content")
	replyToID := c.PostForm("reply_to_message_id")

	var files []services.FileUpload
	if form, err := c.MultipartForm(); err == nil && form != nil {
		for _, header := range form.File["files"] {
			f, err := header.Open()
			if err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": "cannot read file " + header.Filename})
				return
			}
			defer f.Close()
			files = append(files, services.FileUpload{
				FileName: header.Filename,
				FileType: header.Header.Get("Content-Type"),
				Size:     header.Size,
				Reader:   f,
			})
		}
	}

	userID := c.GetString("user_id")
	message, err := ctl.Chat.SendPeerMessage(conversation, userID, content, replyToID, files)
	if err != nil {
		c.JSON(statusForChatError(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": message})
}

// EditConversationMessage переписывает текст сообщения
func (ctl *ChatController) EditConversationMessage(c *gin.Context) {
	conversation, ok := ctl.participantConversation(c)
	if !ok {
		return
	}

	var input struct {
		Content string `json:"content" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	messageID := c.Param("message_id")
	if err := ctl.Chat.EditPeerMessage(conversation.ID, messageID, input.Content); err != nil {
		c.JSON(statusForChatError(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}

// DeleteConversationMessage tombstones the message; the row stays with
// is_deleted set.
func (ctl *ChatController) DeleteConversationMessage(c *gin.Context) {
	conversation, ok := ctl.participantConversation(c)
	if !ok {
		return
	}

	messageID := c.Param("message_id")
	if err := ctl.Chat.SoftDeletePeerMessage(conversation, messageID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}

// AddReaction ставит реакцию на сообщение. Повторная реакция тем же эмодзи
// не ошибка.
func (ctl *ChatController) AddReaction(c *gin.Context) {
	var input struct {
		Emoji string `json:"emoji" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	message, scope, ok := ctl.accessibleMessage(c)
	if !ok {
		return
	}

	userID := c.GetString("user_id")
	reaction, err := ctl.Chat.AddReaction(scope, message.ID, userID, input.Emoji)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": reaction})
}

func (ctl *ChatController) RemoveReaction(c *gin.Context) {
	emoji := c.Query("emoji")
	if emoji == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "emoji is required"})
		return
	}

	message, scope, ok := ctl.accessibleMessage(c)
	if !ok {
		return
	}

	userID := c.GetString("user_id")
	if err := ctl.Chat.RemoveReaction(scope, message.ID, userID, emoji); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}

// MarkMessageAsRead записывает отметку о прочтении. Идемпотентно; своё
// сообщение не получает отметки.
func (ctl *ChatController) MarkMessageAsRead(c *gin.Context) {
	message, scope, ok := ctl.accessibleMessage(c)
	if !ok {
		return
	}

	userID := c.GetString("user_id")
	if message.SenderID == userID || message.HasReadReceiptFrom(userID) {
		c.JSON(http.StatusOK, gin.H{"data": nil})
		return
	}

	receipt, err := ctl.Chat.AddReadReceipt(scope, message.ID, userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": receipt})
}

// accessibleMessage loads the message from the path and derives its realtime
// scope from the row itself; the scope is never taken from the client. For
// conversation messages the caller must be a participant.
func (ctl *ChatController) accessibleMessage(c *gin.Context) (models.Message, string, bool) {
	messageID := c.Param("message_id")

	message, err := ctl.Chat.ChatRepo.GetMessageWithRelations(messageID)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "message not found"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		}
		return models.Message{}, "", false
	}

	switch {
	case message.BuildingID != nil:
		return message, realtime.BuildingScope(*message.BuildingID), true

	case message.ConversationID != nil:
		conversation, err := ctl.Chat.ConvRepo.GetByID(*message.ConversationID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return models.Message{}, "", false
		}
		userID := c.GetString("user_id")
		if conversation.Participant1ID != userID && conversation.Participant2ID != userID {
			c.JSON(http.StatusForbidden, gin.H{"error": "not a participant of this conversation"})
			return models.Message{}, "", false
		}
		return message, realtime.ConversationScope(conversation.ID), true

	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "message has no scope"})
		return models.Message{}, "", false
	}
}

// GetAttachmentURL resolves a short-lived signed download URL for an
// attachment's storage key. The key itself is never a URL.
func (ctl *ChatController) GetAttachmentURL(c *gin.Context) {
	path := c.Query("path")
	if path == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "path is required"})
		return
	}

	url, err := ctl.Chat.AttachmentURL(path)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"url": url})
}

// participantConversation loads the conversation from the path and rejects
// callers who are not one of its two participants.
func (ctl *ChatController) participantConversation(c *gin.Context) (models.Conversation, bool) {
	conversationID := c.Param("conversation_id")

	conversation, err := ctl.Chat.ConvRepo.GetByID(conversationID)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "conversation not found"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		}
		return models.Conversation{}, false
	}

	userID := c.GetString("user_id")
	if conversation.Participant1ID != userID && conversation.Participant2ID != userID {
		c.JSON(http.StatusForbidden, gin.H{"error": "not a participant of this conversation"})
		return models.Conversation{}, false
	}
	return conversation, true
}

func statusForChatError(err error) int {
	switch {
	case errors.Is(err, models.ErrEmptyMessage),
		errors.Is(err, models.ErrMessageTooLong),
		errors.Is(err, models.ErrTooManyFiles):
		return http.StatusBadRequest
	case errors.Is(err, models.ErrNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// currentTypingUser builds the identity sessions carry from the auth context.
func currentTypingUser(c *gin.Context) models.TypingUser {
	return models.TypingUser{
		UserID:   c.GetString("user_id"),
		UserName: c.GetString("user_name"),
	}
}
