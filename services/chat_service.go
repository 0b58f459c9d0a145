package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"path/filepath"
	"strings"
	"time"
	"unicode/utf8"

	"Majanaaber/models"
	"Majanaaber/realtime"
	"Majanaaber/repositories"

	"gorm.io/gorm"
)

// Notifier pushes out-of-app notifications for new messages. Implemented by
// NotificationService; nil disables pushes.
type Notifier interface {
	NotifyNewMessage(recipientID, senderName, preview string) error
}

// FileUpload is one attachment handed to SendPeerMessage.
type FileUpload struct {
	FileName string
	FileType string
	Size     int64
	Reader   io.Reader
}

const signedURLTTL = 15 * time.Minute

// ChatService is the shared write path for both chat flavors: it validates,
// persists, publishes the realtime event and (for peer messages) notifies the
// recipient. Sessions and REST controllers both go through it, so every write
// reaches other subscribers the same way.
type ChatService struct {
	ChatRepo    repositories.ChatRepository
	ConvRepo    repositories.ConversationRepository
	ProfileRepo repositories.ProfileRepository
	Hub         *realtime.Hub
	Storage     FileStorage
	Notifier    Notifier
}

func NewChatService(
	chatRepo repositories.ChatRepository,
	convRepo repositories.ConversationRepository,
	profileRepo repositories.ProfileRepository,
	hub *realtime.Hub,
	storage FileStorage,
	notifier Notifier,
) *ChatService {
	return &ChatService{
		ChatRepo:    chatRepo,
		ConvRepo:    convRepo,
		ProfileRepo: profileRepo,
		Hub:         hub,
		Storage:     storage,
		Notifier:    notifier,
	}
}

// validateContent trims and bounds message text. With attachments present an
// empty text becomes the placeholder instead of an error.
func validateContent(content string, hasFiles bool) (string, error) {
	trimmed := strings.TrimSpace(content)
	if trimmed == "" {
		if hasFiles {
			return models.AttachmentPlaceholder, nil
		}
		return "", models.ErrEmptyMessage
	}
	if utf8.RuneCountInString(trimmed) > models.MaxMessageLength {
		return "", models.ErrMessageTooLong
	}
	return trimmed, nil
}

// SendBuildingMessage stores a building-chat message and announces it. The
// created event carries only the id; subscribers re-fetch the joined row.
func (s *ChatService) SendBuildingMessage(buildingID, senderID, content string) (models.Message, error) {
	text, err := validateContent(content, false)
	if err != nil {
		return models.Message{}, err
	}

	message := models.Message{
		BuildingID: &buildingID,
		SenderID:   senderID,
		Content:    text,
		CreatedAt:  time.Now(),
	}
	if err := s.ChatRepo.SaveMessage(&message); err != nil {
		return models.Message{}, fmt.Errorf("send message: %w", err)
	}

	s.Hub.Publish(realtime.Event{
		Type:      realtime.EventMessageCreated,
		Scope:     realtime.BuildingScope(buildingID),
		MessageID: message.ID,
	})
	return message, nil
}

// DeleteBuildingMessage removes the row outright. Building chat deletes are
// hard: the message disappears for everyone.
func (s *ChatService) DeleteBuildingMessage(buildingID, messageID string) error {
	if err := s.ChatRepo.DeleteMessage(messageID); err != nil {
		return fmt.Errorf("delete message: %w", err)
	}

	s.Hub.Publish(realtime.Event{
		Type:      realtime.EventMessageDeleted,
		Scope:     realtime.BuildingScope(buildingID),
		MessageID: messageID,
	})
	return nil
}

// AddReaction stores a reaction and announces it on scope. A duplicate insert
// means the user already reacted; it is swallowed and reported as (nil, nil).
func (s *ChatService) AddReaction(scope, messageID, userID, emoji string) (*models.Reaction, error) {
	reaction := models.Reaction{
		MessageID: messageID,
		UserID:    userID,
		Emoji:     emoji,
		CreatedAt: time.Now(),
	}
	if err := s.ChatRepo.AddReaction(&reaction); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, nil
		}
		return nil, fmt.Errorf("add reaction: %w", err)
	}

	s.Hub.Publish(realtime.Event{
		Type:      realtime.EventReactionAdded,
		Scope:     scope,
		MessageID: messageID,
		Reaction:  &reaction,
	})
	return &reaction, nil
}

func (s *ChatService) RemoveReaction(scope, messageID, userID, emoji string) error {
	if err := s.ChatRepo.RemoveReaction(messageID, userID, emoji); err != nil {
		return fmt.Errorf("remove reaction: %w", err)
	}

	s.Hub.Publish(realtime.Event{
		Type:      realtime.EventReactionRemoved,
		Scope:     scope,
		MessageID: messageID,
		UserID:    userID,
		Emoji:     emoji,
	})
	return nil
}

// AddReadReceipt stores a receipt and announces it. Duplicates are swallowed
// the same way as reactions.
func (s *ChatService) AddReadReceipt(scope, messageID, userID string) (*models.ReadReceipt, error) {
	receipt := models.ReadReceipt{
		MessageID: messageID,
		UserID:    userID,
		ReadAt:    time.Now(),
	}
	if err := s.ChatRepo.AddReadReceipt(&receipt); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, nil
		}
		return nil, fmt.Errorf("add read receipt: %w", err)
	}

	s.Hub.Publish(realtime.Event{
		Type:      realtime.EventReadReceiptAdded,
		Scope:     scope,
		MessageID: messageID,
		Receipt:   &receipt,
	})
	return &receipt, nil
}

// SendPeerMessage stores a peer-conversation message, uploads its attachments,
// bumps the conversation, announces the insert and pings both participants'
// directory scopes. The returned message carries the attachments that made it
// to storage.
func (s *ChatService) SendPeerMessage(
	conversation models.Conversation,
	senderID, content, replyToID string,
	files []FileUpload,
) (models.Message, error) {
	if len(files) > models.MaxAttachments {
		return models.Message{}, models.ErrTooManyFiles
	}
	text, err := validateContent(content, len(files) > 0)
	if err != nil {
		return models.Message{}, err
	}

	convID := conversation.ID
	message := models.Message{
		ConversationID: &convID,
		SenderID:       senderID,
		Content:        text,
		CreatedAt:      time.Now(),
	}
	if replyToID != "" {
		message.ReplyToID = &replyToID
	}
	if err := s.ChatRepo.SaveMessage(&message); err != nil {
		return models.Message{}, fmt.Errorf("send message: %w", err)
	}

	if err := s.ConvRepo.TouchLastMessageAt(convID, message.CreatedAt); err != nil {
		log.Printf("[Chat] failed to bump conversation %s: %v", convID, err)
	}

	message.Attachments = s.uploadAttachments(message.ID, senderID, files)

	s.Hub.Publish(realtime.Event{
		Type:      realtime.EventMessageCreated,
		Scope:     realtime.ConversationScope(convID),
		MessageID: message.ID,
	})
	s.publishConversationChanged(conversation)

	s.notifyPeer(conversation, senderID, text)
	return message, nil
}

// EditPeerMessage updates message text and announces the edit.
func (s *ChatService) EditPeerMessage(conversationID, messageID, content string) error {
	text, err := validateContent(content, false)
	if err != nil {
		return err
	}

	editedAt := time.Now()
	if err := s.ChatRepo.UpdateMessageContent(messageID, text, editedAt); err != nil {
		return fmt.Errorf("edit message: %w", err)
	}

	s.Hub.Publish(realtime.Event{
		Type:      realtime.EventMessageUpdated,
		Scope:     realtime.ConversationScope(conversationID),
		MessageID: messageID,
		Content:   text,
		EditedAt:  &editedAt,
	})
	return nil
}

// SoftDeletePeerMessage flips is_deleted and announces it. Peer messages stay
// as tombstones; only building messages are removed for real.
func (s *ChatService) SoftDeletePeerMessage(conversation models.Conversation, messageID string) error {
	if err := s.ChatRepo.SoftDeleteMessage(messageID); err != nil {
		return fmt.Errorf("delete message: %w", err)
	}

	s.Hub.Publish(realtime.Event{
		Type:      realtime.EventMessageDeleted,
		Scope:     realtime.ConversationScope(conversation.ID),
		MessageID: messageID,
	})
	s.publishConversationChanged(conversation)
	return nil
}

// AttachmentURL resolves a short-lived download URL for an attachment key.
func (s *ChatService) AttachmentURL(filePath string) (string, error) {
	if s.Storage == nil {
		return "", fmt.Errorf("file storage is not configured")
	}
	return s.Storage.SignedURL(filePath, signedURLTTL)
}

// uploadAttachments stores each file and inserts its row. A file that fails
// to upload is skipped with a log line; the message itself stands.
func (s *ChatService) uploadAttachments(messageID, senderID string, files []FileUpload) []models.Attachment {
	if len(files) == 0 {
		return nil
	}
	if s.Storage == nil {
		log.Printf("[Chat] file storage not configured, dropping %d attachment(s)", len(files))
		return nil
	}

	ctx := context.Background()
	var saved []models.Attachment
	for _, file := range files {
		name := filepath.Base(file.FileName)
		path := fmt.Sprintf("chat-attachments/%s/%s/%d_%s", senderID, messageID, time.Now().UnixNano(), name)

		if err := s.Storage.Upload(ctx, path, file.Reader, file.FileType); err != nil {
			log.Printf("[Chat] attachment upload failed for %s: %v", name, err)
			continue
		}

		attachment := models.Attachment{
			MessageID: messageID,
			FileName:  name,
			FilePath:  path,
			FileType:  file.FileType,
			FileSize:  file.Size,
			CreatedAt: time.Now(),
		}
		if err := s.ChatRepo.AddAttachment(&attachment); err != nil {
			log.Printf("[Chat] attachment row insert failed for %s: %v", name, err)
			continue
		}
		saved = append(saved, attachment)
	}
	return saved
}

// ConversationList loads a user's conversations with the display fields the
// directory shows: the other participant's profile, the last message and the
// unread count. A row whose enrichment fails is kept with what could be
// resolved.
func (s *ChatService) ConversationList(userID string) ([]models.Conversation, error) {
	conversations, err := s.ConvRepo.GetForUser(userID)
	if err != nil {
		return nil, err
	}

	for i := range conversations {
		c := &conversations[i]
		peerID := c.OtherParticipantID(userID)

		peer, err := s.ProfileRepo.FindByID(peerID)
		if err != nil {
			log.Printf("[Chat] peer lookup failed for %s: %v", peerID, err)
		} else {
			c.OtherParticipant = &peer
		}

		last, err := s.ConvRepo.GetLastMessage(c.ID)
		if err != nil {
			log.Printf("[Chat] last message lookup failed for %s: %v", c.ID, err)
		} else {
			c.LastMessage = last
		}

		c.UnreadCount = s.unreadCount(c.ID, peerID, userID)
	}
	return conversations, nil
}

// unreadCount is the peer's messages in the conversation minus the ones the
// user has receipted. Never negative.
func (s *ChatService) unreadCount(conversationID, peerID, userID string) int64 {
	sent, err := s.ConvRepo.CountMessagesFrom(conversationID, peerID)
	if err != nil {
		log.Printf("[Chat] unread count failed for %s: %v", conversationID, err)
		return 0
	}
	read, err := s.ConvRepo.CountReadByUser(conversationID, peerID, userID)
	if err != nil {
		log.Printf("[Chat] read count failed for %s: %v", conversationID, err)
		return 0
	}
	if read > sent {
		return 0
	}
	return sent - read
}

func (s *ChatService) publishConversationChanged(conversation models.Conversation) {
	for _, participant := range []string{conversation.Participant1ID, conversation.Participant2ID} {
		s.Hub.Publish(realtime.Event{
			Type:  realtime.EventConversationChanged,
			Scope: realtime.UserScope(participant),
		})
	}
}

func (s *ChatService) notifyPeer(conversation models.Conversation, senderID, text string) {
	if s.Notifier == nil {
		return
	}

	sender, err := s.ProfileRepo.FindByID(senderID)
	if err != nil {
		log.Printf("[Chat] sender lookup failed for notification: %v", err)
		return
	}

	preview := text
	if utf8.RuneCountInString(preview) > 80 {
		preview = string([]rune(preview)[:80]) + "…"
	}

	recipientID := conversation.OtherParticipantID(senderID)
	if err := s.Notifier.NotifyNewMessage(recipientID, sender.FullName, preview); err != nil {
		log.Printf("[Chat] push notification failed: %v", err)
	}
}
