package impl

import (
	"errors"
	"time"

	"Majanaaber/models"

	"gorm.io/gorm"
)

type ConversationRepositoryImpl struct {
	DB *gorm.DB
}

func NewConversationRepository(db *gorm.DB) *ConversationRepositoryImpl {
	return &ConversationRepositoryImpl{DB: db}
}

func (r *ConversationRepositoryImpl) GetByID(conversationID string) (models.Conversation, error) {
	var conversation models.Conversation
	err := r.DB.Where("id = ?", conversationID).First(&conversation).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return conversation, models.ErrNotFound
	}
	return conversation, err
}

func (r *ConversationRepositoryImpl) GetForUser(userID string) ([]models.Conversation, error) {
	var conversations []models.Conversation
	err := r.DB.
		Where("participant1_id = ? OR participant2_id = ?", userID, userID).
		Order("last_message_at DESC").
		Find(&conversations).Error
	return conversations, err
}

func (r *ConversationRepositoryImpl) GetOrCreate(userID, otherUserID string) (models.Conversation, error) {
	p1, p2 := models.NormalizeParticipants(userID, otherUserID)

	var conversation models.Conversation
	err := r.DB.
		Where("participant1_id = ? AND participant2_id = ?", p1, p2).
		FirstOrCreate(&conversation, models.Conversation{
			Participant1ID: p1,
			Participant2ID: p2,
			LastMessageAt:  time.Now(),
		}).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		// Lost a creation race; the winner's row is the one we want.
		err = r.DB.
			Where("participant1_id = ? AND participant2_id = ?", p1, p2).
			First(&conversation).Error
	}
	return conversation, err
}

func (r *ConversationRepositoryImpl) GetLastMessage(conversationID string) (*models.Message, error) {
	var message models.Message
	err := r.DB.Preload("Sender").
		Where("conversation_id = ?", conversationID).
		Order("created_at DESC").
		First(&message).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &message, nil
}

func (r *ConversationRepositoryImpl) CountMessagesFrom(conversationID, senderID string) (int64, error) {
	var count int64
	err := r.DB.Model(&models.Message{}).
		Where("conversation_id = ? AND sender_id = ?", conversationID, senderID).
		Count(&count).Error
	return count, err
}

func (r *ConversationRepositoryImpl) CountReadByUser(conversationID, senderID, readerID string) (int64, error) {
	var count int64
	err := r.DB.Model(&models.ReadReceipt{}).
		Joins("JOIN messages ON messages.id = read_receipts.message_id").
		Where("messages.conversation_id = ? AND messages.sender_id = ? AND read_receipts.user_id = ?",
			conversationID, senderID, readerID).
		Count(&count).Error
	return count, err
}

func (r *ConversationRepositoryImpl) TouchLastMessageAt(conversationID string, at time.Time) error {
	return r.DB.Model(&models.Conversation{}).
		Where("id = ?", conversationID).
		Update("last_message_at", at).Error
}
