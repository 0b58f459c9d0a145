package impl

import (
	"errors"
	"time"

	"Majanaaber/models"

	"gorm.io/gorm"
)

type ChatRepositoryImpl struct {
	DB *gorm.DB
}

func NewChatRepository(db *gorm.DB) *ChatRepositoryImpl {
	return &ChatRepositoryImpl{DB: db}
}

func (r *ChatRepositoryImpl) withRelations(db *gorm.DB) *gorm.DB {
	return db.
		Preload("Sender").
		Preload("Reactions").
		Preload("ReadReceipts").
		Preload("Attachments")
}

func (r *ChatRepositoryImpl) GetBuildingMessages(buildingID string) ([]models.Message, error) {
	var messages []models.Message
	err := r.withRelations(r.DB).
		Where("building_id = ?", buildingID).
		Order("created_at ASC").
		Find(&messages).Error
	return messages, err
}

func (r *ChatRepositoryImpl) GetConversationMessages(conversationID string, limit int) ([]models.Message, error) {
	var messages []models.Message
	query := r.withRelations(r.DB).
		Where("conversation_id = ?", conversationID).
		Order("created_at DESC")

	if limit > 0 {
		query = query.Limit(limit)
	}

	err := query.Find(&messages).Error
	return messages, err
}

func (r *ChatRepositoryImpl) GetMessageWithRelations(messageID string) (models.Message, error) {
	var message models.Message
	err := r.withRelations(r.DB).
		Where("id = ?", messageID).
		First(&message).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return message, models.ErrNotFound
	}
	return message, err
}

func (r *ChatRepositoryImpl) GetMessageSnippet(messageID string) (*models.MessageSnippet, error) {
	var message models.Message
	err := r.DB.Preload("Sender").
		Where("id = ?", messageID).
		First(&message).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		// Replying to a deleted message shows an empty snippet, not an error.
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &models.MessageSnippet{
		ID:         message.ID,
		Content:    message.Content,
		SenderName: message.Sender.FullName,
	}, nil
}

func (r *ChatRepositoryImpl) SaveMessage(message *models.Message) error {
	return r.DB.Create(message).Error
}

func (r *ChatRepositoryImpl) DeleteMessage(messageID string) error {
	return r.DB.Where("id = ?", messageID).Delete(&models.Message{}).Error
}

func (r *ChatRepositoryImpl) SoftDeleteMessage(messageID string) error {
	return r.DB.Model(&models.Message{}).
		Where("id = ?", messageID).
		Update("is_deleted", true).Error
}

func (r *ChatRepositoryImpl) UpdateMessageContent(messageID, content string, editedAt time.Time) error {
	return r.DB.Model(&models.Message{}).
		Where("id = ?", messageID).
		Updates(map[string]interface{}{
			"content":   content,
			"edited_at": editedAt,
		}).Error
}

func (r *ChatRepositoryImpl) AddReaction(reaction *models.Reaction) error {
	return r.DB.Create(reaction).Error
}

func (r *ChatRepositoryImpl) RemoveReaction(messageID, userID, emoji string) error {
	return r.DB.
		Where("message_id = ? AND user_id = ? AND emoji = ?", messageID, userID, emoji).
		Delete(&models.Reaction{}).Error
}

func (r *ChatRepositoryImpl) AddReadReceipt(receipt *models.ReadReceipt) error {
	return r.DB.Create(receipt).Error
}

func (r *ChatRepositoryImpl) AddAttachment(attachment *models.Attachment) error {
	return r.DB.Create(attachment).Error
}
