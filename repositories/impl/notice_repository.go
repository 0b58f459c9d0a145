package impl

import (
	"time"

	"Majanaaber/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type NoticeRepositoryImpl struct {
	DB *gorm.DB
}

func NewNoticeRepository(db *gorm.DB) *NoticeRepositoryImpl {
	return &NoticeRepositoryImpl{DB: db}
}

func (r *NoticeRepositoryImpl) GetReceipts(noticeID string) ([]models.NoticeReadReceipt, error) {
	var receipts []models.NoticeReadReceipt
	err := r.DB.Preload("Reader").
		Where("notice_id = ?", noticeID).
		Order("read_at DESC").
		Find(&receipts).Error
	return receipts, err
}

func (r *NoticeRepositoryImpl) UpsertReceipt(noticeID, userID string) (*models.NoticeReadReceipt, bool, error) {
	receipt := models.NoticeReadReceipt{
		NoticeID: noticeID,
		UserID:   userID,
		ReadAt:   time.Now(),
	}

	// ON CONFLICT DO NOTHING keeps repeated reads idempotent without a
	// separate existence check.
	result := r.DB.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "notice_id"}, {Name: "user_id"}},
		DoNothing: true,
	}).Create(&receipt)
	if result.Error != nil {
		return nil, false, result.Error
	}
	created := result.RowsAffected > 0

	var stored models.NoticeReadReceipt
	err := r.DB.Preload("Reader").
		Where("notice_id = ? AND user_id = ?", noticeID, userID).
		First(&stored).Error
	if err != nil {
		return nil, created, err
	}
	return &stored, created, nil
}

func (r *NoticeRepositoryImpl) CountReceipts(noticeID string) (int64, error) {
	var count int64
	err := r.DB.Model(&models.NoticeReadReceipt{}).
		Where("notice_id = ?", noticeID).
		Count(&count).Error
	return count, err
}
