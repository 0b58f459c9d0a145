package repositories

import "Majanaaber/models"

type NoticeRepository interface {
	// GetReceipts returns a notice's read receipts, newest first, with reader
	// profiles loaded.
	GetReceipts(noticeID string) ([]models.NoticeReadReceipt, error)
	// UpsertReceipt records that userID read the notice. The second return is
	// false when a receipt already existed (repeat calls are no-ops).
	UpsertReceipt(noticeID, userID string) (*models.NoticeReadReceipt, bool, error)
	CountReceipts(noticeID string) (int64, error)
}
