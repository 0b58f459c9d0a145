package mocks

import (
	"Majanaaber/models"

	"github.com/stretchr/testify/mock"
)

// NoticeRepository is a testify mock of repositories.NoticeRepository.
type NoticeRepository struct {
	mock.Mock
}

func (m *NoticeRepository) GetReceipts(noticeID string) ([]models.NoticeReadReceipt, error) {
	args := m.Called(noticeID)
	return args.Get(0).([]models.NoticeReadReceipt), args.Error(1)
}

func (m *NoticeRepository) UpsertReceipt(noticeID, userID string) (*models.NoticeReadReceipt, bool, error) {
	args := m.Called(noticeID, userID)
	if args.Get(0) == nil {
		return nil, args.Bool(1), args.Error(2)
	}
	return args.Get(0).(*models.NoticeReadReceipt), args.Bool(1), args.Error(2)
}

func (m *NoticeRepository) CountReceipts(noticeID string) (int64, error) {
	args := m.Called(noticeID)
	return args.Get(0).(int64), args.Error(1)
}
