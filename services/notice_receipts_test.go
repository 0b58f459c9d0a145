package services

import (
	"testing"
	"time"

	"Majanaaber/models"
	"Majanaaber/realtime"
	"Majanaaber/repositories/mocks"

	"github.com/stretchr/testify/assert"
)

func startTestHub() *realtime.Hub {
	hub := realtime.NewHub()
	go hub.Run()
	return hub
}

func TestNoticeReceiptsLoad(t *testing.T) {
	noticeRepo := new(mocks.NoticeRepository)
	noticeRepo.On("GetReceipts", "n1").Return([]models.NoticeReadReceipt{
		{ID: "r2", NoticeID: "n1", UserID: "u2", ReadAt: time.Unix(200, 0)},
		{ID: "r1", NoticeID: "n1", UserID: "u1", ReadAt: time.Unix(100, 0)},
	}, nil)

	session, err := NewNoticeReceiptsSession(noticeRepo, startTestHub(), "n1", models.TypingUser{UserID: "u3"})
	assert.NoError(t, err)
	defer session.Close()

	assert.Equal(t, 2, session.ReadCount())
	assert.True(t, session.HasRead("u1"))
	assert.False(t, session.HasRead("u3"))
	// Новые первыми
	assert.Equal(t, "r2", session.Receipts()[0].ID)
}

func TestNoticeMarkAsReadIdempotent(t *testing.T) {
	receipt := &models.NoticeReadReceipt{ID: "r1", NoticeID: "n1", UserID: "u1", ReadAt: time.Now()}

	noticeRepo := new(mocks.NoticeRepository)
	noticeRepo.On("GetReceipts", "n1").Return([]models.NoticeReadReceipt{}, nil)
	noticeRepo.On("UpsertReceipt", "n1", "u1").Return(receipt, true, nil).Once()
	noticeRepo.On("UpsertReceipt", "n1", "u1").Return(receipt, false, nil)

	hub := startTestHub()
	reader, err := NewNoticeReceiptsSession(noticeRepo, hub, "n1", models.TypingUser{UserID: "u1"})
	assert.NoError(t, err)
	defer reader.Close()
	viewer, err := NewNoticeReceiptsSession(noticeRepo, hub, "n1", models.TypingUser{UserID: "u2"})
	assert.NoError(t, err)
	defer viewer.Close()

	assert.NoError(t, reader.MarkAsRead())
	assert.Equal(t, 1, reader.ReadCount())
	waitFor(t, func() bool { return viewer.ReadCount() == 1 }, "receipt event never arrived")

	// Повторное открытие не добавляет второй записи
	assert.NoError(t, reader.MarkAsRead())
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, 1, reader.ReadCount())
	assert.Equal(t, 1, viewer.ReadCount())
}

func TestNoticeInboundReceiptDeduplicated(t *testing.T) {
	noticeRepo := new(mocks.NoticeRepository)
	noticeRepo.On("GetReceipts", "n1").Return([]models.NoticeReadReceipt{
		{ID: "r1", NoticeID: "n1", UserID: "u1"},
	}, nil)

	hub := startTestHub()
	session, err := NewNoticeReceiptsSession(noticeRepo, hub, "n1", models.TypingUser{UserID: "u2"})
	assert.NoError(t, err)
	defer session.Close()

	// Событие о читателе, который уже в списке, игнорируется
	hub.Publish(realtime.Event{
		Type:          realtime.EventNoticeReceiptAdded,
		Scope:         realtime.NoticeScope("n1"),
		NoticeReceipt: &models.NoticeReadReceipt{ID: "r1-dup", NoticeID: "n1", UserID: "u1"},
	})
	// Новый читатель добавляется в начало
	hub.Publish(realtime.Event{
		Type:          realtime.EventNoticeReceiptAdded,
		Scope:         realtime.NoticeScope("n1"),
		NoticeReceipt: &models.NoticeReadReceipt{ID: "r3", NoticeID: "n1", UserID: "u3"},
	})

	waitFor(t, func() bool { return session.ReadCount() == 2 }, "new receipt never arrived")
	assert.Equal(t, "r3", session.Receipts()[0].ID)
}
