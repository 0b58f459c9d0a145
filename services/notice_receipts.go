package services

import (
	"fmt"
	"sync"

	"Majanaaber/models"
	"Majanaaber/realtime"
	"Majanaaber/repositories"
)

// NoticeReceiptsSession tracks who has read one notice-board announcement.
// Receipts are held newest first; inbound receipt events are prepended and
// deduplicated by reader, and MarkAsRead is a database upsert so repeat opens
// never double-count.
type NoticeReceiptsSession struct {
	noticeID string
	scope    string
	user     models.TypingUser
	notices  repositories.NoticeRepository
	hub      *realtime.Hub
	sub      *realtime.Subscription
	done     chan struct{}

	mu       sync.Mutex
	receipts []models.NoticeReadReceipt
	closed   bool
	onEvent  func(realtime.Event)
}

func NewNoticeReceiptsSession(notices repositories.NoticeRepository, hub *realtime.Hub, noticeID string, user models.TypingUser) (*NoticeReceiptsSession, error) {
	receipts, err := notices.GetReceipts(noticeID)
	if err != nil {
		return nil, fmt.Errorf("load notice receipts: %w", err)
	}

	scope := realtime.NoticeScope(noticeID)
	s := &NoticeReceiptsSession{
		noticeID: noticeID,
		scope:    scope,
		user:     user,
		notices:  notices,
		hub:      hub,
		receipts: receipts,
		done:     make(chan struct{}),
	}
	s.sub = hub.Subscribe(scope)
	go s.dispatch()
	return s, nil
}

func (s *NoticeReceiptsSession) dispatch() {
	defer close(s.done)
	for event := range s.sub.C {
		if event.Type == realtime.EventNoticeReceiptAdded && event.NoticeReceipt != nil {
			s.applyReceipt(*event.NoticeReceipt)
		}

		s.mu.Lock()
		handler := s.onEvent
		s.mu.Unlock()
		if handler != nil {
			handler(event)
		}
	}
}

// applyReceipt prepends an inbound receipt, keeping newest-first order. A
// reader already in the list is skipped; that covers both our own echo and a
// duplicate delivery.
func (s *NoticeReceiptsSession) applyReceipt(receipt models.NoticeReadReceipt) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	for i := range s.receipts {
		if s.receipts[i].UserID == receipt.UserID {
			return
		}
	}
	s.receipts = append([]models.NoticeReadReceipt{receipt}, s.receipts...)
}

// MarkAsRead records that this user opened the notice. The upsert makes the
// call idempotent; the event goes out only when a row was actually created.
func (s *NoticeReceiptsSession) MarkAsRead() error {
	receipt, created, err := s.notices.UpsertReceipt(s.noticeID, s.user.UserID)
	if err != nil {
		return fmt.Errorf("mark notice as read: %w", err)
	}
	if !created {
		return nil
	}

	s.applyReceipt(*receipt)
	s.hub.Publish(realtime.Event{
		Type:          realtime.EventNoticeReceiptAdded,
		Scope:         s.scope,
		NoticeReceipt: receipt,
	})
	return nil
}

// HasRead reports whether userID appears among the readers.
func (s *NoticeReceiptsSession) HasRead(userID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.receipts {
		if s.receipts[i].UserID == userID {
			return true
		}
	}
	return false
}

// Receipts returns a copy of the reader list, newest first.
func (s *NoticeReceiptsSession) Receipts() []models.NoticeReadReceipt {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.NoticeReadReceipt, len(s.receipts))
	copy(out, s.receipts)
	return out
}

// ReadCount returns how many users have read the notice.
func (s *NoticeReceiptsSession) ReadCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.receipts)
}

func (s *NoticeReceiptsSession) SetEventHandler(handler func(realtime.Event)) {
	s.mu.Lock()
	s.onEvent = handler
	s.mu.Unlock()
}

func (s *NoticeReceiptsSession) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	s.onEvent = nil
	s.mu.Unlock()

	s.sub.Close()
	<-s.done
}
