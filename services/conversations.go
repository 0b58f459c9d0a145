package services

import (
	"fmt"
	"log"
	"sync"

	"Majanaaber/models"
	"Majanaaber/realtime"
)

// ConversationDirectory is one user's live conversation list, enriched with
// the other participant's profile, the last message and an unread count per
// row. It subscribes to the user's personal scope and reloads the whole list
// whenever any of their conversations changes; per-row deltas are not worth
// the bookkeeping at the list sizes involved.
type ConversationDirectory struct {
	user models.TypingUser
	chat *ChatService
	sub  *realtime.Subscription
	done chan struct{}

	mu            sync.Mutex
	conversations []models.Conversation
	closed        bool
	onEvent       func(realtime.Event)
}

func NewConversationDirectory(chat *ChatService, user models.TypingUser) (*ConversationDirectory, error) {
	d := &ConversationDirectory{
		user: user,
		chat: chat,
		done: make(chan struct{}),
	}

	conversations, err := chat.ConversationList(user.UserID)
	if err != nil {
		return nil, fmt.Errorf("load conversations: %w", err)
	}
	d.conversations = conversations

	d.sub = chat.Hub.Subscribe(realtime.UserScope(user.UserID))
	go d.dispatch()
	return d, nil
}

func (d *ConversationDirectory) dispatch() {
	defer close(d.done)
	for event := range d.sub.C {
		if event.Type == realtime.EventConversationChanged {
			d.reload()
		}

		d.mu.Lock()
		handler := d.onEvent
		d.mu.Unlock()
		if handler != nil {
			handler(event)
		}
	}
}

func (d *ConversationDirectory) reload() {
	conversations, err := d.chat.ConversationList(d.user.UserID)
	if err != nil {
		log.Printf("[Conversations] reload failed for %s: %v", d.user.UserID, err)
		return
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return
	}
	d.conversations = conversations
}

// GetOrCreateConversation resolves the single conversation between this user
// and otherUserID, creating it on first contact, and refreshes the list so a
// new row is visible immediately.
func (d *ConversationDirectory) GetOrCreateConversation(otherUserID string) (models.Conversation, error) {
	if otherUserID == d.user.UserID {
		return models.Conversation{}, fmt.Errorf("cannot open a conversation with yourself")
	}

	conversation, err := d.chat.ConvRepo.GetOrCreate(d.user.UserID, otherUserID)
	if err != nil {
		return models.Conversation{}, fmt.Errorf("get or create conversation: %w", err)
	}

	d.reload()
	return conversation, nil
}

// Conversations returns a copy of the current list, in the repository's
// order (most recently active first).
func (d *ConversationDirectory) Conversations() []models.Conversation {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]models.Conversation, len(d.conversations))
	copy(out, d.conversations)
	return out
}

func (d *ConversationDirectory) SetEventHandler(handler func(realtime.Event)) {
	d.mu.Lock()
	d.onEvent = handler
	d.mu.Unlock()
}

func (d *ConversationDirectory) Close() {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return
	}
	d.closed = true
	d.onEvent = nil
	d.mu.Unlock()

	d.sub.Close()
	<-d.done
}
