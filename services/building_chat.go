package services

import (
	"fmt"
	"log"
	"sync"

	"Majanaaber/models"
	"Majanaaber/realtime"
)

// BuildingChatSession is the live state of one building-wide chat for one
// connected user: the ordered message list, who is typing, and the operations
// the chat UI invokes. It owns exactly one hub subscription, torn down by
// Close; a single dispatch goroutine applies inbound events in delivery
// order.
//
// Sends have no optimistic append here: the created event echoed back through
// the subscription is the only path by which the sender's own message shows
// up, same as for every other subscriber.
type BuildingChatSession struct {
	buildingID string
	scope      string
	user       models.TypingUser
	chat       *ChatService
	sub        *realtime.Subscription
	typing     *typingTracker
	done       chan struct{}

	mu       sync.Mutex
	messages []models.Message
	closed   bool
	onEvent  func(realtime.Event)
}

// NewBuildingChatSession bulk-loads the building's messages, subscribes to
// its scope and starts the dispatch loop.
func NewBuildingChatSession(chat *ChatService, buildingID string, user models.TypingUser) (*BuildingChatSession, error) {
	messages, err := chat.ChatRepo.GetBuildingMessages(buildingID)
	if err != nil {
		return nil, fmt.Errorf("load building chat: %w", err)
	}

	scope := realtime.BuildingScope(buildingID)
	s := &BuildingChatSession{
		buildingID: buildingID,
		scope:      scope,
		user:       user,
		chat:       chat,
		messages:   messages,
		done:       make(chan struct{}),
	}
	s.typing = newTypingTracker(user, func(isTyping bool) {
		chat.Hub.Publish(realtime.Event{
			Type:     realtime.EventTyping,
			Scope:    scope,
			UserID:   user.UserID,
			UserName: user.UserName,
			IsTyping: isTyping,
		})
	})
	s.sub = chat.Hub.Subscribe(scope)
	go s.dispatch()
	return s, nil
}

func (s *BuildingChatSession) dispatch() {
	defer close(s.done)
	for event := range s.sub.C {
		s.apply(event)

		s.mu.Lock()
		handler := s.onEvent
		s.mu.Unlock()
		if handler != nil {
			handler(event)
		}
	}
}

// apply folds one inbound event into local state. Self-originated echoes are
// applied too; every transform is idempotent so they cannot duplicate.
func (s *BuildingChatSession) apply(event realtime.Event) {
	switch event.Type {
	case realtime.EventMessageCreated:
		s.applyCreated(event.MessageID)

	case realtime.EventMessageDeleted:
		s.removeLocal(event.MessageID)

	case realtime.EventReactionAdded:
		if event.Reaction != nil {
			s.applyReactionAdded(event.MessageID, *event.Reaction)
		}

	case realtime.EventReactionRemoved:
		s.applyReactionRemoved(event.MessageID, event.UserID, event.Emoji)

	case realtime.EventReadReceiptAdded:
		if event.Receipt != nil {
			s.applyReceiptAdded(event.MessageID, *event.Receipt)
		}

	case realtime.EventTyping:
		s.typing.Apply(event)
	}
}

// applyCreated re-fetches the inserted row with its relations and slots it
// into the list. The event itself carries only the id.
func (s *BuildingChatSession) applyCreated(messageID string) {
	message, err := s.chat.ChatRepo.GetMessageWithRelations(messageID)
	if err != nil {
		log.Printf("[BuildingChat] failed to fetch message %s: %v", messageID, err)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	if i := indexOfMessage(s.messages, messageID); i >= 0 {
		s.messages[i] = message
		return
	}
	s.messages = insertByCreatedAt(s.messages, message)
}

func (s *BuildingChatSession) removeLocal(messageID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if i := indexOfMessage(s.messages, messageID); i >= 0 {
		s.messages = append(s.messages[:i], s.messages[i+1:]...)
	}
}

func (s *BuildingChatSession) applyReactionAdded(messageID string, reaction models.Reaction) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if i := indexOfMessage(s.messages, messageID); i >= 0 {
		m := &s.messages[i]
		if !m.HasReactionFrom(reaction.UserID, reaction.Emoji) {
			m.Reactions = append(m.Reactions, reaction)
		}
	}
}

func (s *BuildingChatSession) applyReactionRemoved(messageID, userID, emoji string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if i := indexOfMessage(s.messages, messageID); i >= 0 {
		m := &s.messages[i]
		kept := m.Reactions[:0]
		for _, r := range m.Reactions {
			if r.UserID == userID && r.Emoji == emoji {
				continue
			}
			kept = append(kept, r)
		}
		m.Reactions = kept
	}
}

func (s *BuildingChatSession) applyReceiptAdded(messageID string, receipt models.ReadReceipt) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if i := indexOfMessage(s.messages, messageID); i >= 0 {
		m := &s.messages[i]
		if !m.HasReadReceiptFrom(receipt.UserID) {
			m.ReadReceipts = append(m.ReadReceipts, receipt)
		}
	}
}

// SendMessage validates, stops the typing signal and performs the insert.
// The message reappears via the created event, not an optimistic append.
func (s *BuildingChatSession) SendMessage(content string) error {
	if _, err := validateContent(content, false); err != nil {
		return err
	}
	s.typing.Stop()

	_, err := s.chat.SendBuildingMessage(s.buildingID, s.user.UserID, content)
	return err
}

// DeleteMessage drops the message locally and remotely. Best effort: local
// removal is not rolled back when the remote delete fails.
func (s *BuildingChatSession) DeleteMessage(messageID string) error {
	s.removeLocal(messageID)
	return s.chat.DeleteBuildingMessage(s.buildingID, messageID)
}

func (s *BuildingChatSession) AddReaction(messageID, emoji string) error {
	reaction, err := s.chat.AddReaction(s.scope, messageID, s.user.UserID, emoji)
	if err != nil {
		return err
	}
	if reaction != nil {
		s.applyReactionAdded(messageID, *reaction)
	}
	return nil
}

func (s *BuildingChatSession) RemoveReaction(messageID, emoji string) error {
	if err := s.chat.RemoveReaction(s.scope, messageID, s.user.UserID, emoji); err != nil {
		return err
	}
	s.applyReactionRemoved(messageID, s.user.UserID, emoji)
	return nil
}

// MarkMessageAsRead records that the user saw a message. No-ops for the
// user's own messages and for messages already receipted.
func (s *BuildingChatSession) MarkMessageAsRead(messageID string) error {
	s.mu.Lock()
	i := indexOfMessage(s.messages, messageID)
	if i < 0 {
		s.mu.Unlock()
		return nil
	}
	m := s.messages[i]
	if m.SenderID == s.user.UserID || m.HasReadReceiptFrom(s.user.UserID) {
		s.mu.Unlock()
		return nil
	}
	s.mu.Unlock()

	receipt, err := s.chat.AddReadReceipt(s.scope, messageID, s.user.UserID)
	if err != nil {
		return err
	}
	if receipt != nil {
		s.applyReceiptAdded(messageID, *receipt)
	}
	return nil
}

func (s *BuildingChatSession) HandleTypingStart() { s.typing.Start() }
func (s *BuildingChatSession) HandleTypingStop()  { s.typing.Stop() }

// Messages returns a copy of the current message list, oldest first.
func (s *BuildingChatSession) Messages() []models.Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.Message, len(s.messages))
	copy(out, s.messages)
	return out
}

// TypingUsers returns the remote users currently typing.
func (s *BuildingChatSession) TypingUsers() []models.TypingUser {
	return s.typing.Users()
}

// SetEventHandler registers a callback invoked after each applied event,
// used by the websocket layer to relay updates to the browser.
func (s *BuildingChatSession) SetEventHandler(handler func(realtime.Event)) {
	s.mu.Lock()
	s.onEvent = handler
	s.mu.Unlock()
}

// Close tears down the subscription and timers and waits for the dispatch
// loop to drain. Late fetch results arriving after Close are discarded.
func (s *BuildingChatSession) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	s.onEvent = nil
	s.mu.Unlock()

	s.typing.Close()
	s.sub.Close()
	<-s.done
}

// indexOfMessage finds a message by id, -1 when absent.
func indexOfMessage(messages []models.Message, messageID string) int {
	for i := range messages {
		if messages[i].ID == messageID {
			return i
		}
	}
	return -1
}

// insertByCreatedAt keeps the ascending created_at order when an event
// arrives late.
func insertByCreatedAt(messages []models.Message, message models.Message) []models.Message {
	i := len(messages)
	for i > 0 && messages[i-1].CreatedAt.After(message.CreatedAt) {
		i--
	}
	messages = append(messages, models.Message{})
	copy(messages[i+1:], messages[i:])
	messages[i] = message
	return messages
}
