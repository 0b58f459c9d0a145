package services

import (
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"Majanaaber/models"
	"Majanaaber/realtime"

	"github.com/google/uuid"
)

// conversationPageSize bounds the initial load of a peer conversation. The
// page is fetched newest-first and reversed for display.
const conversationPageSize = 50

const localIDPrefix = "local-"

// PeerChatSession is the live state of one 1:1 conversation. It extends the
// building-chat contract with message editing, attachments and reply
// threading, and differs from it in two deliberate ways: sends are optimistic
// (a locally built entry appears before the insert round-trips and is
// reconciled with the authoritative row by id), and deletes are soft (the
// message stays as a tombstone with is_deleted set).
type PeerChatSession struct {
	conversation models.Conversation
	peerID       string
	scope        string
	user         models.TypingUser
	chat         *ChatService
	sub          *realtime.Subscription
	typing       *typingTracker
	done         chan struct{}

	mu       sync.Mutex
	messages []models.Message
	closed   bool
	onEvent  func(realtime.Event)
}

func NewPeerChatSession(chat *ChatService, conversation models.Conversation, user models.TypingUser) (*PeerChatSession, error) {
	page, err := chat.ChatRepo.GetConversationMessages(conversation.ID, conversationPageSize)
	if err != nil {
		return nil, fmt.Errorf("load conversation: %w", err)
	}

	// The page arrives newest-first; flip it so memory order is ascending.
	messages := make([]models.Message, 0, len(page))
	for i := len(page) - 1; i >= 0; i-- {
		messages = append(messages, page[i])
	}
	for i := range messages {
		messages[i].RepliedMessage = resolveSnippet(chat, messages[i].ReplyToID)
	}

	scope := realtime.ConversationScope(conversation.ID)
	s := &PeerChatSession{
		conversation: conversation,
		peerID:       conversation.OtherParticipantID(user.UserID),
		scope:        scope,
		user:         user,
		chat:         chat,
		messages:     messages,
		done:         make(chan struct{}),
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

func resolveSnippet(chat *ChatService, replyToID *string) *models.MessageSnippet {
	if replyToID == nil {
		return nil
	}
	snippet, err := chat.ChatRepo.GetMessageSnippet(*replyToID)
	if err != nil {
		log.Printf("[PeerChat] failed to resolve reply %s: %v", *replyToID, err)
		return nil
	}
	return snippet
}

func (s *PeerChatSession) dispatch() {
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

func (s *PeerChatSession) apply(event realtime.Event) {
	switch event.Type {
	case realtime.EventMessageCreated:
		s.applyCreated(event.MessageID)

	case realtime.EventMessageUpdated:
		s.applyUpdated(event.MessageID, event.Content, event.EditedAt)

	case realtime.EventMessageDeleted:
		// Soft delete: the row stays, only the flag flips.
		s.mu.Lock()
		if i := indexOfMessage(s.messages, event.MessageID); i >= 0 {
			s.messages[i].IsDeleted = true
		}
		s.mu.Unlock()

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

// applyCreated re-fetches the authoritative row. If it is the echo of our own
// optimistic send it replaces that entry (matched by id after reconciliation)
// instead of appending a duplicate.
func (s *PeerChatSession) applyCreated(messageID string) {
	message, err := s.chat.ChatRepo.GetMessageWithRelations(messageID)
	if err != nil {
		log.Printf("[PeerChat] failed to fetch message %s: %v", messageID, err)
		return
	}
	message.RepliedMessage = resolveSnippet(s.chat, message.ReplyToID)

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	if i := indexOfMessage(s.messages, messageID); i >= 0 {
		// Keep attachments already merged locally; the echo may race the
		// attachment inserts and carry fewer rows than we have.
		message.Attachments = mergeAttachments(s.messages[i].Attachments, message.Attachments)
		s.messages[i] = message
		return
	}
	// The echo of our own send can arrive between the optimistic append and
	// reconcile. Sweep the matching temporary entry so the row never shows
	// up twice; reconcile later finds the authoritative id and drops out.
	if message.SenderID == s.user.UserID {
		for i := range s.messages {
			if strings.HasPrefix(s.messages[i].ID, localIDPrefix) && s.messages[i].Content == message.Content {
				message.Attachments = mergeAttachments(s.messages[i].Attachments, message.Attachments)
				s.messages = append(s.messages[:i], s.messages[i+1:]...)
				break
			}
		}
	}
	s.messages = insertByCreatedAt(s.messages, message)
}

func (s *PeerChatSession) applyUpdated(messageID, content string, editedAt *time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if i := indexOfMessage(s.messages, messageID); i >= 0 {
		s.messages[i].Content = content
		s.messages[i].EditedAt = editedAt
	}
}

func (s *PeerChatSession) applyReactionAdded(messageID string, reaction models.Reaction) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if i := indexOfMessage(s.messages, messageID); i >= 0 {
		m := &s.messages[i]
		if !m.HasReactionFrom(reaction.UserID, reaction.Emoji) {
			m.Reactions = append(m.Reactions, reaction)
		}
	}
}

func (s *PeerChatSession) applyReactionRemoved(messageID, userID, emoji string) {
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

func (s *PeerChatSession) applyReceiptAdded(messageID string, receipt models.ReadReceipt) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if i := indexOfMessage(s.messages, messageID); i >= 0 {
		m := &s.messages[i]
		if !m.HasReadReceiptFrom(receipt.UserID) {
			m.ReadReceipts = append(m.ReadReceipts, receipt)
		}
	}
}

// SendMessage performs an optimistic send: a locally built entry (temporary
// id, cached sender name) appears immediately, the insert runs, and the entry
// is reconciled with the stored row. Content may be empty when files are
// attached; it then becomes the placeholder text.
func (s *PeerChatSession) SendMessage(content, replyToID string, files []FileUpload) error {
	if len(files) > models.MaxAttachments {
		return models.ErrTooManyFiles
	}
	text, err := validateContent(content, len(files) > 0)
	if err != nil {
		return err
	}
	s.typing.Stop()

	convID := s.conversation.ID
	now := time.Now()
	optimistic := models.Message{
		ID:             localIDPrefix + uuid.NewString(),
		ConversationID: &convID,
		SenderID:       s.user.UserID,
		Content:        text,
		CreatedAt:      now,
		Sender: models.Profile{
			ID:       s.user.UserID,
			FullName: s.user.UserName,
		},
	}
	if replyToID != "" {
		optimistic.ReplyToID = &replyToID
		optimistic.RepliedMessage = s.localSnippet(replyToID)
	}

	s.mu.Lock()
	s.messages = append(s.messages, optimistic)
	s.mu.Unlock()

	message, err := s.chat.SendPeerMessage(s.conversation, s.user.UserID, content, replyToID, files)
	if err != nil {
		s.removeLocal(optimistic.ID)
		return err
	}

	s.reconcile(optimistic.ID, message)
	return nil
}

// reconcile swaps the optimistic entry for the stored row. If the realtime
// echo already delivered the row, the temporary entry is simply dropped.
func (s *PeerChatSession) reconcile(localID string, message models.Message) {
	message.Sender = models.Profile{ID: s.user.UserID, FullName: s.user.UserName}
	message.RepliedMessage = s.localSnippet(stringOrEmpty(message.ReplyToID))

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}

	local := indexOfMessage(s.messages, localID)
	if echo := indexOfMessage(s.messages, message.ID); echo >= 0 {
		if local >= 0 {
			s.messages = append(s.messages[:local], s.messages[local+1:]...)
		}
		return
	}
	if local < 0 {
		s.messages = insertByCreatedAt(s.messages, message)
		return
	}
	message.Attachments = mergeAttachments(s.messages[local].Attachments, message.Attachments)
	s.messages[local] = message
}

// localSnippet builds a reply preview from the in-memory list, falling back
// to a fetch when the original is outside the loaded page.
func (s *PeerChatSession) localSnippet(replyToID string) *models.MessageSnippet {
	if replyToID == "" {
		return nil
	}
	s.mu.Lock()
	i := indexOfMessage(s.messages, replyToID)
	if i >= 0 {
		snippet := &models.MessageSnippet{
			ID:         s.messages[i].ID,
			Content:    s.messages[i].Content,
			SenderName: s.messages[i].Sender.FullName,
		}
		s.mu.Unlock()
		return snippet
	}
	s.mu.Unlock()
	id := replyToID
	return resolveSnippet(s.chat, &id)
}

// EditMessage rewrites a message's text. The edit is applied locally and
// broadcast; other viewers converge via the update event.
func (s *PeerChatSession) EditMessage(messageID, content string) error {
	if _, err := validateContent(content, false); err != nil {
		return err
	}
	if err := s.chat.EditPeerMessage(s.conversation.ID, messageID, content); err != nil {
		return err
	}
	return nil
}

// DeleteMessage soft-deletes: the entry stays in the list as a tombstone.
func (s *PeerChatSession) DeleteMessage(messageID string) error {
	s.mu.Lock()
	if i := indexOfMessage(s.messages, messageID); i >= 0 {
		s.messages[i].IsDeleted = true
	}
	s.mu.Unlock()

	return s.chat.SoftDeletePeerMessage(s.conversation, messageID)
}

// AddReaction checks local state before writing, on top of the duplicate-key
// swallow in the service, to avoid pointless inserts under double-clicks.
func (s *PeerChatSession) AddReaction(messageID, emoji string) error {
	s.mu.Lock()
	if i := indexOfMessage(s.messages, messageID); i >= 0 {
		if s.messages[i].HasReactionFrom(s.user.UserID, emoji) {
			s.mu.Unlock()
			return nil
		}
	}
	s.mu.Unlock()

	reaction, err := s.chat.AddReaction(s.scope, messageID, s.user.UserID, emoji)
	if err != nil {
		return err
	}
	if reaction != nil {
		s.applyReactionAdded(messageID, *reaction)
	}
	return nil
}

func (s *PeerChatSession) RemoveReaction(messageID, emoji string) error {
	if err := s.chat.RemoveReaction(s.scope, messageID, s.user.UserID, emoji); err != nil {
		return err
	}
	s.applyReactionRemoved(messageID, s.user.UserID, emoji)
	return nil
}

func (s *PeerChatSession) MarkMessageAsRead(messageID string) error {
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

func (s *PeerChatSession) HandleTypingStart() { s.typing.Start() }
func (s *PeerChatSession) HandleTypingStop()  { s.typing.Stop() }

func (s *PeerChatSession) removeLocal(messageID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if i := indexOfMessage(s.messages, messageID); i >= 0 {
		s.messages = append(s.messages[:i], s.messages[i+1:]...)
	}
}

// Messages returns a copy of the current message list, oldest first.
// Tombstoned entries are included with is_deleted set.
func (s *PeerChatSession) Messages() []models.Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.Message, len(s.messages))
	copy(out, s.messages)
	return out
}

func (s *PeerChatSession) TypingUsers() []models.TypingUser {
	return s.typing.Users()
}

// PeerID returns the other participant of the conversation.
func (s *PeerChatSession) PeerID() string { return s.peerID }

func (s *PeerChatSession) SetEventHandler(handler func(realtime.Event)) {
	s.mu.Lock()
	s.onEvent = handler
	s.mu.Unlock()
}

func (s *PeerChatSession) Close() {
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

// mergeAttachments unions two attachment lists, deduplicated by id. Keeps
// locally merged uploads when the realtime echo races them.
func mergeAttachments(local, fetched []models.Attachment) []models.Attachment {
	merged := make([]models.Attachment, 0, len(local)+len(fetched))
	seen := make(map[string]bool)
	for _, a := range append(fetched, local...) {
		if seen[a.ID] {
			continue
		}
		seen[a.ID] = true
		merged = append(merged, a)
	}
	return merged
}

func stringOrEmpty(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
