package services

import (
	"sync"
	"time"

	"Majanaaber/models"
	"Majanaaber/realtime"
)

// typingTTL is how long a typing signal stays valid without being refreshed.
const typingTTL = 3 * time.Second

// typingTracker owns one session's typing-indicator state: the auto-stop
// timer behind the local user's signal, and the self-expiring set of remote
// typers. Each session gets its own tracker; nothing here is shared between
// two open chats.
type typingTracker struct {
	self    models.TypingUser
	publish func(isTyping bool)

	mu     sync.Mutex
	stop   *time.Timer
	typers map[string]models.TypingUser
	expiry map[string]*time.Timer
	closed bool
}

func newTypingTracker(self models.TypingUser, publish func(isTyping bool)) *typingTracker {
	return &typingTracker{
		self:    self,
		publish: publish,
		typers:  make(map[string]models.TypingUser),
		expiry:  make(map[string]*time.Timer),
	}
}

// Start broadcasts a typing=true signal and (re)arms the timer that
// broadcasts false after typingTTL of silence. Called on every keystroke.
func (t *typingTracker) Start() {
	t.publish(true)

	t.mu.Lock()
	defer t.mu.Unlock()
	if t.closed {
		return
	}
	if t.stop != nil {
		t.stop.Stop()
	}
	t.stop = time.AfterFunc(typingTTL, t.autoStop)
}

func (t *typingTracker) autoStop() {
	t.mu.Lock()
	closed := t.closed
	t.stop = nil
	t.mu.Unlock()
	if !closed {
		t.publish(false)
	}
}

// Stop cancels the pending auto-stop and broadcasts a single typing=false.
// Without an armed timer there is nothing to stop and nothing is sent, so a
// repeated Stop (or one before any Start) stays silent.
func (t *typingTracker) Stop() {
	t.mu.Lock()
	timer := t.stop
	t.stop = nil
	closed := t.closed
	t.mu.Unlock()
	if closed || timer == nil {
		return
	}

	if !timer.Stop() {
		// The timer won the race and already broadcast false.
		return
	}
	t.publish(false)
}

// Apply folds an inbound typing event into the remote-typer set. The local
// user's own echo is ignored; a repeated true just refreshes the expiry.
func (t *typingTracker) Apply(event realtime.Event) {
	if event.UserID == t.self.UserID {
		return
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	if t.closed {
		return
	}

	userID := event.UserID
	if event.IsTyping {
		t.typers[userID] = models.TypingUser{UserID: userID, UserName: event.UserName}
		if old := t.expiry[userID]; old != nil {
			old.Stop()
		}
		t.expiry[userID] = time.AfterFunc(typingTTL, func() {
			t.mu.Lock()
			delete(t.typers, userID)
			delete(t.expiry, userID)
			t.mu.Unlock()
		})
		return
	}

	delete(t.typers, userID)
	if old := t.expiry[userID]; old != nil {
		old.Stop()
		delete(t.expiry, userID)
	}
}

// Users returns the remote users currently typing.
func (t *typingTracker) Users() []models.TypingUser {
	t.mu.Lock()
	defer t.mu.Unlock()

	users := make([]models.TypingUser, 0, len(t.typers))
	for _, u := range t.typers {
		users = append(users, u)
	}
	return users
}

// Close stops every pending timer. No broadcast is sent; the receivers'
// expiry handles a vanished typer.
func (t *typingTracker) Close() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.closed = true
	if t.stop != nil {
		t.stop.Stop()
		t.stop = nil
	}
	for id, timer := range t.expiry {
		timer.Stop()
		delete(t.expiry, id)
	}
}
