package services

import (
	"sync"
	"testing"

	"Majanaaber/models"
	"Majanaaber/realtime"

	"github.com/stretchr/testify/assert"
)

type typingRecorder struct {
	mu      sync.Mutex
	signals []bool
}

func (r *typingRecorder) record(isTyping bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.signals = append(r.signals, isTyping)
}

func (r *typingRecorder) recorded() []bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]bool, len(r.signals))
	copy(out, r.signals)
	return out
}

func TestTypingStopSendsSingleFalse(t *testing.T) {
	recorder := new(typingRecorder)
	tracker := newTypingTracker(models.TypingUser{UserID: "u1"}, recorder.record)
	defer tracker.Close()

	tracker.Start()
	tracker.Stop()
	// Повторный Stop без Start ничего не шлёт
	tracker.Stop()

	assert.Equal(t, []bool{true, false}, recorder.recorded())
}

func TestTypingStopWithoutStartIsSilent(t *testing.T) {
	recorder := new(typingRecorder)
	tracker := newTypingTracker(models.TypingUser{UserID: "u1"}, recorder.record)
	defer tracker.Close()

	// Отправка сообщения вызывает Stop и у тех, кто не печатал
	tracker.Stop()
	tracker.Stop()

	assert.Empty(t, recorder.recorded())
}

func TestTypingRestartRearmsTimer(t *testing.T) {
	recorder := new(typingRecorder)
	tracker := newTypingTracker(models.TypingUser{UserID: "u1"}, recorder.record)
	defer tracker.Close()

	// Каждое нажатие шлёт true; false ещё не было
	tracker.Start()
	tracker.Start()
	tracker.Start()

	assert.Equal(t, []bool{true, true, true}, recorder.recorded())
}

func TestTypingApplyIgnoresOwnEcho(t *testing.T) {
	tracker := newTypingTracker(models.TypingUser{UserID: "u1"}, func(bool) {})
	defer tracker.Close()

	tracker.Apply(realtime.Event{Type: realtime.EventTyping, UserID: "u1", UserName: "Anna", IsTyping: true})

	assert.Empty(t, tracker.Users())
}

func TestTypingApplyTracksRemoteUsers(t *testing.T) {
	tracker := newTypingTracker(models.TypingUser{UserID: "u1"}, func(bool) {})
	defer tracker.Close()

	tracker.Apply(realtime.Event{Type: realtime.EventTyping, UserID: "u2", UserName: "Boris", IsTyping: true})
	// Повтор не дублирует запись
	tracker.Apply(realtime.Event{Type: realtime.EventTyping, UserID: "u2", UserName: "Boris", IsTyping: true})

	users := tracker.Users()
	assert.Len(t, users, 1)
	assert.Equal(t, "Boris", users[0].UserName)

	tracker.Apply(realtime.Event{Type: realtime.EventTyping, UserID: "u2", IsTyping: false})
	assert.Empty(t, tracker.Users())
}

func TestTypingCloseStopsBroadcasts(t *testing.T) {
	recorder := new(typingRecorder)
	tracker := newTypingTracker(models.TypingUser{UserID: "u1"}, recorder.record)

	tracker.Start()
	tracker.Close()
	tracker.Stop()

	// После Close не уходит ни одного сигнала
	assert.Equal(t, []bool{true}, recorder.recorded())
}
