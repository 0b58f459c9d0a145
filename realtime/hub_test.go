package realtime

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func startHub() *Hub {
	hub := NewHub()
	go hub.Run()
	return hub
}

func receiveEvent(t *testing.T, sub *Subscription) Event {
	t.Helper()
	select {
	case event := <-sub.C:
		return event
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for event")
		return Event{}
	}
}

func TestHubDeliversToScopeSubscribers(t *testing.T) {
	hub := startHub()

	sub1 := hub.Subscribe(BuildingScope("b1"))
	sub2 := hub.Subscribe(BuildingScope("b1"))
	defer sub1.Close()
	defer sub2.Close()

	hub.Publish(Event{Type: EventMessageCreated, Scope: BuildingScope("b1"), MessageID: "m1"})

	for _, sub := range []*Subscription{sub1, sub2} {
		event := receiveEvent(t, sub)
		assert.Equal(t, EventMessageCreated, event.Type)
		assert.Equal(t, "m1", event.MessageID)
	}
}

func TestHubScopesAreIsolated(t *testing.T) {
	hub := startHub()

	other := hub.Subscribe(ConversationScope("c1"))
	defer other.Close()

	hub.Publish(Event{Type: EventMessageCreated, Scope: BuildingScope("b1"), MessageID: "m1"})

	select {
	case event := <-other.C:
		t.Fatalf("event leaked across scopes: %+v", event)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestHubCloseStopsDelivery(t *testing.T) {
	hub := startHub()

	sub := hub.Subscribe(NoticeScope("n1"))
	sub.Close()

	// C закрывается после отписки
	for {
		select {
		case _, ok := <-sub.C:
			if !ok {
				return
			}
		case <-time.After(time.Second):
			t.Fatal("subscription channel was not closed")
		}
	}
}

func TestHubCloseIsIdempotent(t *testing.T) {
	hub := startHub()

	sub := hub.Subscribe(UserScope("u1"))
	sub.Close()
	sub.Close()
}

func TestScopeBuilders(t *testing.T) {
	assert.Equal(t, "building:b1", BuildingScope("b1"))
	assert.Equal(t, "conversation:c1", ConversationScope("c1"))
	assert.Equal(t, "notice:n1", NoticeScope("n1"))
	assert.Equal(t, "user:u1", UserScope("u1"))
}
