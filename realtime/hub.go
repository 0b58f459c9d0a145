package realtime

import (
	"log"
	"sync"
)

const subscriptionBuffer = 256

// Subscription is one subscriber's view of a scope. Events arrive on C until
// Close is called; a subscriber that stops draining C has events dropped, not
// delayed.
type Subscription struct {
	C <-chan Event

	hub   *Hub
	scope string
	send  chan Event

	closeOnce sync.Once
}

// Scope returns the scope this subscription is attached to.
func (s *Subscription) Scope() string { return s.scope }

// Close detaches the subscription from the hub and closes C.
func (s *Subscription) Close() {
	s.closeOnce.Do(func() {
		s.hub.unregister <- s
	})
}

// Hub routes events between publishers and scope subscribers. It is the
// in-process replacement for the hosted realtime channel service: sessions
// subscribe to one scope, writers publish tagged events, websocket clients
// relay the same stream to browsers.
type Hub struct {
	// Active subscriptions grouped by scope name.
	subscribers map[string]map[*Subscription]bool

	register   chan *Subscription
	unregister chan *Subscription
	broadcast  chan Event

	mu sync.Mutex
}

func NewHub() *Hub {
	return &Hub{
		subscribers: make(map[string]map[*Subscription]bool),
		register:    make(chan *Subscription),
		unregister:  make(chan *Subscription),
		broadcast:   make(chan Event),
	}
}

// Subscribe attaches a new subscriber to scope. Run must be active.
func (h *Hub) Subscribe(scope string) *Subscription {
	sub := &Subscription{
		hub:   h,
		scope: scope,
		send:  make(chan Event, subscriptionBuffer),
	}
	sub.C = sub.send
	h.register <- sub
	return sub
}

// Publish delivers an event to every subscriber of its scope.
func (h *Hub) Publish(event Event) {
	h.broadcast <- event
}

// Run processes register/unregister/broadcast requests until the process
// exits. Started once from main (or a test) with `go hub.Run()`.
func (h *Hub) Run() {
	for {
		select {
		case sub := <-h.register:
			h.mu.Lock()
			if _, ok := h.subscribers[sub.scope]; !ok {
				h.subscribers[sub.scope] = make(map[*Subscription]bool)
			}
			h.subscribers[sub.scope][sub] = true
			h.mu.Unlock()

		case sub := <-h.unregister:
			h.mu.Lock()
			if subs, ok := h.subscribers[sub.scope]; ok && subs[sub] {
				delete(subs, sub)
				close(sub.send)
				if len(subs) == 0 {
					delete(h.subscribers, sub.scope)
				}
			}
			h.mu.Unlock()

		case event := <-h.broadcast:
			h.mu.Lock()
			for sub := range h.subscribers[event.Scope] {
				select {
				case sub.send <- event:
				default:
					// Subscriber is not keeping up; losing an event is
					// recoverable (next load resyncs), blocking the hub is not.
					log.Printf("[Realtime] dropping %s event for slow subscriber on %s", event.Type, event.Scope)
				}
			}
			h.mu.Unlock()
		}
	}
}
