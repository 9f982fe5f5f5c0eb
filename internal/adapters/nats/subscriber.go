package natsadapter

import (
	"sync"

	"github.com/nats-io/nats.go"
)

// Subscriber relays selection events from core NATS subscriptions. It shares
// the publisher's connection.
type Subscriber struct {
	conn *nats.Conn

	mu   sync.Mutex
	subs map[*nats.Subscription]struct{}
}

// NewSubscriber creates a subscriber on conn.
func NewSubscriber(conn *nats.Conn) *Subscriber {
	return &Subscriber{conn: conn, subs: make(map[*nats.Subscription]struct{})}
}

// Selections delivers the raw JSON of every selection event of sessionID
// (all sessions when empty) to fn until the returned cancel func is called.
func (s *Subscriber) Selections(sessionID string, fn func(data []byte)) (func(), error) {
	sub, err := s.conn.Subscribe(SubjectFor(sessionID), func(msg *nats.Msg) {
		fn(msg.Data)
	})
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	s.subs[sub] = struct{}{}
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.subs, sub)
		s.mu.Unlock()
		_ = sub.Unsubscribe()
	}, nil
}

// Close unsubscribes everything still open.
func (s *Subscriber) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for sub := range s.subs {
		_ = sub.Unsubscribe()
	}
	s.subs = make(map[*nats.Subscription]struct{})
}
