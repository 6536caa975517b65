// Package sse streams Server-Sent Events to clients and fans published
// messages out to every subscriber of a topic.
//
//	sub, cancel := broker.Subscribe("order:3")
//	defer cancel()
//	stream, err := sse.New(w, r)
//	for msg := range sub {
//	    stream.Send(msg.Event, msg.Data)
//	}
package sse

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"
)

// Stream is an open event stream to one client.
type Stream struct {
	w    http.ResponseWriter
	r    *http.Request
	rc   *http.ResponseController
	done chan struct{}
}

type drainKey struct{}

// WithDrain returns a context whose streams end when drain is closed. Servers
// use it as their base context so shutdown does not wait on idle streams.
func WithDrain(ctx context.Context, drain <-chan struct{}) context.Context {
	return context.WithValue(ctx, drainKey{}, drain)
}

// New writes the event-stream headers and lifts the server write deadline so
// the stream can outlive it. It fails when the writer cannot flush.
func New(w http.ResponseWriter, r *http.Request) (*Stream, error) {
	rc := http.NewResponseController(w)
	if err := rc.SetWriteDeadline(time.Time{}); err != nil && !errors.Is(err, http.ErrNotSupported) {
		return nil, fmt.Errorf("sse: write deadline: %w", err)
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)

	if err := rc.Flush(); err != nil {
		return nil, fmt.Errorf("sse: flush: %w", err)
	}

	s := &Stream{w: w, r: r, rc: rc, done: make(chan struct{})}
	drain, _ := r.Context().Value(drainKey{}).(<-chan struct{})
	go func() {
		select {
		case <-r.Context().Done():
		case <-drain:
		}
		close(s.done)
	}()
	return s, nil
}

// Send writes a named event with a JSON payload.
func (s *Stream) Send(event string, data any) error {
	payload, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("sse: marshal: %w", err)
	}
	if _, err := fmt.Fprintf(s.w, "event: %s\ndata: %s\n\n", event, payload); err != nil {
		return err
	}
	return s.rc.Flush()
}

// Comment writes a comment line. Clients ignore it; proxies see traffic.
func (s *Stream) Comment(msg string) error {
	if _, err := fmt.Fprintf(s.w, ": %s\n\n", msg); err != nil {
		return err
	}
	return s.rc.Flush()
}

// Done is closed when the client goes away or the server starts draining.
func (s *Stream) Done() <-chan struct{} { return s.done }

// Message is one published event.
type Message struct {
	Event string
	Data  any
}

// subscriberBuffer is how many messages a slow subscriber may lag before
// new ones are dropped for it.
const subscriberBuffer = 16

// Broker fans messages out by topic. The zero value is not usable; call
// NewBroker.
type Broker struct {
	mu     sync.RWMutex
	topics map[string]map[chan Message]struct{}
}

func NewBroker() *Broker {
	return &Broker{topics: make(map[string]map[chan Message]struct{})}
}

// Subscribe returns a channel receiving messages published on topic and a
// cancel func that must be called to release it.
func (b *Broker) Subscribe(topic string) (<-chan Message, func()) {
	ch := make(chan Message, subscriberBuffer)

	b.mu.Lock()
	subs, ok := b.topics[topic]
	if !ok {
		subs = make(map[chan Message]struct{})
		b.topics[topic] = subs
	}
	subs[ch] = struct{}{}
	b.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			b.mu.Lock()
			delete(b.topics[topic], ch)
			if len(b.topics[topic]) == 0 {
				delete(b.topics, topic)
			}
			b.mu.Unlock()
		})
	}
}

// Publish delivers msg to every current subscriber of topic without blocking.
func (b *Broker) Publish(topic string, msg Message) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	for ch := range b.topics[topic] {
		select {
		case ch <- msg:
		default:
		}
	}
}

// Subscribers reports how many clients listen on topic.
func (b *Broker) Subscribers(topic string) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.topics[topic])
}
