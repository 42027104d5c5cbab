// Package livereload fans out graph lifecycle events to interested
// subscribers. The in-process Bus serves handlers and the TUI; the
// optional socket transports in transport.go relay the same events to
// external processes.
package livereload

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/softloud/sig-vis/pkg/assembly"
)

// Topic names used on the bus.
const (
	// TopicGraph carries rebuild and aggregation-change events.
	TopicGraph = "graph"
)

// Kind identifies what happened to the graph.
type Kind string

const (
	KindGraphRebuilt Kind = "graph-rebuilt"
	KindModeChanged  Kind = "mode-changed"
)

// Event describes a change to the assembled graph.
type Event struct {
	Kind  Kind           `json:"kind"`
	At    time.Time      `json:"at"`
	Stats assembly.Stats `json:"stats"`
}

// Rebuilt returns the event emitted after a rebuild from the data source.
func Rebuilt(stats assembly.Stats) Event {
	return Event{Kind: KindGraphRebuilt, At: time.Now().UTC(), Stats: stats}
}

// ModeChanged returns the event emitted after the aggregation mode switches.
func ModeChanged(stats assembly.Stats) Event {
	return Event{Kind: KindModeChanged, At: time.Now().UTC(), Stats: stats}
}

// ErrBusClosed is returned by Subscribe after Shutdown.
var ErrBusClosed = errors.New("livereload: bus closed")

// Bus provides publish/subscribe delivery of graph events
type Bus struct {
	subscribers map[string]map[*Subscription]bool
	mu          sync.RWMutex
	shutdown    chan struct{}
	shutdownMu  sync.Mutex
	isShutdown  bool
}

// Subscription represents a subscription to a topic
type Subscription struct {
	topic     string
	channel   chan Event
	bus       *Bus
	ctx       context.Context
	cancel    context.CancelFunc
	closeOnce sync.Once // Ensures channel is only closed once
}

// NewBus creates a new Bus instance
func NewBus() *Bus {
	return &Bus{
		subscribers: make(map[string]map[*Subscription]bool),
		shutdown:    make(chan struct{}),
	}
}

// Subscribe creates a new subscription to a topic
func (b *Bus) Subscribe(ctx context.Context, topic string) (*Subscription, error) {
	b.shutdownMu.Lock()
	if b.isShutdown {
		b.shutdownMu.Unlock()
		return nil, ErrBusClosed
	}
	b.shutdownMu.Unlock()

	// Rebuilds are rare, so a small buffer absorbs any burst
	subCtx, cancel := context.WithCancel(ctx)
	sub := &Subscription{
		topic:   topic,
		channel: make(chan Event, 16),
		bus:     b,
		ctx:     subCtx,
		cancel:  cancel,
	}

	b.mu.Lock()
	if b.subscribers[topic] == nil {
		b.subscribers[topic] = make(map[*Subscription]bool)
	}
	b.subscribers[topic][sub] = true
	b.mu.Unlock()

	// Monitor context cancellation
	go func() {
		select {
		case <-subCtx.Done():
			sub.Unsubscribe()
		case <-b.shutdown:
			sub.close()
		}
	}()

	return sub, nil
}

// Publish sends an event to all subscribers of a topic.
// Uses a snapshot copy to avoid holding the lock during channel sends.
func (b *Bus) Publish(topic string, ev Event) {
	b.shutdownMu.Lock()
	if b.isShutdown {
		b.shutdownMu.Unlock()
		return
	}
	b.shutdownMu.Unlock()

	// Snapshot under lock; a concurrent Unsubscribe may modify the map
	b.mu.RLock()
	topicSubs := b.subscribers[topic]
	if len(topicSubs) == 0 {
		b.mu.RUnlock()
		return
	}
	subs := make([]*Subscription, 0, len(topicSubs))
	for sub := range topicSubs {
		subs = append(subs, sub)
	}
	b.mu.RUnlock()

	// Non-blocking send; a slow subscriber drops events rather than
	// stalling the assembler
	for _, sub := range subs {
		select {
		case sub.channel <- ev:
		default:
		}
	}
}

// SubscriberCount returns the number of subscribers for a topic
func (b *Bus) SubscriberCount(topic string) int {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if b.subscribers[topic] == nil {
		return 0
	}

	return len(b.subscribers[topic])
}

// Shutdown closes all subscriptions and shuts down the bus
func (b *Bus) Shutdown() {
	b.shutdownMu.Lock()
	if b.isShutdown {
		b.shutdownMu.Unlock()
		return
	}
	b.isShutdown = true
	b.shutdownMu.Unlock()

	close(b.shutdown)

	b.mu.Lock()
	for topic := range b.subscribers {
		for sub := range b.subscribers[topic] {
			sub.close()
		}
		delete(b.subscribers, topic)
	}
	b.mu.Unlock()
}

// Channel returns the subscription's event channel
func (s *Subscription) Channel() <-chan Event {
	return s.channel
}

// Unsubscribe removes the subscription
func (s *Subscription) Unsubscribe() {
	s.cancel()

	s.bus.mu.Lock()
	defer s.bus.mu.Unlock()

	if s.bus.subscribers[s.topic] != nil {
		delete(s.bus.subscribers[s.topic], s)
		if len(s.bus.subscribers[s.topic]) == 0 {
			delete(s.bus.subscribers, s.topic)
		}
	}

	s.close()
}

// close closes the subscription channel safely (idempotent)
func (s *Subscription) close() {
	s.closeOnce.Do(func() {
		close(s.channel)
	})
}
