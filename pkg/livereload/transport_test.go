package livereload

import (
	"bytes"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"
)

var errMockTimeout = errors.New("mock: recv timeout")

// mockSocket is an in-memory socket satisfying every socket interface.
type mockSocket struct {
	mu          sync.Mutex
	sent        [][]byte
	incoming    chan []byte
	subscribed  [][]byte
	listenAddr  string
	dialAddr    string
	recvTimeout time.Duration
	closed      bool
}

func newMockSocket() *mockSocket {
	return &mockSocket{
		incoming:    make(chan []byte, 16),
		recvTimeout: 50 * time.Millisecond,
	}
}

func (m *mockSocket) Send(data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return errors.New("mock: socket closed")
	}
	cp := append([]byte(nil), data...)
	m.sent = append(m.sent, cp)
	return nil
}

func (m *mockSocket) Recv() ([]byte, error) {
	m.mu.Lock()
	timeout := m.recvTimeout
	m.mu.Unlock()

	select {
	case msg := <-m.incoming:
		return msg, nil
	case <-time.After(timeout):
		return nil, errMockTimeout
	}
}

func (m *mockSocket) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}

func (m *mockSocket) SetRecvDeadline(d time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.recvTimeout = d
	return nil
}

func (m *mockSocket) SetSendDeadline(d time.Duration) error { return nil }

func (m *mockSocket) Listen(addr string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.listenAddr = addr
	return nil
}

func (m *mockSocket) Dial(addr string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.dialAddr = addr
	return nil
}

func (m *mockSocket) Subscribe(topic []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.subscribed = append(m.subscribed, append([]byte(nil), topic...))
	return nil
}

func (m *mockSocket) sentCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sent)
}

func (m *mockSocket) sentAt(i int) []byte {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sent[i]
}

// mockFactory hands out pre-built mock sockets.
type mockFactory struct {
	pub *mockSocket
	sub *mockSocket
}

func (f *mockFactory) NewPubSocket() (ListenSocket, error) { return f.pub, nil }

func (f *mockFactory) NewSubSocket() (SubscribeSocket, error) { return f.sub, nil }

func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(1 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("Timeout waiting for %s", what)
}

// TestBroadcasterRelaysEvents tests that bus events reach the PUB socket framed
func TestBroadcasterRelaysEvents(t *testing.T) {
	bus := NewBus()
	defer bus.Shutdown()

	pub := newMockSocket()
	factory := &mockFactory{pub: pub}

	bc, err := NewBroadcaster(factory, bus, BroadcasterConfig{Address: "inproc://events"})
	if err != nil {
		t.Fatalf("Failed to create broadcaster: %v", err)
	}
	if err := bc.Start(); err != nil {
		t.Fatalf("Failed to start broadcaster: %v", err)
	}
	defer bc.Stop()

	if pub.listenAddr != "inproc://events" {
		t.Errorf("Expected bind to inproc://events, got %q", pub.listenAddr)
	}

	bus.Publish(TopicGraph, Rebuilt(statsWithVertices(7)))

	waitFor(t, "published event", func() bool { return pub.sentCount() == 1 })

	msg := pub.sentAt(0)
	if !bytes.HasPrefix(msg, []byte(wirePrefix)) {
		t.Fatalf("Expected %q prefix, got %q", wirePrefix, msg)
	}

	var ev Event
	if err := json.Unmarshal(msg[len(wirePrefix):], &ev); err != nil {
		t.Fatalf("Failed to decode relayed event: %v", err)
	}
	if ev.Kind != KindGraphRebuilt {
		t.Errorf("Expected kind %q, got %q", KindGraphRebuilt, ev.Kind)
	}
	if ev.Stats.VertexCount != 7 {
		t.Errorf("Expected 7 vertices, got %d", ev.Stats.VertexCount)
	}
}

// TestBroadcasterStartTwice tests that a second Start fails
func TestBroadcasterStartTwice(t *testing.T) {
	bus := NewBus()
	defer bus.Shutdown()

	bc, err := NewBroadcaster(&mockFactory{pub: newMockSocket()}, bus, BroadcasterConfig{Address: "inproc://events"})
	if err != nil {
		t.Fatalf("Failed to create broadcaster: %v", err)
	}
	if err := bc.Start(); err != nil {
		t.Fatalf("Failed to start broadcaster: %v", err)
	}
	defer bc.Stop()

	if err := bc.Start(); err == nil {
		t.Error("Expected error starting broadcaster twice")
	}
}

// TestBroadcasterStopIdempotent tests that Stop can be called repeatedly
func TestBroadcasterStopIdempotent(t *testing.T) {
	bus := NewBus()
	defer bus.Shutdown()

	bc, err := NewBroadcaster(&mockFactory{pub: newMockSocket()}, bus, BroadcasterConfig{Address: "inproc://events"})
	if err != nil {
		t.Fatalf("Failed to create broadcaster: %v", err)
	}
	if err := bc.Start(); err != nil {
		t.Fatalf("Failed to start broadcaster: %v", err)
	}

	if err := bc.Stop(); err != nil {
		t.Errorf("First stop failed: %v", err)
	}
	if err := bc.Stop(); err != nil {
		t.Errorf("Second stop failed: %v", err)
	}
}

// TestListenerDeliversEvents tests that framed wire messages reach the handler
func TestListenerDeliversEvents(t *testing.T) {
	sub := newMockSocket()
	factory := &mockFactory{sub: sub}

	received := make(chan Event, 1)
	lst, err := NewListener(factory, ListenerConfig{
		Address:     "inproc://events",
		RecvTimeout: 20 * time.Millisecond,
	}, func(ev Event) {
		received <- ev
	})
	if err != nil {
		t.Fatalf("Failed to create listener: %v", err)
	}
	if err := lst.Start(); err != nil {
		t.Fatalf("Failed to start listener: %v", err)
	}
	defer lst.Stop()

	if sub.dialAddr != "inproc://events" {
		t.Errorf("Expected dial to inproc://events, got %q", sub.dialAddr)
	}
	if len(sub.subscribed) != 1 || string(sub.subscribed[0]) != wirePrefix {
		t.Errorf("Expected subscription to %q, got %v", wirePrefix, sub.subscribed)
	}

	data, _ := json.Marshal(ModeChanged(statsWithVertices(4)))
	sub.incoming <- append([]byte(wirePrefix), data...)

	select {
	case ev := <-received:
		if ev.Kind != KindModeChanged {
			t.Errorf("Expected kind %q, got %q", KindModeChanged, ev.Kind)
		}
		if ev.Stats.VertexCount != 4 {
			t.Errorf("Expected 4 vertices, got %d", ev.Stats.VertexCount)
		}
	case <-time.After(1 * time.Second):
		t.Fatal("Timeout waiting for handler")
	}
}

// TestListenerIgnoresMalformedMessages tests prefix and decode filtering
func TestListenerIgnoresMalformedMessages(t *testing.T) {
	sub := newMockSocket()
	factory := &mockFactory{sub: sub}

	received := make(chan Event, 2)
	lst, err := NewListener(factory, ListenerConfig{
		Address:     "inproc://events",
		RecvTimeout: 20 * time.Millisecond,
	}, func(ev Event) {
		received <- ev
	})
	if err != nil {
		t.Fatalf("Failed to create listener: %v", err)
	}
	if err := lst.Start(); err != nil {
		t.Fatalf("Failed to start listener: %v", err)
	}
	defer lst.Stop()

	// Wrong prefix and unparseable payload are both dropped
	sub.incoming <- []byte("OTHER:ignored")
	sub.incoming <- []byte(wirePrefix + "{not json")

	data, _ := json.Marshal(Rebuilt(statsWithVertices(9)))
	sub.incoming <- append([]byte(wirePrefix), data...)

	select {
	case ev := <-received:
		if ev.Stats.VertexCount != 9 {
			t.Errorf("Expected the valid event, got %+v", ev)
		}
	case <-time.After(1 * time.Second):
		t.Fatal("Timeout waiting for handler")
	}

	select {
	case ev := <-received:
		t.Errorf("Expected only one delivered event, got extra %+v", ev)
	case <-time.After(100 * time.Millisecond):
	}
}
