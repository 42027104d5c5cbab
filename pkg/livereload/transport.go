package livereload

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/softloud/sig-vis/pkg/logging"
)

// wirePrefix frames events on the socket so subscribers can filter.
const wirePrefix = "EVT:"

// ErrNoTransport indicates the binary was built without a socket transport.
// Build with -tags zmq or -tags nng to enable external event broadcast.
var ErrNoTransport = errors.New("livereload: built without zmq or nng transport")

// Socket represents a messaging socket that can send and receive messages.
// This interface abstracts the underlying transport (ZMQ, NNG, or mock for testing).
type Socket interface {
	io.Closer
	Send([]byte) error
	Recv() ([]byte, error)
	SetRecvDeadline(d time.Duration) error
	SetSendDeadline(d time.Duration) error
}

// ListenSocket is a socket that can bind to an address and accept connections.
type ListenSocket interface {
	Socket
	Listen(addr string) error
}

// DialSocket is a socket that can connect to a remote address.
type DialSocket interface {
	Socket
	Dial(addr string) error
}

// SubscribeSocket is a SUB socket that can subscribe to topics.
type SubscribeSocket interface {
	DialSocket
	Subscribe(topic []byte) error
}

// SocketFactory creates sockets for the publish/subscribe pattern.
// Implementations can provide real ZMQ or NNG sockets, or mocks for testing.
type SocketFactory interface {
	NewPubSocket() (ListenSocket, error)
	NewSubSocket() (SubscribeSocket, error)
}

// Broadcaster relays bus events to external subscribers over a PUB socket.
// Single responsibility: fan-out graph events to other processes.
type Broadcaster struct {
	socket    ListenSocket
	bus       *Bus
	addr      string
	topic     string
	logger    logging.Logger
	sub       *Subscription
	stopCh    chan struct{}
	wg        sync.WaitGroup
	running   bool
	runningMu sync.Mutex
}

// BroadcasterConfig configures the event broadcaster.
type BroadcasterConfig struct {
	Address string
	Topic   string
	Logger  logging.Logger
}

// NewBroadcaster creates a broadcaster reading from bus.
func NewBroadcaster(factory SocketFactory, bus *Bus, config BroadcasterConfig) (*Broadcaster, error) {
	socket, err := factory.NewPubSocket()
	if err != nil {
		return nil, fmt.Errorf("failed to create PUB socket: %w", err)
	}

	topic := config.Topic
	if topic == "" {
		topic = TopicGraph
	}
	logger := config.Logger
	if logger == nil {
		logger = logging.NewNopLogger()
	}

	return &Broadcaster{
		socket: socket,
		bus:    bus,
		addr:   config.Address,
		topic:  topic,
		logger: logger.With(logging.Component("livereload")),
		stopCh: make(chan struct{}),
	}, nil
}

// Start binds the PUB socket and begins relaying events.
func (b *Broadcaster) Start() error {
	b.runningMu.Lock()
	defer b.runningMu.Unlock()

	if b.running {
		return fmt.Errorf("broadcaster already running")
	}

	if err := b.socket.Listen(b.addr); err != nil {
		return fmt.Errorf("failed to bind PUB socket to %s: %w", b.addr, err)
	}

	sub, err := b.bus.Subscribe(context.Background(), b.topic)
	if err != nil {
		b.socket.Close()
		return err
	}
	b.sub = sub

	b.running = true
	b.wg.Add(1)
	go b.relayLoop()

	b.logger.Info("event broadcaster started", logging.String("addr", b.addr))
	return nil
}

// Stop stops the broadcaster.
func (b *Broadcaster) Stop() error {
	b.runningMu.Lock()
	defer b.runningMu.Unlock()

	if !b.running {
		return nil
	}

	close(b.stopCh)
	b.sub.Unsubscribe()
	b.running = false
	b.wg.Wait()

	if err := b.socket.Close(); err != nil {
		b.logger.Warn("failed to close broadcaster socket", logging.Error(err))
	}

	b.logger.Info("event broadcaster stopped")
	return nil
}

func (b *Broadcaster) relayLoop() {
	defer b.wg.Done()

	for {
		select {
		case <-b.stopCh:
			return
		case ev, ok := <-b.sub.Channel():
			if !ok {
				return
			}
			data, err := json.Marshal(ev)
			if err != nil {
				b.logger.Error("failed to encode event", logging.Error(err))
				continue
			}

			// Prepend topic for filtering
			msg := append([]byte(wirePrefix), data...)
			if err := b.socket.Send(msg); err != nil {
				b.logger.Warn("failed to publish event", logging.Error(err))
			}
		}
	}
}

// Listener receives graph events from a remote broadcaster.
// Single responsibility: deliver remote events to a handler.
type Listener struct {
	socket      SubscribeSocket
	addr        string
	handler     func(Event)
	recvTimeout time.Duration
	logger      logging.Logger
	stopCh      chan struct{}
	wg          sync.WaitGroup
	running     bool
	runningMu   sync.Mutex
}

// ListenerConfig configures the event listener.
type ListenerConfig struct {
	Address     string
	RecvTimeout time.Duration
	Logger      logging.Logger
}

// NewListener creates a listener delivering events to handler.
func NewListener(factory SocketFactory, config ListenerConfig, handler func(Event)) (*Listener, error) {
	socket, err := factory.NewSubSocket()
	if err != nil {
		return nil, err
	}

	timeout := config.RecvTimeout
	if timeout <= 0 {
		timeout = 1 * time.Second
	}
	logger := config.Logger
	if logger == nil {
		logger = logging.NewNopLogger()
	}

	return &Listener{
		socket:      socket,
		addr:        config.Address,
		handler:     handler,
		recvTimeout: timeout,
		logger:      logger.With(logging.Component("livereload")),
		stopCh:      make(chan struct{}),
	}, nil
}

// Start connects to the broadcaster and begins receiving events.
func (l *Listener) Start() error {
	l.runningMu.Lock()
	defer l.runningMu.Unlock()

	if l.running {
		return nil
	}

	if err := l.socket.Dial(l.addr); err != nil {
		return err
	}

	if err := l.socket.Subscribe([]byte(wirePrefix)); err != nil {
		l.socket.Close()
		return err
	}

	if err := l.socket.SetRecvDeadline(l.recvTimeout); err != nil {
		l.socket.Close()
		return err
	}

	l.running = true
	l.wg.Add(1)
	go l.receiveLoop()

	l.logger.Info("event listener connected", logging.String("addr", l.addr))
	return nil
}

// Stop stops the listener.
func (l *Listener) Stop() error {
	l.runningMu.Lock()
	defer l.runningMu.Unlock()

	if !l.running {
		return nil
	}

	close(l.stopCh)
	l.running = false
	l.wg.Wait()
	l.socket.Close()

	l.logger.Info("event listener stopped")
	return nil
}

func (l *Listener) receiveLoop() {
	defer l.wg.Done()

	for {
		select {
		case <-l.stopCh:
			return
		default:
		}

		msg, err := l.socket.Recv()
		if err != nil {
			continue // Timeout
		}

		// Strip topic prefix
		if !bytes.HasPrefix(msg, []byte(wirePrefix)) {
			continue
		}
		data := msg[len(wirePrefix):]

		var ev Event
		if err := json.Unmarshal(data, &ev); err != nil {
			l.logger.Warn("failed to decode event", logging.Error(err))
			continue
		}

		l.handler(ev)
	}
}
