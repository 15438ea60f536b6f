package messaging

import (
	"context"
	"io"
	"strconv"
	"sync"
	"sync/atomic"
	"time"
)

// MemoryConfig configures the in-process driver.
type MemoryConfig struct {
	// Buffer is the per-subscriber queue length. Publish blocks when it is full.
	Buffer int
}

// Memory is an in-process Messaging implementation. Subscribers sharing a
// queue group receive each message once between them, round-robin; every other
// subscriber receives its own copy. Nothing survives a restart.
type Memory struct {
	buffer int
	seq    atomic.Uint64

	mu     sync.RWMutex
	subs   map[string][]*memorySub
	closed bool
	done   chan struct{}
}

type memorySub struct {
	group string
	ch    chan *memoryMessage
	done  chan struct{}
}

// NewMemory returns an in-process bus.
func NewMemory(cfg MemoryConfig) *Memory {
	if cfg.Buffer <= 0 {
		cfg.Buffer = 64
	}
	return &Memory{
		buffer: cfg.Buffer,
		subs:   make(map[string][]*memorySub),
		done:   make(chan struct{}),
	}
}

// Close stops every consumer. Further calls fail with io.ErrClosedPipe.
func (m *Memory) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.closed {
		m.closed = true
		close(m.done)
	}
	return nil
}

// Publish delivers msg to the current subscribers of destination. A message
// with no subscriber is dropped, as on core NATS.
func (m *Memory) Publish(ctx context.Context, destination string, msg OutgoingMessage) (PublishResult, error) {
	if err := ctx.Err(); err != nil {
		return PublishResult{}, err
	}
	if destination == "" {
		return PublishResult{}, ErrDestinationRequired
	}
	if msg.Delay > 0 {
		return PublishResult{}, ErrUnsupported
	}

	seq := m.seq.Add(1)
	now := time.Now()

	targets, err := m.route(destination, seq)
	if err != nil {
		return PublishResult{}, err
	}

	for _, sub := range targets {
		mm := &memoryMessage{
			body:    append([]byte(nil), msg.Body...),
			headers: append([]Header(nil), msg.Headers...),
			subject: destination,
			at:      now,
		}

		select {
		case sub.ch <- mm:
		case <-sub.done:
		case <-ctx.Done():
			return PublishResult{}, ctx.Err()
		}
	}

	return PublishResult{MessageID: strconv.FormatUint(seq, 10), Subject: destination, Timestamp: now}, nil
}

// route picks the receivers for one message.
func (m *Memory) route(subject string, seq uint64) ([]*memorySub, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.closed {
		return nil, io.ErrClosedPipe
	}

	groups := make(map[string][]*memorySub)
	var out []*memorySub
	for _, sub := range m.subs[subject] {
		if sub.group == "" {
			out = append(out, sub)
			continue
		}
		groups[sub.group] = append(groups[sub.group], sub)
	}
	for _, members := range groups {
		out = append(out, members[seq%uint64(len(members))])
	}

	return out, nil
}

// Consume subscribes to source and blocks until ctx is done or the bus closes.
func (m *Memory) Consume(ctx context.Context, source string, handler Handler, opts ...ConsumeOption) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if source == "" {
		return ErrDestinationRequired
	}
	if handler == nil {
		return ErrHandlerRequired
	}

	co := newConsumeOptions(opts...)
	sub := &memorySub{
		group: co.queueGroup,
		ch:    make(chan *memoryMessage, m.buffer),
		done:  make(chan struct{}),
	}

	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return io.ErrClosedPipe
	}
	m.subs[source] = append(m.subs[source], sub)
	m.mu.Unlock()

	var wg sync.WaitGroup
	for range co.concurrency {
		wg.Go(func() {
			for {
				select {
				case mm := <-sub.ch:
					dispatch(ctx, DriverMemory, mm, handler, co.autoAck)
				case <-sub.done:
					return
				}
			}
		})
	}

	var cause error
	select {
	case <-ctx.Done():
		cause = ctx.Err()
	case <-m.done:
	}

	m.unsubscribe(source, sub)
	close(sub.done)
	wg.Wait()

	return cause
}

func (m *Memory) unsubscribe(source string, target *memorySub) {
	m.mu.Lock()
	defer m.mu.Unlock()

	subs := m.subs[source]
	for i, sub := range subs {
		if sub == target {
			m.subs[source] = append(subs[:i:i], subs[i+1:]...)
			return
		}
	}
}

type memoryMessage struct {
	body      []byte
	headers   []Header
	subject   string
	at        time.Time
	responded atomic.Bool
}

func (mm *memoryMessage) Body() []byte         { return mm.body }
func (mm *memoryMessage) Headers() []Header    { return mm.headers }
func (mm *memoryMessage) Subject() string      { return mm.subject }
func (mm *memoryMessage) Timestamp() time.Time { return mm.at }

func (mm *memoryMessage) Ack(_ context.Context) error {
	mm.responded.Store(true)
	return nil
}

// Nack marks the message handled. The in-process bus does not redeliver.
func (mm *memoryMessage) Nack(_ context.Context) error {
	mm.responded.Store(true)
	return nil
}

func (mm *memoryMessage) hasResponded() bool {
	return mm.responded.Load()
}
