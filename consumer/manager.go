package consumer

import (
	"context"
	"sync"
	"sync/atomic"

	"cloudeng.io/logging/ctxlog"
	"cloudeng.io/sync/errgroup"
	"cloudeng.io/terrasync/scan"
)

// DefaultBufferSize is the per-subscriber ring buffer capacity, matching
// the broadcast channel's default capacity of 10 000 from spec.md §4.4/§5.
const DefaultBufferSize = 10000

// Manager is the ConsumerManager of spec.md §4.4: it owns a bounded,
// per-subscriber ring buffer for every registered Sink and fans every
// published ScanMessage out to all of them.
type Manager struct {
	bufferSize int

	mu   sync.Mutex
	subs []*subscription

	group  *errgroup.T
	ctx    context.Context
	cancel context.CancelFunc
}

type subscription struct {
	sink Sink
	ch   chan scan.Message
	lag  int64
}

// NewManager constructs a Manager with the given per-subscriber buffer
// capacity; 0 selects DefaultBufferSize.
func NewManager(ctx context.Context, bufferSize int) *Manager {
	if bufferSize <= 0 {
		bufferSize = DefaultBufferSize
	}
	ctx, cancel := context.WithCancel(ctx)
	group, ctx := errgroup.WithContext(ctx)
	return &Manager{
		bufferSize: bufferSize,
		group:      group,
		ctx:        ctx,
		cancel:     cancel,
	}
}

// Register subscribes sink to the bus. Registration after StartAll has been
// called is not supported; all sinks must be registered up front, matching
// with_config's "register every enabled sink" step.
func (m *Manager) Register(sink Sink) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.subs = append(m.subs, &subscription{
		sink: sink,
		ch:   make(chan scan.Message, m.bufferSize),
	})
}

// StartAll subscribes each registered sink and returns once every sink
// goroutine has been launched; it does not wait for them to finish — use
// Shutdown for that.
func (m *Manager) StartAll() {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, s := range m.subs {
		s := s
		m.group.Go(func() error {
			runSink(m.ctx, s)
			return nil
		})
	}
}

// runSink drains s's channel until Complete is handled or the channel is
// closed, matching spec.md §5's "channel close is treated as graceful
// termination by sinks".
func runSink(ctx context.Context, s *subscription) {
	for {
		select {
		case msg, ok := <-s.ch:
			if !ok {
				return
			}
			s.sink.Handle(msg)
			if msg.Kind == scan.KindComplete {
				return
			}
		case <-ctx.Done():
			return
		}
	}
}

// Publish is the Bus implementation scan.Run drives: it fans msg
// out to every subscriber's ring buffer. When a subscriber's buffer is
// full, the oldest queued message for that subscriber only is dropped and a
// lag event is recorded — this is load-shedding, not a bug, per spec.md §9.
func (m *Manager) Publish(msg scan.Message) {
	m.mu.Lock()
	subs := append([]*subscription(nil), m.subs...)
	m.mu.Unlock()

	for _, s := range subs {
		deliver(s, msg)
	}
}

func deliver(s *subscription, msg scan.Message) {
	select {
	case s.ch <- msg:
		return
	default:
	}
	// Buffer full: drop the oldest slot for this subscriber only, signal
	// lag, and retry once.
	select {
	case <-s.ch:
		atomic.AddInt64(&s.lag, 1)
	default:
	}
	select {
	case s.ch <- msg:
	default:
		// A concurrent deliver raced us and refilled the slot; drop this
		// message too rather than block the broadcaster.
		atomic.AddInt64(&s.lag, 1)
	}
}

// Shutdown publishes Complete (best-effort; a no-op if there are no
// subscribers) and waits for every sink goroutine to drain and exit.
func (m *Manager) Shutdown() {
	m.Publish(scan.CompleteMessage())
	if err := m.group.Wait(); err != nil {
		ctxlog.Error(m.ctx, "consumer: sink error", "err", err)
	}
	m.cancel()
}

// LagCount reports how many lag events a named sink has seen, for
// diagnostics.
func (m *Manager) LagCount(name string) int64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, s := range m.subs {
		if s.sink.Name() == name {
			return atomic.LoadInt64(&s.lag)
		}
	}
	return 0
}
