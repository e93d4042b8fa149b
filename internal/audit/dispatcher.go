package audit

import (
	"context"
	"sync"
	"sync/atomic"
)

// Config controls how decision events are buffered on their way to a
// sink. DropIfFull selects drop mode: a full buffer costs the event,
// never the evaluation.
type Config struct {
	Enabled    bool
	BufferSize int
	DropIfFull bool
}

// Dispatcher relays decision events to a sink off the evaluation path.
// Losses are counted per evaluation context so edge backpressure and
// client backpressure stay distinguishable.
type Dispatcher struct {
	sink       Sink
	ch         chan Event
	done       chan struct{}
	wg         sync.WaitGroup
	dropIfFull bool

	droppedEdge   atomic.Uint64
	droppedClient atomic.Uint64

	closed    atomic.Bool
	closeOnce sync.Once
}

// NewDispatcher starts the relay goroutine. A disabled config returns
// nil; the nil *Dispatcher accepts and discards everything, so callers
// never branch on auditing being on.
func NewDispatcher(cfg Config, sink Sink) *Dispatcher {
	if !cfg.Enabled {
		return nil
	}
	if cfg.BufferSize <= 0 {
		cfg.BufferSize = 1
	}
	if sink == nil {
		sink = NoOpSink{}
	}

	d := &Dispatcher{
		sink:       sink,
		ch:         make(chan Event, cfg.BufferSize),
		done:       make(chan struct{}),
		dropIfFull: cfg.DropIfFull,
	}

	d.wg.Add(1)
	go d.run()

	return d
}

func (d *Dispatcher) run() {
	defer d.wg.Done()

	for {
		select {
		case event := <-d.ch:
			d.sink.Emit(context.Background(), event)
		case <-d.done:
			d.drain()
			return
		}
	}
}

// drain flushes whatever the evaluators managed to queue before Close.
func (d *Dispatcher) drain() {
	for {
		select {
		case event := <-d.ch:
			d.sink.Emit(context.Background(), event)
		default:
			return
		}
	}
}

// Emit queues one decision event. In drop mode a full buffer loses the
// event and bumps the counter for its context; in blocking mode the
// caller's ctx bounds the wait.
func (d *Dispatcher) Emit(ctx context.Context, event Event) {
	if d == nil || d.closed.Load() {
		return
	}
	if ctx == nil {
		ctx = context.Background()
	}

	if d.dropIfFull {
		select {
		case d.ch <- event:
		case <-d.done:
		default:
			d.countDrop(event)
		}
		return
	}

	select {
	case d.ch <- event:
	case <-ctx.Done():
	case <-d.done:
	}
}

func (d *Dispatcher) countDrop(event Event) {
	if event.Context == ContextClient {
		d.droppedClient.Add(1)
		return
	}
	d.droppedEdge.Add(1)
}

// Close stops intake, flushes buffered events, and waits for the relay
// goroutine to finish. Safe to call more than once.
func (d *Dispatcher) Close() {
	if d == nil {
		return
	}
	d.closeOnce.Do(func() {
		d.closed.Store(true)
		close(d.done)
		d.wg.Wait()
	})
}

// Dropped reports the total events lost to backpressure.
func (d *Dispatcher) Dropped() uint64 {
	if d == nil {
		return 0
	}
	return d.droppedEdge.Load() + d.droppedClient.Load()
}

// DroppedByContext reports losses for one evaluation context
// ([ContextEdge] or [ContextClient]).
func (d *Dispatcher) DroppedByContext(evalContext string) uint64 {
	if d == nil {
		return 0
	}
	if evalContext == ContextClient {
		return d.droppedClient.Load()
	}
	return d.droppedEdge.Load()
}
