package audit

import (
	"context"
	"sync"
	"sync/atomic"
)

// Config controls dispatcher buffering.
type Config struct {
	Enabled    bool
	BufferSize int
	DropIfFull bool
}

// Dispatcher relays events to a sink from one goroutine, in Emit order. A nil
// *Dispatcher accepts and discards everything, which is what NewDispatcher
// returns when auditing is off.
//
// Every event offered to Emit takes the next sequence number, including events
// that are then dropped, so a sink sees drops as gaps in Seq.
type Dispatcher struct {
	dropIfFull bool
	sink       Sink
	queue      chan Event
	stop       chan struct{}
	stopped    chan struct{}
	stopOnce   sync.Once

	seq      atomic.Uint64
	dropped  atomic.Uint64
	failures atomic.Uint64
	closing  atomic.Bool
}

func NewDispatcher(cfg Config, sink Sink) *Dispatcher {
	if !cfg.Enabled {
		return nil
	}
	if sink == nil {
		sink = NoOpSink{}
	}
	d := &Dispatcher{
		dropIfFull: cfg.DropIfFull,
		sink:       sink,
		queue:      make(chan Event, max(cfg.BufferSize, 1)),
		stop:       make(chan struct{}),
		stopped:    make(chan struct{}),
	}
	go d.relay()
	return d
}

// relay delivers until Close, then flushes whatever is still queued.
func (d *Dispatcher) relay() {
	defer close(d.stopped)
	ctx := context.Background()
	for {
		select {
		case event := <-d.queue:
			d.deliver(ctx, event)
		case <-d.stop:
			for len(d.queue) > 0 {
				d.deliver(ctx, <-d.queue)
			}
			return
		}
	}
}

// deliver hands one event to the sink. A panicking sink loses that event only.
func (d *Dispatcher) deliver(ctx context.Context, event Event) {
	defer func() {
		if recover() != nil {
			d.failures.Add(1)
		}
	}()
	d.sink.Emit(ctx, event)
}

// Emit queues event. Without DropIfFull it waits for queue space, ctx or Close.
func (d *Dispatcher) Emit(ctx context.Context, event Event) {
	if d == nil || d.closing.Load() {
		return
	}
	event.Seq = d.seq.Add(1)

	if d.dropIfFull {
		select {
		case d.queue <- event:
		case <-d.stop:
		default:
			d.dropped.Add(1)
		}
		return
	}
	if ctx == nil {
		ctx = context.Background()
	}
	select {
	case d.queue <- event:
	case <-ctx.Done():
		d.dropped.Add(1)
	case <-d.stop:
	}
}

// Close stops the relay after flushing what is already queued. It is safe to call
// more than once.
func (d *Dispatcher) Close() {
	if d == nil {
		return
	}
	d.stopOnce.Do(func() {
		d.closing.Store(true)
		close(d.stop)
	})
	<-d.stopped
}

// Dropped counts events discarded because the queue was full or the emitting
// context ended first.
func (d *Dispatcher) Dropped() uint64 {
	if d == nil {
		return 0
	}
	return d.dropped.Load()
}

// SinkFailures counts events lost to a panicking sink.
func (d *Dispatcher) SinkFailures() uint64 {
	if d == nil {
		return 0
	}
	return d.failures.Load()
}
