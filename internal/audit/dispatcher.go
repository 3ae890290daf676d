package audit

import (
	"context"
	"sync"
	"sync/atomic"
	"time"
)

// Config controls dispatcher buffering behavior.
type Config struct {
	Enabled    bool
	BufferSize int
	DropIfFull bool
	// Timeout bounds each Deliver call made by the worker. Zero means no bound.
	Timeout time.Duration
}

// Dispatcher asynchronously forwards messages to a sink.
type Dispatcher struct {
	cfg     Config
	sink    Sink
	onError func(Message, error)
	ch      chan Message
	// stop wakes blocked emitters; done tells the worker to drain and exit.
	stop    chan struct{}
	done    chan struct{}
	wg      sync.WaitGroup
	dropped atomic.Uint64
	// mu is held for reading by every send into ch, so Close cannot mark
	// the dispatcher closed while an accepted message is still in flight.
	mu        sync.RWMutex
	closed    bool
	closeOnce sync.Once
}

// NewDispatcher starts the delivery worker. It returns nil when cfg.Enabled
// is false; a nil Dispatcher accepts nothing. onError, when set, is called
// from the worker goroutine for every failed delivery.
func NewDispatcher(cfg Config, sink Sink, onError func(Message, error)) *Dispatcher {
	if !cfg.Enabled || sink == nil {
		return nil
	}
	if cfg.BufferSize <= 0 {
		cfg.BufferSize = 1
	}

	d := &Dispatcher{
		cfg:     cfg,
		sink:    sink,
		onError: onError,
		ch:      make(chan Message, cfg.BufferSize),
		stop:    make(chan struct{}),
		done:    make(chan struct{}),
	}

	d.wg.Add(1)
	go d.run()

	return d
}

func (d *Dispatcher) run() {
	defer d.wg.Done()

	for {
		select {
		case msg := <-d.ch:
			d.deliver(msg)
		case <-d.done:
			for {
				select {
				case msg := <-d.ch:
					d.deliver(msg)
				default:
					return
				}
			}
		}
	}
}

func (d *Dispatcher) deliver(msg Message) {
	ctx := context.Background()
	if d.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, d.cfg.Timeout)
		defer cancel()
	}
	if err := d.sink.Deliver(ctx, msg); err != nil && d.onError != nil {
		d.onError(msg, err)
	}
}

// Emit queues msg and reports whether it was accepted. With DropIfFull a
// full buffer drops the message and counts it; otherwise Emit blocks until
// there is room, ctx ends, or the dispatcher closes.
func (d *Dispatcher) Emit(ctx context.Context, msg Message) bool {
	if d == nil {
		return false
	}
	if ctx == nil {
		ctx = context.Background()
	}

	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.closed {
		return false
	}

	if d.cfg.DropIfFull {
		select {
		case d.ch <- msg:
			return true
		case <-d.stop:
			return false
		default:
			d.dropped.Add(1)
			return false
		}
	}

	select {
	case d.ch <- msg:
		return true
	case <-ctx.Done():
		return false
	case <-d.stop:
		return false
	}
}

// Close stops intake and waits for queued messages to be delivered. Every
// message Emit accepted is delivered before Close returns.
func (d *Dispatcher) Close() {
	if d == nil {
		return
	}
	d.closeOnce.Do(func() {
		close(d.stop)

		d.mu.Lock()
		d.closed = true
		close(d.done)
		d.mu.Unlock()

		d.wg.Wait()
	})
}

func (d *Dispatcher) Dropped() uint64 {
	if d == nil {
		return 0
	}
	return d.dropped.Load()
}
