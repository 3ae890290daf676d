package goAudit

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/MrEthical07/goAudit/internal/audit"
)

// Emitter serializes finished documents and hands them to a Sink, either on
// the caller's goroutine or through a buffered dispatcher. It is safe for
// concurrent use.
type Emitter struct {
	config     Config
	docOpts    []Option
	sink       Sink
	dispatcher *audit.Dispatcher
	logger     *slog.Logger
	metrics    *Metrics
	closed     atomic.Bool
}

// NewObject returns an object Document carrying the configured Options.
func (e *Emitter) NewObject() *Document {
	return NewObject(e.docOpts...)
}

// NewArray returns an array Document carrying the configured Options.
func (e *Emitter) NewArray() *Document {
	return NewArray(e.docOpts...)
}

// Send takes ownership of doc and releases it on every path. An errored
// document is never delivered: Send returns its ErrSerialization. An empty
// topic selects Config.Delivery.DefaultTopic.
//
// With the dispatcher enabled Send returns once the event is queued;
// delivery errors are logged and counted. A full queue under DropIfFull
// counts a drop and returns nil. In blocking mode an event that could not be
// queued before ctx ended is reported as ErrDeliveryFailed wrapping ctx.Err().
// Without the dispatcher the sink error is returned wrapped in
// ErrDeliveryFailed.
func (e *Emitter) Send(ctx context.Context, topic string, doc *Document) error {
	if doc == nil {
		return ErrNilDocument
	}
	defer doc.Release()

	if e == nil || e.closed.Load() {
		return ErrEmitterClosed
	}
	if ctx == nil {
		ctx = context.Background()
	}
	if topic == "" {
		topic = e.config.Delivery.DefaultTopic
	}

	e.metrics.Inc(MetricEventEmitted)

	payload, err := doc.Serialize()
	if err != nil {
		e.metrics.Inc(MetricEventRejected)
		e.logger.WarnContext(ctx, "audit event rejected",
			slog.String("topic", topic),
			slog.String("error", err.Error()),
		)
		return err
	}

	msg := Message{Topic: topic, Payload: payload}

	if e.dispatcher != nil {
		if e.dispatcher.Emit(ctx, msg) {
			return nil
		}
		e.logger.DebugContext(ctx, "audit event not queued",
			slog.String("topic", topic),
		)
		if e.config.Dispatch.DropIfFull {
			return nil
		}
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("%w: %s: %w", ErrDeliveryFailed, topic, err)
		}
		return ErrEmitterClosed
	}

	if e.config.Delivery.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.config.Delivery.Timeout)
		defer cancel()
	}
	if err := e.sink.Deliver(ctx, msg); err != nil {
		return fmt.Errorf("%w: %s: %w", ErrDeliveryFailed, topic, err)
	}
	return nil
}

// instrumentedSink records delivery latency and outcome counters around the
// configured sink. The dispatcher worker and the synchronous path share it.
type instrumentedSink struct {
	next    Sink
	metrics *Metrics
}

func (s instrumentedSink) Deliver(ctx context.Context, msg Message) error {
	start := time.Now()
	err := s.next.Deliver(ctx, msg)
	s.metrics.Observe(MetricDeliveryLatency, time.Since(start))

	if err != nil {
		s.metrics.Inc(MetricDeliveryFailure)
		return err
	}
	s.metrics.Inc(MetricEventDelivered)
	return nil
}

func (e *Emitter) deliveryFailed(msg Message, err error) {
	e.logger.Error("audit delivery failed",
		slog.String("topic", msg.Topic),
		slog.Int("bytes", len(msg.Payload)),
		slog.String("error", err.Error()),
	)
}

// LogJSON writes "<prefix>: <json>" to the logger at level when that level
// is enabled. The document is not consumed; an errored document logs an
// error line instead of its content.
func (e *Emitter) LogJSON(ctx context.Context, prefix string, doc *Document, level slog.Level) {
	if e == nil || !e.logger.Enabled(ctx, level) {
		return
	}
	text, err := doc.ToString()
	if err != nil {
		e.logger.ErrorContext(ctx, "unable to serialize audit event",
			slog.String("prefix", prefix),
			slog.String("error", err.Error()),
		)
		return
	}
	e.logger.Log(ctx, level, prefix+": "+text)
}

// LogText writes "<prefix>: <message>" at level, stamped with AuditTimestamp.
func (e *Emitter) LogText(ctx context.Context, prefix, message string, level slog.Level) {
	if e == nil || !e.logger.Enabled(ctx, level) {
		return
	}
	e.logger.Log(ctx, level, prefix+": "+message, slog.String("audit_time", AuditTimestamp()))
}

// Close stops intake and drains queued events. It is idempotent.
func (e *Emitter) Close() {
	if e == nil {
		return
	}
	if e.closed.Swap(true) {
		return
	}
	e.dispatcher.Close()
}

// Dropped reports events the dispatcher discarded because its buffer was full.
func (e *Emitter) Dropped() uint64 {
	if e == nil {
		return 0
	}
	return e.dispatcher.Dropped()
}

// AuditDropped is Dropped under the name metric exporters expect.
func (e *Emitter) AuditDropped() uint64 {
	return e.Dropped()
}

// MetricsSnapshot returns a copy of the Emitter counters.
func (e *Emitter) MetricsSnapshot() MetricsSnapshot {
	if e == nil {
		return NewMetrics(MetricsConfig{}).Snapshot()
	}
	return e.metrics.Snapshot()
}
