package goAudit

import (
	"context"
	"io"
	"log/slog"
	"sync"

	"github.com/MrEthical07/goAudit/internal/audit"
)

// Message is a serialized document together with the topic it is
// addressed to, for example "Authentication" or "dsdbChange".
type Message = audit.Message

// Sink receives serialized audit documents. Implementations must be safe
// for concurrent use when the Emitter runs without a dispatcher.
type Sink = audit.Sink

// SinkFunc adapts a function to Sink.
type SinkFunc = audit.SinkFunc

// NoOpSink drops every message.
type NoOpSink struct{}

func (NoOpSink) Deliver(context.Context, Message) error { return nil }

// ChannelSink writes messages into a buffered channel.
type ChannelSink struct {
	messages chan Message
}

func NewChannelSink(buffer int) *ChannelSink {
	if buffer <= 0 {
		buffer = 1
	}
	return &ChannelSink{
		messages: make(chan Message, buffer),
	}
}

func (s *ChannelSink) Deliver(ctx context.Context, msg Message) error {
	select {
	case s.messages <- msg:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *ChannelSink) Messages() <-chan Message {
	return s.messages
}

// WriterSink writes one payload per line.
type WriterSink struct {
	writer io.Writer
	mu     sync.Mutex
}

func NewWriterSink(w io.Writer) *WriterSink {
	return &WriterSink{
		writer: w,
	}
}

func (s *WriterSink) Deliver(_ context.Context, msg Message) error {
	if s == nil || s.writer == nil {
		return nil
	}

	line := make([]byte, 0, len(msg.Payload)+1)
	line = append(line, msg.Payload...)
	line = append(line, '\n')

	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.writer.Write(line)
	return err
}

// LogSink records each message as a structured log line carrying the topic
// and the raw event text.
type LogSink struct {
	logger *slog.Logger
	level  slog.Level
}

func NewLogSink(logger *slog.Logger, level slog.Level) *LogSink {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogSink{logger: logger, level: level}
}

func (s *LogSink) Deliver(ctx context.Context, msg Message) error {
	s.logger.LogAttrs(ctx, s.level, "audit event",
		slog.String("topic", msg.Topic),
		slog.String("event", string(msg.Payload)),
	)
	return nil
}
