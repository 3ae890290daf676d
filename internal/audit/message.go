package audit

import "context"

// Message is a serialized audit document addressed to a topic.
type Message struct {
	Topic   string
	Payload []byte
}

// Sink receives serialized audit documents.
type Sink interface {
	Deliver(ctx context.Context, msg Message) error
}

// SinkFunc adapts a function to Sink.
type SinkFunc func(ctx context.Context, msg Message) error

func (f SinkFunc) Deliver(ctx context.Context, msg Message) error {
	return f(ctx, msg)
}
