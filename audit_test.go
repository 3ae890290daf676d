package goAudit

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/tidwall/gjson"
)

type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func (b *syncBuffer) Contains(v string) bool {
	return strings.Contains(b.String(), v)
}

func TestWriterSinkWritesJSONLines(t *testing.T) {
	var buf syncBuffer
	sink := NewWriterSink(&buf)

	for _, p := range []string{`{"type":"Authentication"}`, `{"type":"dsdbChange"}`} {
		if err := sink.Deliver(context.Background(), Message{Topic: "t", Payload: []byte(p)}); err != nil {
			t.Fatalf("Deliver failed: %v", err)
		}
	}

	lines := strings.Split(strings.TrimSuffix(buf.String(), "\n"), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %q", buf.String())
	}
	if gjson.Get(lines[1], "type").String() != "dsdbChange" {
		t.Fatalf("unexpected second line %q", lines[1])
	}
}

func TestWriterSinkNilWriterIsNoOp(t *testing.T) {
	if err := NewWriterSink(nil).Deliver(context.Background(), Message{Payload: []byte(`{}`)}); err != nil {
		t.Fatalf("expected nil writer to be ignored, got %v", err)
	}
}

func TestChannelSinkHonorsContext(t *testing.T) {
	sink := NewChannelSink(1)
	if err := sink.Deliver(context.Background(), Message{Topic: "a"}); err != nil {
		t.Fatalf("Deliver failed: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	if err := sink.Deliver(ctx, Message{Topic: "b"}); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline error on full channel, got %v", err)
	}

	msg := <-sink.Messages()
	if msg.Topic != "a" {
		t.Fatalf("expected first message, got %q", msg.Topic)
	}
}

func TestLogSinkWritesStructuredLine(t *testing.T) {
	var buf syncBuffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))
	sink := NewLogSink(logger, slog.LevelInfo)

	if err := sink.Deliver(context.Background(), Message{Topic: "Authorization", Payload: []byte(`{"ok":true}`)}); err != nil {
		t.Fatalf("Deliver failed: %v", err)
	}

	line := buf.String()
	if gjson.Get(line, "topic").String() != "Authorization" {
		t.Fatalf("expected topic attribute, got %s", line)
	}
	if gjson.Get(line, "event").String() != `{"ok":true}` {
		t.Fatalf("expected raw event attribute, got %s", line)
	}
}

func TestSinkFuncAndNoOp(t *testing.T) {
	var got string
	var sink Sink = SinkFunc(func(_ context.Context, msg Message) error {
		got = msg.Topic
		return nil
	})
	if err := sink.Deliver(context.Background(), Message{Topic: "x"}); err != nil || got != "x" {
		t.Fatalf("SinkFunc not invoked: got=%q err=%v", got, err)
	}
	if err := (NoOpSink{}).Deliver(context.Background(), Message{}); err != nil {
		t.Fatalf("NoOpSink returned %v", err)
	}
}
