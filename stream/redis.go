package stream

import (
	"context"
	"errors"
	"fmt"

	"github.com/MrEthical07/goAudit/internal/audit"
	"github.com/redis/go-redis/v9"
)

// PayloadField is the stream entry field holding the serialized event.
const PayloadField = "payload"

var (
	// ErrRedisUnavailable wraps transport failures.
	ErrRedisUnavailable = errors.New("redis unavailable")
	// ErrEmptyTopic is returned for messages without a topic.
	ErrEmptyTopic = errors.New("empty audit topic")
)

// Entry is one stored event.
type Entry struct {
	ID      string
	Payload []byte
}

// RedisSink appends each message to the stream <prefix>:<topic>, trimming
// it to the newest maxLen entries when maxLen > 0. With publish set the payload
// is also sent on the channel of the same name.
type RedisSink struct {
	redis   redis.UniversalClient
	prefix  string
	maxLen  int64
	publish bool
}

func NewRedisSink(redis redis.UniversalClient, prefix string, maxLen int64, publish bool) *RedisSink {
	return &RedisSink{
		redis:   redis,
		prefix:  prefix,
		maxLen:  maxLen,
		publish: publish,
	}
}

// Key returns the stream and channel name for topic.
func (s *RedisSink) Key(topic string) string {
	return s.prefix + ":" + topic
}

func (s *RedisSink) Deliver(ctx context.Context, msg audit.Message) error {
	if msg.Topic == "" {
		return ErrEmptyTopic
	}
	key := s.Key(msg.Topic)

	_, err := s.redis.Pipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.XAdd(ctx, &redis.XAddArgs{
			Stream: key,
			MaxLen: s.maxLen,
			Values: map[string]interface{}{PayloadField: msg.Payload},
		})
		if s.publish {
			pipe.Publish(ctx, key, msg.Payload)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("%w: xadd %s: %w", ErrRedisUnavailable, key, err)
	}
	return nil
}

// Range returns up to count of the oldest entries for topic. count <= 0
// returns all of them.
func (s *RedisSink) Range(ctx context.Context, topic string, count int64) ([]Entry, error) {
	key := s.Key(topic)

	var (
		msgs []redis.XMessage
		err  error
	)
	if count > 0 {
		msgs, err = s.redis.XRangeN(ctx, key, "-", "+", count).Result()
	} else {
		msgs, err = s.redis.XRange(ctx, key, "-", "+").Result()
	}
	if err != nil {
		return nil, fmt.Errorf("%w: xrange %s: %w", ErrRedisUnavailable, key, err)
	}

	out := make([]Entry, 0, len(msgs))
	for _, m := range msgs {
		raw, ok := m.Values[PayloadField].(string)
		if !ok {
			continue
		}
		out = append(out, Entry{ID: m.ID, Payload: []byte(raw)})
	}
	return out, nil
}

// Len returns the number of entries stored for topic.
func (s *RedisSink) Len(ctx context.Context, topic string) (int64, error) {
	key := s.Key(topic)
	n, err := s.redis.XLen(ctx, key).Result()
	if err != nil {
		return 0, fmt.Errorf("%w: xlen %s: %w", ErrRedisUnavailable, key, err)
	}
	return n, nil
}
