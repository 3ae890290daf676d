package seal

import (
	"context"
	"fmt"

	"github.com/MrEthical07/goAudit/internal/audit"
)

// Sink seals each payload and forwards the token to next under the same
// topic.
type Sink struct {
	sealer *Sealer
	next   audit.Sink
}

func NewSink(sealer *Sealer, next audit.Sink) *Sink {
	return &Sink{sealer: sealer, next: next}
}

func (s *Sink) Deliver(ctx context.Context, msg audit.Message) error {
	token, err := s.sealer.Seal(msg.Topic, msg.Payload)
	if err != nil {
		return fmt.Errorf("seal %s event: %w", msg.Topic, err)
	}
	return s.next.Deliver(ctx, audit.Message{Topic: msg.Topic, Payload: []byte(token)})
}
