package natsx

import (
	"context"
	"fmt"
	"log"

	"github.com/nats-io/nats.go"

	"github.com/primaryrutabaga/braze-bridge/pkg/schemas"
	"github.com/primaryrutabaga/braze-bridge/pkg/tagbridge"
)

// Executor runs one decoded parameter bag. *tagbridge.Bridge satisfies it.
type Executor interface {
	Execute(ctx context.Context, params tagbridge.Bag) bool
}

// Source feeds tag-manager trigger events from NATS into an Executor.
// Messages that cannot be decoded are forwarded untouched to the DLQ subject
// when one is configured.
type Source struct {
	exec   Executor
	pub    Publisher
	dlq    string
	logger *log.Logger
}

// NewSource builds a Source. pub is only used for DLQ forwarding and may be
// nil when dlq is empty.
func NewSource(exec Executor, pub Publisher, dlq string, logger *log.Logger) *Source {
	if logger == nil {
		logger = log.Default()
	}
	return &Source{exec: exec, pub: pub, dlq: dlq, logger: logger}
}

// Subscribe attaches the Source to subject. A non-empty queue joins a queue
// group so that replicas share the trigger stream.
func (s *Source) Subscribe(nc *nats.Conn, subject, queue string) (*nats.Subscription, error) {
	handler := func(m *nats.Msg) { s.Process(context.Background(), m.Data) }
	var (
		sub *nats.Subscription
		err error
	)
	if queue != "" {
		sub, err = nc.QueueSubscribe(subject, queue, handler)
	} else {
		sub, err = nc.Subscribe(subject, handler)
	}
	if err != nil {
		return nil, fmt.Errorf("subscribe %s: %w", subject, err)
	}
	return sub, nil
}

// Process decodes one trigger payload and hands its data to the Executor.
// It reports whether the Executor routed the bag.
func (s *Source) Process(ctx context.Context, data []byte) bool {
	evt, err := schemas.DecodeEvent(data)
	if err != nil {
		s.logger.Printf("natsx: drop trigger: %v", err)
		s.deadLetter(data)
		return false
	}
	return s.exec.Execute(ctx, tagbridge.Bag(evt.Data))
}

func (s *Source) deadLetter(data []byte) {
	if s.dlq == "" || s.pub == nil {
		return
	}
	if err := s.pub.Publish(s.dlq, data); err != nil {
		s.logger.Printf("natsx: dlq publish %s: %v", s.dlq, err)
	}
}
