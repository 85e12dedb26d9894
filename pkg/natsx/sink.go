package natsx

import (
	"encoding/json"
	"log"

	"github.com/primaryrutabaga/braze-bridge/pkg/schemas"
	"github.com/primaryrutabaga/braze-bridge/pkg/tagbridge"
)

// Publisher is the subset of *nats.Conn the sink needs.
type Publisher interface {
	Publish(subject string, data []byte) error
	Flush() error
}

// Sink publishes every engagement call as a CloudEvent on
// <source>.commands.braze.<kind>. Flush requests flush the connection
// instead of publishing. Errors are logged and never returned.
type Sink struct {
	tagbridge.CallSink

	pub    Publisher
	source string
	logger *log.Logger
}

var _ tagbridge.Sink = (*Sink)(nil)

func NewSink(pub Publisher, source string, logger *log.Logger) *Sink {
	if logger == nil {
		logger = log.Default()
	}
	s := &Sink{pub: pub, source: source, logger: logger}
	s.CallSink = s.publish
	return s
}

// EventType returns the CloudEvent type for a call kind.
func EventType(kind tagbridge.CallKind) string {
	return "com.braze." + string(kind)
}

func (s *Sink) publish(call tagbridge.Call) {
	if call.Kind == tagbridge.CallFlush {
		if err := s.pub.Flush(); err != nil {
			s.logger.Printf("natsx: flush: %v", err)
		}
		return
	}

	subject, err := CallSubject(s.source, string(call.Kind))
	if err != nil {
		s.logger.Printf("natsx: subject for %s: %v", call.Kind, err)
		return
	}

	data, err := callData(call)
	if err != nil {
		s.logger.Printf("natsx: encode %s: %v", call.Kind, err)
		return
	}
	evt := schemas.NewEvent(s.source, EventType(call.Kind), data)
	evt.Subject = subject

	b, err := json.Marshal(evt)
	if err != nil {
		s.logger.Printf("natsx: marshal %s: %v", call.Kind, err)
		return
	}
	if err := s.pub.Publish(subject, b); err != nil {
		s.logger.Printf("natsx: publish %s: %v", subject, err)
	}
}

func callData(call tagbridge.Call) (map[string]any, error) {
	b, err := json.Marshal(call)
	if err != nil {
		return nil, err
	}
	var data map[string]any
	if err := json.Unmarshal(b, &data); err != nil {
		return nil, err
	}
	// Zero price and quantity are meaningful on purchases.
	if call.Kind == tagbridge.CallLogPurchase {
		data["price"] = call.Price
		data["quantity"] = call.Quantity
	}
	return data, nil
}
