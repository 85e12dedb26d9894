package schemas

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

const (
	CloudEventsSpecVersion = "1.0"
)

// ErrNotObject is returned when an event's data is not a JSON object.
var ErrNotObject = errors.New("event data is not an object")

// CloudEvent represents the minimal CloudEvents envelope used on the bus.
// Inbound tag triggers carry the parameter bag as Data; outbound calls carry
// their payload the same way.
type CloudEvent struct {
	SpecVersion string         `json:"specversion"`
	ID          string         `json:"id"`
	Source      string         `json:"source"`
	Type        string         `json:"type"`
	Time        string         `json:"time"`
	DataSchema  string         `json:"dataschema,omitempty"`
	Subject     string         `json:"subject,omitempty"`
	Data        map[string]any `json:"data,omitempty"`
}

// NewEvent stamps a fresh envelope with a random id and the current UTC time.
func NewEvent(source, typ string, data map[string]any) CloudEvent {
	return CloudEvent{
		SpecVersion: CloudEventsSpecVersion,
		ID:          uuid.NewString(),
		Source:      source,
		Type:        typ,
		Time:        time.Now().UTC().Format(time.RFC3339),
		Data:        data,
	}
}

// DecodeEvent parses a CloudEvent whose data is a JSON object. Numbers in
// data are normalized to int64 when integral and float64 otherwise.
func DecodeEvent(b []byte) (*CloudEvent, error) {
	var raw struct {
		CloudEvent
		Data json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(b, &raw); err != nil {
		return nil, fmt.Errorf("decode envelope: %w", err)
	}
	evt := raw.CloudEvent
	if len(raw.Data) == 0 || bytes.Equal(raw.Data, []byte("null")) {
		return nil, fmt.Errorf("event %s: %w", evt.ID, ErrNotObject)
	}

	dec := json.NewDecoder(bytes.NewReader(raw.Data))
	dec.UseNumber()
	var data any
	if err := dec.Decode(&data); err != nil {
		return nil, fmt.Errorf("decode data: %w", err)
	}
	obj, ok := normalizeNumbers(data).(map[string]any)
	if !ok {
		return nil, fmt.Errorf("event %s: %w", evt.ID, ErrNotObject)
	}
	evt.Data = obj
	return &evt, nil
}

func normalizeNumbers(v any) any {
	switch t := v.(type) {
	case json.Number:
		if n, err := t.Int64(); err == nil {
			return n
		}
		f, _ := t.Float64()
		return f
	case map[string]any:
		for k, item := range t {
			t[k] = normalizeNumbers(item)
		}
		return t
	case []any:
		for i, item := range t {
			t[i] = normalizeNumbers(item)
		}
		return t
	default:
		return v
	}
}
