// Package tap streams every outbound engagement call to websocket clients.
// It replaces print debugging when wiring new tag containers: point a client
// at the tap and fire tags from the app.
package tap

import (
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/primaryrutabaga/braze-bridge/pkg/tagbridge"
)

const (
	pingInterval = 20 * time.Second
	readTimeout  = 60 * time.Second
	subBuffer    = 32
)

// A nil CheckOrigin rejects cross-origin browser requests; non-browser
// clients that send no Origin header are allowed.
var upgrader = websocket.Upgrader{}

// Frame is one message written to tap clients.
type Frame struct {
	Type string         `json:"type"`
	At   time.Time      `json:"at"`
	Call tagbridge.Call `json:"call"`
}

// Hub fans calls out to connected clients. Slow clients miss frames rather
// than stall the bridge.
type Hub struct {
	mu     sync.Mutex
	subs   map[chan tagbridge.Call]struct{}
	logger *log.Logger
}

func NewHub(logger *log.Logger) *Hub {
	if logger == nil {
		logger = log.Default()
	}
	return &Hub{subs: map[chan tagbridge.Call]struct{}{}, logger: logger}
}

// Sink returns a tagbridge.Sink publishing into the hub.
func (h *Hub) Sink() tagbridge.CallSink {
	return h.Publish
}

// Publish hands c to every subscriber without blocking.
func (h *Hub) Publish(c tagbridge.Call) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for ch := range h.subs {
		select {
		case ch <- c:
		default:
		}
	}
}

// Subscribers returns the number of connected clients.
func (h *Hub) Subscribers() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs)
}

func (h *Hub) subscribe() chan tagbridge.Call {
	ch := make(chan tagbridge.Call, subBuffer)
	h.mu.Lock()
	h.subs[ch] = struct{}{}
	h.mu.Unlock()
	return ch
}

func (h *Hub) unsubscribe(ch chan tagbridge.Call) {
	h.mu.Lock()
	delete(h.subs, ch)
	h.mu.Unlock()
	close(ch)
}

// ServeHTTP upgrades the request and streams frames until the client leaves.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Printf("tap: upgrade: %v", err)
		return
	}
	defer func() { _ = conn.Close() }()

	ch := h.subscribe()
	defer h.unsubscribe(ch)

	// Clients only read; the read loop exists to notice close frames and
	// keep pong deadlines moving.
	done := make(chan struct{})
	conn.SetReadLimit(1 << 10)
	_ = conn.SetReadDeadline(time.Now().Add(readTimeout))
	conn.SetPongHandler(func(string) error { return conn.SetReadDeadline(time.Now().Add(readTimeout)) })
	go func() {
		defer close(done)
		for {
			if _, _, err := conn.NextReader(); err != nil {
				return
			}
		}
	}()

	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()
	for {
		select {
		case <-done:
			return
		case c := <-ch:
			if err := conn.WriteJSON(Frame{Type: "call", At: time.Now().UTC(), Call: c}); err != nil {
				return
			}
		case <-ticker.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(time.Second)); err != nil {
				return
			}
		}
	}
}
