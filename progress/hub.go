// Package progress broadcasts live calibration, navigation and search
// events over an in-memory hub with an optional WebSocket feed for
// host GUIs.
package progress

import (
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// progLog derives the package sublogger at call time so it follows the
// writer installed during startup.
func progLog() *zerolog.Logger {
	l := log.With().Str("module", "progress").Logger()
	return &l
}

// subscriber channel buffer; slow readers drop events rather than
// stalling the engine.
const channelBuffer = 256

// Event is one progress update from a running operation.
type Event struct {
	At     time.Time `json:"at"`
	Task   string    `json:"task"`
	Event  string    `json:"event"`
	Detail string    `json:"detail,omitempty"`

	Kingdom int     `json:"k"`
	X       float64 `json:"x"`
	Y       float64 `json:"y"`
}

// Hub fans events out to subscribers. Publish never blocks.
type Hub struct {
	mu   sync.RWMutex
	subs []chan Event
}

func NewHub() *Hub {
	return &Hub{}
}

// Subscribe returns a channel receiving all future events.
func (h *Hub) Subscribe() <-chan Event {
	h.mu.Lock()
	defer h.mu.Unlock()

	ch := make(chan Event, channelBuffer)
	h.subs = append(h.subs, ch)
	return ch
}

// Unsubscribe removes and closes a previously subscribed channel.
func (h *Hub) Unsubscribe(ch <-chan Event) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for i, sub := range h.subs {
		if sub == ch {
			close(sub)
			h.subs = append(h.subs[:i], h.subs[i+1:]...)
			break
		}
	}
}

// Publish delivers ev to every subscriber, skipping any whose buffer
// is full. The lock is held across the sends: Unsubscribe closes
// channels under the write lock, so a send can never hit a closed
// channel, and the sends themselves never block (full buffers drop).
func (h *Hub) Publish(ev Event) {
	if ev.At.IsZero() {
		ev.At = time.Now()
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	for _, ch := range h.subs {
		select {
		case ch <- ev:
		default:
			progLog().Warn().Str("event", ev.Event).Msg("subscriber buffer full, event dropped")
		}
	}
}

// SubscriberCount reports how many feeds are attached.
func (h *Hub) SubscriberCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs)
}
