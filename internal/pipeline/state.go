package pipeline

import (
	"sync"
	"time"
)

// State is the externally visible snapshot of a run, published on every
// stage or progress change.
type State struct {
	RunID string `json:"run_id,omitempty"`
	Stage Stage  `json:"stage"`
	// Progress is a whole percentage, 0 to 100.
	Progress  int       `json:"progress"`
	Log       string    `json:"log,omitempty"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Hub fans state changes out to subscribers. Each subscriber gets a small
// buffered channel; when a slow subscriber falls behind, older updates are
// dropped in favor of the newest, so readers always converge on the latest
// state. New subscribers immediately receive the most recent state.
type Hub struct {
	mu     sync.Mutex
	subs   map[int]chan State
	nextID int
	latest State
	primed bool
}

// NewHub constructs an empty state hub.
func NewHub() *Hub {
	return &Hub{subs: make(map[int]chan State)}
}

// Publish records the state as latest and delivers it to every subscriber.
func (h *Hub) Publish(state State) {
	if h == nil {
		return
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	h.latest = state
	h.primed = true
	for _, ch := range h.subs {
		select {
		case ch <- state:
		default:
			// Full buffer: evict the oldest pending update and retry once.
			select {
			case <-ch:
			default:
			}
			select {
			case ch <- state:
			default:
			}
		}
	}
}

// Latest returns the most recently published state, if any.
func (h *Hub) Latest() (State, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.latest, h.primed
}

// Subscribe registers a new subscriber. The returned cancel func must be
// called to release the subscription; the channel is closed on cancel.
func (h *Hub) Subscribe() (<-chan State, func()) {
	ch := make(chan State, 8)
	h.mu.Lock()
	id := h.nextID
	h.nextID++
	h.subs[id] = ch
	if h.primed {
		ch <- h.latest
	}
	h.mu.Unlock()

	cancel := func() {
		h.mu.Lock()
		defer h.mu.Unlock()
		if sub, ok := h.subs[id]; ok {
			delete(h.subs, id)
			close(sub)
		}
	}
	return ch, cancel
}
