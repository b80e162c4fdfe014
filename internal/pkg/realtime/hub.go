package realtime

import (
	"context"
	"sync"
)

// AllTables subscribes to every table.
const AllTables = "*"

// Hub manages subscribers per table and broadcasts changes to them.
type Hub struct {
	mu          sync.RWMutex
	subscribers map[string]map[chan Change]struct{}
	buffer      int
}

// NewHub creates a new Hub instance
func NewHub() *Hub {
	return &Hub{
		subscribers: make(map[string]map[chan Change]struct{}),
		buffer:      16,
	}
}

// Subscribe registers a subscriber for table (or AllTables) and returns the
// change channel and its cleanup function.
func (h *Hub) Subscribe(table string) (<-chan Change, func()) {
	h.mu.Lock()
	defer h.mu.Unlock()

	ch := make(chan Change, h.buffer)

	if h.subscribers[table] == nil {
		h.subscribers[table] = make(map[chan Change]struct{})
	}
	h.subscribers[table][ch] = struct{}{}

	var once sync.Once
	cleanup := func() {
		once.Do(func() {
			h.mu.Lock()
			defer h.mu.Unlock()
			delete(h.subscribers[table], ch)
			close(ch)
			if len(h.subscribers[table]) == 0 {
				delete(h.subscribers, table)
			}
		})
	}

	return ch, cleanup
}

// Publish implements Publisher. Slow subscribers miss changes rather than
// block the publisher.
func (h *Hub) Publish(_ context.Context, change Change) error {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for _, key := range []string{change.Table, AllTables} {
		for ch := range h.subscribers[key] {
			select {
			case ch <- change:
			default:
			}
		}
	}
	return nil
}

// SubscriberCount returns the number of active subscribers for a table
func (h *Hub) SubscriberCount(table string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subscribers[table])
}

// TotalSubscribers returns the total number of active subscribers
func (h *Hub) TotalSubscribers() int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	total := 0
	for _, subs := range h.subscribers {
		total += len(subs)
	}
	return total
}
