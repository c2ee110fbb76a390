package usecase

import (
	"sync"

	"FxPulse/internal/domain/models"
)

// AlertBus fans emitted alerts out to in-process subscribers. Each
// subscriber gets its own buffered channel; when a subscriber falls
// behind, its alerts are dropped rather than blocking the broadcaster.
type AlertBus struct {
	mu     sync.Mutex
	subs   map[int]chan models.Alert
	nextID int
	closed bool
}

// NewAlertBus creates an empty bus.
func NewAlertBus() *AlertBus {
	return &AlertBus{subs: make(map[int]chan models.Alert)}
}

// Subscribe registers a subscriber. The returned cancel func removes
// the subscription and closes its channel.
func (b *AlertBus) Subscribe(buffer int) (<-chan models.Alert, func()) {
	if buffer <= 0 {
		buffer = 16
	}
	ch := make(chan models.Alert, buffer)

	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		close(ch)
		return ch, func() {}
	}
	id := b.nextID
	b.nextID++
	b.subs[id] = ch

	return ch, func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		if c, ok := b.subs[id]; ok {
			delete(b.subs, id)
			close(c)
		}
	}
}

// Broadcast delivers an alert to every subscriber, dropping on full
// buffers.
func (b *AlertBus) Broadcast(a models.Alert) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, ch := range b.subs {
		select {
		case ch <- a:
		default:
		}
	}
}

// Close shuts the bus and closes all subscriber channels.
func (b *AlertBus) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}
	b.closed = true
	for id, ch := range b.subs {
		delete(b.subs, id)
		close(ch)
	}
}
