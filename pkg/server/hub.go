package server

import (
	"sync"

	"booksim/pkg/models"
)

// Subscription receives broadcast snapshots. Slow consumers lose
// intermediate snapshots rather than stalling the pipeline.
type Subscription struct {
	C chan models.BookSnapshot
}

// Hub fans fresh snapshots out to websocket subscribers.
type Hub struct {
	mu   sync.RWMutex
	subs map[*Subscription]struct{}
}

func NewHub() *Hub {
	return &Hub{subs: make(map[*Subscription]struct{})}
}

func (h *Hub) Subscribe(buffer int) *Subscription {
	sub := &Subscription{C: make(chan models.BookSnapshot, buffer)}
	h.mu.Lock()
	h.subs[sub] = struct{}{}
	h.mu.Unlock()
	return sub
}

func (h *Hub) Unsubscribe(sub *Subscription) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.subs[sub]; !ok {
		return
	}
	delete(h.subs, sub)
	close(sub.C)
}

func (h *Hub) Broadcast(snap models.BookSnapshot) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for sub := range h.subs {
		select {
		case sub.C <- snap:
		default:
		}
	}
}
