package store

import (
	"sync"

	"github.com/n1techn1t-bit/IQFM-kontent/internal/models"
)

// Subscription is a live feed of one variant's collection. Snapshots
// arrive on Items(); slow consumers are coalesced to the latest
// snapshot and never block writers.
type Subscription struct {
	variant string
	ch      chan []models.Item
	hub     *hub
	once    sync.Once
}

// Items returns the snapshot channel. It is closed on Unsubscribe or
// when the store shuts down.
func (sub *Subscription) Items() <-chan []models.Item {
	return sub.ch
}

// Variant reports which board variant this subscription follows.
func (sub *Subscription) Variant() string {
	return sub.variant
}

// Unsubscribe detaches the feed and closes the channel. Safe to call
// more than once.
func (sub *Subscription) Unsubscribe() {
	sub.hub.unsubscribe(sub)
}

// hub fans mutation snapshots out to active subscriptions.
type hub struct {
	mu     sync.Mutex
	subs   map[*Subscription]struct{}
	closed bool
}

func newHub() *hub {
	return &hub{subs: make(map[*Subscription]struct{})}
}

func (h *hub) subscribe(variant string, initial []models.Item) *Subscription {
	sub := &Subscription{
		variant: variant,
		ch:      make(chan []models.Item, 1),
		hub:     h,
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		sub.once.Do(func() { close(sub.ch) })
		return sub
	}
	sub.ch <- initial
	h.subs[sub] = struct{}{}
	return sub
}

func (h *hub) unsubscribe(sub *Subscription) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.subs[sub]; ok {
		delete(h.subs, sub)
		sub.once.Do(func() { close(sub.ch) })
	}
}

// publish delivers snapshot to every subscription of variant. Delivery
// is latest-wins: an unread snapshot is replaced, not queued.
func (h *hub) publish(variant string, snapshot []models.Item) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return
	}
	for sub := range h.subs {
		if sub.variant != variant {
			continue
		}
		select {
		case <-sub.ch:
		default:
		}
		sub.ch <- snapshot
	}
}

func (h *hub) close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return
	}
	h.closed = true
	for sub := range h.subs {
		delete(h.subs, sub)
		sub.once.Do(func() { close(sub.ch) })
	}
}
