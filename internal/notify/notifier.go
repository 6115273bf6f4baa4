package notify

import (
	"context"
	"log"
)

// Notifier fans events out to the configured adapters. Delivery is
// best-effort: a failed send is logged, never returned to the board
// operation that caused it.
type Notifier struct {
	adapters []Adapter
}

// NewNotifier wraps zero or more adapters. With none configured every
// call is a no-op, so callers never need a nil check.
func NewNotifier(adapters ...Adapter) *Notifier {
	return &Notifier{adapters: adapters}
}

// Connect brings up all adapters. Adapters that fail to connect are
// dropped from the rotation with a log line.
func (n *Notifier) Connect(ctx context.Context) {
	live := n.adapters[:0]
	for _, a := range n.adapters {
		if err := a.Connect(ctx); err != nil {
			log.Printf("notify: adapter connect failed: %v", err)
			continue
		}
		live = append(live, a)
	}
	n.adapters = live
}

// Announce sends one message carrying the given events to every
// adapter.
func (n *Notifier) Announce(ctx context.Context, events ...FormattedEvent) {
	if len(events) == 0 {
		return
	}
	msg := OutboundMessage{Text: events[0].Title, Events: events}
	for _, a := range n.adapters {
		if err := a.Send(ctx, msg); err != nil {
			log.Printf("notify: send failed: %v", err)
		}
	}
}

// Close shuts down all adapters.
func (n *Notifier) Close() {
	for _, a := range n.adapters {
		if err := a.Close(); err != nil {
			log.Printf("notify: adapter close failed: %v", err)
		}
	}
}
