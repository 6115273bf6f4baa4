package notify

import (
	"context"
	"fmt"
	"sync"

	"github.com/n1techn1t-bit/IQFM-kontent/internal/models"
	"github.com/n1techn1t-bit/IQFM-kontent/internal/store"
)

// Watcher turns the store's snapshot pushes into chat events by
// diffing successive snapshots per variant: creations, lane moves and
// comment growth become FormattedEvents on the Notifier.
type Watcher struct {
	store    *store.Store
	notifier *Notifier
	variants []string
}

// WatcherOpts holds parameters for creating a Watcher.
type WatcherOpts struct {
	Store    *store.Store
	Notifier *Notifier
	Variants []string // nil → both boards
}

// NewWatcher validates opts and builds a Watcher.
func NewWatcher(opts WatcherOpts) (*Watcher, error) {
	if opts.Store == nil {
		return nil, fmt.Errorf("notify: watcher requires a store")
	}
	if opts.Notifier == nil {
		opts.Notifier = NewNotifier()
	}
	if len(opts.Variants) == 0 {
		opts.Variants = models.Variants
	}
	for _, v := range opts.Variants {
		if !models.ValidVariant(v) {
			return nil, fmt.Errorf("notify: invalid variant %q", v)
		}
	}
	return &Watcher{store: opts.Store, notifier: opts.Notifier, variants: opts.Variants}, nil
}

// Run subscribes to each variant and announces diffs until ctx is
// cancelled. Subscriptions are released on exit.
func (w *Watcher) Run(ctx context.Context) error {
	var wg sync.WaitGroup
	for _, variant := range w.variants {
		sub, err := w.store.Subscribe(variant)
		if err != nil {
			return err
		}
		wg.Add(1)
		go func() {
			defer wg.Done()
			defer sub.Unsubscribe()
			w.follow(ctx, sub)
		}()
	}
	wg.Wait()
	return nil
}

func (w *Watcher) follow(ctx context.Context, sub *store.Subscription) {
	var prev map[string]models.Item
	primed := false
	for {
		select {
		case <-ctx.Done():
			return
		case snap, ok := <-sub.Items():
			if !ok {
				return
			}
			if !primed {
				// The initial snapshot is state, not news.
				prev = indexByID(snap)
				primed = true
				continue
			}
			events := diffSnapshots(prev, snap)
			prev = indexByID(snap)
			if len(events) > 0 {
				w.notifier.Announce(ctx, events...)
			}
		}
	}
}

// diffSnapshots compares two snapshots of one variant and returns the
// events that happened in between. Deletions are silent: a removed card
// needs no client ping.
func diffSnapshots(prev map[string]models.Item, next []models.Item) []FormattedEvent {
	var events []FormattedEvent
	for _, it := range next {
		old, existed := prev[it.ID]
		if !existed {
			events = append(events, FormatItemCreated(it))
			continue
		}
		if old.Status != it.Status {
			events = append(events, FormatItemMoved(it, old.Status))
		}
		if len(it.Comments) > len(old.Comments) {
			events = append(events, FormatCommentAdded(it, it.Comments[len(it.Comments)-1]))
		}
	}
	return events
}

func indexByID(items []models.Item) map[string]models.Item {
	m := make(map[string]models.Item, len(items))
	for _, it := range items {
		m[it.ID] = it
	}
	return m
}
