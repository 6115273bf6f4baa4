// Package scheduler sweeps the post pipeline for scheduled dates that
// have arrived and announces them to the notifier.
package scheduler

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/n1techn1t-bit/IQFM-kontent/internal/models"
	"github.com/n1techn1t-bit/IQFM-kontent/internal/notify"
	"github.com/n1techn1t-bit/IQFM-kontent/internal/store"
)

// cronParser uses standard 5-field cron expressions (minute, hour, dom, month, dow).
var cronParser = cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)

// Scheduler fires a due-post sweep on a cron cadence. A post is due
// when its scheduled date has passed while the card still sits on the
// board; each (item, scheduled date) pair is announced once.
type Scheduler struct {
	store    *store.Store
	notifier *notify.Notifier
	sched    cron.Schedule

	mu        sync.Mutex
	announced map[string]time.Time // item ID → scheduled date already announced
}

// Opts holds parameters for creating a Scheduler.
type Opts struct {
	Store    *store.Store
	Notifier *notify.Notifier
	Cron     string // 5-field cron expression, e.g. "*/5 * * * *"
}

// New validates opts and builds a Scheduler.
func New(opts Opts) (*Scheduler, error) {
	if opts.Store == nil {
		return nil, fmt.Errorf("scheduler: store is required")
	}
	if opts.Notifier == nil {
		opts.Notifier = notify.NewNotifier()
	}
	sched, err := cronParser.Parse(opts.Cron)
	if err != nil {
		return nil, fmt.Errorf("scheduler: parse cron %q: %w", opts.Cron, err)
	}
	return &Scheduler{
		store:     opts.Store,
		notifier:  opts.Notifier,
		sched:     sched,
		announced: make(map[string]time.Time),
	}, nil
}

// Run sweeps on the configured cadence until ctx is cancelled.
func (s *Scheduler) Run(ctx context.Context) error {
	for {
		next := s.sched.Next(time.Now())
		timer := time.NewTimer(time.Until(next))
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil
		case <-timer.C:
		}
		if _, err := s.Sweep(ctx, time.Now()); err != nil {
			log.Printf("scheduler: sweep: %v", err)
		}
	}
}

// Sweep announces posts whose scheduled date has passed and returns
// them. Already-announced pairs and rejected cards are skipped.
func (s *Scheduler) Sweep(ctx context.Context, now time.Time) ([]models.Item, error) {
	items, err := s.store.List(models.VariantPost)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var due []models.Item
	var events []notify.FormattedEvent
	for _, it := range items {
		if it.ScheduledDate == nil || it.ScheduledDate.After(now) {
			continue
		}
		if it.Status == models.StatusRejected {
			continue
		}
		if prev, seen := s.announced[it.ID]; seen && prev.Equal(*it.ScheduledDate) {
			continue
		}
		s.announced[it.ID] = *it.ScheduledDate
		due = append(due, it)
		events = append(events, notify.FormatDuePost(it))
	}

	if len(events) > 0 {
		s.notifier.Announce(ctx, events...)
	}
	return due, nil
}
