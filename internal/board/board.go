// Package board maintains the live lane view for one variant and
// coordinates the drag-and-drop lifecycle against the item store.
package board

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/n1techn1t-bit/IQFM-kontent/internal/models"
	"github.com/n1techn1t-bit/IQFM-kontent/internal/order"
	"github.com/n1techn1t-bit/IQFM-kontent/internal/store"
)

// ErrEmptyTitle rejects blank item titles before any store call.
var ErrEmptyTitle = errors.New("board: title is required")

// ErrEmptyComment rejects blank comment text before any store call.
var ErrEmptyComment = errors.New("board: comment text is required")

// ErrCommentNotFound is returned when an edit targets a comment that is
// no longer on the item.
var ErrCommentNotFound = errors.New("board: comment not found")

// Opts holds parameters for opening a board.
type Opts struct {
	Variant string
	Gap     float64 // 0 → order.DefaultGap
}

// Board mirrors one variant's collection as pushed by the store and
// exposes lane-partitioned, order-sorted views. It never applies an
// optimistic order locally: a drop issues exactly one store update and
// the view refreshes when the store pushes the result back.
type Board struct {
	store   *store.Store
	variant string
	gap     float64

	mu        sync.Mutex
	items     []models.Item
	dragID    string
	hoverLane string
	lastSeed  float64

	sub  *store.Subscription
	done chan struct{}
}

// Open subscribes to the variant and returns a board primed with the
// current snapshot. Callers must Close when their scope ends.
func Open(s *store.Store, opts Opts) (*Board, error) {
	if !models.ValidVariant(opts.Variant) {
		return nil, fmt.Errorf("board: invalid variant %q", opts.Variant)
	}
	if opts.Gap <= 0 {
		opts.Gap = order.DefaultGap
	}

	sub, err := s.Subscribe(opts.Variant)
	if err != nil {
		return nil, err
	}

	b := &Board{
		store:   s,
		variant: opts.Variant,
		gap:     opts.Gap,
		sub:     sub,
		done:    make(chan struct{}),
	}

	// First delivery is the initial snapshot, primed at subscribe time.
	b.items = <-sub.Items()

	go b.follow()
	return b, nil
}

// follow applies pushed snapshots to the local mirror until the
// subscription closes.
func (b *Board) follow() {
	defer close(b.done)
	for snap := range b.sub.Items() {
		b.mu.Lock()
		b.items = snap
		b.mu.Unlock()
	}
}

// Close releases the subscription and waits for the mirror goroutine.
func (b *Board) Close() {
	b.sub.Unsubscribe()
	<-b.done
}

// Variant reports which board this is.
func (b *Board) Variant() string {
	return b.variant
}

// Items returns a copy of the raw mirror.
func (b *Board) Items() []models.Item {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]models.Item, len(b.items))
	copy(out, b.items)
	return out
}

// Lane returns the sorted members of one lane.
func (b *Board) Lane(status string) []models.Item {
	return order.Lane(b.Items(), status)
}

// Lanes returns every lane, sorted, keyed by status.
func (b *Board) Lanes() map[string][]models.Item {
	return order.Partition(b.Items())
}

// Counts returns the item count per lane for all known lanes.
func (b *Board) Counts() map[string]int {
	counts := make(map[string]int, len(models.Statuses))
	for _, status := range models.Statuses {
		counts[status] = 0
	}
	for _, it := range b.Items() {
		counts[it.Status]++
	}
	return counts
}

// CreateItem validates the title locally, seeds a now-derived order key
// so the item lands at the lane end, and inserts into BACKLOG.
func (b *Board) CreateItem(title string) (*models.Item, error) {
	if strings.TrimSpace(title) == "" {
		return nil, ErrEmptyTitle
	}

	seed := order.Seed(time.Now())
	b.mu.Lock()
	if seed <= b.lastSeed {
		seed = b.lastSeed + 1
	}
	b.lastSeed = seed
	b.mu.Unlock()

	return b.store.Create(store.CreateOpts{
		Title:   title,
		Variant: b.variant,
		Status:  models.StatusBacklog,
		Order:   seed,
	})
}

// UpdateItem merges the given fields into an existing item.
func (b *Board) UpdateItem(id string, fields store.UpdateFields) (*models.Item, error) {
	return b.store.Update(id, fields)
}

// DeleteItem hard-deletes an item. Irreversible; the presentation layer
// confirms with the user before calling.
func (b *Board) DeleteItem(id string) error {
	return b.store.Delete(id)
}

// RenumberLane reassigns evenly spaced order keys to one lane,
// restoring midpoint headroom. Explicit maintenance, never automatic.
func (b *Board) RenumberLane(status string) (int, error) {
	if !models.ValidStatus(status) {
		return 0, fmt.Errorf("board: invalid status %q", status)
	}
	lane := b.Lane(status)
	placements := order.Renumber(lane, b.gap)
	for i, p := range placements {
		if _, err := b.store.Update(lane[i].ID, store.UpdateFields{Order: &p.Order}); err != nil {
			return i, err
		}
	}
	return len(placements), nil
}

// AddComment appends a comment authored by user, snapshotting the
// author's identity. Read-modify-write: concurrent editors can lose
// updates, which is accepted for this system.
func (b *Board) AddComment(itemID, text string, author models.User) (*models.Comment, error) {
	if strings.TrimSpace(text) == "" {
		return nil, ErrEmptyComment
	}

	item, err := b.store.Get(itemID)
	if err != nil {
		return nil, err
	}

	comment := models.Comment{
		ID:        newCommentID(),
		UserID:    author.ID,
		UserName:  author.Name,
		Text:      text,
		CreatedAt: time.Now(),
	}
	comments := append([]models.Comment(item.Comments), comment)

	if _, err := b.store.Update(itemID, store.UpdateFields{Comments: &comments}); err != nil {
		return nil, err
	}
	return &comment, nil
}

// EditComment replaces one comment's text in place, leaving its
// authorship snapshot and timestamp untouched.
func (b *Board) EditComment(itemID, commentID, text string) error {
	item, err := b.store.Get(itemID)
	if err != nil {
		return err
	}

	comments := append([]models.Comment(nil), item.Comments...)
	found := false
	for i := range comments {
		if comments[i].ID == commentID {
			comments[i].Text = text
			found = true
			break
		}
	}
	if !found {
		return fmt.Errorf("board: edit comment %s on %s: %w", commentID, itemID, ErrCommentNotFound)
	}

	_, err = b.store.Update(itemID, store.UpdateFields{Comments: &comments})
	return err
}

// DeleteComment removes one comment. Removing an already-gone comment
// is a no-op, matching the filter semantics of the write.
func (b *Board) DeleteComment(itemID, commentID string) error {
	item, err := b.store.Get(itemID)
	if err != nil {
		return err
	}

	comments := make([]models.Comment, 0, len(item.Comments))
	for _, c := range item.Comments {
		if c.ID != commentID {
			comments = append(comments, c)
		}
	}

	_, err = b.store.Update(itemID, store.UpdateFields{Comments: &comments})
	return err
}

// newCommentID generates a comment ID unique within its parent item.
func newCommentID() string {
	return "c_" + strconv.FormatInt(time.Now().UnixNano(), 10)
}
