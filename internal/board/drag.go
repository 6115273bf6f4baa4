package board

import (
	"errors"

	"github.com/n1techn1t-bit/IQFM-kontent/internal/models"
	"github.com/n1techn1t-bit/IQFM-kontent/internal/order"
	"github.com/n1techn1t-bit/IQFM-kontent/internal/store"
)

// Drag lifecycle. The board is Idle until DragStart and returns to Idle
// on every exit path: drop on a lane, drop on a card, or cancel. Hover
// highlighting is cleared on all three, including when the store write
// fails, so a card can never stay stuck in the dragging state.

// DragStart begins a drag gesture for the given card.
func (b *Board) DragStart(itemID string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.dragID = itemID
	b.hoverLane = ""
}

// DragEnterLane records which lane the drag is currently over. Ignored
// when no drag is active.
func (b *Board) DragEnterLane(status string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.dragID == "" {
		return
	}
	b.hoverLane = status
}

// Dragging returns the ID of the card being dragged, or "" when Idle.
func (b *Board) Dragging() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.dragID
}

// HoverLane returns the lane currently highlighted as drop target, or
// "" when none.
func (b *Board) HoverLane() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.hoverLane
}

// DragCancel abandons the gesture with no store mutation.
func (b *Board) DragCancel() {
	b.resetDrag()
}

// DropOnLane drops the dragged card on a lane background, appending it
// after everything already there. Exactly one store update; the mirror
// refreshes via the store's push, not optimistically.
func (b *Board) DropOnLane(status string) error {
	b.mu.Lock()
	id := b.dragID
	b.mu.Unlock()
	defer b.resetDrag()

	if id == "" {
		return nil
	}
	return b.MoveToLaneEnd(id, status)
}

// DropOnItem drops the dragged card onto another card, inserting it
// immediately before that card in the target's lane. Dropping a card
// onto itself is a no-op.
func (b *Board) DropOnItem(target models.Item) error {
	b.mu.Lock()
	id := b.dragID
	b.mu.Unlock()
	defer b.resetDrag()

	if id == "" {
		return nil
	}
	return b.MoveBefore(id, target)
}

// Stateless moves. The drag fields above belong to one owner at a time,
// so callers that multiplex users over a shared board (the HTTP API)
// name the card explicitly instead of going through DragStart. Each
// move reads its own snapshot and issues one store update; interleaved
// moves for different cards cannot clobber each other.

// MoveToLaneEnd appends the named card after everything in status.
func (b *Board) MoveToLaneEnd(id, status string) error {
	if !models.ValidStatus(status) {
		return errors.New("board: drop on unknown lane " + status)
	}
	p := order.LaneEnd(b.Items(), status, b.gap)
	_, err := b.store.Update(id, store.UpdateFields{Status: &p.Status, Order: &p.Order})
	return err
}

// MoveBefore inserts the named card immediately before target in the
// target's lane. Moving a card before itself is a no-op.
func (b *Board) MoveBefore(id string, target models.Item) error {
	p, err := order.Before(b.Items(), id, target, b.gap)
	if errors.Is(err, order.ErrSelfDrop) {
		return nil
	}
	if err != nil {
		return err
	}
	_, err = b.store.Update(id, store.UpdateFields{Status: &p.Status, Order: &p.Order})
	return err
}

func (b *Board) resetDrag() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.dragID = ""
	b.hoverLane = ""
}
