// Package order computes fractional sort keys for board lanes.
//
// Keys are gap-based: appending to a lane leaves DefaultGap of headroom
// and dropping between two cards takes the midpoint of its neighbours,
// so a move is always a single-item write and never renumbers siblings.
package order

import (
	"errors"
	"sort"
	"time"

	"github.com/n1techn1t-bit/IQFM-kontent/internal/models"
)

// DefaultGap is the increment used when appending to a lane. Large
// enough that hundreds of midpoint insertions fit between two keys
// before float64 precision runs out.
const DefaultGap = 1000

// ErrSelfDrop is returned when an item is dropped before itself.
var ErrSelfDrop = errors.New("order: cannot drop an item before itself")

// ErrTargetNotInLane is returned when the drop target is missing from
// its own lane, which means the caller's snapshot is stale.
var ErrTargetNotInLane = errors.New("order: drop target not found in its lane")

// Placement is the computed destination of a moved item. The caller
// persists it as a single partial update.
type Placement struct {
	Status string
	Order  float64
}

// Sort orders items ascending by key in place. Ties break by ID so the
// result is deterministic, and the sort is stable.
func Sort(items []models.Item) {
	sort.SliceStable(items, func(i, j int) bool {
		if items[i].Order != items[j].Order {
			return items[i].Order < items[j].Order
		}
		return items[i].ID < items[j].ID
	})
}

// Lane returns the sorted members of one lane.
func Lane(items []models.Item, status string) []models.Item {
	var lane []models.Item
	for _, it := range items {
		if it.Status == status {
			lane = append(lane, it)
		}
	}
	Sort(lane)
	return lane
}

// Partition splits items into sorted lanes keyed by status. Every item
// lands in exactly one lane; unknown statuses keep their own key so
// nothing silently disappears.
func Partition(items []models.Item) map[string][]models.Item {
	lanes := make(map[string][]models.Item, len(models.Statuses))
	for _, it := range items {
		lanes[it.Status] = append(lanes[it.Status], it)
	}
	for status := range lanes {
		Sort(lanes[status])
	}
	return lanes
}

// LaneEnd places the dragged item after everything currently in the
// target lane: max key in the lane plus gap, or just gap for an empty
// lane. Repeated drops keep pushing the item further down, which is
// harmless.
func LaneEnd(items []models.Item, targetStatus string, gap float64) Placement {
	var maxOrder float64
	found := false
	for _, it := range items {
		if it.Status != targetStatus {
			continue
		}
		if !found || it.Order > maxOrder {
			maxOrder = it.Order
			found = true
		}
	}
	if !found {
		return Placement{Status: targetStatus, Order: gap}
	}
	return Placement{Status: targetStatus, Order: maxOrder + gap}
}

// Before places the dragged item immediately before target: gap above
// the lane head, or the midpoint of target and its predecessor. The
// dragged item is excluded from the lane sequence so dragging a card
// one slot down does not compute a midpoint against itself.
func Before(items []models.Item, draggedID string, target models.Item, gap float64) (Placement, error) {
	if draggedID == target.ID {
		return Placement{}, ErrSelfDrop
	}

	var lane []models.Item
	for _, it := range items {
		if it.Status == target.Status && it.ID != draggedID {
			lane = append(lane, it)
		}
	}
	Sort(lane)

	idx := -1
	for i, it := range lane {
		if it.ID == target.ID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return Placement{}, ErrTargetNotInLane
	}

	if idx == 0 {
		return Placement{Status: target.Status, Order: target.Order - gap}, nil
	}
	return Placement{
		Status: target.Status,
		Order:  (lane[idx-1].Order + target.Order) / 2,
	}, nil
}

// Seed returns the key for a newly created item: a now-derived value
// large enough to sort after every hand-placed key, so new items land
// at the lane end by default.
func Seed(now time.Time) float64 {
	return float64(now.UnixMilli())
}

// Renumber reassigns evenly spaced keys (gap, 2*gap, ...) to a sorted
// lane, restoring headroom after heavy midpoint insertion. It returns
// one placement per item in lane order; callers persist them all.
func Renumber(lane []models.Item, gap float64) []Placement {
	placements := make([]Placement, len(lane))
	for i, it := range lane {
		placements[i] = Placement{Status: it.Status, Order: float64(i+1) * gap}
	}
	return placements
}
