// Package export writes a full snapshot of both collections as pretty
// JSON, for backups and offline review.
package export

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"
	"time"

	"github.com/n1techn1t-bit/IQFM-kontent/internal/models"
	"github.com/n1techn1t-bit/IQFM-kontent/internal/store"
)

// Snapshot is the exported document: every topic and post, lane order
// preserved, plus the moment the export was taken.
type Snapshot struct {
	Topics     []models.Item `json:"topics"`
	Posts      []models.Item `json:"posts"`
	ExportDate time.Time     `json:"exportDate"`
}

// Build reads both collections from the store. List order is
// unspecified, so each collection is rearranged into board order here.
func Build(s *store.Store) (*Snapshot, error) {
	topics, err := s.List(models.VariantTopic)
	if err != nil {
		return nil, fmt.Errorf("export: list topics: %w", err)
	}
	posts, err := s.List(models.VariantPost)
	if err != nil {
		return nil, fmt.Errorf("export: list posts: %w", err)
	}
	sortBoardOrder(topics)
	sortBoardOrder(posts)
	return &Snapshot{
		Topics:     topics,
		Posts:      posts,
		ExportDate: time.Now().UTC(),
	}, nil
}

// sortBoardOrder arranges items the way the board shows them: lane by
// lane, ascending order key within each lane. Unknown statuses sort
// after the known lanes; ties break by ID.
func sortBoardOrder(items []models.Item) {
	sort.SliceStable(items, func(i, j int) bool {
		if items[i].Status != items[j].Status {
			return laneRank(items[i].Status) < laneRank(items[j].Status)
		}
		if items[i].Order != items[j].Order {
			return items[i].Order < items[j].Order
		}
		return items[i].ID < items[j].ID
	})
}

func laneRank(status string) int {
	for i, s := range models.Statuses {
		if s == status {
			return i
		}
	}
	return len(models.Statuses)
}

// Write renders the snapshot as indented JSON.
func Write(w io.Writer, snap *Snapshot) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(snap); err != nil {
		return fmt.Errorf("export: encode: %w", err)
	}
	return nil
}

// WriteFile exports the store to path, creating or truncating it.
func WriteFile(s *store.Store, path string) error {
	snap, err := Build(s)
	if err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("export: %w", err)
	}
	defer f.Close()
	if err := Write(f, snap); err != nil {
		return err
	}
	return f.Sync()
}
