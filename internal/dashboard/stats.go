package dashboard

import (
	"time"

	"gorm.io/gorm"

	"github.com/n1techn1t-bit/IQFM-kontent/internal/models"
)

// VariantStats holds per-lane item counts for one variant.
type VariantStats struct {
	Variant string         `json:"variant"`
	Total   int            `json:"total"`
	Lanes   map[string]int `json:"lanes"`
}

// StatsSummary returns per-variant card counts grouped by lane. Every
// known lane appears in the result even when empty.
func StatsSummary(db *gorm.DB) ([]VariantStats, error) {
	type row struct {
		Variant string
		Status  string
		Count   int
	}
	var rows []row
	if err := db.Model(&models.Item{}).
		Select("variant, status, count(*) as count").
		Group("variant, status").
		Find(&rows).Error; err != nil {
		return nil, err
	}

	byVariant := make(map[string]*VariantStats, len(models.Variants))
	result := make([]VariantStats, 0, len(models.Variants))
	for _, variant := range models.Variants {
		vs := &VariantStats{Variant: variant, Lanes: make(map[string]int, len(models.Statuses))}
		for _, status := range models.Statuses {
			vs.Lanes[status] = 0
		}
		byVariant[variant] = vs
	}
	for _, r := range rows {
		vs, ok := byVariant[r.Variant]
		if !ok {
			continue
		}
		vs.Lanes[r.Status] += r.Count
		vs.Total += r.Count
	}
	for _, variant := range models.Variants {
		result = append(result, *byVariant[variant])
	}
	return result, nil
}

// UpcomingPost holds one scheduled post for the stats panel.
type UpcomingPost struct {
	ID            string    `json:"id"`
	Title         string    `json:"title"`
	Status        string    `json:"status"`
	ScheduledDate time.Time `json:"scheduledDate"`
}

// UpcomingPosts returns posts scheduled within the window, soonest
// first. Rejected cards are excluded.
func UpcomingPosts(db *gorm.DB, within time.Duration) ([]UpcomingPost, error) {
	now := time.Now()
	var items []models.Item
	if err := db.Model(&models.Item{}).
		Where("variant = ? AND status != ?", models.VariantPost, models.StatusRejected).
		Where("scheduled_date IS NOT NULL AND scheduled_date >= ? AND scheduled_date <= ?", now, now.Add(within)).
		Order("scheduled_date ASC").
		Find(&items).Error; err != nil {
		return nil, err
	}

	posts := make([]UpcomingPost, len(items))
	for i, it := range items {
		posts[i] = UpcomingPost{
			ID:            it.ID,
			Title:         it.Title,
			Status:        it.Status,
			ScheduledDate: *it.ScheduledDate,
		}
	}
	return posts, nil
}
