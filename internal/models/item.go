package models

import "time"

// Board lanes. Every item sits in exactly one lane at a time.
const (
	StatusBacklog         = "BACKLOG"
	StatusTodo            = "TODO"
	StatusChangesRequired = "CHANGES_REQUIRED"
	StatusRejected        = "REJECTED"
)

// Variants partition the shared item collection into two independent
// boards: the idea backlog and the post pipeline.
const (
	VariantTopic = "TOPIC"
	VariantPost  = "POST"
)

// Statuses lists every lane in display order.
var Statuses = []string{StatusBacklog, StatusTodo, StatusChangesRequired, StatusRejected}

// Variants lists both board variants.
var Variants = []string{VariantTopic, VariantPost}

// ValidStatus reports whether s names a known lane.
func ValidStatus(s string) bool {
	for _, st := range Statuses {
		if s == st {
			return true
		}
	}
	return false
}

// ValidVariant reports whether v names a known board variant.
func ValidVariant(v string) bool {
	return v == VariantTopic || v == VariantPost
}

// Item is the unit managed by the board. Variant is fixed at creation;
// lane moves only ever touch Status and Order. The comment list is an
// embedded document on the row, mutated by read-modify-write.
type Item struct {
	ID            string      `gorm:"primaryKey;size:32" json:"id"`
	Title         string      `gorm:"not null" json:"title"`
	Description   string      `gorm:"type:text" json:"description"`
	Status        string      `gorm:"size:32;default:BACKLOG;index" json:"status"`
	Variant       string      `gorm:"size:8;index" json:"variant"`
	Order         float64     `gorm:"column:sort_order" json:"order"`
	Tags          StringList  `gorm:"type:json" json:"tags"`
	Comments      CommentList `gorm:"type:json" json:"comments"`
	ScheduledDate *time.Time  `json:"scheduledDate,omitempty"`
	CreatedAt     time.Time   `json:"createdAt"`
	UpdatedAt     time.Time   `json:"updatedAt"`
}

// Comment is one entry in an item's discussion thread. UserID and
// UserName are a snapshot of the author at creation time.
type Comment struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	UserName  string    `json:"userName"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"createdAt"`
}
