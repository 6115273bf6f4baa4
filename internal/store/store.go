// Package store implements the item collection over GORM with live
// change notifications per board variant.
package store

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/n1techn1t-bit/IQFM-kontent/internal/models"
	"gorm.io/gorm"
)

// ErrNotFound is returned when an operation targets an item that no
// longer exists, e.g. deleted by another client mid-edit.
var ErrNotFound = errors.New("store: item not found")

// Store is the server of record for items. Every successful mutation
// publishes a fresh snapshot of the affected variant to subscribers.
type Store struct {
	db  *gorm.DB
	hub *hub
}

// New wraps an open GORM connection.
func New(db *gorm.DB) *Store {
	return &Store{db: db, hub: newHub()}
}

// DB exposes the underlying connection for maintenance operations.
func (s *Store) DB() *gorm.DB {
	return s.db
}

// Close tears down all active subscriptions.
func (s *Store) Close() {
	s.hub.close()
}

// GenerateID creates a unique item ID in it-xxxxxx format.
func GenerateID() (string, error) {
	b := make([]byte, 3)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("store: generate ID: %w", err)
	}
	return "it-" + hex.EncodeToString(b), nil
}

// CreateOpts holds parameters for inserting a new item. ID and
// CreatedAt are assigned by the store.
type CreateOpts struct {
	Title         string
	Description   string
	Variant       string
	Status        string
	Order         float64
	Tags          []string
	ScheduledDate *time.Time
}

// Create inserts a new item and publishes the variant's snapshot.
func (s *Store) Create(opts CreateOpts) (*models.Item, error) {
	if opts.Title == "" {
		return nil, fmt.Errorf("store: title is required")
	}
	if !models.ValidVariant(opts.Variant) {
		return nil, fmt.Errorf("store: invalid variant %q", opts.Variant)
	}
	if opts.Status == "" {
		opts.Status = models.StatusBacklog
	}
	if !models.ValidStatus(opts.Status) {
		return nil, fmt.Errorf("store: invalid status %q", opts.Status)
	}

	id, err := s.generateUniqueID()
	if err != nil {
		return nil, err
	}

	item := models.Item{
		ID:            id,
		Title:         opts.Title,
		Description:   opts.Description,
		Status:        opts.Status,
		Variant:       opts.Variant,
		Order:         opts.Order,
		Tags:          models.StringList(opts.Tags),
		Comments:      models.CommentList{},
		ScheduledDate: opts.ScheduledDate,
	}

	if err := s.db.Create(&item).Error; err != nil {
		return nil, fmt.Errorf("store: create: %w", err)
	}

	s.publish(opts.Variant)
	return &item, nil
}

// Get retrieves one item by ID.
func (s *Store) Get(id string) (*models.Item, error) {
	var item models.Item
	if err := s.db.Where("id = ?", id).First(&item).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("store: get %s: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("store: get %s: %w", id, err)
	}
	return &item, nil
}

// List returns all items of one variant. Order is unspecified; callers
// sort client-side by key.
func (s *Store) List(variant string) ([]models.Item, error) {
	if !models.ValidVariant(variant) {
		return nil, fmt.Errorf("store: invalid variant %q", variant)
	}
	var items []models.Item
	if err := s.db.Where("variant = ?", variant).Find(&items).Error; err != nil {
		return nil, fmt.Errorf("store: list %s: %w", variant, err)
	}
	return items, nil
}

// UpdateFields is a partial item update: nil fields are untouched.
// There is no variant field — an item's variant is fixed for life.
type UpdateFields struct {
	Title         *string
	Description   *string
	Status        *string
	Order         *float64
	Tags          *[]string
	ScheduledDate *time.Time
	Comments      *[]models.Comment
}

func (f UpdateFields) changes() (map[string]any, error) {
	m := map[string]any{}
	if f.Title != nil {
		if *f.Title == "" {
			return nil, fmt.Errorf("store: title cannot be cleared")
		}
		m["title"] = *f.Title
	}
	if f.Description != nil {
		m["description"] = *f.Description
	}
	if f.Status != nil {
		if !models.ValidStatus(*f.Status) {
			return nil, fmt.Errorf("store: invalid status %q", *f.Status)
		}
		m["status"] = *f.Status
	}
	if f.Order != nil {
		m["sort_order"] = *f.Order
	}
	if f.Tags != nil {
		m["tags"] = models.StringList(*f.Tags)
	}
	if f.ScheduledDate != nil {
		m["scheduled_date"] = *f.ScheduledDate
	}
	if f.Comments != nil {
		m["comments"] = models.CommentList(*f.Comments)
	}
	return m, nil
}

// Update merges the given fields into an existing item and publishes
// the variant's snapshot. Unset fields are preserved.
func (s *Store) Update(id string, fields UpdateFields) (*models.Item, error) {
	changes, err := fields.changes()
	if err != nil {
		return nil, err
	}

	existing, err := s.Get(id)
	if err != nil {
		return nil, err
	}

	if len(changes) > 0 {
		if err := s.db.Model(&models.Item{}).Where("id = ?", id).Updates(changes).Error; err != nil {
			return nil, fmt.Errorf("store: update %s: %w", id, err)
		}
	}

	updated, err := s.Get(id)
	if err != nil {
		return nil, err
	}

	s.publish(existing.Variant)
	return updated, nil
}

// Delete hard-removes an item and publishes the variant's snapshot.
func (s *Store) Delete(id string) error {
	existing, err := s.Get(id)
	if err != nil {
		return err
	}
	if err := s.db.Delete(&models.Item{}, "id = ?", id).Error; err != nil {
		return fmt.Errorf("store: delete %s: %w", id, err)
	}
	s.publish(existing.Variant)
	return nil
}

// Subscribe opens a live feed of one variant's full collection. The
// first delivery is the current snapshot; every subsequent mutation of
// that variant delivers a fresh one. Callers must Unsubscribe when
// their scope ends.
func (s *Store) Subscribe(variant string) (*Subscription, error) {
	if !models.ValidVariant(variant) {
		return nil, fmt.Errorf("store: invalid variant %q", variant)
	}
	items, err := s.List(variant)
	if err != nil {
		return nil, err
	}
	return s.hub.subscribe(variant, items), nil
}

// generateUniqueID retries GenerateID until the ID is unused.
func (s *Store) generateUniqueID() (string, error) {
	for i := 0; i < 5; i++ {
		id, err := GenerateID()
		if err != nil {
			return "", err
		}
		var count int64
		if err := s.db.Model(&models.Item{}).Where("id = ?", id).Count(&count).Error; err != nil {
			return "", fmt.Errorf("store: check ID %s: %w", id, err)
		}
		if count == 0 {
			return id, nil
		}
	}
	return "", fmt.Errorf("store: could not generate a unique ID")
}

// publish pushes a fresh snapshot of variant to subscribers. The write
// already succeeded; a failed re-read only costs a notification, so it
// is logged by the hub caller rather than returned.
func (s *Store) publish(variant string) {
	items, err := s.List(variant)
	if err != nil {
		return
	}
	s.hub.publish(variant, items)
}
