package main

import (
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/n1techn1t-bit/IQFM-kontent/internal/config"
	"github.com/n1techn1t-bit/IQFM-kontent/internal/db"
	"github.com/n1techn1t-bit/IQFM-kontent/internal/store"
)

func connectFromConfig(configPath string) (*config.Config, *gorm.DB, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, nil, fmt.Errorf("load config: %w", err)
	}

	gormDB, err := db.Connect(dbParams(cfg))
	if err != nil {
		return nil, nil, fmt.Errorf("connect to %s: %w", cfg.DB.Database, err)
	}

	return cfg, gormDB, nil
}

// dbParams maps the loaded config onto the db layer's connection params.
func dbParams(cfg *config.Config) db.Params {
	return db.Params{
		User:     cfg.DB.User,
		Password: cfg.DB.Password,
		Host:     cfg.DB.Host,
		Port:     cfg.DB.Port,
		Database: cfg.DB.Database,
	}
}

// openStore connects per the config and wraps the connection in a store.
func openStore(configPath string) (*config.Config, *store.Store, error) {
	cfg, gormDB, err := connectFromConfig(configPath)
	if err != nil {
		return nil, nil, err
	}
	return cfg, store.New(gormDB), nil
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen-3] + "..."
}

// formatDate renders an optional date for table output.
func formatDate(t *time.Time) string {
	if t == nil {
		return "-"
	}
	return t.Format("2006-01-02")
}
