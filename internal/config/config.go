// Package config provides YAML-based configuration loading for Kontent.
package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/n1techn1t-bit/IQFM-kontent/internal/models"
	"gopkg.in/yaml.v3"
)

// Config is the top-level Kontent configuration, loaded from kontent.yaml.
type Config struct {
	Project   string          `yaml:"project"`
	DB        DBConfig        `yaml:"db"`
	Dashboard DashboardConfig `yaml:"dashboard"`
	Ordering  OrderingConfig  `yaml:"ordering"`
	Scheduler SchedulerConfig `yaml:"scheduler"`
	Users     UsersConfig     `yaml:"users"`
	Notify    NotifyConfig    `yaml:"notify"`
}

// DBConfig holds connection settings for the MySQL-compatible server.
// Password stays empty for local development servers.
type DBConfig struct {
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Database string `yaml:"database"`
}

// DashboardConfig holds settings for the web dashboard.
type DashboardConfig struct {
	Port int `yaml:"port"`
}

// OrderingConfig tunes the fractional-key spacing for lane drops.
type OrderingConfig struct {
	Gap float64 `yaml:"gap"`
}

// SchedulerConfig holds the cadence of the due-post sweep as a 5-field
// cron expression.
type SchedulerConfig struct {
	Cron string `yaml:"cron"`
}

// UsersConfig names the two collaborating identities.
type UsersConfig struct {
	Admin  UserConfig `yaml:"admin"`
	Client UserConfig `yaml:"client"`
}

// UserConfig is one configured identity.
type UserConfig struct {
	ID   string `yaml:"id"`
	Name string `yaml:"name"`
}

// NotifyConfig holds chat notification settings. An adapter is enabled
// when its token fields are set.
type NotifyConfig struct {
	Slack   SlackConfig   `yaml:"slack"`
	Discord DiscordConfig `yaml:"discord"`
}

// SlackConfig holds Slack credentials and the target channel.
type SlackConfig struct {
	BotToken string `yaml:"bot_token"`
	Channel  string `yaml:"channel"`
}

// DiscordConfig holds Discord credentials and the target channel.
type DiscordConfig struct {
	BotToken string `yaml:"bot_token"`
	Channel  string `yaml:"channel"`
}

// Load reads a YAML config file from path and returns a validated Config.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}
	return Parse(data)
}

// Parse unmarshals YAML bytes into a validated Config.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("config: parse: %w", err)
	}
	cfg.applyDefaults()
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// AdminUser returns the configured creator identity.
func (c *Config) AdminUser() models.User {
	return models.User{ID: c.Users.Admin.ID, Name: c.Users.Admin.Name, Role: models.RoleAdmin}
}

// ClientUser returns the configured client identity.
func (c *Config) ClientUser() models.User {
	return models.User{ID: c.Users.Client.ID, Name: c.Users.Client.Name, Role: models.RoleClient}
}

// UserFor maps a role string to its configured identity; anything that
// is not ADMIN resolves to the client.
func (c *Config) UserFor(role string) models.User {
	if strings.EqualFold(role, models.RoleAdmin) {
		return c.AdminUser()
	}
	return c.ClientUser()
}

// applyDefaults fills in derived and default values.
func (c *Config) applyDefaults() {
	if c.DB.User == "" {
		c.DB.User = "root"
	}
	if c.DB.Host == "" {
		c.DB.Host = "127.0.0.1"
	}
	if c.DB.Port == 0 {
		c.DB.Port = 3306
	}
	if c.DB.Database == "" && c.Project != "" {
		c.DB.Database = "kontent_" + c.Project
	}
	if c.Dashboard.Port == 0 {
		c.Dashboard.Port = 8080
	}
	if c.Ordering.Gap == 0 {
		c.Ordering.Gap = 1000
	}
	if c.Scheduler.Cron == "" {
		c.Scheduler.Cron = "*/5 * * * *"
	}
	if c.Users.Admin.ID == "" {
		c.Users.Admin.ID = "admin_1"
	}
	if c.Users.Admin.Name == "" {
		c.Users.Admin.Name = "Creator"
	}
	if c.Users.Client.ID == "" {
		c.Users.Client.ID = "client_1"
	}
	if c.Users.Client.Name == "" {
		c.Users.Client.Name = "Client"
	}
}

// validate checks that all required fields are present and consistent.
func (c *Config) validate() error {
	var errs []string
	if c.Project == "" {
		errs = append(errs, "project is required")
	}
	if c.Ordering.Gap < 0 {
		errs = append(errs, "ordering.gap must be positive")
	}
	if c.Dashboard.Port < 0 || c.Dashboard.Port > 65535 {
		errs = append(errs, fmt.Sprintf("dashboard.port %d out of range", c.Dashboard.Port))
	}
	if len(errs) > 0 {
		return fmt.Errorf("config: validation failed: %s", strings.Join(errs, "; "))
	}
	return nil
}
