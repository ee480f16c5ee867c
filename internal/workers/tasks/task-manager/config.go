// internal/workers/tasks/task-manager/config.go
package taskmanager

import (
	"fmt"
	"time"

	"kpi-dashboard/internal/common/config"
)

type Config struct {
	DatabaseID      string
	Timeout         time.Duration
	DefaultPageSize int
	WeekPageSize    int
	Location        *time.Location
}

func DefaultConfig() *Config {
	return &Config{
		Timeout:         15 * time.Second,
		DefaultPageSize: 10,
		WeekPageSize:    50,
		Location:        time.Local,
	}
}

func LoadConfig(cfg *config.Config) *Config {
	c := DefaultConfig()
	c.DatabaseID = cfg.Notion.TaskDatabaseID
	c.Location = cfg.App.Location()
	return c
}

func (c *Config) Validate() error {
	if c.DatabaseID == "" {
		return fmt.Errorf("task database id is required")
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive")
	}
	if c.DefaultPageSize <= 0 || c.WeekPageSize <= 0 {
		return fmt.Errorf("page sizes must be positive")
	}
	return nil
}
