// internal/workers/kpi/realestate-kpi/config.go
package realestatekpi

import (
	"time"

	"kpi-dashboard/internal/common/config"
	"kpi-dashboard/internal/kpi"
)

type Config struct {
	Table    string
	Fields   []string
	Timeout  time.Duration
	Location *time.Location
}

const defaultTimeout = 30 * time.Second

func LoadConfig(cfg *config.Config) *Config {
	return &Config{
		Table:    cfg.Airtable.Tables.RealestateCases,
		Fields:   kpi.RealestateFields,
		Timeout:  fetchTimeout(cfg),
		Location: cfg.App.Location(),
	}
}

func fetchTimeout(cfg *config.Config) time.Duration {
	if d := config.GetDuration(cfg.Airtable.Timeout); d > 0 {
		return d
	}
	return defaultTimeout
}
