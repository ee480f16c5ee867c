// internal/workers/kpi/kpi-summary/config.go
package kpisummary

import "time"

type Config struct {
	Timeout time.Duration
}

func LoadConfig() *Config {
	return &Config{
		Timeout: 45 * time.Second,
	}
}
