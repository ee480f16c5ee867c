// internal/common/config/config.go
package config

import (
	"fmt"
	"time"
)

// Config is the main application configuration struct.
type Config struct {
	App           AppConfig           `mapstructure:"app"`
	Server        ServerConfig        `mapstructure:"server"`
	Airtable      AirtableConfig      `mapstructure:"airtable"`
	Notion        NotionConfig        `mapstructure:"notion"`
	Cache         CacheConfig         `mapstructure:"cache"`
	Logging       LoggingConfig       `mapstructure:"logging"`
	Observability ObservabilityConfig `mapstructure:"observability"`
}

// --- Core App/Infrastructure Config ---
type AppConfig struct {
	Name        string `mapstructure:"name"`
	Version     string `mapstructure:"version"`
	Environment string `mapstructure:"environment"`
	// Timezone decides which calendar month is "current", e.g. "Asia/Tokyo".
	Timezone string `mapstructure:"timezone"`
}

// Location resolves Timezone, falling back to the process local zone.
func (a AppConfig) Location() *time.Location {
	if a.Timezone == "" {
		return time.Local
	}
	loc, err := time.LoadLocation(a.Timezone)
	if err != nil {
		return time.Local
	}
	return loc
}

type ServerConfig struct {
	Address         string `mapstructure:"address"`
	ReadTimeout     int    `mapstructure:"read_timeout"`     // milliseconds
	WriteTimeout    int    `mapstructure:"write_timeout"`    // milliseconds
	ShutdownTimeout int    `mapstructure:"shutdown_timeout"` // milliseconds
}

// AirtableConfig holds the record store settings shared by all three bases.
type AirtableConfig struct {
	BaseURL    string      `mapstructure:"base_url"`
	APIKey     string      `mapstructure:"api_key"`
	Timeout    int         `mapstructure:"timeout"` // milliseconds
	PageSize   int         `mapstructure:"page_size"`
	MaxRetries int         `mapstructure:"max_retries"`
	RateLimit  float64     `mapstructure:"rate_limit"` // requests per second per base
	Bases      BasesConfig `mapstructure:"bases"`
	Tables     TableConfig `mapstructure:"tables"`
}

type BasesConfig struct {
	Sales      string `mapstructure:"sales"`
	Realestate string `mapstructure:"realestate"`
	HR         string `mapstructure:"hr"`
}

// TableConfig names the tables each domain reads from.
type TableConfig struct {
	SalesMeetings     string `mapstructure:"sales_meetings"`
	RealestateCases   string `mapstructure:"realestate_cases"`
	HRRecommendations string `mapstructure:"hr_recommendations"`
	HRCases           string `mapstructure:"hr_cases"`
}

type NotionConfig struct {
	BaseURL        string `mapstructure:"base_url"`
	APIKey         string `mapstructure:"api_key"`
	Version        string `mapstructure:"version"`
	TaskDatabaseID string `mapstructure:"task_database_id"`
	Timeout        int    `mapstructure:"timeout"` // milliseconds
}

type CacheConfig struct {
	Enabled bool        `mapstructure:"enabled"`
	TTL     int         `mapstructure:"ttl"` // seconds
	Prefix  string      `mapstructure:"prefix"`
	Redis   RedisConfig `mapstructure:"redis"`
}

type RedisConfig struct {
	Address  string `mapstructure:"address"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	Output string `mapstructure:"output"`
}

type ObservabilityConfig struct {
	ServiceName     string  `mapstructure:"service_name"`
	TraceSampleRate float64 `mapstructure:"trace_sample_rate"`
}

// Addr returns the listen address of the HTTP server.
func (s ServerConfig) Addr() string {
	if s.Address == "" {
		return ":8080"
	}
	return s.Address
}

// String hides credentials when the config is logged.
func (a AirtableConfig) String() string {
	return fmt.Sprintf("airtable{url=%s bases=%d/%d/%d pageSize=%d}",
		a.BaseURL, len(a.Bases.Sales), len(a.Bases.Realestate), len(a.Bases.HR), a.PageSize)
}
