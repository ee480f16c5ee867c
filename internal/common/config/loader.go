// internal/common/config/loader.go
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"kpi-dashboard/internal/kpi"
)

// Load reads configs/config.yaml, merges config.<APP_ENVIRONMENT>.yaml on top
// and lets environment variables override individual keys.
func Load() (*Config, error) {
	loadEnvFile()

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./configs")
	v.AddConfigPath("../../configs")
	v.AddConfigPath(".")

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	env := os.Getenv("APP_ENVIRONMENT")
	if env == "" {
		env = "development"
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading base config: %w", err)
		}
	}

	v.SetConfigName(fmt.Sprintf("config.%s", env))
	_ = v.MergeInConfig() // optional

	return finish(v, env)
}

// LoadFromFile loads configuration from a specific file path.
func LoadFromFile(path string) (*Config, error) {
	loadEnvFile()

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	return finish(v, os.Getenv("APP_ENVIRONMENT"))
}

func finish(v *viper.Viper, env string) (*Config, error) {
	expandEnvVars(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if cfg.App.Environment == "" {
		cfg.App.Environment = env
	}

	applyDefaults(&cfg)
	overrideEmptyConfig(&cfg)

	if err := validateConfig(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

// loadEnvFile loads the first .env found walking up from the working directory.
func loadEnvFile() {
	possiblePaths := []string{
		".env",
		"../.env",
		"../../.env",
		"../../../.env",
	}
	if rootDir := findProjectRoot(); rootDir != "" {
		possiblePaths = append(possiblePaths, filepath.Join(rootDir, ".env"))
	}

	for _, path := range possiblePaths {
		if _, err := os.Stat(path); err == nil {
			if err := godotenv.Load(path); err == nil {
				return
			}
		}
	}
}

// findProjectRoot walks up directories looking for go.mod.
func findProjectRoot() string {
	dir, err := os.Getwd()
	if err != nil {
		return ""
	}
	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return ""
}

// expandEnvVars resolves ${VAR} placeholders left in string values.
func expandEnvVars(v *viper.Viper) {
	for _, key := range v.AllKeys() {
		strVal, ok := v.Get(key).(string)
		if !ok {
			continue
		}
		if strings.Contains(strVal, "${") || (strings.HasPrefix(strVal, "$") && len(strVal) > 1) {
			expanded := os.ExpandEnv(strVal)
			if expanded != strVal && expanded != "" {
				v.Set(key, expanded)
			}
		}
	}
}

// overrideEmptyConfig fills credentials from the variable names the
// deployment has always used.
func overrideEmptyConfig(cfg *Config) {
	setIfEmpty(&cfg.Airtable.APIKey, "AIRTABLE_API_KEY")
	setIfEmpty(&cfg.Airtable.Bases.Sales, "AIRTABLE_BASE_SALES")
	setIfEmpty(&cfg.Airtable.Bases.Realestate, "AIRTABLE_BASE_REALESTATE")
	setIfEmpty(&cfg.Airtable.Bases.HR, "AIRTABLE_BASE_HR")
	setIfEmpty(&cfg.Notion.APIKey, "NOTION_API_KEY")
	setIfEmpty(&cfg.Notion.TaskDatabaseID, "NOTION_TASK_DATABASE_ID")
	setIfEmpty(&cfg.Cache.Redis.Address, "REDIS_ADDRESS")
	setIfEmpty(&cfg.Cache.Redis.Password, "REDIS_PASSWORD")
}

func setIfEmpty(dst *string, envKey string) {
	if *dst != "" {
		return
	}
	if val := os.Getenv(envKey); val != "" {
		*dst = val
	}
}

// applyDefaults sets default values for optional configuration fields
func applyDefaults(cfg *Config) {
	if cfg.App.Name == "" {
		cfg.App.Name = "kpi-dashboard"
	}

	if cfg.Server.ReadTimeout == 0 {
		cfg.Server.ReadTimeout = 15000
	}
	if cfg.Server.WriteTimeout == 0 {
		cfg.Server.WriteTimeout = 60000
	}
	if cfg.Server.ShutdownTimeout == 0 {
		cfg.Server.ShutdownTimeout = 10000
	}

	if cfg.Airtable.BaseURL == "" {
		cfg.Airtable.BaseURL = "https://api.airtable.com/v0"
	}
	if cfg.Airtable.Timeout == 0 {
		cfg.Airtable.Timeout = 30000
	}
	if cfg.Airtable.PageSize == 0 {
		cfg.Airtable.PageSize = 100
	}
	if cfg.Airtable.MaxRetries == 0 {
		cfg.Airtable.MaxRetries = 3
	}
	if cfg.Airtable.RateLimit == 0 {
		cfg.Airtable.RateLimit = 5
	}
	if cfg.Airtable.Tables.SalesMeetings == "" {
		cfg.Airtable.Tables.SalesMeetings = kpi.SalesTable
	}
	if cfg.Airtable.Tables.RealestateCases == "" {
		cfg.Airtable.Tables.RealestateCases = kpi.RealestateTable
	}
	if cfg.Airtable.Tables.HRRecommendations == "" {
		cfg.Airtable.Tables.HRRecommendations = kpi.HRRecommendationTable
	}
	if cfg.Airtable.Tables.HRCases == "" {
		cfg.Airtable.Tables.HRCases = kpi.HRCaseTable
	}

	if cfg.Notion.BaseURL == "" {
		cfg.Notion.BaseURL = "https://api.notion.com/v1"
	}
	if cfg.Notion.Version == "" {
		cfg.Notion.Version = "2022-06-28"
	}
	if cfg.Notion.Timeout == 0 {
		cfg.Notion.Timeout = 15000
	}

	if cfg.Cache.TTL == 0 {
		cfg.Cache.TTL = 60
	}
	if cfg.Cache.Prefix == "" {
		cfg.Cache.Prefix = "kpi"
	}

	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "json"
	}
	if cfg.Logging.Output == "" {
		cfg.Logging.Output = "stdout"
	}

	if cfg.Observability.ServiceName == "" {
		cfg.Observability.ServiceName = cfg.App.Name
	}
	if cfg.Observability.TraceSampleRate == 0 {
		cfg.Observability.TraceSampleRate = 1
	}
}

// validateConfig validates critical configuration fields
func validateConfig(cfg *Config) error {
	if cfg.Airtable.APIKey == "" {
		return fmt.Errorf("airtable.api_key is required")
	}
	if cfg.Airtable.Bases.Sales == "" || cfg.Airtable.Bases.Realestate == "" || cfg.Airtable.Bases.HR == "" {
		return fmt.Errorf("airtable.bases.sales, realestate and hr are required")
	}
	if cfg.Airtable.PageSize < 1 || cfg.Airtable.PageSize > 100 {
		return fmt.Errorf("airtable.page_size must be between 1 and 100")
	}
	if cfg.Notion.APIKey == "" {
		return fmt.Errorf("notion.api_key is required")
	}
	if cfg.Notion.TaskDatabaseID == "" {
		return fmt.Errorf("notion.task_database_id is required")
	}
	if cfg.Cache.Enabled && cfg.Cache.Redis.Address == "" {
		return fmt.Errorf("cache.redis.address is required when cache is enabled")
	}
	if cfg.App.Timezone != "" {
		if _, err := time.LoadLocation(cfg.App.Timezone); err != nil {
			return fmt.Errorf("app.timezone: %w", err)
		}
	}
	return nil
}

// GetDuration converts milliseconds from config to time.Duration
func GetDuration(milliseconds int) time.Duration {
	return time.Duration(milliseconds) * time.Millisecond
}
