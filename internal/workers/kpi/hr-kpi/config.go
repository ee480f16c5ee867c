// internal/workers/kpi/hr-kpi/config.go
package hrkpi

import (
	"time"

	"kpi-dashboard/internal/common/config"
	"kpi-dashboard/internal/kpi"
)

type Config struct {
	RecommendationTable  string
	RecommendationFields []string
	CaseTable            string
	CaseFields           []string
	Timeout              time.Duration
	Location             *time.Location
}

const defaultTimeout = 30 * time.Second

func LoadConfig(cfg *config.Config) *Config {
	return &Config{
		RecommendationTable:  cfg.Airtable.Tables.HRRecommendations,
		RecommendationFields: kpi.HRRecommendationFields,
		CaseTable:            cfg.Airtable.Tables.HRCases,
		CaseFields:           kpi.HRCaseFields,
		Timeout:              fetchTimeout(cfg),
		Location:             cfg.App.Location(),
	}
}

func fetchTimeout(cfg *config.Config) time.Duration {
	if d := config.GetDuration(cfg.Airtable.Timeout); d > 0 {
		return d
	}
	return defaultTimeout
}
