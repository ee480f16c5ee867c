package realestatekpi

import (
	"testing"
	"time"

	"kpi-dashboard/internal/common/config"
	"kpi-dashboard/internal/common/logger"

	"github.com/stretchr/testify/assert"
)

func TestLoadConfig_Timeout(t *testing.T) {
	tests := []struct {
		name    string
		timeout int
		want    time.Duration
	}{
		{"from record store config", 12000, 12 * time.Second},
		{"unset falls back to default", 0, defaultTimeout},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &config.Config{Airtable: config.AirtableConfig{Timeout: tt.timeout}}
			assert.Equal(t, tt.want, LoadConfig(cfg).Timeout)
		})
	}
}

func TestNewHandler_LeavesConfigUntouched(t *testing.T) {
	cfg := createTestConfig()
	cfg.Location = nil

	h := NewHandler(cfg, nil, logger.NewNoOpLogger())

	assert.Nil(t, cfg.Location)
	assert.Equal(t, time.Local, h.location)
}
