package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var configEnv = []string{
	"GOOGLE_CREDENTIALS", "GOOGLE_CALENDAR_ID", "SYNC_SCHEDULE", "ALERT_WEBHOOK_URL",
	"TELEGRAM_BOT_TOKEN", "TELEGRAM_CHAT_ID", "STATUS_FILE", "LOG_LEVEL",
}

// clearEnv blanks every variable Load reads so the host environment cannot leak in.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range configEnv {
		t.Setenv(key, "")
	}
}

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0644))
	return path
}

const sampleConfig = `
team: Palmeiras
timezone: America/Sao_Paulo
sources:
  - url: https://example.com/paulistao
    competition: Paulistão 2026
  - url: https://example.com/brasileirao
    competition: Brasileirão 2026
channels:
  cazé tv: CazéTV
fetch:
  max_attempts: 5
  base_delay: 2s
calendar:
  id: fixtures@group.calendar.google.com
  write_delay: 250ms
  lookahead: 4320h
`

func TestLoad_FileAndDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load(writeConfig(t, sampleConfig))
	require.NoError(t, err)

	assert.Equal(t, "Palmeiras", cfg.Team)
	require.Len(t, cfg.Sources, 2)
	assert.Equal(t, "Brasileirão 2026", cfg.Sources[1].Competition)
	assert.Equal(t, "CazéTV", cfg.Channels["cazé tv"])
	assert.Equal(t, 5, cfg.Fetch.MaxAttempts)
	assert.Equal(t, 2*time.Second, cfg.Fetch.BaseDelay)
	assert.Equal(t, 30*time.Second, cfg.Fetch.Timeout)
	assert.Equal(t, "fixtures@group.calendar.google.com", cfg.Calendar.ID)
	assert.Equal(t, 250*time.Millisecond, cfg.Calendar.WriteDelay)
	assert.Equal(t, 180*24*time.Hour, cfg.Calendar.Lookahead)
	assert.Equal(t, 30*24*time.Hour, cfg.Calendar.Lookback)
	assert.Equal(t, DefaultSchedule, cfg.Schedule)
	assert.Equal(t, "~/.local/share/fixture-sync/status.json", cfg.StatusFile)
	assert.NotEmpty(t, cfg.HomeKeywords)
}

func TestLoad_EnvOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("GOOGLE_CREDENTIALS", "creds")
	t.Setenv("GOOGLE_CALENDAR_ID", "env-calendar")
	t.Setenv("SYNC_SCHEDULE", "*/30 * * * *")
	t.Setenv("ALERT_WEBHOOK_URL", "https://hooks.example.com/x")
	t.Setenv("TELEGRAM_BOT_TOKEN", "123:abc")
	t.Setenv("TELEGRAM_CHAT_ID", "-100200")
	t.Setenv("STATUS_FILE", "/tmp/status.json")

	cfg, err := Load(writeConfig(t, sampleConfig))
	require.NoError(t, err)

	assert.Equal(t, "creds", cfg.Credentials)
	assert.Equal(t, "env-calendar", cfg.Calendar.ID)
	assert.Equal(t, "*/30 * * * *", cfg.Schedule)
	assert.Equal(t, "https://hooks.example.com/x", cfg.Alerts.WebhookURL)
	assert.Equal(t, "123:abc", cfg.Alerts.TelegramToken)
	assert.Equal(t, int64(-100200), cfg.Alerts.TelegramChatID)
	assert.Equal(t, "/tmp/status.json", cfg.StatusFile)
}

func TestLoad_NoFile(t *testing.T) {
	clearEnv(t)

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "primary", cfg.Calendar.ID)
	assert.Equal(t, "America/Sao_Paulo", cfg.Timezone)
}

func TestLoad_Errors(t *testing.T) {
	clearEnv(t)

	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.True(t, errors.Is(err, ErrConfig))

	_, err = Load(writeConfig(t, "sources: [unclosed"))
	assert.True(t, errors.Is(err, ErrConfig))

	t.Setenv("TELEGRAM_CHAT_ID", "not-a-number")
	_, err = Load("")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrConfig))
	assert.Contains(t, err.Error(), "TELEGRAM_CHAT_ID")
}

func TestValidate(t *testing.T) {
	clearEnv(t)

	tests := []struct {
		name        string
		mutate      func(*Config)
		wantMissing []string
	}{
		{
			name:   "valid",
			mutate: func(c *Config) {},
		},
		{
			name:        "missing credentials",
			mutate:      func(c *Config) { c.Credentials = "" },
			wantMissing: []string{"GOOGLE_CREDENTIALS"},
		},
		{
			name: "missing credentials and sources",
			mutate: func(c *Config) {
				c.Credentials = ""
				c.Sources = nil
			},
			wantMissing: []string{"GOOGLE_CREDENTIALS", "sources"},
		},
		{
			name:        "source without url",
			mutate:      func(c *Config) { c.Sources[0].URL = "" },
			wantMissing: []string{"sources[0].url"},
		},
		{
			name:        "bad timezone",
			mutate:      func(c *Config) { c.Timezone = "Mars/Olympus" },
			wantMissing: []string{"timezone (invalid timezone)"},
		},
		{
			name:        "telegram token without chat",
			mutate:      func(c *Config) { c.Alerts.TelegramToken = "123:abc" },
			wantMissing: []string{"TELEGRAM_CHAT_ID"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := Load(writeConfig(t, sampleConfig))
			require.NoError(t, err)
			cfg.Credentials = "creds"
			tt.mutate(cfg)

			err = cfg.Validate()
			if len(tt.wantMissing) == 0 {
				require.NoError(t, err)
				return
			}

			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrConfig))
			for _, item := range tt.wantMissing {
				assert.Contains(t, err.Error(), item)
			}
		})
	}
}

func TestConfig_Conversions(t *testing.T) {
	clearEnv(t)
	cfg, err := Load(writeConfig(t, sampleConfig))
	require.NoError(t, err)

	loc, err := cfg.Location()
	require.NoError(t, err)
	assert.Equal(t, "America/Sao_Paulo", loc.String())

	fc := cfg.FetcherConfig()
	assert.Equal(t, 5, fc.MaxAttempts)
	assert.Equal(t, cfg.Fetch.UserAgent, fc.UserAgent)

	rc := cfg.ReconcilerConfig(loc)
	assert.Equal(t, "fixtures@group.calendar.google.com", rc.CalendarID)
	assert.Equal(t, loc, rc.TimeZone)
	assert.Equal(t, 250*time.Millisecond, rc.WriteDelay)
}
