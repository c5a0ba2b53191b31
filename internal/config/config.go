package config

import (
	"os"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/pfrederiksen/fixture-sync/internal/calendar"
	"github.com/pfrederiksen/fixture-sync/internal/match"
	"github.com/pfrederiksen/fixture-sync/internal/scraper"
	"github.com/pfrederiksen/fixture-sync/internal/storage"
)

const (
	DefaultSchedule = "0 */6 * * *"
	DefaultLogLevel = "INFO"
)

// ErrConfig marks configuration that is missing or invalid. It is fatal for a run.
var ErrConfig = errors.New("invalid configuration")

// Source is one page listing fixtures for a competition.
type Source struct {
	URL         string `yaml:"url" validate:"required,url"`
	Competition string `yaml:"competition" validate:"required"`
}

// Fetch configures page retrieval.
type Fetch struct {
	MaxAttempts    int           `yaml:"max_attempts" validate:"min=1"`
	BaseDelay      time.Duration `yaml:"base_delay"`
	Timeout        time.Duration `yaml:"timeout"`
	UserAgent      string        `yaml:"user_agent"`
	Referer        string        `yaml:"referer"`
	AcceptLanguage string        `yaml:"accept_language"`
}

// Calendar configures the target calendar and the reconciliation window.
type Calendar struct {
	ID         string        `yaml:"id" env:"GOOGLE_CALENDAR_ID" validate:"required"`
	WriteDelay time.Duration `yaml:"write_delay"`
	Lookback   time.Duration `yaml:"lookback"`
	Lookahead  time.Duration `yaml:"lookahead"`
}

// Alerts configures failure notifications. Every channel is optional.
type Alerts struct {
	WebhookURL     string `yaml:"webhook_url" env:"ALERT_WEBHOOK_URL" validate:"omitempty,url"`
	TelegramToken  string `yaml:"telegram_bot_token" env:"TELEGRAM_BOT_TOKEN"`
	TelegramChatID int64  `yaml:"telegram_chat_id" env:"TELEGRAM_CHAT_ID" validate:"required_with=TelegramToken"`
}

// Config holds every fixture-sync setting.
type Config struct {
	Team         string            `yaml:"team" validate:"required"`
	Timezone     string            `yaml:"timezone" validate:"required,timezone"`
	Sources      []Source          `yaml:"sources" validate:"required,min=1,dive"`
	HomeKeywords []string          `yaml:"home_keywords"`
	Channels     map[string]string `yaml:"channels"`
	Fetch        Fetch             `yaml:"fetch"`
	Calendar     Calendar          `yaml:"calendar"`
	Alerts       Alerts            `yaml:"alerts"`
	Schedule     string            `yaml:"schedule" env:"SYNC_SCHEDULE" validate:"required"`
	StatusFile   string            `yaml:"status_file" env:"STATUS_FILE" validate:"required"`
	LogLevel     string            `yaml:"log_level" env:"LOG_LEVEL"`

	// Credentials is never read from the YAML file.
	Credentials string `yaml:"-" env:"GOOGLE_CREDENTIALS" validate:"required"`
}

// Load reads the YAML file at path (skipped when path is empty), applies environment
// overrides and fills defaults. It does not validate; call Validate before use.
func Load(path string) (*Config, error) {
	var cfg Config

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, errors.Mark(errors.Wrapf(err, "reading config file %s", path), ErrConfig)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, errors.Mark(errors.Wrapf(err, "parsing config file %s", path), ErrConfig)
		}
	}

	if err := cfg.applyEnv(os.LookupEnv); err != nil {
		return nil, err
	}
	cfg.applyDefaults()
	return &cfg, nil
}

func (c *Config) applyEnv(lookup func(string) (string, bool)) error {
	set := func(dst *string, key string) {
		if v, ok := lookup(key); ok && strings.TrimSpace(v) != "" {
			*dst = strings.TrimSpace(v)
		}
	}

	set(&c.Credentials, "GOOGLE_CREDENTIALS")
	set(&c.Calendar.ID, "GOOGLE_CALENDAR_ID")
	set(&c.Schedule, "SYNC_SCHEDULE")
	set(&c.Alerts.WebhookURL, "ALERT_WEBHOOK_URL")
	set(&c.Alerts.TelegramToken, "TELEGRAM_BOT_TOKEN")
	set(&c.StatusFile, "STATUS_FILE")
	set(&c.LogLevel, "LOG_LEVEL")

	if v, ok := lookup("TELEGRAM_CHAT_ID"); ok && strings.TrimSpace(v) != "" {
		id, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64)
		if err != nil {
			return errors.Mark(errors.Wrapf(err, "TELEGRAM_CHAT_ID %q is not a number", v), ErrConfig)
		}
		c.Alerts.TelegramChatID = id
	}
	return nil
}

func (c *Config) applyDefaults() {
	if c.Team == "" {
		c.Team = match.DefaultTeam
	}
	if c.Timezone == "" {
		c.Timezone = match.DefaultTimezone
	}
	if len(c.HomeKeywords) == 0 {
		c.HomeKeywords = append([]string(nil), match.DefaultHomeKeywords...)
	}
	if c.Fetch.MaxAttempts == 0 {
		c.Fetch.MaxAttempts = scraper.DefaultMaxAttempts
	}
	if c.Fetch.BaseDelay == 0 {
		c.Fetch.BaseDelay = scraper.DefaultBaseDelay
	}
	if c.Fetch.Timeout == 0 {
		c.Fetch.Timeout = scraper.DefaultTimeout
	}
	if c.Fetch.UserAgent == "" {
		c.Fetch.UserAgent = scraper.DefaultUserAgent
	}
	if c.Fetch.Referer == "" {
		c.Fetch.Referer = scraper.DefaultReferer
	}
	if c.Fetch.AcceptLanguage == "" {
		c.Fetch.AcceptLanguage = scraper.DefaultAcceptLanguage
	}
	if c.Calendar.ID == "" {
		c.Calendar.ID = calendar.DefaultCalendarID
	}
	if c.Calendar.WriteDelay <= 0 {
		c.Calendar.WriteDelay = calendar.DefaultWriteDelay
	}
	if c.Calendar.Lookback == 0 {
		c.Calendar.Lookback = calendar.DefaultLookback
	}
	if c.Calendar.Lookahead == 0 {
		c.Calendar.Lookahead = calendar.DefaultLookahead
	}
	if c.Schedule == "" {
		c.Schedule = DefaultSchedule
	}
	if c.StatusFile == "" {
		c.StatusFile = storage.DefaultStatusFile
	}
	if c.LogLevel == "" {
		c.LogLevel = DefaultLogLevel
	}
}

// Validate checks the configuration and reports every missing or invalid item in a single
// error marked with ErrConfig.
func (c *Config) Validate() error {
	err := newValidator().Struct(c)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return errors.Mark(errors.Wrap(err, "validating configuration"), ErrConfig)
	}

	items := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		items = append(items, describe(fe))
	}
	return errors.Mark(errors.Newf("missing or invalid configuration: %s", strings.Join(items, ", ")), ErrConfig)
}

// Location loads the configured timezone.
func (c *Config) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, errors.Mark(errors.Wrapf(err, "loading timezone %s", c.Timezone), ErrConfig)
	}
	return loc, nil
}

// FetcherConfig returns the scraper settings.
func (c *Config) FetcherConfig() scraper.FetcherConfig {
	return scraper.FetcherConfig{
		MaxAttempts:    c.Fetch.MaxAttempts,
		BaseDelay:      c.Fetch.BaseDelay,
		Timeout:        c.Fetch.Timeout,
		UserAgent:      c.Fetch.UserAgent,
		Referer:        c.Fetch.Referer,
		AcceptLanguage: c.Fetch.AcceptLanguage,
	}
}

// ReconcilerConfig returns the calendar settings for tz.
func (c *Config) ReconcilerConfig(tz *time.Location) calendar.ReconcilerConfig {
	return calendar.ReconcilerConfig{
		CalendarID: c.Calendar.ID,
		TimeZone:   tz,
		WriteDelay: c.Calendar.WriteDelay,
		Lookback:   c.Calendar.Lookback,
		Lookahead:  c.Calendar.Lookahead,
	}
}

// newValidator reports fields by their environment variable when they have one and by
// their YAML key otherwise.
func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		if env := fld.Tag.Get("env"); env != "" {
			return env
		}
		name := strings.SplitN(fld.Tag.Get("yaml"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

func describe(fe validator.FieldError) string {
	name := fe.Namespace()
	// Drop the root struct name
	if i := strings.Index(name, "."); i >= 0 {
		name = name[i+1:]
	}
	// Env-backed fields are reported by variable name alone
	if parts := strings.Split(name, "."); isEnvName(parts[len(parts)-1]) {
		name = parts[len(parts)-1]
	}

	switch fe.Tag() {
	case "required", "required_with":
		return name
	case "min":
		return name + " (must be at least " + fe.Param() + ")"
	default:
		return name + " (invalid " + fe.Tag() + ")"
	}
}

func isEnvName(s string) bool {
	return s != "" && strings.ToUpper(s) == s && strings.Contains(s, "_")
}
