// Package config handles loading and validating the application configuration
// from YAML files with environment variable substitution.
package config

import (
	"errors"
	"fmt"
	"os"
	"regexp"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	domain "github.com/donaldgifford/vaccine-alert/pkg/types"
)

var pincodePattern = regexp.MustCompile(`^[1-9][0-9]{5}$`)

// Config is the top-level application configuration.
type Config struct {
	Location      LocationConfig      `yaml:"location"`
	Lookup        LookupConfig        `yaml:"lookup"`
	Schedule      ScheduleConfig      `yaml:"schedule"`
	Cowin         CowinConfig         `yaml:"cowin"`
	Alerts        AlertsConfig        `yaml:"alerts"`
	Notifications NotificationsConfig `yaml:"notifications"`
	Server        ServerConfig        `yaml:"server"`
	Logging       LoggingConfig       `yaml:"logging"`
}

// LocationConfig identifies the single watched location. Exactly one of
// Pincode or District must be set.
type LocationConfig struct {
	Pincode  string `yaml:"pincode"`
	District string `yaml:"district"`
	Timezone string `yaml:"timezone"` // IANA name used to compute "today"
}

// Kind returns the lookup kind implied by which field is set.
func (l *LocationConfig) Kind() domain.LocationKind {
	if l.District != "" {
		return domain.LocationDistrict
	}
	return domain.LocationPincode
}

// Code returns the pincode or district id.
func (l *LocationConfig) Code() string {
	if l.District != "" {
		return l.District
	}
	return l.Pincode
}

// TimeLocation resolves Timezone. Empty means the process local zone.
func (l *LocationConfig) TimeLocation() (*time.Location, error) {
	if l.Timezone == "" || l.Timezone == "Local" {
		return time.Local, nil
	}
	return time.LoadLocation(l.Timezone)
}

// Lookup modes.
const (
	LookupCalendar = "calendar" // 7-day calendar view
	LookupDay      = "day"      // single-day sessions view
)

// LookupConfig selects which upstream view the availability predicate reads.
type LookupConfig struct {
	Mode string `yaml:"mode"` // calendar, day
}

// ScheduleConfig defines the polling cadence.
type ScheduleConfig struct {
	Interval        time.Duration `yaml:"interval"`
	SkipInitialPoll bool          `yaml:"skip_initial_poll"`
}

// CowinConfig defines upstream availability API settings.
type CowinConfig struct {
	BaseURL        string          `yaml:"base_url"`
	UserAgent      string          `yaml:"user_agent"`
	AcceptLanguage string          `yaml:"accept_language"`
	Timeout        time.Duration   `yaml:"timeout"`
	RateLimit      RateLimitConfig `yaml:"rate_limit"`
}

// RateLimitConfig mirrors the provider's published call budget.
type RateLimitConfig struct {
	Calls  int           `yaml:"calls"`
	Window time.Duration `yaml:"window"`
	Burst  int           `yaml:"burst"`
}

// MinInterval is the shortest poll interval that stays inside the budget.
func (r *RateLimitConfig) MinInterval() time.Duration {
	if r.Calls <= 0 {
		return 0
	}
	return r.Window / time.Duration(r.Calls)
}

// AlertsConfig defines alert behavior.
type AlertsConfig struct {
	EscalateAfter int          `yaml:"escalate_after"` // consecutive failed polls before logging at error
	Filter        FilterConfig `yaml:"filter"`
}

// FilterConfig narrows which sessions count as open. The zero value accepts
// any session with capacity.
type FilterConfig struct {
	MinAge      int    `yaml:"min_age"`
	Vaccine     string `yaml:"vaccine"`
	MinCapacity int    `yaml:"min_capacity"`
	Dose        int    `yaml:"dose"` // 0 (any), 1, 2
}

// NotificationsConfig defines notification targets.
type NotificationsConfig struct {
	Timeout  time.Duration  `yaml:"timeout"`
	Telegram TelegramConfig `yaml:"telegram"`
	Desktop  DesktopConfig  `yaml:"desktop"`
	Discord  DiscordConfig  `yaml:"discord"`
	Webhook  WebhookConfig  `yaml:"webhook"`
	Email    EmailConfig    `yaml:"email"`
}

// TelegramConfig defines Telegram bot settings.
type TelegramConfig struct {
	Enabled bool   `yaml:"enabled"`
	Token   string `yaml:"token"`
	ChatID  string `yaml:"chat_id"`
	APIURL  string `yaml:"api_url"`
}

// DesktopConfig defines local desktop notification settings.
type DesktopConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Platform string `yaml:"platform"` // auto, linux, darwin, none
	Title    string `yaml:"title"`
}

// DiscordConfig defines Discord webhook settings.
type DiscordConfig struct {
	Enabled    bool   `yaml:"enabled"`
	WebhookURL string `yaml:"webhook_url"`
}

// WebhookConfig defines generic webhook settings.
type WebhookConfig struct {
	Enabled bool              `yaml:"enabled"`
	URL     string            `yaml:"url"`
	Secret  string            `yaml:"secret"`
	Headers map[string]string `yaml:"headers"`
}

// EmailConfig defines SMTP delivery settings.
type EmailConfig struct {
	Enabled  bool     `yaml:"enabled"`
	Host     string   `yaml:"host"`
	Port     int      `yaml:"port"`
	Username string   `yaml:"username"`
	Password string   `yaml:"password"`
	From     string   `yaml:"from"`
	To       []string `yaml:"to"`
}

// ServerConfig defines the Echo HTTP server settings.
type ServerConfig struct {
	Enabled      bool          `yaml:"enabled"`
	Host         string        `yaml:"host"`
	Port         int           `yaml:"port"`
	ReadTimeout  time.Duration `yaml:"read_timeout"`
	WriteTimeout time.Duration `yaml:"write_timeout"`
}

// LoggingConfig defines logging settings.
type LoggingConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // text, json
}

// Overrides carries command-line or environment values that take precedence
// over the file. Zero fields are ignored.
type Overrides struct {
	Pincode  string
	District string
	Interval time.Duration
	LogLevel string
}

// Load reads and parses a YAML config file, performing environment variable
// substitution and validation.
func Load(path string) (*Config, error) {
	return LoadWithOverrides(path, Overrides{})
}

// LoadWithOverrides is Load with o applied after parsing and before
// defaults and validation. An empty path skips the file entirely.
func LoadWithOverrides(path string, o Overrides) (*Config, error) {
	cfg := &Config{}

	if path != "" {
		data, err := os.ReadFile(path) //nolint:gosec // config path from trusted CLI flag
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}

		// Expand environment variables in the YAML content.
		expanded := os.ExpandEnv(string(data))

		if err := yaml.Unmarshal([]byte(expanded), cfg); err != nil {
			return nil, fmt.Errorf("parsing config YAML: %w", err)
		}
	}

	applyOverrides(cfg, o)
	applyDefaults(cfg)

	if err := validate(cfg); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

func applyOverrides(cfg *Config, o Overrides) {
	if o.Pincode != "" {
		cfg.Location.Pincode = o.Pincode
		cfg.Location.District = ""
	}
	if o.District != "" {
		cfg.Location.District = o.District
		cfg.Location.Pincode = ""
	}
	if o.Interval > 0 {
		cfg.Schedule.Interval = o.Interval
	}
	if o.LogLevel != "" {
		cfg.Logging.Level = o.LogLevel
	}
}

func applyDefaults(cfg *Config) {
	applyLookupDefaults(&cfg.Lookup)
	applyScheduleDefaults(&cfg.Schedule)
	applyCowinDefaults(&cfg.Cowin)
	applyAlertsDefaults(&cfg.Alerts)
	applyNotificationsDefaults(&cfg.Notifications)
	applyServerDefaults(&cfg.Server)
	applyLoggingDefaults(&cfg.Logging)
}

func applyLookupDefaults(l *LookupConfig) {
	if l.Mode == "" {
		l.Mode = LookupCalendar
	}
}

func applyScheduleDefaults(s *ScheduleConfig) {
	if s.Interval == 0 {
		s.Interval = time.Minute
	}
}

func applyCowinDefaults(c *CowinConfig) {
	if c.BaseURL == "" {
		c.BaseURL = "https://cdn-api.co-vin.in/api"
	}
	if c.UserAgent == "" {
		c.UserAgent = "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0 Safari/537.36"
	}
	if c.AcceptLanguage == "" {
		c.AcceptLanguage = "hi_IN"
	}
	if c.Timeout == 0 {
		c.Timeout = 15 * time.Second
	}
	applyRateLimitDefaults(&c.RateLimit)
}

func applyRateLimitDefaults(r *RateLimitConfig) {
	if r.Calls == 0 {
		r.Calls = 100
	}
	if r.Window == 0 {
		r.Window = 5 * time.Minute
	}
	if r.Burst == 0 {
		r.Burst = 1
	}
}

func applyAlertsDefaults(a *AlertsConfig) {
	if a.EscalateAfter == 0 {
		a.EscalateAfter = 3
	}
	if a.Filter.MinCapacity == 0 {
		a.Filter.MinCapacity = 1
	}
}

func applyNotificationsDefaults(n *NotificationsConfig) {
	if n.Timeout == 0 {
		n.Timeout = 10 * time.Second
	}
	if n.Desktop.Platform == "" {
		n.Desktop.Platform = "auto"
	}
	if n.Desktop.Title == "" {
		n.Desktop.Title = "Vaccine Alert"
	}
	if n.Email.Port == 0 {
		n.Email.Port = 587
	}
}

func applyServerDefaults(s *ServerConfig) {
	if s.Host == "" {
		s.Host = "127.0.0.1"
	}
	if s.Port == 0 {
		s.Port = 8080
	}
	if s.ReadTimeout == 0 {
		s.ReadTimeout = 30 * time.Second
	}
	if s.WriteTimeout == 0 {
		s.WriteTimeout = 30 * time.Second
	}
}

func applyLoggingDefaults(l *LoggingConfig) {
	if l.Level == "" {
		l.Level = "info"
	}
	if l.Format == "" {
		l.Format = "text"
	}
}

func validate(cfg *Config) error {
	var errs []error

	errs = append(errs, validateLocation(&cfg.Location)...)

	switch cfg.Lookup.Mode {
	case LookupCalendar, LookupDay:
	default:
		errs = append(errs, fmt.Errorf(
			"lookup.mode must be one of: calendar, day (got %q)", cfg.Lookup.Mode,
		))
	}

	if minInterval := cfg.Cowin.RateLimit.MinInterval(); cfg.Schedule.Interval < minInterval {
		errs = append(errs, fmt.Errorf(
			"schedule.interval %s is shorter than the %d calls per %s budget allows (min %s)",
			cfg.Schedule.Interval, cfg.Cowin.RateLimit.Calls, cfg.Cowin.RateLimit.Window, minInterval,
		))
	}
	if rl := cfg.Cowin.RateLimit; rl.Calls < 0 || rl.Burst < 0 || rl.Window < 0 {
		errs = append(errs, fmt.Errorf("cowin.rate_limit values must not be negative"))
	}

	if d := cfg.Alerts.Filter.Dose; d < 0 || d > 2 {
		errs = append(errs, fmt.Errorf("alerts.filter.dose must be 0, 1 or 2 (got %d)", d))
	}

	errs = append(errs, validateNotifications(&cfg.Notifications)...)

	return errors.Join(errs...)
}

func validateLocation(l *LocationConfig) []error {
	var errs []error

	switch {
	case l.Pincode == "" && l.District == "":
		errs = append(errs, fmt.Errorf("location.pincode or location.district is required"))
	case l.Pincode != "" && l.District != "":
		errs = append(errs, fmt.Errorf("location.pincode and location.district are mutually exclusive"))
	case l.Pincode != "":
		if !pincodePattern.MatchString(l.Pincode) {
			errs = append(errs, fmt.Errorf(
				"location.pincode must be a 6 digit code not starting with 0 (got %q)", l.Pincode,
			))
		}
	default:
		if id, err := strconv.Atoi(l.District); err != nil || id <= 0 {
			errs = append(errs, fmt.Errorf(
				"location.district must be a positive integer id (got %q)", l.District,
			))
		}
	}

	if _, err := l.TimeLocation(); err != nil {
		errs = append(errs, fmt.Errorf("location.timezone: %w", err))
	}

	return errs
}

func validateNotifications(n *NotificationsConfig) []error {
	var errs []error

	if n.Telegram.Enabled {
		if strings.TrimSpace(n.Telegram.Token) == "" {
			errs = append(errs, fmt.Errorf("notifications.telegram.token is required when telegram is enabled"))
		}
		if strings.TrimSpace(n.Telegram.ChatID) == "" {
			errs = append(errs, fmt.Errorf("notifications.telegram.chat_id is required when telegram is enabled"))
		}
	}

	switch n.Desktop.Platform {
	case "auto", "linux", "darwin", "none":
	default:
		errs = append(errs, fmt.Errorf(
			"notifications.desktop.platform must be one of: auto, linux, darwin, none (got %q)",
			n.Desktop.Platform,
		))
	}

	if n.Discord.Enabled && n.Discord.WebhookURL == "" {
		errs = append(errs, fmt.Errorf("notifications.discord.webhook_url is required when discord is enabled"))
	}

	if n.Webhook.Enabled && n.Webhook.URL == "" {
		errs = append(errs, fmt.Errorf("notifications.webhook.url is required when webhook is enabled"))
	}

	if n.Email.Enabled {
		if n.Email.Host == "" {
			errs = append(errs, fmt.Errorf("notifications.email.host is required when email is enabled"))
		}
		if n.Email.From == "" {
			errs = append(errs, fmt.Errorf("notifications.email.from is required when email is enabled"))
		}
		if len(n.Email.To) == 0 {
			errs = append(errs, fmt.Errorf("notifications.email.to needs at least one recipient"))
		}
	}

	return errs
}
