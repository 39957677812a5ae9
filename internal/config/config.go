package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// DefaultPath is read when no --config flag or JOBSWEEP_CONFIG is given.
const DefaultPath = "jobsweep.yaml"

// Environment variables that supply source credentials left empty in YAML.
const (
	EnvJSearchKey   = "JSEARCH_API_KEY"
	EnvAdzunaID     = "ADZUNA_APP_ID"
	EnvAdzunaKey    = "ADZUNA_APP_KEY"
	EnvJoobleKey    = "JOOBLE_API_KEY"
	EnvUSAJobsKey   = "USAJOBS_API_KEY"
	EnvUSAJobsEmail = "USAJOBS_EMAIL"
)

// Config is the root configuration for jobsweep.
type Config struct {
	Interval      time.Duration // daemon collection interval
	SourceTimeout time.Duration // per-adapter deadline inside one run
	Search        SearchConfig
	Sources       SourcesConfig
	Quota         QuotaConfig
	Retry         RetryConfig
	RateLimit     RateLimitConfig
	Store         StoreConfig
	Notification  NotificationConfig
	Validation    ValidationConfig
}

// SearchConfig is the default job filter used by collect and start.
type SearchConfig struct {
	Keywords []string `yaml:"keywords"`
	Level    string   `yaml:"level" validate:"omitempty,oneof=internship"`
	Location string   `yaml:"location"`
	Recent   bool     `yaml:"recent"`
	Limit    int      `yaml:"limit" validate:"gte=0"`
}

// SourcesConfig holds per-adapter credentials and knobs.
type SourcesConfig struct {
	JSearch  JSearchConfig  `yaml:"jsearch"`
	Adzuna   AdzunaConfig   `yaml:"adzuna"`
	Jooble   JoobleConfig   `yaml:"jooble"`
	USAJobs  USAJobsConfig  `yaml:"usajobs"`
	RemoteOK RemoteOKConfig `yaml:"remoteok"`
	RSS      RSSConfig      `yaml:"rss"`
	ATS      ATSConfig      `yaml:"ats"`
}

type JSearchConfig struct {
	APIKey string `yaml:"api_key"`
	Pages  int    `yaml:"pages" validate:"gte=0,lte=10"`
}

type AdzunaConfig struct {
	AppID          string `yaml:"app_id"`
	AppKey         string `yaml:"app_key"`
	Country        string `yaml:"country" validate:"omitempty,len=2,alpha"`
	Pages          int    `yaml:"pages" validate:"gte=0,lte=10"`
	ResultsPerPage int    `yaml:"results_per_page" validate:"gte=0,lte=50"`
}

type JoobleConfig struct {
	APIKey string `yaml:"api_key"`
	Pages  int    `yaml:"pages" validate:"gte=0,lte=10"`
}

type USAJobsConfig struct {
	APIKey         string `yaml:"api_key"`
	Email          string `yaml:"email" validate:"omitempty,email"`
	ResultsPerPage int    `yaml:"results_per_page" validate:"gte=0,lte=500"`
}

type RemoteOKConfig struct {
	Disabled bool `yaml:"disabled"`
}

// RSSConfig lists the feeds to poll; an empty list means the built-in feeds.
type RSSConfig struct {
	Disabled bool         `yaml:"disabled"`
	Feeds    []FeedConfig `yaml:"feeds" validate:"dive"`
}

type FeedConfig struct {
	URL             string `yaml:"url" validate:"required,url"`
	Company         string `yaml:"company"`
	DefaultLocation string `yaml:"default_location"`
}

// ATSConfig lists the company boards to read; an empty list means the
// built-in roster.
type ATSConfig struct {
	Disabled bool           `yaml:"disabled"`
	Targets  []TargetConfig `yaml:"targets" validate:"dive"`
}

// TargetConfig describes a single company board.
type TargetConfig struct {
	Company  string `yaml:"company" validate:"required"`
	Provider string `yaml:"provider" validate:"required,oneof=greenhouse lever ashby"`
	Slug     string `yaml:"slug" validate:"required"`
}

// QuotaConfig selects where daily per-source call counters live.
type QuotaConfig struct {
	Backend  string         `yaml:"backend" validate:"omitempty,oneof=memory redis"`
	RedisURL string         `yaml:"redis_url"`
	Limits   map[string]int `yaml:"limits" validate:"dive,gte=0"`
}

// RetryConfig bounds retries of transient transport failures.
type RetryConfig struct {
	MaxRetries int
	BaseDelay  time.Duration
}

// RateLimitConfig controls the per-source politeness gap.
type RateLimitConfig struct {
	MinDelay  time.Duration            // minimum gap between requests of one source
	Overrides map[string]time.Duration // per-source overrides, keyed by source name
}

// MinDelayFor returns the configured delay for the given source, falling back to MinDelay.
func (r RateLimitConfig) MinDelayFor(source string) time.Duration {
	if d, ok := r.Overrides[source]; ok {
		return d
	}
	return r.MinDelay
}

// StoreConfig points at the SQLite candidate database.
type StoreConfig struct {
	Path      string
	Retention time.Duration
}

// NotificationConfig controls which notifier is used and its settings.
type NotificationConfig struct {
	Type       string `yaml:"type" validate:"omitempty,oneof=log slack"` // "log" or "slack"
	WebhookURL string `yaml:"webhook_url" validate:"omitempty,url"`     // required if type is "slack"
}

// ValidationConfig tunes the description quality gate.
type ValidationConfig struct {
	MinDescriptionLength int `yaml:"min_description_length" validate:"gte=0"`
}

// rawConfig is used for YAML unmarshaling (snake_case fields and durations as strings).
type rawConfig struct {
	Interval      string             `yaml:"interval"`
	SourceTimeout string             `yaml:"source_timeout"`
	Search        SearchConfig       `yaml:"search"`
	Sources       SourcesConfig      `yaml:"sources"`
	Quota         QuotaConfig        `yaml:"quota"`
	Retry         rawRetryConfig     `yaml:"retry"`
	RateLimit     rawRateLimitConfig `yaml:"rate_limit"`
	Store         rawStoreConfig     `yaml:"store"`
	Notification  NotificationConfig `yaml:"notification"`
	Validation    ValidationConfig   `yaml:"validation"`
}

type rawRetryConfig struct {
	MaxRetries *int   `yaml:"max_retries"`
	BaseDelay  string `yaml:"base_delay"`
}

type rawRateLimitConfig struct {
	MinDelay  string            `yaml:"min_delay"`
	Overrides map[string]string `yaml:"overrides"`
}

type rawStoreConfig struct {
	Path      string `yaml:"path"`
	Retention string `yaml:"retention"`
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	return &Config{
		Interval:      time.Hour,
		SourceTimeout: 2 * time.Minute,
		Quota:         QuotaConfig{Backend: "memory"},
		Retry:         RetryConfig{MaxRetries: 2, BaseDelay: 2 * time.Second},
		RateLimit: RateLimitConfig{
			MinDelay:  time.Second,
			Overrides: map[string]time.Duration{"ats": 500 * time.Millisecond},
		},
		Store:        StoreConfig{Path: "jobsweep.db", Retention: 30 * 24 * time.Hour},
		Notification: NotificationConfig{Type: "log"},
		Validation:   ValidationConfig{MinDescriptionLength: 3000},
	}
}

// Load reads the YAML config at path, fills credentials from the environment,
// validates the result and returns it. An empty path means DefaultPath, which
// may be absent: defaults plus environment are used then.
func Load(path string) (*Config, error) {
	// A .env file is optional.
	_ = godotenv.Load()

	explicit := path != ""
	if !explicit {
		path = DefaultPath
	}

	raw := rawConfig{}
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		// Expand environment variables
		expanded := os.ExpandEnv(string(data))
		if err := yaml.Unmarshal([]byte(expanded), &raw); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	case !explicit && errors.Is(err, fs.ErrNotExist):
	default:
		return nil, fmt.Errorf("read config: %w", err)
	}

	cfg, err := fromRaw(raw)
	if err != nil {
		return nil, err
	}
	applyEnv(&cfg.Sources)

	if err := validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func fromRaw(raw rawConfig) (*Config, error) {
	cfg := Default()
	var err error

	if cfg.Interval, err = durationOr(raw.Interval, cfg.Interval, "interval"); err != nil {
		return nil, err
	}
	if cfg.SourceTimeout, err = durationOr(raw.SourceTimeout, cfg.SourceTimeout, "source_timeout"); err != nil {
		return nil, err
	}
	if raw.Retry.MaxRetries != nil {
		cfg.Retry.MaxRetries = *raw.Retry.MaxRetries
	}
	if cfg.Retry.BaseDelay, err = durationOr(raw.Retry.BaseDelay, cfg.Retry.BaseDelay, "retry.base_delay"); err != nil {
		return nil, err
	}
	if cfg.RateLimit.MinDelay, err = durationOr(raw.RateLimit.MinDelay, cfg.RateLimit.MinDelay, "rate_limit.min_delay"); err != nil {
		return nil, err
	}
	for source, value := range raw.RateLimit.Overrides {
		d, err := time.ParseDuration(value)
		if err != nil {
			return nil, fmt.Errorf("parse rate_limit.overrides[%q]: %w", source, err)
		}
		cfg.RateLimit.Overrides[source] = d
	}
	if raw.Store.Path != "" {
		cfg.Store.Path = raw.Store.Path
	}
	if cfg.Store.Retention, err = durationOr(raw.Store.Retention, cfg.Store.Retention, "store.retention"); err != nil {
		return nil, err
	}

	cfg.Search = raw.Search
	cfg.Sources = raw.Sources
	if raw.Quota.Backend != "" {
		cfg.Quota.Backend = raw.Quota.Backend
	}
	cfg.Quota.RedisURL = raw.Quota.RedisURL
	cfg.Quota.Limits = raw.Quota.Limits
	if raw.Notification.Type != "" {
		cfg.Notification.Type = raw.Notification.Type
	}
	cfg.Notification.WebhookURL = raw.Notification.WebhookURL
	if raw.Validation.MinDescriptionLength > 0 {
		cfg.Validation = raw.Validation
	}
	return cfg, nil
}

func durationOr(value string, def time.Duration, field string) (time.Duration, error) {
	if value == "" {
		return def, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("parse %s %q: %w", field, value, err)
	}
	return d, nil
}

// applyEnv fills empty credentials from their canonical environment variables.
func applyEnv(s *SourcesConfig) {
	fill := func(dst *string, key string) {
		if *dst == "" {
			*dst = strings.TrimSpace(os.Getenv(key))
		}
	}
	fill(&s.JSearch.APIKey, EnvJSearchKey)
	fill(&s.Adzuna.AppID, EnvAdzunaID)
	fill(&s.Adzuna.AppKey, EnvAdzunaKey)
	fill(&s.Jooble.APIKey, EnvJoobleKey)
	fill(&s.USAJobs.APIKey, EnvUSAJobsKey)
	fill(&s.USAJobs.Email, EnvUSAJobsEmail)
}

var structValidator = newStructValidator()

func newStructValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("yaml"), ",", 2)[0]
		if name == "-" || name == "" {
			return f.Name
		}
		return name
	})
	return v
}

func validate(cfg *Config) error {
	if err := structValidator.Struct(cfg); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			fe := verrs[0]
			return fmt.Errorf("invalid config: %s fails %q (value %v)", fe.Namespace(), fe.ActualTag(), fe.Value())
		}
		return fmt.Errorf("invalid config: %w", err)
	}

	if cfg.Interval <= 0 {
		return fmt.Errorf("interval must be positive, got %v", cfg.Interval)
	}
	if cfg.SourceTimeout < 0 {
		return fmt.Errorf("source_timeout must not be negative, got %v", cfg.SourceTimeout)
	}
	if cfg.Retry.MaxRetries < 0 || cfg.Retry.MaxRetries > 10 {
		return fmt.Errorf("retry.max_retries must be between 0 and 10, got %d", cfg.Retry.MaxRetries)
	}
	if cfg.Retry.BaseDelay < 0 {
		return fmt.Errorf("retry.base_delay must not be negative, got %v", cfg.Retry.BaseDelay)
	}
	if cfg.RateLimit.MinDelay < 0 {
		return fmt.Errorf("rate_limit.min_delay must not be negative, got %v", cfg.RateLimit.MinDelay)
	}

	if cfg.Quota.Backend == "redis" && cfg.Quota.RedisURL == "" {
		return fmt.Errorf("quota.redis_url is required when backend is \"redis\"")
	}

	if cfg.Notification.Type == "slack" {
		if cfg.Notification.WebhookURL == "" {
			return fmt.Errorf("notification.webhook_url is required when type is \"slack\"")
		}
		if !strings.HasPrefix(cfg.Notification.WebhookURL, "https://hooks.slack.com/") {
			return fmt.Errorf("notification.webhook_url must start with https://hooks.slack.com/")
		}
	}

	return nil
}
