package main

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/amishk599/jobsweep/internal/adapter"
	"github.com/amishk599/jobsweep/internal/config"
	"github.com/amishk599/jobsweep/internal/coordinator"
	"github.com/amishk599/jobsweep/internal/model"
	"github.com/amishk599/jobsweep/internal/notifier"
	"github.com/amishk599/jobsweep/internal/quota"
	"github.com/amishk599/jobsweep/internal/ratelimit"
	"github.com/amishk599/jobsweep/internal/retry"
	"github.com/amishk599/jobsweep/internal/validate"
	"github.com/spf13/cobra"
)

var (
	cfgPath string
	debug   bool
)

var rootCmd = &cobra.Command{
	Use:   "jobsweep",
	Short: "Multi-source job aggregation and curation",
	Long:  "jobsweep pulls postings from job APIs, RSS feeds and company ATS boards, then dedups, filters and ranks them.",
	// Default to `start` so that `jobsweep` with no args runs the daemon.
	RunE:         runStart,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgPath, "config", "c", "", "path to config file (default: JOBSWEEP_CONFIG env var or ./jobsweep.yaml)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")
}

// loadConfig resolves the config path and parses it.
// Priority: explicit path arg > JOBSWEEP_CONFIG env var > "./jobsweep.yaml" (optional)
func loadConfig(path string) (*config.Config, error) {
	if path == "" {
		path = os.Getenv("JOBSWEEP_CONFIG")
	}
	return config.Load(path)
}

// setupLogger writes text logs to w. Commands that print machine-readable
// output on stdout log to stderr instead.
func setupLogger(w io.Writer, dbg bool) *slog.Logger {
	logLevel := slog.LevelInfo
	if dbg {
		logLevel = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: logLevel}))
}

func setupNotifier(cfg *config.Config, httpClient *http.Client, logger *slog.Logger) model.Notifier {
	switch cfg.Notification.Type {
	case "slack":
		logger.Info("using slack notifier")
		return notifier.NewSlackNotifier(cfg.Notification.WebhookURL, httpClient, logger)
	default:
		return notifier.NewLogNotifier(logger)
	}
}

// setupQuota returns the configured quota store and a function releasing it.
// An unreachable redis is logged and the run continues: quota checks fail open.
func setupQuota(ctx context.Context, cfg *config.Config, logger *slog.Logger) (quota.Store, func(), error) {
	limits := quota.Limits(cfg.Quota.Limits)
	if cfg.Quota.Backend != "redis" {
		return quota.NewMemoryStore(limits), func() {}, nil
	}

	rs, err := quota.NewRedisStore(cfg.Quota.RedisURL, limits)
	if err != nil {
		return nil, nil, err
	}
	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := rs.Ping(pingCtx); err != nil {
		logger.Warn("redis quota store unreachable, quota checks will fail open", "error", err)
	} else {
		logger.Info("using redis quota store")
	}
	return rs, func() { _ = rs.Close() }, nil
}

// buildSources maps the configuration onto the seven source adapters. Every
// adapter gets its own pacer key from a shared registry.
func buildSources(cfg *config.Config, httpClient *http.Client, q quota.Store, logger *slog.Logger) []model.Source {
	pacers := ratelimit.NewRegistry(cfg.RateLimit.MinDelay, cfg.RateLimit.Overrides)
	policy := retry.Policy{MaxRetries: cfg.Retry.MaxRetries, BaseDelay: cfg.Retry.BaseDelay}
	deps := func(name string) adapter.Deps {
		return adapter.Deps{
			Client: httpClient,
			Logger: logger,
			Pacer:  pacers.For(name),
			Quota:  q,
			Retry:  policy,
		}
	}

	s := cfg.Sources
	feeds := make([]adapter.Feed, 0, len(s.RSS.Feeds))
	for _, f := range s.RSS.Feeds {
		feeds = append(feeds, adapter.Feed{URL: f.URL, Company: f.Company, DefaultLocation: f.DefaultLocation})
	}
	targets := make([]adapter.ATSTarget, 0, len(s.ATS.Targets))
	for _, t := range s.ATS.Targets {
		targets = append(targets, adapter.ATSTarget{Company: t.Company, Provider: t.Provider, Slug: t.Slug})
	}

	return []model.Source{
		adapter.NewJSearchAdapter(adapter.JSearchConfig{APIKey: s.JSearch.APIKey, Pages: s.JSearch.Pages}, deps("jsearch")),
		adapter.NewAdzunaAdapter(adapter.AdzunaConfig{
			AppID:          s.Adzuna.AppID,
			AppKey:         s.Adzuna.AppKey,
			Country:        s.Adzuna.Country,
			Pages:          s.Adzuna.Pages,
			ResultsPerPage: s.Adzuna.ResultsPerPage,
		}, deps("adzuna")),
		adapter.NewJoobleAdapter(adapter.JoobleConfig{APIKey: s.Jooble.APIKey, Pages: s.Jooble.Pages}, deps("jooble")),
		adapter.NewUSAJobsAdapter(adapter.USAJobsConfig{
			APIKey:         s.USAJobs.APIKey,
			Email:          s.USAJobs.Email,
			ResultsPerPage: s.USAJobs.ResultsPerPage,
			Validator:      validate.New(cfg.Validation.MinDescriptionLength),
		}, deps("usajobs")),
		adapter.NewRemoteOKAdapter(adapter.RemoteOKConfig{Disabled: s.RemoteOK.Disabled}, deps("remoteok")),
		adapter.NewRSSAdapter(adapter.RSSConfig{Feeds: feeds, Disabled: s.RSS.Disabled}, deps("rss")),
		adapter.NewATSAdapter(adapter.ATSConfig{Targets: targets, Disabled: s.ATS.Disabled}, deps("ats")),
	}
}

func newCoordinator(cfg *config.Config, sources []model.Source, logger *slog.Logger) *coordinator.Coordinator {
	return coordinator.New(sources, logger,
		coordinator.WithValidator(validate.New(cfg.Validation.MinDescriptionLength)),
		coordinator.WithSourceTimeout(cfg.SourceTimeout),
	)
}

// searchFilter turns the configured search section into a job filter.
func searchFilter(s config.SearchConfig) model.JobFilter {
	f := model.JobFilter{
		Recent:   s.Recent,
		Keywords: s.Keywords,
		Location: s.Location,
		Limit:    s.Limit,
	}
	if s.Level != "" {
		f.Level = []string{s.Level}
	}
	return f
}
