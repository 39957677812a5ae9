package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/amishk599/jobsweep/internal/model"
	"github.com/amishk599/jobsweep/internal/poller"
	"github.com/amishk599/jobsweep/internal/scheduler"
	"github.com/amishk599/jobsweep/internal/store"
	"github.com/spf13/cobra"
)

var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Start the collection daemon",
	Long:  "Start the scheduler daemon: collect, store new candidates, notify; blocks until SIGINT/SIGTERM.",
	RunE:  runStart,
}

func init() {
	rootCmd.AddCommand(startCmd)
}

func runStart(cmd *cobra.Command, args []string) error {
	logger := setupLogger(os.Stdout, debug)

	cfg, err := loadConfig(cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger.Info("config loaded",
		"interval", cfg.Interval.String(),
		"keywords", len(cfg.Search.Keywords),
		"store", cfg.Store.Path,
		"quota_backend", cfg.Quota.Backend,
	)

	sqlStore, err := store.NewSQLiteStore(cfg.Store.Path)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer sqlStore.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	q, closeQuota, err := setupQuota(ctx, cfg, logger)
	if err != nil {
		return fmt.Errorf("set up quota store: %w", err)
	}
	defer closeQuota()

	httpClient := &http.Client{Timeout: 30 * time.Second}
	n := setupNotifier(cfg, httpClient, logger)
	coord := newCoordinator(cfg, buildSources(cfg, httpClient, q, logger), logger)

	if enabledCount(coord.Sources()) == 0 {
		return errors.New("no sources enabled, run `jobsweep sources` to see missing credentials")
	}

	p := poller.New(coord, searchFilter(cfg.Search), sqlStore, n, cfg.Store.Retention, logger)
	sched := scheduler.NewScheduler(p.Poll, cfg.Interval, logger)
	if err := sched.Run(ctx); err != nil {
		return fmt.Errorf("scheduler: %w", err)
	}

	logger.Info("goodbye")
	return nil
}

func enabledCount(sources []model.Source) int {
	n := 0
	for _, s := range sources {
		if s.IsEnabled() {
			n++
		}
	}
	return n
}
