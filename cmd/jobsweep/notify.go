package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/amishk599/jobsweep/internal/coordinator"
	"github.com/amishk599/jobsweep/internal/model"
	"github.com/amishk599/jobsweep/internal/notifier"
	"github.com/spf13/cobra"
)

var notifyOpts struct {
	live bool
}

var notifyCmd = &cobra.Command{
	Use:   "notify",
	Short: "Notification subcommands",
}

var notifyTestCmd = &cobra.Command{
	Use:   "test",
	Short: "Send a test notification",
	Long: "Sends a test notification using the configured notifier. With --live the top job " +
		"from a one-off collection is sent instead of the placeholder posting.",
	RunE: runNotifyTest,
}

func init() {
	notifyTestCmd.Flags().BoolVar(&notifyOpts.live, "live", false, "collect once and send the top curated job")
	rootCmd.AddCommand(notifyCmd)
	notifyCmd.AddCommand(notifyTestCmd)
}

func runNotifyTest(cmd *cobra.Command, args []string) error {
	logger := setupLogger(os.Stdout, debug)

	cfg, err := loadConfig(cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	httpClient := &http.Client{Timeout: 30 * time.Second}
	n := setupNotifier(cfg, httpClient, logger)

	var jobs []model.ScrapedJob
	if notifyOpts.live {
		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		q, closeQuota, err := setupQuota(ctx, cfg, logger)
		if err != nil {
			return fmt.Errorf("set up quota store: %w", err)
		}
		defer closeQuota()

		coord := newCoordinator(cfg, buildSources(cfg, httpClient, q, logger), logger)
		jobs = topJob(ctx, coord, searchFilter(cfg.Search), logger)
	}

	if err := notifier.SendTestMessage(n, jobs...); err != nil {
		return fmt.Errorf("send test notification: %w", err)
	}
	logger.Info("test notification sent", "live", len(jobs) > 0)
	return nil
}

// topJob runs one collection capped at a single job. It returns nil when the
// run comes back empty so the placeholder goes out instead.
func topJob(ctx context.Context, coord *coordinator.Coordinator, f model.JobFilter, logger *slog.Logger) []model.ScrapedJob {
	f.Limit = 1
	res := coord.Run(ctx, f)
	if len(res.Jobs) == 0 {
		logger.Warn("collection returned no jobs, sending the placeholder", "run_id", res.RunID)
		return nil
	}
	return res.Jobs[:1]
}
