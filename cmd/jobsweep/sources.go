package main

import (
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/amishk599/jobsweep/internal/model"
	"github.com/amishk599/jobsweep/internal/quota"
	"github.com/spf13/cobra"
)

var sourcesCmd = &cobra.Command{
	Use:   "sources",
	Short: "List the job sources and whether they are enabled",
	Long:  "Prints every source adapter, whether it is enabled, and which credentials are missing.",
	RunE:  runSources,
}

func init() {
	rootCmd.AddCommand(sourcesCmd)
}

func runSources(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger := setupLogger(os.Stdout, debug)
	sources := buildSources(cfg, &http.Client{Timeout: 30 * time.Second}, quota.Unlimited{}, logger)

	t := newTable("Source", "Status", "Pace", "Daily quota", "Missing credentials")
	enabled := 0
	for _, s := range sources {
		status := warnStyle.Render("disabled")
		if s.IsEnabled() {
			status = okStyle.Render("enabled")
			enabled++
		}
		limit := "unlimited"
		if n := cfg.Quota.Limits[s.Name()]; n > 0 {
			limit = fmt.Sprintf("%d/day", n)
		}
		t.Row(s.Name(), status, cfg.RateLimit.MinDelayFor(s.Name()).String(), limit, missingEnv(s))
	}
	fmt.Println(t)

	fmt.Printf("\nTotal: %d sources (%d enabled, %d disabled)\n", len(sources), enabled, len(sources)-enabled)
	return nil
}

func missingEnv(s model.Source) string {
	if s.IsEnabled() {
		return ""
	}
	cs, ok := s.(model.CredentialedSource)
	if !ok {
		return ""
	}
	return strings.Join(cs.RequiredEnv(), ", ")
}
