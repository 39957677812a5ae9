package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"sort"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/amishk599/jobsweep/internal/config"
	"github.com/amishk599/jobsweep/internal/coordinator"
	"github.com/amishk599/jobsweep/internal/model"
	"github.com/amishk599/jobsweep/internal/store"
	"github.com/spf13/cobra"
)

var collectOpts struct {
	keywords []string
	level    string
	location string
	recent   bool
	limit    int
	json     bool
	save     bool
	notify   bool
}

var collectCmd = &cobra.Command{
	Use:   "collect",
	Short: "Run one collection and print the curated jobs",
	Long:  "Fetches from every enabled source once, curates the union and prints it. Nothing is stored unless --save is given.",
	RunE:  runCollect,
}

func init() {
	f := collectCmd.Flags()
	f.StringSliceVar(&collectOpts.keywords, "keywords", nil, "search keywords (comma separated)")
	f.StringVar(&collectOpts.level, "level", "", "seniority hint, e.g. internship")
	f.StringVar(&collectOpts.location, "location", "", "location passed to the search APIs")
	f.BoolVar(&collectOpts.recent, "recent", false, "only postings from the last 24h")
	f.IntVar(&collectOpts.limit, "limit", 0, "maximum number of jobs to return (0 = no limit)")
	f.BoolVar(&collectOpts.json, "json", false, "print the result as JSON")
	f.BoolVar(&collectOpts.save, "save", false, "store the jobs in the candidate database")
	f.BoolVar(&collectOpts.notify, "notify", false, "send new jobs to the configured notifier")
	rootCmd.AddCommand(collectCmd)
}

// collectFilter starts from the configured search and applies the flags the
// user actually set.
func collectFilter(cmd *cobra.Command, s config.SearchConfig) model.JobFilter {
	f := searchFilter(s)
	flags := cmd.Flags()
	if flags.Changed("keywords") {
		f.Keywords = collectOpts.keywords
	}
	if flags.Changed("level") {
		f.Level = nil
		if collectOpts.level != "" {
			f.Level = []string{collectOpts.level}
		}
	}
	if flags.Changed("location") {
		f.Location = collectOpts.location
	}
	if flags.Changed("recent") {
		f.Recent = collectOpts.recent
	}
	if flags.Changed("limit") {
		f.Limit = collectOpts.limit
	}
	return f
}

func runCollect(cmd *cobra.Command, args []string) error {
	// --json owns stdout.
	logOut := io.Writer(os.Stdout)
	if collectOpts.json {
		logOut = os.Stderr
	}
	logger := setupLogger(logOut, debug)

	cfg, err := loadConfig(cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	q, closeQuota, err := setupQuota(ctx, cfg, logger)
	if err != nil {
		return fmt.Errorf("set up quota store: %w", err)
	}
	defer closeQuota()

	httpClient := &http.Client{Timeout: 30 * time.Second}
	coord := newCoordinator(cfg, buildSources(cfg, httpClient, q, logger), logger)
	res := coord.Run(ctx, collectFilter(cmd, cfg.Search))

	jobs := res.Jobs
	if collectOpts.save {
		sqlStore, err := store.NewSQLiteStore(cfg.Store.Path)
		if err != nil {
			return fmt.Errorf("open store: %w", err)
		}
		defer sqlStore.Close()

		jobs, err = sqlStore.SaveCandidates(ctx, res.Jobs)
		if err != nil {
			return fmt.Errorf("save candidates: %w", err)
		}
		logger.Info("candidates saved", "new", len(jobs), "seen_before", len(res.Jobs)-len(jobs))
	}

	if collectOpts.notify && len(jobs) > 0 {
		n := setupNotifier(cfg, httpClient, logger)
		if err := n.Notify(jobs); err != nil {
			logger.Error("notification failed", "error", err)
		}
	}

	if collectOpts.json {
		return writeJSON(os.Stdout, res)
	}

	printJobs(res.Jobs)
	printReport(res.Report)
	return nil
}

// writeJSON encodes the run result. Empty collections encode as [] and {}
// rather than null.
func writeJSON(w io.Writer, res coordinator.Result) error {
	if res.Jobs == nil {
		res.Jobs = []model.ScrapedJob{}
	}
	if res.Report.Sources == nil {
		res.Report.Sources = []string{}
	}
	if res.Report.PerSource == nil {
		res.Report.PerSource = map[string]int{}
	}
	if res.Report.Rejected == nil {
		res.Report.Rejected = map[string]int{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(res)
}

func printJobs(jobs []model.ScrapedJob) {
	if len(jobs) == 0 {
		fmt.Println(hintStyle.Render("No jobs matched."))
		return
	}
	t := newTable("#", "Company", "Title", "Location", "Source", "Posted")
	for i, j := range jobs {
		posted := "-"
		if j.PostedAt != nil {
			posted = j.PostedAt.Local().Format("Jan 2 15:04")
		}
		t.Row(strconv.Itoa(i+1), clip(j.Company, 24), clip(j.Title, 48), clip(j.Location, 28), j.OriginalSource, posted)
	}
	fmt.Println(t)
}

func printReport(r coordinator.Report) {
	fmt.Printf("\nFetched %d from %d sources, %d duplicates, %d dropped, %d returned (%d visa first)\n",
		r.Fetched, len(r.Sources), r.Duplicates, r.Dropped, r.Returned, r.Prioritized)

	stages := []string{
		coordinator.StageWhitelist,
		coordinator.StageBlacklist,
		coordinator.StageLocation,
		coordinator.StageDate,
		coordinator.StageQuality,
	}
	parts := make([]string, 0, len(stages))
	for _, s := range stages {
		parts = append(parts, fmt.Sprintf("%s=%d", s, r.Rejected[s]))
	}
	fmt.Println(hintStyle.Render("Rejected: " + strings.Join(parts, " ")))

	if len(r.SourceErrors) > 0 {
		names := make([]string, 0, len(r.SourceErrors))
		for name := range r.SourceErrors {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			fmt.Println(warnStyle.Render(fmt.Sprintf("! %s: %s", name, r.SourceErrors[name])))
		}
	}
	if len(r.MissingEnv) > 0 {
		fmt.Println(warnStyle.Render("No sources enabled. Set credentials with: jobsweep sources"))
	}
}
