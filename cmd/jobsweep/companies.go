package main

import (
	"fmt"

	"github.com/amishk599/jobsweep/internal/adapter"
	"github.com/spf13/cobra"
)

var companiesCmd = &cobra.Command{
	Use:   "companies",
	Short: "List the ATS boards and RSS feeds that are polled",
	Long:  "Reads the config and prints the company ATS roster and the RSS feed list, falling back to the built-in defaults.",
	RunE:  runCompanies,
}

func init() {
	rootCmd.AddCommand(companiesCmd)
}

func runCompanies(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	targets := adapter.DefaultATSTargets
	origin := "built-in"
	if len(cfg.Sources.ATS.Targets) > 0 {
		targets = targets[:0:0]
		for _, t := range cfg.Sources.ATS.Targets {
			targets = append(targets, adapter.ATSTarget{Company: t.Company, Provider: t.Provider, Slug: t.Slug})
		}
		origin = "configured"
	}

	t := newTable("Company", "ATS", "Board")
	perProvider := make(map[string]int)
	for _, target := range targets {
		t.Row(target.Company, target.Provider, target.Slug)
		perProvider[target.Provider]++
	}
	fmt.Println(t)
	fmt.Printf("\nTotal: %d companies, %s (%d greenhouse, %d lever, %d ashby)\n",
		len(targets), origin,
		perProvider[adapter.ProviderGreenhouse], perProvider[adapter.ProviderLever], perProvider[adapter.ProviderAshby])

	feeds := adapter.DefaultFeeds
	if len(cfg.Sources.RSS.Feeds) > 0 {
		feeds = feeds[:0:0]
		for _, f := range cfg.Sources.RSS.Feeds {
			feeds = append(feeds, adapter.Feed{URL: f.URL, Company: f.Company, DefaultLocation: f.DefaultLocation})
		}
	}
	ft := newTable("Feed", "Company label", "Default location")
	for _, f := range feeds {
		ft.Row(f.URL, f.Company, f.DefaultLocation)
	}
	fmt.Println()
	fmt.Println(ft)

	if cfg.Sources.ATS.Disabled || cfg.Sources.RSS.Disabled {
		fmt.Println(hintStyle.Render("Note: some of these sources are disabled in the config."))
	}
	return nil
}
