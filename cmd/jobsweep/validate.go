package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/amishk599/jobsweep/internal/textclean"
	"github.com/amishk599/jobsweep/internal/validate"
	"github.com/spf13/cobra"
)

var validateOpts struct {
	url  string
	file string
}

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check a job URL and description against the import rules",
	Long:  "Runs the blocked-domain check on --url and the description quality check on --file (or stdin with -file -), then prints the combined verdict.",
	RunE:  runValidate,
}

func init() {
	f := validateCmd.Flags()
	f.StringVar(&validateOpts.url, "url", "", "job posting URL")
	f.StringVar(&validateOpts.file, "file", "", "file with the job description, HTML or text (\"-\" for stdin)")
	rootCmd.AddCommand(validateCmd)
}

func runValidate(cmd *cobra.Command, args []string) error {
	if validateOpts.url == "" && validateOpts.file == "" {
		return fmt.Errorf("at least one of --url or --file is required")
	}

	cfg, err := loadConfig(cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	domain := validate.DomainResult{Valid: true}
	if validateOpts.url != "" {
		domain = validate.JobSourceDomain(validateOpts.url)
		if domain.Valid {
			fmt.Println(okStyle.Render("✓ domain allowed"))
		} else {
			fmt.Println(warnStyle.Render("✗ domain blocked: " + domain.BlockedDomain))
		}
	}

	desc := validate.DescriptionResult{Valid: true}
	if validateOpts.file != "" {
		text, err := readDescription(validateOpts.file)
		if err != nil {
			return err
		}
		desc = validate.New(cfg.Validation.MinDescriptionLength).JobDescription(text)
		if desc.Valid {
			fmt.Println(okStyle.Render(fmt.Sprintf("✓ description ok (%d characters)", desc.Length)))
		} else {
			fmt.Println(warnStyle.Render(fmt.Sprintf("✗ description %s: %s", desc.Reason, desc.Detail)))
		}
	}

	if msg := validate.Message(domain, desc, false); msg != "" {
		fmt.Println()
		fmt.Println(msg)
		os.Exit(1)
	}
	return nil
}

// readDescription loads the description and strips markup when it looks like HTML.
func readDescription(path string) (string, error) {
	var data []byte
	var err error
	if path == "-" {
		data, err = io.ReadAll(os.Stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return "", fmt.Errorf("read description: %w", err)
	}
	text := string(data)
	if strings.Contains(text, "<") && strings.Contains(text, ">") {
		text = textclean.CleanHTMLToText(text)
	}
	return text, nil
}
