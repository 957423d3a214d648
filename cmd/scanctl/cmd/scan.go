package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

var (
	flagToken          string
	flagFailOnFindings bool
)

var scanCmd = &cobra.Command{
	Use:   "scan <repository-url>",
	Short: "Scan a repository for vulnerabilities",
	Long: `Scan submits a repository to the scan API and streams the results.

The access token for private repositories can be passed with --token or
the REPOGUARD_ACCESS_TOKEN environment variable; it is sent only in the
request body and never printed.`,
	Args: cobra.ExactArgs(1),
	RunE: runScan,
}

func init() {
	scanCmd.Flags().StringVar(&flagToken, "token", "", "Access token for private repositories (env: REPOGUARD_ACCESS_TOKEN)")
	scanCmd.Flags().BoolVar(&flagFailOnFindings, "fail-on-findings", false, "Exit with code 1 when vulnerabilities are found")
}

func runScan(cmd *cobra.Command, args []string) error {
	repoURL := args[0]

	token := flagToken
	if token == "" {
		token = os.Getenv("REPOGUARD_ACCESS_TOKEN")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	client := NewClient(flagAPIURL, flagVerbose)

	var (
		findings int
		fatal    bool
	)

	err := client.Stream(ctx, repoURL, token, func(ev Event) error {
		switch ev.Type {
		case "vulnerability":
			findings++
		case "critical_error":
			fatal = true
		}
		return renderEvent(ev)
	})
	if err != nil {
		return err
	}

	if fatal {
		return fmt.Errorf("scan failed")
	}
	if flagFailOnFindings && findings > 0 {
		cmd.SilenceErrors = true
		fmt.Fprintf(os.Stderr, "%d vulnerable file(s) found\n", findings)
		os.Exit(1)
	}

	return nil
}

// renderEvent writes one event in the selected output format.
func renderEvent(ev Event) error {
	switch flagOutput {
	case outputJSON:
		return printEventJSON(ev)
	case outputYAML:
		return printEventYAML(ev)
	default:
		return printEventText(ev)
	}
}

// printEventText renders the human-readable form.
func printEventText(ev Event) error {
	switch ev.Type {
	case "vulnerability":
		var f Finding
		if err := json.Unmarshal(ev.Payload, &f); err != nil {
			return fmt.Errorf("parse finding: %w", err)
		}
		fmt.Printf("[VULNERABILITY] %s\n%s\n\n", f.File, f.Analysis)
	default:
		var msg string
		if err := json.Unmarshal(ev.Payload, &msg); err != nil {
			// Unknown payload shape; show it raw.
			msg = string(ev.Payload)
		}
		fmt.Printf("[%s] %s\n", ev.Type, msg)
	}
	return nil
}
