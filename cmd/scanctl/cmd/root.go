package cmd

import (
	"fmt"
	"os"
	"runtime"

	"github.com/spf13/cobra"
)

var (
	version string

	// Global flags
	flagAPIURL  string
	flagOutput  string
	flagVerbose bool
)

var rootCmd = &cobra.Command{
	Use:   "scanctl",
	Short: "Repository vulnerability scan CLI",
	Long: `scanctl drives the repository scan API from the command line.

It submits a repository for analysis and streams the scan events as
they happen: clone progress, per-file results, findings, and the final
summary.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

// SetVersion sets the CLI version from build flags.
func SetVersion(v string) {
	version = v
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&flagAPIURL, "api-url", "", "API base URL (env: REPOGUARD_API_URL, default http://localhost:8080)")
	rootCmd.PersistentFlags().StringVarP(&flagOutput, "output", "o", "text", "Output format: text, json, yaml")
	rootCmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "Enable verbose output")

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(scanCmd)
}

func initConfig() {
	if flagAPIURL == "" {
		flagAPIURL = os.Getenv("REPOGUARD_API_URL")
	}
	if flagAPIURL == "" {
		flagAPIURL = "http://localhost:8080"
	}
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the scanctl version",
	Run: func(_ *cobra.Command, _ []string) {
		fmt.Printf("scanctl %s (%s/%s)\n", version, runtime.GOOS, runtime.GOARCH)
	},
}
