package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	// Global flags
	cfgFile string
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "cloudsift",
	Short: "Cloudsift - access-control compliance scanner",
	Long: `Cloudsift evaluates cloud resource access controls against
policy rules organized by the resource hierarchy and reports every
access grant that violates policy.

Rules are wildcard patterns over the fields of an access-control entry,
registered against organizations, folders, projects, or datasets; a
resource inherits every rule registered on its ancestors.`,
	Version: Version,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "config.yaml", "config file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}
