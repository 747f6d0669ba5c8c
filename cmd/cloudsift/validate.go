package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/cloudsift/cloudsift/pkg/audit"
)

var validateFlags struct {
	rulesPath string
}

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate a rules file",
	Long: `Load and compile a rules file without running a scan.

Every rule definition is compiled exactly as a scan would compile it:
unknown fields, unknown modes, empty resource-id lists, and malformed
patterns are all reported here instead of failing the next scan.

Examples:
  # Validate the rules file from the config
  cloudsift validate

  # Validate a specific file
  cloudsift validate --rules /etc/cloudsift/rules.yaml`,
	RunE: validateRules,
}

func init() {
	rootCmd.AddCommand(validateCmd)

	validateCmd.Flags().StringVar(&validateFlags.rulesPath, "rules", "", "rules file (uses config if not specified)")
}

func validateRules(cmd *cobra.Command, args []string) error {
	path := validateFlags.rulesPath
	if path == "" {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		path = cfg.Rules.Path
	}

	defs, err := audit.LoadRuleDefinitions(path)
	if err != nil {
		return err
	}

	book := audit.NewRuleBook()
	if err := book.AddRules(defs); err != nil {
		return err
	}

	fmt.Printf("%s: %d rule definitions, %d compiled rules\n", path, len(defs), book.RuleCount())
	return nil
}
