package main

import (
	"errors"
	"fmt"

	configs "go_jsoning_server/internal/infra/config"
	"go_jsoning_server/internal/infra/rulesource"

	"github.com/spf13/cobra"
)

var checkRulesFile string

var checkRulesCmd = &cobra.Command{
	Use:   "check-rules",
	Short: "Compile a rule file and report errors without starting the server",
	Args:  cobra.NoArgs,
	RunE:  runCheckRules,
}

func init() {
	rootCmd.AddCommand(checkRulesCmd)
	checkRulesCmd.Flags().StringVarP(&checkRulesFile, "rules", "r", "", "rule file to check (default rules.file from config)")
}

func runCheckRules(cmd *cobra.Command, args []string) error {
	path := checkRulesFile
	if path == "" {
		cfg, err := configs.LoadConfig(cfgFile)
		if err != nil {
			return err
		}
		path = cfg.Rules.File
	}
	if path == "" {
		return errors.New("no rule file given, use --rules")
	}

	rules, err := rulesource.CompileFile(path)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s: %d rules ok\n", path, rules.Len())
	return nil
}
