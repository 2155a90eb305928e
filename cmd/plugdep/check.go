package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/plugdep/plugdep/pkg/checker"
	"github.com/plugdep/plugdep/pkg/presenter"
	"github.com/plugdep/plugdep/pkg/render"
	"github.com/plugdep/plugdep/pkg/resolution"
)

// CheckConfig holds configuration for the check command
type CheckConfig struct {
	Installed bool
	All       bool
	Plugin    string
	Format    string
	Pretty    bool
}

// NewCheckConfig creates a new CheckConfig with default values
func NewCheckConfig() *CheckConfig {
	return &CheckConfig{
		Format: "table",
	}
}

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Check plugin and system dependencies",
	Long: `Check the declared dependencies of installed plugins against the host.

By default only enabled plugins are checked. Plugin dependencies are
verified against the installed plugin registry and their version
constraints; system dependencies are probed on PATH.

Example:
  plugdep check
  plugdep check --all --format json --pretty
  plugdep check --plugin utils@claude-code-marketplace
  plugdep check --format steps`,
	Run: func(cmd *cobra.Command, _ []string) {
		ctx := cmd.Context()
		config := getCheckConfigFromFlags(cmd)
		runCheckCmd(ctx, config)
	},
}

func init() {
	// Add check command flags
	checkDefaults := NewCheckConfig()
	checkCmd.Flags().Bool("installed", checkDefaults.Installed, "Check all installed plugins, not just enabled ones")
	checkCmd.Flags().Bool("all", checkDefaults.All, "Check every plugin in every known marketplace")
	checkCmd.Flags().String("plugin", checkDefaults.Plugin, "Check a single plugin (name or name@marketplace)")
	checkCmd.Flags().String("format", checkDefaults.Format, "Output format (table, json, steps)")
	checkCmd.Flags().Bool("pretty", checkDefaults.Pretty, "Indent JSON output")
}

// getCheckConfigFromFlags extracts check configuration from command flags
func getCheckConfigFromFlags(cmd *cobra.Command) *CheckConfig {
	config := NewCheckConfig()

	if installed, err := cmd.Flags().GetBool("installed"); err == nil {
		config.Installed = installed
	}
	if all, err := cmd.Flags().GetBool("all"); err == nil {
		config.All = all
	}
	if plugin, err := cmd.Flags().GetString("plugin"); err == nil {
		config.Plugin = plugin
	}
	if format, err := cmd.Flags().GetString("format"); err == nil {
		config.Format = format
	}
	if pretty, err := cmd.Flags().GetBool("pretty"); err == nil {
		config.Pretty = pretty
	}

	if config.Installed && config.All {
		presenter.Error(errors.New("conflicting flags"), "--installed and --all cannot be used together")
		os.Exit(1)
	}

	return config
}

func checkScope(config *CheckConfig) checker.Scope {
	switch {
	case config.All:
		return checker.ScopeAll
	case config.Installed:
		return checker.ScopeInstalled
	default:
		return checker.ScopeEnabled
	}
}

func runCheckCmd(ctx context.Context, config *CheckConfig) {
	reg, err := loadRegistry(ctx)
	if err != nil {
		presenter.Error(err, "Failed to load plugin registry")
		os.Exit(1)
	}

	report, err := checker.New(reg).Check(ctx, checkScope(config), config.Plugin)
	if err != nil {
		presenter.Error(err, "Dependency check failed")
		os.Exit(1)
	}

	switch config.Format {
	case "json":
		out, err := marshalReport(report, config.Pretty)
		if err != nil {
			presenter.Error(err, "Failed to encode report")
			os.Exit(1)
		}
		fmt.Println(out)
	case "table":
		fmt.Println(render.Report(report))
	case "steps":
		fmt.Println(resolution.Format(resolution.Steps(report)))
	default:
		presenter.Error(errors.Errorf("unknown format: %s", config.Format), "Supported formats are table, json, and steps")
		os.Exit(1)
	}

	if report.HasRequiredFailures() {
		os.Exit(1)
	}
}

func marshalReport(report *checker.Report, pretty bool) (string, error) {
	var (
		out []byte
		err error
	)
	if pretty {
		out, err = json.MarshalIndent(report, "", "  ")
	} else {
		out, err = json.Marshal(report)
	}
	if err != nil {
		return "", errors.Wrap(err, "failed to marshal report")
	}
	return string(out), nil
}
