package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/plugdep/plugdep/pkg/presenter"
	"github.com/plugdep/plugdep/pkg/scanner"
)

// ScanConfig holds configuration for the scan command
type ScanConfig struct {
	Plugin         string
	Marketplace    string
	PluginDir      string
	MarketplaceDir string
	Type           string
	Pretty         bool
}

// NewScanConfig creates a new ScanConfig with default values
func NewScanConfig() *ScanConfig {
	return &ScanConfig{}
}

var scanCmd = &cobra.Command{
	Use:   "scan",
	Short: "Scan plugin content for dependency references",
	Long: `Scan plugin files for references to skills, agents, tools, plugins,
and system commands, whether or not they are declared in a manifest.

By default every enabled plugin is scanned. Matches are printed as JSON
with file, line, column, and surrounding context.

Example:
  plugdep scan
  plugdep scan --plugin utils@claude-code-marketplace
  plugdep scan --marketplace claude-code-marketplace --type systemCommand
  plugdep scan --plugin-dir ./plugins/utils --pretty`,
	Run: func(cmd *cobra.Command, _ []string) {
		ctx := cmd.Context()
		config := getScanConfigFromFlags(cmd)
		runScanCmd(ctx, config)
	},
}

func init() {
	// Add scan command flags
	scanDefaults := NewScanConfig()
	scanCmd.Flags().String("plugin", scanDefaults.Plugin, "Scan a single installed plugin (name or name@marketplace)")
	scanCmd.Flags().String("marketplace", scanDefaults.Marketplace, "Scan every plugin in a known marketplace")
	scanCmd.Flags().String("plugin-dir", scanDefaults.PluginDir, "Scan a plugin directory on disk")
	scanCmd.Flags().String("marketplace-dir", scanDefaults.MarketplaceDir, "Scan a marketplace directory on disk")
	scanCmd.Flags().String("type", scanDefaults.Type, "Only report matches of this pattern type")
	scanCmd.Flags().Bool("pretty", scanDefaults.Pretty, "Indent JSON output")
}

// getScanConfigFromFlags extracts scan configuration from command flags
func getScanConfigFromFlags(cmd *cobra.Command) *ScanConfig {
	config := NewScanConfig()

	if plugin, err := cmd.Flags().GetString("plugin"); err == nil {
		config.Plugin = plugin
	}
	if marketplace, err := cmd.Flags().GetString("marketplace"); err == nil {
		config.Marketplace = marketplace
	}
	if pluginDir, err := cmd.Flags().GetString("plugin-dir"); err == nil {
		config.PluginDir = pluginDir
	}
	if marketplaceDir, err := cmd.Flags().GetString("marketplace-dir"); err == nil {
		config.MarketplaceDir = marketplaceDir
	}
	if typ, err := cmd.Flags().GetString("type"); err == nil {
		config.Type = typ
	}
	if pretty, err := cmd.Flags().GetBool("pretty"); err == nil {
		config.Pretty = pretty
	}

	modes := 0
	for _, set := range []bool{config.Plugin != "", config.Marketplace != "", config.PluginDir != "", config.MarketplaceDir != ""} {
		if set {
			modes++
		}
	}
	if modes > 1 {
		presenter.Error(errors.New("conflicting flags"), "--plugin, --marketplace, --plugin-dir, and --marketplace-dir cannot be combined")
		os.Exit(1)
	}

	if config.Type != "" && !validPatternType(config.Type) {
		presenter.Error(errors.Errorf("unknown pattern type: %s", config.Type),
			fmt.Sprintf("Supported types: %v", scanner.PatternTypes))
		os.Exit(1)
	}

	return config
}

func validPatternType(typ string) bool {
	for _, known := range scanner.PatternTypes {
		if scanner.PatternType(typ) == known {
			return true
		}
	}
	return false
}

func runScanCmd(ctx context.Context, config *ScanConfig) {
	matches, err := scanMatches(ctx, config)
	if err != nil {
		presenter.Error(err, "Scan failed")
		os.Exit(1)
	}

	if config.Type != "" {
		matches = scanner.FilterByType(matches, scanner.PatternType(config.Type))
	}

	out, err := marshalMatches(matches, config.Pretty)
	if err != nil {
		presenter.Error(err, "Failed to encode matches")
		os.Exit(1)
	}
	fmt.Println(out)
}

// marshalMatches encodes scan matches as JSON. A scan with no matches
// encodes as an empty array, never null.
func marshalMatches(matches []scanner.Match, pretty bool) (string, error) {
	if matches == nil {
		matches = []scanner.Match{}
	}

	var (
		out []byte
		err error
	)
	if pretty {
		out, err = json.MarshalIndent(matches, "", "  ")
	} else {
		out, err = json.Marshal(matches)
	}
	if err != nil {
		return "", errors.Wrap(err, "failed to marshal matches")
	}
	return string(out), nil
}

func scanMatches(ctx context.Context, config *ScanConfig) ([]scanner.Match, error) {
	switch {
	case config.PluginDir != "":
		s := scanner.New(nil)
		return s.ScanPluginDir(ctx, config.PluginDir, filepath.Base(config.PluginDir), "local")
	case config.MarketplaceDir != "":
		s := scanner.New(nil)
		return s.ScanMarketplaceDir(ctx, config.MarketplaceDir, filepath.Base(config.MarketplaceDir))
	}

	reg, err := loadRegistry(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "failed to load plugin registry")
	}
	s := scanner.New(reg)

	switch {
	case config.Plugin != "":
		return s.ScanInstalled(ctx, config.Plugin)
	case config.Marketplace != "":
		return s.ScanMarketplace(ctx, config.Marketplace)
	default:
		return s.ScanEnabled(ctx)
	}
}
