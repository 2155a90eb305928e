package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/plugdep/plugdep/pkg/logger"
	"github.com/plugdep/plugdep/pkg/registry"
)

func init() {
	// Environment variables
	viper.SetEnvPrefix("PLUGDEP")
	viper.AutomaticEnv()

	// Config file support
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath("$HOME/.plugdep")
	viper.AddConfigPath(".")

	// Load config file if it exists (ignore errors if it doesn't)
	_ = viper.ReadInConfig()
}

var rootCmd = &cobra.Command{
	Use:   "plugdep",
	Short: "Dependency tooling for Claude plugin marketplaces",
	Long: `Plugdep checks, scans, and lints dependencies of Claude plugins.

It reads the declared dependencies of installed plugins from each plugin's
.claude-plugin/extends-plugin.json manifest, verifies them against the hosts
installed plugins and system commands, discovers undeclared references by
scanning plugin content, and lints plugin documentation.`,
	PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
		if err := logger.SetLogLevel(viper.GetString("log_level")); err != nil {
			return err
		}
		logger.SetLogFormat(viper.GetString("log_format"))
		return nil
	},
	// Default behavior is to show help if no arguments are provided
	Run: func(cmd *cobra.Command, _ []string) {
		cmd.Help()
		os.Exit(1)
	},
}

// claudeRoot resolves the Claude configuration directory, preferring the
// --claude-dir flag (or PLUGDEP_CLAUDE_DIR) over the ~/.claude default.
func claudeRoot() (string, error) {
	if dir := viper.GetString("claude_dir"); dir != "" {
		return dir, nil
	}
	return registry.DefaultRoot()
}

// loadRegistry loads the host plugin registry from the Claude
// configuration directory.
func loadRegistry(ctx context.Context) (*registry.Registry, error) {
	root, err := claudeRoot()
	if err != nil {
		return nil, err
	}
	return registry.Load(ctx, root)
}

func main() {
	// Add global flags
	rootCmd.PersistentFlags().String("claude-dir", "", "Claude configuration directory (defaults to ~/.claude)")
	rootCmd.PersistentFlags().String("log-level", "warn", "Log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().String("log-format", "text", "Log format (text, json)")

	// Bind flags to viper
	viper.BindPFlag("claude_dir", rootCmd.PersistentFlags().Lookup("claude-dir"))
	viper.BindPFlag("log_level", rootCmd.PersistentFlags().Lookup("log-level"))
	viper.BindPFlag("log_format", rootCmd.PersistentFlags().Lookup("log-format"))

	// Add subcommands
	rootCmd.AddCommand(checkCmd)
	rootCmd.AddCommand(scanCmd)
	rootCmd.AddCommand(resolveCmd)
	rootCmd.AddCommand(renderCmd)
	rootCmd.AddCommand(lintCmd)
	rootCmd.AddCommand(versionCmd)

	// Execute
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}
