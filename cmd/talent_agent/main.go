// Package main provides the entry point for the talent matcher API server,
// its extraction worker and operator tooling.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/jonathan/talent-matcher/internal/config"
	"github.com/jonathan/talent-matcher/internal/lifecycle"
	"github.com/jonathan/talent-matcher/internal/logging"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

var configFile string

var rootCmd = &cobra.Command{
	Use:          "talent_agent",
	Short:        "Talent Matcher HTTP API Server",
	Long:         "Talent Matcher stores job descriptions and candidates, extracts structured summaries in the background and scores candidates against jobs via REST API.",
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "Path to an optional YAML or JSON config file")
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// flagBinding maps a command flag onto a config key.
type flagBinding struct {
	key  string
	flag string
}

// loadConfig reads defaults, the environment, the config file and any
// explicitly set flags, in increasing order of precedence.
func loadConfig(flags *pflag.FlagSet, bindings ...flagBinding) (*config.Config, error) {
	v := config.New()
	if err := bindFlags(v, flags, bindings); err != nil {
		return nil, err
	}
	cfg, err := config.Load(v, configFile)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func bindFlags(v *viper.Viper, flags *pflag.FlagSet, bindings []flagBinding) error {
	for _, b := range bindings {
		f := flags.Lookup(b.flag)
		if f == nil {
			return fmt.Errorf("unknown flag %q", b.flag)
		}
		if err := v.BindPFlag(b.key, f); err != nil {
			return fmt.Errorf("failed to bind flag %s: %w", b.flag, err)
		}
	}
	return nil
}

func newLogger(cfg *config.Config) (*zap.Logger, error) {
	log, err := logging.New(cfg.LogJSON, cfg.LogDebug)
	if err != nil {
		return nil, fmt.Errorf("failed to build logger: %w", err)
	}
	return log, nil
}

func newMachine(cfg *config.Config) *lifecycle.Machine {
	return lifecycle.New(cfg.ShortlistThreshold, lifecycle.AutoShortlist(cfg.AutoShortlist))
}
