// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the release-resolver CLI.
// See docs/ARCHITECTURE § Pipeline Interface, § Project Structure.
package main

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/release-resolver/internal/secrets"
)

// version is set at build time via ldflags.
var version = "dev"

var (
	// logger is configured from --log-level and --log-json before any
	// subcommand runs.
	logger = zerolog.New(os.Stderr).With().Timestamp().Logger()

	// loadedSecrets holds credentials loaded from .secrets/ at startup.
	loadedSecrets = secrets.Secrets{}
)

// rootCmd is the base command for the release-resolver CLI.
var rootCmd = &cobra.Command{
	Use:   "release-resolver",
	Short: "Resolve news-feed rows to official press release timestamps",
	Long: `release-resolver finds the publisher page for each (ticker, date, headline)
row of a news feed and records the release's official publication timestamp.

Candidates come from a ranked chain of search providers (Google Custom Search
when credentials are configured, Brave, DuckDuckGo, and the publisher's own
site search). A candidate is accepted only when its heading matches the
headline exactly and its timestamp is within two days of the feed date.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := setupLogger(cmd); err != nil {
			return err
		}

		if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
			logger.Warn().Err(err).Msg("could not read .env")
		}

		s, err := secrets.Load(".secrets/", logger)
		if err != nil {
			return err
		}
		loadedSecrets = s
		if len(s) > 0 {
			logger.Debug().Strs("keys", s.Keys()).Msg("loaded secrets")
		}
		return nil
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./release-resolver.yaml or ~/.config/release-resolver/config.yaml)")
	rootCmd.PersistentFlags().String("log-level", "info", "log level: debug, info, warn, error")
	rootCmd.PersistentFlags().Bool("log-json", false, "write logs as JSON instead of console text")
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("release-resolver")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "release-resolver"))
		}
	}

	viper.SetEnvPrefix("RELEASE_RESOLVER")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()
	bindEnv()
	setDefaults()

	if err := viper.ReadInConfig(); err == nil {
		logger.Info().Str("file", viper.ConfigFileUsed()).Msg("using config file")
	}
}

func setupLogger(cmd *cobra.Command) error {
	levelName, _ := cmd.Flags().GetString("log-level")
	level, err := zerolog.ParseLevel(levelName)
	if err != nil {
		return err
	}
	asJSON, _ := cmd.Flags().GetBool("log-json")

	if asJSON {
		logger = zerolog.New(os.Stderr).Level(level).With().Timestamp().Logger()
	} else {
		out := zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.TimeOnly}
		logger = zerolog.New(out).Level(level).With().Timestamp().Logger()
	}
	return nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
