package main

import (
	"errors"
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"runlog/internal/config"
	"runlog/internal/logging"
)

var (
	configPath string
	logLevel   string

	cfg    *config.Config
	logger *log.Logger

	// noConfigFile is set when settings came from the environment only
	noConfigFile bool
)

var rootCmd = &cobra.Command{
	Use:   "runlog",
	Short: "Strava training log with weekly views and race-prep blocks",
	Long: `runlog pulls your activities from Strava into a local SQLite database and
serves weekly mileage views and training blocks over HTTP, in the terminal
and to AI assistants.

QUICK START:

  $ runlog auth login     # Connect your Strava account
  $ runlog sync           # Pull recent activities
  $ runlog serve          # Start the API on localhost:3000
  $ runlog tui            # Open the dashboard (in another terminal)

CONFIGURATION:

  Settings are read from ~/.runlog/config.json and can be overridden with
  environment variables such as STRAVA_CLIENT_ID, STRAVA_CLIENT_SECRET,
  RUNLOG_HTTP_ADDR, RUNLOG_API_URL, RUNLOG_DB_PATH and RUNLOG_LOG_LEVEL.
  Create API credentials at https://www.strava.com/settings/api.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if cmd.Name() == "help" || cmd.Name() == "version" {
			return nil
		}

		var err error
		cfg, err = loadConfig(configPath)
		if err != nil {
			return err
		}
		if logLevel != "" {
			cfg.Log.Level = logLevel
		}
		if err := cfg.Validate(); err != nil {
			return fmt.Errorf("invalid configuration: %w", err)
		}

		logger, err = logging.New(cfg.Log)
		if err != nil {
			return fmt.Errorf("setting up logging: %w", err)
		}
		return nil
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintln(cmd.OutOrStdout(), "runlog", version)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "config file (default ~/.runlog/config.json)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "override log.level (debug, info, warn, error)")
	rootCmd.AddCommand(versionCmd)
}

// loadConfig reads path, or the default file when path is empty. Without a
// default file the environment alone is used.
func loadConfig(path string) (*config.Config, error) {
	noConfigFile = false
	if path != "" {
		c, err := config.LoadFile(path)
		if err != nil {
			return nil, fmt.Errorf("loading config %s: %w", path, err)
		}
		return c, nil
	}

	c, err := config.Load()
	if errors.Is(err, config.ErrNoConfig) {
		noConfigFile = true
		return config.FromEnv()
	}
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	return c, nil
}

// requireStrava fails when Strava credentials are missing, leaving an
// example config behind if there was none.
func requireStrava() error {
	err := cfg.ValidateStrava()
	if err == nil {
		return nil
	}
	if noConfigFile && configPath == "" {
		if cerr := config.CreateExample(); cerr == nil {
			dir, _ := config.GetConfigDir()
			color.Yellow("Created an example config at %s/config.json", dir)
			fmt.Println("Add your Strava API credentials there or set STRAVA_CLIENT_ID and STRAVA_CLIENT_SECRET.")
		}
	}
	return err
}
