package cli

import (
	"fmt"
	"os"

	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/rustyeddy/riskcore/internal/cli/config"
)

func NewRootCmd() *cobra.Command {
	rc := &config.RootConfig{}

	cmd := &cobra.Command{
		Use:           "riskcore",
		Short:         "Riskcore — trading risk limits, events, and P&L tooling",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Global / persistent flags
	cmd.PersistentFlags().StringVar(&rc.ConfigPath, "config", "", "Path to config file (optional)")
	cmd.PersistentFlags().StringVar(&rc.DBPath, "db", "./riskcore.db", "SQLite journal database")
	cmd.PersistentFlags().StringVar(&rc.LogLevel, "log-level", "info", "Log level: debug|info|warn|error")
	cmd.PersistentFlags().BoolVar(&rc.NoColor, "no-color", false, "Disable colored output")

	cmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		// A missing .env is fine; flags and the environment still apply.
		_ = godotenv.Load()

		level, err := zerolog.ParseLevel(rc.LogLevel)
		if err != nil {
			return fmt.Errorf("invalid log level %q: %w", rc.LogLevel, err)
		}
		rc.Logger = zerolog.New(os.Stderr).Level(level).With().Timestamp().Logger()

		if rc.NoColor {
			text.DisableColors()
		}
		return nil
	}

	// Subcommands
	cmd.AddCommand(
		newEventsCmd(rc),
		newTradesCmd(rc),
		newPnLCmd(rc),
		newLimitsCmd(rc),
	)

	cmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Println("riskcore (dev)")
		},
	})

	return cmd
}

func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
