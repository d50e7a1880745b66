package main

import (
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"cattle-auction-service/internal/config"
)

// version is set at build time with -ldflags "-X main.version=..."
var version = "dev"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var noConsole bool

	rootCmd := &cobra.Command{
		Use:           "auction-service",
		Short:         "Cattle lot auction server",
		Long:          "auction-service holds the authoritative state of a livestock lot auction, accepts bids from remote participants over WebSocket and keeps a durable snapshot of every lot.",
		SilenceUsage:  true,
		SilenceErrors: false,
		Args:          cobra.NoArgs,
		PreRun: func(_ *cobra.Command, _ []string) {
			if noConsole {
				viper.Set(config.AdminConsole, false)
			}
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd.Context())
		},
	}

	flags := rootCmd.Flags()
	flags.String("host", "", "interface to listen on (env HOST)")
	flags.String("port", "", "port to listen on (env PORT)")
	flags.String("store", "", "snapshot backend: file or postgres (env STORE_BACKEND)")
	flags.String("data-file", "", "snapshot file; a .toml suffix selects TOML (env DATA_FILE)")
	flags.String("log-level", "", "log level (env LOG_LEVEL)")
	flags.BoolVar(&noConsole, "no-console", false, "do not read admin commands from stdin")

	bindFlag(flags.Lookup("host"), config.Host)
	bindFlag(flags.Lookup("port"), config.Port)
	bindFlag(flags.Lookup("store"), config.StoreBackend)
	bindFlag(flags.Lookup("data-file"), config.DataFile)
	bindFlag(flags.Lookup("log-level"), config.LogLevel)

	rootCmd.AddCommand(newVersionCmd())
	return rootCmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, err := fmt.Fprintln(cmd.OutOrStdout(), version)
			return err
		},
	}
}

// bindFlag lets an explicitly set flag override the environment and .envrc.
// Unset flags keep their empty default out of viper.
func bindFlag(flag *pflag.Flag, key string) {
	if err := viper.BindPFlag(key, flag); err != nil {
		panic(fmt.Sprintf("bind flag %s: %v", flag.Name, err))
	}
}

func initLogging(cfg *config.Config) {
	// Set log level
	level, err := zerolog.ParseLevel(cfg.Logging.Level)
	if err != nil {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	// stdout belongs to the admin console when it is enabled
	out := os.Stdout
	if cfg.Admin.Console {
		out = os.Stderr
	}

	// Set log format
	if cfg.Logging.Format == "json" {
		// JSON format (default)
		log.Logger = zerolog.New(out).With().Timestamp().Logger()
	} else {
		// Console format for development
		output := zerolog.ConsoleWriter{Out: out, TimeFormat: time.RFC3339}
		log.Logger = zerolog.New(output).With().Timestamp().Logger()
	}

	// Set global logger
	zerolog.DefaultContextLogger = &log.Logger
}
