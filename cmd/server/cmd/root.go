package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// options holds the flags shared by every subcommand.
type options struct {
	logLevel string
	port     string
}

func newRootCommand() *cobra.Command {
	opts := &options{}
	serve := newServeCommand(opts)

	root := &cobra.Command{
		Use:   "server",
		Short: "OurEvents API server",
		Long: `OurEvents API server: event listing, registration and administration over HTTP.

Configuration is read from environment variables (and a .env file outside production).`,
		SilenceUsage: true,
		// serve is the default when no subcommand is given
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve.RunE(cmd, args)
		},
	}
	root.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "log level (debug, info, warn, error); overrides LOG_LEVEL")
	root.Flags().StringVar(&opts.port, "port", "", "listen port; overrides PORT")

	root.AddCommand(serve)
	root.AddCommand(newSeedCommand(opts))
	return root
}

// Execute runs the root command and exits non-zero on failure.
func Execute() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
