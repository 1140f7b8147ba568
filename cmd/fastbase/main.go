package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"fasttrack/internal/bootstrap"
	"fasttrack/internal/platform/config"
	"fasttrack/internal/platform/logging"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "fastbase",
		Short:         "Records service for fasttrack clients",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newServeCmd())
	return root
}

func newServeCmd() *cobra.Command {
	var port, dbPath, logFormat string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the records API",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := config.LoadServer()
			if cmd.Flags().Changed("port") {
				cfg.Port = port
			}
			if cmd.Flags().Changed("db") {
				cfg.DatabasePath = dbPath
			}
			logger := logging.New(cmd.OutOrStdout(), cfg.LogLevel, logFormat)

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			srv, err := bootstrap.NewServer(ctx, cfg, logger)
			if err != nil {
				return err
			}
			return srv.Serve(ctx)
		},
	}
	cmd.Flags().StringVar(&port, "port", "8090", "listen port (overrides FASTBASE_PORT)")
	cmd.Flags().StringVar(&dbPath, "db", "fastbase.db", "sqlite database path (overrides FASTBASE_DATABASE_PATH)")
	cmd.Flags().StringVar(&logFormat, "log-format", "json", "text|json")
	return cmd
}
