package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/vaughn-johnson/talkspace-public-api/internal/api"
	"github.com/vaughn-johnson/talkspace-public-api/internal/config"
	"github.com/vaughn-johnson/talkspace-public-api/internal/report"
)

var (
	version   = "dev"
	commit    = "none"
	buildDate = "unknown"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "talkspace-api",
		Short: "Engagement metrics over a therapy message history",
		Long: `talkspace-api groups a message history into conversational blocks and
reports per-block engagement metrics: length, questions, words,
readability, response time and pace. Results are computed once per day
and cached.`,
		SilenceUsage: true,
	}

	rootCmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print version info",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "talkspace-api %s (%s, %s)\n", version, commit, buildDate)
		},
	})

	rootCmd.AddCommand(&cobra.Command{
		Use:   "serve",
		Short: "Serve the engagement API over HTTP",
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve(cmd.Context())
		},
	})

	var format string
	runCmd := &cobra.Command{
		Use:   "run",
		Short: "Compute (or read) today's result and print it",
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := report.ParseFormat(format)
			if err != nil {
				return err
			}
			return runOnce(cmd.Context(), f, cmd.OutOrStdout())
		},
	}
	runCmd.Flags().StringVarP(&format, "format", "f", string(report.JSON), "Output format: json or csv")
	rootCmd.AddCommand(runCmd)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

func serve(ctx context.Context) error {
	cfg := config.Load()
	setupLogging(cfg.LogLevel)
	if err := cfg.Validate(); err != nil {
		slog.Error("invalid configuration", "error", err)
		return err
	}

	slog.Info("talkspace-api starting",
		"port", cfg.Port,
		"source", cfg.MessageSource,
		"cache", cfg.CacheBackend,
	)

	d, err := wire(ctx, cfg)
	if err != nil {
		slog.Error("startup failed", "error", err)
		return err
	}
	defer d.close()

	srv := api.NewServer(cfg.Port, d.service, slog.Default())
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	slog.Info("talkspace-api ready", "port", cfg.Port)

	select {
	case err := <-errCh:
		if err != nil {
			slog.Error("HTTP server error", "error", err)
		}
		return err
	case <-ctx.Done():
	}

	slog.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Warn("graceful shutdown failed", "error", err)
	}
	slog.Info("talkspace-api stopped")
	return nil
}

func runOnce(ctx context.Context, format report.Format, out io.Writer) error {
	cfg := config.Load()
	setupLogging(cfg.LogLevel)
	if err := cfg.Validate(); err != nil {
		return err
	}

	d, err := wire(ctx, cfg)
	if err != nil {
		return err
	}
	defer d.close()

	res, err := d.service.Daily(ctx)
	if err != nil {
		return err
	}
	slog.Info("daily result ready", "date", res.Date, "rows", len(res.Rows), "cached", res.Cached)

	body, err := report.Encode(format, res.Rows)
	if err != nil {
		return err
	}
	_, err = out.Write(body)
	return err
}

// setupLogging writes JSON logs to stderr so `run` can keep stdout for
// the result.
func setupLogging(level string) {
	var lvl slog.Level
	switch level {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	handler := slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: lvl})
	slog.SetDefault(slog.New(handler))
}
