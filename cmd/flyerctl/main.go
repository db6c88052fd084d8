package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/flyerdeck/flyerctl/internal/config"
)

var version = "dev"

var noColor bool

var rootCmd = &cobra.Command{
	Use:     "flyerctl",
	Short:   "Operator CLI for the flyer dashboard",
	Version: version,
	Long: `flyerctl drives the flyer dashboard from the terminal: upload event
flyers, review AI-extracted fields with their confidence levels, correct
them, generate promotional images, and schedule Instagram and WordPress
posts.

The dashboard API base URL comes from config (flyerctl config show).
Authenticate once with flyerctl login; the bearer token is kept in the
platform secret store.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		setupLogging()
	},
}

func setupLogging() {
	level := slog.LevelInfo
	if cfg, err := config.Load(); err == nil {
		switch strings.ToLower(cfg.Log.Level) {
		case "debug":
			level = slog.LevelDebug
		case "warn":
			level = slog.LevelWarn
		case "error":
			level = slog.LevelError
		}
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "disable colored output")

	rootCmd.AddCommand(loginCmd)
	rootCmd.AddCommand(logoutCmd)
	rootCmd.AddCommand(uploadCmd)
	rootCmd.AddCommand(flyersCmd)
	rootCmd.AddCommand(extractionCmd)
	rootCmd.AddCommand(generateCmd)
	rootCmd.AddCommand(instagramCmd)
	rootCmd.AddCommand(wordpressCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(mcpCmd)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "%s\n", colorize(colorRed, "✗ "+err.Error()))
		os.Exit(1)
	}
}
