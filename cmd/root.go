// Package cmd implements the CLI commands using Cobra.
package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"ytresolve/internal/config"
	"ytresolve/internal/extract"
	"ytresolve/internal/innertube"
	"ytresolve/internal/media"
)

// Version is set at build time via ldflags.
var Version = "dev"

// Global flags
var (
	flagClient     string
	flagMaxBitrate int
	flagTimeout    time.Duration
	flagJSON       bool
	flagDebug      bool
)

// cfg holds the loaded configuration (merged: defaults < config file < flags).
var cfg *config.Config

var logger = zap.NewNop()

var rootCmd = &cobra.Command{
	Use:   "ytresolve [videoId]",
	Short: "Resolve a video id to a directly playable stream URL",
	Long: `ytresolve asks the platform's player API for a video, checks that it is
playable, picks a stream and unlocks its signature if needed, then prints the
resulting URL. Run without arguments in a terminal for the interactive prompt.`,
	Args:              cobra.MaximumNArgs(1),
	PersistentPreRunE: loadConfig,
	RunE:              resolveRun,
	SilenceErrors:     true,
	SilenceUsage:      true,
}

// Execute runs the root command. An interrupt cancels the running command.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	logger.Sync()

	if err == nil {
		return
	}
	if kind, ok := extract.KindOf(err); ok && kind == extract.Cancelled {
		os.Exit(130)
	}
	var f *extract.Failure
	if errors.As(err, &f) {
		fmt.Fprintln(os.Stderr, errorStyle.Render(extract.UserMessage(err)))
		debugf("failure: %v", err)
	} else {
		fmt.Fprintln(os.Stderr, errorStyle.Render("Error: "+err.Error()))
	}
	os.Exit(1)
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&flagClient, "client", "c", "", "Player client: android_embedded | android | web | web_embedded")
	rootCmd.PersistentFlags().IntVarP(&flagMaxBitrate, "max-bitrate", "b", 0, "Bitrate cap in bits/s (0 = no cap)")
	rootCmd.PersistentFlags().DurationVarP(&flagTimeout, "timeout", "t", 0, "Per-resolution timeout (default from config)")
	rootCmd.PersistentFlags().BoolVarP(&flagJSON, "json", "j", false, "Output stream metadata as JSON")
	rootCmd.PersistentFlags().BoolVarP(&flagDebug, "debug", "x", false, "Debug logging to stderr")

	rootCmd.AddCommand(playCmd)
	rootCmd.AddCommand(downloadCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(versionCmd)
}

// loadConfig loads and merges configuration: defaults < config file < CLI flags.
func loadConfig(cmd *cobra.Command, args []string) error {
	var err error
	cfg, err = config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	// CLI flags override config file values
	if flagClient != "" {
		cfg.Client = flagClient
	}
	if f := cmd.Flag("max-bitrate"); f != nil && f.Changed {
		cfg.MaxBitrate = flagMaxBitrate
	}
	if flagTimeout > 0 {
		cfg.Timeout = flagTimeout
	}
	if flagDebug {
		cfg.Debug = true
	}

	// Re-validate after flag overrides
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	logger = newLogger(cfg.Debug)
	return nil
}

func newLogger(debug bool) *zap.Logger {
	if !debug {
		return zap.NewNop()
	}
	encCfg := zap.NewDevelopmentEncoderConfig()
	encCfg.EncodeLevel = zapcore.CapitalColorLevelEncoder
	core := zapcore.NewCore(zapcore.NewConsoleEncoder(encCfg), zapcore.Lock(os.Stderr), zapcore.DebugLevel)
	return zap.New(core).Named("ytresolve")
}

// debugf logs a message if debug mode is enabled.
func debugf(format string, args ...interface{}) {
	logger.Sugar().Debugf(format, args...)
}

func newExtractor() *extract.YouTube {
	client := innertube.New(
		innertube.WithLocale(cfg.HL, cfg.GL),
		innertube.WithLogger(logger),
	)
	return extract.New(extract.WithTransport(client), extract.WithLogger(logger))
}

func streamRequest(videoID string) media.StreamRequest {
	return media.StreamRequest{
		VideoID:    videoID,
		Client:     cfg.ClientContext(),
		MaxBitrate: cfg.MaxBitrate,
		Timeout:    cfg.Timeout,
	}
}

// resolve runs one extraction and records it in history when enabled.
func resolve(ctx context.Context, ext extract.Extractor, videoID string) (*media.Stream, error) {
	debugf("resolving %s with client %s", videoID, cfg.ClientContext())
	stream, err := ext.Extract(ctx, streamRequest(videoID))
	if err != nil {
		return nil, err
	}
	debugf("stream URL: %s", stream.URL)
	recordHistory(ctx, stream)
	return stream, nil
}
