package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"ytresolve/internal/history"
	"ytresolve/internal/media"
)

var flagHistoryLimit int

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List recent resolutions",
	Args:  cobra.NoArgs,
	RunE:  historyRun,
}

func init() {
	historyCmd.Flags().IntVarP(&flagHistoryLimit, "limit", "n", 20, "Number of entries to show")
}

func historyRun(cmd *cobra.Command, args []string) error {
	store, err := history.OpenDefault()
	if err != nil {
		return err
	}
	defer store.Close()

	entries, err := store.Recent(cmd.Context(), flagHistoryLimit)
	if err != nil {
		return fmt.Errorf("loading history: %w", err)
	}

	if len(entries) == 0 {
		fmt.Println("No history entries found.")
		return nil
	}

	for _, line := range history.FormatForDisplay(entries) {
		fmt.Println(line)
	}
	return nil
}

// recordHistory saves a resolution. Failures are logged, never returned.
func recordHistory(ctx context.Context, stream *media.Stream) {
	if cfg == nil || !cfg.History {
		return
	}

	store, err := history.OpenDefault()
	if err != nil {
		debugf("opening history failed: %v", err)
		return
	}
	defer store.Close()

	entry := media.HistoryEntry{
		VideoID:    stream.VideoID,
		Title:      stream.Title,
		Client:     stream.Client.String(),
		Itag:       stream.Itag,
		Bitrate:    stream.Bitrate,
		ResolvedAt: time.Now(),
	}
	if err := store.Record(context.WithoutCancel(ctx), entry); err != nil {
		debugf("saving history failed: %v", err)
	}
}
