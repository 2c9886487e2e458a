package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"ytresolve/internal/media"
	"ytresolve/internal/ui"
)

var (
	labelStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	titleStyle = lipgloss.NewStyle().Bold(true)
	errorStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
)

// resolveRun is the default command: ytresolve <videoId>
func resolveRun(cmd *cobra.Command, args []string) error {
	ext := newExtractor()

	if len(args) == 0 {
		if !interactive() {
			return fmt.Errorf("no video id provided")
		}
		streams, err := ui.Run(func(ctx context.Context, videoID string) (*media.Stream, error) {
			return resolve(ctx, ext, videoID)
		})
		if err != nil {
			return err
		}
		debugf("resolved %d streams interactively", len(streams))
		return nil
	}

	stream, err := resolve(cmd.Context(), ext, args[0])
	if err != nil {
		return err
	}
	return printStream(os.Stdout, stream, flagJSON)
}

func interactive() bool {
	return term.IsTerminal(int(os.Stdin.Fd())) && term.IsTerminal(int(os.Stdout.Fd()))
}

// printStream writes the URL alone to w so it can be piped; metadata goes to
// stderr unless JSON output was requested.
func printStream(w io.Writer, stream *media.Stream, asJSON bool) error {
	if asJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(stream)
	}

	if stream.Title != "" {
		fmt.Fprintln(os.Stderr, titleStyle.Render(stream.Title))
	}
	quality := stream.QualityLabel
	if quality == "" {
		quality = "audio"
	}
	fmt.Fprintln(os.Stderr, labelStyle.Render(fmt.Sprintf("itag %d  %s  %d bps  %s", stream.Itag, quality, stream.Bitrate, stream.Client)))
	_, err := fmt.Fprintln(w, stream.URL)
	return err
}
