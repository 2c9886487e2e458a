package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"ytresolve/internal/player"
)

var flagPlayer string

var playCmd = &cobra.Command{
	Use:   "play <videoId>",
	Short: "Resolve a video and open it in a media player",
	Args:  cobra.ExactArgs(1),
	RunE:  playRun,
}

func init() {
	playCmd.Flags().StringVarP(&flagPlayer, "player", "p", "", "Media player: mpv | vlc | iina | celluloid")
}

func playRun(cmd *cobra.Command, args []string) error {
	name := cfg.Player
	if flagPlayer != "" {
		name = flagPlayer
	}

	p := player.New(name)
	if !p.Available() {
		return fmt.Errorf("player %q not found in PATH", p.Name())
	}

	stream, err := resolve(cmd.Context(), newExtractor(), args[0])
	if err != nil {
		return err
	}

	title := stream.Title
	if title == "" {
		title = stream.VideoID
	}
	debugf("playing %s with %s", title, p.Name())

	if err := p.Play(cmd.Context(), stream, title); err != nil {
		return fmt.Errorf("playback failed: %w", err)
	}
	return nil
}
