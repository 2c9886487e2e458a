package player

import (
	"context"

	"ytresolve/internal/media"
)

// VLC implements the Player interface for VLC media player.
type VLC struct{}

func (v *VLC) Name() string { return "vlc" }

func (v *VLC) Available() bool { return available("vlc") }

func (v *VLC) args(stream *media.Stream, title string) []string {
	return []string{
		stream.URL,
		"--meta-title", title,
		"--play-and-exit",
	}
}

// Play launches VLC on the stream.
func (v *VLC) Play(ctx context.Context, stream *media.Stream, title string) error {
	return run(ctx, "vlc", v.args(stream, title))
}
