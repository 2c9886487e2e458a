package player

import (
	"context"

	"ytresolve/internal/media"
)

// MPV implements the Player interface for mpv.
type MPV struct{}

func (m *MPV) Name() string { return "mpv" }

func (m *MPV) Available() bool { return available("mpv") }

func (m *MPV) args(stream *media.Stream, title string) []string {
	args := []string{
		stream.URL,
		"--force-media-title=" + title,
		"--really-quiet",
	}
	// Adaptive streams may be audio-only; open a window regardless.
	if !stream.Progressive {
		args = append(args, "--force-window=immediate")
	}
	return args
}

// Play launches mpv on the stream.
func (m *MPV) Play(ctx context.Context, stream *media.Stream, title string) error {
	return run(ctx, "mpv", m.args(stream, title))
}
