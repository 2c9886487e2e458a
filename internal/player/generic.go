package player

import (
	"context"

	"ytresolve/internal/media"
)

// Generic implements the Player interface for players like iina and celluloid
// that accept mpv-compatible arguments.
type Generic struct {
	name string
}

func (g *Generic) Name() string { return g.name }

func (g *Generic) Available() bool { return available(g.name) }

func (g *Generic) args(stream *media.Stream, title string) []string {
	return []string{stream.URL, "--force-media-title=" + title}
}

// Play launches the generic player.
func (g *Generic) Play(ctx context.Context, stream *media.Stream, title string) error {
	return run(ctx, g.name, g.args(stream, title))
}
