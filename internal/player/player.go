// Package player launches external media players on resolved streams.
// All invocations use exec.CommandContext with explicit argument slices,
// so nothing passes through a shell.
package player

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"

	"ytresolve/internal/media"
)

// Player is the interface for media player implementations.
type Player interface {
	// Play blocks until the player exits or ctx is cancelled.
	Play(ctx context.Context, stream *media.Stream, title string) error

	// Name returns the player name.
	Name() string

	// Available checks if the player binary exists in PATH.
	Available() bool
}

// New creates a player by name.
func New(name string) Player {
	switch name {
	case "mpv":
		return &MPV{}
	case "vlc":
		return &VLC{}
	case "iina", "celluloid":
		return &Generic{name: name}
	default:
		return &MPV{}
	}
}

func available(name string) bool {
	_, err := exec.LookPath(name)
	return err == nil
}

// run starts the player attached to the terminal. A non-zero exit is how
// most players report the user closing the window, so it is not an error.
func run(ctx context.Context, name string, args []string) error {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	cmd.Stdin = os.Stdin

	if err := cmd.Run(); err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) && ctx.Err() == nil {
			return nil
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return fmt.Errorf("running %s: %w", name, err)
	}
	return nil
}
