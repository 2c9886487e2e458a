// Package signature recovers playable URLs from cipher-protected formats by
// replaying the player script's descramble transform.
package signature

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"ytresolve/internal/response"
)

// Fetcher retrieves the documents signature resolution depends on.
type Fetcher interface {
	EmbedPage(ctx context.Context, videoID string) ([]byte, error)
	Script(ctx context.Context, scriptURL string) ([]byte, error)
	AbsURL(ref string) (string, error)
}

// Source identifies where the player script for a video can be found.
type Source struct {
	VideoID    string
	ScriptPath string // from the player response; empty means discover via the embed page
}

// Resolver turns a selected format into a playable URL.
type Resolver struct {
	fetch  Fetcher
	logger *zap.Logger
}

// NewResolver returns a resolver that fetches through f.
func NewResolver(f Fetcher, logger *zap.Logger) *Resolver {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Resolver{fetch: f, logger: logger}
}

// Resolve returns f.URL unchanged when present. Otherwise the cipher is
// parsed, the player script fetched, and the descrambled signature appended
// to the cipher's base URL.
func (r *Resolver) Resolve(ctx context.Context, f response.Format, src Source) (string, error) {
	if f.URL != "" {
		return f.URL, nil
	}
	if f.SignatureCipher == "" {
		return "", &Error{Kind: CipherMalformed, Err: fmt.Errorf("itag %d has neither url nor signatureCipher", f.Itag)}
	}

	params, err := ParseCipher(f.SignatureCipher)
	if err != nil {
		return "", err
	}

	script, err := r.script(ctx, src)
	if err != nil {
		return "", err
	}

	t, err := ExtractTransform(script)
	if err != nil {
		return "", err
	}
	r.logger.Debug("signature transform", zap.Int("itag", f.Itag), zap.Stringer("ops", t))

	return params.SignedURL(t.Apply(params.S)), nil
}

func (r *Resolver) script(ctx context.Context, src Source) ([]byte, error) {
	path := src.ScriptPath
	if path == "" {
		page, err := r.fetch.EmbedPage(ctx, src.VideoID)
		if err != nil {
			return nil, &Error{Kind: PlayerScriptUnavailable, Err: fmt.Errorf("fetching embed page: %w", err)}
		}
		if path, err = FindScriptPath(page); err != nil {
			return nil, &Error{Kind: PlayerScriptUnavailable, Err: err}
		}
	}

	scriptURL, err := r.fetch.AbsURL(path)
	if err != nil {
		return nil, &Error{Kind: PlayerScriptUnavailable, Err: err}
	}
	r.logger.Debug("fetching player script", zap.String("url", scriptURL))

	script, err := r.fetch.Script(ctx, scriptURL)
	if err != nil {
		return nil, &Error{Kind: PlayerScriptUnavailable, Err: fmt.Errorf("fetching player script: %w", err)}
	}
	return script, nil
}
