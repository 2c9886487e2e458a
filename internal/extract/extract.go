// Package extract resolves a video id into a playable stream URL by running
// the player pipeline: fetch, decode, evaluate playability, select a format,
// and resolve its signature.
package extract

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"ytresolve/internal/format"
	"ytresolve/internal/httputil"
	"ytresolve/internal/innertube"
	"ytresolve/internal/media"
	"ytresolve/internal/playability"
	"ytresolve/internal/response"
	"ytresolve/internal/signature"
)

// Extractor resolves video ids into playable streams.
type Extractor interface {
	Extract(ctx context.Context, req media.StreamRequest) (*media.Stream, error)
}

// YouTube is the Extractor for the platform's player API. It holds no
// per-call state and is safe for concurrent use.
type YouTube struct {
	client   *innertube.Client
	resolver *signature.Resolver
	logger   *zap.Logger
}

// Option configures a YouTube extractor.
type Option func(*YouTube)

// WithTransport sets the innertube client used for every request.
func WithTransport(c *innertube.Client) Option {
	return func(y *YouTube) { y.client = c }
}

// WithLogger sets the debug logger.
func WithLogger(l *zap.Logger) Option {
	return func(y *YouTube) { y.logger = l }
}

// New returns the YouTube extractor.
func New(opts ...Option) *YouTube {
	y := &YouTube{logger: zap.NewNop()}
	for _, opt := range opts {
		opt(y)
	}
	if y.client == nil {
		y.client = innertube.New(innertube.WithLogger(y.logger))
	}
	y.resolver = signature.NewResolver(y.client, y.logger)
	return y
}

// Extract runs the pipeline for req. Any failure is a *Failure naming the
// stage and kind; no partial result is returned.
func (y *YouTube) Extract(ctx context.Context, req media.StreamRequest) (*media.Stream, error) {
	if err := httputil.ValidateVideoID(req.VideoID); err != nil {
		return nil, &Failure{Stage: StageRequest, Kind: InvalidRequest, Err: err}
	}
	if req.MaxBitrate < 0 {
		return nil, &Failure{Stage: StageRequest, Kind: InvalidRequest, Err: fmt.Errorf("negative max bitrate %d", req.MaxBitrate)}
	}

	if req.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, req.Timeout)
		defer cancel()
	}

	log := y.logger.With(zap.String("video", req.VideoID), zap.Stringer("client", req.Client))

	raw, err := y.client.Player(ctx, req.VideoID, req.Client)
	if err != nil {
		return nil, fail(ctx, StageFetch, err)
	}

	pr, err := response.Decode(raw)
	if err != nil {
		return nil, fail(ctx, StageDecode, err)
	}
	if len(pr.Extra) > 0 {
		log.Debug("unmodelled members", zap.Strings("keys", pr.Extra.Keys()))
	}

	sd, err := playability.Evaluate(pr)
	if err != nil {
		return nil, fail(ctx, StageEvaluate, err)
	}

	policy := format.Policy{Client: req.Client, MaxBitrate: req.MaxBitrate}
	if pc := pr.PlayerConfig; pc != nil {
		policy.PlatformCap = pc.MaxBitrate
	}
	f, err := format.Select(sd, policy)
	if err != nil {
		return nil, fail(ctx, StageSelect, fmt.Errorf("%d candidates under cap %d: %w",
			len(format.Candidates(sd, 0)), req.MaxBitrate, err))
	}
	log.Debug("selected format",
		zap.Int("itag", f.Itag),
		zap.Int("bitrate", f.Bitrate),
		zap.Bool("progressive", f.Progressive),
		zap.Bool("ciphered", f.Ciphered()))

	url, err := y.resolver.Resolve(ctx, f, signature.Source{VideoID: req.VideoID, ScriptPath: pr.ScriptPath})
	if err != nil {
		return nil, fail(ctx, StageResolve, err)
	}

	stream := &media.Stream{
		URL:          url,
		VideoID:      req.VideoID,
		Itag:         f.Itag,
		MimeType:     f.MimeType,
		Bitrate:      f.Bitrate,
		QualityLabel: f.QualityLabel,
		Progressive:  f.Progressive,
		Client:       req.Client,
	}
	if vd := pr.VideoDetails; vd != nil {
		stream.Title = vd.Title
		stream.Author = vd.Author
	}
	return stream, nil
}

// ResolveStreamURL is Extract reduced to the playable URL.
func (y *YouTube) ResolveStreamURL(ctx context.Context, videoID string, client media.ClientContext, maxBitrate int) (string, error) {
	s, err := y.Extract(ctx, media.StreamRequest{VideoID: videoID, Client: client, MaxBitrate: maxBitrate})
	if err != nil {
		return "", err
	}
	return s.URL, nil
}
