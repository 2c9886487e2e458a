// Package format picks the stream variant to play for a client context.
package format

import (
	"errors"
	"slices"

	"ytresolve/internal/media"
	"ytresolve/internal/response"
)

// ErrNoSuitableFormat means the video is playable but no variant fits the policy.
var ErrNoSuitableFormat = errors.New("no suitable format")

// Policy constrains selection.
type Policy struct {
	Client     media.ClientContext
	MaxBitrate int // 0 means no cap

	// PlatformCap is the response's streamSelectionConfig.maxBitrate. It
	// applies only when MaxBitrate is 0 and is dropped if nothing fits it.
	PlatformCap int64
}

// Select returns the best format from sd under p. Embedded clients only take
// an adaptive stream when no progressive one survives filtering. Among the
// remaining candidates the highest bitrate wins; equal bitrates go to the
// lowest itag.
func Select(sd *response.StreamingData, p Policy) (response.Format, error) {
	if sd == nil {
		return response.Format{}, ErrNoSuitableFormat
	}
	if p.MaxBitrate == 0 && p.PlatformCap > 0 {
		if f, err := Select(sd, Policy{Client: p.Client, MaxBitrate: int(p.PlatformCap)}); err == nil {
			return f, nil
		}
	}

	pool := Candidates(sd, p.MaxBitrate)
	if p.Client.Embedded() {
		if progressive := slices.DeleteFunc(slices.Clone(pool), func(f response.Format) bool {
			return !f.Progressive
		}); len(progressive) > 0 {
			pool = progressive
		}
	}

	if len(pool) == 0 {
		return response.Format{}, ErrNoSuitableFormat
	}
	return slices.MinFunc(pool, rank), nil
}

// Candidates returns formats and adaptiveFormats, in that order, that carry
// a URL or cipher and do not exceed maxBitrate.
func Candidates(sd *response.StreamingData, maxBitrate int) []response.Format {
	pool := make([]response.Format, 0, len(sd.Formats)+len(sd.AdaptiveFormats))
	for _, f := range slices.Concat(sd.Formats, sd.AdaptiveFormats) {
		if !f.Usable() {
			continue
		}
		if maxBitrate > 0 && f.Bitrate > maxBitrate {
			continue
		}
		pool = append(pool, f)
	}
	return pool
}

// rank orders better formats first.
func rank(a, b response.Format) int {
	if a.Bitrate != b.Bitrate {
		if a.Bitrate > b.Bitrate {
			return -1
		}
		return 1
	}
	return a.Itag - b.Itag
}
