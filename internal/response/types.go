// Package response models the subset of the player-response document that
// matters for playback, and decodes it from raw JSON.
package response

import "strings"

// Known playabilityStatus.status values.
const (
	StatusOK                = "OK"
	StatusError             = "ERROR"
	StatusLoginRequired     = "LOGIN_REQUIRED"
	StatusUnplayable        = "UNPLAYABLE"
	StatusLiveStreamOffline = "LIVE_STREAM_OFFLINE"
)

// PlayerResponse is a decoded player document.
type PlayerResponse struct {
	PlayabilityStatus PlayabilityStatus
	StreamingData     *StreamingData
	VideoDetails      *VideoDetails
	PlayerConfig      *PlayerConfig

	// ScriptPath is the player script location when the document carries
	// one (assets.js or jsUrl). Usually a root-relative path.
	ScriptPath string

	// Extra holds top-level members the schema does not model.
	Extra Document
}

// PlayabilityStatus is the platform's verdict on whether the video may be streamed.
type PlayabilityStatus struct {
	Status          string
	Reason          string
	Subreason       string
	PlayableInEmbed bool
	Live            bool
	Messages        []string
}

// StreamingData lists the stream variants on offer.
type StreamingData struct {
	Formats          []Format
	AdaptiveFormats  []Format
	ExpiresInSeconds int
	HLSManifestURL   string
	DASHManifestURL  string
}

// Empty reports whether neither format list has entries.
func (s *StreamingData) Empty() bool {
	return s == nil || (len(s.Formats) == 0 && len(s.AdaptiveFormats) == 0)
}

// Format is one stream variant. Exactly one of URL and SignatureCipher is
// expected; when both are present the URL is used.
type Format struct {
	Itag             int
	MimeType         string
	Bitrate          int
	AverageBitrate   int
	URL              string
	SignatureCipher  string
	QualityLabel     string
	Quality          string
	AudioQuality     string
	Width            int
	Height           int
	FPS              int
	AudioChannels    int
	ContentLength    int64
	ApproxDurationMs int64

	// Progressive is set for entries of the formats list (muxed audio and video).
	Progressive bool
}

// Ciphered reports whether the format needs signature resolution.
func (f Format) Ciphered() bool {
	return f.URL == "" && f.SignatureCipher != ""
}

// Usable reports whether the format carries any way to reach the media.
func (f Format) Usable() bool {
	return f.URL != "" || f.SignatureCipher != ""
}

// HasVideo reports whether the stream carries a video track.
func (f Format) HasVideo() bool {
	return strings.HasPrefix(f.MimeType, "video/")
}

// HasAudio reports whether the stream carries an audio track.
func (f Format) HasAudio() bool {
	return f.Progressive || strings.HasPrefix(f.MimeType, "audio/") || f.AudioChannels > 0
}

// Container returns the mime subtype, e.g. "mp4" for `video/mp4; codecs="..."`.
func (f Format) Container() string {
	mime, _, _ := strings.Cut(f.MimeType, ";")
	_, sub, ok := strings.Cut(strings.TrimSpace(mime), "/")
	if !ok {
		return ""
	}
	return sub
}

// VideoDetails is descriptive metadata about the video.
type VideoDetails struct {
	VideoID       string
	Title         string
	Author        string
	ChannelID     string
	LengthSeconds int
	ViewCount     int64
	IsLiveContent bool
	IsPrivate     bool
}

// PlayerConfig carries player hints relevant to stream selection.
type PlayerConfig struct {
	MaxBitrate int64
}
