// Package media defines shared types for the ytresolve application.
package media

import (
	"fmt"
	"strings"
	"time"
)

// ClientContext is the player client the request declares itself as.
// The platform serves different formats and cipher behaviour per client.
type ClientContext int

const (
	AndroidEmbedded ClientContext = iota
	Android
	Web
	WebEmbedded
)

func (c ClientContext) String() string {
	switch c {
	case Web:
		return "WEB"
	case WebEmbedded:
		return "WEB_EMBEDDED_PLAYER"
	case Android:
		return "ANDROID"
	case AndroidEmbedded:
		return "ANDROID_EMBEDDED_PLAYER"
	default:
		return "unknown"
	}
}

// Embedded reports whether the client is an embedded player, which cannot
// multiplex separate audio and video streams.
func (c ClientContext) Embedded() bool {
	return c == WebEmbedded || c == AndroidEmbedded
}

// ParseClientContext accepts wire names (ANDROID_EMBEDDED_PLAYER) and
// short aliases (android_embedded, embedded, web).
func ParseClientContext(s string) (ClientContext, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "android_embedded_player", "android_embedded", "android-embedded", "embedded", "":
		return AndroidEmbedded, nil
	case "android":
		return Android, nil
	case "web":
		return Web, nil
	case "web_embedded_player", "web_embedded", "web-embedded":
		return WebEmbedded, nil
	default:
		return 0, fmt.Errorf("unknown client context %q (valid: android_embedded, android, web, web_embedded)", s)
	}
}

// StreamRequest describes a single resolution call.
type StreamRequest struct {
	VideoID    string
	Client     ClientContext
	MaxBitrate int           // 0 means no cap
	Timeout    time.Duration // 0 means no per-call deadline
}

// Stream is a resolved, directly playable stream.
type Stream struct {
	URL          string        `json:"url"`
	VideoID      string        `json:"videoId"`
	Title        string        `json:"title,omitempty"`
	Author       string        `json:"author,omitempty"`
	Itag         int           `json:"itag"`
	MimeType     string        `json:"mimeType,omitempty"`
	Bitrate      int           `json:"bitrate"`
	QualityLabel string        `json:"qualityLabel,omitempty"`
	Progressive  bool          `json:"progressive"`
	Client       ClientContext `json:"-"`
}

// HistoryEntry is one recorded resolution.
type HistoryEntry struct {
	VideoID    string
	Title      string
	Client     string
	Itag       int
	Bitrate    int
	ResolvedAt time.Time
}
