package response

import (
	"errors"
	"fmt"
	"strings"
)

// ErrMalformedResponse matches every decoding failure with errors.Is.
var ErrMalformedResponse = errors.New("malformed player response")

// DecodeError locates a decoding failure within the document.
type DecodeError struct {
	Path string
	Err  error
}

func (e *DecodeError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("%v: %v", ErrMalformedResponse, e.Err)
	}
	return fmt.Sprintf("%v: %s: %v", ErrMalformedResponse, e.Path, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

func (e *DecodeError) Is(target error) bool { return target == ErrMalformedResponse }

// at prefixes the failure path with the member it occurred under.
func at(name string, err error) error {
	var de *DecodeError
	if !errors.As(err, &de) {
		return &DecodeError{Path: name, Err: err}
	}
	switch {
	case de.Path == "":
		return &DecodeError{Path: name, Err: de.Err}
	case strings.HasPrefix(de.Path, "["):
		return &DecodeError{Path: name + de.Path, Err: de.Err}
	default:
		return &DecodeError{Path: name + "." + de.Path, Err: de.Err}
	}
}

var formatFields = fields[Format]{
	"itag":             required(integer(func(f *Format) *int { return &f.Itag })),
	"url":              httpURL(func(f *Format) *string { return &f.URL }),
	"signatureCipher":  str(func(f *Format) *string { return &f.SignatureCipher }),
	"cipher":           str(func(f *Format) *string { return &f.SignatureCipher }), // legacy name; visited before signatureCipher
	"mimeType":         str(func(f *Format) *string { return &f.MimeType }),
	"bitrate":          integer(func(f *Format) *int { return &f.Bitrate }),
	"averageBitrate":   integer(func(f *Format) *int { return &f.AverageBitrate }),
	"qualityLabel":     str(func(f *Format) *string { return &f.QualityLabel }),
	"quality":          str(func(f *Format) *string { return &f.Quality }),
	"audioQuality":     str(func(f *Format) *string { return &f.AudioQuality }),
	"width":            integer(func(f *Format) *int { return &f.Width }),
	"height":           integer(func(f *Format) *int { return &f.Height }),
	"fps":              integer(func(f *Format) *int { return &f.FPS }),
	"audioChannels":    integer(func(f *Format) *int { return &f.AudioChannels }),
	"contentLength":    integer(func(f *Format) *int64 { return &f.ContentLength }),
	"approxDurationMs": integer(func(f *Format) *int64 { return &f.ApproxDurationMs }),
}

func progressiveFormat(raw []byte) (Format, error) {
	f, err := decodeWith(formatFields)(raw)
	f.Progressive = true
	return f, err
}

var streamingDataFields = fields[StreamingData]{
	"formats":          list(func(s *StreamingData) *[]Format { return &s.Formats }, progressiveFormat),
	"adaptiveFormats":  list(func(s *StreamingData) *[]Format { return &s.AdaptiveFormats }, decodeWith(formatFields)),
	"expiresInSeconds": integer(func(s *StreamingData) *int { return &s.ExpiresInSeconds }),
	"hlsManifestUrl":   str(func(s *StreamingData) *string { return &s.HLSManifestURL }),
	"dashManifestUrl":  str(func(s *StreamingData) *string { return &s.DASHManifestURL }),
}

var playabilityFields = fields[PlayabilityStatus]{
	"status":            required(str(func(p *PlayabilityStatus) *string { return &p.Status })),
	"reason":            str(func(p *PlayabilityStatus) *string { return &p.Reason }),
	"playableInEmbed":   boolean(func(p *PlayabilityStatus) *bool { return &p.PlayableInEmbed }),
	"liveStreamability": presence(func(p *PlayabilityStatus) *bool { return &p.Live }),
	"messages":          list(func(p *PlayabilityStatus) *[]string { return &p.Messages }, plainString),
	// errorScreen is visited before reason, so a top-level reason wins.
	"errorScreen": nested(fields[PlayabilityStatus]{
		"playerErrorMessageRenderer": nested(fields[PlayabilityStatus]{
			"reason":    text(func(p *PlayabilityStatus) *string { return &p.Reason }),
			"subreason": text(func(p *PlayabilityStatus) *string { return &p.Subreason }),
		}),
	}),
}

var videoDetailsFields = fields[VideoDetails]{
	"videoId":       str(func(v *VideoDetails) *string { return &v.VideoID }),
	"title":         str(func(v *VideoDetails) *string { return &v.Title }),
	"author":        str(func(v *VideoDetails) *string { return &v.Author }),
	"channelId":     str(func(v *VideoDetails) *string { return &v.ChannelID }),
	"lengthSeconds": integer(func(v *VideoDetails) *int { return &v.LengthSeconds }),
	"viewCount":     integer(func(v *VideoDetails) *int64 { return &v.ViewCount }),
	"isLiveContent": boolean(func(v *VideoDetails) *bool { return &v.IsLiveContent }),
	"isPrivate":     boolean(func(v *VideoDetails) *bool { return &v.IsPrivate }),
}

var playerConfigFields = fields[PlayerConfig]{
	"streamSelectionConfig": nested(fields[PlayerConfig]{
		"maxBitrate": integer(func(c *PlayerConfig) *int64 { return &c.MaxBitrate }),
	}),
}

var playerResponseFields = fields[PlayerResponse]{
	"playabilityStatus": required(embedded(func(p *PlayerResponse) *PlayabilityStatus { return &p.PlayabilityStatus }, playabilityFields)),
	"streamingData":     object(func(p *PlayerResponse) **StreamingData { return &p.StreamingData }, streamingDataFields),
	"videoDetails":      object(func(p *PlayerResponse) **VideoDetails { return &p.VideoDetails }, videoDetailsFields),
	"playerConfig":      object(func(p *PlayerResponse) **PlayerConfig { return &p.PlayerConfig }, playerConfigFields),
	"assets": nested(fields[PlayerResponse]{
		"js": str(func(p *PlayerResponse) *string { return &p.ScriptPath }),
	}),
	"jsUrl": str(func(p *PlayerResponse) *string { return &p.ScriptPath }),
}

func plainString(raw []byte) (string, error) {
	var s string
	err := unmarshal(raw, &s)
	return s, err
}

// Decode parses a player document. Members outside the schema never cause
// failure; a missing playabilityStatus, a format without itag, or a
// non-URL format url does.
func Decode(data []byte) (*PlayerResponse, error) {
	var p PlayerResponse
	extra, err := decodeObject(data, playerResponseFields, &p)
	if err != nil {
		return nil, err
	}
	p.Extra = extra
	return &p, nil
}
