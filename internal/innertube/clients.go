package innertube

import "ytresolve/internal/media"

// descriptor is what the player endpoint is told about the calling client.
type descriptor struct {
	name       string
	id         int // X-Youtube-Client-Name
	version    string
	userAgent  string
	androidSDK int
}

const (
	webVersion             = "2.20250222.10.00"
	webEmbeddedVersion     = "1.20250219.01.00"
	androidVersion         = "20.10.38"
	androidEmbeddedVersion = "17.31.35"
)

var descriptors = map[media.ClientContext]descriptor{
	media.Web: {
		name:      "WEB",
		id:        1,
		version:   webVersion,
		userAgent: "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/133.0.0.0 Safari/537.36,gzip(gfe)",
	},
	media.WebEmbedded: {
		name:      "WEB_EMBEDDED_PLAYER",
		id:        56,
		version:   webEmbeddedVersion,
		userAgent: "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/133.0.0.0 Safari/537.36,gzip(gfe)",
	},
	media.Android: {
		name:       "ANDROID",
		id:         3,
		version:    androidVersion,
		userAgent:  "com.google.android.youtube/" + androidVersion + " (Linux; U; Android 11) gzip",
		androidSDK: 30,
	},
	media.AndroidEmbedded: {
		name:       "ANDROID_EMBEDDED_PLAYER",
		id:         55,
		version:    androidEmbeddedVersion,
		userAgent:  "com.google.android.youtube/" + androidEmbeddedVersion + " (Linux; U; Android 11) gzip",
		androidSDK: 30,
	},
}
