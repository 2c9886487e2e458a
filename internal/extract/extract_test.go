package extract

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ytresolve/internal/httputil"
	"ytresolve/internal/innertube"
	"ytresolve/internal/media"
)

const (
	scenarioDoc = `{"playabilityStatus":{"status":"OK"},"streamingData":{"adaptiveFormats":[{"itag":140,"bitrate":128000,"url":"https://cdn/a"}]}}`

	cipheredDoc = `{
  "playabilityStatus": {"status": "OK"},
  "videoDetails": {"videoId": "abc123", "title": "Clip", "author": "Someone"},
  "streamingData": {"formats": [
    {"itag": 18, "bitrate": 500000, "mimeType": "video/mp4", "qualityLabel": "360p",
     "signatureCipher": "s=ABCDEFGHIJ&sp=sig&url=https%3A%2F%2Fcdn.example%2Fvideoplayback%3Fitag%3D18"}
  ]}
}`

	embedPage = `<html><head><script src="/s/player/abcd1234/player_ias.vflset/en_US/base.js"></script></head></html>`

	playerScript = `var Xy={aB:function(a){a.reverse()},cD:function(a,b){a.splice(0,b)},eF:function(a,b){var c=a[0];a[0]=a[b%a.length];a[b%a.length]=c}};` +
		`Kq=function(a){a=a.split("");Xy.aB(a,1);Xy.eF(a,3);Xy.cD(a,2);return a.join("")};`
)

type fakePlatform struct {
	player      string
	status      int
	stallScript bool
	playerCalls atomic.Int32
	scriptCalls atomic.Int32
}

func (p *fakePlatform) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch r.URL.Path {
	case "/youtubei/v1/player":
		p.playerCalls.Add(1)
		if p.status != 0 {
			w.WriteHeader(p.status)
			return
		}
		io.WriteString(w, p.player)
	case "/embed/abc123":
		io.WriteString(w, embedPage)
	case "/s/player/abcd1234/player_ias.vflset/en_US/base.js":
		p.scriptCalls.Add(1)
		if p.stallScript {
			<-r.Context().Done()
			return
		}
		io.WriteString(w, playerScript)
	default:
		http.NotFound(w, r)
	}
}

func newExtractor(t *testing.T, p *fakePlatform) *YouTube {
	t.Helper()
	srv := httptest.NewTLSServer(p)
	t.Cleanup(srv.Close)
	return New(WithTransport(innertube.New(innertube.WithHTTPClient(srv.Client()), innertube.WithBaseURL(srv.URL))))
}

func requireFailure(t *testing.T, err error, kind Kind) *Failure {
	t.Helper()
	var f *Failure
	require.ErrorAs(t, err, &f)
	assert.Equal(t, kind, f.Kind, "failure: %v", err)
	return f
}

func TestResolveStreamURL(t *testing.T) {
	y := newExtractor(t, &fakePlatform{player: scenarioDoc})

	got, err := y.ResolveStreamURL(context.Background(), "abc123", media.AndroidEmbedded, 0)
	require.NoError(t, err)
	assert.Equal(t, "https://cdn/a", got)
}

func TestExtractLoginRequired(t *testing.T) {
	doc := `{"playabilityStatus":{"status":"LOGIN_REQUIRED","reason":"Sign in"},"streamingData":{"adaptiveFormats":[{"itag":140,"bitrate":128000,"url":"https://cdn/a"}]}}`
	y := newExtractor(t, &fakePlatform{player: doc})

	stream, err := y.Extract(context.Background(), media.StreamRequest{VideoID: "abc123"})
	assert.Nil(t, stream)
	f := requireFailure(t, err, LoginRequired)
	assert.Equal(t, StageEvaluate, f.Stage)
	assert.Equal(t, CategoryBlocked, f.Kind.Category())
}

func TestExtractBitrateCap(t *testing.T) {
	y := newExtractor(t, &fakePlatform{player: scenarioDoc})

	_, err := y.Extract(context.Background(), media.StreamRequest{VideoID: "abc123", MaxBitrate: 100000})
	f := requireFailure(t, err, NoSuitableFormat)
	assert.Equal(t, StageSelect, f.Stage)
}

func TestExtractNonOKNeverReturnsURL(t *testing.T) {
	tests := map[string]Kind{
		"LOGIN_REQUIRED":         LoginRequired,
		"UNPLAYABLE":             Unplayable,
		"LIVE_STREAM_OFFLINE":    LiveOffline,
		"ERROR":                  PlatformError,
		"CONTENT_CHECK_REQUIRED": UnknownStatus,
		"":                       UnknownStatus,
	}
	for status, want := range tests {
		t.Run(status, func(t *testing.T) {
			doc := fmt.Sprintf(`{"playabilityStatus":{"status":%q},"streamingData":{"formats":[{"itag":18,"bitrate":1,"url":"https://cdn/x"}]}}`, status)
			y := newExtractor(t, &fakePlatform{player: doc})

			got, err := y.ResolveStreamURL(context.Background(), "abc123", media.Web, 0)
			assert.Empty(t, got)
			f := requireFailure(t, err, want)
			assert.Equal(t, CategoryBlocked, f.Kind.Category())
		})
	}
}

func TestExtractOKReturnsValidURL(t *testing.T) {
	docs := []string{
		scenarioDoc,
		`{"playabilityStatus":{"status":"OK"},"streamingData":{"formats":[{"itag":18,"bitrate":500000,"url":"https://cdn.example/v?itag=18&expire=1"}]}}`,
		`{"playabilityStatus":{"status":"OK"},"streamingData":{"formats":[{"itag":22,"bitrate":2000000,"url":"https://cdn.example/22"}],"adaptiveFormats":[{"itag":251,"bitrate":130000,"url":"https://cdn.example/251"}]}}`,
	}
	for i, doc := range docs {
		t.Run(fmt.Sprint(i), func(t *testing.T) {
			y := newExtractor(t, &fakePlatform{player: doc})
			got, err := y.ResolveStreamURL(context.Background(), "abc123", media.AndroidEmbedded, 0)
			require.NoError(t, err)
			u, err := url.Parse(got)
			require.NoError(t, err)
			assert.NotEmpty(t, u.Scheme)
			assert.NotEmpty(t, u.Host)
		})
	}
}

func TestExtractPlatformCap(t *testing.T) {
	doc := `{"playabilityStatus":{"status":"OK"},"playerConfig":{"streamSelectionConfig":{"maxBitrate":"200000"}},` +
		`"streamingData":{"adaptiveFormats":[{"itag":251,"bitrate":160000,"url":"https://cdn/a251"},{"itag":137,"bitrate":4000000,"url":"https://cdn/v137"}]}}`
	y := newExtractor(t, &fakePlatform{player: doc})

	stream, err := y.Extract(context.Background(), media.StreamRequest{VideoID: "abc123", Client: media.Web})
	require.NoError(t, err)
	assert.Equal(t, 251, stream.Itag)

	stream, err = y.Extract(context.Background(), media.StreamRequest{VideoID: "abc123", Client: media.Web, MaxBitrate: 5000000})
	require.NoError(t, err)
	assert.Equal(t, 137, stream.Itag)
}

func TestExtractCiphered(t *testing.T) {
	p := &fakePlatform{player: cipheredDoc}
	y := newExtractor(t, p)

	stream, err := y.Extract(context.Background(), media.StreamRequest{VideoID: "abc123", Client: media.Web})
	require.NoError(t, err)
	assert.Equal(t, "https://cdn.example/videoplayback?itag=18&sig=HJFEDCBA", stream.URL)
	assert.Equal(t, 18, stream.Itag)
	assert.Equal(t, "Clip", stream.Title)
	assert.Equal(t, "Someone", stream.Author)
	assert.Equal(t, "360p", stream.QualityLabel)
	assert.True(t, stream.Progressive)
	assert.Equal(t, media.Web, stream.Client)
	assert.Equal(t, int32(1), p.playerCalls.Load())
	assert.Equal(t, int32(1), p.scriptCalls.Load())
}

func TestExtractTransportFailures(t *testing.T) {
	y := newExtractor(t, &fakePlatform{status: http.StatusTooManyRequests})
	_, err := y.Extract(context.Background(), media.StreamRequest{VideoID: "abc123"})
	f := requireFailure(t, err, HTTPStatus)
	assert.Equal(t, http.StatusTooManyRequests, f.StatusCode)
	assert.Equal(t, StageFetch, f.Stage)
	assert.Equal(t, CategoryTransport, f.Kind.Category())
}

func TestExtractMalformed(t *testing.T) {
	y := newExtractor(t, &fakePlatform{player: `{"streamingData":{}}`})
	_, err := y.Extract(context.Background(), media.StreamRequest{VideoID: "abc123"})
	f := requireFailure(t, err, MalformedResponse)
	assert.Equal(t, StageDecode, f.Stage)
}

func TestExtractOversizedResponse(t *testing.T) {
	huge := `{"playabilityStatus":{"status":"OK"},"pad":"` + strings.Repeat("x", httputil.MaxBodySize) + `"}`
	y := newExtractor(t, &fakePlatform{player: huge})

	_, err := y.Extract(context.Background(), media.StreamRequest{VideoID: "abc123"})
	f := requireFailure(t, err, MalformedResponse)
	assert.Equal(t, StageFetch, f.Stage)
	assert.ErrorIs(t, err, httputil.ErrBodyTooLarge)
}

func TestExtractResolveFailure(t *testing.T) {
	doc := `{"playabilityStatus":{"status":"OK"},"streamingData":{"formats":[{"itag":18,"bitrate":1,"signatureCipher":"sp=sig"}]}}`
	y := newExtractor(t, &fakePlatform{player: doc})
	_, err := y.Extract(context.Background(), media.StreamRequest{VideoID: "abc123"})
	f := requireFailure(t, err, CipherMalformed)
	assert.Equal(t, StageResolve, f.Stage)
	assert.Equal(t, CategoryResolve, f.Kind.Category())
}

func TestExtractInvalidRequest(t *testing.T) {
	p := &fakePlatform{player: scenarioDoc}
	y := newExtractor(t, p)

	for _, req := range []media.StreamRequest{
		{VideoID: ""},
		{VideoID: "abc&list=x"},
		{VideoID: "abc123", MaxBitrate: -1},
	} {
		_, err := y.Extract(context.Background(), req)
		requireFailure(t, err, InvalidRequest)
	}
	assert.Zero(t, p.playerCalls.Load())
}

func TestExtractTimeout(t *testing.T) {
	srv := httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer srv.Close()
	y := New(WithTransport(innertube.New(innertube.WithHTTPClient(srv.Client()), innertube.WithBaseURL(srv.URL))))

	_, err := y.Extract(context.Background(), media.StreamRequest{VideoID: "abc123", Timeout: 50 * time.Millisecond})
	requireFailure(t, err, Timeout)
}

func TestExtractTimeoutFetchingScript(t *testing.T) {
	p := &fakePlatform{player: cipheredDoc, stallScript: true}
	y := newExtractor(t, p)

	_, err := y.Extract(context.Background(), media.StreamRequest{VideoID: "abc123", Timeout: 200 * time.Millisecond})
	f := requireFailure(t, err, Timeout)
	assert.Equal(t, StageResolve, f.Stage)
	assert.Equal(t, CategoryTransport, f.Kind.Category())
	assert.Equal(t, "The request timed out. Try again.", UserMessage(err))
	assert.Equal(t, int32(1), p.scriptCalls.Load())
}

// trackedBody blocks until the request is cancelled and records Close.
type trackedBody struct {
	ctx    context.Context
	closed atomic.Bool
}

func (b *trackedBody) Read([]byte) (int, error) {
	<-b.ctx.Done()
	return 0, b.ctx.Err()
}

func (b *trackedBody) Close() error {
	b.closed.Store(true)
	return nil
}

type trackingTransport struct {
	calls   atomic.Int32
	body    *trackedBody
	started chan struct{}
}

func (t *trackingTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	t.calls.Add(1)
	t.body = &trackedBody{ctx: req.Context()}
	close(t.started)
	return &http.Response{StatusCode: http.StatusOK, Header: http.Header{}, Body: t.body, Request: req}, nil
}

func TestExtractCancelledMidFlight(t *testing.T) {
	tr := &trackingTransport{started: make(chan struct{})}
	y := New(WithTransport(innertube.New(
		innertube.WithHTTPClient(&http.Client{Transport: tr}),
		innertube.WithBaseURL("https://innertube.test"),
	)))

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		<-tr.started
		cancel()
	}()

	done := make(chan error, 1)
	go func() {
		_, err := y.Extract(ctx, media.StreamRequest{VideoID: "abc123"})
		done <- err
	}()

	select {
	case err := <-done:
		f := requireFailure(t, err, Cancelled)
		assert.Equal(t, CategoryCancelled, f.Kind.Category())
		assert.True(t, errors.Is(err, context.Canceled))
	case <-time.After(5 * time.Second):
		t.Fatal("Extract did not return after cancellation")
	}
	assert.Equal(t, int32(1), tr.calls.Load())
	assert.True(t, tr.body.closed.Load(), "response body leaked")
}

func TestExtractConcurrentCalls(t *testing.T) {
	p := &fakePlatform{player: scenarioDoc}
	y := newExtractor(t, p)

	const n = 8
	errs := make(chan error, n)
	for range n {
		go func() {
			_, err := y.ResolveStreamURL(context.Background(), "abc123", media.AndroidEmbedded, 0)
			errs <- err
		}()
	}
	for range n {
		assert.NoError(t, <-errs)
	}
	assert.Equal(t, int32(n), p.playerCalls.Load())
}
