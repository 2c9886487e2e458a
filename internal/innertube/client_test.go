package innertube

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ytresolve/internal/media"
)

func newTestClient(t *testing.T, h http.HandlerFunc) (*Client, *httptest.Server) {
	t.Helper()
	srv := httptest.NewTLSServer(h)
	t.Cleanup(srv.Close)
	return New(WithHTTPClient(srv.Client()), WithBaseURL(srv.URL)), srv
}

func TestPlayerRequest(t *testing.T) {
	tests := []struct {
		client      media.ClientContext
		wantName    string
		wantID      string
		wantSDK     float64
		wantEmbed   bool
		wantUAStart string
	}{
		{media.AndroidEmbedded, "ANDROID_EMBEDDED_PLAYER", "55", 30, true, "com.google.android.youtube/"},
		{media.Android, "ANDROID", "3", 30, false, "com.google.android.youtube/"},
		{media.Web, "WEB", "1", 0, false, "Mozilla/5.0"},
		{media.WebEmbedded, "WEB_EMBEDDED_PLAYER", "56", 0, true, "Mozilla/5.0"},
	}

	for _, tt := range tests {
		t.Run(tt.wantName, func(t *testing.T) {
			var (
				gotReq  *http.Request
				gotBody map[string]any
			)
			c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				gotReq = r
				assert.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
				io.WriteString(w, `{"playabilityStatus":{"status":"OK"}}`)
			})

			body, err := c.Player(context.Background(), "abc123", tt.client)
			require.NoError(t, err)
			assert.JSONEq(t, `{"playabilityStatus":{"status":"OK"}}`, string(body))

			assert.Equal(t, http.MethodPost, gotReq.Method)
			assert.Equal(t, "/youtubei/v1/player", gotReq.URL.Path)
			assert.Equal(t, "false", gotReq.URL.Query().Get("prettyPrint"))
			assert.Equal(t, "application/json", gotReq.Header.Get("Content-Type"))
			assert.Equal(t, tt.wantID, gotReq.Header.Get("X-Youtube-Client-Name"))
			assert.NotEmpty(t, gotReq.Header.Get("X-Youtube-Client-Version"))
			assert.Contains(t, gotReq.Header.Get("User-Agent"), tt.wantUAStart)

			assert.Equal(t, "abc123", gotBody["videoId"])
			assert.Equal(t, true, gotBody["contentCheckOk"])
			assert.Equal(t, true, gotBody["racyCheckOk"])

			ctxObj := gotBody["context"].(map[string]any)
			client := ctxObj["client"].(map[string]any)
			assert.Equal(t, tt.wantName, client["clientName"])
			assert.Equal(t, "en", client["hl"])
			assert.Equal(t, "US", client["gl"])
			if tt.wantSDK > 0 {
				assert.Equal(t, tt.wantSDK, client["androidSdkVersion"])
			} else {
				assert.NotContains(t, client, "androidSdkVersion")
			}

			if tt.wantEmbed {
				assert.Equal(t, map[string]any{"embedUrl": "https://www.youtube.com/embed/abc123"}, ctxObj["thirdParty"])
			} else {
				assert.NotContains(t, ctxObj, "thirdParty")
			}
		})
	}
}

func TestPlayerLocale(t *testing.T) {
	var gotBody struct {
		Context struct {
			Client struct {
				Hl string `json:"hl"`
				Gl string `json:"gl"`
			} `json:"client"`
		} `json:"context"`
	}
	srv := httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewDecoder(r.Body).Decode(&gotBody)
		io.WriteString(w, "{}")
	}))
	defer srv.Close()

	c := New(WithHTTPClient(srv.Client()), WithBaseURL(srv.URL), WithLocale("de", "DE"))
	_, err := c.Player(context.Background(), "abc123", media.Web)
	require.NoError(t, err)
	assert.Equal(t, "de", gotBody.Context.Client.Hl)
	assert.Equal(t, "DE", gotBody.Context.Client.Gl)
}

func TestPlayerHTTPStatus(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusForbidden)
	})

	_, err := c.Player(context.Background(), "abc123", media.AndroidEmbedded)
	var te *Error
	require.ErrorAs(t, err, &te)
	assert.Equal(t, HTTPStatus, te.Kind)
	assert.Equal(t, http.StatusForbidden, te.StatusCode)
}

func TestPlayerNetworkUnavailable(t *testing.T) {
	srv := httptest.NewTLSServer(http.NotFoundHandler())
	c := New(WithHTTPClient(srv.Client()), WithBaseURL(srv.URL))
	srv.Close()

	_, err := c.Player(context.Background(), "abc123", media.AndroidEmbedded)
	var te *Error
	require.ErrorAs(t, err, &te)
	assert.Equal(t, NetworkUnavailable, te.Kind)
}

func TestPlayerTimeout(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	})

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := c.Player(ctx, "abc123", media.AndroidEmbedded)
	var te *Error
	require.ErrorAs(t, err, &te)
	assert.Equal(t, Timeout, te.Kind)
}

func TestPlayerCancelledBeforeResponse(t *testing.T) {
	arrived := make(chan struct{})
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		close(arrived)
		<-r.Context().Done()
	})

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		<-arrived
		cancel()
	}()

	_, err := c.Player(ctx, "abc123", media.AndroidEmbedded)
	var te *Error
	require.ErrorAs(t, err, &te)
	assert.Equal(t, Cancelled, te.Kind)
	assert.ErrorIs(t, err, context.Canceled)
}

// stallBody blocks reads until the request context ends and records Close.
type stallBody struct {
	ctx    context.Context
	closed atomic.Bool
}

func (b *stallBody) Read(p []byte) (int, error) {
	<-b.ctx.Done()
	return 0, b.ctx.Err()
}

func (b *stallBody) Close() error {
	b.closed.Store(true)
	return nil
}

type stallTransport struct {
	calls   atomic.Int32
	body    *stallBody
	started chan struct{}
}

func (t *stallTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	t.calls.Add(1)
	t.body = &stallBody{ctx: req.Context()}
	close(t.started)
	return &http.Response{StatusCode: http.StatusOK, Header: http.Header{}, Body: t.body, Request: req}, nil
}

func TestPlayerCancelledMidBody(t *testing.T) {
	tr := &stallTransport{started: make(chan struct{})}
	c := New(WithHTTPClient(&http.Client{Transport: tr}), WithBaseURL("https://innertube.test"))

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		<-tr.started
		cancel()
	}()

	_, err := c.Player(ctx, "abc123", media.AndroidEmbedded)
	var te *Error
	require.ErrorAs(t, err, &te)
	assert.Equal(t, Cancelled, te.Kind)
	assert.Equal(t, int32(1), tr.calls.Load())
	assert.True(t, tr.body.closed.Load(), "response body was not closed")
}

func TestEmbedPageAndScript(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/embed/abc123":
			io.WriteString(w, "<html>embed</html>")
		case "/s/player/x/base.js":
			io.WriteString(w, "var x;")
		default:
			http.NotFound(w, r)
		}
	})

	page, err := c.EmbedPage(context.Background(), "abc123")
	require.NoError(t, err)
	assert.Equal(t, "<html>embed</html>", string(page))

	u, err := c.AbsURL("/s/player/x/base.js")
	require.NoError(t, err)
	script, err := c.Script(context.Background(), u)
	require.NoError(t, err)
	assert.Equal(t, "var x;", string(script))
}

func TestAbsURL(t *testing.T) {
	c := New()

	u, err := c.AbsURL("/s/player/x/base.js")
	require.NoError(t, err)
	assert.Equal(t, "https://www.youtube.com/s/player/x/base.js", u)

	_, err = c.AbsURL("http://evil.example/base.js")
	assert.Error(t, err)
}
