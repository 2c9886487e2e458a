// Package innertube talks to the platform's internal player API and fetches
// the auxiliary documents signature resolution needs.
package innertube

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"go.uber.org/zap"

	"ytresolve/internal/httputil"
	"ytresolve/internal/media"
)

// DefaultBaseURL is the platform origin.
const DefaultBaseURL = "https://www.youtube.com"

// Client issues exactly one HTTP request per call. It keeps no state
// between calls beyond the underlying connection pool.
type Client struct {
	http    *http.Client
	baseURL string
	hl, gl  string
	logger  *zap.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the hardened default HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithBaseURL points the client at another origin, e.g. a test server.
func WithBaseURL(u string) Option {
	return func(c *Client) { c.baseURL = u }
}

// WithLocale sets the interface language and region sent with player requests.
func WithLocale(hl, gl string) Option {
	return func(c *Client) { c.hl, c.gl = hl, gl }
}

// WithLogger sets the debug logger.
func WithLogger(l *zap.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// New creates a Client.
func New(opts ...Option) *Client {
	c := &Client{
		http:    httputil.NewClient(),
		baseURL: DefaultBaseURL,
		hl:      "en",
		gl:      "US",
		logger:  zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type playerRequest struct {
	VideoID        string         `json:"videoId"`
	Context        requestContext `json:"context"`
	ContentCheckOk bool           `json:"contentCheckOk"`
	RacyCheckOk    bool           `json:"racyCheckOk"`
}

type requestContext struct {
	Client     clientInfo  `json:"client"`
	ThirdParty *thirdParty `json:"thirdParty,omitempty"`
}

type clientInfo struct {
	ClientName        string `json:"clientName"`
	ClientVersion     string `json:"clientVersion"`
	AndroidSdkVersion int    `json:"androidSdkVersion,omitempty"`
	Hl                string `json:"hl,omitempty"`
	Gl                string `json:"gl,omitempty"`
}

type thirdParty struct {
	EmbedURL string `json:"embedUrl"`
}

// Player requests the player document for videoID as the given client.
func (c *Client) Player(ctx context.Context, videoID string, cc media.ClientContext) ([]byte, error) {
	d, ok := descriptors[cc]
	if !ok {
		return nil, fmt.Errorf("unsupported client context %v", cc)
	}

	body := playerRequest{
		VideoID: videoID,
		Context: requestContext{Client: clientInfo{
			ClientName:        d.name,
			ClientVersion:     d.version,
			AndroidSdkVersion: d.androidSDK,
			Hl:                c.hl,
			Gl:                c.gl,
		}},
		ContentCheckOk: true,
		RacyCheckOk:    true,
	}
	if cc.Embedded() {
		body.Context.ThirdParty = &thirdParty{EmbedURL: httputil.BuildURL(DefaultBaseURL, "embed", videoID)}
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("encoding player request: %w", err)
	}

	url := c.baseURL + "/youtubei/v1/player?prettyPrint=false"
	req, err := httputil.NewRequest(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", d.userAgent)
	req.Header.Set("X-Youtube-Client-Name", strconv.Itoa(d.id))
	req.Header.Set("X-Youtube-Client-Version", d.version)
	req.Header.Set("Origin", DefaultBaseURL)
	req.Header.Set("Referer", DefaultBaseURL+"/")

	c.logger.Debug("player request", zap.String("video", videoID), zap.Stringer("client", cc))
	return c.do(req)
}

// EmbedPage fetches the embed page for videoID.
func (c *Client) EmbedPage(ctx context.Context, videoID string) ([]byte, error) {
	req, err := httputil.NewRequest(ctx, http.MethodGet, httputil.BuildURL(c.baseURL, "embed", videoID), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "text/html,application/xhtml+xml")
	return c.do(req)
}

// Script fetches a player script by absolute URL.
func (c *Client) Script(ctx context.Context, scriptURL string) ([]byte, error) {
	req, err := httputil.NewRequest(ctx, http.MethodGet, scriptURL, nil)
	if err != nil {
		return nil, err
	}
	return c.do(req)
}

// AbsURL resolves a script reference against the client's origin. The
// result must be an HTTPS URL.
func (c *Client) AbsURL(ref string) (string, error) {
	u, err := httputil.ResolveReference(c.baseURL, ref)
	if err != nil {
		return "", err
	}
	if err := httputil.ValidateURL(u); err != nil {
		return "", fmt.Errorf("script reference %q: %w", ref, err)
	}
	return u, nil
}

func (c *Client) do(req *http.Request) ([]byte, error) {
	url := req.URL.String()
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, classify(url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &Error{Kind: HTTPStatus, StatusCode: resp.StatusCode, URL: url}
	}

	body, err := httputil.ReadBody(resp.Body)
	if errors.Is(err, httputil.ErrBodyTooLarge) {
		return nil, fmt.Errorf("%s: %w", req.URL.Path, err)
	}
	if err != nil {
		return nil, classify(url, err)
	}
	c.logger.Debug("response", zap.String("url", req.URL.Path), zap.Int("bytes", len(body)))
	return body, nil
}
