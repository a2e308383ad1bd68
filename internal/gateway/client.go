package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/muurk/lpac-console/internal/logging"
	"github.com/muurk/lpac-console/internal/version"
)

const (
	// DefaultAPIPath is where luci-app-lpac mounts its CGI endpoints
	DefaultAPIPath = "/cgi-bin/luci/admin/network/lpac/api"

	// SessionCookieName is the LuCI session cookie forwarded with every request
	SessionCookieName = "sysauth"

	// DefaultReadTimeout bounds GET requests. Actions are never bounded client-side.
	DefaultReadTimeout = 30 * time.Second

	// maxBodySize caps how much of a response body is read
	maxBodySize = 4 << 20
)

// PostEncoding selects how action payloads are sent
type PostEncoding string

const (
	// EncodingJSON sends the payload as an application/json object
	EncodingJSON PostEncoding = "json"
	// EncodingForm sends the payload as application/x-www-form-urlencoded fields
	EncodingForm PostEncoding = "form"
)

// ParsePostEncoding validates a --post-encoding value
func ParsePostEncoding(s string) (PostEncoding, error) {
	switch PostEncoding(strings.ToLower(s)) {
	case "", EncodingJSON:
		return EncodingJSON, nil
	case EncodingForm:
		return EncodingForm, nil
	default:
		return "", NewValidationError(fmt.Sprintf("unknown post encoding %q (want json or form)", s))
	}
}

// Client talks to the luci-app-lpac CGI API on one router
type Client struct {
	// BaseURL is the router origin (e.g., "http://192.168.1.1")
	BaseURL string

	// APIPath is the path prefix of the endpoints (default DefaultAPIPath)
	APIPath string

	// Session is the LuCI sysauth token, sent as a cookie when non-empty
	Session string

	// Encoding selects the POST body format
	Encoding PostEncoding

	// ReadTimeout bounds GET requests (0 = no bound)
	ReadTimeout time.Duration

	// HTTPClient is the underlying HTTP client. It has no timeout of its own.
	HTTPClient *http.Client
}

// NewClient creates a client for a router given as "host", "host:port" or a full URL
func NewClient(router string) *Client {
	router = strings.TrimSpace(router)
	if !strings.Contains(router, "://") {
		router = "http://" + router
	}
	return NewClientWithURL(router)
}

// NewClientWithURL creates a client with a full base URL
// baseURL: Full base URL (e.g., "https://192.168.1.1:443")
func NewClientWithURL(baseURL string) *Client {
	return &Client{
		BaseURL:     strings.TrimRight(baseURL, "/"),
		APIPath:     DefaultAPIPath,
		Encoding:    EncodingJSON,
		ReadTimeout: DefaultReadTimeout,
		HTTPClient:  &http.Client{},
	}
}

// SetSession sets the LuCI session token
func (c *Client) SetSession(token string) {
	c.Session = token
}

// SetAPIPath overrides the endpoint path prefix
func (c *Client) SetAPIPath(path string) {
	if path == "" {
		path = DefaultAPIPath
	}
	c.APIPath = "/" + strings.Trim(path, "/")
}

// SetEncoding sets the POST body format
func (c *Client) SetEncoding(enc PostEncoding) {
	c.Encoding = enc
}

// SetReadTimeout sets the bound applied to GET requests
func (c *Client) SetReadTimeout(timeout time.Duration) {
	c.ReadTimeout = timeout
}

// Host returns the router host part of BaseURL
func (c *Client) Host() string {
	u, err := url.Parse(c.BaseURL)
	if err != nil {
		return c.BaseURL
	}
	return u.Hostname()
}

// EndpointURL returns the full URL of an endpoint
func (c *Client) EndpointURL(ep Endpoint) string {
	return c.BaseURL + c.APIPath + "/" + string(ep)
}

// Get fetches a read endpoint
func (c *Client) Get(ctx context.Context, ep Endpoint) (Envelope, error) {
	if c.ReadTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.ReadTimeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.EndpointURL(ep), nil)
	if err != nil {
		return Envelope{}, NewNetworkError(ep, c.Host(), "failed to create GET request", err)
	}

	return c.do(req, ep)
}

// Post sends exactly one request to an action endpoint. A nil payload is
// sent as an empty object.
func (c *Client) Post(ctx context.Context, ep Endpoint, payload map[string]any) (Envelope, error) {
	if payload == nil {
		payload = map[string]any{}
	}

	var (
		body        []byte
		contentType string
	)
	switch c.Encoding {
	case EncodingForm:
		body = []byte(FormValues(payload).Encode())
		contentType = "application/x-www-form-urlencoded"
	default:
		var err error
		body, err = json.Marshal(payload)
		if err != nil {
			return Envelope{}, NewParseError(ep, "failed to encode request payload", err)
		}
		contentType = "application/json"
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.EndpointURL(ep), bytes.NewReader(body))
	if err != nil {
		return Envelope{}, NewNetworkError(ep, c.Host(), "failed to create POST request", err)
	}
	req.Header.Set("Content-Type", contentType)

	return c.do(req, ep)
}

func (c *Client) do(req *http.Request, ep Endpoint) (Envelope, error) {
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", version.UserAgent())
	if c.Session != "" {
		req.AddCookie(&http.Cookie{Name: SessionCookieName, Value: c.Session})
	}

	start := time.Now()
	logging.LogRequest(req.Method, string(ep), req.URL.String())

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		logging.LogResponse(string(ep), 0, time.Since(start), err)
		return Envelope{}, NewNetworkError(ep, c.Host(), fmt.Sprintf("%s %s failed", req.Method, ep), err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		logging.LogResponse(string(ep), resp.StatusCode, time.Since(start), err)
		return Envelope{}, NewNetworkError(ep, c.Host(), "failed to read response body", err)
	}
	logging.LogResponse(string(ep), resp.StatusCode, time.Since(start), nil)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		message := http.StatusText(resp.StatusCode)
		if env, derr := DecodeEnvelope(body); derr == nil && env.Text != "" {
			message = env.Text
		}
		return Envelope{}, NewHTTPError(ep, resp.StatusCode, message)
	}

	env, err := DecodeEnvelope(body)
	if err != nil {
		return Envelope{}, NewParseError(ep, fmt.Sprintf("invalid response from %s", ep), err)
	}

	return env, nil
}

// FormValues flattens a payload into form fields. Booleans become "true"/"false".
func FormValues(payload map[string]any) url.Values {
	form := url.Values{}
	for k, v := range payload {
		switch val := v.(type) {
		case string:
			form.Set(k, val)
		case bool:
			form.Set(k, strconv.FormatBool(val))
		case int:
			form.Set(k, strconv.Itoa(val))
		case nil:
			form.Set(k, "")
		default:
			form.Set(k, fmt.Sprint(val))
		}
	}
	return form
}
