package portal

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/muurk/wifiprov/internal/logging"
	"github.com/muurk/wifiprov/internal/urls"
	"github.com/muurk/wifiprov/internal/version"
)

const (
	// DefaultTimeout bounds every request to the portal
	DefaultTimeout = 8 * time.Second

	// maxBodySize caps response bodies; portal responses are a few KB at most
	maxBodySize = 1 << 20

	// RequestIDHeader carries a per-request ID so device logs can be matched
	// to client logs.
	RequestIDHeader = "X-Request-ID"
)

// Client talks to a device provisioning portal.
type Client struct {
	// BaseURL is the portal base URL (e.g., "http://192.168.4.1")
	BaseURL *url.URL

	// HTTPClient is the underlying HTTP client
	HTTPClient *http.Client

	// UserAgent is sent with every request
	UserAgent string
}

// NewClient creates a client for the portal at addr. addr may be a bare
// host, host:port or a full URL; empty means urls.DefaultPortal.
func NewClient(addr string) (*Client, error) {
	base, err := urls.NormalizeBase(addr)
	if err != nil {
		return nil, err
	}
	return &Client{
		BaseURL:    base,
		HTTPClient: &http.Client{Timeout: DefaultTimeout},
		UserAgent:  version.UserAgent(),
	}, nil
}

// SetTimeout sets the HTTP request timeout
func (c *Client) SetTimeout(timeout time.Duration) {
	c.HTTPClient.Timeout = timeout
}

// LandingURL returns the absolute URL of the post-connection landing page.
func (c *Client) LandingURL() string {
	return urls.Resolve(c.BaseURL, urls.LandingPath)
}

// Status queries the device's connection state.
func (c *Client) Status(ctx context.Context) (*StatusResponse, error) {
	body, err := c.get(ctx, urls.StatusPath)
	if err != nil {
		return nil, err
	}
	var status StatusResponse
	if err := json.Unmarshal(body, &status); err != nil {
		return nil, newParseError("failed to parse status response", err)
	}
	return &status, nil
}

// Scan queries the networks visible to the device, in the order the device
// reports them.
func (c *Client) Scan(ctx context.Context) (*ScanResult, error) {
	body, err := c.get(ctx, urls.ScanPath)
	if err != nil {
		return nil, err
	}
	result, err := decodeScan(body)
	if err != nil {
		return nil, newParseError("failed to parse scan response", err)
	}
	return result, nil
}

// Connect submits credentials. A device-side rejection is returned as a
// response with OK false, not as an error; the device reports validation
// failures with HTTP 400 and a JSON body, which is decoded the same way.
func (c *Client) Connect(ctx context.Context, creds Credentials) (*ConnectResponse, error) {
	if err := ValidateSSID(creds.SSID); err != nil {
		return nil, err
	}
	return c.postAck(ctx, urls.ConnectPath, creds.ToFormData())
}

// Disconnect asks the device to drop its station link and forget the saved
// credentials.
func (c *Client) Disconnect(ctx context.Context) (*ConnectResponse, error) {
	return c.postAck(ctx, urls.DisconnectPath, url.Values{})
}

func (c *Client) get(ctx context.Context, path string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, urls.Resolve(c.BaseURL, path), nil)
	if err != nil {
		return nil, classify("failed to create GET request", err)
	}
	req.Header.Set("Accept", "application/json")

	status, body, err := c.do(req)
	if err != nil {
		return nil, err
	}
	if status != http.StatusOK {
		return nil, newHTTPError(status, body)
	}
	return body, nil
}

func (c *Client) postAck(ctx context.Context, path string, form url.Values) (*ConnectResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, urls.Resolve(c.BaseURL, path), strings.NewReader(form.Encode()))
	if err != nil {
		return nil, classify("failed to create POST request", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")

	status, body, err := c.do(req)
	if err != nil {
		return nil, err
	}

	var ack ConnectResponse
	decodeErr := json.Unmarshal(body, &ack)

	switch {
	case status == http.StatusOK && decodeErr == nil:
		return &ack, nil
	case status == http.StatusOK:
		return nil, newParseError("failed to parse acknowledgment", decodeErr)
	case status >= 400 && status < 500 && decodeErr == nil && !ack.OK:
		return &ack, nil
	default:
		return nil, newHTTPError(status, body)
	}
}

func (c *Client) do(req *http.Request) (int, []byte, error) {
	requestID := uuid.NewString()
	req.Header.Set(RequestIDHeader, requestID)
	req.Header.Set("User-Agent", c.UserAgent)

	logging.LogHTTPRequest(requestID, req.Method, req.URL.Path)

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return 0, nil, classify(fmt.Sprintf("%s %s failed", req.Method, req.URL.Path), err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return 0, nil, classify("failed to read response body", err)
	}

	logging.LogHTTPResponse(requestID, resp.StatusCode, body)
	return resp.StatusCode, body, nil
}
