package httpinfra

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"apppresser.com/updater/internal/application/ports"
	"apppresser.com/updater/internal/core/domain"
	"apppresser.com/updater/internal/infrastructure/logging"
)

// DefaultTimeout bounds a licensing round-trip when no client is supplied
const DefaultTimeout = 15 * time.Second

// maxResponseSize caps how much of a response body is read
const maxResponseSize = 1 << 20

// LicenseClient talks to the EDD software-licensing endpoint
type LicenseClient struct {
	client    *http.Client
	method    string
	userAgent string
	logger    ports.LoggingGateway
}

// ClientOption customizes a LicenseClient
type ClientOption func(*LicenseClient)

// WithHTTPClient replaces the underlying http.Client
func WithHTTPClient(client *http.Client) ClientOption {
	return func(c *LicenseClient) {
		if client != nil {
			c.client = client
		}
	}
}

// WithTimeout sets the client timeout. Zero keeps the current value.
func WithTimeout(timeout time.Duration) ClientOption {
	return func(c *LicenseClient) {
		if timeout > 0 {
			c.client.Timeout = timeout
		}
	}
}

// WithMethod sets the HTTP method. Parameters always go in the query string.
func WithMethod(method string) ClientOption {
	return func(c *LicenseClient) {
		if method != "" {
			c.method = strings.ToUpper(method)
		}
	}
}

// WithUserAgent sets the User-Agent header
func WithUserAgent(userAgent string) ClientOption {
	return func(c *LicenseClient) {
		c.userAgent = userAgent
	}
}

// WithClientLogger attaches a logger
func WithClientLogger(logger ports.LoggingGateway) ClientOption {
	return func(c *LicenseClient) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// NewLicenseClient creates a client with a 15s timeout, POST requests and
// no retries.
func NewLicenseClient(opts ...ClientOption) *LicenseClient {
	c := &LicenseClient{
		client:    &http.Client{Timeout: DefaultTimeout},
		method:    http.MethodPost,
		userAgent: "appp-updater",
		logger:    logging.NewSilentLogger(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Method returns the configured HTTP method
func (c *LicenseClient) Method() string {
	return c.method
}

// Timeout returns the configured client timeout
func (c *LicenseClient) Timeout() time.Duration {
	return c.client.Timeout
}

// Do performs one licensing call. Every failure is reported in the result.
func (c *LicenseClient) Do(ctx context.Context, req ports.LicenseRequest) domain.LicenseResult {
	action := req.Action
	if action == "" {
		action = domain.ActionActivate
	}

	fullURL, err := BuildLicenseURL(req.APIURL, action, req.License, req.ItemName)
	if err != nil {
		return domain.FailedResult(domain.KindTransport, err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, c.method, fullURL, nil)
	if err != nil {
		return domain.FailedResult(domain.KindTransport, fmt.Errorf("failed to create request: %w", err))
	}
	httpReq.Header.Set("Accept", "application/json")
	if c.userAgent != "" {
		httpReq.Header.Set("User-Agent", c.userAgent)
	}

	fields := map[string]interface{}{
		"api_url":   req.APIURL,
		"action":    string(action),
		"item_name": req.ItemName,
		"license":   maskLicense(req.License),
	}
	c.logger.LogDebug("Sending license request", fields)

	resp, err := c.client.Do(httpReq)
	if err != nil {
		c.logger.LogError(err, "License request failed", fields)
		return domain.FailedResult(domain.KindTransport, fmt.Errorf("HTTP request failed: %w", err))
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return domain.FailedResult(domain.KindTransport, fmt.Errorf("failed to read response: %w", err))
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		c.logger.LogWarning("License server returned an error status", map[string]interface{}{
			"api_url": req.APIURL,
			"status":  resp.StatusCode,
		})
		return domain.FailedResult(domain.KindHTTPStatus, fmt.Errorf("API error %d: %s", resp.StatusCode, truncate(string(body), 200)))
	}

	return parseLicenseBody(body)
}

// BuildLicenseURL appends the licensing parameters to apiURL, keeping any
// query it already carries.
func BuildLicenseURL(apiURL string, action domain.LicenseAction, license, itemName string) (string, error) {
	if strings.TrimSpace(apiURL) == "" {
		return "", fmt.Errorf("api url cannot be empty")
	}

	u, err := url.Parse(apiURL)
	if err != nil {
		return "", fmt.Errorf("invalid api url %q: %w", apiURL, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return "", fmt.Errorf("unsupported URL scheme %q", u.Scheme)
	}
	if u.Host == "" {
		return "", fmt.Errorf("URL must include host")
	}

	params := url.Values{}
	params.Set("edd_action", string(action))
	params.Set("license", license)
	params.Set("item_name", itemName)

	if u.RawQuery == "" {
		u.RawQuery = params.Encode()
	} else {
		u.RawQuery = strings.TrimSuffix(u.RawQuery, "&") + "&" + params.Encode()
	}

	return u.String(), nil
}

func parseLicenseBody(body []byte) domain.LicenseResult {
	var payload map[string]json.RawMessage
	if err := json.Unmarshal(body, &payload); err != nil {
		return domain.FailedResult(domain.KindMalformedResponse, fmt.Errorf("failed to decode response: %w", err))
	}
	if payload == nil {
		return domain.FailedResult(domain.KindMalformedResponse, fmt.Errorf("response is not a JSON object"))
	}

	raw, ok := payload["license"]
	if !ok {
		return domain.FailedResult(domain.KindMissingStatus, nil)
	}

	var status string
	if err := json.Unmarshal(raw, &status); err != nil {
		return domain.FailedResult(domain.KindMissingStatus, fmt.Errorf("license field is %s", truncate(string(raw), 40)))
	}

	return domain.StatusResult(domain.LicenseStatus(status))
}

func maskLicense(license string) string {
	if len(license) <= 4 {
		return strings.Repeat("*", len(license))
	}
	return strings.Repeat("*", len(license)-4) + license[len(license)-4:]
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}

var _ ports.LicenseGateway = (*LicenseClient)(nil)
