// Package fleetapi is the HTTP client for the fleet backend that owns all
// business logic: persistence, GPS ingestion and route computation. The
// console only reads the active-bus set and reference data and passes one
// administrative action through.
package fleetapi

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"console.busfleet.org/internal/logging"
	"console.busfleet.org/internal/models"
)

// maxBodySize caps upstream response bodies. An active-bus set is a few
// hundred KB at most; anything larger is a broken upstream.
const maxBodySize = 10 * 1024 * 1024

// newFleetHTTPClient builds a dedicated HTTP client with explicit timeouts
// and transport limits to avoid the pitfalls of http.DefaultClient (no
// timeout, shared global state). The transport is cloned from
// http.DefaultTransport to preserve important defaults (proxy settings,
// DialContext, HTTP/2, keepalives).
func newFleetHTTPClient() *http.Client {
	var transport *http.Transport
	if t, ok := http.DefaultTransport.(*http.Transport); ok {
		transport = t.Clone()
	} else {
		transport = &http.Transport{}
	}
	transport.MaxIdleConns = 50
	transport.MaxIdleConnsPerHost = 10
	transport.IdleConnTimeout = 90 * time.Second
	transport.TLSHandshakeTimeout = 10 * time.Second
	transport.ExpectContinueTimeout = 1 * time.Second

	return &http.Client{
		// Absolute safety net per request; callers also bound requests
		// with a context timeout and the stricter of the two wins.
		Timeout:   10 * time.Second,
		Transport: transport,
	}
}

// Client talks to the fleet backend. Create with NewClient.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *slog.Logger
}

// NewClient creates a fleet backend client rooted at baseURL.
func NewClient(baseURL string, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: newFleetHTTPClient(),
		logger:     logger.With(slog.String("component", "fleetapi")),
	}
}

// upstreamErrorBody is the JSON error shape the backend produces on 4xx.
type upstreamErrorBody struct {
	Message string              `json:"message"`
	Fields  map[string][]string `json:"fields"`
}

// FetchActiveBuses returns the current active-bus set, narrowed by the
// server-side filter parameters (routeId, companyId, status).
func (c *Client) FetchActiveBuses(ctx context.Context, params url.Values) ([]models.ActiveBus, error) {
	var buses []models.ActiveBus
	if err := c.getJSON(ctx, "/buses/active", params, &buses); err != nil {
		return nil, err
	}
	return buses, nil
}

// FetchRoutes returns route metadata for the filter dropdown.
func (c *Client) FetchRoutes(ctx context.Context) ([]models.Route, error) {
	var routes []models.Route
	if err := c.getJSON(ctx, "/routes", nil, &routes); err != nil {
		return nil, err
	}
	return routes, nil
}

// FetchCompanies returns the operator list for the company selector.
func (c *Client) FetchCompanies(ctx context.Context) ([]models.Company, error) {
	var companies []models.Company
	if err := c.getJSON(ctx, "/companies", nil, &companies); err != nil {
		return nil, err
	}
	return companies, nil
}

// ClearCache performs the administrative cache-reset action. The console
// exposes it as a pass-through button behind a confirmation.
func (c *Client) ClearCache(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/clear", nil)
	if err != nil {
		return fmt.Errorf("building clear request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return networkError(err)
	}
	defer logging.SafeCloseWithLogging(resp.Body, c.logger, "http_response_body")

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return c.errorFromResponse(resp)
	}
	return nil
}

func (c *Client) getJSON(ctx context.Context, path string, params url.Values, out any) error {
	endpoint := c.baseURL + path
	if len(params) > 0 {
		endpoint += "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("building request for %s: %w", path, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return networkError(err)
	}
	defer logging.SafeCloseWithLogging(resp.Body, c.logger, "http_response_body")

	if resp.StatusCode != http.StatusOK {
		return c.errorFromResponse(resp)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize+1))
	if err != nil {
		return networkError(fmt.Errorf("reading response body: %w", err))
	}
	if int64(len(body)) > maxBodySize {
		return statusError(resp.StatusCode, fmt.Sprintf("response for %s exceeds %d bytes", path, maxBodySize), nil)
	}

	if err := json.Unmarshal(body, out); err != nil {
		return statusError(resp.StatusCode, fmt.Sprintf("malformed response for %s: %v", path, err), nil)
	}
	return nil
}

// errorFromResponse classifies a non-2xx response, pulling field detail
// out of 4xx bodies when present.
func (c *Client) errorFromResponse(resp *http.Response) *APIError {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 64*1024))

	message := http.StatusText(resp.StatusCode)
	var fields map[string][]string

	var parsed upstreamErrorBody
	if json.Unmarshal(body, &parsed) == nil && parsed.Message != "" {
		message = parsed.Message
		fields = parsed.Fields
	}

	return statusError(resp.StatusCode, message, fields)
}
