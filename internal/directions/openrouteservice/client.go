// Package openrouteservice provides the OpenRouteService directions provider.
package openrouteservice

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/routeweaver/routeweaver/internal/directions"
	"github.com/routeweaver/routeweaver/internal/provider/resilience"
	"github.com/routeweaver/routeweaver/pkg/polyline"
)

const (
	// ProviderName identifies this directions provider.
	ProviderName = "openrouteservice"

	// DefaultBaseURL is the public OpenRouteService API base URL.
	DefaultBaseURL = "https://api.openrouteservice.org"

	// DefaultTimeout bounds a single leg request so a hung upstream call
	// cannot block a matrix build indefinitely.
	DefaultTimeout = 10 * time.Second
)

// HTTPDoer is an interface for executing HTTP requests.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// ClientConfig holds configuration for the OpenRouteService client.
type ClientConfig struct {
	// APIKey is the ORS API key (required).
	APIKey string

	// BaseURL is the API base URL (optional, defaults to the public API).
	BaseURL string

	// HTTPClient is the HTTP client to use (optional).
	// If nil, uses a resilient client with defaults.
	HTTPClient HTTPDoer

	// Timeout is the per-request timeout (optional, defaults to 10s).
	Timeout time.Duration

	// Registry is the provider registry for health tracking (optional).
	Registry *resilience.Registry

	// Logger for client operations.
	Logger zerolog.Logger
}

// Client is an OpenRouteService directions client implementing
// directions.Provider. It performs exactly one upstream request per call;
// the directions.Gateway owns the retry policy.
type Client struct {
	apiKey     string
	baseURL    string
	httpClient HTTPDoer
	registry   *resilience.Registry
	logger     zerolog.Logger
}

// NewClient creates a new OpenRouteService client.
func NewClient(cfg ClientConfig) *Client {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = DefaultTimeout
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		clientCfg := resilience.DefaultClientConfig(ProviderName)
		clientCfg.Timeout = timeout
		client := resilience.NewClient(clientCfg)
		if cfg.Registry != nil {
			cfg.Registry.Register(ProviderName, client)
		}
		httpClient = client
	}

	return &Client{
		apiKey:     cfg.APIKey,
		baseURL:    baseURL,
		httpClient: httpClient,
		registry:   cfg.Registry,
		logger:     cfg.Logger,
	}
}

// Name returns the provider name.
func (c *Client) Name() string {
	return ProviderName
}

// FetchLeg requests directions for a single origin-destination pair.
func (c *Client) FetchLeg(ctx context.Context, req directions.LegRequest) (*directions.Leg, error) {
	units := req.Options.Units
	if units == "" {
		units = "m"
	}

	orsReq := orsRequest{
		// ORS uses [lon, lat] order (GeoJSON).
		Coordinates: [][]float64{
			{req.From.Lon, req.From.Lat},
			{req.To.Lon, req.To.Lat},
		},
		Geometry: true,
		Units:    units,
	}
	if len(req.Options.Avoid) > 0 {
		orsReq.Options = &orsOptions{AvoidFeatures: req.Options.Avoid}
	}

	body, err := json.Marshal(orsReq)
	if err != nil {
		return nil, fmt.Errorf("marshaling request: %w", err)
	}

	url := fmt.Sprintf("%s/v2/directions/%s", c.baseURL, req.Profile)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", c.apiKey)
	httpReq.Header.Set("Accept", "application/json, application/geo+json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		c.recordFailure(err)
		return nil, &directions.Error{
			Provider: ProviderName,
			Code:     "REQUEST_FAILED",
			Message:  "failed to reach directions provider",
			Err:      directions.ErrUpstream,
		}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		c.recordFailure(err)
		return nil, fmt.Errorf("reading response body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		err := c.handleErrorResponse(resp.StatusCode, respBody)
		c.recordFailure(err)
		return nil, err
	}

	var orsResp orsResponse
	if err := json.Unmarshal(respBody, &orsResp); err != nil {
		c.recordFailure(err)
		return nil, fmt.Errorf("decoding response: %w", err)
	}

	c.recordSuccess()

	// A well-formed response with zero candidate routes is not an error:
	// the leg is simply unreachable and the caller substitutes sentinels.
	if len(orsResp.Routes) == 0 {
		c.logger.Debug().
			Str("profile", string(req.Profile)).
			Msg("no candidate routes for leg")
		return &directions.Leg{NoRoute: true}, nil
	}

	return c.toLeg(&orsResp.Routes[0])
}

// toLeg converts the first candidate route into the canonical leg shape.
func (c *Client) toLeg(route *orsRoute) (*directions.Leg, error) {
	geometry, err := normalizeGeometry(route.Geometry)
	if err != nil {
		c.logger.Warn().Err(err).Msg("discarding unparseable route geometry")
		geometry = ""
	}

	return &directions.Leg{
		DurationSeconds: floatOrNaN(route.Summary.Duration),
		DistanceMeters:  floatOrNaN(route.Summary.Distance),
		Geometry:        geometry,
	}, nil
}

// normalizeGeometry maps the three upstream geometry shapes into the single
// encoded-polyline representation: an encoded string passes through, a bare
// [lon, lat] coordinate list or a GeoJSON-style object with a coordinates
// field is re-encoded. Absent geometry normalizes to the empty string.
func normalizeGeometry(raw json.RawMessage) (string, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return "", nil
	}

	var encoded string
	if err := json.Unmarshal(raw, &encoded); err == nil {
		return encoded, nil
	}

	var coords [][]float64
	if err := json.Unmarshal(raw, &coords); err == nil {
		return encodeLonLat(coords)
	}

	var nested struct {
		Coordinates [][]float64 `json:"coordinates"`
	}
	if err := json.Unmarshal(raw, &nested); err == nil && nested.Coordinates != nil {
		return encodeLonLat(nested.Coordinates)
	}

	return "", fmt.Errorf("unrecognized geometry shape: %s", truncate(raw, 64))
}

// encodeLonLat encodes a GeoJSON-ordered coordinate list as a polyline.
func encodeLonLat(coords [][]float64) (string, error) {
	points := make([]polyline.Point, 0, len(coords))
	for _, c := range coords {
		if len(c) < 2 {
			return "", fmt.Errorf("coordinate with %d components", len(c))
		}
		points = append(points, polyline.Point{Lat: c[1], Lon: c[0]})
	}
	return polyline.Encode(points), nil
}

// handleErrorResponse maps ORS error responses to domain errors.
func (c *Client) handleErrorResponse(statusCode int, body []byte) error {
	message := fmt.Sprintf("directions provider returned status %d", statusCode)

	var orsErr orsErrorResponse
	if err := json.Unmarshal(body, &orsErr); err == nil && orsErr.Error.Message != "" {
		message = orsErr.Error.Message
	}

	if statusCode == http.StatusTooManyRequests {
		return &directions.Error{
			Provider: ProviderName,
			Code:     "RATE_LIMIT",
			Message:  message,
			Err:      directions.ErrRateLimited,
		}
	}

	return &directions.Error{
		Provider: ProviderName,
		Code:     fmt.Sprintf("HTTP_%d", statusCode),
		Message:  message,
		Err:      directions.ErrUpstream,
	}
}

func (c *Client) recordSuccess() {
	if c.registry != nil {
		c.registry.RecordSuccess(ProviderName)
	}
}

func (c *Client) recordFailure(err error) {
	if c.registry != nil {
		c.registry.RecordFailure(ProviderName, err)
	}
}

func floatOrNaN(v *float64) float64 {
	if v == nil {
		return math.NaN()
	}
	return *v
}

func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + "..."
}
