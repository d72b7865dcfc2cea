// Package vroom provides a client for a VROOM-compatible vehicle routing
// solver endpoint.
package vroom

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/routeweaver/routeweaver/internal/problem"
	"github.com/routeweaver/routeweaver/internal/provider/resilience"
	"github.com/routeweaver/routeweaver/internal/solver"
)

const (
	// SolverName identifies this solver backend.
	SolverName = "vroom"

	// DefaultBaseURL targets a local vroom-express instance.
	DefaultBaseURL = "http://localhost:3000"

	// DefaultTimeout bounds one solve request. Solving is CPU-bound
	// upstream, so this is deliberately generous.
	DefaultTimeout = 60 * time.Second
)

// HTTPDoer is an interface for executing HTTP requests.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// ClientConfig holds configuration for the VROOM client.
type ClientConfig struct {
	// BaseURL is the solver endpoint (optional, defaults to localhost).
	BaseURL string

	// HTTPClient is the HTTP client to use (optional).
	HTTPClient HTTPDoer

	// Timeout is the per-request timeout (optional, defaults to 60s).
	Timeout time.Duration

	// Registry is the provider registry for health tracking (optional).
	Registry *resilience.Registry

	// Logger for client operations.
	Logger zerolog.Logger
}

// Client submits translated problems to a VROOM-compatible solver.
type Client struct {
	baseURL    string
	httpClient HTTPDoer
	registry   *resilience.Registry
	logger     zerolog.Logger
}

// NewClient creates a new VROOM client.
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
		clientCfg := resilience.DefaultClientConfig(SolverName)
		clientCfg.Timeout = timeout
		client := resilience.NewClient(clientCfg)
		if cfg.Registry != nil {
			cfg.Registry.Register(SolverName, client)
		}
		httpClient = client
	}

	return &Client{
		baseURL:    baseURL,
		httpClient: httpClient,
		registry:   cfg.Registry,
		logger:     cfg.Logger,
	}
}

// Name returns the solver name.
func (c *Client) Name() string {
	return SolverName
}

// Solve submits the translated problem. Any non-2xx response is fatal for
// the solve operation and surfaces with the upstream status and message.
func (c *Client) Solve(ctx context.Context, p *problem.Problem) (*solver.Solution, error) {
	body, err := json.Marshal(p)
	if err != nil {
		return nil, fmt.Errorf("marshaling problem: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")

	c.logger.Debug().
		Int("jobs", len(p.Jobs)).
		Int("shipments", len(p.Shipments)).
		Int("vehicles", len(p.Vehicles)).
		Msg("submitting problem to solver")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		c.recordFailure(err)
		return nil, &solver.Error{
			Solver:  SolverName,
			Message: "failed to reach solver",
			Err:     solver.ErrRequestFailed,
		}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		c.recordFailure(err)
		return nil, fmt.Errorf("reading response body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		failure := c.handleErrorResponse(resp.StatusCode, respBody)
		c.recordFailure(failure)
		return nil, failure
	}

	var solution solver.Solution
	if err := json.Unmarshal(respBody, &solution); err != nil {
		c.recordFailure(err)
		return nil, fmt.Errorf("decoding solution: %w", err)
	}

	c.recordSuccess()

	c.logger.Debug().
		Int("code", solution.Code).
		Int("routes", len(solution.Routes)).
		Int("unassigned", len(solution.Unassigned)).
		Msg("received solution")

	return &solution, nil
}

// handleErrorResponse maps solver error responses to domain errors.
func (c *Client) handleErrorResponse(statusCode int, body []byte) error {
	message := fmt.Sprintf("solver returned status %d", statusCode)

	var errResp struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(body, &errResp); err == nil && errResp.Error != "" {
		message = errResp.Error
	}

	return &solver.Error{
		Solver:     SolverName,
		StatusCode: statusCode,
		Message:    message,
		Err:        solver.ErrRequestFailed,
	}
}

func (c *Client) recordSuccess() {
	if c.registry != nil {
		c.registry.RecordSuccess(SolverName)
	}
}

func (c *Client) recordFailure(err error) {
	if c.registry != nil {
		c.registry.RecordFailure(SolverName, err)
	}
}
