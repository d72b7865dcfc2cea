package resilience

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/sony/gobreaker/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClient_Do_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	client := NewClient(DefaultClientConfig("test"))

	req, err := http.NewRequest(http.MethodGet, server.URL, nil)
	require.NoError(t, err)

	resp, err := client.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, gobreaker.StateClosed, client.CircuitBreakerState())
}

func TestClient_Do_ServerErrorReturnedToCaller(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	client := NewClient(DefaultClientConfig("test"))

	req, err := http.NewRequest(http.MethodGet, server.URL, nil)
	require.NoError(t, err)

	// A 5xx counts against the breaker but the response must still reach
	// the caller for status mapping.
	resp, err := client.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusBadGateway, resp.StatusCode)
	assert.Equal(t, uint32(1), client.CircuitBreakerCounts().TotalFailures)
}

func TestClient_Do_CircuitOpens(t *testing.T) {
	var calls atomic.Int64
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	cbConfig := DefaultCircuitBreakerConfig("test")
	cbConfig.ReadyToTrip = func(counts gobreaker.Counts) bool {
		return counts.TotalFailures >= 3
	}
	client := NewClient(ClientConfig{
		Name:           "test",
		Timeout:        time.Second,
		CircuitBreaker: &cbConfig,
	})

	for i := 0; i < 3; i++ {
		req, err := http.NewRequest(http.MethodGet, server.URL, nil)
		require.NoError(t, err)
		resp, doErr := client.Do(req)
		require.NoError(t, doErr)
		resp.Body.Close()
	}

	require.Equal(t, gobreaker.StateOpen, client.CircuitBreakerState())

	req, err := http.NewRequest(http.MethodGet, server.URL, nil)
	require.NoError(t, err)

	_, err = client.Do(req)
	assert.True(t, errors.Is(err, ErrCircuitOpen))
	assert.Equal(t, int64(3), calls.Load(), "open breaker must not touch the network")
}

func TestRegistry_HealthTracking(t *testing.T) {
	registry := NewRegistry()
	client := NewClient(DefaultClientConfig("ors"))

	registry.Register("ors", client)
	registry.RecordSuccess("ors")
	registry.RecordFailure("ors", errors.New("boom"))

	health := registry.GetHealth("ors")
	require.NotNil(t, health)
	assert.Equal(t, "ors", health.Name)
	assert.True(t, health.IsHealthy())
	assert.NotNil(t, health.LastSuccessAt)
	assert.NotNil(t, health.LastFailureAt)
	assert.Equal(t, "boom", health.LastError)

	assert.Nil(t, registry.GetHealth("unknown"))
	assert.Len(t, registry.GetAllHealth(), 1)
}
