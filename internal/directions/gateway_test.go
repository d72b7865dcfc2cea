package directions

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

// fakeProvider scripts per-attempt outcomes for gateway tests.
type fakeProvider struct {
	attempts int
	fetch    func(attempt int) (*Leg, error)
}

func (f *fakeProvider) FetchLeg(_ context.Context, _ LegRequest) (*Leg, error) {
	f.attempts++
	return f.fetch(f.attempts)
}

func (f *fakeProvider) Name() string { return "fake" }

func newTestGateway(p Provider) *Gateway {
	return NewGateway(GatewayConfig{
		Provider:       p,
		Logger:         zerolog.Nop(),
		RetryBaseDelay: time.Millisecond,
	})
}

func testRequest() LegRequest {
	return LegRequest{
		From:    Coordinate{Lat: 52.3676, Lon: 4.9041},
		To:      Coordinate{Lat: 52.0907, Lon: 5.1214},
		Profile: ProfileDriving,
	}
}

func TestGateway_FetchLeg_Success(t *testing.T) {
	provider := &fakeProvider{fetch: func(int) (*Leg, error) {
		return &Leg{DurationSeconds: 1800, DistanceMeters: 42000, Geometry: "abc"}, nil
	}}

	leg, err := newTestGateway(provider).FetchLeg(context.Background(), testRequest())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if leg.DurationSeconds != 1800 {
		t.Errorf("expected duration 1800, got %v", leg.DurationSeconds)
	}
	if provider.attempts != 1 {
		t.Errorf("expected 1 attempt, got %d", provider.attempts)
	}
}

func TestGateway_FetchLeg_RetriesRateLimitExactlyThreeTimes(t *testing.T) {
	provider := &fakeProvider{fetch: func(int) (*Leg, error) {
		return nil, &Error{Provider: "fake", Code: "RATE_LIMIT", Message: "too many requests", Err: ErrRateLimited}
	}}

	_, err := newTestGateway(provider).FetchLeg(context.Background(), testRequest())
	if err == nil {
		t.Fatal("expected error, got nil")
	}
	if !errors.Is(err, ErrRateLimited) {
		t.Errorf("expected ErrRateLimited, got %v", err)
	}
	// 1 initial attempt + 3 retries.
	if provider.attempts != 4 {
		t.Errorf("expected 4 attempts, got %d", provider.attempts)
	}
}

func TestGateway_FetchLeg_RecoveryAfterRateLimit(t *testing.T) {
	provider := &fakeProvider{fetch: func(attempt int) (*Leg, error) {
		if attempt < 3 {
			return nil, &Error{Provider: "fake", Code: "RATE_LIMIT", Message: "too many requests", Err: ErrRateLimited}
		}
		return &Leg{DurationSeconds: 600, DistanceMeters: 9000}, nil
	}}

	leg, err := newTestGateway(provider).FetchLeg(context.Background(), testRequest())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if leg.DurationSeconds != 600 {
		t.Errorf("expected duration 600, got %v", leg.DurationSeconds)
	}
	if provider.attempts != 3 {
		t.Errorf("expected 3 attempts, got %d", provider.attempts)
	}
}

func TestGateway_FetchLeg_NoRetryOnOtherFailures(t *testing.T) {
	provider := &fakeProvider{fetch: func(int) (*Leg, error) {
		return nil, &Error{Provider: "fake", Code: "SERVER_500", Message: "provider unavailable", Err: ErrUpstream}
	}}

	_, err := newTestGateway(provider).FetchLeg(context.Background(), testRequest())
	if err == nil {
		t.Fatal("expected error, got nil")
	}
	if !errors.Is(err, ErrUpstream) {
		t.Errorf("expected ErrUpstream, got %v", err)
	}
	if provider.attempts != 1 {
		t.Errorf("expected exactly 1 attempt for a non-rate-limit failure, got %d", provider.attempts)
	}
}

func TestGateway_FetchLeg_InvalidCoordinates(t *testing.T) {
	provider := &fakeProvider{fetch: func(int) (*Leg, error) {
		t.Fatal("provider must not be called for invalid coordinates")
		return nil, nil
	}}

	req := testRequest()
	req.From.Lat = 91

	_, err := newTestGateway(provider).FetchLeg(context.Background(), req)
	if !errors.Is(err, ErrInvalidCoordinates) {
		t.Errorf("expected ErrInvalidCoordinates, got %v", err)
	}
}

func TestGateway_RetryPolicy_DefaultSchedule(t *testing.T) {
	g := NewGateway(GatewayConfig{Provider: &fakeProvider{}, Logger: zerolog.Nop()})

	policy := g.retryPolicy(context.Background())
	want := []time.Duration{2 * time.Second, 4 * time.Second, 8 * time.Second}

	for i, expected := range want {
		got := policy.NextBackOff()
		if got != expected {
			t.Errorf("delay %d: expected %v, got %v", i, expected, got)
		}
	}

	if got := policy.NextBackOff(); got != backoffStop {
		t.Errorf("expected Stop after 3 retries, got %v", got)
	}
}

// backoffStop mirrors backoff.Stop for readability in assertions.
const backoffStop = time.Duration(-1)

func TestIsRateLimit(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"typed", &Error{Err: ErrRateLimited, Message: "quota"}, true},
		{"status text", errors.New("unexpected status 429"), true},
		{"message text", errors.New("Rate limit exceeded, retry later"), true},
		{"other", errors.New("connection refused"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsRateLimit(tt.err); got != tt.want {
				t.Errorf("IsRateLimit(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}
