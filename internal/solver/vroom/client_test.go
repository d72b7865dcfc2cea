package vroom

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"

	"github.com/routeweaver/routeweaver/internal/problem"
	"github.com/routeweaver/routeweaver/internal/solver"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	return NewClient(ClientConfig{
		BaseURL:    server.URL,
		HTTPClient: server.Client(),
		Logger:     zerolog.Nop(),
	})
}

func translatedProblem() *problem.Problem {
	idx0, idx1 := 0, 1
	return &problem.Problem{
		Jobs: []problem.Job{
			{ID: 1, LocationIndex: &idx1},
		},
		Vehicles: []problem.Vehicle{
			{ID: 1, Profile: "driving-car", StartIndex: &idx0, EndIndex: &idx0},
		},
		Matrices: map[string]problem.MatrixPayload{
			"driving-car": {
				Durations: [][]int64{{0, 600}, {620, 0}},
				Distances: [][]int64{{0, 9000000}, {9100000, 0}},
			},
		},
	}
}

func TestClient_Solve_Success(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("expected POST, got %s", r.Method)
		}

		var p problem.Problem
		if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
			t.Fatalf("decoding request: %v", err)
		}
		if _, ok := p.Matrices["driving-car"]; !ok {
			t.Error("expected matrices under the profile key")
		}
		if len(p.Jobs) != 1 || p.Jobs[0].Location != nil {
			t.Error("expected index-only jobs")
		}

		w.Write([]byte(`{
			"code": 0,
			"summary": {"cost": 1220, "routes": 1, "unassigned": 0, "duration": 1220},
			"routes": [{
				"vehicle": 1,
				"cost": 1220,
				"duration": 1220,
				"steps": [
					{"type": "start", "location_index": 0},
					{"type": "job", "id": 1, "location_index": 1, "arrival": 600},
					{"type": "end", "location_index": 0, "arrival": 1220}
				]
			}]
		}`))
	})

	solution, err := client.Solve(context.Background(), translatedProblem())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if solution.Code != 0 {
		t.Errorf("expected code 0, got %d", solution.Code)
	}
	if len(solution.Routes) != 1 {
		t.Fatalf("expected 1 route, got %d", len(solution.Routes))
	}

	steps := solution.Routes[0].Steps
	if len(steps) != 3 {
		t.Fatalf("expected 3 steps, got %d", len(steps))
	}
	if steps[1].Type != "job" || steps[1].LocationIndex == nil || *steps[1].LocationIndex != 1 {
		t.Errorf("unexpected job step: %+v", steps[1])
	}
}

func TestClient_Solve_Unassigned(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(`{
			"code": 0,
			"summary": {"cost": 0, "routes": 0, "unassigned": 1},
			"unassigned": [{"id": 1, "type": "job"}],
			"routes": []
		}`))
	})

	solution, err := client.Solve(context.Background(), translatedProblem())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(solution.Unassigned) != 1 || solution.Unassigned[0].ID != 1 {
		t.Errorf("unexpected unassigned list: %+v", solution.Unassigned)
	}
}

func TestClient_Solve_UpstreamError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"error": "Invalid vehicle id"}`))
	})

	_, err := client.Solve(context.Background(), translatedProblem())
	if err == nil {
		t.Fatal("expected error, got nil")
	}
	if !errors.Is(err, solver.ErrRequestFailed) {
		t.Errorf("expected ErrRequestFailed, got %v", err)
	}

	var solverErr *solver.Error
	if !errors.As(err, &solverErr) {
		t.Fatalf("expected solver.Error, got %T", err)
	}
	if solverErr.StatusCode != http.StatusBadRequest {
		t.Errorf("expected status 400, got %d", solverErr.StatusCode)
	}
	if solverErr.Message != "Invalid vehicle id" {
		t.Errorf("expected upstream message, got %q", solverErr.Message)
	}
}

func TestClient_Solve_Unreachable(t *testing.T) {
	client := NewClient(ClientConfig{
		BaseURL: "http://127.0.0.1:1",
		HTTPClient: &http.Client{},
		Logger:  zerolog.Nop(),
	})

	_, err := client.Solve(context.Background(), translatedProblem())
	if !errors.Is(err, solver.ErrRequestFailed) {
		t.Errorf("expected ErrRequestFailed, got %v", err)
	}
}
