package problem_test

import (
	"errors"
	"testing"

	"github.com/routeweaver/routeweaver/internal/directions"
	"github.com/routeweaver/routeweaver/internal/matrix"
	"github.com/routeweaver/routeweaver/internal/problem"
)

func loc(lat, lon float64) *problem.Location {
	l := problem.LocationFromCoordinate(directions.Coordinate{Lat: lat, Lon: lon})
	return &l
}

// buildMatrix hand-builds a zeroed matrix; the translator only attaches it.
func buildMatrix(t *testing.T, reg *matrix.Registry) *matrix.TravelMatrix {
	t.Helper()
	n := reg.Len()
	m := &matrix.TravelMatrix{
		Durations: make([][]int64, n),
		Distances: make([][]int64, n),
	}
	for i := 0; i < n; i++ {
		m.Durations[i] = make([]int64, n)
		m.Distances[i] = make([]int64, n)
	}
	return m
}

func TestRegisterLocations_ScanOrderAndDedup(t *testing.T) {
	p := &problem.Problem{
		Jobs: []problem.Job{
			{ID: 1, Location: loc(10, 20)},
			{ID: 2, Location: loc(10, 20)}, // duplicate of job 1
		},
		Shipments: []problem.Shipment{
			{
				Pickup:   problem.ShipmentStep{ID: 3, Location: loc(50, 60)},
				Delivery: problem.ShipmentStep{ID: 4, Location: loc(70, 80)},
			},
		},
		Vehicles: []problem.Vehicle{
			{ID: 5, Start: loc(30, 40)}, // no end point
		},
	}

	reg := matrix.NewRegistry()
	problem.RegisterLocations(p, reg)

	if reg.Len() != 4 {
		t.Fatalf("expected 4 distinct locations, got %d", reg.Len())
	}

	// Jobs scan before shipments, shipments before vehicles.
	wantOrder := []directions.Coordinate{
		{Lat: 10, Lon: 20},
		{Lat: 50, Lon: 60},
		{Lat: 70, Lon: 80},
		{Lat: 30, Lon: 40},
	}
	for i, want := range wantOrder {
		if reg.Coordinates()[i] != want {
			t.Errorf("position %d: expected %v, got %v", i, want, reg.Coordinates()[i])
		}
	}

	idxA, _ := reg.Index(directions.Coordinate{Lat: 10, Lon: 20})
	if idxA != 0 {
		t.Errorf("expected shared index 0 for duplicate job locations, got %d", idxA)
	}
}

func TestTranslate_IndexesAllEntities(t *testing.T) {
	p := &problem.Problem{
		Jobs: []problem.Job{
			{ID: 1, Location: loc(10, 20), Service: 300},
		},
		Shipments: []problem.Shipment{
			{
				Pickup:   problem.ShipmentStep{ID: 2, Location: loc(50, 60)},
				Delivery: problem.ShipmentStep{ID: 3, Location: loc(70, 80)},
				Amount:   []int64{1},
			},
		},
		Vehicles: []problem.Vehicle{
			{ID: 4, Start: loc(30, 40), End: loc(30, 40)},
		},
	}

	reg := matrix.NewRegistry()
	problem.RegisterLocations(p, reg)
	m := buildMatrix(t, reg)

	translated, err := problem.Translate(p, reg, m, directions.ProfileDriving)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	job := translated.Jobs[0]
	if job.Location != nil {
		t.Error("translated job must not carry a raw location")
	}
	if job.LocationIndex == nil || *job.LocationIndex != 0 {
		t.Errorf("expected job location_index 0, got %v", job.LocationIndex)
	}
	if job.Service != 300 {
		t.Errorf("expected service to be preserved, got %d", job.Service)
	}

	shipment := translated.Shipments[0]
	if shipment.Pickup.LocationIndex == nil || *shipment.Pickup.LocationIndex != 1 {
		t.Errorf("expected pickup index 1, got %v", shipment.Pickup.LocationIndex)
	}
	if shipment.Delivery.LocationIndex == nil || *shipment.Delivery.LocationIndex != 2 {
		t.Errorf("expected delivery index 2, got %v", shipment.Delivery.LocationIndex)
	}

	vehicle := translated.Vehicles[0]
	if vehicle.Start != nil || vehicle.End != nil {
		t.Error("translated vehicle must not carry raw locations")
	}
	if vehicle.StartIndex == nil || *vehicle.StartIndex != 3 {
		t.Errorf("expected start index 3, got %v", vehicle.StartIndex)
	}
	if vehicle.EndIndex == nil || *vehicle.EndIndex != 3 {
		t.Errorf("expected end index 3, got %v", vehicle.EndIndex)
	}
	if vehicle.Profile != string(directions.ProfileDriving) {
		t.Errorf("expected default profile, got %q", vehicle.Profile)
	}

	payload, ok := translated.Matrices[string(directions.ProfileDriving)]
	if !ok {
		t.Fatal("expected matrix attached under the profile key")
	}
	if len(payload.Durations) != reg.Len() {
		t.Errorf("expected %d duration rows, got %d", reg.Len(), len(payload.Durations))
	}
}

func TestTranslate_VehicleProfileNotOverridden(t *testing.T) {
	p := &problem.Problem{
		Vehicles: []problem.Vehicle{
			{ID: 1, Profile: string(directions.ProfileBike)},
		},
	}

	reg := matrix.NewRegistry()
	m := buildMatrix(t, reg)

	translated, err := problem.Translate(p, reg, m, directions.ProfileDriving)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if translated.Vehicles[0].Profile != string(directions.ProfileBike) {
		t.Errorf("explicit vehicle profile must be kept, got %q", translated.Vehicles[0].Profile)
	}
}

func TestTranslate_JobWithoutLocationFails(t *testing.T) {
	p := &problem.Problem{
		Jobs: []problem.Job{
			{ID: 1, Location: loc(10, 20)},
			{ID: 7},
		},
		Vehicles: []problem.Vehicle{{ID: 1}},
	}

	reg := matrix.NewRegistry()
	problem.RegisterLocations(p, reg)
	m := buildMatrix(t, reg)

	translated, err := problem.Translate(p, reg, m, directions.ProfileDriving)
	if translated != nil {
		t.Error("no partial translation may be returned")
	}
	if !errors.Is(err, problem.ErrMissingLocation) {
		t.Fatalf("expected ErrMissingLocation, got %v", err)
	}

	var missing *problem.MissingLocationError
	if !errors.As(err, &missing) {
		t.Fatalf("expected MissingLocationError, got %T", err)
	}
	if missing.JobID != 7 {
		t.Errorf("expected failing job id 7, got %d", missing.JobID)
	}
}

func TestTranslate_PreResolvedIndexKept(t *testing.T) {
	idx := 0
	p := &problem.Problem{
		Jobs:     []problem.Job{{ID: 1, LocationIndex: &idx}},
		Vehicles: []problem.Vehicle{{ID: 1}},
	}

	reg := matrix.NewRegistry()
	reg.Add(directions.Coordinate{Lat: 1, Lon: 1})
	m := buildMatrix(t, reg)

	translated, err := problem.Translate(p, reg, m, directions.ProfileDriving)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if translated.Jobs[0].LocationIndex == nil || *translated.Jobs[0].LocationIndex != 0 {
		t.Errorf("expected pre-resolved index to be kept")
	}
}

func TestTranslate_UnregisteredCoordinateIsFatal(t *testing.T) {
	p := &problem.Problem{
		Jobs:     []problem.Job{{ID: 1, Location: loc(10, 20)}},
		Vehicles: []problem.Vehicle{{ID: 1}},
	}

	// Registry deliberately empty: the job's coordinate was never scanned.
	reg := matrix.NewRegistry()
	m := buildMatrix(t, reg)

	_, err := problem.Translate(p, reg, m, directions.ProfileDriving)
	if !errors.Is(err, matrix.ErrLocationNotFound) {
		t.Errorf("expected ErrLocationNotFound, got %v", err)
	}
}
