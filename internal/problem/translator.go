package problem

import (
	"errors"
	"fmt"

	"github.com/routeweaver/routeweaver/internal/directions"
	"github.com/routeweaver/routeweaver/internal/matrix"
)

// ErrMissingLocation indicates a job without a resolvable position.
// Matrix-based solving requires every job to be positionally resolvable, so
// this is fatal to the solve operation.
var ErrMissingLocation = errors.New("job has no location")

// MissingLocationError names the offending job.
type MissingLocationError struct {
	JobID int64
}

func (e *MissingLocationError) Error() string {
	return fmt.Sprintf("job %d has no location", e.JobID)
}

func (e *MissingLocationError) Unwrap() error {
	return ErrMissingLocation
}

// RegisterLocations scans p and registers every raw coordinate it references
// into reg: jobs first, then shipment pickups and deliveries, then vehicle
// start and end points. Absent fields are skipped.
func RegisterLocations(p *Problem, reg *matrix.Registry) {
	for _, job := range p.Jobs {
		registerLocation(reg, job.Location)
	}
	for _, shipment := range p.Shipments {
		registerLocation(reg, shipment.Pickup.Location)
		registerLocation(reg, shipment.Delivery.Location)
	}
	for _, vehicle := range p.Vehicles {
		registerLocation(reg, vehicle.Start)
		registerLocation(reg, vehicle.End)
	}
}

func registerLocation(reg *matrix.Registry, loc *Location) {
	if loc != nil {
		reg.Add(loc.Coordinate())
	}
}

// Translate rewrites p into an equivalent problem expressed purely in
// location indices, with the travel matrix attached under the profile key.
// The input problem is not modified; on error no partial result is returned.
func Translate(p *Problem, reg *matrix.Registry, m *matrix.TravelMatrix, profile directions.Profile) (*Problem, error) {
	out := &Problem{
		Jobs:      make([]Job, len(p.Jobs)),
		Shipments: make([]Shipment, len(p.Shipments)),
		Vehicles:  make([]Vehicle, len(p.Vehicles)),
	}
	if len(p.Jobs) == 0 {
		out.Jobs = nil
	}
	if len(p.Shipments) == 0 {
		out.Shipments = nil
	}

	for i, job := range p.Jobs {
		translated := job
		switch {
		case job.LocationIndex != nil:
			translated.Location = nil
		case job.Location != nil:
			idx, err := reg.Index(job.Location.Coordinate())
			if err != nil {
				return nil, fmt.Errorf("job %d: %w", job.ID, err)
			}
			translated.LocationIndex = &idx
			translated.Location = nil
		default:
			return nil, &MissingLocationError{JobID: job.ID}
		}
		out.Jobs[i] = translated
	}

	for i, shipment := range p.Shipments {
		translated := shipment

		pickup, err := translateShipmentStep(shipment.Pickup, reg)
		if err != nil {
			return nil, fmt.Errorf("shipment pickup %d: %w", shipment.Pickup.ID, err)
		}
		translated.Pickup = pickup

		delivery, err := translateShipmentStep(shipment.Delivery, reg)
		if err != nil {
			return nil, fmt.Errorf("shipment delivery %d: %w", shipment.Delivery.ID, err)
		}
		translated.Delivery = delivery

		out.Shipments[i] = translated
	}

	for i, vehicle := range p.Vehicles {
		translated := vehicle

		// Every vehicle gets an explicit profile so the solver can find
		// its matrix.
		if translated.Profile == "" {
			translated.Profile = string(profile)
		}

		if vehicle.StartIndex == nil && vehicle.Start != nil {
			idx, err := reg.Index(vehicle.Start.Coordinate())
			if err != nil {
				return nil, fmt.Errorf("vehicle %d start: %w", vehicle.ID, err)
			}
			translated.StartIndex = &idx
		}
		translated.Start = nil

		if vehicle.EndIndex == nil && vehicle.End != nil {
			idx, err := reg.Index(vehicle.End.Coordinate())
			if err != nil {
				return nil, fmt.Errorf("vehicle %d end: %w", vehicle.ID, err)
			}
			translated.EndIndex = &idx
		}
		translated.End = nil

		out.Vehicles[i] = translated
	}

	out.Matrices = map[string]MatrixPayload{
		string(profile): {
			Durations: m.Durations,
			Distances: m.Distances,
		},
	}

	return out, nil
}

func translateShipmentStep(step ShipmentStep, reg *matrix.Registry) (ShipmentStep, error) {
	translated := step
	if step.LocationIndex == nil && step.Location != nil {
		idx, err := reg.Index(step.Location.Coordinate())
		if err != nil {
			return ShipmentStep{}, err
		}
		translated.LocationIndex = &idx
	}
	translated.Location = nil
	return translated, nil
}
