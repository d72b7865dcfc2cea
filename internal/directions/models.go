// Package directions provides pairwise travel measurement between geographic
// points via an external directions provider.
package directions

import (
	"context"
	"errors"
	"strings"
)

// Sentinel errors for directions operations.
var (
	// ErrRateLimited indicates the provider rejected the request due to quota.
	ErrRateLimited = errors.New("directions provider rate limit exceeded")
	// ErrUpstream indicates a non-rate-limit failure from the provider.
	ErrUpstream = errors.New("directions provider request failed")
	// ErrInvalidCoordinates indicates coordinates outside valid geographic ranges.
	ErrInvalidCoordinates = errors.New("invalid coordinates")
)

// Provider executes a single directions request for one leg.
// Implementations perform no retries; retry policy belongs to the Gateway.
type Provider interface {
	// FetchLeg measures travel between two points under the given profile.
	FetchLeg(ctx context.Context, req LegRequest) (*Leg, error)
	// Name returns the provider identifier for logging and health tracking.
	Name() string
}

// Profile is a named travel mode understood by the directions provider
// and used as the matrix key on solver requests.
type Profile string

const (
	// ProfileDriving is the default car profile.
	ProfileDriving Profile = "driving-car"
	// ProfileTruck is the heavy goods vehicle profile.
	ProfileTruck Profile = "driving-hgv"
	// ProfileBike is the regular cycling profile.
	ProfileBike Profile = "cycling-regular"
	// ProfileWalk is the pedestrian profile.
	ProfileWalk Profile = "foot-walking"
)

// ParseProfile validates a profile name. The empty string selects
// ProfileDriving.
func ParseProfile(s string) (Profile, bool) {
	switch Profile(s) {
	case "":
		return ProfileDriving, true
	case ProfileDriving, ProfileTruck, ProfileBike, ProfileWalk:
		return Profile(s), true
	}
	return "", false
}

// Coordinate is a geographic point. Identity is exact value equality; two
// coordinates name the same location iff both components are equal.
type Coordinate struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// LegRequest asks for travel measurements for one directed origin-destination pair.
type LegRequest struct {
	From    Coordinate
	To      Coordinate
	Profile Profile
	Options LegOptions
}

// LegOptions carries optional flags forwarded to the provider.
type LegOptions struct {
	// Units for distances in the provider response (default "m").
	Units string
	// Avoid lists road features to avoid (e.g. "tollways", "ferries").
	Avoid []string
}

// Leg is the measured result for one origin-destination pair.
//
// Geometry is the canonical encoded-polyline representation; the empty string
// means no geometry was available. Providers normalize whatever shape the
// upstream returns into this single form so downstream consumers never branch
// on source shape.
type Leg struct {
	DurationSeconds float64
	DistanceMeters  float64
	Geometry        string
	// NoRoute is set when the provider answered successfully but returned
	// zero candidate routes. Callers substitute sentinel measurements.
	NoRoute bool
}

// Error carries provider failure details.
type Error struct {
	Provider string // provider that generated the error
	Code     string // provider-specific error code
	Message  string // human-readable message
	Err      error  // underlying sentinel error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// IsRateLimit reports whether err is a rate-limit failure, either typed as
// ErrRateLimited or carrying an equivalent rate-limit signal in its message.
func IsRateLimit(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrRateLimited) {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "429") || strings.Contains(msg, "rate limit")
}

// ValidateCoordinate checks that c is within valid geographic ranges.
func ValidateCoordinate(c Coordinate) error {
	if c.Lat < -90 || c.Lat > 90 {
		return ErrInvalidCoordinates
	}
	if c.Lon < -180 || c.Lon > 180 {
		return ErrInvalidCoordinates
	}
	return nil
}
