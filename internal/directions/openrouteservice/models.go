package openrouteservice

import "encoding/json"

// orsRequest is the ORS directions API request body.
type orsRequest struct {
	Coordinates [][]float64 `json:"coordinates"`
	Geometry    bool        `json:"geometry"`
	Units       string      `json:"units"`
	Options     *orsOptions `json:"options,omitempty"`
}

// orsOptions carries optional routing flags.
type orsOptions struct {
	AvoidFeatures []string `json:"avoid_features,omitempty"`
}

// orsResponse is the ORS directions API response.
type orsResponse struct {
	Routes []orsRoute `json:"routes"`
}

// orsRoute is a single candidate route.
//
// Geometry is deliberately raw: depending on request flags and deployment,
// ORS returns it as an encoded polyline string, a bare coordinate list, or a
// GeoJSON-style object with a coordinates field.
type orsRoute struct {
	Summary  orsSummary      `json:"summary"`
	Geometry json.RawMessage `json:"geometry"`
}

// orsSummary holds route totals.
type orsSummary struct {
	Distance *float64 `json:"distance"` // meters
	Duration *float64 `json:"duration"` // seconds
}

// orsErrorResponse is an ORS error body.
type orsErrorResponse struct {
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}
