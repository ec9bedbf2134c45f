package structs

import (
	"encoding/json"
	"math"
)

type Confidence string

const (
	ConfidenceExact     Confidence = "exact"
	ConfidenceAlias     Confidence = "alias"
	ConfidenceProximity Confidence = "proximity-only"
	ConfidenceNone      Confidence = "none"
)

type LocationSource string

const (
	SourceTyped      LocationSource = "typed"
	SourceSuggestion LocationSource = "suggestion"
	SourceDevice     LocationSource = "device-location"
)

// PlaceCandidate is a transient per-query result from the place-search provider
// or from the local alias table.
type PlaceCandidate struct {
	Name        string    `json:"name"`
	DisplayName string    `json:"displayName"`
	Point       *GeoPoint `json:"point,omitempty"`
	PlaceType   string    `json:"placeType,omitempty"`
	Country     string    `json:"country,omitempty"`
}

// DeliverabilityResult is a fully classified candidate.
type DeliverabilityResult struct {
	Candidate        PlaceCandidate `json:"candidate"`
	NearestZone      string         `json:"nearestZone,omitempty"`
	DistanceToZoneKm float64        `json:"distanceToZoneKm"`
	IsInMetroArea    bool           `json:"isInMetroArea"`
	IsDeliverable    bool           `json:"isDeliverable"`
	Confidence       Confidence     `json:"confidence"`
	Zone             *DeliveryZone  `json:"zone,omitempty"`
}

// +Inf is the internal "no zone with a centroid" sentinel. encoding/json
// cannot carry it, so the wire form drops the field instead.
func (r DeliverabilityResult) MarshalJSON() ([]byte, error) {
	type plain DeliverabilityResult
	out := struct {
		plain
		DistanceToZoneKm *float64 `json:"distanceToZoneKm,omitempty"`
	}{plain: plain(r)}
	if !math.IsInf(r.DistanceToZoneKm, 0) {
		out.DistanceToZoneKm = &r.DistanceToZoneKm
	}
	return json.Marshal(out)
}

// ResolvedLocation is the final customer-facing outcome of a resolution:
// either a zone assignment, or NotServiceable with the nearest zone attached.
type ResolvedLocation struct {
	Serviceable bool           `json:"serviceable"`
	Zone        *DeliveryZone  `json:"zone,omitempty"`
	Source      LocationSource `json:"source"`
	NearestZone string         `json:"nearestZone,omitempty"`
	DistanceKm  float64        `json:"distanceKm,omitempty"`
}

func (r ResolvedLocation) MarshalJSON() ([]byte, error) {
	type plain ResolvedLocation
	out := struct {
		plain
		DistanceKm *float64 `json:"distanceKm,omitempty"`
	}{plain: plain(r)}
	if !math.IsInf(r.DistanceKm, 0) && r.DistanceKm != 0 {
		out.DistanceKm = &r.DistanceKm
	}
	return json.Marshal(out)
}
