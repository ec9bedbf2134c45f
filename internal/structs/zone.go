package structs

// DeliveryZone is loaded once at startup and never mutated afterwards.
type DeliveryZone struct {
	Name     string    `json:"name"`
	FeeMinor int64     `json:"feeMinor"`
	EtaRange string    `json:"etaRange"` // e.g. "30-45 mins"
	Centroid *GeoPoint `json:"centroid,omitempty"`
}
