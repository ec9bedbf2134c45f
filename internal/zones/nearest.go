package zones

import (
	"math"

	"kampalabites/internal/geo"
	"kampalabites/internal/structs"
	"kampalabites/pkg/config"

	"go.uber.org/fx"
)

// Resolver finds the zone whose centroid is closest to a point. Zones without
// a centroid are never selected.
type Resolver struct {
	reg         *Registry
	metroCenter structs.GeoPoint
	metroKm     float64
}

type ResolverParams struct {
	fx.In
	Registry *Registry
	Config   config.IConfig
}

func NewResolverFromConfig(p ResolverParams) *Resolver {
	return NewResolver(
		p.Registry,
		structs.GeoPoint{
			Lat: p.Config.GetFloat64("zones.metro_lat"),
			Lng: p.Config.GetFloat64("zones.metro_lng"),
		},
		p.Config.GetFloat64("zones.metro_radius_km"),
	)
}

func NewResolver(reg *Registry, metroCenter structs.GeoPoint, metroRadiusKm float64) *Resolver {
	return &Resolver{
		reg:         reg,
		metroCenter: metroCenter,
		metroKm:     metroRadiusKm,
	}
}

// Nearest returns the closest zone and its distance, or (nil, +Inf) when no
// zone has a centroid. Ties resolve to the first zone in registry order.
func (r *Resolver) Nearest(p structs.GeoPoint) (*structs.DeliveryZone, float64) {
	var (
		best     *structs.DeliveryZone
		bestDist = math.Inf(1)
	)
	for i := range r.reg.zones {
		z := r.reg.zones[i]
		if z.Centroid == nil {
			continue
		}
		d := geo.DistanceKm(p, *z.Centroid)
		if d < bestDist {
			best = &z
			bestDist = d
		}
	}
	return best, bestDist
}

// WithinMetro reports whether the point lies inside the metro radius. It only
// decides whether an out-of-zone point is worth mentioning as nearby; it never
// grants deliverability.
func (r *Resolver) WithinMetro(p structs.GeoPoint) bool {
	return geo.WithinRadiusKm(p, r.metroCenter, r.metroKm)
}
