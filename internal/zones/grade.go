package zones

import (
	"math"

	"kampalabites/internal/structs"

	"go.uber.org/fx"
)

// Grader composes the classifier and the resolver into the full
// per-candidate deliverability verdict.
type Grader struct {
	classifier *Classifier
	resolver   *Resolver
}

type GraderParams struct {
	fx.In
	Classifier *Classifier
	Resolver   *Resolver
}

func NewGrader(p GraderParams) *Grader {
	return &Grader{classifier: p.Classifier, resolver: p.Resolver}
}

// Grade classifies a candidate. Deliverability comes from name/alias evidence
// only; coordinates contribute the nearest zone, the distance and the metro
// flag. A candidate with no name match but a nearby centroid inside the metro
// radius is reported as "proximity-only" so the storefront can suggest
// confirming with support.
func (g *Grader) Grade(cand structs.PlaceCandidate) structs.DeliverabilityResult {
	res := structs.DeliverabilityResult{
		Candidate:        cand,
		DistanceToZoneKm: math.Inf(1),
		Confidence:       structs.ConfidenceNone,
	}

	if m, ok := g.classifier.Match(cand.Name); ok {
		zone := m.Zone
		res.IsDeliverable = true
		res.Confidence = m.Confidence
		res.Zone = &zone
	}

	if cand.Point != nil {
		nearest, dist := g.resolver.Nearest(*cand.Point)
		if nearest != nil {
			res.NearestZone = nearest.Name
			res.DistanceToZoneKm = dist
		}
		res.IsInMetroArea = g.resolver.WithinMetro(*cand.Point)

		if !res.IsDeliverable && nearest != nil && res.IsInMetroArea {
			res.Confidence = structs.ConfidenceProximity
		}
	}

	return res
}
