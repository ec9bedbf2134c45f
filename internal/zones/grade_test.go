package zones

import (
	"math"
	"testing"

	"kampalabites/internal/structs"
)

func testGrader(metroCenter structs.GeoPoint, metroKm float64) *Grader {
	reg := NewRegistry(
		[]structs.DeliveryZone{
			{Name: "Kololo", FeeMinor: 4000, EtaRange: "25-40 mins", Centroid: &structs.GeoPoint{Lat: 0, Lng: 0}},
			{Name: "Nakawa", FeeMinor: 5000, EtaRange: "30-45 mins", Centroid: &structs.GeoPoint{Lat: 0, Lng: 0.05}},
		},
		nil,
	)
	return &Grader{
		classifier: NewClassifier(reg),
		resolver:   NewResolver(reg, metroCenter, metroKm),
	}
}

func TestGrade_ExactNameMatch(t *testing.T) {
	g := testGrader(structs.GeoPoint{}, 25)

	res := g.Grade(structs.PlaceCandidate{Name: "Kololo"})
	if !res.IsDeliverable || res.Confidence != structs.ConfidenceExact {
		t.Fatalf("unexpected result: %+v", res)
	}
	if res.Zone == nil || res.Zone.Name != "Kololo" {
		t.Fatalf("expected Kololo zone, got %+v", res.Zone)
	}
	// no point given, so no proximity data
	if res.NearestZone != "" || !math.IsInf(res.DistanceToZoneKm, 1) || res.IsInMetroArea {
		t.Fatalf("unexpected proximity data: %+v", res)
	}
}

func TestGrade_ProximityOnly(t *testing.T) {
	g := testGrader(structs.GeoPoint{}, 25)

	// unrecognized name but ~2 km from the Nakawa centroid
	res := g.Grade(structs.PlaceCandidate{
		Name:  "Jinja Road Roundabout",
		Point: &structs.GeoPoint{Lat: 0.018, Lng: 0.05},
	})
	if res.IsDeliverable {
		t.Fatal("proximity must never grant deliverability")
	}
	if res.Confidence != structs.ConfidenceProximity {
		t.Fatalf("expected proximity-only confidence, got %q", res.Confidence)
	}
	if res.NearestZone != "Nakawa" {
		t.Fatalf("expected Nakawa nearest, got %q", res.NearestZone)
	}
	if res.DistanceToZoneKm > 2.5 {
		t.Fatalf("unexpected distance: %v", res.DistanceToZoneKm)
	}
	if !res.IsInMetroArea {
		t.Fatal("expected point inside metro area")
	}
}

func TestGrade_OutsideMetroStaysNone(t *testing.T) {
	g := testGrader(structs.GeoPoint{}, 25)

	// unrecognized name, nearest zone exists but the point is far outside metro
	res := g.Grade(structs.PlaceCandidate{
		Name:  "Entebbe Pier",
		Point: &structs.GeoPoint{Lat: 0, Lng: 0.5},
	})
	if res.IsDeliverable || res.Confidence != structs.ConfidenceNone {
		t.Fatalf("unexpected result: %+v", res)
	}
	if res.NearestZone != "Nakawa" {
		t.Fatalf("nearest zone should still be reported, got %q", res.NearestZone)
	}
	if res.IsInMetroArea {
		t.Fatal("expected point outside metro area")
	}
}

func TestGrade_NameMatchKeepsConfidenceDespitePoint(t *testing.T) {
	g := testGrader(structs.GeoPoint{}, 25)

	res := g.Grade(structs.PlaceCandidate{
		Name:  "Kololo Hill",
		Point: &structs.GeoPoint{Lat: 0, Lng: 0.001},
	})
	if !res.IsDeliverable || res.Confidence != structs.ConfidenceAlias {
		t.Fatalf("unexpected result: %+v", res)
	}
	if res.NearestZone != "Kololo" {
		t.Fatalf("expected Kololo nearest, got %q", res.NearestZone)
	}
}
