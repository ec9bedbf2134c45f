package geocode

import (
	"context"
	"encoding/json"
	"math"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"kampalabites/internal/structs"
	"kampalabites/internal/zones"
	"kampalabites/pkg/logger"
)

func testGrader() *zones.Grader {
	reg := zones.NewRegistry(
		[]structs.DeliveryZone{
			{Name: "Kololo", FeeMinor: 4000, EtaRange: "25-40 mins", Centroid: &structs.GeoPoint{Lat: 0.3313, Lng: 32.5937}},
			{Name: "Nakawa", FeeMinor: 5000, EtaRange: "30-45 mins", Centroid: &structs.GeoPoint{Lat: 0.3350, Lng: 32.6250}},
		},
		nil,
	)
	return zones.NewGrader(zones.GraderParams{
		Classifier: zones.NewClassifier(reg),
		Resolver:   zones.NewResolver(reg, structs.GeoPoint{Lat: 0.3136, Lng: 32.5811}, 25),
	})
}

func newTestClient(baseURL string, grader *zones.Grader) Searcher {
	return NewClient(baseURL, "Uganda", "en", 6, structs.GeoPoint{Lat: 0.3136, Lng: 32.5811}, grader, logger.New("error"))
}

const photonBody = `{
	"features": [
		{
			"properties": {"name": "Kololo", "city": "Kampala", "country": "Uganda", "osm_value": "suburb"},
			"geometry": {"coordinates": [32.5937, 0.3313]}
		},
		{
			"properties": {"name": "Kololo", "locality": "kololo", "city": "Kampala", "country": "Uganda", "osm_value": "hill"},
			"geometry": {"coordinates": [32.5940, 0.3310]}
		},
		{
			"properties": {"name": "Kololo", "city": "Nairobi", "country": "Kenya", "osm_value": "suburb"},
			"geometry": {"coordinates": [36.8, -1.28]}
		},
		{
			"properties": {"name": "", "country": "Uganda"},
			"geometry": {"coordinates": [32.6, 0.33]}
		},
		{
			"properties": {"name": "Kisementi", "locality": "Kamwokya", "city": "Kampala", "country": "Uganda", "type": "square"},
			"geometry": {"coordinates": [32.5910, 0.3330]}
		}
	]
}`

func TestSearch_ShortQuerySkipsNetwork(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
	}))
	defer srv.Close()

	c := newTestClient(srv.URL, testGrader())
	for _, q := range []string{"", " ", "K", "  k  "} {
		res := c.Search(context.Background(), q)
		if res.Stale || len(res.Candidates) != 0 {
			t.Fatalf("expected empty fresh result for %q, got %+v", q, res)
		}
	}
	if atomic.LoadInt32(&calls) != 0 {
		t.Fatalf("expected no network calls, got %d", calls)
	}
}

func TestSearch_FiltersClassifiesAndDedupes(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("q"); got != "Kololo" {
			t.Errorf("unexpected query param: %q", got)
		}
		if r.URL.Query().Get("lang") != "en" {
			t.Errorf("missing lang param")
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(photonBody))
	}))
	defer srv.Close()

	c := newTestClient(srv.URL, testGrader())
	res := c.Search(context.Background(), "Kololo")
	if res.Stale {
		t.Fatal("unexpected stale result")
	}

	// the Kenyan feature and the blank-name feature drop out; the second
	// Kololo feature collapses into the first by display name
	if len(res.Candidates) != 2 {
		t.Fatalf("expected 2 candidates, got %d: %+v", len(res.Candidates), res.Candidates)
	}

	first := res.Candidates[0]
	if first.Candidate.DisplayName != "Kololo, Kampala" {
		t.Fatalf("unexpected display name: %q", first.Candidate.DisplayName)
	}
	if !first.IsDeliverable || first.Confidence != structs.ConfidenceExact {
		t.Fatalf("expected exact Kololo classification, got %+v", first)
	}
	if first.Candidate.Point == nil || first.Candidate.Point.Lat != 0.3313 {
		t.Fatalf("coordinates not mapped [lon, lat]: %+v", first.Candidate.Point)
	}

	second := res.Candidates[1]
	if second.Candidate.DisplayName != "Kisementi, Kamwokya, Kampala" {
		t.Fatalf("unexpected display name: %q", second.Candidate.DisplayName)
	}
	if second.Candidate.PlaceType != "square" {
		t.Fatalf("expected type fallback when osm_value is blank, got %q", second.Candidate.PlaceType)
	}
	if second.IsDeliverable {
		t.Fatalf("Kisementi should not be deliverable by name: %+v", second)
	}
	if second.Confidence != structs.ConfidenceProximity {
		t.Fatalf("expected proximity-only confidence, got %q", second.Confidence)
	}
}

func TestSearch_ProviderErrorsDegradeToEmpty(t *testing.T) {
	cases := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{"server error", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadGateway)
		}},
		{"malformed body", func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"features": [`))
		}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			srv := httptest.NewServer(tc.handler)
			defer srv.Close()

			c := newTestClient(srv.URL, testGrader())
			res := c.Search(context.Background(), "Kololo")
			if res.Stale {
				t.Fatal("provider failure must not look stale")
			}
			if res.Candidates == nil || len(res.Candidates) != 0 {
				t.Fatalf("expected empty candidates, got %+v", res.Candidates)
			}
		})
	}
}

func TestSearch_CandidateWithoutCoordinatesStillEncodes(t *testing.T) {
	// providers sometimes return a named feature with no geometry; it must
	// survive classification and the JSON boundary without a distance
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{
			"features": [
				{"properties": {"name": "Kisementi", "city": "Kampala", "country": "Uganda", "osm_value": "square"}}
			]
		}`))
	}))
	defer srv.Close()

	c := newTestClient(srv.URL, testGrader())
	res := c.Search(context.Background(), "Kisementi")
	if len(res.Candidates) != 1 {
		t.Fatalf("expected 1 candidate, got %+v", res.Candidates)
	}

	cand := res.Candidates[0]
	if cand.Candidate.Point != nil {
		t.Fatalf("expected no point, got %+v", cand.Candidate.Point)
	}
	if !math.IsInf(cand.DistanceToZoneKm, 1) {
		t.Fatalf("expected the no-coordinates sentinel, got %v", cand.DistanceToZoneKm)
	}

	b, err := json.Marshal(structs.Response{Status: "ok", Payload: res.Candidates})
	if err != nil {
		t.Fatalf("response must encode: %v", err)
	}
	if strings.Contains(string(b), "distanceToZoneKm") {
		t.Fatalf("sentinel distance leaked into wire form: %s", b)
	}
}

func TestSearch_CancelledContextIsStale(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(photonBody))
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	c := newTestClient(srv.URL, testGrader())
	res := c.Search(ctx, "Kololo")
	if !res.Stale {
		t.Fatal("expected stale result for cancelled context")
	}
	if len(res.Candidates) != 0 {
		t.Fatalf("expected no candidates, got %+v", res.Candidates)
	}
}

func TestBuildDisplayName(t *testing.T) {
	cases := []struct {
		parts []string
		want  string
	}{
		{[]string{"Kololo", "", "Kampala Central", "Kampala", "Uganda"}, "Kololo, Kampala Central, Kampala"},
		{[]string{"Kololo", "kololo", "Kampala"}, "Kololo, Kampala"},
		{[]string{"", "  ", ""}, ""},
		{[]string{"Ntinda"}, "Ntinda"},
	}
	for _, tc := range cases {
		if got := buildDisplayName(tc.parts...); got != tc.want {
			t.Fatalf("buildDisplayName(%v) = %q, want %q", tc.parts, got, tc.want)
		}
	}
}
