package locsession

import (
	"context"
	"math"
	"strings"
	"time"
	"unicode/utf8"

	"kampalabites/internal/geocode"
	"kampalabites/internal/geolocate"
	"kampalabites/internal/structs"
	"kampalabites/internal/zones"
	"kampalabites/pkg/config"
	"kampalabites/pkg/logger"
	"kampalabites/pkg/repository/recent"

	"go.uber.org/fx"
	"go.uber.org/zap"
)

var Module = fx.Provide(New)

type (
	Params struct {
		fx.In
		Searcher   geocode.Searcher
		Classifier *zones.Classifier
		Resolver   *zones.Resolver
		Registry   *zones.Registry
		Recent     recent.Repo
		Config     config.IConfig
		Logger     logger.Logger
	}

	// Service is the engine's produced API: free-text resolution, device
	// position resolution, zone selection and the recent-selections list.
	// Interactive consumers get a per-input-field Session via NewSession.
	Service struct {
		searcher   geocode.Searcher
		classifier *zones.Classifier
		resolver   *zones.Resolver
		registry   *zones.Registry
		recent     recent.Repo
		logger     logger.Logger

		autoAssignKm  float64
		intentDelay   time.Duration
		courtesyDelay time.Duration
		highTimeout   time.Duration
		lowTimeout    time.Duration
	}
)

func New(p Params) *Service {
	return &Service{
		searcher:      p.Searcher,
		classifier:    p.Classifier,
		resolver:      p.Resolver,
		registry:      p.Registry,
		recent:        p.Recent,
		logger:        p.Logger,
		autoAssignKm:  p.Config.GetFloat64("zones.auto_assign_km"),
		intentDelay:   p.Config.GetDuration("session.debounce_intent"),
		courtesyDelay: p.Config.GetDuration("session.debounce_courtesy"),
		highTimeout:   p.Config.GetDuration("geolocate.high_timeout"),
		lowTimeout:    p.Config.GetDuration("geolocate.low_timeout"),
	}
}

// ResolveFreeText is the synchronous resolution path: one query, one
// classified result set, remote suggestions merged with local alias matches.
func (s *Service) ResolveFreeText(ctx context.Context, query string) []structs.DeliverabilityResult {
	q := strings.TrimSpace(query)
	if utf8.RuneCountInString(q) < geocode.MinQueryLen {
		return []structs.DeliverabilityResult{}
	}
	res := s.searcher.Search(ctx, q)
	return s.merge(q, res.Candidates)
}

// ResolvePosition classifies a raw device position. A zone is auto-assigned
// only when its centroid is closer than the auto-assign radius, which is
// deliberately tighter than the metro radius: an automatic assignment is a
// stronger claim than "mention as nearby".
func (s *Service) ResolvePosition(pt structs.GeoPoint) structs.ResolvedLocation {
	nearest, dist := s.resolver.Nearest(pt)

	if nearest != nil && dist < s.autoAssignKm {
		return structs.ResolvedLocation{
			Serviceable: true,
			Zone:        nearest,
			Source:      structs.SourceDevice,
			NearestZone: nearest.Name,
			DistanceKm:  dist,
		}
	}

	out := structs.ResolvedLocation{
		Serviceable: false,
		Source:      structs.SourceDevice,
		DistanceKm:  dist,
	}
	if nearest != nil {
		out.NearestZone = nearest.Name
	}
	return out
}

// Select records a customer's chosen zone and feeds the recent list.
func (s *Service) Select(ctx context.Context, owner, zoneName string, source structs.LocationSource) (structs.ResolvedLocation, error) {
	zone, ok := s.registry.ByName(zoneName)
	if !ok {
		return structs.ResolvedLocation{}, structs.ErrNotFound
	}
	if source == "" {
		source = structs.SourceSuggestion
	}

	if err := s.recent.Append(ctx, owner, zone.Name); err != nil {
		// the selection itself must not fail on a bookkeeping error
		s.logger.Warn(ctx, "failed to record recent zone selection",
			zap.Error(err), zap.String("zone", zone.Name))
	}

	return structs.ResolvedLocation{
		Serviceable: true,
		Zone:        &zone,
		Source:      source,
	}, nil
}

func (s *Service) Recent(ctx context.Context, owner string) ([]string, error) {
	return s.recent.Get(ctx, owner)
}

func (s *Service) ClearRecent(ctx context.Context, owner string) error {
	return s.recent.Clear(ctx, owner)
}

// localMatches surfaces zones the query itself denotes, computed without any
// network round trip, so known zones appear even when the geocoder is down.
func (s *Service) localMatches(query string) []structs.DeliverabilityResult {
	matches := s.classifier.Matches(query)
	out := make([]structs.DeliverabilityResult, 0, len(matches))
	for _, m := range matches {
		zone := m.Zone
		res := structs.DeliverabilityResult{
			Candidate: structs.PlaceCandidate{
				Name:        zone.Name,
				DisplayName: zone.Name,
				Point:       zone.Centroid,
			},
			IsDeliverable:    true,
			Confidence:       m.Confidence,
			Zone:             &zone,
			DistanceToZoneKm: math.Inf(1),
		}
		if zone.Centroid != nil {
			res.NearestZone = zone.Name
			res.DistanceToZoneKm = 0
			res.IsInMetroArea = s.resolver.WithinMetro(*zone.Centroid)
		}
		out = append(out, res)
	}
	return out
}

// merge puts local alias matches first, then remote candidates, deduplicated
// by display name with the first occurrence winning.
func (s *Service) merge(query string, remote []structs.DeliverabilityResult) []structs.DeliverabilityResult {
	local := s.localMatches(query)

	seen := make(map[string]struct{}, len(local)+len(remote))
	merged := make([]structs.DeliverabilityResult, 0, len(local)+len(remote))
	for _, r := range append(local, remote...) {
		key := strings.ToLower(r.Candidate.DisplayName)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		merged = append(merged, r)
	}
	return merged
}

// NewSession creates a per-input-field session. The provider is the transport
// that can actually reach the device's position API (e.g. a websocket
// round-trip to the storefront).
func (s *Service) NewSession(provider geolocate.Provider) *Session {
	return &Session{
		svc:           s,
		locator:       geolocate.NewLocator(provider, s.logger, s.highTimeout, s.lowTimeout),
		updates:       make(chan Update, updateBuffer),
		intentDelay:   s.intentDelay,
		courtesyDelay: s.courtesyDelay,
	}
}
