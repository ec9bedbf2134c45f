package eta

import (
	"fmt"
	"regexp"
	"strconv"
	"time"

	"kampalabites/internal/structs"
	"kampalabites/internal/zones"

	"go.uber.org/fx"
)

var Module = fx.Provide(New)

const peakPaddingMins = 15

var rangeRe = regexp.MustCompile(`^(\d+)\s*-\s*(\d+)(.*)$`)

// Adjust pads both bounds of an ETA range like "30-45 mins" by 15 minutes
// during lunch (12:00-14:00) and dinner (18:00-20:00) rush. Ranges it cannot
// parse pass through unchanged.
func Adjust(etaRange string, now time.Time) string {
	if !isPeakHour(now.Hour()) {
		return etaRange
	}

	m := rangeRe.FindStringSubmatch(etaRange)
	if m == nil {
		return etaRange
	}
	lo, _ := strconv.Atoi(m[1])
	hi, _ := strconv.Atoi(m[2])
	return fmt.Sprintf("%d-%d%s", lo+peakPaddingMins, hi+peakPaddingMins, m[3])
}

func isPeakHour(hour int) bool {
	return (hour >= 12 && hour < 14) || (hour >= 18 && hour < 20)
}

type (
	Params struct {
		fx.In
		Registry *zones.Registry
	}

	// Service resolves a zone's ETA range against the wall clock.
	Service interface {
		AdjustedEta(zoneName string) (structs.DeliveryZone, string, error)
	}

	service struct {
		registry *zones.Registry
		now      func() time.Time
	}
)

func New(p Params) Service {
	return &service{
		registry: p.Registry,
		now:      time.Now,
	}
}

func (s service) AdjustedEta(zoneName string) (structs.DeliveryZone, string, error) {
	zone, ok := s.registry.ByName(zoneName)
	if !ok {
		return structs.DeliveryZone{}, "", structs.ErrNotFound
	}
	return zone, Adjust(zone.EtaRange, s.now()), nil
}
