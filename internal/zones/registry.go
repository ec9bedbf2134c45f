package zones

import (
	"context"
	"fmt"
	"strings"

	"kampalabites/internal/structs"
	"kampalabites/pkg/logger"
	zonerepo "kampalabites/pkg/repository/postgres/zone_repo"

	"go.uber.org/fx"
	"go.uber.org/zap"
)

var Module = fx.Options(
	fx.Provide(NewFromRepo),
	fx.Provide(NewClassifier),
	fx.Provide(NewResolverFromConfig),
	fx.Provide(NewGrader),
)

type Params struct {
	fx.In
	Logger   logger.Logger
	ZoneRepo zonerepo.Repo
}

// Registry is the immutable zone catalog. Iteration order is the load order,
// which classification and nearest-zone ties both depend on.
type Registry struct {
	zones   []structs.DeliveryZone
	byName  map[string]int
	aliases map[string][]string // canonical name -> lowercase aliases
}

func NewFromRepo(p Params) (*Registry, error) {
	ctx := context.Background()

	zones, err := p.ZoneRepo.LoadZones(ctx)
	if err != nil {
		return nil, fmt.Errorf("load zones: %w", err)
	}
	if len(zones) == 0 {
		return nil, fmt.Errorf("zone catalog is empty")
	}
	aliases, err := p.ZoneRepo.LoadAliases(ctx)
	if err != nil {
		return nil, fmt.Errorf("load zone aliases: %w", err)
	}

	p.Logger.Info(ctx, "zone registry loaded",
		zap.Int("zones", len(zones)),
		zap.Int("aliased", len(aliases)),
	)
	return NewRegistry(zones, aliases), nil
}

func NewRegistry(zones []structs.DeliveryZone, aliases map[string][]string) *Registry {
	r := &Registry{
		zones:   make([]structs.DeliveryZone, len(zones)),
		byName:  make(map[string]int, len(zones)),
		aliases: make(map[string][]string, len(aliases)),
	}
	copy(r.zones, zones)
	for i, z := range r.zones {
		if _, ok := r.byName[z.Name]; !ok {
			r.byName[z.Name] = i
		}
	}
	for name, list := range aliases {
		lowered := make([]string, 0, len(list))
		for _, a := range list {
			lowered = append(lowered, strings.ToLower(strings.TrimSpace(a)))
		}
		r.aliases[name] = lowered
	}
	return r
}

// All returns the zones in stable registry order.
func (r *Registry) All() []structs.DeliveryZone {
	out := make([]structs.DeliveryZone, len(r.zones))
	copy(out, r.zones)
	return out
}

// ByName is an exact, case-sensitive lookup on the canonical name.
func (r *Registry) ByName(name string) (structs.DeliveryZone, bool) {
	i, ok := r.byName[name]
	if !ok {
		return structs.DeliveryZone{}, false
	}
	return r.zones[i], true
}

// Aliases returns the lowercase informal names of a zone.
func (r *Registry) Aliases(name string) []string {
	return r.aliases[name]
}
