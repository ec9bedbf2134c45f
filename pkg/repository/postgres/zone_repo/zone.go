package zonerepo

import (
	"context"
	"fmt"

	"kampalabites/internal/structs"
	"kampalabites/pkg/db"
	"kampalabites/pkg/logger"

	"go.uber.org/fx"
	"go.uber.org/zap"
)

var (
	Module = fx.Provide(New)
)

type (
	Params struct {
		fx.In
		Logger logger.Logger
		DB     db.Querier
	}

	// Repo reads the zone catalog. There are no write paths: zone and alias
	// rows are versioned through migrations only.
	Repo interface {
		LoadZones(ctx context.Context) ([]structs.DeliveryZone, error)
		LoadAliases(ctx context.Context) (map[string][]string, error)
	}

	repo struct {
		logger logger.Logger
		db     db.Querier
	}
)

func New(p Params) Repo {
	return &repo{
		logger: p.Logger,
		db:     p.DB,
	}
}

func (r repo) LoadZones(ctx context.Context) ([]structs.DeliveryZone, error) {
	var (
		query = `
			SELECT
				name,
				fee_minor,
				eta_range,
				centroid_lat,
				centroid_lng
			FROM delivery_zones
			ORDER BY position
		`
	)

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		r.logger.Error(ctx, "err on db.Query delivery_zones", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	zones := []structs.DeliveryZone{}
	for rows.Next() {
		var (
			zone     structs.DeliveryZone
			lat, lng *float64
		)
		if err := rows.Scan(&zone.Name, &zone.FeeMinor, &zone.EtaRange, &lat, &lng); err != nil {
			return nil, fmt.Errorf("scan delivery_zones: %w", err)
		}
		if lat != nil && lng != nil {
			zone.Centroid = &structs.GeoPoint{Lat: *lat, Lng: *lng}
		}
		zones = append(zones, zone)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return zones, nil
}

func (r repo) LoadAliases(ctx context.Context) (map[string][]string, error) {
	var (
		query = `
			SELECT
				zone_name,
				alias
			FROM zone_aliases
			ORDER BY zone_name, alias
		`
	)

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		r.logger.Error(ctx, "err on db.Query zone_aliases", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	aliases := map[string][]string{}
	for rows.Next() {
		var zoneName, alias string
		if err := rows.Scan(&zoneName, &alias); err != nil {
			return nil, fmt.Errorf("scan zone_aliases: %w", err)
		}
		aliases[zoneName] = append(aliases[zoneName], alias)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return aliases, nil
}
