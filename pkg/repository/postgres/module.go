package postgres

import (
	zonerepo "kampalabites/pkg/repository/postgres/zone_repo"

	"go.uber.org/fx"
)

var Module = fx.Options(
	zonerepo.Module,
)
