package repository

import (
	"go.uber.org/fx"

	"kampalabites/pkg/repository/postgres"
	"kampalabites/pkg/repository/recent"
)

var Module = fx.Options(
	postgres.Module,
	recent.Module,
)
