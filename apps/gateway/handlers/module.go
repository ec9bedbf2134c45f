package handlers

import (
	"kampalabites/apps/gateway/handlers/location"
	"kampalabites/apps/gateway/handlers/locationws"
	"kampalabites/apps/gateway/handlers/middleware"

	"go.uber.org/fx"
)

var Module = fx.Options(
	middleware.Module,
	location.Module,
	locationws.Module,
)
