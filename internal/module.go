package internal

import (
	"kampalabites/internal/eta"
	"kampalabites/internal/geocode"
	"kampalabites/internal/locsession"
	"kampalabites/internal/zones"

	"go.uber.org/fx"
)

var Module = fx.Options(
	zones.Module,
	geocode.Module,
	locsession.Module,
	eta.Module,
)
