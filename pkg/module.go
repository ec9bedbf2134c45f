package pkg

import (
	"go.uber.org/fx"

	"kampalabites/pkg/config"
	"kampalabites/pkg/db"
	"kampalabites/pkg/logger"
	"kampalabites/pkg/migration"
	"kampalabites/pkg/redis"
	"kampalabites/pkg/reply"
	"kampalabites/pkg/repository"
)

var Module = fx.Options(
	config.Module,
	logger.Module,
	migration.Module,
	repository.Module,
	db.Module,
	reply.Module,
	redis.Module,
)
