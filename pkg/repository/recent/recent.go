package recent

import (
	"context"
	"errors"

	"kampalabites/pkg/logger"
	"kampalabites/pkg/redis"

	"go.uber.org/fx"
	"go.uber.org/zap"
)

var Module = fx.Provide(New)

// MaxEntries caps the recent-selections list. Most recent first.
const MaxEntries = 3

const keyPrefix = "location.recent_zones."

type (
	Params struct {
		fx.In
		Logger logger.Logger
		Redis  redis.Client
	}

	// Repo is the only durable artifact of the location subsystem.
	// Last-writer-wins is fine: the list belongs to a single device.
	Repo interface {
		Get(ctx context.Context, owner string) ([]string, error)
		Append(ctx context.Context, owner string, zoneName string) error
		Clear(ctx context.Context, owner string) error
	}

	repo struct {
		logger logger.Logger
		redis  redis.Client
	}
)

func New(p Params) Repo {
	return &repo{
		logger: p.Logger,
		redis:  p.Redis,
	}
}

func (r repo) Get(ctx context.Context, owner string) ([]string, error) {
	var names []string
	err := r.redis.FindObj(ctx, keyPrefix+owner, &names)
	if err != nil {
		if errors.Is(err, redis.ErrNotFound) {
			return []string{}, nil
		}
		r.logger.Error(ctx, "err on redis.FindObj recent zones", zap.Error(err))
		return nil, err
	}
	if len(names) > MaxEntries {
		names = names[:MaxEntries]
	}
	return names, nil
}

func (r repo) Append(ctx context.Context, owner string, zoneName string) error {
	current, err := r.Get(ctx, owner)
	if err != nil {
		return err
	}

	names := make([]string, 0, MaxEntries)
	names = append(names, zoneName)
	for _, n := range current {
		if n == zoneName {
			continue
		}
		names = append(names, n)
		if len(names) == MaxEntries {
			break
		}
	}

	if err := r.redis.SaveObj(ctx, keyPrefix+owner, names, 0); err != nil {
		r.logger.Error(ctx, "err on redis.SaveObj recent zones", zap.Error(err))
		return err
	}
	return nil
}

func (r repo) Clear(ctx context.Context, owner string) error {
	if err := r.redis.Delete(ctx, keyPrefix+owner); err != nil {
		r.logger.Error(ctx, "err on redis.Delete recent zones", zap.Error(err))
		return err
	}
	return nil
}
