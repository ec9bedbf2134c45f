package db

import (
	"context"

	"kampalabites/pkg/config"
	"kampalabites/pkg/logger"
	"kampalabites/pkg/utils"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var Module = fx.Options(
	fx.Provide(NewDBConn),
)

type Querier interface {
	Exec(ctx context.Context, sql string, arguments ...interface{}) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, optionsAndArgs ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, optionsAndArgs ...interface{}) pgx.Row
}

type Params struct {
	fx.In
	Config config.IConfig
	Logger logger.Logger
}

type dbConn struct {
	config config.IConfig
	dbPool *pgxpool.Pool
	logger logger.Logger
}

func NewDBConn(params Params) (Querier, error) {

	var (
		dns = params.Config.GetString("database.dns")
		ctx = context.Background()
	)

	db, err := pgxpool.New(ctx, dns)
	if err != nil {
		params.Logger.Error(ctx, "Err on pgxpool.New", zap.Error(err))
		return nil, err
	}

	err = db.Ping(ctx)
	if err != nil {
		params.Logger.Error(ctx, "Err on db.Ping", zap.Error(err))
		return nil, err
	}

	params.Logger.Info(ctx, "DB: Connected successfully")

	return &dbConn{
		dbPool: db,
		logger: params.Logger,
		config: params.Config,
	}, nil
}

func (db *dbConn) Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error) {
	db.logger.Debug(ctx, "DB: Exec sql", zap.String("sql", utils.CompactSQL(sql)), zap.Any("args", args))
	return db.dbPool.Exec(ctx, sql, args...)
}

func (db *dbConn) Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error) {
	db.logger.Debug(ctx, "DB: Query sql", zap.String("sql", utils.CompactSQL(sql)), zap.Any("args", args))
	return db.dbPool.Query(ctx, sql, args...)
}

func (db *dbConn) QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row {
	db.logger.Debug(ctx, "DB: QueryRow sql", zap.String("sql", utils.CompactSQL(sql)), zap.Any("args", args))
	return db.dbPool.QueryRow(ctx, sql, args...)
}
