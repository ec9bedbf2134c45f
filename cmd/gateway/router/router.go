package router

import (
	"context"
	"net/http"

	"kampalabites/apps/gateway/handlers/location"
	"kampalabites/apps/gateway/handlers/locationws"
	"kampalabites/apps/gateway/handlers/middleware"
	"kampalabites/pkg/config"
	"kampalabites/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/rs/cors"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var Module = fx.Options(
	fx.Invoke(
		NewRouter,
	),
)

type Params struct {
	fx.In

	middleware.Middleware
	Lifecycle  fx.Lifecycle
	Config     config.IConfig
	Logger     logger.Logger
	Location   location.Handler
	LocationWs locationws.Handler
}

func NewRouter(params Params) {
	r := gin.New()
	baseUrl := "/api/v1"
	api := r.Group(baseUrl)
	api.Use(params.Ctx(), gin.Logger(), gin.Recovery())

	locationGroup := api.Group("/location")
	{
		locationGroup.GET("/search", params.Location.Search)
		locationGroup.POST("/detect", params.Location.Detect)
		locationGroup.POST("/select", params.Location.Select)
		locationGroup.GET("/eta", params.Location.Eta)
		locationGroup.GET("/recent", params.Location.GetRecent)
		locationGroup.DELETE("/recent", params.Location.ClearRecent)
		locationGroup.GET("/ws", params.LocationWs.Serve)
	}

	server := http.Server{
		Addr: params.Config.GetString("server.port"),
		Handler: cors.New(cors.Options{
			AllowedHeaders:   []string{"*"},
			AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "PATCH", "OPTIONS"},
			AllowCredentials: true,
			AllowOriginVaryRequestFunc: func(r *http.Request, origin string) (bool, []string) {
				return true, []string{"*"}
			},
		}).Handler(r),
	}

	params.Lifecycle.Append(
		fx.Hook{
			OnStart: func(ctx context.Context) error {
				params.Logger.Info(ctx, "Starting application")
				go func() {
					if err := server.ListenAndServe(); err != nil {
						params.Logger.Error(ctx, "Err on ListenAndServe", zap.Error(err))
					}
				}()

				params.Logger.Info(ctx, "Application starting on port", zap.String("port", params.Config.GetString("server.port")))
				return nil
			},
			OnStop: func(ctx context.Context) error {
				params.Logger.Info(ctx, "Application stopped")
				return server.Shutdown(ctx)
			},
		},
	)
}
