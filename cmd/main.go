package main

import (
	"context"
	"errors"
	"os/signal"
	"syscall"
	"time"

	"flowcore"
	"flowcore/internal/api/handler/endpoints"
	"flowcore/internal/api/models"
	"flowcore/internal/api/service"
	"flowcore/internal/api/websocket"
	"flowcore/internal/realtime"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/graceful"
	"github.com/gin-gonic/gin"
)

func main() {
	flowcore.InitConfig(".env")
	gin.SetMode(gin.ReleaseMode)
	cfg := flowcore.GetConfig()

	if cfg.Mode == "dev" {
		if err := flowcore.DB.AutoMigrate(
			&models.User{},
			&models.Endpoint{},
		); err != nil {
			flowcore.Logger.Fatal().Err(err).Msg("Failed to migrate database")
		}
		flowcore.Logger.Info().Msg("Database migrated successfully")
		gin.SetMode(gin.DebugMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	router, err := graceful.Default(graceful.WithAddr(cfg.ApiPort))
	if err != nil {
		panic(err)
	}
	defer stop()
	defer router.Close()

	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "PATCH", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	var publisher service.ChangePublisher
	if flowcore.Nats != nil {
		publisher = realtime.NewFlowPublisher(flowcore.Nats, cfg.NatsConfig.TenantID)
		defer flowcore.Nats.Drain()
	}
	editorService := service.NewEditorService(publisher)
	defer editorService.FlushAll()

	processor := websocket.NewMessageProcessor(editorService, flowcore.Logger)
	hub := websocket.NewHub(flowcore.Logger)
	go hub.Run()
	flowcore.Logger.Info().Msg("WebSocket hub started")

	initAPI(router, hub, processor, editorService)

	flowcore.Logger.Debug().Msgf("Starting FlowCore API on port %s", cfg.ApiPort)
	if err = router.RunWithContext(ctx); err != nil && !errors.Is(err, context.Canceled) {
		flowcore.Logger.Fatal().Msg(err.Error())
	}
}

func initAPI(router *graceful.Graceful, hub *websocket.Hub, processor *websocket.MessageProcessor, editorService *service.EditorService) {
	endpoints.HealthHandler(router)
	endpoints.AuthHandler(router)
	endpoints.EndpointHandler(router, editorService, hub)
	endpoints.EditorHandler(router)
	endpoints.WebSocketHandler(router, hub, processor, editorService)
}
