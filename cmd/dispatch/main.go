package main

import (
	"context"
	"log"
	"os"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rapidaid/rapidaid/internal/pkg/config"
	"github.com/rapidaid/rapidaid/internal/pkg/database"
	"github.com/rapidaid/rapidaid/internal/pkg/health"
	"github.com/rapidaid/rapidaid/internal/pkg/logger"
	"github.com/rapidaid/rapidaid/internal/pkg/middleware"
	nsqpkg "github.com/rapidaid/rapidaid/internal/pkg/nsq"
	"github.com/rapidaid/rapidaid/internal/pkg/server"
	wspkg "github.com/rapidaid/rapidaid/internal/pkg/websocket"
	"github.com/rapidaid/rapidaid/services/emergency/gateway"
	"github.com/rapidaid/rapidaid/services/emergency/handler"
	httpHandler "github.com/rapidaid/rapidaid/services/emergency/handler/http"
	"github.com/rapidaid/rapidaid/services/emergency/repository"
	"github.com/rapidaid/rapidaid/services/emergency/usecase"
	realtimeGateway "github.com/rapidaid/rapidaid/services/realtime/gateway"
	realtimeHandler "github.com/rapidaid/rapidaid/services/realtime/handler"
	realtimeUsecase "github.com/rapidaid/rapidaid/services/realtime/usecase"
	"go.uber.org/zap"
)

func main() {
	appName := "dispatch-service"
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "config/dispatch.env"
	}
	configs := config.InitConfig(configPath)

	zapLogger, err := logger.InitZapLoggerFromConfig(configs)
	if err != nil {
		log.Fatalf("Failed to create Zap logger: %v", err)
	}
	defer zapLogger.Close()
	logger.SetGlobalLogger(zapLogger)

	zapLogger.Info("Starting application",
		zap.String("app", appName),
		zap.String("version", configs.App.Version),
		zap.String("environment", configs.App.Environment),
	)

	// Initialize PostgreSQL database connection
	postgresClient, err := database.NewPostgresClient(configs.Database)
	if err != nil {
		zapLogger.Fatal("Failed to connect to PostgreSQL", zap.Error(err))
	}
	defer postgresClient.Close()

	// Initialize Redis client
	redisClient, err := database.NewRedisClient(configs.Redis)
	if err != nil {
		zapLogger.Fatal("Failed to connect to Redis", zap.Error(err))
	}
	defer redisClient.Close()

	// Initialize NSQ producer for notification jobs
	producer, err := nsqpkg.NewProducer(configs.NSQ.NSQDAddress)
	if err != nil {
		zapLogger.Fatal("Failed to connect to NSQ", zap.Error(err))
	}
	defer producer.Stop()

	// Realtime bus: one manager per instance, injected everywhere
	manager := wspkg.NewManager(configs.JWT)
	fanout := realtimeGateway.NewRedisFanout(redisClient)
	bus := realtimeUsecase.NewBroadcastBus(manager, fanout)
	if err := bus.Start(context.Background()); err != nil {
		zapLogger.Fatal("Failed to start broadcast bus", zap.Error(err))
	}

	// Emergency service wiring
	emergencyRepo := repository.NewEmergencyRepository(configs, postgresClient.GetDB(), redisClient)
	emergencyGW := gateway.NewEmergencyGW(producer, bus)
	emergencyUC := usecase.NewEmergencyUC(configs, emergencyRepo, emergencyGW)

	emergencyHandler := httpHandler.NewEmergencyHandler(emergencyUC)
	responderHandler := httpHandler.NewResponderHandler(emergencyUC)
	serviceHandler := handler.NewHandler(emergencyHandler, responderHandler, configs)

	wsHandler := realtimeHandler.NewWebSocketHandler(manager, bus, emergencyUC, configs)

	// Initialize Echo router
	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.RequestIDMiddleware())
	e.Use(middleware.RequestLoggerMiddleware(zapLogger))

	health.RegisterHealthEndpoints(e, appName,
		health.NewPostgresHealthChecker(postgresClient),
		health.NewRedisHealthChecker(redisClient),
	)

	serviceHandler.RegisterRoutes(e)
	e.GET("/ws", wsHandler.HandleWebSocket)

	// Component shutdown: wait for in-flight pushes, then close transports
	shutdownManager := server.NewShutdownManager(zapLogger)
	shutdownManager.Register(emergencyUC.Shutdown)
	shutdownManager.Register(bus.Shutdown)
	shutdownManager.Register(func(ctx context.Context) error {
		producer.Stop()
		return nil
	})
	shutdownManager.Register(func(ctx context.Context) error { return redisClient.Close() })
	shutdownManager.Register(func(ctx context.Context) error { return postgresClient.Close() })

	gracefulServer := server.NewGracefulServer(e, zapLogger, configs.Server.Port)
	if err := gracefulServer.Start(); err != nil {
		zapLogger.Error("Server stopped with error", zap.Error(err))
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := shutdownManager.Shutdown(ctx); err != nil {
		zapLogger.Error("Component shutdown incomplete", zap.Error(err))
	}
}
