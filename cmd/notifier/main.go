package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rapidaid/rapidaid/internal/pkg/config"
	"github.com/rapidaid/rapidaid/internal/pkg/constants"
	"github.com/rapidaid/rapidaid/internal/pkg/database"
	"github.com/rapidaid/rapidaid/internal/pkg/logger"
	nsqpkg "github.com/rapidaid/rapidaid/internal/pkg/nsq"
	"github.com/rapidaid/rapidaid/services/notify"
	"github.com/rapidaid/rapidaid/services/notify/gateway/channels"
	"github.com/rapidaid/rapidaid/services/notify/handler"
	"github.com/rapidaid/rapidaid/services/notify/repository"
	"github.com/rapidaid/rapidaid/services/notify/usecase"
	"go.uber.org/zap"
)

func main() {
	appName := "notifier-service"
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "config/notifier.env"
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

	// Channel senders in walk order
	senders := []notify.ChannelSender{
		channels.NewEmailSender(configs.SMTP),
		channels.NewTermiiSender(configs.Termii),
		channels.NewTwilioSMSSender(configs.Twilio),
		channels.NewTwilioWhatsAppSender(configs.Twilio),
	}

	// FCM is optional: without credentials the push channel is simply absent
	if configs.FCM.CredentialsFile != "" {
		fcmSender, err := channels.NewFCMSender(context.Background(), configs.FCM)
		if err != nil {
			zapLogger.Fatal("Failed to initialize FCM sender", zap.Error(err))
		}
		senders = append(senders, fcmSender)
	} else {
		zapLogger.Warn("FCM credentials not configured, push channel disabled")
	}

	notifyRepo := repository.NewNotifyRepository(postgresClient.GetDB())
	notifyUC := usecase.NewNotifyUC(configs, notifyRepo, senders)
	nsqHandler := handler.NewNSQHandler(notifyUC, uint16(configs.NSQ.MaxAttempts))

	consumer, err := nsqpkg.NewConsumer(
		constants.TopicNotificationDispatch,
		constants.ChannelNotificationDelivery,
		configs.NSQ.NSQDAddress,
		nsqpkg.ConsumerConfig{
			MaxAttempts:  uint16(configs.NSQ.MaxAttempts),
			Concurrency:  configs.NSQ.Concurrency,
			RequeueDelay: 5 * time.Second,
		},
		nsqHandler.HandleMessage,
	)
	if err != nil {
		zapLogger.Fatal("Failed to start NSQ consumer", zap.Error(err))
	}

	if len(configs.NSQ.LookupdAddresses) > 0 {
		if err := consumer.ConnectToLookupd(configs.NSQ.LookupdAddresses); err != nil {
			zapLogger.Fatal("Failed to connect to NSQ lookupd", zap.Error(err))
		}
	}

	zapLogger.Info("Notification worker running",
		zap.String("topic", constants.TopicNotificationDispatch),
		zap.String("channel", constants.ChannelNotificationDelivery))

	// Block until shutdown signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	sig := <-quit

	zapLogger.Info("Received shutdown signal", zap.String("signal", sig.String()))
	consumer.Stop()
}
