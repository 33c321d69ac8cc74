package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/IBM/sarama"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/metrix-hardline/subscription-service/config"
	"github.com/metrix-hardline/subscription-service/internal/api/rest"
	"github.com/metrix-hardline/subscription-service/internal/api/rest/handlers"
	"github.com/metrix-hardline/subscription-service/internal/integration/firebase"
	"github.com/metrix-hardline/subscription-service/internal/integration/resend"
	stripeclient "github.com/metrix-hardline/subscription-service/internal/integration/stripe"
	"github.com/metrix-hardline/subscription-service/internal/kafka"
	"github.com/metrix-hardline/subscription-service/internal/kafka/producer"
	"github.com/metrix-hardline/subscription-service/internal/metrics"
	"github.com/metrix-hardline/subscription-service/internal/repository"
	"github.com/metrix-hardline/subscription-service/internal/service"
	"github.com/metrix-hardline/subscription-service/pkg/logger"
)

var log *logger.Logger

func init() {
	// Загружаем переменные окружения
	if err := godotenv.Load(); err != nil {
		// Пропускаем ошибку, если .env файл не найден
	}

	// Инициализация логгера
	logLevel := logger.INFO
	switch os.Getenv("LOG_LEVEL") {
	case "debug":
		logLevel = logger.DEBUG
	case "warn":
		logLevel = logger.WARN
	case "error":
		logLevel = logger.ERROR
	}
	if os.Getenv("DEBUG") == "true" {
		logLevel = logger.DEBUG
	}
	log = logger.New(logLevel)
}

func main() {
	// Загрузка конфигурации
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load configuration: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Инициализация Prometheus
	promRegistry := prometheus.NewRegistry()
	billingMetrics := metrics.NewBillingMetrics(promRegistry, log)
	systemMetrics := metrics.NewSystemMetrics(promRegistry, log)

	// Запускаем сбор системных метрик
	systemMetrics.StartRecording(15 * time.Second)
	defer systemMetrics.Stop()

	// Инициализация Firebase: Auth, Firestore и FCM
	firebaseApp, err := firebase.NewApp(ctx, cfg.Firebase.CredentialsFile, cfg.Firebase.ProjectID)
	if err != nil {
		log.Fatal("Failed to initialize Firebase: %v", err)
	}

	directory, err := firebase.NewDirectory(ctx, firebaseApp, log)
	if err != nil {
		log.Fatal("Failed to initialize identity directory: %v", err)
	}

	recordStore, err := firebase.NewRecordStore(ctx, firebaseApp, cfg.Firebase.UsersCollection, log)
	if err != nil {
		log.Fatal("Failed to initialize record store: %v", err)
	}
	defer recordStore.Close()

	messenger, err := firebase.NewMessenger(ctx, firebaseApp, log)
	if err != nil {
		log.Fatal("Failed to initialize push messenger: %v", err)
	}

	// Клиенты внешних сервисов
	billingClient := stripeclient.NewClient(stripeclient.Config{
		SecretKey:     cfg.Stripe.SecretKey,
		WebhookSecret: cfg.Stripe.WebhookSecret,
	}, log)

	emailClient := resend.NewClient(resend.Config{
		APIKey: cfg.Resend.APIKey,
		From:   cfg.Resend.From,
	}, log)

	// Маркер обработанных событий (опционален)
	var eventMarker handlers.EventMarker
	if cfg.Redis.Addr != "" {
		marker, err := repository.NewEventMarker(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, log)
		if err != nil {
			log.Fatal("Failed to connect to Redis: %v", err)
		}
		defer marker.Close()
		eventMarker = marker
	}

	// Аудит-поток результатов синхронизации (опционален)
	var outcomePublisher handlers.OutcomePublisher
	if len(cfg.Kafka.Brokers) > 0 {
		if err := kafka.EnsureTopics(cfg.Kafka.Brokers, []string{cfg.Kafka.Topic}, log); err != nil {
			log.Fatal("Failed to ensure Kafka topics: %v", err)
		}

		kafkaConfig := kafka.NewConfig(cfg.Kafka.Brokers)
		saramaConfig := kafka.NewSaramaConfig(kafkaConfig)

		kafkaProducer, err := sarama.NewSyncProducer(kafkaConfig.Brokers, saramaConfig)
		if err != nil {
			log.Fatal("Failed to create Kafka producer: %v", err)
		}
		defer kafkaProducer.Close()

		outcomePublisher = producer.NewKafkaSyncProducer(kafkaProducer, cfg.Kafka.Topic, log)
	}

	// Сервисы
	setupLinkURL := cfg.Server.SetupLinkURL()
	syncService := service.NewSyncService(directory, recordStore, billingClient, emailClient, setupLinkURL, log)
	resetService := service.NewResetService(directory, recordStore, emailClient, setupLinkURL, log)
	pushService := service.NewPushService(recordStore, messenger, cfg.Push.DefaultClickAction, log)

	// Установка режима Gin
	if os.Getenv("GIN_MODE") == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	// Настройка маршрутизатора
	router := rest.SetupRouter(rest.RouterConfig{
		Webhook:   handlers.NewWebhookHandler(billingClient, syncService, eventMarker, outcomePublisher, billingMetrics, log),
		Reset:     handlers.NewPasswordResetHandler(resetService, log),
		Push:      handlers.NewPushHandler(pushService, billingMetrics, log),
		Verifier:  directory,
		Registry:  promRegistry,
		Log:       log,
		StaticDir: "web/static",
	})

	// Создание и запуск HTTP сервера
	server := rest.NewServer(router, cfg, log)

	// Запуск сервера в горутине
	go func() {
		if err := server.Start(); err != nil {
			log.Fatal("Server error: %v", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	shutdownTimeout := time.Duration(cfg.Server.ShutdownTimeout) * time.Second
	ctxShutdown, cancelShutdown := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancelShutdown()

	if err := server.Shutdown(ctxShutdown); err != nil {
		log.Fatal("Server forced to shutdown: %v", err)
	}

	log.Info("Server stopped gracefully")
}
