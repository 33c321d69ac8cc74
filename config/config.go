package config

import (
	"strings"

	"github.com/spf13/viper"
)

// Config структура конфигурации приложения
type Config struct {
	Server   ServerConfig
	Logging  LoggingConfig
	Firebase FirebaseConfig
	Stripe   StripeConfig
	Resend   ResendConfig
	Push     PushConfig
	Redis    RedisConfig
	Kafka    KafkaConfig
}

// ServerConfig конфигурация HTTP сервера
type ServerConfig struct {
	Port            string
	ReadTimeout     int
	WriteTimeout    int
	ShutdownTimeout int
	PublicBaseURL   string
}

// LoggingConfig конфигурация логгера
type LoggingConfig struct {
	Level string
}

// FirebaseConfig конфигурация Firebase (Auth, Firestore, FCM)
type FirebaseConfig struct {
	CredentialsFile string
	ProjectID       string
	UsersCollection string
}

// StripeConfig конфигурация Stripe
type StripeConfig struct {
	SecretKey     string
	WebhookSecret string
}

// ResendConfig конфигурация почтового транспорта Resend
type ResendConfig struct {
	APIKey string
	From   string
}

// PushConfig конфигурация push-уведомлений
type PushConfig struct {
	DefaultClickAction string
}

// RedisConfig конфигурация Redis (пустой Addr отключает дедупликацию событий)
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// KafkaConfig конфигурация Kafka (пустой список брокеров отключает публикацию)
type KafkaConfig struct {
	Brokers []string
	Topic   string
}

// SetupLinkURL возвращает return URL для ссылки установки пароля
func (c *ServerConfig) SetupLinkURL() string {
	return strings.TrimRight(c.PublicBaseURL, "/") + "/set-password.html"
}

// Load загружает конфигурацию из переменных окружения
func Load() (*Config, error) {
	v := viper.New()
	v.AutomaticEnv()

	v.SetDefault("PORT", "8080")
	v.SetDefault("SERVER_READ_TIMEOUT", 15)
	v.SetDefault("SERVER_WRITE_TIMEOUT", 15)
	v.SetDefault("SERVER_SHUTDOWN_TIMEOUT", 30)
	v.SetDefault("PUBLIC_BASE_URL", "http://localhost:8080")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("FIREBASE_USERS_COLLECTION", "users")
	v.SetDefault("PUSH_CLICK_ACTION", "/user-dashboard.html")
	v.SetDefault("REDIS_ADDR", "")
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("KAFKA_BROKERS", "")
	v.SetDefault("KAFKA_TOPIC", "billing.sync")

	cfg := &Config{
		Server: ServerConfig{
			Port:            v.GetString("PORT"),
			ReadTimeout:     v.GetInt("SERVER_READ_TIMEOUT"),
			WriteTimeout:    v.GetInt("SERVER_WRITE_TIMEOUT"),
			ShutdownTimeout: v.GetInt("SERVER_SHUTDOWN_TIMEOUT"),
			PublicBaseURL:   v.GetString("PUBLIC_BASE_URL"),
		},
		Logging: LoggingConfig{
			Level: v.GetString("LOG_LEVEL"),
		},
		Firebase: FirebaseConfig{
			CredentialsFile: v.GetString("FIREBASE_CREDENTIALS"),
			ProjectID:       v.GetString("FIREBASE_PROJECT_ID"),
			UsersCollection: v.GetString("FIREBASE_USERS_COLLECTION"),
		},
		Stripe: StripeConfig{
			SecretKey:     v.GetString("STRIPE_SECRET_KEY"),
			WebhookSecret: v.GetString("STRIPE_WEBHOOK_SECRET"),
		},
		Resend: ResendConfig{
			APIKey: v.GetString("RESEND_API_KEY"),
			From:   v.GetString("RESEND_FROM"),
		},
		Push: PushConfig{
			DefaultClickAction: v.GetString("PUSH_CLICK_ACTION"),
		},
		Redis: RedisConfig{
			Addr:     v.GetString("REDIS_ADDR"),
			Password: v.GetString("REDIS_PASSWORD"),
			DB:       v.GetInt("REDIS_DB"),
		},
		Kafka: KafkaConfig{
			Brokers: splitBrokers(v.GetString("KAFKA_BROKERS")),
			Topic:   v.GetString("KAFKA_TOPIC"),
		},
	}

	return cfg, nil
}

// splitBrokers разбирает список брокеров из строки вида "host1:9092,host2:9092"
func splitBrokers(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}

	parts := strings.Split(raw, ",")
	brokers := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			brokers = append(brokers, p)
		}
	}
	return brokers
}
