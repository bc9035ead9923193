package config

import (
	"errors"
	"io/fs"
	"log/slog"
	"strings"
	"time"

	"github.com/corray333/backend-labs/shop/pkg/logger"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// MustInit loads .env and config.yaml into viper and installs the default logger.
// Environment variables override file values, e.g. POSTGRES_HOST for postgres.host.
func MustInit() {
	if err := godotenv.Load("./.env"); err != nil && !errors.Is(err, fs.ErrNotExist) {
		panic("error while loading .env file: " + err.Error())
	}

	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath("/etc/shop")
	viper.AddConfigPath(".")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()
	SetDefaults()

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			panic("error while reading config file: " + err.Error())
		}
	}

	SetupLogger()
}

// SetDefaults registers the value of every key that has a sensible default.
func SetDefaults() {
	viper.SetDefault("app.env", "dev")
	viper.SetDefault("logger.level", "info")

	viper.SetDefault("server.http.port", "8080")
	viper.SetDefault("server.http.request_timeout", 30*time.Second)
	viper.SetDefault("server.http.cors.allowed_origins", []string{"*"})
	viper.SetDefault("server.http.cors.allowed_methods", []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"})
	viper.SetDefault("server.http.cors.allowed_headers", []string{"Authorization", "Content-Type"})
	viper.SetDefault("server.http.cors.max_age", 300)

	viper.SetDefault("postgres.host", "localhost")
	viper.SetDefault("postgres.port", 5432)
	viper.SetDefault("postgres.sslmode", "disable")
	viper.SetDefault("postgres.max_conns", 20)
	viper.SetDefault("postgres.statement_timeout", 5*time.Second)
	viper.SetDefault("postgres.lock_timeout", 2*time.Second)
	viper.SetDefault("postgres.idle_in_transaction_session_timeout", 10*time.Second)

	viper.SetDefault("redis.addr", "localhost:6379")
	viper.SetDefault("redis.timeout", time.Second)
	viper.SetDefault("redis.catalog_ttl", 10*time.Minute)

	viper.SetDefault("orders.tx_timeout", 5*time.Second)
	viper.SetDefault("orders.retry.max_retries", 3)
	viper.SetDefault("orders.retry.base_delay", 50*time.Millisecond)

	viper.SetDefault("identity.issuer", "shop")
	viper.SetDefault("identity.token_ttl", 24*time.Hour)
	viper.SetDefault("identity.bcrypt_cost", 12)

	viper.SetDefault("broker.kind", "rabbitmq")
	viper.SetDefault("broker.exchange", "shop.events")
	viper.SetDefault("rabbitmq.port", 5672)

	viper.SetDefault("outbox.poll_interval", time.Second)
	viper.SetDefault("outbox.batch_size", 100)
	viper.SetDefault("outbox.retry_interval", 30*time.Second)

	viper.SetDefault("tracing.service_name", "shop")
	viper.SetDefault("tracing.sample_ratio", 1.0)
}

func SetupLogger() {
	handler := logger.NewHandler(&logger.Options{
		Level: viper.GetString("logger.level"),
		Env:   viper.GetString("app.env"),
	})
	log := slog.New(handler)
	slog.SetDefault(log)
}
