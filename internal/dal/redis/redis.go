package redis

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/redis/go-redis/v9"
	"github.com/spf13/viper"
)

// MustNewClient connects to Redis and panics when the server is unreachable.
func MustNewClient() *redis.Client {
	client := redis.NewClient(&redis.Options{
		Addr:         viper.GetString("redis.addr"),
		Password:     viper.GetString("redis.password"),
		DB:           viper.GetInt("redis.db"),
		DialTimeout:  viper.GetDuration("redis.timeout"),
		ReadTimeout:  viper.GetDuration("redis.timeout"),
		WriteTimeout: viper.GetDuration("redis.timeout"),
	})

	if err := client.Ping(context.Background()).Err(); err != nil {
		panic(fmt.Sprintf("Failed to connect to Redis: %v", err))
	}

	slog.Info("Redis connected", "addr", viper.GetString("redis.addr"))

	return client
}
