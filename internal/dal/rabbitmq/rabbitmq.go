package rabbitmq

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/corray333/backend-labs/shop/internal/service/models/outbox"
	"github.com/spf13/viper"
	"github.com/streadway/amqp"
)

// Client represents a RabbitMQ client.
type Client struct {
	conn    *amqp.Connection
	channel *amqp.Channel
	// amqp.Channel must not be used for concurrent publishes.
	mu sync.Mutex
}

// Channel returns the underlying AMQP channel.
func (r *Client) Channel() *amqp.Channel {
	return r.channel
}

// Close closes the channel and connection for graceful shutdown.
func (r *Client) Close() error {
	if r.channel != nil {
		if err := r.channel.Close(); err != nil {
			return err
		}
	}
	if r.conn != nil {
		return r.conn.Close()
	}

	return nil
}

// MustNewClient connects to RabbitMQ and declares the events exchange.
func MustNewClient() *Client {
	connStr := fmt.Sprintf(
		"amqp://%s:%s@%s:%d/%s",
		viper.GetString("rabbitmq.user"),
		viper.GetString("rabbitmq.password"),
		viper.GetString("rabbitmq.host"),
		viper.GetInt("rabbitmq.port"),
		viper.GetString("rabbitmq.vhost"),
	)

	conn, err := amqp.Dial(connStr)
	if err != nil {
		panic(fmt.Sprintf("Failed to connect to RabbitMQ: %v", err))
	}

	channel, err := conn.Channel()
	if err != nil {
		if err := conn.Close(); err != nil {
			panic(fmt.Sprintf("Failed to close a connection: %v", err))
		}
		panic(fmt.Sprintf("Failed to open a channel: %v", err))
	}

	client := &Client{
		conn:    conn,
		channel: channel,
	}

	exchange := viper.GetString("broker.exchange")
	if err := client.DeclareExchange(DeclareExchangeConfig{Name: exchange, Kind: amqp.ExchangeTopic, Durable: true}); err != nil {
		panic(fmt.Sprintf("Failed to declare exchange %s: %v", exchange, err))
	}

	slog.Info("RabbitMQ connected", "exchange", exchange)

	return client
}

type DeclareExchangeConfig struct {
	Name       string
	Kind       string
	Durable    bool
	AutoDelete bool
	Internal   bool
	NoWait     bool
	Args       amqp.Table
}

// DeclareExchange declares an exchange with the given configuration.
func (r *Client) DeclareExchange(cfg DeclareExchangeConfig) error {
	return r.channel.ExchangeDeclare(
		cfg.Name,
		cfg.Kind,
		cfg.Durable,
		cfg.AutoDelete,
		cfg.Internal,
		cfg.NoWait,
		cfg.Args,
	)
}

// Publish sends an outbox message as a persistent message to its exchange and routing key.
func (r *Client) Publish(ctx context.Context, msg outbox.OutboxMessage) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	return r.channel.Publish(
		msg.ExchangeName,
		msg.RoutingKey,
		false,
		false,
		amqp.Publishing{
			ContentType:  msg.ContentType,
			DeliveryMode: amqp.Persistent,
			MessageId:    msg.MessageKey,
			Timestamp:    msg.CreatedAt,
			Type:         msg.RoutingKey,
			Body:         msg.Payload,
		},
	)
}
