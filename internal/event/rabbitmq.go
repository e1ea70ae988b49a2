package event

import (
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"evaluation-service/internal/config"

	amqp "github.com/rabbitmq/amqp091-go"
)

const connectionName = "evaluation-service"

// RabbitMQConnection is the broker connection and the single channel the
// evaluation publisher writes to.
type RabbitMQConnection struct {
	Connection *amqp.Connection
	Channel    *amqp.Channel
}

// brokerURI builds the AMQP URI, escaping credentials.
func brokerURI(cfg config.RabbitMQConfig) (string, error) {
	port, err := strconv.Atoi(cfg.Port)
	if err != nil {
		return "", fmt.Errorf("invalid RabbitMQ port %q: %w", cfg.Port, err)
	}
	uri := amqp.URI{
		Scheme:   "amqp",
		Host:     cfg.Host,
		Port:     port,
		Username: cfg.Username,
		Password: cfg.Password,
		Vhost:    "/",
	}
	return uri.String(), nil
}

func ConnectRabbitMQ(cfg config.RabbitMQConfig) (*RabbitMQConnection, error) {
	uri, err := brokerURI(cfg)
	if err != nil {
		return nil, err
	}

	props := amqp.NewConnectionProperties()
	props.SetClientConnectionName(connectionName)
	conn, err := amqp.DialConfig(uri, amqp.Config{
		Heartbeat:  10 * time.Second,
		Properties: props,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}

	slog.Info("Connected to RabbitMQ", "host", cfg.Host, "port", cfg.Port, "queue", EvaluationQueue)

	return &RabbitMQConnection{
		Connection: conn,
		Channel:    ch,
	}, nil
}

// Healthy reports whether both the connection and the channel are open.
func (r *RabbitMQConnection) Healthy() bool {
	return r.Connection != nil && !r.Connection.IsClosed() &&
		r.Channel != nil && !r.Channel.IsClosed()
}

func (r *RabbitMQConnection) Close() error {
	var firstErr error
	if r.Channel != nil && !r.Channel.IsClosed() {
		if err := r.Channel.Close(); err != nil {
			slog.Error("failed to close RabbitMQ channel", "error", err)
			firstErr = err
		}
	}
	if r.Connection != nil && !r.Connection.IsClosed() {
		if err := r.Connection.Close(); err != nil {
			slog.Error("failed to close RabbitMQ connection", "error", err)
			if firstErr == nil {
				firstErr = err
			}
		}
	}
	slog.Info("RabbitMQ connection closed")
	return firstErr
}
