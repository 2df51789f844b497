package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config holds the service configuration read from the environment.
type Config struct {
	Port           string `env:"PORT"             envDefault:"5000"`
	GRPCHealthAddr string `env:"GRPC_HEALTH_ADDR"`

	HistoryLimit      int   `env:"CHAT_HISTORY_LIMIT"        envDefault:"50"`
	MaxMessageLength  int   `env:"CHAT_MAX_MESSAGE_LENGTH"   envDefault:"500"`
	MaxUsernameLength int   `env:"CHAT_MAX_USERNAME_LENGTH"  envDefault:"15"`
	MaxRoomNameLength int   `env:"CHAT_MAX_ROOM_NAME_LENGTH" envDefault:"20"`
	MaxPayloadBytes   int64 `env:"CHAT_MAX_PAYLOAD_BYTES"    envDefault:"5242880"`
	EventQueueSize    int   `env:"CHAT_EVENT_QUEUE_SIZE"     envDefault:"256"`
	SendBufferSize    int   `env:"CHAT_SEND_BUFFER_SIZE"     envDefault:"64"`

	AMQPURL      string `env:"AMQP_URL"`
	AMQPExchange string `env:"AMQP_EXCHANGE" envDefault:"chat.events"`

	OTLPEndpoint string `env:"OTEL_EXPORTER_OTLP_ENDPOINT"`
	ServiceName  string `env:"SERVICE_NAME" envDefault:"chat-service"`
	Environment  string `env:"APP_ENV"      envDefault:"local"`

	DebugRoutes     bool          `env:"DEBUG_ROUTES"     envDefault:"false"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"15s"`
}

// Load parses the environment into a Config and validates the chat limits.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate rejects limits that would make the chat unusable.
func (c Config) Validate() error {
	switch {
	case c.Port == "":
		return errors.New("config: PORT is empty")
	case c.HistoryLimit <= 0:
		return errors.New("config: CHAT_HISTORY_LIMIT must be positive")
	case c.MaxMessageLength <= 0:
		return errors.New("config: CHAT_MAX_MESSAGE_LENGTH must be positive")
	case c.MaxUsernameLength <= 0:
		return errors.New("config: CHAT_MAX_USERNAME_LENGTH must be positive")
	case c.MaxRoomNameLength <= 0:
		return errors.New("config: CHAT_MAX_ROOM_NAME_LENGTH must be positive")
	case c.MaxPayloadBytes <= 0:
		return errors.New("config: CHAT_MAX_PAYLOAD_BYTES must be positive")
	case c.EventQueueSize <= 0:
		return errors.New("config: CHAT_EVENT_QUEUE_SIZE must be positive")
	case c.SendBufferSize <= 0:
		return errors.New("config: CHAT_SEND_BUFFER_SIZE must be positive")
	}
	return nil
}
