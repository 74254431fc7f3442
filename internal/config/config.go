package config

import "time"

// Config holds all application configuration.
// It organizes settings into logical groups for better maintainability.
type Config struct {
	Server    ServerConfig    `mapstructure:"server"    validate:"required"`
	Database  DatabaseConfig  `mapstructure:"database"  validate:"required"`
	Events    EventsConfig    `mapstructure:"events"    validate:"required"`
	Lifecycle LifecycleConfig `mapstructure:"lifecycle"`
}

// ServerConfig contains all server-related configuration settings.
type ServerConfig struct {
	Port            int           `mapstructure:"port"             validate:"required,gt=0,lt=65536"`
	LogLevel        string        `mapstructure:"log_level"        validate:"required,oneof=debug info warn error"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout" validate:"gte=0"`
}

// DatabaseConfig contains all database-related configuration settings.
// Driver "memory" runs the service against the in-memory store, which is
// useful for local development; "postgres" requires a URL.
type DatabaseConfig struct {
	Driver string `mapstructure:"driver" validate:"required,oneof=postgres memory"`
	URL    string `mapstructure:"url"    validate:"required_if=Driver postgres,omitempty,url"`
}

// EventsConfig contains command/event bus settings.
type EventsConfig struct {
	// Workers is the number of concurrent command consumers.
	Workers int `mapstructure:"workers" validate:"required,gt=0,lte=64"`

	// QueueSize bounds the number of buffered inbound command envelopes.
	QueueSize int `mapstructure:"queue_size" validate:"required,gt=0"`
}

// LifecycleConfig contains explicit lifecycle policy switches.
type LifecycleConfig struct {
	// CascadeDisable controls whether disabling a deck also disables its
	// active cards. Off by default: card disabling is otherwise a separate,
	// caller-initiated concern.
	CascadeDisable bool `mapstructure:"cascade_disable"`
}
