package mq

import "time"

// Config holds the router configuration. Designed for environment-based
// configuration using popular env parsing libraries (see core/config).
type Config struct {
	// ShutdownTimeout bounds Close's wait for worker exit. Zero waits
	// forever.
	ShutdownTimeout time.Duration `env:"MQM_SHUTDOWN_TIMEOUT" envDefault:"0s"`
}

// DefaultConfig returns sensible defaults for production use.
func DefaultConfig() Config {
	return Config{
		ShutdownTimeout: 0,
	}
}
