package reportscore

import (
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"
)

// Option configures the Client.
type Option interface {
	apply(*clientConfig)
}

// optionFunc adapts a function to the Option interface.
type optionFunc func(*clientConfig)

func (f optionFunc) apply(c *clientConfig) { f(c) }

type clientConfig struct {
	driver   string // "file" or "redis"
	path     string
	addrs    []string
	password string
	key      string

	logger     *slog.Logger
	metricsReg prometheus.Registerer
}

// WithFileArtifact keeps the model artifact in a local file.
func WithFileArtifact(path string) Option {
	return optionFunc(func(c *clientConfig) {
		c.driver = driverFile
		c.path = path
	})
}

// WithRedisArtifact keeps the model artifact under a Redis key. An empty key
// uses the server default.
func WithRedisArtifact(addr, password, key string) Option {
	return optionFunc(func(c *clientConfig) {
		c.driver = driverRedis
		c.addrs = []string{addr}
		c.password = password
		c.key = key
	})
}

// WithLogger enables structured logging for SDK operations.
// Pass nil to disable (default). Uses standard library slog.
func WithLogger(l *slog.Logger) Option {
	return optionFunc(func(c *clientConfig) {
		c.logger = l
	})
}

// WithPrometheus registers SDK metrics (operation counts and durations)
// on the given registerer. Pass nil to disable (default).
func WithPrometheus(reg prometheus.Registerer) Option {
	return optionFunc(func(c *clientConfig) {
		c.metricsReg = reg
	})
}
