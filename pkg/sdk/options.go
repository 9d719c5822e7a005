package dupdex

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
	addrs    []string
	password string

	keyPrefix string

	embedder Embedder
	openai   *OpenAIConfig

	dedupThreshold float64
	maxCandidates  int
	poolFactor     int

	logger     *slog.Logger
	metricsReg prometheus.Registerer
}

// OpenAIConfig configures a built-in OpenAI-compatible embedding provider.
type OpenAIConfig struct {
	APIKey     string
	BaseURL    string // empty means api.openai.com
	Model      string
	Dimensions int
}

// WithRedis configures the client to connect to a Redis instance.
func WithRedis(addr, password string) Option {
	return optionFunc(func(c *clientConfig) {
		c.addrs = []string{addr}
		c.password = password
	})
}

// WithKeyPrefix namespaces all stored keys. Default: "dupdex:".
func WithKeyPrefix(prefix string) Option {
	return optionFunc(func(c *clientConfig) {
		c.keyPrefix = prefix
	})
}

// WithEmbedder sets the text embedding provider.
// Required for item creation and semantic search.
func WithEmbedder(e Embedder) Option {
	return optionFunc(func(c *clientConfig) {
		c.embedder = e
	})
}

// WithOpenAI uses the built-in OpenAI-compatible embedding provider with
// Redis-backed embedding caching. Mutually exclusive with WithEmbedder;
// if both are set, WithEmbedder wins.
func WithOpenAI(cfg OpenAIConfig) Option {
	return optionFunc(func(c *clientConfig) {
		c.openai = &cfg
	})
}

// WithDedupThreshold sets the similarity cutoff for the structural and
// semantic cascade stages. Default: 0.8.
func WithDedupThreshold(threshold float64) Option {
	return optionFunc(func(c *clientConfig) {
		c.dedupThreshold = threshold
	})
}

// WithMaxCandidates sets the maximum number of matches per duplicate check.
// Default: 5.
func WithMaxCandidates(n int) Option {
	return optionFunc(func(c *clientConfig) {
		c.maxCandidates = n
	})
}

// WithPoolFactor sets the structural stage candidate over-fetch multiplier.
// Default: 5.
func WithPoolFactor(n int) Option {
	return optionFunc(func(c *clientConfig) {
		c.poolFactor = n
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
