package api

import (
	"log/slog"
	"time"
)

// DefaultFetchOnceThreshold is used by FetchOnce when no threshold is configured.
const DefaultFetchOnceThreshold = 5 * time.Minute

// DefaultRecursiveDelay is used by FetchRecursive when delay is nil.
const DefaultRecursiveDelay = 500 * time.Millisecond

// Config is resolved once when a store is constructed.
type Config struct {
	// Name labels the store in logs and metrics.
	Name string

	// FetchOnceDefaultThreshold is used when FetchOnce is called with
	// UseDefaultThreshold.
	FetchOnceDefaultThreshold time.Duration

	// DedupeInflight makes overlapping calls of the same kind share one
	// worker invocation. The shared invocation does not see the callers'
	// cancellation; a caller whose ctx ends stops waiting and gets the
	// current data.
	DedupeInflight bool

	// Abortable makes every call cancel the still-running previous call of
	// the same kind and enables Abort.
	Abortable bool

	// OnReset is called at the end of Reset.
	OnReset func()

	Logger   *slog.Logger
	Observer Observer

	// DataFactory holds a DataFactory[T] matching the store's data type.
	// Use WithDataFactory to set it.
	DataFactory any
}

// Settings are the serialisable configuration knobs. They can be loaded from
// YAML or the environment and applied with WithSettings.
type Settings struct {
	Name                      string        `yaml:"name" env:"NAME"`
	FetchOnceDefaultThreshold time.Duration `yaml:"fetch_once_default_threshold" env:"FETCH_ONCE_DEFAULT_THRESHOLD"`
	DedupeInflight            bool          `yaml:"dedupe_inflight" env:"DEDUPE_INFLIGHT"`
	Abortable                 bool          `yaml:"abortable" env:"ABORTABLE"`
}

// Option configures a store.
type Option func(*Config)

// DefaultConfig returns the configuration used when no options are given.
func DefaultConfig() Config {
	return Config{
		FetchOnceDefaultThreshold: DefaultFetchOnceThreshold,
		Logger:                    slog.Default(),
		Observer:                  NoopObserver{},
	}
}

// NewConfig applies opts on top of DefaultConfig.
func NewConfig(opts ...Option) Config {
	cfg := DefaultConfig()
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.Observer == nil {
		cfg.Observer = NoopObserver{}
	}
	return cfg
}

func WithName(name string) Option {
	return func(c *Config) { c.Name = name }
}

func WithFetchOnceDefaultThreshold(d time.Duration) Option {
	return func(c *Config) { c.FetchOnceDefaultThreshold = d }
}

// WithDedupeInflight turns on sharing of overlapping calls. Cancelling one
// caller's ctx does not cancel the shared worker call; use WithAbortable and
// Abort for that.
func WithDedupeInflight(on bool) Option {
	return func(c *Config) { c.DedupeInflight = on }
}

func WithAbortable(on bool) Option {
	return func(c *Config) { c.Abortable = on }
}

func WithOnReset(fn func()) Option {
	return func(c *Config) { c.OnReset = fn }
}

func WithLogger(logger *slog.Logger) Option {
	return func(c *Config) { c.Logger = logger }
}

// WithObserver sets the observer. Several observers can be combined with
// NewCompositeObserver.
func WithObserver(obs Observer) Option {
	return func(c *Config) { c.Observer = obs }
}

// WithDataFactory sets the transform applied to every incoming value.
func WithDataFactory[T any](f DataFactory[T]) Option {
	return func(c *Config) {
		if f != nil {
			c.DataFactory = f
		}
	}
}

// WithSettings applies loaded settings. Zero fields leave the current value
// untouched, except the booleans which are copied as is.
func WithSettings(s Settings) Option {
	return func(c *Config) {
		if s.Name != "" {
			c.Name = s.Name
		}
		if s.FetchOnceDefaultThreshold != 0 {
			c.FetchOnceDefaultThreshold = s.FetchOnceDefaultThreshold
		}
		c.DedupeInflight = s.DedupeInflight
		c.Abortable = s.Abortable
	}
}
