// Package config loads pulith's configuration from a YAML file,
// PULITH_-prefixed environment variables, and built-in defaults, in the
// shape of the teacher's internal/config package.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	units "github.com/docker/go-units"
)

// Config is pulith's top-level configuration. Field tags use mapstructure
// for viper unmarshalling.
type Config struct {
	Store      StoreConfig      `mapstructure:"store"`
	Cache      CacheConfig      `mapstructure:"cache"`
	Throttle   ThrottleConfig   `mapstructure:"throttle"`
	Retry      RetryConfig      `mapstructure:"retry"`
	HTTP       HTTPConfig       `mapstructure:"http"`
	Checkpoint CheckpointConfig `mapstructure:"checkpoint"`
}

// StoreConfig locates the content-addressed install store.
type StoreConfig struct {
	Root string `mapstructure:"root"`
}

// CacheConfig configures the conditional download cache (spec.md §4.K).
// MaxSize and TTL accept human-sized/duration strings ("512MB", "24h").
type CacheConfig struct {
	Dir         string `mapstructure:"dir"`
	MaxSize     string `mapstructure:"max_size"`
	TTL         string `mapstructure:"ttl"`
	PersistMeta bool   `mapstructure:"persist_meta"`
}

// MaxSizeBytes parses MaxSize via docker/go-units.
func (c CacheConfig) MaxSizeBytes() (int64, error) {
	return units.RAMInBytes(c.MaxSize)
}

// TTLDuration parses TTL via time.ParseDuration.
func (c CacheConfig) TTLDuration() (time.Duration, error) {
	return time.ParseDuration(c.TTL)
}

// ThrottleConfig configures the token-bucket download throttle
// (spec.md §4.I). Rate accepts a human-sized rate such as "2MB/s"; an
// empty Rate means unthrottled.
type ThrottleConfig struct {
	Rate  string `mapstructure:"rate"`
	Burst int    `mapstructure:"burst"`
}

// BytesPerSecond parses Rate, stripping a trailing "/s" before handing the
// size portion to docker/go-units. A zero result with no error means
// unthrottled.
func (t ThrottleConfig) BytesPerSecond() (int64, error) {
	rate := strings.TrimSpace(t.Rate)
	if rate == "" {
		return 0, nil
	}

	rate = strings.TrimSuffix(rate, "/s")

	return units.RAMInBytes(rate)
}

// RetryConfig configures the fetcher's attempt/backoff loop (spec.md §4.H).
type RetryConfig struct {
	MaxRetries int    `mapstructure:"max_retries"`
	BaseDelay  string `mapstructure:"base_delay"`
}

// BaseDelayDuration parses BaseDelay via time.ParseDuration.
func (r RetryConfig) BaseDelayDuration() (time.Duration, error) {
	return time.ParseDuration(r.BaseDelay)
}

// HTTPConfig configures the transport client (spec.md §4.H).
type HTTPConfig struct {
	Timeout      string `mapstructure:"timeout"`
	MaxRedirects int    `mapstructure:"max_redirects"`
}

// TimeoutDuration parses Timeout via time.ParseDuration.
func (h HTTPConfig) TimeoutDuration() (time.Duration, error) {
	return time.ParseDuration(h.Timeout)
}

// CheckpointConfig configures resumable-download checkpoint storage
// (spec.md §4.J).
type CheckpointConfig struct {
	Dir      string `mapstructure:"dir"`
	SweepAge string `mapstructure:"sweep_age"`
}

// SweepAgeDuration parses SweepAge via time.ParseDuration.
func (c CheckpointConfig) SweepAgeDuration() (time.Duration, error) {
	return time.ParseDuration(c.SweepAge)
}

// Sentinel errors for configuration validation.
var (
	ErrInvalidStoreRoot     = errors.New("store.root must not be empty")
	ErrInvalidCacheMaxSize  = errors.New("cache.max_size must be a valid size (e.g. \"512MB\")")
	ErrInvalidCacheTTL      = errors.New("cache.ttl must be a valid duration (e.g. \"24h\")")
	ErrInvalidThrottleRate  = errors.New("throttle.rate must be a valid rate (e.g. \"2MB/s\") or empty")
	ErrInvalidThrottleBurst = errors.New("throttle.burst must be non-negative")
	ErrInvalidMaxRetries    = errors.New("retry.max_retries must be non-negative")
	ErrInvalidBaseDelay     = errors.New("retry.base_delay must be a valid duration")
	ErrInvalidHTTPTimeout   = errors.New("http.timeout must be a valid duration")
	ErrInvalidMaxRedirects  = errors.New("http.max_redirects must be non-negative")
)

// Validate checks Config invariants and returns the first error found.
func (c *Config) Validate() error {
	if err := c.validateStoreAndCache(); err != nil {
		return err
	}

	return c.validateThrottleAndTransport()
}

func (c *Config) validateStoreAndCache() error {
	if c.Store.Root == "" {
		return ErrInvalidStoreRoot
	}

	if _, err := c.Cache.MaxSizeBytes(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidCacheMaxSize, err)
	}

	if _, err := c.Cache.TTLDuration(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidCacheTTL, err)
	}

	return nil
}

func (c *Config) validateThrottleAndTransport() error {
	if _, err := c.Throttle.BytesPerSecond(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidThrottleRate, err)
	}

	if c.Throttle.Burst < 0 {
		return ErrInvalidThrottleBurst
	}

	if c.Retry.MaxRetries < 0 {
		return ErrInvalidMaxRetries
	}

	if _, err := c.Retry.BaseDelayDuration(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidBaseDelay, err)
	}

	if _, err := c.HTTP.TimeoutDuration(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidHTTPTimeout, err)
	}

	if c.HTTP.MaxRedirects < 0 {
		return ErrInvalidMaxRedirects
	}

	return nil
}
