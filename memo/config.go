package memo

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/redis/go-redis/v9"
	"gopkg.in/yaml.v3"

	"github.com/jonwraymond/memoized/cache"
)

// Config is the serializable form of Options.
type Config struct {
	Name              string      `yaml:"name"`
	Method            bool        `yaml:"method"`
	AllowNamed        *bool       `yaml:"allow_named"`
	Hashable          *bool       `yaml:"hashable"`
	PreserveSignature bool        `yaml:"preserve_signature"`
	Coalesce          bool        `yaml:"coalesce"`
	Cache             CacheConfig `yaml:"cache"`
}

// CacheConfig selects and configures the backing store.
type CacheConfig struct {
	Type       string        `yaml:"type"`     // map|bounded|sharded|redis, empty for the per-wrapper default
	Capacity   int           `yaml:"capacity"` // bounded
	Shards     int           `yaml:"shards"`   // sharded
	Addr       string        `yaml:"addr"`     // redis
	Prefix     string        `yaml:"prefix"`   // redis
	Expiration time.Duration `yaml:"expiration"`

	// Guard, when set, wraps the store in a cache.Guarded.
	Guard *GuardConfig `yaml:"guard"`
}

// GuardConfig is the serializable form of cache.GuardConfig.
type GuardConfig struct {
	MaxFailures       int           `yaml:"max_failures"`
	ResetTimeout      time.Duration `yaml:"reset_timeout"`
	HalfOpenMaxProbes int           `yaml:"half_open_max_probes"`
}

// Valid cache types.
var validCacheTypes = map[string]bool{
	"":        true, // Empty is valid (default store)
	"map":     true,
	"bounded": true,
	"sharded": true,
	"redis":   true,
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if !validCacheTypes[c.Cache.Type] {
		return fmt.Errorf("%w: unknown cache type %q", ErrConfiguration, c.Cache.Type)
	}
	switch c.Cache.Type {
	case "bounded":
		if c.Cache.Capacity <= 0 {
			return fmt.Errorf("%w: bounded cache needs a positive capacity, got %d", ErrConfiguration, c.Cache.Capacity)
		}
	case "sharded":
		if c.Cache.Shards <= 0 {
			return fmt.Errorf("%w: sharded cache needs a positive shard count, got %d", ErrConfiguration, c.Cache.Shards)
		}
	case "redis":
		if c.Cache.Addr == "" {
			return fmt.Errorf("%w: redis cache needs an address", ErrConfiguration)
		}
	}
	if c.Cache.Expiration < 0 {
		return fmt.Errorf("%w: negative expiration %s", ErrConfiguration, c.Cache.Expiration)
	}
	if g := c.Cache.Guard; g != nil {
		if c.Cache.Type == "" {
			return fmt.Errorf("%w: guard needs an explicit cache type", ErrConfiguration)
		}
		if g.MaxFailures < 0 || g.ResetTimeout < 0 || g.HalfOpenMaxProbes < 0 {
			return fmt.Errorf("%w: negative guard setting", ErrConfiguration)
		}
	}
	return nil
}

// Options converts the configuration to Memoize options. A configured store
// is created here and shared by every wrapper built from the result.
func (c *Config) Options() ([]Option, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}

	var opts []Option
	if c.Name != "" {
		opts = append(opts, WithName(c.Name))
	}
	if c.Method {
		opts = append(opts, WithMethod())
	}
	if c.AllowNamed != nil {
		opts = append(opts, WithAllowNamed(*c.AllowNamed))
	}
	if c.Hashable != nil && !*c.Hashable {
		opts = append(opts, WithUnhashableArgs())
	}
	if c.PreserveSignature {
		opts = append(opts, WithPreservedSignature())
	}
	if c.Coalesce {
		opts = append(opts, WithCoalescing())
	}

	store, err := c.Cache.Store()
	if err != nil {
		return nil, err
	}
	if store != nil {
		opts = append(opts, WithCache(store))
	}
	return opts, nil
}

// Store builds the configured store, or returns nil for the default.
func (c CacheConfig) Store() (cache.Store, error) {
	store, err := c.baseStore()
	if err != nil || store == nil || c.Guard == nil {
		return store, err
	}
	return cache.NewGuarded(store, cache.GuardConfig{
		MaxFailures:       c.Guard.MaxFailures,
		ResetTimeout:      c.Guard.ResetTimeout,
		HalfOpenMaxProbes: c.Guard.HalfOpenMaxProbes,
	})
}

func (c CacheConfig) baseStore() (cache.Store, error) {
	switch c.Type {
	case "":
		return nil, nil
	case "map":
		return cache.NewMap(), nil
	case "bounded":
		return cache.NewBounded(c.Capacity)
	case "sharded":
		return cache.NewSharded(c.Shards)
	case "redis":
		var opts []cache.RedisOption
		if c.Prefix != "" {
			opts = append(opts, cache.WithPrefix(c.Prefix))
		}
		if c.Expiration > 0 {
			opts = append(opts, cache.WithExpiration(c.Expiration))
		}
		return cache.NewRedis(redis.NewClient(&redis.Options{Addr: c.Addr}), opts...)
	default:
		return nil, fmt.Errorf("%w: unknown cache type %q", ErrConfiguration, c.Type)
	}
}

// ParseConfig decodes a YAML configuration.
func ParseConfig(data []byte) (Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("memo: failed to parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// LoadConfig reads and decodes a YAML configuration file.
func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Config{}, fmt.Errorf("memo: config file %q not found: %w", path, err)
		}
		return Config{}, fmt.Errorf("memo: failed to read config: %w", err)
	}
	return ParseConfig(data)
}
