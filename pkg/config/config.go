// Package config loads stagger configuration from TOML files.
//
//	lanes = 3
//	orientation = "vertical"
//	strategy = "staggered"   # or "grid"
//	lane_size = 120
//
//	[cache]
//	backend = "file"          # file | redis | mongo | none
//	dir = ""                  # defaults to $XDG_CACHE_HOME/stagger
//	redis_addr = "localhost:6379"
//	mongo_uri = "mongodb://localhost:27017"
//	ttl = "720h"
//
//	[server]
//	addr = ":8080"
//	max_items = 100000
//	max_lanes = 64
//	max_lane_size = 4096
//	max_item_size = 4096
//	max_scale = 4.0
//
// Every field is optional; [Default] supplies the rest. Unknown keys are an
// error so typos do not silently fall back to defaults.
package config

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/stagger/pkg/cache"
	errs "github.com/matzehuels/stagger/pkg/errors"
	"github.com/matzehuels/stagger/pkg/lanes"
	"github.com/matzehuels/stagger/pkg/layout"
)

// Cache backend names.
const (
	BackendFile  = "file"
	BackendRedis = "redis"
	BackendMongo = "mongo"
	BackendNone  = "none"
)

// DefaultRedisAddr is used when the redis backend is selected without an
// address.
const DefaultRedisAddr = "localhost:6379"

// DefaultMongoURI is used when the mongo backend is selected without a URI.
const DefaultMongoURI = "mongodb://localhost:27017"

// Config is the full stagger configuration.
type Config struct {
	Lanes       int          `toml:"lanes"`
	Orientation string       `toml:"orientation"`
	Strategy    string       `toml:"strategy"`
	LaneSize    int          `toml:"lane_size"`
	Cache       CacheConfig  `toml:"cache"`
	Server      ServerConfig `toml:"server"`

	// validated tracks whether ValidateAndSetDefaults has been called.
	validated bool
}

// CacheConfig selects and configures the snapshot cache backend.
type CacheConfig struct {
	Backend       string   `toml:"backend"`
	Dir           string   `toml:"dir"`
	RedisAddr     string   `toml:"redis_addr"`
	RedisPassword string   `toml:"redis_password"`
	RedisDB       int      `toml:"redis_db"`
	MongoURI      string   `toml:"mongo_uri"`
	MongoDatabase string   `toml:"mongo_database"`
	MongoColl     string   `toml:"mongo_collection"`
	Prefix        string   `toml:"prefix"`
	TTL           Duration `toml:"ttl"`
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	Addr        string  `toml:"addr"`
	MaxItems    int     `toml:"max_items"`     // largest dataset a request may carry
	MaxLanes    int     `toml:"max_lanes"`     // most lanes a request may ask for
	MaxLaneSize int     `toml:"max_lane_size"` // widest lane a request may ask for
	MaxItemSize int     `toml:"max_item_size"` // largest item width or height
	MaxScale    float64 `toml:"max_scale"`     // largest PNG scale factor
}

// Server defaults.
const (
	DefaultServerAddr  = ":8080"
	DefaultMaxItems    = 100_000
	DefaultMaxLanes    = 64
	DefaultMaxLaneSize = 4096
	DefaultMaxItemSize = 4096
	DefaultMaxScale    = 4.0
)

// Duration is a time.Duration that decodes from strings like "720h".
type Duration struct {
	time.Duration
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Lanes:       layout.DefaultLanes,
		Orientation: lanes.Vertical.String(),
		Strategy:    layout.StrategyStaggered,
		LaneSize:    layout.DefaultLaneSize,
		Cache: CacheConfig{
			Backend: BackendFile,
			TTL:     Duration{cache.TTLSnapshot},
		},
		Server: ServerConfig{
			Addr:        DefaultServerAddr,
			MaxItems:    DefaultMaxItems,
			MaxLanes:    DefaultMaxLanes,
			MaxLaneSize: DefaultMaxLaneSize,
			MaxItemSize: DefaultMaxItemSize,
			MaxScale:    DefaultMaxScale,
		},
	}
}

// Load reads the TOML file at path on top of [Default] and validates it.
func Load(path string) (Config, error) {
	cfg := Default()
	md, err := toml.DecodeFile(path, &cfg)
	if os.IsNotExist(err) {
		return Config{}, errs.Wrap(errs.ErrCodeFileNotFound, err, "config %s", path)
	}
	if err != nil {
		return Config{}, errs.Wrap(errs.ErrCodeInvalidConfig, err, "parse %s", path)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return Config{}, errs.New(errs.ErrCodeInvalidConfig, "%s: unknown keys: %s", path, strings.Join(keys, ", "))
	}
	if err := cfg.ValidateAndSetDefaults(); err != nil {
		return Config{}, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// ValidateAndSetDefaults fills zero values from [Default] and checks every
// field. This method is idempotent - calling it multiple times has the same
// effect as calling it once.
func (c *Config) ValidateAndSetDefaults() error {
	if c.validated {
		return nil
	}
	def := Default()

	if c.Lanes == 0 {
		c.Lanes = def.Lanes
	}
	if c.Orientation == "" {
		c.Orientation = def.Orientation
	}
	if c.Strategy == "" {
		c.Strategy = def.Strategy
	}
	if c.LaneSize == 0 {
		c.LaneSize = def.LaneSize
	}
	if c.Cache.Backend == "" {
		c.Cache.Backend = def.Cache.Backend
	}
	if c.Cache.TTL.Duration == 0 {
		c.Cache.TTL = def.Cache.TTL
	}
	if c.Server.Addr == "" {
		c.Server.Addr = def.Server.Addr
	}
	if c.Server.MaxItems == 0 {
		c.Server.MaxItems = def.Server.MaxItems
	}
	if c.Server.MaxLanes == 0 {
		c.Server.MaxLanes = def.Server.MaxLanes
	}
	if c.Server.MaxLaneSize == 0 {
		c.Server.MaxLaneSize = def.Server.MaxLaneSize
	}
	if c.Server.MaxItemSize == 0 {
		c.Server.MaxItemSize = def.Server.MaxItemSize
	}
	if c.Server.MaxScale == 0 {
		c.Server.MaxScale = def.Server.MaxScale
	}
	if c.Cache.Backend == BackendRedis && c.Cache.RedisAddr == "" {
		c.Cache.RedisAddr = DefaultRedisAddr
	}
	if c.Cache.Backend == BackendMongo && c.Cache.MongoURI == "" {
		c.Cache.MongoURI = DefaultMongoURI
	}

	if err := errs.ValidateLaneCount(c.Lanes); err != nil {
		return err
	}
	if c.LaneSize < 0 {
		return errs.New(errs.ErrCodeInvalidConfig, "lane_size must be non-negative, got %d", c.LaneSize)
	}
	if _, err := lanes.ParseOrientation(c.Orientation); err != nil {
		return err
	}
	if _, err := layout.ParseStrategy(c.Strategy); err != nil {
		return err
	}
	if err := errs.ValidateChoice("cache backend", c.Cache.Backend, BackendFile, BackendRedis, BackendMongo, BackendNone); err != nil {
		return err
	}
	for _, limit := range []struct {
		name  string
		value int
	}{
		{"max_items", c.Server.MaxItems},
		{"max_lanes", c.Server.MaxLanes},
		{"max_lane_size", c.Server.MaxLaneSize},
		{"max_item_size", c.Server.MaxItemSize},
	} {
		if limit.value < 0 {
			return errs.New(errs.ErrCodeInvalidConfig, "server %s must be non-negative, got %d", limit.name, limit.value)
		}
	}
	if c.Server.MaxScale < 0 {
		return errs.New(errs.ErrCodeInvalidConfig, "server max_scale must be non-negative, got %g", c.Server.MaxScale)
	}
	if c.Cache.TTL.Duration < 0 {
		return errs.New(errs.ErrCodeInvalidConfig, "cache ttl must be non-negative, got %s", c.Cache.TTL)
	}

	c.validated = true
	return nil
}

// EngineOptions converts the layout settings to engine options.
func (c *Config) EngineOptions() ([]layout.Option, error) {
	if err := c.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}
	o, err := lanes.ParseOrientation(c.Orientation)
	if err != nil {
		return nil, err
	}
	st, err := layout.ParseStrategy(c.Strategy)
	if err != nil {
		return nil, err
	}
	return []layout.Option{
		layout.WithLanes(c.Lanes),
		layout.WithLaneSize(c.LaneSize),
		layout.WithOrientation(o),
		layout.WithStrategy(st),
	}, nil
}

// OpenCache builds the configured cache backend. defaultDir is used by the
// file backend when no dir is configured.
func (c *Config) OpenCache(ctx context.Context, defaultDir string) (cache.Cache, error) {
	if err := c.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}
	switch strings.ToLower(c.Cache.Backend) {
	case BackendNone:
		return cache.NewNullCache(), nil
	case BackendRedis:
		rc, err := cache.NewRedisCache(ctx, cache.RedisConfig{
			Addr:     c.Cache.RedisAddr,
			Password: c.Cache.RedisPassword,
			DB:       c.Cache.RedisDB,
			Prefix:   c.Cache.Prefix,
		})
		if err != nil {
			return nil, err
		}
		return rc, nil
	case BackendMongo:
		mc, err := cache.NewMongoCache(ctx, cache.MongoConfig{
			URI:        c.Cache.MongoURI,
			Database:   c.Cache.MongoDatabase,
			Collection: c.Cache.MongoColl,
			Timeout:    5 * time.Second,
		})
		if err != nil {
			return nil, err
		}
		return mc, nil
	default:
		dir := c.Cache.Dir
		if dir == "" {
			dir = defaultDir
		}
		if dir == "" {
			return nil, errs.New(errs.ErrCodeInvalidConfig, "file cache needs a directory")
		}
		fc, err := cache.NewFileCache(dir)
		if err != nil {
			return nil, err
		}
		return fc, nil
	}
}
