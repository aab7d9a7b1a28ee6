// Package config loads facepile group files.
//
// A group file is TOML. It names the collaborators to draw and optionally
// carries server and cache settings:
//
//	size = "md"
//	formats = ["svg", "json"]
//
//	[[collaborators]]
//	name = "Ann"
//
//	[[collaborators]]
//	name = "Bo"
//	image = "bo.png"
//
//	[server]
//	addr = ":8080"
//	rate_limit = 120
//
//	[cache]
//	backend = "redis"
//	ttl = "24h"
//	redis_addr = "localhost:6379"
package config

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/facepile/pkg/avatar"
	"github.com/matzehuels/facepile/pkg/cache"
	"github.com/matzehuels/facepile/pkg/errors"
	"github.com/matzehuels/facepile/pkg/pipeline"
	"github.com/matzehuels/facepile/pkg/size"
)

const appName = "facepile"

// Cache backends.
const (
	BackendFile  = "file"
	BackendRedis = "redis"
	BackendNone  = "none"
)

// Defaults applied by SetDefaults.
const (
	DefaultAddr      = ":8080"
	DefaultRateLimit = 120
	DefaultRedisAddr = "localhost:6379"
	DefaultPrefix    = "facepile:"
)

// Config is the contents of a group file.
type Config struct {
	Size          size.Class            `toml:"size"`
	Formats       []string              `toml:"formats"`
	Title         string                `toml:"title"`
	NoWash        bool                  `toml:"no_wash"`
	Font          string                `toml:"font"`
	Collaborators []avatar.Collaborator `toml:"collaborators"`
	Server        Server                `toml:"server"`
	Cache         Cache                 `toml:"cache"`
}

// Server configures the HTTP server.
type Server struct {
	Addr string `toml:"addr"`
	// RateLimit is requests per minute per client IP. Negative disables it.
	RateLimit int `toml:"rate_limit"`
	// AllowPrivateImages lets the server download images from loopback,
	// private and link-local addresses. Off by default.
	AllowPrivateImages bool `toml:"allow_private_images"`
}

// Cache configures artifact caching.
type Cache struct {
	Backend       string        `toml:"backend"`
	TTL           time.Duration `toml:"ttl"`
	Dir           string        `toml:"dir"`
	RedisAddr     string        `toml:"redis_addr"`
	RedisPassword string        `toml:"redis_password"`
	RedisDB       int           `toml:"redis_db"`
	// Prefix namespaces artifact keys so deployments can share a Redis
	// database.
	Prefix string `toml:"prefix"`
}

// Load reads and parses a group file. Defaults are applied and the result
// is validated.
func Load(path string) (*Config, error) {
	if path == "" {
		return nil, errors.New(errors.ErrCodeInvalidPath, "config path cannot be empty")
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrap(errors.ErrCodeNotFound, err, "config file %s", path)
		}
		return nil, errors.Wrap(errors.ErrCodeInvalidConfig, err, "read config %s", path)
	}
	cfg, err := Parse(data)
	if err != nil {
		return nil, err
	}
	// Relative image paths are resolved against the group file's directory.
	cfg.resolveImages(filepath.Dir(path))
	return cfg, nil
}

// Parse decodes TOML data, applies defaults and validates.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	md, err := toml.Decode(string(data), &cfg)
	if err != nil {
		code := errors.GetCode(err)
		if code == "" {
			code = errors.ErrCodeInvalidConfig
		}
		return nil, errors.Wrap(code, err, "parse config")
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return nil, errors.New(errors.ErrCodeInvalidConfig, "unknown config keys: %s", strings.Join(keys, ", "))
	}
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Default returns a configuration with defaults and no collaborators.
func Default() *Config {
	cfg := &Config{}
	cfg.SetDefaults()
	return cfg
}

// SetDefaults fills unset fields.
func (c *Config) SetDefaults() {
	if c.Size == "" {
		c.Size = size.Default
	}
	if len(c.Formats) == 0 {
		c.Formats = []string{pipeline.FormatSVG}
	}
	if c.Server.Addr == "" {
		c.Server.Addr = DefaultAddr
	}
	if c.Server.RateLimit == 0 {
		c.Server.RateLimit = DefaultRateLimit
	}
	if c.Cache.Backend == "" {
		c.Cache.Backend = BackendFile
	}
	if c.Cache.TTL == 0 {
		c.Cache.TTL = cache.DefaultTTL
	}
	if c.Cache.Prefix == "" {
		c.Cache.Prefix = DefaultPrefix
	}
	if c.Cache.Backend == BackendRedis && c.Cache.RedisAddr == "" {
		c.Cache.RedisAddr = DefaultRedisAddr
	}
}

// Validate checks every field. Collaborators are optional so that a file
// holding only server settings can be passed to serve.
func (c *Config) Validate() error {
	if err := c.Size.Validate(); err != nil {
		return err
	}
	if err := pipeline.ValidateFormats(c.Formats); err != nil {
		return err
	}
	for i, collab := range c.Collaborators {
		if err := collab.Validate(); err != nil {
			return errors.Wrap(errors.GetCode(err), err, "collaborators[%d]", i)
		}
	}
	switch c.Cache.Backend {
	case BackendFile, BackendRedis, BackendNone:
	default:
		return errors.New(errors.ErrCodeInvalidConfig, "cache.backend must be file, redis or none, got %q", c.Cache.Backend)
	}
	if c.Cache.TTL < 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "cache.ttl must not be negative")
	}
	return nil
}

// PipelineOptions converts the group into pipeline options.
func (c *Config) PipelineOptions() pipeline.Options {
	return pipeline.Options{
		Collaborators: c.Collaborators,
		Size:          c.Size,
		Formats:       append([]string(nil), c.Formats...),
		Title:         c.Title,
		NoWash:        c.NoWash,
		FontFamily:    c.Font,
	}
}

// Keyer returns the artifact keyer, scoped by Cache.Prefix.
func (c *Config) Keyer() cache.Keyer {
	return cache.NewScopedKeyer(cache.NewDefaultKeyer(), c.Cache.Prefix)
}

// OpenCache builds the configured cache backend.
func (c *Config) OpenCache(ctx context.Context) (cache.Cache, error) {
	switch c.Cache.Backend {
	case BackendNone:
		return cache.NewNullCache(), nil
	case BackendRedis:
		rc, err := cache.NewRedisCache(ctx, cache.RedisConfig{
			Addr:     c.Cache.RedisAddr,
			Password: c.Cache.RedisPassword,
			DB:       c.Cache.RedisDB,
		})
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeNetwork, err, "connect redis %s", c.Cache.RedisAddr)
		}
		return rc, nil
	default:
		dir := c.Cache.Dir
		if dir == "" {
			var err error
			if dir, err = CacheDir(); err != nil {
				return nil, err
			}
		}
		fc, err := cache.NewFileCache(dir)
		if err != nil {
			return nil, err
		}
		return fc, nil
	}
}

func (c *Config) resolveImages(base string) {
	for i, collab := range c.Collaborators {
		src := collab.ImageSource
		if src == "" || strings.Contains(src, ":") || filepath.IsAbs(src) {
			continue
		}
		c.Collaborators[i].ImageSource = filepath.Join(base, src)
	}
}

// CacheDir returns $XDG_CACHE_HOME/facepile, falling back to
// ~/.cache/facepile.
func CacheDir() (string, error) {
	if cacheHome := os.Getenv("XDG_CACHE_HOME"); cacheHome != "" {
		return filepath.Join(cacheHome, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", appName), nil
}
