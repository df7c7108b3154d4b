// Package config loads impactgraph settings.
//
// Settings come from three layers, later ones winning:
//
//  1. built-in defaults ([Default])
//  2. a TOML file (impactgraph.toml in the working directory, or an explicit path)
//  3. environment variables, optionally read from a .env file
//
// Command-line flags are applied on top by the CLI.
package config

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"

	errs "github.com/matzehuels/impactgraph/pkg/errors"
)

// DefaultFile is the config file looked up in the working directory.
const DefaultFile = "impactgraph.toml"

// Environment variables that override file settings.
const (
	EnvBearerToken = "IMPACTGRAPH_BEARER_TOKEN"
	EnvDatabase    = "IMPACTGRAPH_DATABASE"
	EnvRedisURL    = "IMPACTGRAPH_REDIS_URL"
	EnvMongoURI    = "IMPACTGRAPH_MONGO_URI"

	EnvFetchFollowers = "IMPACTGRAPH_FETCH_FOLLOWERS"
)

// Database backends.
const (
	BackendFile  = "file"
	BackendMongo = "mongo"
)

// Cache backends.
const (
	CacheFile  = "file"
	CacheRedis = "redis"
	CacheNone  = "none"
)

// Config is the full settings tree.
type Config struct {
	Database Database `toml:"database"`
	Lookup   Lookup   `toml:"lookup"`
	Cache    Cache    `toml:"cache"`
	Graph    Graph    `toml:"graph"`
	Server   Server   `toml:"server"`

	// Source is the file the config was read from, empty for defaults only.
	Source string `toml:"-"`
}

// Database selects where records are stored.
type Database struct {
	Backend string `toml:"backend"`
	// Path is the JSON document used by the file backend.
	Path string `toml:"path"`
	// Strict turns a corrupt document into a hard error instead of moving
	// it aside.
	Strict          bool   `toml:"strict"`
	MongoURI        string `toml:"mongo_uri"`
	MongoDatabase   string `toml:"mongo_database"`
	MongoCollection string `toml:"mongo_collection"`
}

// Lookup configures the profile provider.
type Lookup struct {
	BaseURL        string   `toml:"base_url"`
	BearerToken    string   `toml:"bearer_token"`
	FetchFollowers bool     `toml:"fetch_followers"`
	CacheTTL       Duration `toml:"cache_ttl"`
	MaxPages       int      `toml:"max_pages"`
}

// Cache selects the response and element cache.
type Cache struct {
	Backend  string `toml:"backend"`
	Dir      string `toml:"dir"`
	RedisURL string `toml:"redis_url"`
	// Prefix scopes every key, so several databases can share one redis.
	Prefix string `toml:"prefix"`
}

// Graph holds the display defaults.
type Graph struct {
	MinConnections int     `toml:"min_connections"`
	Seed           uint64  `toml:"seed"`
	Relation       string  `toml:"relation"`
	XScale         float64 `toml:"x_scale"`
	YScale         float64 `toml:"y_scale"`
}

// Server configures the HTTP API.
type Server struct {
	Addr string `toml:"addr"`
}

// Duration decodes TOML strings such as "24h".
type Duration struct{ time.Duration }

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
	return []byte(d.String()), nil
}

// Default returns the built-in settings.
func Default() *Config {
	return &Config{
		Database: Database{
			Backend:         BackendFile,
			Path:            "impactgraph.json",
			MongoDatabase:   "impactgraph",
			MongoCollection: "projects",
		},
		Lookup: Lookup{
			CacheTTL: Duration{7 * 24 * time.Hour},
			MaxPages: 15,
		},
		Cache: Cache{
			Backend: CacheFile,
		},
		Graph: Graph{
			MinConnections: 5,
			Seed:           1300,
			Relation:       "friends",
			XScale:         400,
			YScale:         300,
		},
		Server: Server{
			Addr: ":8050",
		},
	}
}

// Load reads the config file at path over the defaults and applies the
// environment. An empty path uses DefaultFile when it exists. A .env file
// in the working directory is loaded first when present; variables already
// set are not overwritten.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, errs.Wrap(errs.ErrCodeInvalidInput, err, "read .env")
	}

	cfg := Default()

	explicit := path != ""
	if !explicit {
		path = DefaultFile
	}
	if err := cfg.decodeFile(path); err != nil {
		if explicit || !errors.Is(err, os.ErrNotExist) {
			return nil, err
		}
	}

	cfg.ApplyEnv(os.LookupEnv)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) decodeFile(path string) error {
	md, err := toml.DecodeFile(path, c)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return errs.Wrap(errs.ErrCodeFileNotFound, err, "config file %s", path)
		}
		return errs.Wrap(errs.ErrCodeInvalidInput, err, "parse config %s", path)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return errs.New(errs.ErrCodeInvalidInput, "unknown config keys in %s: %s", path, strings.Join(keys, ", "))
	}
	c.Source = path
	return nil
}

// ApplyEnv overrides settings from the environment. lookup is usually
// os.LookupEnv.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) {
	if v, ok := lookup(EnvBearerToken); ok && v != "" {
		c.Lookup.BearerToken = v
	}
	if v, ok := lookup(EnvDatabase); ok && v != "" {
		c.Database.Path = v
	}
	if v, ok := lookup(EnvMongoURI); ok && v != "" {
		c.Database.MongoURI = v
		c.Database.Backend = BackendMongo
	}
	if v, ok := lookup(EnvFetchFollowers); ok && v != "" {
		c.Lookup.FetchFollowers = ParseBool(v)
	}
	if v, ok := lookup(EnvRedisURL); ok && v != "" {
		c.Cache.RedisURL = v
		c.Cache.Backend = CacheRedis
	}
}

// Validate checks enumerated settings and numeric ranges.
func (c *Config) Validate() error {
	switch c.Database.Backend {
	case BackendFile:
		if c.Database.Path == "" {
			return errs.New(errs.ErrCodeInvalidOptions, "database.path is required for the file backend")
		}
	case BackendMongo:
		if c.Database.MongoURI == "" {
			return errs.New(errs.ErrCodeInvalidOptions, "database.mongo_uri is required for the mongo backend")
		}
	default:
		return errs.New(errs.ErrCodeInvalidOptions, "database.backend: %q (must be file or mongo)", c.Database.Backend)
	}

	switch c.Cache.Backend {
	case CacheFile, CacheNone:
	case CacheRedis:
		if c.Cache.RedisURL == "" {
			return errs.New(errs.ErrCodeInvalidOptions, "cache.redis_url is required for the redis cache")
		}
	default:
		return errs.New(errs.ErrCodeInvalidOptions, "cache.backend: %q (must be file, redis or none)", c.Cache.Backend)
	}

	switch c.Graph.Relation {
	case "friends", "followers", "both":
	default:
		return errs.New(errs.ErrCodeInvalidOptions, "graph.relation: %q (must be friends, followers or both)", c.Graph.Relation)
	}
	if c.Graph.MinConnections < 0 {
		return errs.New(errs.ErrCodeInvalidOptions, "graph.min_connections must not be negative")
	}
	if c.Lookup.CacheTTL.Duration < 0 {
		return errs.New(errs.ErrCodeInvalidOptions, "lookup.cache_ttl must not be negative")
	}
	return nil
}

// ParseBool reads the usual truthy spellings ("1", "true", "yes", "on").
func ParseBool(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "yes", "on":
		return true
	}
	b, _ := strconv.ParseBool(s)
	return b
}
