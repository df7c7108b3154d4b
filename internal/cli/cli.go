package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/impactgraph/pkg/cache"
	"github.com/matzehuels/impactgraph/pkg/config"
	"github.com/matzehuels/impactgraph/pkg/integrations/twitter"
	"github.com/matzehuels/impactgraph/pkg/observability"
	"github.com/matzehuels/impactgraph/pkg/pipeline"
	"github.com/matzehuels/impactgraph/pkg/resolve"
	"github.com/matzehuels/impactgraph/pkg/store"
)

// =============================================================================
// Constants
// =============================================================================

const (
	// appName is the application name used for directories and display.
	appName = "impactgraph"

	// redisPrefix namespaces every key this tool writes to redis.
	redisPrefix = appName + ":"
)

// Log levels accepted by New and SetLogLevel.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	configPath string
	verbose    bool
	cfg        *config.Config
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{Logger: newLogger(w, level)}
}

// SetLogLevel updates the logger's level. At debug level, import, pipeline,
// cache and provider events are logged as well.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
	if level <= log.DebugLevel {
		observability.Register(observability.NewLogHooks(c.Logger).Hooks())
	} else {
		observability.Reset()
	}
}

// config loads the configuration once per process.
func (c *CLI) config() (*config.Config, error) {
	if c.cfg != nil {
		return c.cfg, nil
	}
	cfg, err := config.Load(c.configPath)
	if err != nil {
		return nil, err
	}
	if cfg.Source != "" {
		c.Logger.Debug("loaded config", "path", cfg.Source)
	}
	c.cfg = cfg
	return cfg, nil
}

// =============================================================================
// Factories
// =============================================================================

// session bundles the resources a command opens. Close releases all of them.
type session struct {
	cfg   *config.Config
	cache cache.Cache
	keyer cache.Keyer
	db    *store.Database
}

func (s *session) Close() error {
	var first error
	if s.db != nil {
		first = s.db.Close()
	}
	if s.cache != nil {
		if err := s.cache.Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// sessionOptions tweak how a session is opened.
type sessionOptions struct {
	noCache bool
	refresh bool
}

// open builds the cache, the lookup provider and the database from the
// loaded configuration.
func (c *CLI) open(ctx context.Context, opts sessionOptions) (*session, error) {
	cfg, err := c.config()
	if err != nil {
		return nil, err
	}

	s := &session{cfg: cfg}
	s.cache, s.keyer, err = c.openCache(ctx, cfg, opts.noCache)
	if err != nil {
		return nil, err
	}

	backend, err := c.openBackend(ctx, cfg)
	if err != nil {
		_ = s.cache.Close()
		return nil, err
	}

	client := twitter.NewClient(s.cache, twitter.Options{
		Token:    cfg.Lookup.BearerToken,
		BaseURL:  cfg.Lookup.BaseURL,
		TTL:      cfg.Lookup.CacheTTL.Duration,
		Refresh:  opts.refresh,
		MaxPages: cfg.Lookup.MaxPages,
	})
	client.SetKeyer(s.keyer)
	resolver := resolve.New(client, resolve.Options{
		FetchFollowers: cfg.Lookup.FetchFollowers,
		Logger:         c.Logger,
	})
	s.db = store.New(backend, resolver, store.Options{Logger: c.Logger})
	return s, nil
}

func (c *CLI) openCache(ctx context.Context, cfg *config.Config, noCache bool) (cache.Cache, cache.Keyer, error) {
	var keyer cache.Keyer = cache.NewDefaultKeyer()
	if cfg.Cache.Prefix != "" {
		keyer = cache.NewScopedKeyer(keyer, cfg.Cache.Prefix)
	}
	if noCache || cfg.Cache.Backend == config.CacheNone {
		return cache.NewNullCache(), keyer, nil
	}

	if cfg.Cache.Backend == config.CacheRedis {
		rc, err := cache.NewRedisCache(ctx, cache.RedisOptions{URL: cfg.Cache.RedisURL, Prefix: redisPrefix})
		if err != nil {
			return nil, nil, err
		}
		c.Logger.Debug("using redis cache")
		return rc, keyer, nil
	}

	dir, err := cacheDir(cfg)
	if err != nil {
		c.Logger.Warn("cache disabled", "error", err)
		return cache.NewNullCache(), keyer, nil
	}
	fc, err := cache.NewFileCache(dir)
	if err != nil {
		return nil, nil, fmt.Errorf("open cache %s: %w", dir, err)
	}
	return fc, keyer, nil
}

func (c *CLI) openBackend(ctx context.Context, cfg *config.Config) (store.Backend, error) {
	if cfg.Database.Backend == config.BackendMongo {
		b, err := store.NewMongoBackend(ctx, store.MongoOptions{
			URI:        cfg.Database.MongoURI,
			Database:   cfg.Database.MongoDatabase,
			Collection: cfg.Database.MongoCollection,
		})
		if err != nil {
			return nil, err
		}
		c.Logger.Debug("using mongo database", "database", cfg.Database.MongoDatabase)
		return b, nil
	}
	c.Logger.Debug("using file database", "path", cfg.Database.Path)
	return store.NewFileBackend(cfg.Database.Path, store.FileOptions{
		Strict: cfg.Database.Strict,
		Logger: c.Logger,
	}), nil
}

// runner creates a display pipeline runner over the session's database.
func (s *session) runner(logger *log.Logger) *pipeline.Runner {
	return pipeline.NewRunner(s.db, s.cache, s.keyer, logger)
}

// graphDefaults returns the display options configured for this session.
func (s *session) graphDefaults() pipeline.Options {
	g := s.cfg.Graph
	return pipeline.Options{
		K:        g.MinConnections,
		Seed:     g.Seed,
		Relation: g.Relation,
		XScale:   g.XScale,
		YScale:   g.YScale,
	}
}

// =============================================================================
// Paths
// =============================================================================

// cacheDir returns the configured cache directory, or the XDG cache
// directory (~/.cache/impactgraph/) when none is configured.
func cacheDir(cfg *config.Config) (string, error) {
	if cfg != nil && cfg.Cache.Dir != "" {
		return cfg.Cache.Dir, nil
	}
	if cacheHome := os.Getenv("XDG_CACHE_HOME"); cacheHome != "" {
		return filepath.Join(cacheHome, appName), nil
	}
	return cache.DefaultDir()
}
