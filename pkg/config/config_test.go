package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	errs "github.com/matzehuels/impactgraph/pkg/errors"
)

func writeFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "impactgraph.toml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func clearEnv(t *testing.T) {
	for _, k := range []string{EnvBearerToken, EnvDatabase, EnvRedisURL, EnvMongoURI, EnvFetchFollowers} {
		t.Setenv(k, "")
	}
}

func TestDefault(t *testing.T) {
	cfg := Default()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Default() is invalid: %v", err)
	}
	if cfg.Graph.MinConnections != 5 || cfg.Graph.Seed != 1300 {
		t.Errorf("graph defaults = %+v", cfg.Graph)
	}
	if cfg.Graph.XScale != 400 || cfg.Graph.YScale != 300 {
		t.Errorf("scale defaults = %v x %v", cfg.Graph.XScale, cfg.Graph.YScale)
	}
	if cfg.Database.Backend != BackendFile || cfg.Cache.Backend != CacheFile {
		t.Errorf("backend defaults = %q / %q", cfg.Database.Backend, cfg.Cache.Backend)
	}
}

func TestLoadFile(t *testing.T) {
	clearEnv(t)
	path := writeFile(t, `
[database]
path = "data/projects.json"
strict = true

[lookup]
fetch_followers = true
cache_ttl = "12h"

[graph]
min_connections = 2
relation = "both"
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Source != path {
		t.Errorf("Source = %q", cfg.Source)
	}
	if cfg.Database.Path != "data/projects.json" || !cfg.Database.Strict {
		t.Errorf("database = %+v", cfg.Database)
	}
	if !cfg.Lookup.FetchFollowers || cfg.Lookup.CacheTTL.Duration != 12*time.Hour {
		t.Errorf("lookup = %+v", cfg.Lookup)
	}
	if cfg.Graph.MinConnections != 2 || cfg.Graph.Relation != "both" {
		t.Errorf("graph = %+v", cfg.Graph)
	}
	// Unset keys keep their defaults.
	if cfg.Graph.Seed != 1300 || cfg.Server.Addr != ":8050" {
		t.Errorf("defaults lost: seed=%d addr=%q", cfg.Graph.Seed, cfg.Server.Addr)
	}
}

func TestLoadErrors(t *testing.T) {
	clearEnv(t)
	tests := []struct {
		name    string
		content string
		code    errs.Code
	}{
		{"syntax", "[graph\n", errs.ErrCodeInvalidInput},
		{"unknown key", "[graph]\ncolour = 1\n", errs.ErrCodeInvalidInput},
		{"bad duration", "[lookup]\ncache_ttl = \"soon\"\n", errs.ErrCodeInvalidInput},
		{"bad relation", "[graph]\nrelation = \"likes\"\n", errs.ErrCodeInvalidOptions},
		{"bad backend", "[database]\nbackend = \"sqlite\"\n", errs.ErrCodeInvalidOptions},
		{"mongo without uri", "[database]\nbackend = \"mongo\"\n", errs.ErrCodeInvalidOptions},
		{"redis without url", "[cache]\nbackend = \"redis\"\n", errs.ErrCodeInvalidOptions},
		{"negative k", "[graph]\nmin_connections = -1\n", errs.ErrCodeInvalidOptions},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeFile(t, tt.content))
			if err == nil {
				t.Fatal("expected error")
			}
			if got := errs.GetCode(err); got != tt.code {
				t.Errorf("code = %q, want %q (err %v)", got, tt.code, err)
			}
		})
	}
}

func TestLoadMissingExplicitFile(t *testing.T) {
	clearEnv(t)
	_, err := Load(filepath.Join(t.TempDir(), "nope.toml"))
	if !errors.Is(err, os.ErrNotExist) {
		t.Errorf("err = %v, want not-exist", err)
	}
	if errs.GetCode(err) != errs.ErrCodeFileNotFound {
		t.Errorf("code = %q", errs.GetCode(err))
	}
}

func TestApplyEnv(t *testing.T) {
	env := map[string]string{
		EnvBearerToken:    "secret",
		EnvDatabase:       "/tmp/db.json",
		EnvRedisURL:       "redis://localhost:6379/0",
		EnvMongoURI:       "mongodb://localhost:27017",
		EnvFetchFollowers: "yes",
	}
	cfg := Default()
	cfg.ApplyEnv(func(k string) (string, bool) {
		v, ok := env[k]
		return v, ok
	})

	if cfg.Lookup.BearerToken != "secret" {
		t.Errorf("BearerToken = %q", cfg.Lookup.BearerToken)
	}
	if cfg.Database.Path != "/tmp/db.json" {
		t.Errorf("Path = %q", cfg.Database.Path)
	}
	if cfg.Database.Backend != BackendMongo || cfg.Database.MongoURI == "" {
		t.Errorf("database = %+v", cfg.Database)
	}
	if cfg.Cache.Backend != CacheRedis || cfg.Cache.RedisURL == "" {
		t.Errorf("cache = %+v", cfg.Cache)
	}
	if !cfg.Lookup.FetchFollowers {
		t.Error("FetchFollowers = false")
	}
}

func TestLoadEnvOverridesFile(t *testing.T) {
	clearEnv(t)
	t.Setenv(EnvBearerToken, "from-env")
	path := writeFile(t, "[lookup]\nbearer_token = \"from-file\"\n")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Lookup.BearerToken != "from-env" {
		t.Errorf("BearerToken = %q, want from-env", cfg.Lookup.BearerToken)
	}
}

func TestParseBool(t *testing.T) {
	tests := map[string]bool{
		"1": true, "true": true, "TRUE": true, "yes": true, "on": true,
		"0": false, "false": false, "no": false, "": false, "maybe": false,
	}
	for in, want := range tests {
		if got := ParseBool(in); got != want {
			t.Errorf("ParseBool(%q) = %v, want %v", in, got, want)
		}
	}
}
