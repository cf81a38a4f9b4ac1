// Package config loads the forkdep configuration file.
//
// Configuration lives at ~/.config/forkdep/config.yaml and is entirely
// optional; every field has a working default. Environment variables override
// file values:
//
//	FORKDEP_GITHUB_CLIENT_ID  overrides github.client_id
//	FORKDEP_CACHE_BACKEND     overrides cache.backend
//	FORKDEP_REDIS_ADDR        overrides cache.redis_addr
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Default values applied when the config file is absent or partial.
const (
	DefaultPatchDir = "patches"
	DefaultBackend  = "file"
	DefaultCacheTTL = 6 * time.Hour
)

// Config is the root configuration structure.
type Config struct {
	GitHub GitHubConfig `yaml:"github"`
	Fork   ForkConfig   `yaml:"fork"`
	Cache  CacheConfig  `yaml:"cache"`
}

// GitHubConfig configures the GitHub integration.
type GitHubConfig struct {
	// ClientID overrides the built-in OAuth App client ID.
	ClientID string `yaml:"client_id"`
}

// ForkConfig configures fork and clone behavior.
type ForkConfig struct {
	// Organization, when set, receives forks instead of the user account.
	Organization string `yaml:"organization"`
	// Dir is the directory under the workspace root where local copies are
	// cloned. Defaults to "patches".
	Dir string `yaml:"dir"`
}

// CacheConfig configures the HTTP response cache.
type CacheConfig struct {
	// Backend selects the cache implementation: "file", "null", or "redis".
	Backend string `yaml:"backend"`
	// RedisAddr is the host:port of the Redis server (backend = "redis").
	RedisAddr string `yaml:"redis_addr"`
	// TTLHours is how long responses stay fresh. 0 uses the default (6h).
	TTLHours int `yaml:"ttl_hours"`
}

// TTL returns the configured cache TTL as a duration.
func (c CacheConfig) TTL() time.Duration {
	if c.TTLHours <= 0 {
		return DefaultCacheTTL
	}
	return time.Duration(c.TTLHours) * time.Hour
}

// DefaultPath returns the default config file location
// (~/.config/forkdep/config.yaml).
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "forkdep", "config.yaml"), nil
}

// Load reads the config file at path, applies defaults, and applies
// environment overrides. A missing file is not an error; defaults are
// returned. A malformed file is an error.
func Load(path string) (*Config, error) {
	cfg := &Config{}

	data, err := os.ReadFile(path)
	if err == nil {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}

	cfg.applyDefaults()
	cfg.applyEnv()
	return cfg, nil
}

// LoadDefault loads the config from the default location.
func LoadDefault() (*Config, error) {
	path, err := DefaultPath()
	if err != nil {
		// No home directory: run with defaults.
		cfg := &Config{}
		cfg.applyDefaults()
		cfg.applyEnv()
		return cfg, nil
	}
	return Load(path)
}

func (c *Config) applyDefaults() {
	if c.Fork.Dir == "" {
		c.Fork.Dir = DefaultPatchDir
	}
	if c.Cache.Backend == "" {
		c.Cache.Backend = DefaultBackend
	}
}

func (c *Config) applyEnv() {
	if v := os.Getenv("FORKDEP_GITHUB_CLIENT_ID"); v != "" {
		c.GitHub.ClientID = v
	}
	if v := os.Getenv("FORKDEP_CACHE_BACKEND"); v != "" {
		c.Cache.Backend = v
	}
	if v := os.Getenv("FORKDEP_REDIS_ADDR"); v != "" {
		c.Cache.RedisAddr = v
	}
}
