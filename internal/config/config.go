// Package config loads studytrack settings from YAML and the environment.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/rawbytes"
	"github.com/knadh/koanf/v2"

	"github.com/pbaille/studytrack/internal/catalog"
)

const (
	envPrefix         = "STUDYTRACK_"
	maxConfigFileSize = 1024 * 1024

	BackendMemory = "memory"
	BackendSQLite = "sqlite"
	BackendRedis  = "redis"
)

type Config struct {
	Store    StoreConfig       `koanf:"store"`
	Server   ServerConfig      `koanf:"server"`
	Log      LogConfig         `koanf:"log"`
	Catalog  CatalogConfig     `koanf:"catalog"`
	Subjects []catalog.Subject `koanf:"subjects"`
}

type StoreConfig struct {
	Backend     string `koanf:"backend"`
	Path        string `koanf:"path"`
	RedisAddr   string `koanf:"redis_addr"`
	RedisPrefix string `koanf:"redis_prefix"`
}

type ServerConfig struct {
	Addr string `koanf:"addr"`
}

type LogConfig struct {
	Mode string `koanf:"mode"`
}

// CatalogConfig points at a study page (file or URL) holding the default
// subjects. When empty the inline Subjects list is used.
type CatalogConfig struct {
	Page string `koanf:"page"`
}

// DefaultDir is ~/.studytrack
func DefaultDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".studytrack"
	}
	return filepath.Join(home, ".studytrack")
}

// DefaultPath is the config file read when none is given.
func DefaultPath() string {
	return filepath.Join(DefaultDir(), "config.yaml")
}

// Load reads configPath (if it exists), then overrides with STUDYTRACK_*
// environment variables, then fills defaults and validates.
//
//	STUDYTRACK_STORE_BACKEND    -> store.backend
//	STUDYTRACK_STORE_REDIS_ADDR -> store.redis_addr
//	STUDYTRACK_CATALOG_PAGE     -> catalog.page
func Load(configPath string) (*Config, error) {
	k := koanf.New(".")

	if configPath == "" {
		configPath = DefaultPath()
	}
	if info, err := os.Stat(configPath); err == nil {
		if info.Size() > maxConfigFileSize {
			return nil, fmt.Errorf("config file %s exceeds %d bytes", configPath, maxConfigFileSize)
		}
		content, err := os.ReadFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}
		if err := k.Load(rawbytes.Provider(content), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("load config file %s: %w", configPath, err)
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("stat config file: %w", err)
	}

	// Section name up to the first underscore, field name keeps the rest.
	if err := k.Load(env.Provider(envPrefix, ".", func(s string) string {
		lower := strings.ToLower(strings.TrimPrefix(s, envPrefix))
		parts := strings.SplitN(lower, "_", 2)
		if len(parts) == 1 {
			return lower
		}
		return parts[0] + "." + parts[1]
	}), nil); err != nil {
		return nil, fmt.Errorf("load environment: %w", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	applyDefaults(&cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return &cfg, nil
}

func applyDefaults(cfg *Config) {
	if cfg.Store.Backend == "" {
		cfg.Store.Backend = BackendSQLite
	}
	if cfg.Store.Backend == BackendSQLite && cfg.Store.Path == "" {
		cfg.Store.Path = filepath.Join(DefaultDir(), "studytrack.db")
	}
	if cfg.Store.RedisPrefix == "" {
		cfg.Store.RedisPrefix = "studytrack:"
	}
	if cfg.Server.Addr == "" {
		cfg.Server.Addr = ":8080"
	}
	if cfg.Log.Mode == "" {
		cfg.Log.Mode = "prod"
	}
}

// Validate checks that the selected backend has what it needs.
func (c *Config) Validate() error {
	switch c.Store.Backend {
	case BackendMemory:
	case BackendSQLite:
		if strings.TrimSpace(c.Store.Path) == "" {
			return fmt.Errorf("store.path is required for the sqlite backend")
		}
	case BackendRedis:
		if strings.TrimSpace(c.Store.RedisAddr) == "" {
			return fmt.Errorf("store.redis_addr is required for the redis backend")
		}
	default:
		return fmt.Errorf("unknown store backend %q", c.Store.Backend)
	}
	for i, s := range c.Subjects {
		if strings.TrimSpace(s.Name) == "" {
			return fmt.Errorf("subjects[%d]: name is required", i)
		}
	}
	return nil
}
