// Package config loads rose configuration from a TOML file and the
// environment.
//
// The file lives at $XDG_CONFIG_HOME/rose/config.toml (falling back to
// ~/.config/rose/config.toml). A missing file yields [Default]. Secrets are
// never read from the file: the API key, and optionally the endpoint and
// model, come from OPENAI_API_KEY, OPENAI_BASE_URL and MODEL_NAME, which
// [LoadEnv] can populate from a .env file.
//
// Example config.toml:
//
//	[layout]
//	ring_start = 200
//	clearance = 120
//
//	[storage]
//	backend = "mongo"
//	mongo_uri = "mongodb://localhost:27017"
//
//	[cache]
//	backend = "redis"
//	redis_url = "redis://localhost:6379/0"
//	ttl = "24h"
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"

	"github.com/matzehuels/rose/pkg/core/radial"
	"github.com/matzehuels/rose/pkg/generate"
	"github.com/matzehuels/rose/pkg/graph"
)

const appName = "rose"

// Backend names.
const (
	BackendFile  = "file"
	BackendMongo = "mongo"
	BackendRedis = "redis"
	BackendNone  = "none"
)

// Environment variables read by GeneratorConfig.
const (
	EnvAPIKey  = "OPENAI_API_KEY"
	EnvBaseURL = "OPENAI_BASE_URL"
	EnvModel   = "MODEL_NAME"
)

// Config holds rose configuration.
type Config struct {
	Layout   LayoutConfig   `toml:"layout"`
	Storage  StorageConfig  `toml:"storage"`
	Cache    CacheConfig    `toml:"cache"`
	Generate GenerateConfig `toml:"generate"`
	Server   ServerConfig   `toml:"server"`
}

// LayoutConfig mirrors radial.Options. Zero values mean the layout default.
type LayoutConfig struct {
	CenterX             float64 `toml:"center_x"`
	CenterY             float64 `toml:"center_y"`
	RingStart           float64 `toml:"ring_start"`
	RingGap             float64 `toml:"ring_gap"`
	Iterations          int     `toml:"iterations"`
	AlphaMin            float64 `toml:"alpha_min"`
	VelocityDecay       float64 `toml:"velocity_decay"`
	Charge              float64 `toml:"charge"`
	ChargeDistanceMin   float64 `toml:"charge_distance_min"`
	ChargeDistanceMax   float64 `toml:"charge_distance_max"`
	TreeLinkDistance    float64 `toml:"tree_link_distance"`
	TreeLinkStrength    float64 `toml:"tree_link_strength"`
	CrossLinkDistance   float64 `toml:"cross_link_distance"`
	CrossLinkStrength   float64 `toml:"cross_link_strength"`
	CrossLinkSlack      float64 `toml:"cross_link_slack"`
	RadialStrength      float64 `toml:"radial_strength"`
	AnchorStrength      float64 `toml:"anchor_strength"`
	Clearance           float64 `toml:"clearance"`
	CollisionIterations int     `toml:"collision_iterations"`
	DiscoveryOrder      bool    `toml:"discovery_order"`
}

// StorageConfig selects where network state is kept.
type StorageConfig struct {
	Backend       string `toml:"backend"` // "file" or "mongo"
	Dir           string `toml:"dir"`
	MongoURI      string `toml:"mongo_uri"`
	MongoDatabase string `toml:"mongo_database"`
}

// CacheConfig selects the layout cache backend.
type CacheConfig struct {
	Backend  string   `toml:"backend"` // "file", "redis" or "none"
	Dir      string   `toml:"dir"`
	RedisURL string   `toml:"redis_url"`
	TTL      Duration `toml:"ttl"`
}

// GenerateConfig configures the concept generator. The API key is not part
// of it; see GeneratorConfig.
type GenerateConfig struct {
	Provider    string  `toml:"provider"`
	Model       string  `toml:"model"`
	BaseURL     string  `toml:"base_url"`
	Temperature float64 `toml:"temperature"`
	MaxTokens   int     `toml:"max_tokens"`
	RateLimit   float64 `toml:"rate_limit"`
	PromptsDir  string  `toml:"prompts_dir"`
}

// ServerConfig configures `rose serve`.
type ServerConfig struct {
	Addr string `toml:"addr"`
}

// Duration is a time.Duration written as a string ("24h") in TOML.
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

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		Storage:  StorageConfig{Backend: BackendFile},
		Cache:    CacheConfig{Backend: BackendFile},
		Generate: GenerateConfig{Provider: generate.ProviderOpenAI, Model: generate.DefaultModel},
		Server:   ServerConfig{Addr: ":8080"},
	}
}

// Dir returns the rose config directory.
func Dir() string {
	dir := os.Getenv("XDG_CONFIG_HOME")
	if dir == "" {
		home, _ := os.UserHomeDir()
		dir = filepath.Join(home, ".config")
	}
	return filepath.Join(dir, appName)
}

// Path returns the default config file path.
func Path() string {
	return filepath.Join(Dir(), "config.toml")
}

// Load reads the config file at path (Path() when empty) over the defaults.
// A missing file is not an error.
func Load(path string) (*Config, error) {
	if path == "" {
		path = Path()
	}
	cfg := Default()

	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks backend names and the layout section.
func (c *Config) Validate() error {
	switch c.Storage.Backend {
	case BackendFile, BackendMongo:
	default:
		return fmt.Errorf("storage.backend: unknown backend %q", c.Storage.Backend)
	}
	if c.Storage.Backend == BackendMongo && c.Storage.MongoURI == "" {
		return fmt.Errorf("storage.mongo_uri is required for the mongo backend")
	}
	switch c.Cache.Backend {
	case BackendFile, BackendRedis, BackendNone:
	default:
		return fmt.Errorf("cache.backend: unknown backend %q", c.Cache.Backend)
	}
	if c.Cache.Backend == BackendRedis && c.Cache.RedisURL == "" {
		return fmt.Errorf("cache.redis_url is required for the redis backend")
	}
	if err := c.Layout.Options().Validate(); err != nil {
		return fmt.Errorf("layout: %w", err)
	}
	return nil
}

// Options converts the layout section to radial options.
func (l LayoutConfig) Options() radial.Options {
	return radial.Options{
		Center:              graph.Position{X: l.CenterX, Y: l.CenterY},
		RingStart:           l.RingStart,
		RingGap:             l.RingGap,
		Iterations:          l.Iterations,
		AlphaMin:            l.AlphaMin,
		VelocityDecay:       l.VelocityDecay,
		Charge:              l.Charge,
		ChargeDistanceMin:   l.ChargeDistanceMin,
		ChargeDistanceMax:   l.ChargeDistanceMax,
		TreeLinkDistance:    l.TreeLinkDistance,
		TreeLinkStrength:    l.TreeLinkStrength,
		CrossLinkDistance:   l.CrossLinkDistance,
		CrossLinkStrength:   l.CrossLinkStrength,
		CrossLinkSlack:      l.CrossLinkSlack,
		RadialStrength:      l.RadialStrength,
		AnchorStrength:      l.AnchorStrength,
		Clearance:           l.Clearance,
		CollisionIterations: l.CollisionIterations,
		DiscoveryOrder:      l.DiscoveryOrder,
	}
}

// LoadEnv loads variables from the given .env files (".env" when none are
// given). Missing files are ignored and existing variables win.
func LoadEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("load %s: %w", f, err)
		}
	}
	return nil
}

// GeneratorConfig combines the generate section with secrets and overrides
// from the environment.
func (c *Config) GeneratorConfig() generate.Config {
	g := generate.Config{
		Provider:    c.Generate.Provider,
		Model:       c.Generate.Model,
		BaseURL:     c.Generate.BaseURL,
		Temperature: float32(c.Generate.Temperature),
		MaxTokens:   c.Generate.MaxTokens,
		RateLimit:   c.Generate.RateLimit,
		PromptsDir:  c.Generate.PromptsDir,
		APIKey:      os.Getenv(EnvAPIKey),
	}
	if v := os.Getenv(EnvBaseURL); v != "" {
		g.BaseURL = v
	}
	if v := os.Getenv(EnvModel); v != "" {
		g.Model = v
	}
	return g
}
