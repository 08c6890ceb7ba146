// Package cli implements the rose command-line interface.
package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/rose/pkg/buildinfo"
	"github.com/matzehuels/rose/pkg/cache"
	"github.com/matzehuels/rose/pkg/config"
	"github.com/matzehuels/rose/pkg/core/radial"
	"github.com/matzehuels/rose/pkg/errors"
	"github.com/matzehuels/rose/pkg/generate"
	"github.com/matzehuels/rose/pkg/graph"
	"github.com/matzehuels/rose/pkg/network"
	"github.com/matzehuels/rose/pkg/pipeline"
	"github.com/matzehuels/rose/pkg/storage"
)

// =============================================================================
// Constants
// =============================================================================

const (
	// appName is the application name used for directories and display.
	appName = "rose"

	// cachePrefix namespaces keys in shared cache backends.
	cachePrefix = appName + ":"
)

// Log levels exported for use in main.go.
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

	// ConfigPath overrides the default config file location.
	ConfigPath string
	// EnvFiles are loaded before the config; ".env" when empty.
	EnvFiles []string

	cfg *config.Config
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{Logger: newLogger(w, level)}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:          appName,
		Short:        "Rose grows concept networks around words",
		Long:         `Rose is a CLI tool for exploring words as radial concept networks: add a word, expand it into related concepts, and organize the result into rings around the root.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().StringVar(&c.ConfigPath, "config", "", "config file (default: "+config.Path()+")")
	root.PersistentFlags().StringSliceVar(&c.EnvFiles, "env-file", nil, "dotenv files to load (default: .env)")

	root.AddCommand(c.layoutCommand())
	root.AddCommand(c.placeCommand())
	root.AddCommand(c.renderCommand())
	root.AddCommand(c.networkCommand())
	root.AddCommand(c.wordCommand())
	root.AddCommand(c.organizeCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// =============================================================================
// Config
// =============================================================================

// config loads the dotenv files and the config file once.
func (c *CLI) config() (*config.Config, error) {
	if c.cfg != nil {
		return c.cfg, nil
	}
	if err := config.LoadEnv(c.EnvFiles...); err != nil {
		return nil, err
	}
	path := c.ConfigPath
	if path == "" {
		path = config.Path()
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	c.Logger.Debug("loaded config", "path", path, "storage", cfg.Storage.Backend, "cache", cfg.Cache.Backend)
	c.cfg = cfg
	return cfg, nil
}

// =============================================================================
// Runner Factory
// =============================================================================

// newRunner creates a pipeline runner for CLI use.
func (c *CLI) newRunner(ctx context.Context, noCache bool) (*pipeline.Runner, error) {
	cache, err := c.newCache(ctx, noCache)
	if err != nil {
		return nil, err
	}
	return pipeline.NewRunner(cache, nil, c.Logger), nil
}

func (c *CLI) newCache(ctx context.Context, noCache bool) (cache.Cache, error) {
	if noCache {
		return cache.NewNullCache(), nil
	}
	cfg, err := c.config()
	if err != nil {
		return nil, err
	}

	var base cache.Cache
	switch cfg.Cache.Backend {
	case config.BackendNone:
		return cache.NewNullCache(), nil
	case config.BackendRedis:
		base, err = cache.NewRedisCache(ctx, cfg.Cache.RedisURL, cachePrefix)
	default:
		dir := cfg.Cache.Dir
		if dir == "" {
			if dir, err = cacheDir(); err != nil {
				return cache.NewNullCache(), nil
			}
		}
		base, err = cache.NewFileCache(dir)
	}
	if err != nil {
		return nil, err
	}
	if ttl := cfg.Cache.TTL.Duration; ttl > 0 {
		base = cache.WithTTL(base, ttl)
	}
	return base, nil
}

// =============================================================================
// Service Factory
// =============================================================================

// newStore opens the configured network store.
func (c *CLI) newStore(ctx context.Context) (network.Store, error) {
	cfg, err := c.config()
	if err != nil {
		return nil, err
	}
	switch cfg.Storage.Backend {
	case config.BackendMongo:
		return storage.NewMongoStore(ctx, cfg.Storage.MongoURI, cfg.Storage.MongoDatabase)
	default:
		return storage.NewFileStore(cfg.Storage.Dir)
	}
}

// newService wires store, runner and (when withGenerator is set) the
// concept generator into a network service. The returned func releases
// everything the service opened.
func (c *CLI) newService(ctx context.Context, withGenerator bool) (*network.Service, func(), error) {
	cfg, err := c.config()
	if err != nil {
		return nil, nil, err
	}

	var gen generate.Generator
	if withGenerator {
		gcfg := cfg.GeneratorConfig()
		gcfg.Logger = c.Logger
		chat, err := generate.NewChatGenerator(ctx, gcfg)
		if err != nil {
			return nil, nil, err
		}
		gen = chat
	}

	store, err := c.newStore(ctx)
	if err != nil {
		return nil, nil, errors.Wrap(errors.ErrCodeStorage, err, "open store")
	}
	runner, err := c.newRunner(ctx, false)
	if err != nil {
		_ = store.Close()
		return nil, nil, err
	}

	svc := network.NewService(store, gen, runner, c.Logger)
	svc.Layout = cfg.Layout.Options()

	closeFn := func() {
		if err := runner.Close(); err != nil {
			c.Logger.Debug("close runner", "error", err)
		}
		if err := store.Close(); err != nil {
			c.Logger.Debug("close store", "error", err)
		}
	}
	return svc, closeFn, nil
}

// =============================================================================
// Paths
// =============================================================================

// cacheDir returns the cache directory using XDG standard (~/.cache/rose/).
func cacheDir() (string, error) {
	if cacheHome := os.Getenv("XDG_CACHE_HOME"); cacheHome != "" {
		return filepath.Join(cacheHome, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", appName), nil
}

// outputBase strips the extension from input, or returns output when set.
func outputBase(input, output string) string {
	if output != "" {
		return strings.TrimSuffix(output, filepath.Ext(output))
	}
	return strings.TrimSuffix(input, filepath.Ext(input))
}

// =============================================================================
// Options Helpers
// =============================================================================

// layoutFlags holds layout overrides given on the command line.
type layoutFlags struct {
	center         string
	ringStart      float64
	ringGap        float64
	iterations     int
	clearance      float64
	discoveryOrder bool
}

// register adds the layout flags to cmd.
func (f *layoutFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.center, "center", "", "layout center as x,y (default: 400,300)")
	cmd.Flags().Float64Var(&f.ringStart, "ring-start", 0, "radius of the first ring")
	cmd.Flags().Float64Var(&f.ringGap, "ring-gap", 0, "distance between rings")
	cmd.Flags().IntVar(&f.iterations, "iterations", 0, "force simulation ticks")
	cmd.Flags().Float64Var(&f.clearance, "clearance", 0, "minimum distance between node centers")
	cmd.Flags().BoolVar(&f.discoveryOrder, "discovery-order", false, "order siblings by discovery instead of current angle")
}

// apply overlays the flags the user actually set onto base.
func (f *layoutFlags) apply(cmd *cobra.Command, base radial.Options) (radial.Options, error) {
	changed := cmd.Flags().Changed
	if changed("center") {
		p, err := parsePosition(f.center)
		if err != nil {
			return base, err
		}
		base.Center = p
	}
	if changed("ring-start") {
		base.RingStart = f.ringStart
	}
	if changed("ring-gap") {
		base.RingGap = f.ringGap
	}
	if changed("iterations") {
		base.Iterations = f.iterations
	}
	if changed("clearance") {
		base.Clearance = f.clearance
	}
	if changed("discovery-order") {
		base.DiscoveryOrder = f.discoveryOrder
	}
	return base, nil
}

// layoutOptions combines the config's layout section with command flags.
func (c *CLI) layoutOptions(cmd *cobra.Command, f *layoutFlags) (radial.Options, error) {
	cfg, err := c.config()
	if err != nil {
		return radial.Options{}, err
	}
	return f.apply(cmd, cfg.Layout.Options())
}

// parseFormats parses a comma-separated format string into a slice.
func parseFormats(s string) []string {
	if s == "" {
		return []string{pipeline.FormatSVG}
	}
	var out []string
	for _, f := range strings.Split(s, ",") {
		if f = strings.ToLower(strings.TrimSpace(f)); f != "" {
			out = append(out, f)
		}
	}
	return out
}

// parsePosition parses "x,y".
func parsePosition(s string) (graph.Position, error) {
	xs, ys, ok := strings.Cut(s, ",")
	if !ok {
		return graph.Position{}, errors.New(errors.ErrCodeInvalidInput, "position %q must be x,y", s)
	}
	x, err := strconv.ParseFloat(strings.TrimSpace(xs), 64)
	if err != nil {
		return graph.Position{}, errors.New(errors.ErrCodeInvalidInput, "invalid x in %q", s)
	}
	y, err := strconv.ParseFloat(strings.TrimSpace(ys), 64)
	if err != nil {
		return graph.Position{}, errors.New(errors.ErrCodeInvalidInput, "invalid y in %q", s)
	}
	p := graph.Position{X: x, Y: y}
	if !p.IsFinite() {
		return graph.Position{}, errors.New(errors.ErrCodeInvalidInput, "position %q is not finite", s)
	}
	return p, nil
}

// formatPosition renders p for terminal output.
func formatPosition(p graph.Position) string {
	return fmt.Sprintf("%.1f, %.1f", p.X, p.Y)
}
