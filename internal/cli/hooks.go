package cli

import (
	"context"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/rose/pkg/observability"
)

// logHooks reports pipeline, cache and generation events as debug logs.
type logHooks struct {
	logger *log.Logger
}

// InstallHooks routes observability events to the CLI logger. They show up
// with --verbose.
func (c *CLI) InstallHooks() {
	h := logHooks{logger: c.Logger}
	observability.SetPipelineHooks(h)
	observability.SetCacheHooks(h)
	observability.SetGenerateHooks(h)
}

func (h logHooks) OnLayoutStart(_ context.Context, nodeCount int) {
	h.logger.Debug("layout started", "nodes", nodeCount)
}

func (h logHooks) OnLayoutComplete(_ context.Context, nodeCount int, cached bool, d time.Duration, err error) {
	if err != nil {
		h.logger.Debug("layout failed", "nodes", nodeCount, "error", err)
		return
	}
	h.logger.Debug("layout done", "nodes", nodeCount, "cached", cached, "duration", d.Round(time.Millisecond))
}

func (h logHooks) OnRenderStart(_ context.Context, formats []string) {
	h.logger.Debug("render started", "formats", formats)
}

func (h logHooks) OnRenderComplete(_ context.Context, formats []string, d time.Duration, err error) {
	if err != nil {
		h.logger.Debug("render failed", "formats", formats, "error", err)
		return
	}
	h.logger.Debug("render done", "formats", formats, "duration", d.Round(time.Millisecond))
}

func (h logHooks) OnCacheHit(_ context.Context, keyType string) {
	h.logger.Debug("cache hit", "type", keyType)
}

func (h logHooks) OnCacheMiss(_ context.Context, keyType string) {
	h.logger.Debug("cache miss", "type", keyType)
}

func (h logHooks) OnCacheSet(_ context.Context, keyType string, size int) {
	h.logger.Debug("cache set", "type", keyType, "bytes", size)
}

func (h logHooks) OnGenerateStart(_ context.Context, kind, word string) {
	h.logger.Debug("generate", "kind", kind, "word", word)
}

func (h logHooks) OnGenerateComplete(_ context.Context, kind, word string, results int, d time.Duration, err error) {
	if err != nil {
		h.logger.Debug("generate failed", "kind", kind, "word", word, "error", err)
		return
	}
	h.logger.Debug("generate done", "kind", kind, "word", word, "results", results, "duration", d.Round(time.Millisecond))
}

var (
	_ observability.PipelineHooks = logHooks{}
	_ observability.CacheHooks    = logHooks{}
	_ observability.GenerateHooks = logHooks{}
)
