package pipeline

import (
	"context"
	"fmt"

	"github.com/matzehuels/rose/pkg/graph"
	"github.com/matzehuels/rose/pkg/render/nodelink"
)

// Render generates output artifacts in the requested formats from a
// positioned graph.
func Render(ctx context.Context, g graph.Graph, opts Options) (map[string][]byte, error) {
	dot := nodelink.ToDOT(g, nodelink.Options{
		ShowRelations: opts.ShowRelations,
		Detailed:      opts.Detailed,
	})

	artifacts := make(map[string][]byte, len(opts.Formats))
	for _, format := range opts.Formats {
		var data []byte
		var err error

		switch format {
		case FormatSVG:
			data, err = nodelink.RenderSVG(ctx, dot)
		case FormatPNG:
			data, err = nodelink.RenderPNG(ctx, dot)
		case FormatDOT:
			data = []byte(dot)
		case FormatJSON:
			data, err = graph.MarshalGraph(g)
		default:
			return nil, fmt.Errorf("unsupported format: %s", format)
		}

		if err != nil {
			return nil, fmt.Errorf("render %s: %w", format, err)
		}
		artifacts[format] = data
	}

	return artifacts, nil
}
