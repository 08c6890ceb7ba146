package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/matzehuels/rose/pkg/graph"
	"github.com/matzehuels/rose/pkg/pipeline"
)

// renderOpts holds the command-line flags for the render command.
type renderOpts struct {
	output    string // base path for outputs; extension is replaced per format
	formats   string // comma-separated: svg, png, dot, json
	relations bool   // label edges with their relation
	detailed  bool   // include explanations in node labels
	noLayout  bool   // render positions as stored
	noCache   bool
	refresh   bool
	active    bool // render the active network instead of a file
}

// renderCommand creates the render command for generating visualizations.
func (c *CLI) renderCommand() *cobra.Command {
	var (
		opts  renderOpts
		flags layoutFlags
	)

	cmd := &cobra.Command{
		Use:   "render [graph.json]",
		Short: "Render a concept graph to SVG, PNG, DOT or JSON",
		Long: `Render a concept graph to SVG, PNG, DOT or JSON.

By default the graph is laid out first; pass --no-layout to draw the
positions stored in the file (for example the output of 'layout').
With --active the active network is rendered instead of a file.

Artifacts are cached by layout and render options.`,
		Args: func(cmd *cobra.Command, args []string) error {
			if opts.active {
				return cobra.NoArgs(cmd, args)
			}
			return cobra.ExactArgs(1)(cmd, args)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			layout, err := c.layoutOptions(cmd, &flags)
			if err != nil {
				return err
			}
			popts := pipeline.Options{
				Layout:        layout,
				Formats:       parseFormats(opts.formats),
				ShowRelations: opts.relations,
				Detailed:      opts.detailed,
				Refresh:       opts.refresh,
			}
			if err := pipeline.ValidateFormats(popts.Formats); err != nil {
				return err
			}

			ctx := cmd.Context()
			g, input, err := c.renderInput(ctx, args, opts.active)
			if err != nil {
				return err
			}
			return c.runRender(ctx, g, input, popts, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output base path (default: <input>.<format>)")
	cmd.Flags().StringVarP(&opts.formats, "format", "f", pipeline.FormatSVG, "output formats: svg, png, dot, json (comma-separated)")
	cmd.Flags().BoolVar(&opts.relations, "relations", false, "label edges with their relation")
	cmd.Flags().BoolVar(&opts.detailed, "detailed", false, "include explanations in node labels")
	cmd.Flags().BoolVar(&opts.noLayout, "no-layout", false, "render stored positions without laying out")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "disable caching")
	cmd.Flags().BoolVar(&opts.refresh, "refresh", false, "ignore cached layouts and artifacts")
	cmd.Flags().BoolVar(&opts.active, "active", false, "render the active network")
	flags.register(cmd)

	return cmd
}

// renderInput loads the graph to render and names the path outputs derive from.
func (c *CLI) renderInput(ctx context.Context, args []string, active bool) (graph.Graph, string, error) {
	if !active {
		g, err := graph.ReadGraphFile(args[0])
		if err != nil {
			return graph.Graph{}, "", fmt.Errorf("load graph %s: %w", args[0], err)
		}
		return g, args[0], nil
	}

	svc, closeSvc, err := c.newService(ctx, false)
	if err != nil {
		return graph.Graph{}, "", err
	}
	defer closeSvc()

	net, err := svc.Active(ctx)
	if err != nil {
		return graph.Graph{}, "", err
	}
	return net.Graph(), slug(net.Name) + ".json", nil
}

// runRender lays out (unless disabled), renders and writes one file per format.
func (c *CLI) runRender(ctx context.Context, g graph.Graph, input string, popts pipeline.Options, opts renderOpts) error {
	runner, err := c.newRunner(ctx, opts.noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	popts.Logger = c.Logger

	spinner := newSpinnerWithContext(ctx, fmt.Sprintf("Rendering %d words...", len(g.Nodes)))
	spinner.Start()

	var (
		artifacts map[string][]byte
		cached    bool
	)
	if opts.noLayout {
		artifacts, cached, err = runner.RenderWithCacheInfo(ctx, g, popts)
	} else {
		var res *pipeline.Result
		res, err = runner.Execute(ctx, g, popts)
		if err == nil {
			artifacts = res.Artifacts
			cached = res.CacheInfo.LayoutHit && res.CacheInfo.RenderHit
		}
	}
	if err != nil {
		spinner.StopWithError("Render failed")
		return fmt.Errorf("render: %w", err)
	}
	spinner.Stop()

	if ctx.Err() != nil {
		return ctx.Err()
	}

	base := outputBase(input, opts.output)
	var written []string
	for _, format := range popts.Formats {
		data, ok := artifacts[format]
		if !ok {
			continue
		}
		path := base + "." + format
		if path == input {
			path = base + ".rendered." + format
		}
		if err := os.WriteFile(path, data, 0o644); err != nil {
			return fmt.Errorf("write %s: %w", path, err)
		}
		written = append(written, path)
	}

	printSuccess("Rendered %d file(s)", len(written))
	for _, path := range written {
		printFile(path)
	}
	printStats(len(g.Nodes), len(g.Edges), cached)
	return nil
}
