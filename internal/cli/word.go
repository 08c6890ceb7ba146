package cli

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/rose/pkg/core/radial"
	"github.com/matzehuels/rose/pkg/graph"
	"github.com/matzehuels/rose/pkg/network"
)

// wordCommand groups the operations on words of the active network.
func (c *CLI) wordCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "word",
		Short: "Add and expand words in the active network",
	}

	cmd.AddCommand(c.wordAddCommand())
	cmd.AddCommand(c.wordExpandCommand())

	return cmd
}

func (c *CLI) wordAddCommand() *cobra.Command {
	var at string

	cmd := &cobra.Command{
		Use:   "add <word>",
		Short: "Add a word to the active network",
		Long: `Add a word to the active network and fetch a short explanation for it.

The first word of a network becomes its root at the layout center. Later
words are placed next to the root unless --at is given.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			word := strings.Join(args, " ")
			var pos *graph.Position
			if at != "" {
				p, err := parsePosition(at)
				if err != nil {
					return err
				}
				pos = &p
			}
			return c.runWordAdd(cmd.Context(), word, pos)
		},
	}

	cmd.Flags().StringVar(&at, "at", "", "canvas position as x,y")
	return cmd
}

func (c *CLI) runWordAdd(ctx context.Context, word string, at *graph.Position) error {
	svc, closeSvc, err := c.newService(ctx, true)
	if err != nil {
		return err
	}
	defer closeSvc()

	pos, err := freePosition(ctx, svc, at)
	if err != nil {
		return err
	}

	spinner := newSpinnerWithContext(ctx, fmt.Sprintf("Adding %q...", word))
	spinner.Start()
	id, err := svc.AddWord(ctx, word, pos)
	if err != nil {
		spinner.StopWithError("Add failed")
		return err
	}
	spinner.Stop()

	net, err := svc.Active(ctx)
	if err != nil {
		return err
	}
	node, _ := net.FindNode(id)

	printSuccess("Added %s to %s", StyleHighlight.Render(node.Data.Word), net.Name)
	if node.Data.Explanation != nil {
		printDetail("%s", *node.Data.Explanation)
	}
	printNewline()
	printNextStep("Expand", appName+" word expand "+quoteArg(node.Data.Word))
	return nil
}

// freePosition returns at when set; otherwise a spot next to the root that
// keeps clear of existing words.
func freePosition(ctx context.Context, svc *network.Service, at *graph.Position) (graph.Position, error) {
	if at != nil {
		return *at, nil
	}
	net, err := svc.Active(ctx)
	if err != nil {
		return graph.Position{}, err
	}
	if len(net.Nodes) == 0 {
		return svc.Layout.WithDefaults().Center, nil
	}
	placed := make([]graph.Position, len(net.Nodes))
	for i, n := range net.Nodes {
		placed[i] = n.Position
	}
	return radial.PlaceSibling(net.Nodes[0].Position, placed, 0, 1, svc.Placement), nil
}

func (c *CLI) wordExpandCommand() *cobra.Command {
	var direction string

	cmd := &cobra.Command{
		Use:   "expand <word>",
		Short: "Expand a word into related concepts",
		Long: `Expand a word (or node id) into up to three related concepts.

Concepts already in the network are linked instead of duplicated. Use
--direction to steer what kind of relations are suggested.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runWordExpand(cmd.Context(), strings.Join(args, " "), direction)
		},
	}

	cmd.Flags().StringVarP(&direction, "direction", "d", "", "steer the expansion, e.g. \"historical\" or \"opposites\"")
	return cmd
}

func (c *CLI) runWordExpand(ctx context.Context, ref, direction string) error {
	svc, closeSvc, err := c.newService(ctx, true)
	if err != nil {
		return err
	}
	defer closeSvc()

	before, err := svc.Active(ctx)
	if err != nil {
		return err
	}
	node, ok := before.FindNode(ref)
	if !ok {
		printWarning("%q is not in %s", ref, before.Name)
		return nil
	}
	if node.Data.IsExpanded {
		printInfo("%s is already expanded", node.Data.Word)
		return nil
	}

	spinner := newSpinnerWithContext(ctx, fmt.Sprintf("Expanding %q...", node.Data.Word))
	spinner.Start()
	res, err := svc.ExpandWord(ctx, node.ID, direction)
	if err != nil {
		spinner.StopWithError("Expansion failed")
		return err
	}
	spinner.Stop()

	after, err := svc.Active(ctx)
	if err != nil {
		return err
	}
	g := after.Graph()

	printSuccess("Expanded %s", StyleHighlight.Render(node.Data.Word))
	for _, e := range after.Edges {
		if e.Source != node.ID {
			continue
		}
		target, ok := g.Node(e.Target)
		if !ok {
			continue
		}
		switch {
		case slices.Contains(res.Added, target.ID):
			printInfo("%s %s %s", e.Label(), iconArrow, StyleValue.Render(target.Data.Word))
			if target.Data.Explanation != nil {
				printDetail("%s", *target.Data.Explanation)
			}
		case slices.Contains(res.Linked, target.ID):
			printInfo("%s %s %s %s", e.Label(), iconArrow, target.Data.Word, StyleDim.Render("(linked)"))
		}
	}
	printNewline()
	printNextStep("Tidy up", appName+" organize")
	return nil
}

// organizeCommand lays out the active network.
func (c *CLI) organizeCommand() *cobra.Command {
	var flags layoutFlags

	cmd := &cobra.Command{
		Use:   "organize",
		Short: "Arrange the active network in rings around its root",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			layout, err := c.layoutOptions(cmd, &flags)
			if err != nil {
				return err
			}

			svc, closeSvc, err := c.newService(ctx, false)
			if err != nil {
				return err
			}
			defer closeSvc()
			svc.Layout = layout

			prog := newProgress(c.Logger)
			spinner := newSpinnerWithContext(ctx, "Organizing...")
			spinner.Start()
			if err := svc.Organize(ctx); err != nil {
				spinner.StopWithError("Organize failed")
				return err
			}
			spinner.Stop()

			net, err := svc.Active(ctx)
			if err != nil {
				return err
			}
			prog.done(fmt.Sprintf("Organized %d words", len(net.Nodes)))
			printSuccess("Organized %s", StyleHighlight.Render(net.Name))
			printNewline()
			printNextStep("Render", appName+" render --active --no-layout")
			return nil
		},
	}

	flags.register(cmd)
	return cmd
}

// quoteArg quotes s for a suggested shell command when it has spaces.
func quoteArg(s string) string {
	if strings.ContainsAny(s, " \t'\"") {
		return fmt.Sprintf("%q", s)
	}
	return s
}
