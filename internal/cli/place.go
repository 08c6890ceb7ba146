package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/matzehuels/rose/pkg/core/radial"
	"github.com/matzehuels/rose/pkg/errors"
	"github.com/matzehuels/rose/pkg/graph"
)

// placeCommand creates the place command, which computes where a new
// concept lands next to its parent.
func (c *CLI) placeCommand() *cobra.Command {
	var (
		parent string
		index  int
		total  int
		radius float64
		asJSON bool
	)

	cmd := &cobra.Command{
		Use:   "place [graph.json]",
		Short: "Compute the position of a new concept around its parent",
		Long: `Compute the position of a new concept around its parent.

The concept is placed on a circle around --parent, at slot --index of --total
evenly spaced slots starting straight up. When a graph file is given, the
position is pushed away from any of its nodes that are too close.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := parsePosition(parent)
			if err != nil {
				return err
			}
			if total < 1 || index < 0 || index >= total {
				return errors.New(errors.ErrCodeInvalidInput, "index %d out of range for total %d", index, total)
			}

			var placed []graph.Position
			if len(args) == 1 {
				g, err := graph.ReadGraphFile(args[0])
				if err != nil {
					return fmt.Errorf("load graph %s: %w", args[0], err)
				}
				for _, n := range g.Nodes {
					placed = append(placed, n.Position)
				}
			}

			popts := radial.DefaultPlacementOptions()
			if cmd.Flags().Changed("radius") {
				popts.Radius = radius
			}
			pos := radial.PlaceSibling(p, placed, index, total, popts)

			if asJSON {
				enc := json.NewEncoder(os.Stdout)
				return enc.Encode(pos)
			}
			printKeyValue("Position", formatPosition(pos))
			return nil
		},
	}

	cmd.Flags().StringVar(&parent, "parent", "", "parent position as x,y")
	cmd.Flags().IntVar(&index, "index", 0, "slot of the new concept among its siblings")
	cmd.Flags().IntVar(&total, "total", 1, "number of siblings being placed")
	cmd.Flags().Float64Var(&radius, "radius", 0, "distance from the parent (default: 180)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the position as JSON")
	_ = cmd.MarkFlagRequired("parent")

	return cmd
}
