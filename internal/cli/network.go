package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"
	"unicode"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/matzehuels/rose/pkg/errors"
	"github.com/matzehuels/rose/pkg/graph"
	"github.com/matzehuels/rose/pkg/network"
)

// networkCommand creates the network management command.
func (c *CLI) networkCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "network",
		Aliases: []string{"net"},
		Short:   "Manage concept networks",
	}

	cmd.AddCommand(c.networkListCommand())
	cmd.AddCommand(c.networkCreateCommand())
	cmd.AddCommand(c.networkUseCommand())
	cmd.AddCommand(c.networkPickCommand())
	cmd.AddCommand(c.networkRenameCommand())
	cmd.AddCommand(c.networkDeleteCommand())
	cmd.AddCommand(c.networkShowCommand())
	cmd.AddCommand(c.networkBackgroundCommand())
	cmd.AddCommand(c.networkSeenCommand())

	return cmd
}

// withService runs fn against a service without a generator.
func (c *CLI) withService(ctx context.Context, fn func(*network.Service) error) error {
	svc, closeSvc, err := c.newService(ctx, false)
	if err != nil {
		return err
	}
	defer closeSvc()
	return fn(svc)
}

func (c *CLI) networkListCommand() *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List networks",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withService(cmd.Context(), func(svc *network.Service) error {
				st, err := svc.State(cmd.Context())
				if err != nil {
					return err
				}
				if asJSON {
					return json.NewEncoder(os.Stdout).Encode(st)
				}
				fmt.Println(networkTable(st.Networks, st.ActiveID, 0, len(st.Networks), -1, time.Now()))
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the full state as JSON")
	return cmd
}

func (c *CLI) networkCreateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "create [name]",
		Short: "Create a network and make it active",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := strings.Join(args, " ")
			return c.withService(cmd.Context(), func(svc *network.Service) error {
				net, err := svc.Create(cmd.Context(), name)
				if err != nil {
					return err
				}
				printSuccess("Created %s", StyleHighlight.Render(net.Name))
				printDetail("id: %s", net.ID)
				printNewline()
				printNextStep("Add a word", appName+" word add <word>")
				return nil
			})
		},
	}
}

func (c *CLI) networkUseCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "use <network>",
		Aliases: []string{"switch"},
		Short:   "Make a network active (by id or name)",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			return c.withService(ctx, func(svc *network.Service) error {
				net, err := resolveNetwork(ctx, svc, args[0])
				if err != nil {
					return err
				}
				if err := svc.Switch(ctx, net.ID); err != nil {
					return err
				}
				printSuccess("Switched to %s", StyleHighlight.Render(net.Name))
				return nil
			})
		},
	}
}

func (c *CLI) networkPickCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "pick",
		Short: "Choose the active network interactively",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			return c.withService(ctx, func(svc *network.Service) error {
				st, err := svc.State(ctx)
				if err != nil {
					return err
				}

				final, err := tea.NewProgram(NewNetworkListModel(st), tea.WithContext(ctx)).Run()
				if err != nil {
					return fmt.Errorf("network picker: %w", err)
				}
				m, ok := final.(NetworkListModel)
				if !ok || m.Selected == nil {
					printInfo("No network selected")
					return nil
				}
				if err := svc.Switch(ctx, m.Selected.ID); err != nil {
					return err
				}
				printSuccess("Switched to %s", StyleHighlight.Render(m.Selected.Name))
				return nil
			})
		},
	}
}

func (c *CLI) networkRenameCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "rename <network> <name>",
		Short: "Rename a network",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			name := strings.Join(args[1:], " ")
			return c.withService(ctx, func(svc *network.Service) error {
				net, err := resolveNetwork(ctx, svc, args[0])
				if err != nil {
					return err
				}
				if err := svc.Rename(ctx, net.ID, name); err != nil {
					return err
				}
				printSuccess("Renamed %s to %s", net.Name, StyleHighlight.Render(name))
				return nil
			})
		},
	}
}

func (c *CLI) networkDeleteCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "delete <network>",
		Aliases: []string{"rm"},
		Short:   "Delete a network",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			return c.withService(ctx, func(svc *network.Service) error {
				net, err := resolveNetwork(ctx, svc, args[0])
				if err != nil {
					return err
				}
				if err := svc.Delete(ctx, net.ID); err != nil {
					return err
				}
				printSuccess("Deleted %s", net.Name)
				active, err := svc.Active(ctx)
				if err == nil {
					printDetail("active: %s", active.Name)
				}
				return nil
			})
		},
	}
}

func (c *CLI) networkShowCommand() *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "show [network]",
		Short: "Show the words of a network (default: active)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			return c.withService(ctx, func(svc *network.Service) error {
				var (
					net network.Network
					err error
				)
				if len(args) == 1 {
					net, err = resolveNetwork(ctx, svc, args[0])
				} else {
					net, err = svc.Active(ctx)
				}
				if err != nil {
					return err
				}
				if asJSON {
					return graph.WriteGraph(net.Graph(), os.Stdout)
				}
				printNetwork(net)
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print nodes and edges as graph.json")
	return cmd
}

func (c *CLI) networkBackgroundCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "background <text>",
		Short: "Set the background context used when generating concepts",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			text := strings.Join(args, " ")
			return c.withService(ctx, func(svc *network.Service) error {
				if err := svc.SetBackground(ctx, text); err != nil {
					return err
				}
				printSuccess("Background updated")
				return nil
			})
		},
	}
}

func (c *CLI) networkSeenCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "seen [network]",
		Short: "Clear the new-word highlight (default: active network)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			return c.withService(ctx, func(svc *network.Service) error {
				id := ""
				if len(args) == 1 {
					net, err := resolveNetwork(ctx, svc, args[0])
					if err != nil {
						return err
					}
					id = net.ID
				}
				return svc.ClearNew(ctx, id)
			})
		},
	}
}

// =============================================================================
// Helpers
// =============================================================================

// resolveNetwork finds a network by id, then by case-insensitive name.
func resolveNetwork(ctx context.Context, svc *network.Service, ref string) (network.Network, error) {
	st, err := svc.State(ctx)
	if err != nil {
		return network.Network{}, err
	}
	if net, ok := st.Find(ref); ok {
		return *net, nil
	}
	for _, net := range st.Networks {
		if strings.EqualFold(net.Name, ref) {
			return net, nil
		}
	}
	return network.Network{}, errors.New(errors.ErrCodeNetworkNotFound, "network %q not found", ref)
}

// printNetwork lists the words of net, root first.
func printNetwork(net network.Network) {
	fmt.Println(StyleTitle.Render(net.Name))
	if net.Background != "" {
		printDetail("background: %s", net.Background)
	}
	if len(net.Nodes) == 0 {
		printInfo("No words yet")
		return
	}

	g := net.Graph()
	for _, n := range net.Nodes {
		word := StyleValue.Render(n.Data.Word)
		if n.Data.IsNew {
			word += " " + StyleSuccess.Render("new")
		}
		if n.Data.IsExpanded {
			word += " " + StyleDim.Render("expanded")
		}
		printInfo("%s", word)
		if n.Data.Explanation != nil && *n.Data.Explanation != "" {
			printDetail("%s", *n.Data.Explanation)
		}
		for _, e := range net.Edges {
			if e.Source != n.ID {
				continue
			}
			target, ok := g.Node(e.Target)
			if !ok {
				continue
			}
			if label := e.Label(); label != "" {
				printDetail("%s %s %s", iconArrow, label, target.Data.Word)
			} else {
				printDetail("%s %s", iconArrow, target.Data.Word)
			}
		}
	}
	printNewline()
	printDetail("%s · %s", plural(len(net.Nodes), "word"), plural(len(net.Edges), "link"))
}

// slug turns a network name into a file name.
func slug(name string) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(name) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
			dash = false
			continue
		}
		if !dash && b.Len() > 0 {
			b.WriteByte('-')
			dash = true
		}
	}
	s := strings.TrimSuffix(b.String(), "-")
	if s == "" {
		return "network"
	}
	return s
}
