package cli

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/matzehuels/rose/pkg/network"
)

// List styles
var (
	listDimStyle = lipgloss.NewStyle().Foreground(colorFaint)
	headerStyle  = lipgloss.NewStyle().Foreground(colorMuted).Bold(true)
)

// =============================================================================
// NetworkListModel - Interactive network selection
// =============================================================================

// NetworkListModel is the bubbletea model for interactive network selection.
type NetworkListModel struct {
	Networks []network.Network
	ActiveID string
	Cursor   int
	Selected *network.Network
	Height   int
	Offset   int

	now time.Time
}

// NewNetworkListModel creates a list model with the cursor on the active network.
func NewNetworkListModel(st *network.State) NetworkListModel {
	m := NetworkListModel{
		Networks: st.Networks,
		ActiveID: st.ActiveID,
		Height:   15,
		now:      time.Now(),
	}
	for i, n := range st.Networks {
		if n.ID == st.ActiveID {
			m.Cursor = i
		}
	}
	if m.Cursor >= m.Height {
		m.Offset = m.Cursor - m.Height + 1
	}
	return m
}

func (m NetworkListModel) Init() tea.Cmd {
	return nil
}

func (m NetworkListModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "up", "k":
			if m.Cursor > 0 {
				m.Cursor--
				if m.Cursor < m.Offset {
					m.Offset = m.Cursor
				}
			}
		case "down", "j":
			if m.Cursor < len(m.Networks)-1 {
				m.Cursor++
				if m.Cursor >= m.Offset+m.Height {
					m.Offset = m.Cursor - m.Height + 1
				}
			}
		case "enter":
			if len(m.Networks) == 0 {
				return m, tea.Quit
			}
			n := m.Networks[m.Cursor]
			m.Selected = &n
			return m, tea.Quit
		}
	case tea.WindowSizeMsg:
		m.Height = max(msg.Height-6, 5)
	}
	return m, nil
}

func (m NetworkListModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render("Select Network"))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("↑/↓ navigate  ⏎ select  q quit"))
	b.WriteString("\n\n")

	b.WriteString(networkTable(m.Networks, m.ActiveID, m.Offset, m.Height, m.Cursor, m.now))
	b.WriteString("\n\n")
	b.WriteString(listDimStyle.Render(fmt.Sprintf("  [%d/%d]", m.Cursor+1, len(m.Networks))))

	return b.String()
}

// networkTable renders rows [offset, offset+height) of nets. cursor < 0
// draws no cursor, which is how `network list` prints the same table.
func networkTable(nets []network.Network, activeID string, offset, height, cursor int, now time.Time) string {
	end := min(offset+height, len(nets))

	rows := [][]string{}
	for i := offset; i < end; i++ {
		n := nets[i]

		marker := "  "
		if i == cursor {
			marker = "▸ "
		}
		active := ""
		if n.ID == activeID {
			active = "●"
		}
		root := "—"
		if len(n.Nodes) > 0 {
			root = n.Nodes[0].Data.Word
		}
		rows = append(rows, []string{
			marker,
			active,
			n.Name,
			root,
			fmt.Sprintf("%d", len(n.Nodes)),
			formatRelativeTime(n.UpdatedAt, now),
		})
	}

	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorFaint)).
		Headers("", "", "Network", "Root", "Words", "Updated").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return headerStyle
			}
			idx := offset + row
			if idx >= len(nets) {
				return lipgloss.NewStyle()
			}

			base := lipgloss.NewStyle()
			if col == 5 {
				base = base.Foreground(colorFaint)
			}
			if col == 1 {
				base = base.Foreground(colorLeaf)
			}
			if idx == cursor {
				return base.Foreground(colorRose).Bold(true)
			}
			return base
		}).
		Render()
}

// =============================================================================
// Helpers
// =============================================================================

// formatRelativeTime formats a Unix millisecond timestamp relative to now.
func formatRelativeTime(ms int64, now time.Time) string {
	if ms <= 0 {
		return "—"
	}
	t := time.UnixMilli(ms)
	diff := now.Sub(t)

	switch {
	case diff < time.Minute:
		return "just now"
	case diff < time.Hour:
		return fmt.Sprintf("%dm ago", int(diff.Minutes()))
	case diff < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(diff.Hours()))
	case diff < 7*24*time.Hour:
		return fmt.Sprintf("%dd ago", int(diff.Hours()/24))
	default:
		return t.Format("Jan 2, 2006")
	}
}
