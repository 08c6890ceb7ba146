package cli

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Palette. The root word is drawn in rose in rendered graphs, so the
// terminal output uses the same accent.
var (
	colorRose  = lipgloss.Color("204")
	colorLeaf  = lipgloss.Color("108") // success, new words
	colorAmber = lipgloss.Color("214")
	colorRed   = lipgloss.Color("167")
	colorSky   = lipgloss.Color("110") // commands
	colorText  = lipgloss.Color("254")
	colorMuted = lipgloss.Color("245")
	colorFaint = lipgloss.Color("240")
)

var (
	// StyleTitle renders network names and headings.
	StyleTitle = lipgloss.NewStyle().Bold(true).Foreground(colorRose)

	// StyleHighlight marks the word or network an action applied to.
	StyleHighlight = lipgloss.NewStyle().Foreground(colorRose)

	StyleDim     = lipgloss.NewStyle().Foreground(colorFaint)
	StyleValue   = lipgloss.NewStyle().Foreground(colorText)
	StyleSuccess = lipgloss.NewStyle().Foreground(colorLeaf)
	StyleWarning = lipgloss.NewStyle().Foreground(colorAmber)
)

var (
	styleIconSuccess = lipgloss.NewStyle().Foreground(colorLeaf)
	styleIconError   = lipgloss.NewStyle().Foreground(colorRed)
	styleIconWarning = lipgloss.NewStyle().Foreground(colorAmber)
	styleIconInfo    = lipgloss.NewStyle().Foreground(colorMuted)
	styleIconSpinner = lipgloss.NewStyle().Foreground(colorRose)

	styleKey     = lipgloss.NewStyle().Foreground(colorMuted).Width(12)
	styleCommand = lipgloss.NewStyle().Foreground(colorSky)
)

const (
	iconSuccess = "✓"
	iconError   = "✗"
	iconWarning = "!"
	iconInfo    = "›"
	iconArrow   = "→"
)

func printSuccess(format string, args ...any) {
	fmt.Println(styleIconSuccess.Render(iconSuccess) + " " + fmt.Sprintf(format, args...))
}

func printError(format string, args ...any) {
	fmt.Println(styleIconError.Render(iconError) + " " + fmt.Sprintf(format, args...))
}

func printWarning(format string, args ...any) {
	fmt.Println(styleIconWarning.Render(iconWarning) + " " + StyleWarning.Render(fmt.Sprintf(format, args...)))
}

func printInfo(format string, args ...any) {
	fmt.Println(styleIconInfo.Render(iconInfo) + " " + fmt.Sprintf(format, args...))
}

// printDetail prints an indented, muted line under the previous message.
func printDetail(format string, args ...any) {
	fmt.Println("  " + StyleDim.Render(fmt.Sprintf(format, args...)))
}

// printFile prints a written output path.
func printFile(path string) {
	fmt.Println("  " + StyleDim.Render(iconArrow) + " " + StyleValue.Render(path))
}

func printKeyValue(key, value string) {
	fmt.Println(styleKey.Render(key) + " " + StyleValue.Render(value))
}

// printStats prints word and link counts and whether the result came from
// the cache, e.g. "12 words · 14 links · cached".
func printStats(words, links int, cached bool) {
	parts := []string{plural(words, "word"), plural(links, "link")}
	if cached {
		parts = append(parts, StyleSuccess.Render("cached"))
	} else {
		parts = append(parts, "fresh")
	}
	fmt.Println("  " + StyleDim.Render(strings.Join(parts, " · ")))
}

// printNextStep suggests the command to run next.
func printNextStep(description, cmd string) {
	fmt.Println(StyleDim.Render(description+":") + " " + styleCommand.Render(cmd))
}

func printNewline() {
	fmt.Println()
}

func plural(n int, noun string) string {
	if n == 1 {
		return "1 " + noun
	}
	return fmt.Sprintf("%d %ss", n, noun)
}
