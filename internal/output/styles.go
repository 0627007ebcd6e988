package output

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Color palette — named constants for all ANSI 256 colors used in the CLI.
// These are the single source of truth; never use inline lipgloss.Color literals.
var (
	// ColorCyan is used for identifiable nouns: entity names, file paths.
	ColorCyan = lipgloss.Color("14")

	// colorGreen is used for the "written" artifact status (bright, high-visibility).
	colorGreen = lipgloss.Color("82")

	// ColorYellow is used for position markers (line:col) and notices.
	ColorYellow = lipgloss.Color("220")

	// colorRed is a plain red; no style in this package uses it.
	colorRed = lipgloss.Color("196")

	// colorBoldRed is used for the "failed" artifact status (matches ERROR level).
	colorBoldRed = lipgloss.Color("204")

	// colorGreenCheck is used for the completion checkmark (✔).
	colorGreenCheck = lipgloss.Color("10")

	// colorDimGray is used for borders and other structural chrome.
	colorDimGray = lipgloss.Color("240")
)

// Semantic styles — map domain concepts to visual presentation.
var (
	// styleNoun styles identifiable nouns (entity names, file paths).
	styleNoun = lipgloss.NewStyle().Foreground(ColorCyan)

	// styleDim styles structural chrome (emitter prefixes, separators, timestamps).
	styleDim = lipgloss.NewStyle().Faint(true)
)

// Artifact status constants, matching buildcache.WriteResult.Written and
// the resolve/emit pipeline's pass/fail outcomes.
const (
	StatusWritten   = "written"
	StatusUnchanged = "unchanged"
	StatusValid     = "valid"
	statusFailed    = "failed"
)

// statusStyle returns the lipgloss style for a given artifact status string.
// Unknown statuses return an unstyled default.
func statusStyle(status string) lipgloss.Style {
	switch status {
	case StatusWritten:
		return lipgloss.NewStyle().Foreground(colorGreen)
	case StatusValid:
		return lipgloss.NewStyle().Foreground(colorGreen)
	case StatusUnchanged:
		return lipgloss.NewStyle().Faint(true)
	case statusFailed:
		return lipgloss.NewStyle().Bold(true).Foreground(colorBoldRed)
	default:
		return lipgloss.NewStyle()
	}
}

// minArtifactColumnWidth is the minimum width for the artifact path column
// before the status suffix. This ensures status words align consistently.
const minArtifactColumnWidth = 48

// FormatArtifactLine renders one emitted file with a right-aligned,
// color-coded status suffix.
//
// Format: e:<emitter>/<relPath>  <status>
//
// The "e:" prefix is dim, the path is cyan, and the status uses statusStyle.
func FormatArtifactLine(emitter, relPath, status string) string {
	path := fmt.Sprintf("%s/%s", emitter, relPath)

	padding := minArtifactColumnWidth - len(path)
	if padding < 2 {
		padding = 2
	}

	prefix := styleDim.Render("e:")
	styledPath := styleNoun.Render(path)
	styledStatus := statusStyle(status).Render(status)

	return prefix + styledPath + strings.Repeat(" ", padding) + styledStatus
}

// FormatCheckmark renders a green checkmark with a message for stdout output.
func FormatCheckmark(msg string) string {
	check := lipgloss.NewStyle().Foreground(colorGreenCheck).Render("✔")
	return check + " " + msg
}

// FormatNotice renders a yellow arrow with a message for action-required output.
// Use this for "next steps" guidance where user action is needed.
func FormatNotice(msg string) string {
	arrow := lipgloss.NewStyle().Foreground(ColorYellow).Render("▶")
	return arrow + " " + msg
}

// FormatEntityCheck renders one entity's validation result with a green
// checkmark, the entity name, and an optional right-aligned detail (e.g.
// field count, table name).
//
// Format: ✔ <entity>                      <detail>
func FormatEntityCheck(entity, detail string) string {
	check := lipgloss.NewStyle().Foreground(colorGreenCheck).Render("✔")
	result := check + " " + entity

	if detail != "" {
		padding := entityCheckColumnWidth - len(entity)
		if padding < 2 {
			padding = 2
		}
		styledDetail := styleDim.Render(detail)
		result += strings.Repeat(" ", padding) + styledDetail
	}

	return result
}

// entityCheckColumnWidth is the alignment column for detail text in FormatEntityCheck.
const entityCheckColumnWidth = 34
