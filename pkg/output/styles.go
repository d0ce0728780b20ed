package output

import (
	"io"

	"github.com/arthur-debert/dtsync/pkg/types"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"github.com/pterm/pterm"
)

// Color definitions using AdaptiveColor for automatic light/dark mode switching
var (
	headingColor = lipgloss.AdaptiveColor{Light: "#1A1A1A", Dark: "#FAFAFA"}
	mutedColor   = lipgloss.AdaptiveColor{Light: "#6C6C6C", Dark: "#8C8C8C"}
	pathColor    = lipgloss.AdaptiveColor{Light: "#5A56E0", Dark: "#7571F9"}
	successColor = lipgloss.AdaptiveColor{Light: "#02BA84", Dark: "#02BF87"}
	errorColor   = lipgloss.AdaptiveColor{Light: "#FF4672", Dark: "#ED567A"}
	warningColor = lipgloss.AdaptiveColor{Light: "#FF8C00", Dark: "#FFB347"}
)

// palette holds the styles of one renderer. Plain renderers get an ASCII
// profile so every style renders as bare text.
type palette struct {
	styled  bool
	title   lipgloss.Style
	muted   lipgloss.Style
	path    lipgloss.Style
	success lipgloss.Style
	failure lipgloss.Style
	warning lipgloss.Style
}

func newPalette(w io.Writer, styled bool) palette {
	r := lipgloss.NewRenderer(w)
	if !styled {
		r.SetColorProfile(termenv.Ascii)
	}
	return palette{
		styled:  styled,
		title:   r.NewStyle().Foreground(headingColor).Bold(true),
		muted:   r.NewStyle().Foreground(mutedColor),
		path:    r.NewStyle().Foreground(pathColor).Italic(true),
		success: r.NewStyle().Foreground(successColor).Bold(true),
		failure: r.NewStyle().Foreground(errorColor).Bold(true),
		warning: r.NewStyle().Foreground(warningColor).Bold(true),
	}
}

// badge renders a fixed-width action label, colored by final state
func (p palette) badge(state types.ItemState, label string) string {
	padded := label
	for len(padded) < 10 {
		padded += " "
	}
	if !p.styled {
		return padded
	}
	return stateStyle(state).Sprint(padded)
}

// stateStyle returns the pterm style for an item state
func stateStyle(state types.ItemState) *pterm.Style {
	switch state {
	case types.StateDone:
		return pterm.NewStyle(pterm.FgGreen)
	case types.StateFailed:
		return pterm.NewStyle(pterm.FgRed, pterm.Bold)
	case types.StatePending, types.StateStaged:
		return pterm.NewStyle(pterm.FgYellow)
	default:
		return pterm.NewStyle(pterm.FgGray)
	}
}
