// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package styles

import (
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// Theme holds the styled components of the chat screen.
type Theme struct {
	Name         string
	IsDark       bool
	ColorProfile termenv.Profile

	// Header
	Header       lipgloss.Style
	HeaderTitle  lipgloss.Style
	HeaderStatus lipgloss.Style
	ModeBadge    lipgloss.Style

	// Transcript
	DateSeparator  lipgloss.Style
	SenderLabel    lipgloss.Style
	OutgoingBubble lipgloss.Style
	IncomingBubble lipgloss.Style
	Timestamp      lipgloss.Style

	// Typing indicator
	Spinner lipgloss.Style
	Typing  lipgloss.Style

	// Input area
	Input         lipgloss.Style
	InputDisabled lipgloss.Style

	// Status line
	StatusInfo  lipgloss.Style
	StatusError lipgloss.Style
	Help        lipgloss.Style
}

// NewTheme creates a theme. name is "auto", "dark" or "light"; anything else
// is treated as "auto".
func NewTheme(name string) *Theme {
	name = strings.ToLower(strings.TrimSpace(name))

	var isDark bool
	switch name {
	case "dark":
		isDark = true
		lipgloss.SetHasDarkBackground(true)
	case "light":
		isDark = false
		lipgloss.SetHasDarkBackground(false)
	default:
		name = "auto"
		isDark = termenv.HasDarkBackground()
	}

	t := &Theme{
		Name:         name,
		IsDark:       isDark,
		ColorProfile: termenv.ColorProfile(),
	}
	t.initStyles()
	return t
}

// GlamourStyle returns the glamour standard style matching the theme.
func (t *Theme) GlamourStyle() string {
	if t.ColorProfile == termenv.Ascii {
		return "notty"
	}
	if t.IsDark {
		return "dark"
	}
	return "light"
}

func (t *Theme) initStyles() {
	t.Header = lipgloss.NewStyle().
		Background(SurfaceDim).
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(Overlay).
		Padding(0, 1)

	t.HeaderTitle = lipgloss.NewStyle().
		Bold(true).
		Foreground(Blue)

	t.HeaderStatus = lipgloss.NewStyle().
		Foreground(Emerald)

	t.ModeBadge = lipgloss.NewStyle().
		Foreground(TextInverse).
		Background(Amber).
		Padding(0, 1)

	t.DateSeparator = lipgloss.NewStyle().
		Foreground(TextMuted).
		Align(lipgloss.Center)

	t.SenderLabel = lipgloss.NewStyle().
		Foreground(TextMuted).
		Bold(true)

	t.OutgoingBubble = lipgloss.NewStyle().
		Foreground(TextInverse).
		Background(Blue).
		Padding(0, 1)

	t.IncomingBubble = lipgloss.NewStyle().
		Foreground(TextPrimary).
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(BlueSoft).
		Padding(0, 1)

	t.Timestamp = lipgloss.NewStyle().
		Foreground(TextMuted).
		Faint(true)

	t.Spinner = lipgloss.NewStyle().
		Foreground(Blue)

	t.Typing = lipgloss.NewStyle().
		Foreground(TextMuted).
		Italic(true)

	t.Input = lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(Blue).
		Padding(0, 1)

	t.InputDisabled = t.Input.
		BorderForeground(Overlay).
		Foreground(TextMuted)

	t.StatusInfo = lipgloss.NewStyle().
		Foreground(TextMuted)

	t.StatusError = lipgloss.NewStyle().
		Foreground(Rose).
		Bold(true)

	t.Help = lipgloss.NewStyle().
		Foreground(TextMuted)
}

// =============================================================================
// SPINNER
// =============================================================================

// SpinnerConfig describes a frame-based spinner.
type SpinnerConfig struct {
	Frames []string
	FPS    time.Duration
}

// Duration returns the per-frame duration.
func (s SpinnerConfig) Duration() time.Duration {
	if s.FPS <= 0 {
		return 100 * time.Millisecond
	}
	return time.Second / s.FPS
}

// DotsSpinner is shown next to the typing text while a request is in flight.
var DotsSpinner = SpinnerConfig{
	Frames: []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"},
	FPS:    12,
}
