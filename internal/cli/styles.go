// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

func init() {
	lipgloss.SetColorProfile(colorProfile())
}

// =============================================================================
// SHARED STYLES
// =============================================================================

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("39"))

	labelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("245")).
			Width(12)

	successStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("42")).
			Bold(true)

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196")).
			Bold(true)

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("242"))

	promptStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("75"))
)

// renderStatus renders "[OK]" or "[FAIL]".
func renderStatus(ok bool) string {
	if ok {
		return successStyle.Render("[OK]")
	}
	return errorStyle.Render("[FAIL]")
}

// renderField renders an aligned "label  value" line.
func renderField(label, value string) string {
	return labelStyle.Render(label) + value
}

func renderSeparator(width int) string {
	return dimStyle.Render(strings.Repeat("─", width))
}
