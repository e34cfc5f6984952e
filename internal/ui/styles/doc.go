// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package styles provides the visual styling for the AutoReport terminal UI.
//
// Colors are lipgloss.AdaptiveColor values, so they follow the terminal
// background unless a theme forces light or dark.
//
//	theme := styles.NewTheme("auto")
//	fmt.Println(theme.IncomingBubble.Render("Hello"))
package styles
