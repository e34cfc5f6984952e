// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package markup

import (
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/pkg/errors"
)

// DefaultWidth is used when no wrap width is configured.
const DefaultWidth = 80

// Renderer renders markup for the terminal through glamour.
type Renderer struct {
	tr    *glamour.TermRenderer
	width int
	style string
}

// NewRenderer creates a renderer wrapping at width columns. style is
// "auto", "dark", "light" or "notty".
func NewRenderer(width int, style string) (*Renderer, error) {
	if width <= 0 {
		width = DefaultWidth
	}

	opts := []glamour.TermRendererOption{glamour.WithWordWrap(width)}
	switch strings.ToLower(style) {
	case "", "auto":
		opts = append(opts, glamour.WithAutoStyle())
	case "dark", "light", "notty":
		opts = append(opts, glamour.WithStandardStyle(strings.ToLower(style)))
	default:
		return nil, errors.Errorf("unknown render style %q", style)
	}

	tr, err := glamour.NewTermRenderer(opts...)
	if err != nil {
		return nil, errors.Wrap(err, "create markdown renderer")
	}
	return &Renderer{tr: tr, width: width, style: style}, nil
}

// Width returns the wrap width.
func (r *Renderer) Width() int {
	return r.width
}

// Render converts markup to Markdown and renders it. When rendering fails the
// Markdown is returned unstyled.
func (r *Renderer) Render(markup string) string {
	md := ToMarkdown(markup)
	if r == nil || r.tr == nil {
		return md
	}
	out, err := r.tr.Render(md)
	if err != nil {
		return md
	}
	return strings.Trim(out, "\n")
}
