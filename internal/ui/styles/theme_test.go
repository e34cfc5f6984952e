// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package styles

import (
	"testing"
	"time"

	"github.com/muesli/termenv"
	"github.com/stretchr/testify/assert"
)

func TestNewTheme_ForcedBackground(t *testing.T) {
	dark := NewTheme("dark")
	assert.Equal(t, "dark", dark.Name)
	assert.True(t, dark.IsDark)

	light := NewTheme("Light")
	assert.Equal(t, "light", light.Name)
	assert.False(t, light.IsDark)

	assert.Equal(t, "auto", NewTheme("neon").Name)
}

func TestTheme_GlamourStyle(t *testing.T) {
	th := NewTheme("dark")
	th.ColorProfile = termenv.TrueColor
	assert.Equal(t, "dark", th.GlamourStyle())

	th.IsDark = false
	assert.Equal(t, "light", th.GlamourStyle())

	th.ColorProfile = termenv.Ascii
	assert.Equal(t, "notty", th.GlamourStyle())
}

func TestTheme_StylesRender(t *testing.T) {
	th := NewTheme("light")
	assert.Contains(t, th.OutgoingBubble.Render("hi"), "hi")
	assert.Contains(t, th.IncomingBubble.Render("hello"), "hello")
}

func TestSpinnerConfig_Duration(t *testing.T) {
	assert.Equal(t, time.Second/12, DotsSpinner.Duration())
	assert.Equal(t, 100*time.Millisecond, SpinnerConfig{}.Duration())
	assert.NotEmpty(t, DotsSpinner.Frames)
}
