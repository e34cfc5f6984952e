// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/Ghassan-Dib/AutoReport-AI-Assistant/internal/markup"
	"github.com/Ghassan-Dib/AutoReport-AI-Assistant/internal/model"
	"github.com/Ghassan-Dib/AutoReport-AI-Assistant/internal/util"
)

// DateLayout formats the date separator, e.g. "Monday, November 4, 2024".
const DateLayout = "Monday, January 2, 2006"

// =============================================================================
// MAIN RENDER
// =============================================================================

// renderChat renders header, transcript, input and status line.
func (m Model) renderChat() string {
	if m.width == 0 || m.height == 0 {
		return "Loading..."
	}

	parts := []string{m.renderHeader(), m.viewport.View()}
	if m.showHelp {
		parts = append(parts, m.renderHelp())
	}
	parts = append(parts, m.renderInput(), m.renderStatus())
	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

// renderHeader renders "<name>  ● Active" on the left and the mode on the right.
func (m Model) renderHeader() string {
	innerWidth := max(m.width-4, 10)

	badge := m.theme.ModeBadge.Render(m.selector.Mode().Label())
	status := m.theme.HeaderStatus.Render("● Active")

	nameWidth := innerWidth - lipgloss.Width(badge) - lipgloss.Width(status) - 4
	name := m.theme.HeaderTitle.Render(util.TruncateWidth(m.opts.AssistantName, max(nameWidth, 4)))

	left := name + "  " + status
	gap := innerWidth - lipgloss.Width(left) - lipgloss.Width(badge)
	if gap < 1 {
		gap = 1
	}
	line := left + strings.Repeat(" ", gap) + badge
	return m.theme.Header.Width(max(m.width-2, 10)).Render(line)
}

// renderInput renders the text input, or the typing indicator while busy.
func (m Model) renderInput() string {
	width := max(m.width-2, 10)
	if m.busy {
		indicator := m.spinner.View() + " " + m.theme.Typing.Render(m.opts.TypingText)
		return m.theme.InputDisabled.Width(width).Render(indicator)
	}
	return m.theme.Input.Width(width).Render(m.input.View())
}

// renderStatus renders the transient status, or key hints when there is none.
func (m Model) renderStatus() string {
	var line string
	switch {
	case m.status != "" && m.statusIsErr:
		line = m.theme.StatusError.Render(util.TruncateWidth(util.OneLine(m.status), m.width))
	case m.status != "":
		line = m.theme.StatusInfo.Render(util.TruncateWidth(util.OneLine(m.status), m.width))
	default:
		line = m.theme.Help.Render(util.TruncateWidth(helpLine(m.keyMap.ShortHelp())+" • /help", m.width))
	}
	return line
}

// renderHelp renders the help panel toggled by /help.
func (m Model) renderHelp() string {
	lines := []string{
		"/mode [name]            show or change the retrieval mode",
		"/export [md|json|html]  export the transcript",
		"/help                   toggle this panel",
		"/quit                   exit",
	}
	for _, group := range m.keyMap.FullHelp() {
		lines = append(lines, helpLine(group))
	}
	return m.theme.Help.Render(strings.Join(lines, "\n"))
}

// =============================================================================
// TRANSCRIPT
// =============================================================================

// renderTranscript renders every message, with a date separator before the
// first message of each day.
func (m *Model) renderTranscript() string {
	var sb strings.Builder
	var lastDay time.Time

	for i, msg := range m.messages {
		if m.opts.DateSeparator {
			day := truncateDay(msg.CreatedAt)
			if i == 0 || !day.Equal(lastDay) {
				sb.WriteString(m.renderDateSeparator(msg.CreatedAt))
				sb.WriteString("\n\n")
			}
			lastDay = day
		}
		sb.WriteString(m.renderMessage(msg))
		sb.WriteString("\n\n")
	}
	return strings.TrimRight(sb.String(), "\n")
}

func (m Model) renderDateSeparator(t time.Time) string {
	label := " " + t.Format(DateLayout) + " "
	width := max(m.viewport.Width, lipgloss.Width(label))
	return m.theme.DateSeparator.Render(util.PadCenter(label, width))
}

// renderMessage renders an outgoing bubble on the right or an incoming bubble
// on the left.
func (m *Model) renderMessage(msg model.Message) string {
	if msg.IsOutgoing() {
		return m.renderOutgoing(msg)
	}
	return m.renderIncoming(msg)
}

func (m Model) renderOutgoing(msg model.Message) string {
	maxWidth := m.bubbleWidth()
	text := strings.TrimSpace(msg.Content)

	contentWidth := 0
	for _, line := range strings.Split(text, "\n") {
		contentWidth = max(contentWidth, util.StringWidth(line))
	}
	// Padding adds 2 columns.
	bubble := m.theme.OutgoingBubble.Width(min(contentWidth+2, maxWidth)).Render(text)
	stamp := m.theme.Timestamp.Render(msg.CreatedAt.Format("3:04 PM"))
	block := lipgloss.JoinVertical(lipgloss.Right, bubble, stamp)
	return lipgloss.PlaceHorizontal(max(m.viewport.Width, lipgloss.Width(block)), lipgloss.Right, block)
}

func (m *Model) renderIncoming(msg model.Message) string {
	if cached, ok := m.rendered[msg.ID]; ok {
		return cached
	}

	var body string
	if msg.ContentType == model.ContentTypeText {
		body = msg.Content
	} else {
		body = m.renderer.Render(msg.Content)
	}
	if strings.TrimSpace(body) == "" {
		body = markup.ToPlain(msg.Content)
	}

	label := m.theme.SenderLabel.Render(m.opts.AssistantName)
	bubble := m.theme.IncomingBubble.MaxWidth(m.bubbleWidth()).Render(body)
	stamp := m.theme.Timestamp.Render(msg.CreatedAt.Format("3:04 PM"))
	out := lipgloss.JoinVertical(lipgloss.Left, label, bubble, stamp)

	if m.rendered != nil {
		m.rendered[msg.ID] = out
	}
	return out
}

func truncateDay(t time.Time) time.Time {
	y, mo, d := t.Date()
	return time.Date(y, mo, d, 0, 0, 0, 0, t.Location())
}
