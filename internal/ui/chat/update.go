// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/pkg/errors"

	"github.com/Ghassan-Dib/AutoReport-AI-Assistant/internal/conversation"
	"github.com/Ghassan-Dib/AutoReport-AI-Assistant/internal/export"
	"github.com/Ghassan-Dib/AutoReport-AI-Assistant/internal/model"
)

// =============================================================================
// UPDATE
// =============================================================================

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		return m.handleResize(msg)

	case tea.KeyMsg:
		return m.handleKey(msg)

	case StoreChangedMsg:
		return m.handleStoreChanged(msg)

	case sendResultMsg:
		return m.handleSendResult(msg)

	case exportedMsg:
		if msg.err != nil {
			return m.withStatus("Export failed: "+msg.err.Error(), true)
		}
		return m.withStatus("Exported to "+msg.path, false)

	case clearStatusMsg:
		if msg.id == m.statusID {
			m.status = ""
			m.statusIsErr = false
		}
		return m, nil

	case spinner.TickMsg:
		if !m.busy {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keyMap.Quit):
		return m.quit()

	case key.Matches(msg, m.keyMap.CycleMode):
		mode := m.selector.Cycle()
		return m.withStatus("Mode: "+mode.Label(), false)

	case key.Matches(msg, m.keyMap.PageUp):
		m.viewport.ViewUp()
		return m, nil

	case key.Matches(msg, m.keyMap.PageDown):
		m.viewport.ViewDown()
		return m, nil

	case key.Matches(msg, m.keyMap.Home):
		m.viewport.GotoTop()
		return m, nil

	case key.Matches(msg, m.keyMap.End):
		m.viewport.GotoBottom()
		return m, nil

	case key.Matches(msg, m.keyMap.Submit):
		return m.submit()
	}

	// The input is disabled while a question is in flight.
	if m.busy {
		return m, nil
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// submit handles enter: slash commands run locally, anything else is sent.
func (m Model) submit() (tea.Model, tea.Cmd) {
	if m.busy {
		return m, nil
	}
	text := m.input.Value()
	if strings.TrimSpace(text) == "" {
		return m, nil
	}
	m.input.Reset()

	if strings.HasPrefix(strings.TrimSpace(text), "/") {
		return m.handleCommand(strings.TrimSpace(text))
	}
	return m, m.sendCmd(text, m.selector.Mode())
}

// sendCmd runs one question/answer cycle off the update loop. Store changes
// come back as StoreChangedMsg; only the final error is returned here.
func (m Model) sendCmd(text string, mode model.RetrievalMode) tea.Cmd {
	orch := m.orch
	ctx := m.ctx
	return func() tea.Msg {
		_, err := orch.Send(ctx, text, mode)
		return sendResultMsg{err: err}
	}
}

func (m Model) handleStoreChanged(msg StoreChangedMsg) (tea.Model, tea.Cmd) {
	wasBusy := m.busy
	m.messages = msg.Snapshot.Messages
	m.busy = msg.Snapshot.Busy
	m.setInputEnabled(!m.busy)
	m.updateViewport()

	if m.busy && !wasBusy {
		return m, m.spinner.Tick
	}
	return m, nil
}

func (m Model) handleSendResult(msg sendResultMsg) (tea.Model, tea.Cmd) {
	switch {
	case msg.err == nil:
		return m, nil
	case errors.Is(msg.err, conversation.ErrEmptyQuestion):
		return m, nil
	case errors.Is(msg.err, conversation.ErrBusy):
		return m.withStatus("Still waiting for the previous answer", true)
	case errors.Is(msg.err, context.Canceled):
		return m, nil
	default:
		return m.withStatus("Request failed: "+msg.err.Error(), true)
	}
}

func (m Model) quit() (tea.Model, tea.Cmd) {
	m.quitting = true
	if m.cancel != nil {
		m.cancel()
	}
	return m, tea.Quit
}

// =============================================================================
// SLASH COMMANDS
// =============================================================================

func (m Model) handleCommand(line string) (tea.Model, tea.Cmd) {
	fields := strings.Fields(line)
	name := strings.ToLower(fields[0])
	args := fields[1:]

	switch name {
	case "/mode":
		if len(args) == 0 {
			return m.withStatus(fmt.Sprintf("Mode: %s (available: %s)", m.selector.Mode().Label(), modeList()), false)
		}
		mode := model.RetrievalMode(strings.Join(args, "_"))
		if err := m.selector.Set(mode); err != nil {
			return m.withStatus(err.Error(), true)
		}
		return m.withStatus("Mode: "+m.selector.Mode().Label(), false)

	case "/export":
		format := "md"
		if len(args) > 0 {
			format = args[0]
		}
		return m, m.exportCmd(format)

	case "/help", "/?":
		m.showHelp = !m.showHelp
		if m.width > 0 {
			return m.handleResize(tea.WindowSizeMsg{Width: m.width, Height: m.height})
		}
		return m, nil

	case "/quit", "/exit", "/q":
		return m.quit()

	default:
		return m.withStatus("Unknown command: "+name+" (try /help)", true)
	}
}

func (m Model) exportCmd(format string) tea.Cmd {
	messages := m.messages
	mode := m.selector.Mode()
	opts := export.DefaultOptions()
	if m.opts.ExportDir != "" {
		opts.OutputDir = m.opts.ExportDir
	}
	if m.theme != nil && m.theme.IsDark {
		opts.Theme = "dark"
	}
	title := m.opts.AssistantName
	sessionID := m.opts.SessionID

	return func() tea.Msg {
		t := export.NewTranscript(messages, title, mode)
		t.SessionID = sessionID
		path, err := export.ExportFormat(t, format, opts)
		return exportedMsg{path: path, err: err}
	}
}

func modeList() string {
	names := make([]string, 0, 3)
	for _, mode := range model.Modes() {
		names = append(names, mode.String())
	}
	return strings.Join(names, ", ")
}
