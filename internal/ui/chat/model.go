// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"context"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/rs/zerolog/log"

	"github.com/Ghassan-Dib/AutoReport-AI-Assistant/internal/conversation"
	"github.com/Ghassan-Dib/AutoReport-AI-Assistant/internal/markup"
	"github.com/Ghassan-Dib/AutoReport-AI-Assistant/internal/model"
	"github.com/Ghassan-Dib/AutoReport-AI-Assistant/internal/ui/styles"
)

// statusTTL is how long transient status messages stay visible.
const statusTTL = 5 * time.Second

// =============================================================================
// OPTIONS
// =============================================================================

// Options configures the chat view.
type Options struct {
	AssistantName string
	TypingText    string
	Placeholder   string
	DateSeparator bool
	// WordWrap caps the width of message bubbles. 0 uses the window width.
	WordWrap  int
	ExportDir string
	SessionID string
}

// DefaultOptions returns the options matching the default configuration.
func DefaultOptions() Options {
	return Options{
		AssistantName: "AutoReport Assistant",
		TypingText:    "searching documents..",
		Placeholder:   "ask your question here...",
		DateSeparator: true,
		WordWrap:      100,
		ExportDir:     ".",
	}
}

// =============================================================================
// CHAT MODEL
// =============================================================================

// Model is the Bubble Tea model for the chat view.
type Model struct {
	ctx    context.Context
	cancel context.CancelFunc

	theme    *styles.Theme
	opts     Options
	orch     *conversation.Orchestrator
	selector *conversation.ModeSelector
	renderer *markup.Renderer

	// Dimensions
	width  int
	height int

	// Last store state received
	messages []model.Message
	busy     bool

	// UI Components
	viewport viewport.Model
	input    textinput.Model
	spinner  spinner.Model
	keyMap   KeyMap

	// Rendered incoming bubbles keyed by message id, reset on resize.
	rendered map[string]string

	// Status line
	status      string
	statusIsErr bool
	statusID    int
	showHelp    bool

	quitting bool
}

// New creates the chat view over orch's store.
func New(theme *styles.Theme, orch *conversation.Orchestrator, selector *conversation.ModeSelector, opts Options) Model {
	if theme == nil {
		theme = styles.NewTheme("auto")
	}
	if selector == nil {
		selector = conversation.NewModeSelector(model.DefaultMode)
	}

	ti := textinput.New()
	ti.Prompt = "> "
	ti.Placeholder = opts.Placeholder
	ti.CharLimit = 4096
	ti.Focus()

	sp := spinner.New()
	sp.Spinner = spinner.Spinner{
		Frames: styles.DotsSpinner.Frames,
		FPS:    styles.DotsSpinner.Duration(),
	}
	sp.Style = theme.Spinner

	ctx, cancel := context.WithCancel(context.Background())
	snap := orch.Store().Snapshot()

	m := Model{
		ctx:      ctx,
		cancel:   cancel,
		theme:    theme,
		opts:     opts,
		orch:     orch,
		selector: selector,
		messages: snap.Messages,
		busy:     snap.Busy,
		viewport: viewport.New(80, 20),
		input:    ti,
		spinner:  sp,
		keyMap:   DefaultKeyMap(),
		rendered: make(map[string]string),
	}
	m.setInputEnabled(!m.busy)
	return m
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{textinput.Blink}
	if m.busy {
		cmds = append(cmds, m.spinner.Tick)
	}
	return tea.Batch(cmds...)
}

// View implements tea.Model.
func (m Model) View() string {
	if m.quitting {
		return ""
	}
	return m.renderChat()
}

// Mode returns the retrieval mode the next question will use.
func (m Model) Mode() model.RetrievalMode {
	return m.selector.Mode()
}

// Busy reports whether the view shows a question in flight.
func (m Model) Busy() bool {
	return m.busy
}

// Status returns the current status line text.
func (m Model) Status() string {
	return m.status
}

// =============================================================================
// LAYOUT
// =============================================================================

func (m Model) handleResize(msg tea.WindowSizeMsg) (tea.Model, tea.Cmd) {
	m.width = msg.Width
	m.height = msg.Height

	// Header is bordered (3 lines), input area is bordered (3 lines), status 1.
	const (
		headerHeight = 3
		inputHeight  = 3
		statusHeight = 1
	)
	vpHeight := m.height - headerHeight - inputHeight - statusHeight
	if m.showHelp {
		vpHeight -= lipgloss.Height(m.renderHelp())
	}
	if vpHeight < 1 {
		vpHeight = 1
	}
	m.viewport.Width = max(m.width, 1)
	m.viewport.Height = vpHeight

	// Border (2) + padding (2) + prompt (2)
	m.input.Width = max(m.width-6, 10)

	renderer, err := markup.NewRenderer(m.bubbleWidth()-4, m.theme.GlamourStyle())
	if err != nil {
		log.Warn().Err(err).Msg("markup renderer unavailable, replies shown unstyled")
	}
	m.renderer = renderer
	m.rendered = make(map[string]string)

	m.updateViewport()
	return m, nil
}

// bubbleWidth is the widest a message bubble may be.
func (m Model) bubbleWidth() int {
	w := m.width * 3 / 4
	if m.opts.WordWrap > 0 && w > m.opts.WordWrap {
		w = m.opts.WordWrap
	}
	if w < 20 {
		w = 20
	}
	return w
}

func (m *Model) updateViewport() {
	atBottom := m.viewport.AtBottom()
	m.viewport.SetContent(m.renderTranscript())
	if atBottom || m.busy {
		m.viewport.GotoBottom()
	}
}

// setInputEnabled focuses or blurs the input. A blurred input ignores keys.
func (m *Model) setInputEnabled(enabled bool) {
	if enabled {
		m.input.Focus()
		m.input.Placeholder = m.opts.Placeholder
		return
	}
	m.input.Blur()
	m.input.Placeholder = ""
}

// setStatus shows text in the status line and schedules its removal.
func (m *Model) setStatus(text string, isErr bool) tea.Cmd {
	m.statusID++
	m.status = text
	m.statusIsErr = isErr
	id := m.statusID
	return tea.Tick(statusTTL, func(time.Time) tea.Msg {
		return clearStatusMsg{id: id}
	})
}

// withStatus sets the status line and returns the updated model.
func (m Model) withStatus(text string, isErr bool) (tea.Model, tea.Cmd) {
	cmd := m.setStatus(text, isErr)
	return m, cmd
}
