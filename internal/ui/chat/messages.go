// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/Ghassan-Dib/AutoReport-AI-Assistant/internal/conversation"
)

// =============================================================================
// STORE MESSAGES
// =============================================================================

// StoreChangedMsg carries the store state after a mutation.
type StoreChangedMsg struct {
	Change   conversation.Change
	Snapshot conversation.Snapshot
}

// Subscribe forwards every store change to send, normally tea.Program.Send.
// The returned function stops forwarding.
func Subscribe(store *conversation.Store, send func(tea.Msg)) func() {
	return store.Subscribe(func(c conversation.Change) {
		send(StoreChangedMsg{Change: c, Snapshot: store.Snapshot()})
	})
}

// =============================================================================
// COMMAND RESULTS
// =============================================================================

// sendResultMsg reports how a Send settled.
type sendResultMsg struct {
	err error
}

// exportedMsg reports the outcome of /export.
type exportedMsg struct {
	path string
	err  error
}

// clearStatusMsg expires the status line with the matching id.
type clearStatusMsg struct {
	id int
}
