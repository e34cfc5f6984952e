// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

/*
Package chat provides the full-screen chat view of the AutoReport client.

The view is a Bubble Tea model that renders a conversation.Store and submits
questions through a conversation.Orchestrator. It never mutates the store
itself; every change arrives back as a StoreChangedMsg.

# Layout

  - Header with the assistant name, an "Active" indicator and the current
    retrieval mode
  - Transcript viewport with a date separator, user questions on the right
    and assistant replies on the left
  - Typing indicator while a question is in flight (the input is disabled)
  - Status line for hints, command output and transient errors

# Slash Commands

  - /mode [name] - Show or change the retrieval mode
  - /export [md|json|html] - Export the transcript to a file
  - /help - Toggle the help panel
  - /quit - Exit

# Usage

	m := chat.New(theme, orch, selector, chat.DefaultOptions())
	p := tea.NewProgram(m, tea.WithAltScreen())
	unsubscribe := chat.Subscribe(orch.Store(), p.Send)
	defer unsubscribe()
	_, err := p.Run()
*/
package chat
