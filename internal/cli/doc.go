// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package cli implements the autoreport command tree.
//
// # Commands
//
//   - autoreport: Full-screen chat (default)
//   - autoreport ask QUESTION: One-shot question, reply on stdout
//   - autoreport chat: Line-oriented chat with history
//   - autoreport status: Probe the backend
//   - autoreport clear-history: Clear the server-side session history
//   - autoreport config show|path|init|get|set: Manage configuration
//   - autoreport version: Show version information
//
// Every command loads the configuration first (file, AUTOREPORT_* variables,
// then flags). The full-screen chat logs to a file because it owns the
// terminal; the other commands log to stderr.
package cli
