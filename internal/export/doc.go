// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package export writes the current transcript to Markdown, JSON or HTML.
//
// Exports are snapshots for reading and sharing; they are not reloaded.
//
// # Usage
//
//	t := export.NewTranscript(store.Snapshot().Messages, "AutoReport Assistant", mode)
//	path, err := export.ExportFormat(t, "md", export.DefaultOptions())
package export
