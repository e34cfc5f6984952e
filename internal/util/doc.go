// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package util provides small helpers shared by the AutoReport packages.
//
// # Key Functions
//
//   - AtomicWriteFile: crash-safe file writing with fsync and rename
//   - TruncateRunes: UTF-8 safe truncation for log previews
//   - TruncateWidth, StringWidth: display-width aware helpers for the terminal
//
// # Usage
//
//	// Write files atomically to prevent partial configs
//	err := util.AtomicWriteFile(path, data, 0600)
//
//	// Fit a header into the available columns
//	title := util.TruncateWidth(name, width)
package util
