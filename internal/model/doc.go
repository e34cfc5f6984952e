// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package model contains the data structures for transcript messages,
// retrieval modes and backend answers.
//
// # Key Types
//
//   - Message: Single transcript entry with direction, content type and status
//   - Direction: Incoming (assistant) or Outgoing (user)
//   - RetrievalMode: Retrieval strategy attached to every question
//   - Answer: Typed backend reply with optional sources
//
// # Usage
//
// Create the seeded greeting and a user question:
//
//	greeting := model.Greeting("Hello, how can I help you?")
//	question := model.NewOutgoing("What was the 2023 revenue?")
//
// Parse a retrieval mode coming from the user:
//
//	mode, err := model.ParseRetrievalMode("multi_query")
package model
