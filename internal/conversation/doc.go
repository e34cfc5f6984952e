// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package conversation owns the transcript and drives question/answer cycles
// against the RAG backend.
//
// # Key Types
//
//   - Store: ordered message log plus the busy flag, with change observers
//   - Orchestrator: runs one request/response cycle per Send
//   - ModeSelector: holds the retrieval mode chosen by the user
//   - Backend: the boundary the orchestrator asks questions through
//
// # Usage
//
//	store := conversation.NewStore(model.Greeting(cfg.Chat.Greeting))
//	orch := conversation.NewOrchestrator(store, backendClient)
//	reply, err := orch.Send(ctx, "What was the 2023 revenue?", selector.Mode())
//
// Send appends the user's message before any network activity, keeps the busy
// flag raised for exactly the lifetime of the request, and appends the reply
// (with its citation block) only when the backend answered. A second Send
// while one is in flight is rejected with ErrBusy.
package conversation
