// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package backend provides the HTTP client for the AutoReport RAG service.
//
// The service answers one question per request:
//
//	POST /ask {"question": "...", "retriever_type": "standard"}
//	-> {"content": "...", "sources": ["doc1.pdf"]}
//
// Answers are returned as model.Answer values. Failures are reported as
// *ClientError with a Kind that separates transport problems from bodies the
// client could not understand.
package backend
