// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package backend

// =============================================================================
// WIRE TYPES
// =============================================================================

// AskRequest is the body of POST /ask.
type AskRequest struct {
	Question      string `json:"question"`
	RetrieverType string `json:"retriever_type"`
	SessionID     string `json:"session_id,omitempty"`
}

// ClearHistoryRequest is the body of POST /clear-history.
type ClearHistoryRequest struct {
	SessionID string `json:"session_id"`
}

// messageResponse is returned by GET / and POST /clear-history.
type messageResponse struct {
	Message   string `json:"message"`
	SessionID string `json:"session_id,omitempty"`
}

// errorResponse is the error body of the service.
type errorResponse struct {
	Detail string `json:"detail"`
}
