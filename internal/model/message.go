// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package model contains the data structures for transcript messages.
package model

import (
	"time"

	"github.com/google/uuid"
)

// =============================================================================
// DIRECTION
// =============================================================================

// Direction tells who authored a message.
type Direction string

const (
	// Incoming messages are authored by the assistant.
	Incoming Direction = "incoming"
	// Outgoing messages are authored by the user.
	Outgoing Direction = "outgoing"
)

// String returns the string representation of the direction.
func (d Direction) String() string {
	return string(d)
}

// DisplayName returns a human-readable name for the author.
func (d Direction) DisplayName() string {
	switch d {
	case Incoming:
		return "Assistant"
	case Outgoing:
		return "You"
	default:
		return string(d)
	}
}

// =============================================================================
// CONTENT TYPE AND STATUS
// =============================================================================

// ContentType tags how Content should be rendered.
type ContentType string

const (
	// ContentTypeText is plain text, rendered verbatim.
	ContentTypeText ContentType = "text/plain"
	// ContentTypeMarkup is rich text with inline emphasis and lists.
	ContentTypeMarkup ContentType = "text/markup"
)

// Status is the delivery state of a message.
type Status string

// StatusSent is the only delivery state this client uses.
const StatusSent Status = "sent"

// =============================================================================
// MESSAGE TYPE
// =============================================================================

// Message is a single transcript entry. It is treated as immutable once it
// has been appended to a conversation.
type Message struct {
	ID          string      `json:"id"`
	Direction   Direction   `json:"direction"`
	ContentType ContentType `json:"content_type"`
	Content     string      `json:"content"`
	Status      Status      `json:"status"`
	CreatedAt   time.Time   `json:"created_at"`
}

// NewMessage creates a markup message with a generated ID.
func NewMessage(direction Direction, content string) Message {
	return Message{
		ID:          NewID(),
		Direction:   direction,
		ContentType: ContentTypeMarkup,
		Content:     content,
		Status:      StatusSent,
		CreatedAt:   time.Now(),
	}
}

// NewOutgoing creates a message authored by the user.
func NewOutgoing(content string) Message {
	return NewMessage(Outgoing, content)
}

// NewIncoming creates a message authored by the assistant.
func NewIncoming(content string) Message {
	return NewMessage(Incoming, content)
}

// Greeting creates the incoming message every conversation starts with.
func Greeting(content string) Message {
	return NewIncoming(content)
}

// IsIncoming reports whether the assistant authored the message.
func (m Message) IsIncoming() bool {
	return m.Direction == Incoming
}

// IsOutgoing reports whether the user authored the message.
func (m Message) IsOutgoing() bool {
	return m.Direction == Outgoing
}

// NewID returns a fresh message identifier.
func NewID() string {
	return uuid.NewString()
}
