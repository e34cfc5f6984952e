// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package events

import (
	"encoding/json"
	"time"

	"github.com/pkg/errors"

	"github.com/Ghassan-Dib/AutoReport-AI-Assistant/internal/conversation"
	"github.com/Ghassan-Dib/AutoReport-AI-Assistant/internal/model"
)

// TopicStore is the topic store events are published on.
const TopicStore = "autoreport.store"

// EventType identifies the kind of store change.
type EventType string

const (
	EventMessageAppended EventType = "message_appended"
	EventBusyChanged     EventType = "busy_changed"
)

// Event is the serialized form of one store change.
type Event struct {
	Seq     uint64         `json:"seq"`
	Type    EventType      `json:"type"`
	Message *model.Message `json:"message,omitempty"`
	Busy    bool           `json:"busy"`
	Time    time.Time      `json:"time"`
}

// FromChange converts a store change into an event with sequence number seq.
func FromChange(seq uint64, change conversation.Change) Event {
	ev := Event{Seq: seq, Time: time.Now().UTC()}
	switch change.Kind {
	case conversation.ChangeAppended:
		msg := change.Message
		ev.Type = EventMessageAppended
		ev.Message = &msg
	case conversation.ChangeBusy:
		ev.Type = EventBusyChanged
		ev.Busy = change.Busy
	}
	return ev
}

// Decode parses a JSON event payload.
func Decode(payload []byte) (Event, error) {
	var ev Event
	if err := json.Unmarshal(payload, &ev); err != nil {
		return Event{}, errors.Wrap(err, "decode event")
	}
	switch ev.Type {
	case EventMessageAppended:
		if ev.Message == nil {
			return Event{}, errors.New("decode event: message_appended without message")
		}
	case EventBusyChanged:
	default:
		return Event{}, errors.Errorf("decode event: unknown type %q", ev.Type)
	}
	return ev, nil
}
