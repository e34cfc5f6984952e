// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package events

import (
	"encoding/json"
	"sync/atomic"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/rs/zerolog/log"

	"github.com/Ghassan-Dib/AutoReport-AI-Assistant/internal/conversation"
)

// Sink represents a destination for store events.
type Sink interface {
	// PublishEvent publishes an event to the sink.
	PublishEvent(event Event) error
}

// WatermillSink publishes events to a watermill Publisher as JSON messages.
type WatermillSink struct {
	publisher message.Publisher
	topic     string
}

// NewWatermillSink creates a sink that publishes to topic.
func NewWatermillSink(publisher message.Publisher, topic string) *WatermillSink {
	return &WatermillSink{
		publisher: publisher,
		topic:     topic,
	}
}

// PublishEvent serializes the event and publishes it.
func (w *WatermillSink) PublishEvent(event Event) error {
	payload, err := json.Marshal(event)
	if err != nil {
		log.Error().Err(err).Msg("Failed to marshal event to JSON")
		return err
	}

	msg := message.NewMessage(watermill.NewUUID(), payload)
	msg.Metadata.Set("event_type", string(event.Type))

	if err := w.publisher.Publish(w.topic, msg); err != nil {
		log.Error().Err(err).Str("topic", w.topic).Msg("Failed to publish event to watermill")
		return err
	}

	log.Trace().Str("topic", w.topic).Str("event_type", string(event.Type)).Uint64("seq", event.Seq).Msg("Published event")
	return nil
}

var _ Sink = (*WatermillSink)(nil)

// Observer adapts sink into a store observer. Events are numbered from 1 in
// the order the store reports them. Publish errors are logged by the sink
// and never reach the store.
func Observer(sink Sink) conversation.Observer {
	var seq atomic.Uint64
	return func(change conversation.Change) {
		_ = sink.PublishEvent(FromChange(seq.Add(1), change))
	}
}
