// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package events

import (
	"context"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Bus is an in-process pub/sub for store events with handler routing.
type Bus struct {
	logger watermill.LoggerAdapter
	pubsub *gochannel.GoChannel
	router *message.Router
}

// BusOption configures a Bus.
type BusOption func(*Bus)

// WithLogger sets the watermill logger. Defaults to no logging.
func WithLogger(logger watermill.LoggerAdapter) BusOption {
	return func(b *Bus) {
		b.logger = logger
	}
}

// NewBus creates a bus. Publishing never waits for subscribers, so a slow
// handler cannot stall the store.
func NewBus(opts ...BusOption) (*Bus, error) {
	b := &Bus{logger: watermill.NopLogger{}}
	for _, opt := range opts {
		opt(b)
	}

	b.pubsub = gochannel.NewGoChannel(gochannel.Config{
		OutputChannelBuffer: 256,
	}, b.logger)

	router, err := message.NewRouter(message.RouterConfig{}, b.logger)
	if err != nil {
		return nil, errors.Wrap(err, "create event router")
	}
	b.router = router
	return b, nil
}

// Publisher returns the publisher side of the bus.
func (b *Bus) Publisher() message.Publisher {
	return b.pubsub
}

// AddHandler registers fn for events on topic. Handlers must be added
// before Run. Messages that fail to decode are logged and dropped.
func (b *Bus) AddHandler(name, topic string, fn func(Event) error) {
	b.router.AddNoPublisherHandler(name, topic, b.pubsub, func(msg *message.Message) error {
		ev, err := Decode(msg.Payload)
		if err != nil {
			log.Warn().Err(err).Str("handler", name).Str("message_id", msg.UUID).Msg("dropping undecodable event")
			return nil
		}
		return fn(ev)
	})
}

// Run starts the handlers and blocks until ctx is cancelled or the bus is
// closed.
func (b *Bus) Run(ctx context.Context) error {
	return b.router.Run(ctx)
}

// Running is closed once the handlers are running.
func (b *Bus) Running() chan struct{} {
	return b.router.Running()
}

// Subscribe returns decoded events published on topic until ctx is
// cancelled or the bus is closed.
func (b *Bus) Subscribe(ctx context.Context, topic string) (<-chan Event, error) {
	messages, err := b.pubsub.Subscribe(ctx, topic)
	if err != nil {
		return nil, errors.Wrapf(err, "subscribe to %s", topic)
	}

	out := make(chan Event)
	go func() {
		defer close(out)
		for msg := range messages {
			ev, err := Decode(msg.Payload)
			msg.Ack()
			if err != nil {
				log.Warn().Err(err).Str("message_id", msg.UUID).Msg("dropping undecodable event")
				continue
			}
			select {
			case out <- ev:
			case <-ctx.Done():
				return
			}
		}
	}()
	return out, nil
}

// Close stops the handlers and the pub/sub.
func (b *Bus) Close() error {
	var result error
	if err := b.router.Close(); err != nil {
		log.Error().Err(err).Msg("Failed to close event router")
		result = err
	}
	if err := b.pubsub.Close(); err != nil {
		log.Error().Err(err).Msg("Failed to close event pubsub")
		if result == nil {
			result = err
		}
	}
	return result
}

// LogHandler returns a handler that writes every event to logger at debug level.
func LogHandler(logger zerolog.Logger) func(Event) error {
	return func(ev Event) error {
		e := logger.Debug().
			Uint64("seq", ev.Seq).
			Str("type", string(ev.Type))
		switch ev.Type {
		case EventMessageAppended:
			e = e.Str("message_id", ev.Message.ID).
				Str("direction", ev.Message.Direction.String()).
				Int("length", len(ev.Message.Content))
		case EventBusyChanged:
			e = e.Bool("busy", ev.Busy)
		}
		e.Msg("store event")
		return nil
	}
}
