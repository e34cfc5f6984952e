// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"context"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"

	"github.com/Ghassan-Dib/AutoReport-AI-Assistant/internal/backend"
	"github.com/Ghassan-Dib/AutoReport-AI-Assistant/internal/config"
	"github.com/Ghassan-Dib/AutoReport-AI-Assistant/internal/conversation"
	"github.com/Ghassan-Dib/AutoReport-AI-Assistant/internal/events"
	"github.com/Ghassan-Dib/AutoReport-AI-Assistant/internal/model"
)

// session wires a backend client, a store and an orchestrator together for
// one run of a command.
type session struct {
	client   *backend.Client
	store    *conversation.Store
	orch     *conversation.Orchestrator
	selector *conversation.ModeSelector

	bus         *events.Bus
	unsubscribe func()
	cancel      context.CancelFunc
}

// settingsFromConfig converts the [backend] section into client settings.
func settingsFromConfig(cfg *config.Config) backend.Settings {
	return backend.Settings{
		BaseURL:              cfg.Backend.URL,
		AskPath:              cfg.Backend.AskPath,
		AnswerFields:         append([]string(nil), cfg.Backend.AnswerFields...),
		ResponseSchema:       cfg.Backend.ResponseSchema,
		SessionID:            cfg.Backend.SessionID,
		Timeout:              cfg.Backend.Timeout(),
		MaxRequestsPerMinute: cfg.Backend.MaxRequestsPerMinute,
	}
}

// newClient creates a backend client from cfg.
func newClient(cfg *config.Config) (*backend.Client, error) {
	client, err := backend.New(settingsFromConfig(cfg), backend.WithLogger(log.Logger))
	if err != nil {
		return nil, errors.Wrap(err, "create backend client")
	}
	return client, nil
}

// newSession builds a session seeded with the configured greeting. When
// log.events is set, store changes are mirrored to the log through the
// event bus until Close.
func newSession(ctx context.Context, cfg *config.Config) (*session, error) {
	client, err := newClient(cfg)
	if err != nil {
		return nil, err
	}

	store := conversation.NewStore(model.Greeting(cfg.Chat.Greeting))
	s := &session{
		client:   client,
		store:    store,
		orch:     conversation.NewOrchestrator(store, client, conversation.WithLogger(log.Logger)),
		selector: conversation.NewModeSelector(cfg.Chat.Mode()),
	}

	if cfg.Log.Events {
		if err := s.attachEvents(ctx); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// attachEvents starts an event bus that logs every store change.
func (s *session) attachEvents(ctx context.Context) error {
	bus, err := events.NewBus(events.WithLogger(events.NewWatermillLogger(log.Logger)))
	if err != nil {
		return err
	}
	bus.AddHandler("log-store-events", events.TopicStore, events.LogHandler(log.Logger))

	runCtx, cancel := context.WithCancel(ctx)
	errCh := make(chan error, 1)
	go func() {
		errCh <- bus.Run(runCtx)
	}()
	select {
	case <-bus.Running():
	case err := <-errCh:
		cancel()
		_ = bus.Close()
		return errors.Wrap(err, "start event bus")
	}

	sink := events.NewWatermillSink(bus.Publisher(), events.TopicStore)
	s.unsubscribe = s.store.Subscribe(events.Observer(sink))
	s.bus = bus
	s.cancel = cancel
	return nil
}

// Close detaches and stops the event bus, if any.
func (s *session) Close() error {
	if s.unsubscribe != nil {
		s.unsubscribe()
	}
	if s.cancel != nil {
		s.cancel()
	}
	if s.bus != nil {
		return s.bus.Close()
	}
	return nil
}

// ask sends one question with the selected mode and returns the reply.
func (s *session) ask(ctx context.Context, question string) (model.Message, error) {
	return s.orch.Send(ctx, question, s.selector.Mode())
}
