// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package conversation

import (
	"context"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/semaphore"

	"github.com/Ghassan-Dib/AutoReport-AI-Assistant/internal/model"
)

// =============================================================================
// BACKEND BOUNDARY
// =============================================================================

// Backend answers questions with the given retrieval mode. A call either
// returns an answer or an error exactly once.
type Backend interface {
	Ask(ctx context.Context, question string, mode model.RetrievalMode) (*model.Answer, error)
}

// Sentinel errors returned by Send before any state change.
var (
	// ErrBusy is returned when a Send is already in flight.
	ErrBusy = errors.New("a question is already in flight")

	// ErrEmptyQuestion is returned for empty or whitespace-only input.
	ErrEmptyQuestion = errors.New("question is empty")
)

// =============================================================================
// ORCHESTRATOR
// =============================================================================

// Orchestrator coordinates request/response cycles between the store and the
// backend. At most one cycle runs at a time; concurrent calls are rejected
// with ErrBusy rather than queued.
type Orchestrator struct {
	store   *Store
	backend Backend
	gate    *semaphore.Weighted
	logger  *zerolog.Logger
}

// OrchestratorOption configures an Orchestrator.
type OrchestratorOption func(*Orchestrator)

// WithLogger sets the logger used for failures. Defaults to the global logger.
func WithLogger(logger zerolog.Logger) OrchestratorOption {
	return func(o *Orchestrator) {
		o.logger = &logger
	}
}

// NewOrchestrator creates an orchestrator writing to store and asking backend.
func NewOrchestrator(store *Store, backend Backend, opts ...OrchestratorOption) *Orchestrator {
	o := &Orchestrator{
		store:   store,
		backend: backend,
		gate:    semaphore.NewWeighted(1),
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Store returns the store the orchestrator writes to.
func (o *Orchestrator) Store() *Store {
	return o.store
}

// InFlight reports whether a Send is currently running.
func (o *Orchestrator) InFlight() bool {
	if !o.gate.TryAcquire(1) {
		return true
	}
	o.gate.Release(1)
	return false
}

// Send runs one question/answer cycle and returns the appended reply.
//
// The user's message is appended before the backend is called, so it stays
// in the transcript even when the call fails. The busy flag is raised before
// the call and cleared exactly once when it settles. On failure nothing else
// is appended and the error is logged and returned.
func (o *Orchestrator) Send(ctx context.Context, rawText string, mode model.RetrievalMode) (model.Message, error) {
	if strings.TrimSpace(rawText) == "" {
		return model.Message{}, ErrEmptyQuestion
	}
	if !o.gate.TryAcquire(1) {
		return model.Message{}, ErrBusy
	}
	defer o.gate.Release(1)

	logger := o.log()
	outgoing := model.NewOutgoing(rawText)
	o.store.Append(outgoing)

	o.store.SetBusy(true)
	defer o.store.SetBusy(false)

	start := time.Now()
	answer, err := o.backend.Ask(ctx, rawText, mode)
	if err == nil && answer == nil {
		err = errors.New("backend returned no answer")
	}
	if err != nil {
		logger.Error().
			Err(err).
			Str("message_id", outgoing.ID).
			Str("mode", mode.String()).
			Dur("elapsed", time.Since(start)).
			Msg("question failed")
		return model.Message{}, errors.Wrap(err, "ask backend")
	}

	incoming := model.NewIncoming(FormatReply(answer))
	o.store.Append(incoming)

	logger.Debug().
		Str("message_id", incoming.ID).
		Str("mode", mode.String()).
		Int("sources", len(answer.Sources)).
		Str("sources_field", answer.SourcesField.String()).
		Dur("elapsed", time.Since(start)).
		Msg("question answered")

	return incoming, nil
}

func (o *Orchestrator) log() *zerolog.Logger {
	if o.logger != nil {
		return o.logger
	}
	return &log.Logger
}
