// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package conversation

import (
	"sync"

	"github.com/Ghassan-Dib/AutoReport-AI-Assistant/internal/model"
)

// ModeSelector holds the retrieval mode currently chosen by the user.
type ModeSelector struct {
	mu   sync.RWMutex
	mode model.RetrievalMode
}

// NewModeSelector creates a selector. Invalid initial modes fall back to
// model.DefaultMode.
func NewModeSelector(initial model.RetrievalMode) *ModeSelector {
	if !initial.Valid() {
		initial = model.DefaultMode
	}
	return &ModeSelector{mode: initial}
}

// Mode returns the selected mode.
func (s *ModeSelector) Mode() model.RetrievalMode {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.mode
}

// Set selects mode. Values outside the enumeration are rejected and leave
// the selection unchanged.
func (s *ModeSelector) Set(mode model.RetrievalMode) error {
	parsed, err := model.ParseRetrievalMode(string(mode))
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.mode = parsed
	s.mu.Unlock()
	return nil
}

// Cycle advances to the next mode in picker order and returns it.
func (s *ModeSelector) Cycle() model.RetrievalMode {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.mode = s.mode.Next()
	return s.mode
}
