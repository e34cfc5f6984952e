// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package conversation

import (
	"sync"

	clone "github.com/huandu/go-clone"

	"github.com/Ghassan-Dib/AutoReport-AI-Assistant/internal/model"
)

// =============================================================================
// CHANGE NOTIFICATIONS
// =============================================================================

// ChangeKind identifies what changed in the store.
type ChangeKind int

const (
	// ChangeAppended is emitted after a message was appended.
	ChangeAppended ChangeKind = iota
	// ChangeBusy is emitted after the busy flag was set.
	ChangeBusy
)

// String returns the string representation of the kind.
func (k ChangeKind) String() string {
	switch k {
	case ChangeAppended:
		return "appended"
	case ChangeBusy:
		return "busy"
	default:
		return "unknown"
	}
}

// Change describes one store mutation.
type Change struct {
	Kind    ChangeKind
	Message model.Message // set for ChangeAppended
	Busy    bool          // set for ChangeBusy
}

// Observer is called synchronously after every store mutation.
// Observers must not mutate the store they observe.
type Observer func(Change)

// Snapshot is a read-only copy of the store state.
type Snapshot struct {
	Messages []model.Message
	Busy     bool
}

// Last returns the most recent message, or false if the snapshot is empty.
func (s Snapshot) Last() (model.Message, bool) {
	if len(s.Messages) == 0 {
		return model.Message{}, false
	}
	return s.Messages[len(s.Messages)-1], true
}

// =============================================================================
// STORE
// =============================================================================

type subscription struct {
	id int
	fn Observer
}

// Store is the single source of truth for the transcript and the busy flag.
//
// The Store is safe for concurrent use. Mutations and their notifications are
// serialized, so observers see changes in the order they happened.
type Store struct {
	// notifyMu serializes mutate-then-notify so notifications keep order.
	notifyMu sync.Mutex

	mu        sync.RWMutex
	messages  []model.Message
	busy      bool
	observers []subscription
	nextID    int
}

// NewStore creates a store seeded with the greeting message.
func NewStore(greeting model.Message) *Store {
	return &Store{
		messages: []model.Message{greeting},
	}
}

// Append inserts msg at the end of the transcript and notifies observers.
func (s *Store) Append(msg model.Message) {
	s.notifyMu.Lock()
	defer s.notifyMu.Unlock()

	s.mu.Lock()
	s.messages = append(s.messages, msg)
	observers := s.observersLocked()
	s.mu.Unlock()

	notify(observers, Change{Kind: ChangeAppended, Message: msg})
}

// SetBusy replaces the busy flag and notifies observers.
func (s *Store) SetBusy(flag bool) {
	s.notifyMu.Lock()
	defer s.notifyMu.Unlock()

	s.mu.Lock()
	s.busy = flag
	observers := s.observersLocked()
	s.mu.Unlock()

	notify(observers, Change{Kind: ChangeBusy, Busy: flag})
}

// Busy reports whether a request is outstanding.
func (s *Store) Busy() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.busy
}

// Len returns the number of messages in the transcript.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.messages)
}

// Snapshot returns a deep copy of the transcript and the busy flag.
func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return Snapshot{
		Messages: clone.Clone(s.messages).([]model.Message),
		Busy:     s.busy,
	}
}

// Subscribe registers fn for change notifications. The returned function
// removes the subscription and is safe to call more than once.
func (s *Store) Subscribe(fn Observer) (unsubscribe func()) {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.observers = append(s.observers, subscription{id: id, fn: fn})
	s.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			defer s.mu.Unlock()
			for i, sub := range s.observers {
				if sub.id == id {
					s.observers = append(s.observers[:i], s.observers[i+1:]...)
					return
				}
			}
		})
	}
}

func (s *Store) observersLocked() []Observer {
	out := make([]Observer, len(s.observers))
	for i, sub := range s.observers {
		out[i] = sub.fn
	}
	return out
}

func notify(observers []Observer, change Change) {
	for _, fn := range observers {
		fn(change)
	}
}
