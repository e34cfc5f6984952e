// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

// SourcesField describes how the backend supplied the sources field.
type SourcesField int

const (
	// SourcesAbsent means the reply had no sources field (or it was null).
	SourcesAbsent SourcesField = iota
	// SourcesList means the field was a JSON array, possibly empty.
	SourcesList
	// SourcesInvalid means the field was present but not an array.
	SourcesInvalid
)

// String returns a short name for logging.
func (f SourcesField) String() string {
	switch f {
	case SourcesList:
		return "list"
	case SourcesInvalid:
		return "invalid"
	default:
		return "absent"
	}
}

// Answer is the typed reply to a question.
type Answer struct {
	Text         string
	Sources      []string
	SourcesField SourcesField
}

// HasCitations reports whether a citation block should follow the answer.
func (a *Answer) HasCitations() bool {
	return a != nil && a.SourcesField == SourcesList && len(a.Sources) > 0
}
