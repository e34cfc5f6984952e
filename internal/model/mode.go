// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

import (
	"errors"
	"fmt"
	"strings"
)

// RetrievalMode is the strategy the backend uses to fetch supporting
// documents before answering. The string value is the wire value.
type RetrievalMode string

const (
	// ModeStandard is single-pass retrieval.
	ModeStandard RetrievalMode = "standard"
	// ModeMultiQuery fans the question out into several rephrasings.
	ModeMultiQuery RetrievalMode = "multi_query"
	// ModeQueryDecomposition splits the question into sub-questions.
	ModeQueryDecomposition RetrievalMode = "query_decomposition"
)

// DefaultMode is the mode a new session starts with.
const DefaultMode = ModeStandard

// ErrInvalidMode is returned for values outside the closed enumeration.
var ErrInvalidMode = errors.New("invalid retrieval mode")

var modes = []RetrievalMode{ModeStandard, ModeMultiQuery, ModeQueryDecomposition}

// Modes returns every retrieval mode in picker order.
func Modes() []RetrievalMode {
	out := make([]RetrievalMode, len(modes))
	copy(out, modes)
	return out
}

// ParseRetrievalMode converts user or config input into a RetrievalMode.
// Matching ignores case, surrounding space, and accepts dashes for underscores.
func ParseRetrievalMode(s string) (RetrievalMode, error) {
	norm := strings.ReplaceAll(strings.ToLower(strings.TrimSpace(s)), "-", "_")
	for _, m := range modes {
		if string(m) == norm {
			return m, nil
		}
	}
	return "", fmt.Errorf("%w: %q (want one of: standard, multi_query, query_decomposition)", ErrInvalidMode, s)
}

// Valid reports whether m is one of the known modes.
func (m RetrievalMode) Valid() bool {
	for _, known := range modes {
		if m == known {
			return true
		}
	}
	return false
}

// String returns the wire value.
func (m RetrievalMode) String() string {
	return string(m)
}

// Label returns the name shown in the mode picker.
func (m RetrievalMode) Label() string {
	switch m {
	case ModeStandard:
		return "Standard"
	case ModeMultiQuery:
		return "Multi-query"
	case ModeQueryDecomposition:
		return "Query Decomposition"
	default:
		return string(m)
	}
}

// Next returns the mode after m in picker order, wrapping around.
// Unknown modes cycle back to the default.
func (m RetrievalMode) Next() RetrievalMode {
	for i, known := range modes {
		if m == known {
			return modes[(i+1)%len(modes)]
		}
	}
	return DefaultMode
}
