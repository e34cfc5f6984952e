// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"github.com/pkg/errors"

	"github.com/Ghassan-Dib/AutoReport-AI-Assistant/internal/backend"
	"github.com/Ghassan-Dib/AutoReport-AI-Assistant/internal/config"
)

// =============================================================================
// EXIT CODES
// =============================================================================

const (
	// ExitSuccess indicates successful execution
	ExitSuccess = 0
	// ExitGeneralError indicates a general/unknown error
	ExitGeneralError = 1
	// ExitUsageError indicates invalid command usage or arguments
	ExitUsageError = 2
	// ExitConfigError indicates a configuration file or settings error
	ExitConfigError = 3
	// ExitNetworkError indicates the backend could not be reached or failed
	ExitNetworkError = 5
	// ExitResponseError indicates the backend replied with an unusable body
	ExitResponseError = 6
)

// usageError marks errors caused by bad arguments.
type usageError struct {
	err error
}

func (e *usageError) Error() string { return e.err.Error() }
func (e *usageError) Unwrap() error { return e.err }

func newUsageError(format string, args ...interface{}) error {
	return &usageError{err: errors.Errorf(format, args...)}
}

// ExitCode maps an error returned by a command to a process exit code.
func ExitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}

	var usage *usageError
	if errors.As(err, &usage) {
		return ExitUsageError
	}
	var verrs config.ValidateErrors
	if errors.As(err, &verrs) {
		return ExitConfigError
	}
	var verr config.ValidationError
	if errors.As(err, &verr) {
		return ExitConfigError
	}
	if backend.IsMalformedResponse(err) {
		return ExitResponseError
	}
	if backend.IsNetworkFailure(err) {
		return ExitNetworkError
	}
	return ExitGeneralError
}
