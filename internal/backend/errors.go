// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package backend

import (
	"errors"
	"fmt"
)

// =============================================================================
// ERROR TYPES
// =============================================================================

// ErrorKind categorizes client errors for handling.
type ErrorKind int

const (
	KindUnknown ErrorKind = iota
	// KindNetwork covers connection failures, timeouts and cancellation.
	KindNetwork
	// KindMalformedResponse covers bodies that are not a usable answer.
	KindMalformedResponse
	// KindHTTPStatus covers non-2xx responses.
	KindHTTPStatus
)

// String returns the string representation of the kind.
func (k ErrorKind) String() string {
	switch k {
	case KindNetwork:
		return "network"
	case KindMalformedResponse:
		return "malformed_response"
	case KindHTTPStatus:
		return "http_status"
	default:
		return "unknown"
	}
}

// ClientError represents an error from the backend client.
type ClientError struct {
	Kind    ErrorKind
	Message string
	Status  int // HTTP status, 0 when no response was received
	Cause   error
}

func (e *ClientError) Error() string {
	msg := e.Message
	if e.Status != 0 {
		msg = fmt.Sprintf("%s (status %d)", msg, e.Status)
	}
	if e.Cause != nil {
		return msg + ": " + e.Cause.Error()
	}
	return msg
}

func (e *ClientError) Unwrap() error {
	return e.Cause
}

// IsNetworkFailure reports whether err is a transport-level failure,
// including non-2xx responses.
func IsNetworkFailure(err error) bool {
	var ce *ClientError
	if !errors.As(err, &ce) {
		return false
	}
	return ce.Kind == KindNetwork || ce.Kind == KindHTTPStatus
}

// IsMalformedResponse reports whether err came from an unusable response body.
func IsMalformedResponse(err error) bool {
	var ce *ClientError
	return errors.As(err, &ce) && ce.Kind == KindMalformedResponse
}

func networkError(msg string, cause error) *ClientError {
	return &ClientError{Kind: KindNetwork, Message: msg, Cause: cause}
}

func malformedError(msg string, cause error) *ClientError {
	return &ClientError{Kind: KindMalformedResponse, Message: msg, Cause: cause}
}
