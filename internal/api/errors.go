package api

import (
	"errors"
	"fmt"
)

// Fixed user-facing messages, one per endpoint.
const (
	MsgMachines    = "Failed to fetch machines"
	MsgLogs        = "Failed to fetch logs"
	MsgLatestLogs  = "Failed to fetch latest logs"
	MsgKpis        = "Failed to fetch KPIs"
	MsgThroughput  = "Failed to fetch throughput"
	MsgLogin       = "Login failed"
	MsgInvalidCred = "Invalid credentials"
	MsgReport      = "Failed to download report"

	// MsgLoginRequired is shown instead of downloading when no token is stored.
	MsgLoginRequired = "Please log in to download the KPI report."
)

// ErrAuthRequired is returned by authenticated calls when no token is stored.
var ErrAuthRequired = errors.New("please log in to download the KPI report")

// Error is a failed API call. Message is the fixed text shown to the user;
// StatusCode is zero for transport or decode failures.
type Error struct {
	Op         string
	Message    string
	StatusCode int
	Err        error
}

func (e *Error) Error() string {
	return e.Message
}

// Unwrap returns the underlying transport or decode error.
func (e *Error) Unwrap() error {
	return e.Err
}

// Detail returns the message with the status code or cause appended.
func (e *Error) Detail() string {
	switch {
	case e.StatusCode != 0:
		return fmt.Sprintf("%s (HTTP %d)", e.Message, e.StatusCode)
	case e.Err != nil:
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	default:
		return e.Message
	}
}

// AuthError is returned by Login when the server rejects the credentials.
type AuthError struct {
	StatusCode int
	Reason     string
}

func (e *AuthError) Error() string {
	if e.Reason != "" {
		return MsgInvalidCred + ": " + e.Reason
	}
	return MsgInvalidCred
}

// IsAuthError reports whether err is a rejected login.
func IsAuthError(err error) bool {
	var authErr *AuthError
	return errors.As(err, &authErr)
}
