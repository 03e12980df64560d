package internal

import (
	"errors"
	"fmt"
)

// ErrInterrupted is returned when the user interrupts a chat session
var ErrInterrupted = errors.New("interrupted")

// AuthError represents a rejected login
type AuthError struct {
	Username string
	Err      error
}

func (e *AuthError) Error() string {
	return fmt.Sprintf("authentication error [%s]: %v", e.Username, e.Err)
}

func (e *AuthError) Unwrap() error {
	return e.Err
}

// FetchError represents a failed inbox or thread fetch
type FetchError struct {
	Op       string // "inbox", "older", "all", "thread"
	ThreadID string
	Err      error
}

func (e *FetchError) Error() string {
	if e.ThreadID != "" {
		return fmt.Sprintf("fetch error [%s] %s: %v", e.Op, e.ThreadID, e.Err)
	}
	return fmt.Sprintf("fetch error [%s]: %v", e.Op, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// SendError represents a message that could not be delivered
type SendError struct {
	ThreadID string
	Err      error
}

func (e *SendError) Error() string {
	return fmt.Sprintf("send error [%s]: %v", e.ThreadID, e.Err)
}

func (e *SendError) Unwrap() error {
	return e.Err
}

// ConfigError represents invalid configuration
type ConfigError struct {
	Key string
	Err error
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("config error [%s]: %v", e.Key, e.Err)
}

func (e *ConfigError) Unwrap() error {
	return e.Err
}
