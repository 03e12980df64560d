package internal

import (
	"errors"
	"strings"
	"testing"
)

func TestAuthError(t *testing.T) {
	originalErr := errors.New("bad password")
	err := &AuthError{Username: "alice", Err: originalErr}

	errorMsg := err.Error()
	if !strings.Contains(errorMsg, "authentication error") {
		t.Errorf("AuthError.Error() should contain 'authentication error', got: %q", errorMsg)
	}
	if !strings.Contains(errorMsg, "alice") {
		t.Errorf("AuthError.Error() should contain username, got: %q", errorMsg)
	}
	if !errors.Is(err, originalErr) {
		t.Error("AuthError.Unwrap() should return original error")
	}
}

func TestFetchError(t *testing.T) {
	originalErr := errors.New("connection reset")

	tests := []struct {
		name string
		err  *FetchError
		want []string
	}{
		{
			name: "inbox fetch",
			err:  &FetchError{Op: "inbox", Err: originalErr},
			want: []string{"fetch error", "inbox", "connection reset"},
		},
		{
			name: "thread fetch",
			err:  &FetchError{Op: "thread", ThreadID: "t1", Err: originalErr},
			want: []string{"fetch error", "thread", "t1"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			errorMsg := tt.err.Error()
			for _, want := range tt.want {
				if !strings.Contains(errorMsg, want) {
					t.Errorf("FetchError.Error() = %q, should contain %q", errorMsg, want)
				}
			}
			if !errors.Is(tt.err, originalErr) {
				t.Error("FetchError.Unwrap() should return original error")
			}
		})
	}
}

func TestSendError(t *testing.T) {
	originalErr := errors.New("rate limited")
	err := &SendError{ThreadID: "t1", Err: originalErr}

	if !strings.Contains(err.Error(), "send error") {
		t.Errorf("SendError.Error() should contain 'send error', got: %q", err.Error())
	}
	if !errors.Is(err, originalErr) {
		t.Error("SendError.Unwrap() should return original error")
	}
}

func TestConfigError(t *testing.T) {
	originalErr := errors.New("must be positive")
	err := &ConfigError{Key: "interval", Err: originalErr}

	if !strings.Contains(err.Error(), "interval") {
		t.Errorf("ConfigError.Error() should contain key, got: %q", err.Error())
	}

	var cfgErr *ConfigError
	if !errors.As(err, &cfgErr) {
		t.Error("errors.As should match *ConfigError")
	}
	if !errors.Is(err, originalErr) {
		t.Error("ConfigError.Unwrap() should return original error")
	}
}
