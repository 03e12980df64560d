package cmd

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"testing"

	"github.com/iksnae/dm-session/internal"
	"github.com/iksnae/dm-session/internal/mailbox"
	"github.com/iksnae/dm-session/testutil"
)

func TestRootCommand(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		want    string
		wantErr bool
	}{
		{
			name: "version flag",
			args: []string{"--version"},
			want: "dev",
		},
		{
			name: "help flag",
			args: []string{"--help"},
			want: "/resend",
		},
		{
			name:    "unknown command",
			args:    []string{"nonexistent-command"},
			wantErr: true,
		},
		{
			name:    "non-numeric interval",
			args:    []string{"--interval", "soon"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := execute(t, "", tt.args...)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Execute() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.want != "" && !strings.Contains(out, tt.want) {
				t.Errorf("output should contain %q, got:\n%s", tt.want, out)
			}
		})
	}
}

func TestRootCommand_InvalidIntervalFromFlag(t *testing.T) {
	env := newTestEnv(t)
	_, err := execute(t, "", env.args("--interval", "0", "-u", "alice", "-p", "x")...)

	var cfgErr *internal.ConfigError
	if !errors.As(err, &cfgErr) || cfgErr.Key != "interval" {
		t.Errorf("Execute() error = %v, want ConfigError for interval", err)
	}
}

func TestRootCommand_BadCredentials(t *testing.T) {
	env := seeded(t)
	_, err := execute(t, "", env.args("-u", "alice", "-p", "wrong")...)

	var authErr *internal.AuthError
	if !errors.As(err, &authErr) {
		t.Fatalf("Execute() error = %v, want AuthError", err)
	}
	if got := exitCode(err); got != 1 {
		t.Errorf("exitCode() = %d, want 1", got)
	}
}

func TestExitCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"success", nil, 0},
		{"interrupted", fmt.Errorf("chat: %w", internal.ErrInterrupted), exitInterrupted},
		{"auth", &internal.AuthError{Username: "alice", Err: mailbox.ErrBadCredentials}, 1},
		{"other", errors.New("boom"), 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := exitCode(tt.err); got != tt.want {
				t.Errorf("exitCode(%v) = %d, want %d", tt.err, got, tt.want)
			}
		})
	}
}

func TestLoadSettings_FlagsOverrideConfig(t *testing.T) {
	env := newTestEnv(t)
	cfgPath := filepath.Join(env.dir, "config.yaml")
	testutil.CreateFileFixture(t, cfgPath, []byte("username: bob\ninterval: 10s\npage_size: 7\n"))

	resetFlags(rootCmd)
	t.Cleanup(func() { resetFlags(rootCmd) })
	if err := rootCmd.ParseFlags(env.args("--config", cfgPath, "-i", "3")); err != nil {
		t.Fatalf("ParseFlags() error = %v", err)
	}

	cfg, err := loadSettings(rootCmd)
	if err != nil {
		t.Fatalf("loadSettings() error = %v", err)
	}
	if cfg.Username != "bob" {
		t.Errorf("Username = %q, want bob from the config file", cfg.Username)
	}
	if cfg.Interval.Seconds() != 3 {
		t.Errorf("Interval = %s, want 3s from the flag", cfg.Interval)
	}
	if cfg.PageSize != 7 {
		t.Errorf("PageSize = %d, want 7", cfg.PageSize)
	}
	if cfg.DBPath != env.db {
		t.Errorf("DBPath = %q, want %q", cfg.DBPath, env.db)
	}
}

func TestLogin_PersistResumes(t *testing.T) {
	env := seeded(t)
	store, err := mailbox.Open(env.db)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	defer func() { _ = store.Close() }()

	cfg := internal.DefaultConfig(env.dir)
	cfg.DBPath = env.db
	cfg.Persist = true
	ctx := context.Background()

	first, err := login(ctx, store, cfg, newPrompter(strings.NewReader("alice\nalice-pw\n"), &strings.Builder{}))
	if err != nil {
		t.Fatalf("first login error = %v", err)
	}

	// No input left: a second prompt would fail
	second, err := login(ctx, store, cfg, newPrompter(strings.NewReader("alice\n"), &strings.Builder{}))
	if err != nil {
		t.Fatalf("resumed login error = %v", err)
	}
	if second.Token() != first.Token() {
		t.Errorf("resumed token = %q, want %q", second.Token(), first.Token())
	}

	if err := store.Logout(ctx, first.Token()); err != nil {
		t.Fatalf("Logout() error = %v", err)
	}
	third, err := login(ctx, store, cfg, newPrompter(strings.NewReader("alice\nalice-pw\n"), &strings.Builder{}))
	if err != nil {
		t.Fatalf("login after logout error = %v", err)
	}
	if third.Token() == first.Token() {
		t.Error("an expired saved session should be replaced by a fresh login")
	}
}
