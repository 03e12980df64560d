package cmd

import (
	"errors"
	"testing"

	"github.com/iksnae/dm-session/internal/mailbox"
	"github.com/iksnae/dm-session/testutil"
)

func TestPostCommand(t *testing.T) {
	env := seeded(t)
	id := lunchThreadID(t, env)

	tests := []struct {
		name string
		args []string
	}{
		{"text", []string{"post", "--as", "bob", id, "running", "late"}},
		{"like", []string{"post", "--as", "bob", "--kind", "like", id}},
		{"media", []string{"post", "--as", "alice", "--kind", "media", "--media", "https://example.com/a.jpg", id}},
		{"unknown kind", []string{"post", "--as", "bob", "--kind", "story_share", id}},
	}

	for i, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := execute(t, "", env.args(tt.args...)...); err != nil {
				t.Fatalf("Execute() error = %v", err)
			}
			if got := testutil.CountRows(t, env.db, "messages"); got != 3+i {
				t.Errorf("messages = %d, want %d", got, 3+i)
			}
		})
	}
}

func TestPostCommand_Errors(t *testing.T) {
	env := seeded(t)
	id := lunchThreadID(t, env)

	tests := []struct {
		name    string
		args    []string
		wantErr error
	}{
		{"missing --as", []string{"post", id, "hi"}, nil},
		{"text without text", []string{"post", "--as", "bob", id}, nil},
		{"media without url", []string{"post", "--as", "bob", "--kind", "media", id}, nil},
		{"unknown account", []string{"post", "--as", "mallory", id, "hi"}, mailbox.ErrNotFound},
		{"unknown thread", []string{"post", "--as", "bob", "no-such-thread", "hi"}, mailbox.ErrNotParticipant},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := execute(t, "", env.args(tt.args...)...)
			if err == nil {
				t.Fatal("Execute() should fail")
			}
			if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
				t.Errorf("Execute() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
	if got := testutil.CountRows(t, env.db, "messages"); got != 2 {
		t.Errorf("messages = %d, failed posts should not write", got)
	}
}
