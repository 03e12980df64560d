package cmd

import (
	"strings"
	"testing"
)

func TestPrompter_Username(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    string
		wantErr bool
	}{
		{"plain", "alice\n", "alice", false},
		{"no trailing newline", "alice", "alice", false},
		{"crlf and spaces", "  bob \r\n", "bob", false},
		{"empty line", "\n", "", true},
		{"no input", "", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out strings.Builder
			p := newPrompter(strings.NewReader(tt.input), &out)
			got, err := p.Username()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Username() error = %v, wantErr %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("Username() = %q, want %q", got, tt.want)
			}
			if out.String() != "Username: " {
				t.Errorf("prompt = %q", out.String())
			}
		})
	}
}

func TestPrompter_PasswordFromPipe(t *testing.T) {
	var out strings.Builder
	p := newPrompter(strings.NewReader("alice\n s3cret \n"), &out)

	if _, err := p.Username(); err != nil {
		t.Fatalf("Username() error = %v", err)
	}
	got, err := p.Password("Password for alice: ")
	if err != nil {
		t.Fatalf("Password() error = %v", err)
	}
	// passwords keep surrounding spaces
	if got != " s3cret " {
		t.Errorf("Password() = %q, want %q", got, " s3cret ")
	}
	if !strings.HasSuffix(out.String(), "Password for alice: ") {
		t.Errorf("prompt output = %q", out.String())
	}
}
