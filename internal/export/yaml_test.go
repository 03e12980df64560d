package export

import (
	"bytes"
	"strings"
	"testing"

	"github.com/iksnae/dm-session/internal"
	"github.com/iksnae/dm-session/testutil"
	"gopkg.in/yaml.v3"
)

func TestYAMLExporter_Export(t *testing.T) {
	tests := []struct {
		name       string
		transcript *internal.Transcript
	}{
		{"thread with messages", testTranscript("t1")},
		{"empty thread", emptyTranscript("t2")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			exporter := &YAMLExporter{}

			if err := exporter.Export(tt.transcript, &buf); err != nil {
				t.Fatalf("YAMLExporter.Export() error = %v", err)
			}

			output := buf.String()
			var got internal.Transcript
			if err := yaml.Unmarshal([]byte(output), &got); err != nil {
				t.Fatalf("Output is not valid YAML: %v\nOutput: %s", err, output)
			}
			if got.ID != tt.transcript.ID {
				t.Errorf("decoded id = %q, want %q", got.ID, tt.transcript.ID)
			}
			if len(got.Messages) != len(tt.transcript.Messages) {
				t.Errorf("decoded %d messages, want %d", len(got.Messages), len(tt.transcript.Messages))
			}
			if strings.Contains(output, "\t") {
				t.Error("YAML output should not contain tabs")
			}
		})
	}
}

func TestYAMLExporter_Metadata(t *testing.T) {
	var buf bytes.Buffer
	want := testTranscript("t1")
	if err := (&YAMLExporter{}).Export(want, &buf); err != nil {
		t.Fatalf("Export() error = %v", err)
	}

	var got internal.Transcript
	testutil.YAMLUnmarshal(t, buf.Bytes(), &got)
	if got.Metadata.MessageCount != want.Metadata.MessageCount || got.Metadata.Account != want.Metadata.Account {
		t.Errorf("metadata = %+v, want %+v", got.Metadata, want.Metadata)
	}
	if !strings.Contains(buf.String(), "message_count:") {
		t.Errorf("YAML keys should be snake_case, got:\n%s", buf.String())
	}
}

func TestYAMLExporter_Extension(t *testing.T) {
	exporter := &YAMLExporter{}
	if got := exporter.Extension(); got != "yaml" {
		t.Errorf("YAMLExporter.Extension() = %v, want yaml", got)
	}
}
