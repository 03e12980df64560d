package export

import (
	"fmt"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestNewExporter(t *testing.T) {
	tests := []struct {
		format   string
		wantType string
		wantExt  string
	}{
		{"jsonl", "*export.JSONLExporter", "jsonl"},
		{"md", "*export.MarkdownExporter", "md"},
		{"markdown", "*export.MarkdownExporter", "md"},
		{"yaml", "*export.YAMLExporter", "yaml"},
		{"yml", "*export.YAMLExporter", "yaml"},
		{"json", "*export.JSONExporter", "json"},
		{" JSON ", "*export.JSONExporter", "json"},
	}

	for _, tt := range tests {
		t.Run(tt.format, func(t *testing.T) {
			exporter, err := NewExporter(tt.format)
			if err != nil {
				t.Fatalf("NewExporter(%q) error = %v", tt.format, err)
			}
			if got := fmt.Sprintf("%T", exporter); got != tt.wantType {
				t.Errorf("NewExporter(%q) type = %s, want %s", tt.format, got, tt.wantType)
			}
			if got := exporter.Extension(); got != tt.wantExt {
				t.Errorf("Extension() = %q, want %q", got, tt.wantExt)
			}
		})
	}
}

func TestNewExporter_Unsupported(t *testing.T) {
	for _, format := range []string{"xml", "", "csv"} {
		exporter, err := NewExporter(format)
		if err == nil || exporter != nil {
			t.Errorf("NewExporter(%q) = %v, %v; want error", format, exporter, err)
			continue
		}
		if !strings.Contains(err.Error(), "supported: jsonl, md, yaml, json") {
			t.Errorf("error should list the formats, got %q", err)
		}
	}
}

func TestFormats(t *testing.T) {
	if diff := cmp.Diff([]string{"jsonl", "md", "yaml", "json"}, Formats()); diff != "" {
		t.Errorf("Formats() mismatch (-want +got):\n%s", diff)
	}
}
