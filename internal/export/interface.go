package export

import (
	"fmt"
	"io"
	"strings"

	"github.com/iksnae/dm-session/internal"
)

// Exporter writes a thread transcript in one output format
type Exporter interface {
	Export(transcript *internal.Transcript, w io.Writer) error
	Extension() string
}

// formats lists the accepted names in help order; aliases follow their canonical name
var formats = []struct {
	names []string
	new   func() Exporter
}{
	{[]string{"jsonl"}, func() Exporter { return &JSONLExporter{} }},
	{[]string{"md", "markdown"}, func() Exporter { return &MarkdownExporter{} }},
	{[]string{"yaml", "yml"}, func() Exporter { return &YAMLExporter{} }},
	{[]string{"json"}, func() Exporter { return &JSONExporter{} }},
}

// Formats returns the canonical format names
func Formats() []string {
	names := make([]string, 0, len(formats))
	for _, f := range formats {
		names = append(names, f.names[0])
	}
	return names
}

// NewExporter returns the exporter for format. Names are case-insensitive.
func NewExporter(format string) (Exporter, error) {
	want := strings.ToLower(strings.TrimSpace(format))
	for _, f := range formats {
		for _, name := range f.names {
			if name == want {
				return f.new(), nil
			}
		}
	}
	return nil, fmt.Errorf("unsupported format: %s (supported: %s)", format, strings.Join(Formats(), ", "))
}
