package export

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/iksnae/dm-session/internal"
)

// JSONLExporter writes one JSON object per message
type JSONLExporter struct{}

type jsonlLine struct {
	Thread    string `json:"thread"`
	Timestamp string `json:"timestamp,omitempty"`
	Sender    string `json:"sender"`
	Kind      string `json:"kind"`
	Content   string `json:"content"`
}

// Export writes each message on its own line, tagged with the thread id
func (e *JSONLExporter) Export(transcript *internal.Transcript, w io.Writer) error {
	enc := json.NewEncoder(w)

	for _, msg := range transcript.Messages {
		line := jsonlLine{
			Thread:    transcript.ID,
			Timestamp: msg.Timestamp,
			Sender:    msg.Sender,
			Kind:      msg.Kind,
			Content:   msg.Content,
		}
		if err := enc.Encode(line); err != nil {
			return fmt.Errorf("failed to encode message: %w", err)
		}
	}

	return nil
}

func (e *JSONLExporter) Extension() string {
	return "jsonl"
}
