package export

import (
	"fmt"
	"io"
	"strings"

	"github.com/iksnae/dm-session/internal"
)

// MarkdownExporter exports transcripts in Markdown format
type MarkdownExporter struct{}

// Export writes a header with the thread details followed by one block per message
func (e *MarkdownExporter) Export(transcript *internal.Transcript, w io.Writer) error {
	title := transcript.Title
	if title == "" {
		title = transcript.ID
	}
	_, _ = fmt.Fprintf(w, "# %s\n\n", escapeMarkdown(title))

	_, _ = fmt.Fprintf(w, "**Thread:** %s  \n", transcript.ID)
	if len(transcript.Metadata.Participants) > 0 {
		_, _ = fmt.Fprintf(w, "**Participants:** %s  \n", strings.Join(transcript.Metadata.Participants, ", "))
	}
	if transcript.Metadata.Account != "" {
		_, _ = fmt.Fprintf(w, "**Exported by:** %s  \n", transcript.Metadata.Account)
	}
	_, _ = fmt.Fprintf(w, "**Messages:** %d\n\n", len(transcript.Messages))

	_, _ = fmt.Fprintf(w, "---\n\n")

	if len(transcript.Messages) == 0 {
		_, _ = fmt.Fprintf(w, "_There are no messages yet._\n")
		return nil
	}

	for i, msg := range transcript.Messages {
		timestamp := ""
		if msg.Timestamp != "" {
			timestamp = fmt.Sprintf(" (%s)", msg.Timestamp)
		}

		content := escapeMarkdown(msg.Content)
		if msg.Kind == string(internal.KindMedia) && msg.Content != "" {
			content = fmt.Sprintf("[media](%s)", msg.Content)
		}

		_, _ = fmt.Fprintf(w, "**%s:**%s\n\n%s\n\n", msg.Sender, timestamp, content)

		if i < len(transcript.Messages)-1 {
			_, _ = fmt.Fprintf(w, "---\n\n")
		}
	}

	return nil
}

// escapeMarkdown escapes emphasis markers outside fenced code blocks
func escapeMarkdown(text string) string {
	lines := strings.Split(text, "\n")
	var result []string
	inCodeBlock := false

	for _, line := range lines {
		if strings.HasPrefix(line, "```") {
			inCodeBlock = !inCodeBlock
			result = append(result, line)
		} else if inCodeBlock {
			result = append(result, line)
		} else {
			line = strings.ReplaceAll(line, "**", "\\*\\*")
			line = strings.ReplaceAll(line, "__", "\\_\\_")
			result = append(result, line)
		}
	}

	return strings.Join(result, "\n")
}

func (e *MarkdownExporter) Extension() string {
	return "md"
}
