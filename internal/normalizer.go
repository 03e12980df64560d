package internal

import (
	"fmt"
	"time"
)

// Normalizer converts fetched threads to Transcript format
type Normalizer struct {
	directory *Directory
	selfID    string
	selfName  string
}

// NewNormalizer creates a Normalizer resolving senders through directory.
// Messages from selfID are attributed to selfName.
func NewNormalizer(directory *Directory, selfID, selfName string) *Normalizer {
	return &Normalizer{
		directory: directory,
		selfID:    selfID,
		selfName:  selfName,
	}
}

// NormalizeThread converts a ThreadSummary to a Transcript ordered oldest first
func (n *Normalizer) NormalizeThread(thread *ThreadSummary) (*Transcript, error) {
	if thread == nil {
		return nil, fmt.Errorf("thread is nil")
	}

	items := SortedMessages(thread.Items)
	messages := make([]TranscriptMessage, 0, len(items))
	for _, msg := range items {
		messages = append(messages, n.normalizeMessage(msg))
	}

	participants := make([]string, 0, len(thread.Participants))
	for _, account := range thread.Participants {
		participants = append(participants, account.Username)
	}

	metadata := TranscriptMetadata{
		Participants: participants,
		Account:      n.selfName,
		MessageCount: len(messages),
	}
	if len(items) > 0 {
		metadata.FirstAt = formatTimestamp(items[0].CreatedAt)
		metadata.LastAt = formatTimestamp(items[len(items)-1].CreatedAt)
	}

	return &Transcript{
		ID:       thread.ID,
		Title:    thread.Title,
		Source:   "mailbox",
		Messages: messages,
		Metadata: metadata,
	}, nil
}

// normalizeMessage converts a Message to a TranscriptMessage
func (n *Normalizer) normalizeMessage(msg Message) TranscriptMessage {
	sender := n.directory.Resolve(msg.SenderID)
	if msg.SenderID != "" && msg.SenderID == n.selfID {
		sender = n.selfName
	}

	return TranscriptMessage{
		Timestamp: formatTimestamp(msg.CreatedAt),
		Sender:    sender,
		Kind:      msg.KindName(),
		Content:   n.normalizeContent(msg),
	}
}

func (n *Normalizer) normalizeContent(msg Message) string {
	switch msg.Kind {
	case KindText:
		return msg.Text
	case KindMedia:
		if len(msg.Media) == 0 {
			return ""
		}
		return msg.Media[0].URL
	case KindLike:
		return likeGlyph
	default:
		return fmt.Sprintf("[%s]", msg.KindName())
	}
}

// formatTimestamp formats a time to ISO8601, or "" for the zero time
func formatTimestamp(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}
