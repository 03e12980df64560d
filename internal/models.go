package internal

import (
	"time"
)

// MessageKind discriminates the payload carried by a Message
type MessageKind string

const (
	KindText  MessageKind = "text"
	KindMedia MessageKind = "media"
	KindLike  MessageKind = "like"
	KindOther MessageKind = "other"
)

// ParseMessageKind maps a provider item type onto a MessageKind.
// Anything unrecognized becomes KindOther.
func ParseMessageKind(raw string) MessageKind {
	switch MessageKind(raw) {
	case KindText, KindMedia, KindLike:
		return MessageKind(raw)
	default:
		return KindOther
	}
}

// Account represents a participant of a thread
type Account struct {
	ID       string `json:"id" yaml:"id"`
	Username string `json:"username" yaml:"username"`
}

// Media represents a single media attachment
type Media struct {
	URL string `json:"url" yaml:"url"`
}

// Message represents a single item of a thread. Messages are immutable once fetched.
type Message struct {
	ID        string      `json:"id"`
	SenderID  string      `json:"senderId"`
	Kind      MessageKind `json:"kind"`
	RawKind   string      `json:"rawKind,omitempty"` // provider type name, kept for KindOther
	Text      string      `json:"text,omitempty"`
	Media     []Media     `json:"media,omitempty"`
	CreatedAt time.Time   `json:"createdAt"`
}

// KindName returns the provider's name for the message type
func (m Message) KindName() string {
	if m.RawKind != "" {
		return m.RawKind
	}
	return string(m.Kind)
}

// ThreadSummary represents a conversation as returned by the provider
type ThreadSummary struct {
	ID           string    `json:"threadId"`
	Title        string    `json:"title"`
	Participants []Account `json:"participants"`
	Items        []Message `json:"items"`
	HasMore      bool      `json:"hasMore"`
}

// LatestMessage returns the most recent message of the thread, if any
func (t *ThreadSummary) LatestMessage() (Message, bool) {
	if len(t.Items) == 0 {
		return Message{}, false
	}
	latest := t.Items[0]
	for _, item := range t.Items[1:] {
		if item.CreatedAt.After(latest.CreatedAt) {
			latest = item
		}
	}
	return latest, true
}

// PendingStatus is the delivery state of an outgoing message
type PendingStatus string

const (
	PendingSending PendingStatus = "sending"
	PendingFailed  PendingStatus = "failed"
)

// PendingMessage is an outgoing message shown before the provider confirms it
type PendingMessage struct {
	ID       string
	Text     string
	Status   PendingStatus
	Attempts int
	Err      error
}
