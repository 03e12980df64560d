package internal

// Transcript represents a thread normalized for export
type Transcript struct {
	ID       string              `json:"id" yaml:"id"`
	Title    string              `json:"title" yaml:"title"`
	Source   string              `json:"source" yaml:"source"`
	Messages []TranscriptMessage `json:"messages" yaml:"messages"`
	Metadata TranscriptMetadata  `json:"metadata,omitempty" yaml:"metadata,omitempty"`
}

// TranscriptMessage represents a normalized message
type TranscriptMessage struct {
	Timestamp string `json:"timestamp,omitempty" yaml:"timestamp,omitempty"`
	Sender    string `json:"sender" yaml:"sender"`
	Kind      string `json:"kind" yaml:"kind"`
	Content   string `json:"content" yaml:"content"`
}

// TranscriptMetadata contains additional thread information
type TranscriptMetadata struct {
	Participants []string `json:"participants,omitempty" yaml:"participants,omitempty"`
	Account      string   `json:"account,omitempty" yaml:"account,omitempty"`
	MessageCount int      `json:"message_count" yaml:"message_count"`
	FirstAt      string   `json:"first_at,omitempty" yaml:"first_at,omitempty"`
	LastAt       string   `json:"last_at,omitempty" yaml:"last_at,omitempty"`
}
