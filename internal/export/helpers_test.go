package export

import "github.com/iksnae/dm-session/internal"

func testTranscript(id string) *internal.Transcript {
	return &internal.Transcript{
		ID:     id,
		Title:  "Lunch",
		Source: "mailbox",
		Messages: []internal.TranscriptMessage{
			{Timestamp: "2024-01-01T12:00:00Z", Sender: "bob", Kind: "text", Content: "are we still on for noon?"},
			{Timestamp: "2024-01-01T12:01:00Z", Sender: "alice", Kind: "text", Content: "yes, see you there"},
			{Timestamp: "2024-01-01T12:02:00Z", Sender: "bob", Kind: "media", Content: "https://example.com/menu.png"},
		},
		Metadata: internal.TranscriptMetadata{
			Participants: []string{"bob"},
			Account:      "alice",
			MessageCount: 3,
			FirstAt:      "2024-01-01T12:00:00Z",
			LastAt:       "2024-01-01T12:02:00Z",
		},
	}
}

func emptyTranscript(id string) *internal.Transcript {
	return &internal.Transcript{ID: id, Source: "mailbox"}
}
