package internal

import (
	"testing"
	"time"
)

func TestParseMessageKind(t *testing.T) {
	tests := []struct {
		raw  string
		want MessageKind
	}{
		{raw: "text", want: KindText},
		{raw: "media", want: KindMedia},
		{raw: "like", want: KindLike},
		{raw: "reel_share", want: KindOther},
		{raw: "", want: KindOther},
	}

	for _, tt := range tests {
		if got := ParseMessageKind(tt.raw); got != tt.want {
			t.Errorf("ParseMessageKind(%q) = %v, want %v", tt.raw, got, tt.want)
		}
	}
}

func TestMessage_KindName(t *testing.T) {
	msg := Message{Kind: KindOther, RawKind: "reel_share"}
	if got := msg.KindName(); got != "reel_share" {
		t.Errorf("KindName() = %q, want reel_share", got)
	}

	msg = Message{Kind: KindText}
	if got := msg.KindName(); got != "text" {
		t.Errorf("KindName() = %q, want text", got)
	}
}

func TestThreadSummary_LatestMessage(t *testing.T) {
	base := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	thread := &ThreadSummary{
		Items: []Message{
			{ID: "m1", CreatedAt: base},
			{ID: "m3", CreatedAt: base.Add(2 * time.Minute)},
			{ID: "m2", CreatedAt: base.Add(time.Minute)},
		},
	}

	latest, ok := thread.LatestMessage()
	if !ok {
		t.Fatal("LatestMessage() ok = false, want true")
	}
	if latest.ID != "m3" {
		t.Errorf("LatestMessage() = %s, want m3", latest.ID)
	}

	empty := &ThreadSummary{}
	if _, ok := empty.LatestMessage(); ok {
		t.Error("LatestMessage() on empty thread should return ok = false")
	}
}
