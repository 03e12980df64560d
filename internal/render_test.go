package internal

import (
	"io"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

var renderNow = time.Date(2024, 1, 1, 12, 10, 0, 0, time.UTC)

// newPlainRenderer returns a Renderer that never emits color codes
func newPlainRenderer(dir *Directory) *Renderer {
	lr := lipgloss.NewRenderer(io.Discard)
	lr.SetColorProfile(termenv.Ascii)
	return NewRenderer(dir, lr)
}

func testDirectory() *Directory {
	dir := NewDirectory()
	dir.Merge([]Account{{ID: "u-alice", Username: "alice"}, {ID: "u-bob", Username: "bob"}})
	return dir
}

func TestRenderer_MessageLine(t *testing.T) {
	r := newPlainRenderer(testDirectory())
	created := renderNow.Add(-5 * time.Minute)

	tests := []struct {
		name string
		msg  Message
		want string
	}{
		{
			name: "text from other",
			msg:  Message{SenderID: "u-alice", Kind: KindText, Text: "hello", CreatedAt: created},
			want: `alice: "hello" [5 minutes ago]`,
		},
		{
			name: "text from self",
			msg:  Message{SenderID: "u-self", Kind: KindText, Text: "hey", CreatedAt: created},
			want: `You: "hey" [5 minutes ago]`,
		},
		{
			name: "unknown sender",
			msg:  Message{SenderID: "u-ghost", Kind: KindText, Text: "boo", CreatedAt: created},
			want: `A User: "boo" [5 minutes ago]`,
		},
		{
			name: "media",
			msg:  Message{SenderID: "u-bob", Kind: KindMedia, Media: []Media{{URL: "https://cdn.example/a.jpg"}, {URL: "https://cdn.example/b.jpg"}}, CreatedAt: created},
			want: `bob: [media] › https://cdn.example/a.jpg [5 minutes ago]`,
		},
		{
			name: "like",
			msg:  Message{SenderID: "u-bob", Kind: KindLike, CreatedAt: created},
			want: `bob: ♥ [5 minutes ago]`,
		},
		{
			name: "other kind",
			msg:  Message{SenderID: "u-bob", Kind: KindOther, RawKind: "reel_share", CreatedAt: created},
			want: `bob: [a non-text message of type reel_share] [5 minutes ago]`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := r.MessageLine(tt.msg, "u-self", renderNow); got != tt.want {
				t.Errorf("MessageLine() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestRenderer_OrdersByCreatedAt(t *testing.T) {
	r := newPlainRenderer(testDirectory())
	base := renderNow.Add(-time.Hour)

	orders := [][]int{{0, 1, 2}, {2, 1, 0}, {1, 2, 0}, {2, 0, 1}}
	for _, order := range orders {
		msgs := make([]Message, 0, len(order))
		for _, i := range order {
			msgs = append(msgs, Message{
				SenderID:  "u-alice",
				Kind:      KindText,
				Text:      string(rune('a' + i)),
				CreatedAt: base.Add(time.Duration(i) * time.Minute),
			})
		}

		frame := r.Render(Frame{Thread: CreateTestThreadWithMessages("t", msgs), SelfID: "u-self", Now: renderNow})
		ia := strings.Index(frame, `"a"`)
		ib := strings.Index(frame, `"b"`)
		ic := strings.Index(frame, `"c"`)
		if ia < 0 || ib < 0 || ic < 0 || !(ia < ib && ib < ic) {
			t.Errorf("Render() with input order %v is not sorted ascending:\n%s", order, frame)
		}
	}
}

func TestRenderer_DoesNotMutateInput(t *testing.T) {
	r := newPlainRenderer(testDirectory())
	thread := CreateTestThread("t")
	firstID := thread.Items[0].ID

	r.Render(Frame{Thread: thread, Now: renderNow})

	if thread.Items[0].ID != firstID {
		t.Error("Render() reordered the caller's messages")
	}
}

func TestRenderer_PendingAfterHistoryBeforeComposer(t *testing.T) {
	r := newPlainRenderer(testDirectory())
	q := NewPendingQueue()
	q.Submit("first pending")
	failed := q.Submit("second pending")
	q.Fail(failed.ID, io.ErrUnexpectedEOF)

	frame := r.Render(Frame{
		Thread:  CreateTestThread("t"),
		SelfID:  "u-self",
		Pending: q.Entries(),
		Compose: "draft",
		Now:     renderNow,
	})

	lines := strings.Split(frame, "\n")
	want := []string{
		`alice: "hello" [10 minutes ago]`,
		`You: "hi alice" [9 minutes ago]`,
		`You: first pending [sending...]`,
		`You: second pending [failed: /resend to retry]`,
		``,
		"`/refresh` to refresh chat",
		"`/end` to end chat",
		`Reply to [Thread t] › draft`,
	}
	if len(lines) != len(want) {
		t.Fatalf("Render() produced %d lines, want %d:\n%s", len(lines), len(want), frame)
	}
	for i := range want {
		if lines[i] != want[i] {
			t.Errorf("line %d = %q, want %q", i, lines[i], want[i])
		}
	}
}

func TestRenderer_EmptyThreadAndStatus(t *testing.T) {
	r := newPlainRenderer(testDirectory())

	frame := r.Render(Frame{
		Thread: CreateTestThreadWithMessages("t", nil),
		Status: "! refresh failed",
		Now:    renderNow,
	})

	if !strings.HasPrefix(frame, "There are no messages yet.") {
		t.Errorf("Render() should start with the empty placeholder, got:\n%s", frame)
	}
	if !strings.Contains(frame, "! refresh failed\n`/refresh` to refresh chat") {
		t.Errorf("Render() should show the status line above the hints, got:\n%s", frame)
	}
}

func TestRenderer_Deterministic(t *testing.T) {
	r := newPlainRenderer(testDirectory())
	thread := CreateTestThread("t")
	frame := Frame{Thread: thread, SelfID: "u-self", Compose: "abc", Now: renderNow}

	first := r.Render(frame)
	second := r.Render(frame)
	if first != second {
		t.Errorf("Render() is not deterministic:\n%q\n%q", first, second)
	}
}

func TestSortedMessages_StableForEqualTimes(t *testing.T) {
	msgs := []Message{
		{ID: "x", CreatedAt: renderNow},
		{ID: "y", CreatedAt: renderNow},
		{ID: "w", CreatedAt: renderNow.Add(-time.Second)},
	}

	sorted := SortedMessages(msgs)
	got := []string{sorted[0].ID, sorted[1].ID, sorted[2].ID}
	want := []string{"w", "x", "y"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("SortedMessages() = %v, want %v", got, want)
		}
	}
}
