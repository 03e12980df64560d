package internal

import (
	"context"
	"fmt"
)

// ThreadChoice is one selectable thread in the inbox
type ThreadChoice struct {
	ThreadID string
	Title    string
	Label    string
}

// Inbox accumulates thread summaries across inbox pages
type Inbox struct {
	client  Client
	feed    InboxFeed
	threads []ThreadSummary
}

// NewInbox creates an Inbox backed by client. Call Refresh to load the first page.
func NewInbox(client Client) *Inbox {
	return &Inbox{client: client}
}

// Refresh discards the buffer and loads the first page of a fresh feed
func (in *Inbox) Refresh(ctx context.Context) error {
	feed := in.client.OpenInbox()
	page, err := feed.FetchPage(ctx)
	if err != nil {
		return &FetchError{Op: "inbox", Err: err}
	}

	in.feed = feed
	in.threads = page
	LogDebug("Inbox refreshed: %d thread(s), more=%v", len(page), feed.HasMore())
	return nil
}

// FetchOlder appends the next page to the buffer
func (in *Inbox) FetchOlder(ctx context.Context) error {
	if in.feed == nil {
		return in.Refresh(ctx)
	}

	page, err := in.feed.FetchPage(ctx)
	if err != nil {
		return &FetchError{Op: "older", Err: err}
	}

	in.threads = append(in.threads, page...)
	LogDebug("Fetched %d older thread(s)", len(page))
	return nil
}

// FetchAll appends every remaining page to the buffer
func (in *Inbox) FetchAll(ctx context.Context) error {
	if in.feed == nil {
		if err := in.Refresh(ctx); err != nil {
			return err
		}
	}

	rest, err := in.feed.FetchAll(ctx)
	if err != nil {
		return &FetchError{Op: "all", Err: err}
	}

	in.threads = append(in.threads, rest...)
	LogDebug("Fetched %d remaining thread(s)", len(rest))
	return nil
}

// HasMore reports whether older pages are available
func (in *Inbox) HasMore() bool {
	return in.feed != nil && in.feed.HasMore()
}

// Threads returns the buffered threads
func (in *Inbox) Threads() []ThreadSummary {
	return in.threads
}

// Accounts returns every participant of every buffered thread
func (in *Inbox) Accounts() []Account {
	var accounts []Account
	for _, thread := range in.threads {
		accounts = append(accounts, thread.Participants...)
	}
	return accounts
}

// Choices lists the threads that can be opened. Threads without participants are skipped.
// describe formats the most recent message of a thread.
func (in *Inbox) Choices(describe func(Message) string) []ThreadChoice {
	choices := make([]ThreadChoice, 0, len(in.threads))
	for _, thread := range in.threads {
		if len(thread.Participants) == 0 {
			continue
		}

		summary := "There are no messages yet."
		if latest, ok := thread.LatestMessage(); ok {
			summary = describe(latest)
		}

		choices = append(choices, ThreadChoice{
			ThreadID: thread.ID,
			Title:    thread.Title,
			Label:    fmt.Sprintf("[%s] - %s", thread.Title, summary),
		})
	}
	return choices
}
