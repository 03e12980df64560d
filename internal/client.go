package internal

import "context"

// InboxFeed pages through the inbox of the logged in account.
// A feed keeps its own cursor; open a new one to start from the first page.
type InboxFeed interface {
	// FetchPage returns the next page of threads
	FetchPage(ctx context.Context) ([]ThreadSummary, error)
	// HasMore reports whether another page is available
	HasMore() bool
	// FetchAll returns every remaining page
	FetchAll(ctx context.Context) ([]ThreadSummary, error)
}

// Client is the capability the interaction engine needs from a logged in session
type Client interface {
	OpenInbox() InboxFeed
	FetchThread(ctx context.Context, threadID string) (*ThreadSummary, error)
	SendText(ctx context.Context, threadID, text string) error
	CurrentAccountID() string
}
