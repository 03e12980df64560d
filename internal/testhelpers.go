package internal

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// CreateTestThread creates a test thread with two participants and two messages
func CreateTestThread(id string) *ThreadSummary {
	base := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	return &ThreadSummary{
		ID:    id,
		Title: "Thread " + id,
		Participants: []Account{
			{ID: "u-alice", Username: "alice"},
			{ID: "u-bob", Username: "bob"},
		},
		Items: []Message{
			{ID: id + "-m2", SenderID: "u-self", Kind: KindText, Text: "hi alice", CreatedAt: base.Add(time.Minute)},
			{ID: id + "-m1", SenderID: "u-alice", Kind: KindText, Text: "hello", CreatedAt: base},
		},
	}
}

// CreateTestThreadWithMessages creates a test thread with custom messages
func CreateTestThreadWithMessages(id string, messages []Message) *ThreadSummary {
	thread := CreateTestThread(id)
	thread.Items = messages
	return thread
}

// FakeClient is an in-memory Client for tests
type FakeClient struct {
	mu sync.Mutex

	SelfID   string
	Pages    [][]ThreadSummary
	Threads  map[string]*ThreadSummary
	FetchErr error
	SendErr  error

	Sent        []string
	FetchCalls  int
	SendCalls   int
	InboxOpened int
}

// NewFakeClient creates a FakeClient serving the given inbox pages
func NewFakeClient(selfID string, pages ...[]ThreadSummary) *FakeClient {
	fc := &FakeClient{
		SelfID:  selfID,
		Pages:   pages,
		Threads: make(map[string]*ThreadSummary),
	}
	for _, page := range pages {
		for i := range page {
			thread := page[i]
			fc.Threads[thread.ID] = &thread
		}
	}
	return fc
}

// OpenInbox implements Client
func (fc *FakeClient) OpenInbox() InboxFeed {
	fc.mu.Lock()
	defer fc.mu.Unlock()
	fc.InboxOpened++
	return &fakeFeed{client: fc}
}

// FetchThread implements Client
func (fc *FakeClient) FetchThread(ctx context.Context, threadID string) (*ThreadSummary, error) {
	fc.mu.Lock()
	defer fc.mu.Unlock()
	fc.FetchCalls++
	if fc.FetchErr != nil {
		return nil, fc.FetchErr
	}
	thread, ok := fc.Threads[threadID]
	if !ok {
		return nil, fmt.Errorf("thread %s not found", threadID)
	}
	copied := *thread
	copied.Items = append([]Message(nil), thread.Items...)
	return &copied, nil
}

// SendText implements Client
func (fc *FakeClient) SendText(ctx context.Context, threadID, text string) error {
	fc.mu.Lock()
	defer fc.mu.Unlock()
	fc.SendCalls++
	if fc.SendErr != nil {
		return fc.SendErr
	}
	fc.Sent = append(fc.Sent, text)
	if thread, ok := fc.Threads[threadID]; ok {
		thread.Items = append(thread.Items, Message{
			ID:        fmt.Sprintf("sent-%d", len(fc.Sent)),
			SenderID:  fc.SelfID,
			Kind:      KindText,
			Text:      text,
			CreatedAt: time.Date(2024, 1, 1, 13, 0, len(fc.Sent), 0, time.UTC),
		})
	}
	return nil
}

// CurrentAccountID implements Client
func (fc *FakeClient) CurrentAccountID() string {
	return fc.SelfID
}

// SetFetchErr changes the error returned by FetchThread and inbox pages
func (fc *FakeClient) SetFetchErr(err error) {
	fc.mu.Lock()
	defer fc.mu.Unlock()
	fc.FetchErr = err
}

// SetSendErr changes the error returned by SendText
func (fc *FakeClient) SetSendErr(err error) {
	fc.mu.Lock()
	defer fc.mu.Unlock()
	fc.SendErr = err
}

type fakeFeed struct {
	client *FakeClient
	next   int
}

func (f *fakeFeed) FetchPage(ctx context.Context) ([]ThreadSummary, error) {
	f.client.mu.Lock()
	defer f.client.mu.Unlock()
	if f.client.FetchErr != nil {
		return nil, f.client.FetchErr
	}
	if f.next >= len(f.client.Pages) {
		return nil, nil
	}
	page := f.client.Pages[f.next]
	f.next++
	return append([]ThreadSummary(nil), page...), nil
}

func (f *fakeFeed) HasMore() bool {
	f.client.mu.Lock()
	defer f.client.mu.Unlock()
	return f.next < len(f.client.Pages)
}

func (f *fakeFeed) FetchAll(ctx context.Context) ([]ThreadSummary, error) {
	var all []ThreadSummary
	for f.HasMore() {
		page, err := f.FetchPage(ctx)
		if err != nil {
			return nil, err
		}
		all = append(all, page...)
	}
	return all, nil
}
