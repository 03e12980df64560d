package mailbox

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/iksnae/dm-session/internal"
)

const (
	DefaultPageSize = 20
	// ThreadItemLimit caps how many recent items a thread fetch returns
	ThreadItemLimit = 50
)

// Session is a logged in account. It implements internal.Client.
type Session struct {
	store    *Store
	account  internal.Account
	token    string
	pageSize int
}

var _ internal.Client = (*Session)(nil)

func newSession(store *Store, account internal.Account, token string) *Session {
	return &Session{store: store, account: account, token: token, pageSize: DefaultPageSize}
}

// Account returns the logged in account
func (s *Session) Account() internal.Account { return s.account }

// Token returns the session token, for persisting the login
func (s *Session) Token() string { return s.token }

// SetPageSize sets the number of threads per inbox page
func (s *Session) SetPageSize(n int) {
	if n > 0 {
		s.pageSize = n
	}
}

// CurrentAccountID implements internal.Client
func (s *Session) CurrentAccountID() string { return s.account.ID }

// OpenInbox implements internal.Client
func (s *Session) OpenInbox() internal.InboxFeed {
	return &inboxFeed{session: s, more: true}
}

// FetchThread implements internal.Client
func (s *Session) FetchThread(ctx context.Context, threadID string) (*internal.ThreadSummary, error) {
	var title string
	err := s.store.db.QueryRowContext(ctx, "SELECT title FROM threads WHERE id = ?", threadID).Scan(&title)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("thread %s: %w", threadID, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("query failed: %w", err)
	}

	ok, err := s.store.isParticipant(ctx, threadID, s.account.ID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("thread %s: %w", threadID, ErrNotParticipant)
	}

	return s.loadThread(ctx, threadID, title, ThreadItemLimit)
}

// SendText implements internal.Client
func (s *Session) SendText(ctx context.Context, threadID, text string) error {
	_, err := s.store.PostMessage(ctx, threadID, s.account.ID, internal.KindText, text, "", time.Time{})
	return err
}

// loadThread reads participants (without the current account) and the most
// recent items, newest first
func (s *Session) loadThread(ctx context.Context, threadID, title string, limit int) (*internal.ThreadSummary, error) {
	thread := &internal.ThreadSummary{ID: threadID, Title: title}

	rows, err := s.store.db.QueryContext(ctx, `
		SELECT a.id, a.username FROM thread_participants p
		JOIN accounts a ON a.id = p.account_id
		WHERE p.thread_id = ? AND p.account_id != ?
		ORDER BY a.username`, threadID, s.account.ID)
	if err != nil {
		return nil, fmt.Errorf("query failed: %w", err)
	}
	for rows.Next() {
		var acct internal.Account
		if err := rows.Scan(&acct.ID, &acct.Username); err != nil {
			rows.Close()
			return nil, fmt.Errorf("scan failed: %w", err)
		}
		thread.Participants = append(thread.Participants, acct)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}

	rows, err = s.store.db.QueryContext(ctx, `
		SELECT id, sender_id, kind, text, media_url, created_at FROM messages
		WHERE thread_id = ?
		ORDER BY created_at DESC, id DESC
		LIMIT ?`, threadID, limit+1)
	if err != nil {
		return nil, fmt.Errorf("query failed: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			msg       internal.Message
			kind      string
			text      sql.NullString
			mediaURL  sql.NullString
			createdAt int64
		)
		if err := rows.Scan(&msg.ID, &msg.SenderID, &kind, &text, &mediaURL, &createdAt); err != nil {
			return nil, fmt.Errorf("scan failed: %w", err)
		}
		msg.Kind = internal.ParseMessageKind(kind)
		if msg.Kind == internal.KindOther {
			msg.RawKind = kind
		}
		msg.Text = text.String
		if mediaURL.Valid {
			msg.Media = []internal.Media{{URL: mediaURL.String}}
		}
		msg.CreatedAt = time.UnixMilli(createdAt).UTC()
		thread.Items = append(thread.Items, msg)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}

	if len(thread.Items) > limit {
		thread.Items = thread.Items[:limit]
		thread.HasMore = true
	}
	return thread, nil
}

// inboxFeed pages through threads ordered by latest activity using a keyset
// cursor, so new messages arriving between pages do not shift later pages
type inboxFeed struct {
	session *Session

	started  bool
	activity int64
	lastID   string
	more     bool
}

type inboxRow struct {
	id       string
	title    string
	activity int64
}

func (f *inboxFeed) HasMore() bool { return f.more }

func (f *inboxFeed) FetchPage(ctx context.Context) ([]internal.ThreadSummary, error) {
	if !f.more {
		return nil, nil
	}

	s := f.session
	rows, err := s.store.db.QueryContext(ctx, `
		WITH inbox AS (
			SELECT t.id, t.title,
				COALESCE((SELECT MAX(m.created_at) FROM messages m WHERE m.thread_id = t.id), t.created_at) AS activity
			FROM threads t
			JOIN thread_participants p ON p.thread_id = t.id
			WHERE p.account_id = ?
		)
		SELECT id, title, activity FROM inbox
		WHERE ? = 0 OR activity < ? OR (activity = ? AND id < ?)
		ORDER BY activity DESC, id DESC
		LIMIT ?`,
		s.account.ID, boolInt(f.started), f.activity, f.activity, f.lastID, s.pageSize+1)
	if err != nil {
		return nil, fmt.Errorf("inbox query failed: %w", err)
	}

	// drain before loading threads; the store runs on a single connection
	var page []inboxRow
	for rows.Next() {
		var r inboxRow
		if err := rows.Scan(&r.id, &r.title, &r.activity); err != nil {
			rows.Close()
			return nil, fmt.Errorf("scan failed: %w", err)
		}
		page = append(page, r)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}

	f.more = len(page) > s.pageSize
	if f.more {
		page = page[:s.pageSize]
	}

	threads := make([]internal.ThreadSummary, 0, len(page))
	for _, r := range page {
		thread, err := s.loadThread(ctx, r.id, r.title, ThreadItemLimit)
		if err != nil {
			return nil, err
		}
		threads = append(threads, *thread)
	}

	if len(page) > 0 {
		last := page[len(page)-1]
		f.started = true
		f.activity = last.activity
		f.lastID = last.id
	}

	internal.LogDebug("Fetched inbox page of %d threads (more: %v)", len(threads), f.more)
	return threads, nil
}

func (f *inboxFeed) FetchAll(ctx context.Context) ([]internal.ThreadSummary, error) {
	var all []internal.ThreadSummary
	for f.more {
		page, err := f.FetchPage(ctx)
		if err != nil {
			return all, err
		}
		all = append(all, page...)
	}
	return all, nil
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
