// Package mailbox is a local, SQLite-backed direct message provider.
// A Store owns the database; a Session is one logged in account and
// implements internal.Client.
package mailbox

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/iksnae/dm-session/internal"
	_ "modernc.org/sqlite"
)

var (
	ErrNotFound       = errors.New("not found")
	ErrNotParticipant = errors.New("account is not a participant of this thread")
	ErrBadCredentials = errors.New("invalid username or password")
	ErrSessionExpired = errors.New("saved session is no longer valid")
	ErrAccountExists  = errors.New("account already exists")
)

// Store is an open mailbox database
type Store struct {
	db     *sql.DB
	path   string
	params KDFParams
}

// Stats summarizes the contents of a mailbox
type Stats struct {
	Accounts int
	Threads  int
	Messages int
	Sessions int
}

// Open opens (creating if needed) the mailbox at path and applies the schema
func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0700); err != nil {
			return nil, fmt.Errorf("failed to create mailbox directory: %w", err)
		}
	}

	dsn := "file:" + path + "?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open mailbox: %w", err)
	}
	// sqlite serializes writers anyway; one connection avoids SQLITE_BUSY between
	// the poller and the sender
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("mailbox ping failed: %w", err)
	}

	s := &Store{db: db, path: path, params: DefaultKDFParams()}
	if err := s.Migrate(context.Background()); err != nil {
		db.Close()
		return nil, err
	}

	internal.LogDebug("Opened mailbox %s", path)
	return s, nil
}

// Close closes the database
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database file path
func (s *Store) Path() string {
	return s.path
}

// SetKDFParams overrides the password hashing cost, used by tests
func (s *Store) SetKDFParams(p KDFParams) {
	s.params = p
}

// Migrate creates missing tables and indexes
func (s *Store) Migrate(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, schemaSQL); err != nil {
		return fmt.Errorf("failed to apply mailbox schema: %w", err)
	}
	return nil
}

// CreateAccount registers a new account
func (s *Store) CreateAccount(ctx context.Context, username, password string) (internal.Account, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return internal.Account{}, fmt.Errorf("username is required")
	}

	if _, err := s.AccountByUsername(ctx, username); err == nil {
		return internal.Account{}, fmt.Errorf("%s: %w", username, ErrAccountExists)
	} else if !errors.Is(err, ErrNotFound) {
		return internal.Account{}, err
	}

	hash, err := hashPassword(password, s.params)
	if err != nil {
		return internal.Account{}, err
	}

	acct := internal.Account{ID: uuid.NewString(), Username: username}
	_, err = s.db.ExecContext(ctx,
		"INSERT INTO accounts (id, username, password_hash, created_at) VALUES (?, ?, ?, ?)",
		acct.ID, acct.Username, hash, time.Now().UnixMilli())
	if err != nil {
		return internal.Account{}, fmt.Errorf("failed to create account: %w", err)
	}
	return acct, nil
}

// AccountByUsername looks up an account; ErrNotFound if absent
func (s *Store) AccountByUsername(ctx context.Context, username string) (internal.Account, error) {
	var acct internal.Account
	err := s.db.QueryRowContext(ctx,
		"SELECT id, username FROM accounts WHERE username = ?", username).
		Scan(&acct.ID, &acct.Username)
	if errors.Is(err, sql.ErrNoRows) {
		return acct, fmt.Errorf("account %q: %w", username, ErrNotFound)
	}
	if err != nil {
		return acct, fmt.Errorf("query failed: %w", err)
	}
	return acct, nil
}

// CreateThread creates a thread between the given account ids
func (s *Store) CreateThread(ctx context.Context, title string, participantIDs []string) (string, error) {
	if len(participantIDs) == 0 {
		return "", fmt.Errorf("a thread needs at least one participant")
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("begin failed: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	id := uuid.NewString()
	if _, err := tx.ExecContext(ctx,
		"INSERT INTO threads (id, title, created_at) VALUES (?, ?, ?)",
		id, title, time.Now().UnixMilli()); err != nil {
		return "", fmt.Errorf("failed to create thread: %w", err)
	}
	for _, pid := range participantIDs {
		if _, err := tx.ExecContext(ctx,
			"INSERT OR IGNORE INTO thread_participants (thread_id, account_id) VALUES (?, ?)",
			id, pid); err != nil {
			return "", fmt.Errorf("failed to add participant %s: %w", pid, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("commit failed: %w", err)
	}
	return id, nil
}

// PostMessage appends a message to a thread on behalf of senderID.
// A zero at means now.
func (s *Store) PostMessage(ctx context.Context, threadID, senderID string, kind internal.MessageKind, text, mediaURL string, at time.Time) (internal.Message, error) {
	ok, err := s.isParticipant(ctx, threadID, senderID)
	if err != nil {
		return internal.Message{}, err
	}
	if !ok {
		return internal.Message{}, fmt.Errorf("thread %s: %w", threadID, ErrNotParticipant)
	}

	if at.IsZero() {
		at = time.Now()
	}
	msg := internal.Message{
		ID:        uuid.NewString(),
		SenderID:  senderID,
		Kind:      kind,
		Text:      text,
		CreatedAt: time.UnixMilli(at.UnixMilli()).UTC(),
	}
	if mediaURL != "" {
		msg.Media = []internal.Media{{URL: mediaURL}}
	}

	_, err = s.db.ExecContext(ctx,
		"INSERT INTO messages (id, thread_id, sender_id, kind, text, media_url, created_at) VALUES (?, ?, ?, ?, ?, ?, ?)",
		msg.ID, threadID, senderID, string(kind), nullable(text), nullable(mediaURL), at.UnixMilli())
	if err != nil {
		return internal.Message{}, fmt.Errorf("failed to post message: %w", err)
	}
	return msg, nil
}

// Stats counts rows in the main tables
func (s *Store) Stats(ctx context.Context) (Stats, error) {
	var st Stats
	counts := []struct {
		table string
		dst   *int
	}{
		{"accounts", &st.Accounts},
		{"threads", &st.Threads},
		{"messages", &st.Messages},
		{"session_tokens", &st.Sessions},
	}
	for _, c := range counts {
		if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM "+c.table).Scan(c.dst); err != nil {
			return st, fmt.Errorf("count %s: %w", c.table, err)
		}
	}
	return st, nil
}

// Login verifies credentials and issues a session token
func (s *Store) Login(ctx context.Context, username, password string) (*Session, error) {
	var acct internal.Account
	var hash string
	err := s.db.QueryRowContext(ctx,
		"SELECT id, username, password_hash FROM accounts WHERE username = ?", username).
		Scan(&acct.ID, &acct.Username, &hash)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, &internal.AuthError{Username: username, Err: ErrBadCredentials}
	}
	if err != nil {
		return nil, &internal.AuthError{Username: username, Err: err}
	}

	ok, err := verifyPassword(password, hash)
	if err != nil {
		return nil, &internal.AuthError{Username: username, Err: err}
	}
	if !ok {
		return nil, &internal.AuthError{Username: username, Err: ErrBadCredentials}
	}

	token := uuid.NewString()
	if _, err := s.db.ExecContext(ctx,
		"INSERT INTO session_tokens (token, account_id, created_at) VALUES (?, ?, ?)",
		token, acct.ID, time.Now().UnixMilli()); err != nil {
		return nil, fmt.Errorf("failed to store session: %w", err)
	}

	internal.LogDebug("Logged in %s (%s)", acct.Username, acct.ID)
	return newSession(s, acct, token), nil
}

// Resume reopens a session from a previously issued token
func (s *Store) Resume(ctx context.Context, accountID, token string) (*Session, error) {
	var acct internal.Account
	err := s.db.QueryRowContext(ctx, `
		SELECT a.id, a.username FROM session_tokens t
		JOIN accounts a ON a.id = t.account_id
		WHERE t.token = ? AND t.account_id = ?`, token, accountID).
		Scan(&acct.ID, &acct.Username)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, &internal.AuthError{Err: ErrSessionExpired}
	}
	if err != nil {
		return nil, &internal.AuthError{Err: err}
	}
	return newSession(s, acct, token), nil
}

// Logout revokes a session token
func (s *Store) Logout(ctx context.Context, token string) error {
	if _, err := s.db.ExecContext(ctx, "DELETE FROM session_tokens WHERE token = ?", token); err != nil {
		return fmt.Errorf("failed to revoke session: %w", err)
	}
	return nil
}

func (s *Store) isParticipant(ctx context.Context, threadID, accountID string) (bool, error) {
	var n int
	err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM thread_participants WHERE thread_id = ? AND account_id = ?",
		threadID, accountID).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("query failed: %w", err)
	}
	return n > 0, nil
}

func nullable(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
