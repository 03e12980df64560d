// Package tui hosts the interactive screens: the inbox picker and the
// thread session. Both are bubbletea models, so every state change happens
// inside Update on the program goroutine.
package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/iksnae/dm-session/internal"
)

// Outcome is how a thread session ended
type Outcome int

const (
	OutcomeNone Outcome = iota
	// OutcomeEnded returns to the inbox picker
	OutcomeEnded
	// OutcomeReopen reopens the same thread with a fresh scheduler
	OutcomeReopen
	// OutcomeInterrupted exits the program
	OutcomeInterrupted
)

func (o Outcome) String() string {
	switch o {
	case OutcomeEnded:
		return "ended"
	case OutcomeReopen:
		return "reopen"
	case OutcomeInterrupted:
		return "interrupted"
	default:
		return "none"
	}
}

const (
	commandEnd     = "/end"
	commandRefresh = "/refresh"
	commandResend  = "/resend"
)

// Ticker is the polling scheduler as seen by a thread session
type Ticker interface {
	Start(ctx context.Context, interval time.Duration, onTick func()) error
	Stop() bool
}

// ThreadConfig wires a thread session to its collaborators
type ThreadConfig struct {
	Client         internal.Client
	Inbox          *internal.Inbox
	Directory      *internal.Directory
	Renderer       *internal.Renderer
	Scheduler      Ticker
	Interval       time.Duration
	SendAttempts   int
	RequestTimeout time.Duration
	// Now is the render clock; defaults to time.Now
	Now func() time.Time
}

type (
	tickMsg struct{}

	threadFetchedMsg struct {
		thread *internal.ThreadSummary
		err    error
	}

	sendResultMsg struct {
		id  string
		err error
	}

	inboxRefreshedMsg struct {
		err error
	}
)

// ThreadModel is one open thread: history, pending sends and the compose buffer
type ThreadModel struct {
	cfg    ThreadConfig
	ctx    context.Context
	cancel context.CancelFunc

	thread  *internal.ThreadSummary
	pending *internal.PendingQueue
	compose []rune

	fetchStatus string
	sendStatus  string

	ticks    chan struct{}
	fetching bool
	refetch  bool

	// sends go out one at a time in submission order
	sendQueue []internal.PendingMessage
	inFlight  string

	detached   bool
	ending     bool
	refreshing bool
	cleared  bool
	outcome  Outcome
	inboxErr error
}

// NewThreadModel opens a session on thread. The session lives until the
// model detaches or parent is cancelled.
func NewThreadModel(parent context.Context, cfg ThreadConfig, thread *internal.ThreadSummary) *ThreadModel {
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if cfg.SendAttempts < 1 {
		cfg.SendAttempts = 1
	}
	ctx, cancel := context.WithCancel(parent)
	return &ThreadModel{
		cfg:     cfg,
		ctx:     ctx,
		cancel:  cancel,
		thread:  thread,
		pending: internal.NewPendingQueue(),
		ticks:   make(chan struct{}, 1),
	}
}

// Outcome reports how the session ended; OutcomeNone while it is open
func (m *ThreadModel) Outcome() Outcome { return m.outcome }

// InboxErr is the error from the inbox refresh that follows /end, if any
func (m *ThreadModel) InboxErr() error { return m.inboxErr }

// Thread returns the most recently fetched thread
func (m *ThreadModel) Thread() *internal.ThreadSummary { return m.thread }

// Compose returns the compose buffer
func (m *ThreadModel) Compose() string { return string(m.compose) }

// Detached reports whether the scheduler and listener have been released
func (m *ThreadModel) Detached() bool { return m.detached }

// Init starts polling and fetches the thread once right away
func (m *ThreadModel) Init() tea.Cmd {
	if err := m.cfg.Scheduler.Start(m.ctx, m.cfg.Interval, m.onTick); err != nil {
		internal.LogWarn("Polling disabled: %v", err)
		m.fetchStatus = fmt.Sprintf("Live updates are off: %v", err)
	}
	m.fetching = true
	return tea.Batch(m.waitForTick(), m.fetchThread())
}

// onTick runs on the scheduler goroutine. It never blocks: a tick that
// arrives while one is already queued is dropped.
func (m *ThreadModel) onTick() {
	select {
	case m.ticks <- struct{}{}:
	default:
	}
}

func (m *ThreadModel) waitForTick() tea.Cmd {
	ticks, ctx := m.ticks, m.ctx
	return func() tea.Msg {
		select {
		case <-ticks:
			return tickMsg{}
		case <-ctx.Done():
			return nil
		}
	}
}

func (m *ThreadModel) fetchThread() tea.Cmd {
	ctx, client, timeout := m.ctx, m.cfg.Client, m.cfg.RequestTimeout
	threadID := m.threadID()
	return func() tea.Msg {
		opCtx, cancel := withTimeout(ctx, timeout)
		defer cancel()
		thread, err := client.FetchThread(opCtx, threadID)
		if err != nil {
			return threadFetchedMsg{err: &internal.FetchError{Op: "thread", ThreadID: threadID, Err: err}}
		}
		return threadFetchedMsg{thread: thread}
	}
}

func (m *ThreadModel) sendText(p internal.PendingMessage) tea.Cmd {
	ctx, client := m.ctx, m.cfg.Client
	attempts, timeout := m.cfg.SendAttempts, m.cfg.RequestTimeout
	threadID := m.threadID()
	return func() tea.Msg {
		var err error
		for i := 0; i < attempts; i++ {
			opCtx, cancel := withTimeout(ctx, timeout)
			err = client.SendText(opCtx, threadID, p.Text)
			cancel()
			if err == nil {
				return sendResultMsg{id: p.ID}
			}
			if ctx.Err() != nil {
				break
			}
			internal.LogDebug("Send attempt %d/%d failed: %v", i+1, attempts, err)
		}
		return sendResultMsg{id: p.ID, err: &internal.SendError{ThreadID: threadID, Err: err}}
	}
}

// refreshInbox runs after the session context is gone, so it gets its own
func (m *ThreadModel) refreshInbox() tea.Cmd {
	inbox, timeout := m.cfg.Inbox, m.cfg.RequestTimeout
	return func() tea.Msg {
		if inbox == nil {
			return inboxRefreshedMsg{}
		}
		ctx, cancel := withTimeout(context.Background(), timeout)
		defer cancel()
		return inboxRefreshedMsg{err: inbox.Refresh(ctx)}
	}
}

// Update handles keys, ticks and command results
func (m *ThreadModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case inboxRefreshedMsg:
		m.refreshing = false
		m.inboxErr = msg.err
		return m, tea.Quit

	case tea.KeyMsg:
		if m.detached {
			// the inbox refresh after /end can take a while; ctrl+c still exits
			if m.refreshing && key.Matches(msg, threadKeys.Interrupt) {
				m.refreshing = false
				m.cleared = true
				m.outcome = OutcomeInterrupted
				return m, tea.Quit
			}
			return m, nil
		}
		return m.handleKey(msg)

	case tickMsg:
		if m.detached {
			return m, nil
		}
		cmds := []tea.Cmd{m.waitForTick()}
		if m.fetching {
			// coalesce: the fetch in flight will pick up the same state
			return m, tea.Batch(cmds...)
		}
		m.fetching = true
		cmds = append(cmds, m.fetchThread())
		return m, tea.Batch(cmds...)

	case threadFetchedMsg:
		m.fetching = false
		if m.detached {
			return m, nil
		}
		if msg.err != nil {
			internal.LogWarn("%v", msg.err)
			m.fetchStatus = "Couldn't refresh chat, retrying: " + rootCause(msg.err)
		} else {
			m.thread = msg.thread
			m.cfg.Directory.Merge(msg.thread.Participants)
			m.fetchStatus = ""
		}
		if m.refetch {
			m.refetch = false
			m.fetching = true
			return m, m.fetchThread()
		}
		return m, nil

	case sendResultMsg:
		if msg.id == m.inFlight {
			m.inFlight = ""
		}
		if m.detached {
			return m, nil
		}
		next := m.nextSend()
		if msg.err != nil {
			internal.LogWarn("%v", msg.err)
			m.pending.Fail(msg.id, msg.err)
			m.sendStatus = "Couldn't send message: " + rootCause(msg.err)
			return m, next
		}
		m.pending.Resolve(msg.id)
		if m.pending.Failed() == 0 {
			m.sendStatus = ""
		}
		if m.fetching {
			m.refetch = true
			return m, next
		}
		m.fetching = true
		return m, tea.Batch(next, m.fetchThread())
	}

	return m, nil
}

func (m *ThreadModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, threadKeys.Interrupt):
		if len(m.compose) <= 1 {
			m.cleared = true
		}
		m.detach()
		m.outcome = OutcomeInterrupted
		return m, tea.Quit

	case key.Matches(msg, threadKeys.Backspace):
		if n := len(m.compose); n > 0 {
			m.compose = m.compose[:n-1]
		}
		return m, nil

	case key.Matches(msg, threadKeys.Submit):
		return m.submit()

	case msg.Type == tea.KeyRunes || msg.Type == tea.KeySpace:
		for _, r := range msg.Runes {
			if unicode.IsPrint(r) {
				m.compose = append(m.compose, r)
			}
		}
		return m, nil
	}

	return m, nil
}

func (m *ThreadModel) submit() (tea.Model, tea.Cmd) {
	// trimmed only to recognize commands; messages go out as typed
	text := string(m.compose)
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return m, nil
	}

	switch trimmed {
	case commandEnd:
		m.compose = nil
		m.detach()
		m.ending = true
		m.refreshing = true
		m.outcome = OutcomeEnded
		return m, m.refreshInbox()

	case commandRefresh:
		m.detach()
		m.outcome = OutcomeReopen
		return m, tea.Quit

	case commandResend:
		m.compose = nil
		retried := m.pending.Retry()
		if len(retried) == 0 {
			m.sendStatus = "Nothing to resend"
			return m, nil
		}
		m.sendStatus = ""
		m.sendQueue = append(m.sendQueue, retried...)
		return m, m.nextSend()
	}

	p := m.pending.Submit(text)
	m.compose = nil
	m.sendQueue = append(m.sendQueue, p)
	return m, m.nextSend()
}

// nextSend starts the oldest queued send unless one is still in flight
func (m *ThreadModel) nextSend() tea.Cmd {
	if m.inFlight != "" || len(m.sendQueue) == 0 {
		return nil
	}
	p := m.sendQueue[0]
	m.sendQueue = m.sendQueue[1:]
	m.inFlight = p.ID
	return m.sendText(p)
}

// detach stops polling and cancels outstanding work. Only the first call has
// any effect.
func (m *ThreadModel) detach() {
	if m.detached {
		return
	}
	m.detached = true
	m.cfg.Scheduler.Stop()
	m.cancel()
}

// View renders the current frame
func (m *ThreadModel) View() string {
	if m.cleared {
		return ""
	}
	if m.ending {
		return "Ending chat\n"
	}

	status := m.fetchStatus
	if m.sendStatus != "" {
		if status != "" {
			status += "\n"
		}
		status += m.sendStatus
	}

	return m.cfg.Renderer.Render(internal.Frame{
		Thread:  m.thread,
		SelfID:  m.cfg.Client.CurrentAccountID(),
		Pending: m.pending.Entries(),
		Compose: string(m.compose),
		Status:  status,
		Now:     m.cfg.Now(),
	})
}

func (m *ThreadModel) threadID() string {
	if m.thread == nil {
		return ""
	}
	return m.thread.ID
}

func withTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, d)
}

// rootCause drops the wrapping so the status line stays short
func rootCause(err error) string {
	for {
		next := errors.Unwrap(err)
		if next == nil {
			return err.Error()
		}
		err = next
	}
}
