package tui

import (
	"context"
	"fmt"
	"io"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/iksnae/dm-session/internal"
	"github.com/muesli/termenv"
)

// App is the outer loop: pick a thread, chat, return to the picker
type App struct {
	Client         internal.Client
	Inbox          *internal.Inbox
	Directory      *internal.Directory
	Renderer       *internal.Renderer
	Interval       time.Duration
	SendAttempts   int
	RequestTimeout time.Duration

	// NewScheduler makes the poller for each thread session
	NewScheduler func() Ticker
	// Progress wraps slow inbox operations; defaults to running fn directly
	Progress func(ctx context.Context, message string, fn func() error) error
	// ProgramOptions are passed to every bubbletea program
	ProgramOptions []tea.ProgramOption

	run    func(tea.Model, ...tea.ProgramOption) error
	labels *internal.Renderer
}

// Run drives the picker and thread sessions until the user quits.
// It returns internal.ErrInterrupted on ctrl+c.
func (a *App) Run(ctx context.Context) error {
	a.setDefaults()

	status := ""
	for {
		a.Directory.Merge(a.Inbox.Accounts())

		picker := NewPicker(a.Inbox.Choices(a.describe), a.Inbox.HasMore(), status)
		if err := a.run(picker, a.ProgramOptions...); err != nil {
			return fmt.Errorf("inbox picker failed: %w", err)
		}
		status = ""

		sel := picker.Selection()
		switch sel.Action {
		case PickQuit, PickNone:
			return nil

		case PickInterrupt:
			return internal.ErrInterrupted

		case PickFetchOlder:
			status = a.inboxOp(ctx, "Fetching older threads", a.Inbox.FetchOlder)

		case PickFetchAll:
			status = a.inboxOp(ctx, "Fetching all threads", a.Inbox.FetchAll)

		case PickRefresh:
			status = a.inboxOp(ctx, "Refreshing inbox", a.Inbox.Refresh)

		case PickThread:
			thread := a.findThread(sel.ThreadID)
			if thread == nil {
				status = "That thread is no longer in the inbox"
				continue
			}
			next, err := a.chat(ctx, thread)
			if err != nil {
				return err
			}
			status = next
		}
	}
}

// chat runs thread sessions until one ends; /refresh starts a new session on
// the same thread. The returned status is shown on the picker.
func (a *App) chat(ctx context.Context, thread *internal.ThreadSummary) (string, error) {
	for {
		model, err := a.session(ctx, thread)
		if err != nil {
			return "", err
		}

		switch model.Outcome() {
		case OutcomeReopen:
			thread = model.Thread()
			internal.LogDebug("Reopening thread %s", thread.ID)
			continue
		case OutcomeInterrupted:
			return "", internal.ErrInterrupted
		case OutcomeEnded:
			if err := model.InboxErr(); err != nil {
				internal.LogWarn("%v", err)
				return "Couldn't refresh inbox: " + rootCause(err), nil
			}
			return "", nil
		default:
			// the program stopped without a command, e.g. the parent context ended
			return "", ctx.Err()
		}
	}
}

// session runs one thread program. The scheduler is always stopped on return.
func (a *App) session(ctx context.Context, thread *internal.ThreadSummary) (*ThreadModel, error) {
	sched := a.NewScheduler()
	defer sched.Stop()

	model := NewThreadModel(ctx, ThreadConfig{
		Client:         a.Client,
		Inbox:          a.Inbox,
		Directory:      a.Directory,
		Renderer:       a.Renderer,
		Scheduler:      sched,
		Interval:       a.Interval,
		SendAttempts:   a.SendAttempts,
		RequestTimeout: a.RequestTimeout,
	}, thread)
	defer model.detach()

	if err := a.run(model, a.ProgramOptions...); err != nil {
		return nil, fmt.Errorf("thread session failed: %w", err)
	}
	return model, nil
}

func (a *App) inboxOp(ctx context.Context, message string, fn func(context.Context) error) string {
	err := a.Progress(ctx, message, func() error {
		opCtx, cancel := withTimeout(ctx, a.RequestTimeout)
		defer cancel()
		return fn(opCtx)
	})
	if err != nil {
		internal.LogWarn("%v", err)
		return "Couldn't update inbox: " + rootCause(err)
	}
	return ""
}

func (a *App) findThread(id string) *internal.ThreadSummary {
	threads := a.Inbox.Threads()
	for i := range threads {
		if threads[i].ID == id {
			return &threads[i]
		}
	}
	return nil
}

// describe is the picker label for a thread's latest message, without colors
func (a *App) describe(msg internal.Message) string {
	return a.labels.MessageLine(msg, a.Client.CurrentAccountID(), time.Now())
}

func (a *App) setDefaults() {
	if a.Directory == nil {
		a.Directory = internal.NewDirectory()
	}
	if a.Renderer == nil {
		a.Renderer = internal.NewRenderer(a.Directory, nil)
	}
	if a.NewScheduler == nil {
		a.NewScheduler = func() Ticker { return internal.NewScheduler() }
	}
	if a.Progress == nil {
		a.Progress = func(_ context.Context, _ string, fn func() error) error { return fn() }
	}
	if a.run == nil {
		a.run = runProgram
	}
	if a.labels == nil {
		a.labels = internal.NewRenderer(a.Directory, PlainRenderer(io.Discard))
	}
}

// PlainRenderer returns a lipgloss renderer that never emits escape codes
func PlainRenderer(w io.Writer) *lipgloss.Renderer {
	r := lipgloss.NewRenderer(w)
	r.SetColorProfile(termenv.Ascii)
	return r
}

func runProgram(m tea.Model, opts ...tea.ProgramOption) error {
	_, err := tea.NewProgram(m, opts...).Run()
	return err
}
