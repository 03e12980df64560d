package internal

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
)

const (
	emptyThreadText = "There are no messages yet."
	likeGlyph       = "♥"
)

// Frame is everything a thread screen shows at one instant
type Frame struct {
	Thread  *ThreadSummary
	SelfID  string
	Pending []PendingMessage
	Compose string
	Status  string
	Now     time.Time
}

type frameStyles struct {
	you     lipgloss.Style
	sender  lipgloss.Style
	unknown lipgloss.Style
	payload lipgloss.Style
	link    lipgloss.Style
	when    lipgloss.Style
	hint    lipgloss.Style
	prompt  lipgloss.Style
	pending lipgloss.Style
	failed  lipgloss.Style
	status  lipgloss.Style
}

// Renderer turns thread state into terminal frames. Rendering has no side
// effects: the same Frame always produces the same string.
type Renderer struct {
	directory *Directory
	styles    frameStyles
}

// NewRenderer creates a Renderer resolving senders through directory.
// r decides the color profile; pass nil to use lipgloss' default renderer.
func NewRenderer(directory *Directory, r *lipgloss.Renderer) *Renderer {
	if r == nil {
		r = lipgloss.DefaultRenderer()
	}
	return &Renderer{
		directory: directory,
		styles: frameStyles{
			you:     r.NewStyle().Foreground(lipgloss.Color("39")),
			sender:  r.NewStyle().Foreground(lipgloss.Color("135")),
			unknown: r.NewStyle().Foreground(lipgloss.Color("196")),
			payload: r.NewStyle().Foreground(lipgloss.Color("255")),
			link:    r.NewStyle().Underline(true),
			when:    r.NewStyle().Foreground(lipgloss.Color("240")),
			hint:    r.NewStyle().Foreground(lipgloss.Color("243")),
			prompt:  r.NewStyle().Foreground(lipgloss.Color("42")),
			pending: r.NewStyle().Foreground(lipgloss.Color("214")),
			failed:  r.NewStyle().Foreground(lipgloss.Color("196")).Bold(true),
			status:  r.NewStyle().Foreground(lipgloss.Color("196")),
		},
	}
}

// Render builds the full thread screen
func (r *Renderer) Render(f Frame) string {
	var b strings.Builder

	var items []Message
	title := ""
	if f.Thread != nil {
		items = SortedMessages(f.Thread.Items)
		title = f.Thread.Title
	}

	if len(items) == 0 {
		b.WriteString(emptyThreadText)
	}
	for i, msg := range items {
		if i > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(r.MessageLine(msg, f.SelfID, f.Now))
	}

	for _, p := range f.Pending {
		b.WriteByte('\n')
		b.WriteString(r.pendingLine(p))
	}

	b.WriteString("\n\n")
	if f.Status != "" {
		b.WriteString(r.styles.status.Render(f.Status))
		b.WriteByte('\n')
	}
	b.WriteString(r.styles.hint.Render("`/refresh` to refresh chat"))
	b.WriteByte('\n')
	b.WriteString(r.styles.hint.Render("`/end` to end chat"))
	b.WriteByte('\n')
	fmt.Fprintf(&b, "Reply to [%s] %s %s", title, r.styles.prompt.Render("›"), f.Compose)

	return b.String()
}

// MessageLine formats a single message as "<sender>: <payload> [<age>]"
func (r *Renderer) MessageLine(msg Message, selfID string, now time.Time) string {
	return fmt.Sprintf("%s: %s %s",
		r.senderName(msg.SenderID, selfID),
		r.styles.payload.Render(r.payload(msg)),
		r.styles.when.Render("["+humanize.RelTime(msg.CreatedAt, now, "ago", "from now")+"]"),
	)
}

func (r *Renderer) senderName(senderID, selfID string) string {
	if senderID != "" && senderID == selfID {
		return r.styles.you.Render("You")
	}
	if username, ok := r.directory.Lookup(senderID); ok {
		return r.styles.sender.Render(username)
	}
	return r.styles.unknown.Render(UnknownSender)
}

func (r *Renderer) payload(msg Message) string {
	switch msg.Kind {
	case KindText:
		return `"` + msg.Text + `"`
	case KindMedia:
		if len(msg.Media) == 0 {
			return "[media]"
		}
		return "[media] › " + r.styles.link.Render(msg.Media[0].URL)
	case KindLike:
		return likeGlyph
	default:
		return fmt.Sprintf("[a non-text message of type %s]", msg.KindName())
	}
}

func (r *Renderer) pendingLine(p PendingMessage) string {
	suffix := r.styles.pending.Render("[sending...]")
	if p.Status == PendingFailed {
		suffix = r.styles.failed.Render("[failed: /resend to retry]")
	}
	return fmt.Sprintf("%s: %s %s", r.styles.you.Render("You"), r.styles.payload.Render(p.Text), suffix)
}

// SortedMessages returns a copy of msgs ordered by ascending creation time
func SortedMessages(msgs []Message) []Message {
	sorted := slices.Clone(msgs)
	slices.SortStableFunc(sorted, func(a, b Message) int {
		return a.CreatedAt.Compare(b.CreatedAt)
	})
	return sorted
}
