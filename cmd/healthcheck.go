package cmd

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
	"github.com/iksnae/dm-session/internal"
	"github.com/iksnae/dm-session/internal/mailbox"
	"github.com/spf13/cobra"
)

var (
	healthcheckVerbose bool
)

var (
	successStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("42")).
			Bold(true)

	warningStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("214")).
			Bold(true)

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196")).
			Bold(true)

	infoStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("39"))

	sectionStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("62")).
			Bold(true).
			Underline(true)
)

// errHealthcheck is returned when a required check fails
var errHealthcheck = errors.New("health check failed")

// healthcheckCmd represents the healthcheck command
var healthcheckCmd = &cobra.Command{
	Use:   "healthcheck",
	Short: "Check that the mailbox and saved sessions are usable",
	Long: `Check the health of dm-session by verifying:
  • Configuration
  • Mailbox database presence and schema
  • Mailbox contents
  • Saved sessions

The mailbox is never created by this command. Run "dm-session seed" first.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cmd.SilenceUsage = true
		w := cmd.OutOrStdout()

		_, _ = fmt.Fprintln(w, sectionStyle.Render("dm-session Health Check"))
		_, _ = fmt.Fprintln(w)

		// Step 1: Configuration
		_, _ = fmt.Fprintln(w, infoStyle.Render("Step 1: Loading configuration..."))
		cfg, err := loadSettings(cmd)
		if err != nil {
			_, _ = fmt.Fprintln(w, errorStyle.Render("❌ Invalid configuration:"), err)
			return errHealthcheck
		}
		_, _ = fmt.Fprintln(w, successStyle.Render("✅ Configuration loaded"))
		if healthcheckVerbose {
			_, _ = fmt.Fprintf(w, "   State dir: %s\n", cfg.StateDir)
			_, _ = fmt.Fprintf(w, "   Interval: %s\n", cfg.Interval)
			_, _ = fmt.Fprintf(w, "   Page size: %d\n", cfg.PageSize)
		}
		_, _ = fmt.Fprintln(w)

		// Step 2: Mailbox file
		_, _ = fmt.Fprintln(w, infoStyle.Render("Step 2: Checking mailbox database..."))
		info, err := os.Stat(cfg.DBPath)
		if err != nil {
			_, _ = fmt.Fprintln(w, errorStyle.Render("❌ Mailbox not found"))
			if healthcheckVerbose {
				_, _ = fmt.Fprintf(w, "   Expected: %s\n", cfg.DBPath)
			}
			_, _ = fmt.Fprintln(w, "   Create one with: dm-session seed <fixture.yaml>")
			return errHealthcheck
		}
		_, _ = fmt.Fprintln(w, successStyle.Render("✅ Mailbox found"))
		if healthcheckVerbose {
			_, _ = fmt.Fprintf(w, "   Database: %s (%s)\n", cfg.DBPath, humanize.Bytes(uint64(info.Size())))
		}
		_, _ = fmt.Fprintln(w)

		// Step 3: Schema
		_, _ = fmt.Fprintln(w, infoStyle.Render("Step 3: Opening mailbox..."))
		store, err := mailbox.Open(cfg.DBPath)
		if err != nil {
			_, _ = fmt.Fprintln(w, errorStyle.Render("❌ Failed to open mailbox:"), err)
			return errHealthcheck
		}
		defer func() { _ = store.Close() }()
		_, _ = fmt.Fprintln(w, successStyle.Render("✅ Schema is current"))
		_, _ = fmt.Fprintln(w)

		// Step 4: Contents
		_, _ = fmt.Fprintln(w, infoStyle.Render("Step 4: Reading mailbox contents..."))
		stats, err := store.Stats(cmd.Context())
		if err != nil {
			_, _ = fmt.Fprintln(w, errorStyle.Render("❌ Failed to read mailbox:"), err)
			return errHealthcheck
		}
		if stats.Accounts > 0 {
			_, _ = fmt.Fprintln(w, successStyle.Render(fmt.Sprintf("✅ Found %d account(s)", stats.Accounts)))
		} else {
			_, _ = fmt.Fprintln(w, warningStyle.Render("⚠️  No accounts yet"))
		}
		if healthcheckVerbose {
			_, _ = fmt.Fprintf(w, "   Threads: %d\n", stats.Threads)
			_, _ = fmt.Fprintf(w, "   Messages: %d\n", stats.Messages)
			_, _ = fmt.Fprintf(w, "   Session tokens: %d\n", stats.Sessions)
		}
		_, _ = fmt.Fprintln(w)

		// Step 5: Saved sessions
		_, _ = fmt.Fprintln(w, infoStyle.Render("Step 5: Checking saved sessions..."))
		saved := checkSavedSessions(w, internal.NewSessionStore(cfg.StateDir), store.Path())
		_, _ = fmt.Fprintln(w)

		// Summary
		_, _ = fmt.Fprintln(w, sectionStyle.Render("Summary"))
		_, _ = fmt.Fprintln(w)
		if stats.Accounts == 0 {
			_, _ = fmt.Fprintln(w, warningStyle.Render("⚠️  Mailbox is reachable but empty"))
			_, _ = fmt.Fprintln(w, "   • Load accounts with: dm-session seed <fixture.yaml>")
			return nil
		}
		_, _ = fmt.Fprintln(w, successStyle.Render("✅ Health check passed!"))
		_, _ = fmt.Fprintln(w, successStyle.Render(fmt.Sprintf("   • Accounts: %d", stats.Accounts)))
		_, _ = fmt.Fprintln(w, successStyle.Render(fmt.Sprintf("   • Threads: %d", stats.Threads)))
		_, _ = fmt.Fprintln(w, successStyle.Render(fmt.Sprintf("   • Saved logins: %d", saved)))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(healthcheckCmd)
	healthcheckCmd.Flags().BoolVarP(&healthcheckVerbose, "details", "d", false, "Show detailed diagnostic information")
}

// checkSavedSessions reports the saved logins for dbPath. An unreadable index
// is only a warning since the next --persist login rewrites it.
func checkSavedSessions(w io.Writer, sessions *internal.SessionStore, dbPath string) int {
	index, err := sessions.LoadIndex()
	if err != nil {
		_, _ = fmt.Fprintln(w, warningStyle.Render("⚠️  Saved sessions unreadable:"), err)
		return 0
	}

	count := 0
	for _, entry := range index.Sessions {
		if entry.DBPath != dbPath {
			continue
		}
		count++
		if healthcheckVerbose {
			_, _ = fmt.Fprintf(w, "   %s (saved %s)\n", entry.Username, humanize.Time(entry.CreatedAt))
		}
	}
	if count == 0 {
		_, _ = fmt.Fprintln(w, warningStyle.Render("⚠️  No saved logins for this mailbox"))
		return 0
	}
	_, _ = fmt.Fprintln(w, successStyle.Render(fmt.Sprintf("✅ Found %d saved login(s)", count)))
	return count
}
