package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/iksnae/dm-session/internal"
	"github.com/iksnae/dm-session/internal/mailbox"
	"github.com/iksnae/dm-session/internal/tui"
	"github.com/spf13/cobra"
)

// exitInterrupted is the conventional status for a ctrl+c exit
const exitInterrupted = 130

var (
	verbose      bool
	configPath   string
	stateDir     string
	dbPath       string
	username     string
	password     string
	persist      bool
	intervalSecs int
	version      string = "dev"
	commit       string = "unknown"
	date         string = "unknown"
)

// rootCmd runs the interactive client when called without a subcommand
var rootCmd = &cobra.Command{
	Use:   "dm-session",
	Short: "Chat in your direct message threads from the terminal",
	Long: `A terminal client for direct message threads.

Log in, pick a thread from your inbox and chat. New messages show up as
they arrive while you type.

In a thread:
  /refresh   reload the thread
  /end       go back to the inbox
  /resend    retry messages that failed to send

Quick Start:
  dm-session seed examples/seed.yaml    # create a local mailbox
  dm-session -u alice                   # log in and chat
  dm-session post --as bob <thread> hi  # reply from another account`,
	Version:       fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, date),
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		internal.SetVerbose(verbose)
	},
	Args: cobra.NoArgs,
	RunE: runChat,
}

// Execute runs the root command and exits with its status
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	os.Exit(exitCode(err))
}

// exitCode reports err to the user and maps it to a process status
func exitCode(err error) int {
	if err == nil {
		return 0
	}
	if errors.Is(err, internal.ErrInterrupted) {
		return exitInterrupted
	}

	var authErr *internal.AuthError
	if errors.As(err, &authErr) {
		internal.PrintError(fmt.Sprintf("Can't log in. %v", authErr.Err))
		return 1
	}

	internal.PrintError(fmt.Sprintf("Error: %v", err))
	return 1
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&verbose, "verbose", false, "Enable verbose logging")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Config file (default ~/.dm-session/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&stateDir, "state-dir", "", "Directory for saved sessions and logs (default ~/.dm-session)")
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "", "Mailbox database (default <state-dir>/mailbox.db)")

	rootCmd.Flags().StringVarP(&username, "username", "u", "", "Username to log in as")
	rootCmd.Flags().StringVarP(&password, "password", "p", "", "Password (prompted when omitted)")
	rootCmd.Flags().BoolVarP(&persist, "persist", "s", false, "Remember the login for the next run")
	rootCmd.Flags().IntVarP(&intervalSecs, "interval", "i", int(internal.DefaultInterval/time.Second), "Seconds between thread refreshes")

	rootCmd.SetVersionTemplate(`{{printf "%s\n" .Version}}`)
}

// loadSettings merges defaults, the config file and command line flags
func loadSettings(cmd *cobra.Command) (internal.Config, error) {
	dir := stateDir
	if dir == "" {
		var err error
		dir, err = internal.DefaultStateDir()
		if err != nil {
			return internal.Config{}, err
		}
	}

	path := configPath
	if path == "" {
		path = filepath.Join(dir, "config.yaml")
	}

	cfg, err := internal.LoadConfig(path, internal.DefaultConfig(dir))
	if err != nil {
		return cfg, err
	}

	if stateDir != "" {
		cfg.StateDir = stateDir
	}
	if dbPath != "" {
		cfg.DBPath = dbPath
	}
	flags := cmd.Flags()
	if flags.Changed("username") {
		cfg.Username = username
	}
	if flags.Changed("persist") {
		cfg.Persist = persist
	}
	if flags.Changed("interval") {
		cfg.Interval = time.Duration(intervalSecs) * time.Second
	}

	return cfg, cfg.Validate()
}

func runChat(cmd *cobra.Command, args []string) error {
	cmd.SilenceUsage = true
	ctx := cmd.Context()

	cfg, err := loadSettings(cmd)
	if err != nil {
		return err
	}

	internal.PrintDim(fmt.Sprintf("dm-session %s", version))

	store, err := mailbox.Open(cfg.DBPath)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	session, err := login(ctx, store, cfg, newPrompter(cmd.InOrStdin(), cmd.ErrOrStderr()))
	if err != nil {
		return err
	}
	session.SetPageSize(cfg.PageSize)

	inbox := internal.NewInbox(session)
	err = internal.ShowProgress(ctx, "Fetching recent threads", "", func() error {
		opCtx, cancel := context.WithTimeout(ctx, cfg.RequestTimeout)
		defer cancel()
		return inbox.Refresh(opCtx)
	})
	if err != nil {
		return err
	}

	if !internal.IsTerminal() {
		return errors.New("the chat needs a terminal; use 'dm-session export' to read threads from scripts")
	}

	restore, err := redirectLogs(cfg.StateDir)
	if err != nil {
		return err
	}
	defer restore()

	app := &tui.App{
		Client:         session,
		Inbox:          inbox,
		Interval:       cfg.Interval,
		SendAttempts:   cfg.SendAttempts,
		RequestTimeout: cfg.RequestTimeout,
		Progress: func(ctx context.Context, message string, fn func() error) error {
			return internal.ShowProgress(ctx, message, "", fn)
		},
		ProgramOptions: []tea.ProgramOption{
			tea.WithContext(ctx),
			tea.WithInput(cmd.InOrStdin()),
			tea.WithOutput(cmd.OutOrStdout()),
		},
	}
	return app.Run(ctx)
}

// login resumes a saved session when --persist is on, otherwise asks for
// credentials and logs in
func login(ctx context.Context, store *mailbox.Store, cfg internal.Config, p *prompter) (*mailbox.Session, error) {
	name := cfg.Username
	if name == "" {
		var err error
		if name, err = p.Username(); err != nil {
			return nil, err
		}
	}

	sessions := internal.NewSessionStore(cfg.StateDir)
	if cfg.Persist {
		if saved, err := sessions.Find(name, store.Path()); err != nil {
			internal.LogWarn("Failed to read saved sessions: %v", err)
		} else if saved != nil {
			session, err := store.Resume(ctx, saved.AccountID, saved.Token)
			if err == nil {
				internal.PrintSuccess(fmt.Sprintf("You are logged in as %s", name))
				return session, nil
			}
			internal.PrintWarning(fmt.Sprintf("Saved login for %s has expired, logging in again", name))
			_ = sessions.Remove(name, store.Path())
		}
	}

	secret := password
	if secret == "" {
		var err error
		if secret, err = p.Password(fmt.Sprintf("Password for %s: ", name)); err != nil {
			return nil, err
		}
	}

	var session *mailbox.Session
	err := internal.ShowProgress(ctx,
		fmt.Sprintf("Logging in as %s", name),
		fmt.Sprintf("You are logged in as %s", name),
		func() error {
			var err error
			session, err = store.Login(ctx, name, secret)
			return err
		})
	if err != nil {
		return nil, err
	}

	if cfg.Persist {
		err := sessions.Save(internal.StoredSession{
			Username:  name,
			AccountID: session.CurrentAccountID(),
			Token:     session.Token(),
			DBPath:    store.Path(),
			CreatedAt: time.Now().UTC(),
		})
		if err != nil {
			internal.LogWarn("Failed to save session: %v", err)
		}
	}
	return session, nil
}

// redirectLogs keeps log lines from tearing the interactive frames. With
// --verbose they go to <state-dir>/dm-session.log, otherwise they are dropped.
func redirectLogs(dir string) (func(), error) {
	restore := func() { internal.SetLogOutput(os.Stderr) }
	if !verbose {
		internal.SetLogOutput(io.Discard)
		return restore, nil
	}

	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, fmt.Errorf("failed to create state directory: %w", err)
	}
	f, err := os.OpenFile(filepath.Join(dir, "dm-session.log"), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0600)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file: %w", err)
	}
	internal.SetLogOutput(f)
	return func() {
		restore()
		_ = f.Close()
	}, nil
}
