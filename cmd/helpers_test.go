package cmd

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/iksnae/dm-session/internal/mailbox"
	"github.com/iksnae/dm-session/testutil"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// resetFlags restores every flag to its default so runs don't leak state
func resetFlags(c *cobra.Command) {
	reset := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	}
	c.Flags().VisitAll(reset)
	c.PersistentFlags().VisitAll(reset)
	for _, sub := range c.Commands() {
		resetFlags(sub)
	}
}

// execute runs rootCmd with args and returns what it wrote to stdout
func execute(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	resetFlags(rootCmd)
	t.Cleanup(func() { resetFlags(rootCmd) })

	var stdout, stderr bytes.Buffer
	rootCmd.SetArgs(args)
	rootCmd.SetIn(strings.NewReader(stdin))
	rootCmd.SetOut(&stdout)
	rootCmd.SetErr(&stderr)

	err := rootCmd.Execute()
	return stdout.String(), err
}

// testEnv is a throwaway state directory with its own mailbox path
type testEnv struct {
	dir string
	db  string
}

func newTestEnv(t *testing.T) testEnv {
	t.Helper()
	dir := testutil.CreateTempDir(t)
	return testEnv{dir: dir, db: filepath.Join(dir, "mailbox.db")}
}

// args appends the state flags pointing at the test environment
func (e testEnv) args(args ...string) []string {
	return append(args, "--state-dir", e.dir, "--db", e.db)
}

// seeded returns an environment whose mailbox holds testutil.SeedYAML
func seeded(t *testing.T) testEnv {
	t.Helper()
	env := newTestEnv(t)
	fixture := testutil.CreateSeedFixture(t, env.dir)
	if _, err := execute(t, "", env.args("seed", fixture)...); err != nil {
		t.Fatalf("seed failed: %v", err)
	}
	return env
}

// lunchThreadID logs in as alice and returns the ID of the seeded thread
func lunchThreadID(t *testing.T, env testEnv) string {
	t.Helper()
	store, err := mailbox.Open(env.db)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	defer func() { _ = store.Close() }()

	session, err := store.Login(context.Background(), "alice", "alice-pw")
	if err != nil {
		t.Fatalf("Login() error = %v", err)
	}
	threads, err := session.OpenInbox().FetchAll(context.Background())
	if err != nil || len(threads) != 1 {
		t.Fatalf("FetchAll() = %d threads, %v", len(threads), err)
	}
	return threads[0].ID
}
