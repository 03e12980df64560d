package cmd

import (
	"fmt"

	"github.com/iksnae/dm-session/internal"
	"github.com/iksnae/dm-session/internal/mailbox"
	"github.com/spf13/cobra"
)

var seedCmd = &cobra.Command{
	Use:   "seed <fixture.yaml>",
	Short: "Load accounts and threads into the mailbox",
	Long: `Load accounts, threads and messages from a YAML fixture into the mailbox.

Accounts that already exist are reused. Threads are always created new, so
seeding the same file twice gives two copies of each thread.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cmd.SilenceUsage = true

		var (
			seed  *mailbox.Seed
			store *mailbox.Store
			res   mailbox.SeedResult
		)
		steps := []internal.ProgressStep{
			{
				Message: "Reading fixture",
				Fn: func() error {
					var err error
					seed, err = mailbox.LoadSeed(args[0])
					return err
				},
			},
			{
				Message: "Opening mailbox",
				Fn: func() error {
					var err error
					store, _, err = openStore(cmd)
					return err
				},
			},
			{
				Message: "Creating accounts and threads",
				Fn: func() error {
					var err error
					res, err = store.ApplySeed(cmd.Context(), seed)
					return err
				},
			},
		}
		err := internal.ShowProgressWithSteps(cmd.Context(), steps)
		if store != nil {
			defer func() { _ = store.Close() }()
		}
		if err != nil {
			return err
		}

		if res.AccountsSkipped > 0 {
			internal.PrintInfo(fmt.Sprintf("%d account(s) already existed and kept their passwords", res.AccountsSkipped))
		}
		internal.PrintSuccess(fmt.Sprintf("Seed complete: %d account(s) created, %d reused, %d thread(s), %d message(s)",
			res.AccountsCreated, res.AccountsSkipped, res.Threads, res.Messages))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(seedCmd)
}

// openStore opens the mailbox named by the config and flags
func openStore(cmd *cobra.Command) (*mailbox.Store, internal.Config, error) {
	cfg, err := loadSettings(cmd)
	if err != nil {
		return nil, cfg, err
	}
	store, err := mailbox.Open(cfg.DBPath)
	if err != nil {
		return nil, cfg, err
	}
	return store, cfg, nil
}
