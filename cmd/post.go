package cmd

import (
	"fmt"
	"strings"
	"time"

	"github.com/iksnae/dm-session/internal"
	"github.com/spf13/cobra"
)

var (
	postAs    string
	postKind  string
	postMedia string
)

var postCmd = &cobra.Command{
	Use:   "post <thread-id> [text...]",
	Short: "Post a message to a thread as any account",
	Long: `Post a message to a thread on behalf of another account, without logging in.

This writes straight to the local mailbox, which makes it easy to watch a
running session pick up new messages.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cmd.SilenceUsage = true

		kind := internal.MessageKind(postKind)
		text := strings.Join(args[1:], " ")
		if kind == internal.KindText && text == "" {
			return fmt.Errorf("text is required for a text message")
		}
		if kind == internal.KindMedia && postMedia == "" {
			return fmt.Errorf("--media is required for a media message")
		}

		store, _, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer func() { _ = store.Close() }()

		acct, err := store.AccountByUsername(cmd.Context(), postAs)
		if err != nil {
			return err
		}

		msg, err := store.PostMessage(cmd.Context(), args[0], acct.ID, kind, text, postMedia, time.Time{})
		if err != nil {
			return err
		}

		internal.LogDebug("Posted %s as %s", msg.ID, acct.Username)
		internal.PrintSuccess(fmt.Sprintf("Posted to %s as %s", args[0], acct.Username))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(postCmd)
	postCmd.Flags().StringVar(&postAs, "as", "", "Username to post as")
	postCmd.Flags().StringVar(&postKind, "kind", string(internal.KindText), "Message kind (text, media, like, or any other type name)")
	postCmd.Flags().StringVar(&postMedia, "media", "", "Media URL for media messages")
	_ = postCmd.MarkFlagRequired("as")
}
