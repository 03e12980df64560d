package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/iksnae/dm-session/internal"
	"github.com/iksnae/dm-session/internal/export"
	"github.com/iksnae/dm-session/internal/mailbox"
	"github.com/spf13/cobra"
)

var (
	format    string
	outputDir string
	exportAll bool
)

// exportCmd represents the export command
var exportCmd = &cobra.Command{
	Use:   "export [thread-id]",
	Short: "Export threads to file",
	Long: `Export direct message threads to various formats (jsonl, md, yaml, json).

Export one thread by ID, or every thread in the inbox with --all. Use "-" as
the output to write to stdout.`,
	Args: func(cmd *cobra.Command, args []string) error {
		if exportAll && len(args) > 0 {
			return fmt.Errorf("pass a thread ID or --all, not both")
		}
		if !exportAll && len(args) != 1 {
			return fmt.Errorf("a thread ID is required unless --all is set")
		}
		return nil
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		cmd.SilenceUsage = true
		ctx := cmd.Context()

		exporter, err := export.NewExporter(format)
		if err != nil {
			return err
		}

		store, cfg, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer func() { _ = store.Close() }()

		session, err := login(ctx, store, cfg, newPrompter(cmd.InOrStdin(), cmd.ErrOrStderr()))
		if err != nil {
			return err
		}
		session.SetPageSize(cfg.PageSize)

		var threads []internal.ThreadSummary
		err = internal.ShowProgress(ctx, "Fetching threads", "", func() error {
			opCtx, cancel := context.WithTimeout(ctx, cfg.RequestTimeout)
			defer cancel()
			var fetchErr error
			threads, fetchErr = fetchForExport(opCtx, session, args)
			return fetchErr
		})
		if err != nil {
			return err
		}

		dir := internal.NewDirectory()
		dir.Merge([]internal.Account{session.Account()})
		for _, t := range threads {
			dir.Merge(t.Participants)
		}
		normalizer := internal.NewNormalizer(dir, session.CurrentAccountID(), session.Account().Username)

		if outputDir == "-" {
			for i := range threads {
				if err := exportThread(normalizer, exporter, &threads[i], cmd.OutOrStdout()); err != nil {
					return err
				}
			}
			return nil
		}

		if err := os.MkdirAll(outputDir, 0755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}

		exported := 0
		err = internal.ShowProgress(ctx, fmt.Sprintf("Exporting %d thread(s) to %s", len(threads), outputDir), "", func() error {
			for i := range threads {
				thread := &threads[i]
				path := filepath.Join(outputDir, fmt.Sprintf("thread_%s.%s", thread.ID, exporter.Extension()))

				file, err := os.Create(path)
				if err != nil {
					internal.LogError("Failed to create file %s: %v", path, err)
					continue
				}
				if err := exportThread(normalizer, exporter, thread, file); err != nil {
					_ = file.Close()
					internal.LogError("Failed to export thread %s: %v", thread.ID, err)
					continue
				}
				if err := file.Close(); err != nil {
					internal.LogWarn("Failed to close file %s: %v", path, err)
				}
				exported++
			}
			return nil
		})
		if err != nil {
			return err
		}

		internal.PrintSuccess(fmt.Sprintf("Export complete: %d thread(s) exported to %s", exported, outputDir))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(exportCmd)
	exportCmd.Flags().StringVarP(&format, "format", "f", "jsonl", "Export format ("+strings.Join(export.Formats(), ", ")+")")
	exportCmd.Flags().StringVarP(&outputDir, "out", "o", "./exports", `Output directory, or "-" for stdout`)
	exportCmd.Flags().BoolVar(&exportAll, "all", false, "Export every thread in the inbox")
	exportCmd.Flags().StringVarP(&username, "username", "u", "", "Username to log in as")
	exportCmd.Flags().StringVarP(&password, "password", "p", "", "Password (prompted when omitted)")
	exportCmd.Flags().BoolVarP(&persist, "persist", "s", false, "Remember the login for the next run")
}

func fetchForExport(ctx context.Context, session *mailbox.Session, args []string) ([]internal.ThreadSummary, error) {
	if len(args) == 1 {
		thread, err := session.FetchThread(ctx, args[0])
		if err != nil {
			return nil, &internal.FetchError{Op: "thread", ThreadID: args[0], Err: err}
		}
		return []internal.ThreadSummary{*thread}, nil
	}
	threads, err := session.OpenInbox().FetchAll(ctx)
	if err != nil {
		return nil, &internal.FetchError{Op: "inbox", Err: err}
	}
	return threads, nil
}

func exportThread(n *internal.Normalizer, e export.Exporter, thread *internal.ThreadSummary, w io.Writer) error {
	transcript, err := n.NormalizeThread(thread)
	if err != nil {
		return err
	}
	return e.Export(transcript, w)
}
