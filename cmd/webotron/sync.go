package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
	"github.com/webotron/webotron/internal/bucket"
	"github.com/webotron/webotron/internal/sync"
	"github.com/webotron/webotron/internal/utils"
	"golang.org/x/sync/errgroup"
)

func init() {
	rootCmd.AddCommand(newSyncCmd())
}

func newSyncCmd() *cobra.Command {
	var dryRun bool
	var watch bool
	var excludes []string

	cmd := &cobra.Command{
		Use:   "sync <pathname> <bucket>",
		Short: "Sync the contents of a local directory to an S3 bucket",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true
			root, bucketName := args[0], args[1]

			m, err := newManager(cmd.Context())
			if err != nil {
				return err
			}

			opts := &bucket.SyncOptions{DryRun: dryRun, Excludes: excludes}
			if err := runSync(cmd.Context(), m, root, bucketName, opts); err != nil {
				return err
			}
			if !watch {
				return nil
			}
			return watchAndSync(cmd.Context(), m, root, bucketName, opts)
		},
	}

	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Decide and report without uploading")
	cmd.Flags().StringArrayVarP(&excludes, "exclude", "x", nil, "Glob pattern to exclude (repeatable)")
	cmd.Flags().BoolVarP(&watch, "watch", "w", false, "Keep watching the directory and redeploy on change")
	return cmd
}

func runSync(ctx context.Context, m *bucket.Manager, root, bucketName string, opts *bucket.SyncOptions) error {
	report, err := m.Sync(ctx, root, bucketName, opts)
	if err != nil {
		return err
	}

	verb := "uploaded"
	if report.DryRun {
		verb = "would upload"
	}
	fmt.Printf("%s %d file(s), skipped %d, %s\n",
		verb, report.Uploaded, report.Skipped, humanize.Bytes(uint64(report.Bytes)))
	for _, key := range report.Orphans {
		fmt.Printf("%s remote object %q has no local file\n", yellow.Render("orphan:"), key)
	}

	url, err := m.WebsiteURL(ctx, bucketName)
	if err != nil {
		return err
	}
	fmt.Println(cyan.Render(url))
	return nil
}

// watchAndSync keeps redeploying until the context is cancelled. Sync
// failures are logged and the watch continues; only setup errors abort.
func watchAndSync(ctx context.Context, m *bucket.Manager, root, bucketName string, opts *bucket.SyncOptions) error {
	dir, err := utils.ResolvePath(root)
	if err != nil {
		return err
	}
	dir, err = filepath.EvalSymlinks(dir)
	if err != nil {
		return err
	}

	ignore := sync.NewIgnoreList(dir, opts.Excludes...)
	if err := ignore.Load(); err != nil {
		return err
	}

	w := sync.NewWatcher(dir)
	w.FilterPaths(func(path string) bool {
		rel, err := filepath.Rel(dir, path)
		if err != nil {
			return false
		}
		return ignore.ShouldIgnore(sync.NormKey(rel))
	})
	if err := w.Start(ctx); err != nil {
		return err
	}

	slog.Info("watching for changes", "dir", dir, "bucket", bucketName)

	eg, egCtx := errgroup.WithContext(ctx)
	eg.Go(func() error {
		for range w.Triggers() {
			slog.Info("change detected, redeploying", "bucket", bucketName)
			if err := runSync(egCtx, m, root, bucketName, opts); err != nil {
				slog.Error("redeploy failed", "bucket", bucketName, "error", err)
			}
		}
		return nil
	})
	eg.Go(func() error {
		<-egCtx.Done()
		w.Stop()
		return egCtx.Err()
	})

	if err := eg.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}
