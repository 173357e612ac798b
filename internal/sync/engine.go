package sync

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sort"

	mapset "github.com/deckarep/golang-set/v2"
	"github.com/dustin/go-humanize"
	"github.com/google/uuid"
	"github.com/webotron/webotron/internal/utils"
)

// SyncAction is the per-file outcome of a sync decision.
type SyncAction string

const (
	ActionUpload SyncAction = "upload"
	ActionSkip   SyncAction = "skip"
)

// ObjectStore is the remote upload primitive the engine drives.
type ObjectStore interface {
	Upload(ctx context.Context, key string, body io.Reader, contentType string) error
}

// Report summarizes one sync run.
type Report struct {
	// ID identifies the run in logs.
	ID string `json:"id"`
	// Uploaded counts files pushed to the bucket.
	Uploaded int `json:"uploaded"`
	// Skipped counts files whose fingerprint matched the manifest.
	Skipped int `json:"skipped"`
	// Bytes is the total size of uploaded files.
	Bytes int64 `json:"bytes"`
	// Orphans lists remote keys with no local counterpart. They are
	// reported only, never deleted.
	Orphans []string `json:"orphans,omitempty"`
	// DryRun marks a run that decided but did not upload.
	DryRun bool `json:"dry_run,omitempty"`
}

// EngineConfig wires an Engine. Store and Manifest are required, Cache is
// optional.
type EngineConfig struct {
	Store    ObjectStore
	Manifest Manifest
	Cache    *FingerprintCache
	DryRun   bool
}

// Engine decides, file by file, whether a local file needs uploading by
// comparing its fingerprint against the manifest. Files run strictly one at
// a time; the first failure aborts the run.
type Engine struct {
	store    ObjectStore
	manifest Manifest
	cache    *FingerprintCache
	dryRun   bool
}

func NewEngine(cfg *EngineConfig) *Engine {
	return &Engine{
		store:    cfg.Store,
		manifest: cfg.Manifest,
		cache:    cfg.Cache,
		dryRun:   cfg.DryRun,
	}
}

// SyncFile fingerprints one file and uploads it unless the manifest already
// holds the same etag under its key.
func (e *Engine) SyncFile(ctx context.Context, rec *FileRecord) (SyncAction, error) {
	etag, err := e.fingerprintFor(rec)
	if err != nil {
		return "", err
	}

	if e.manifest.Matches(rec.Key, etag) {
		return ActionSkip, nil
	}

	if e.dryRun {
		return ActionUpload, nil
	}

	file, err := os.Open(rec.Path)
	if err != nil {
		return "", fmt.Errorf("failed to open file '%s': %w", rec.Path, err)
	}
	defer file.Close()

	contentType := utils.DetectContentType(rec.Key)
	if err := e.store.Upload(ctx, rec.Key, file, contentType); err != nil {
		return "", fmt.Errorf("upload %s: %w", rec.Key, err)
	}

	return ActionUpload, nil
}

// Sync walks root and applies SyncFile to every file, sequentially. It
// returns a Report with counts and the remote keys never seen locally.
func (e *Engine) Sync(ctx context.Context, root string, ignore *IgnoreList) (*Report, error) {
	report := &Report{
		ID:     uuid.NewString(),
		DryRun: e.dryRun,
	}
	visited := mapset.NewSet[string]()

	err := Walk(root, ignore, func(rec *FileRecord) error {
		if err := ctx.Err(); err != nil {
			return err
		}

		action, err := e.SyncFile(ctx, rec)
		if err != nil {
			return err
		}
		visited.Add(rec.Key)

		switch action {
		case ActionUpload:
			report.Uploaded++
			report.Bytes += rec.Size
			slog.Info("sync upload", "run", report.ID, "key", rec.Key, "size", humanize.Bytes(uint64(rec.Size)), "dryRun", e.dryRun)
		case ActionSkip:
			report.Skipped++
			slog.Debug("sync skip", "run", report.ID, "key", rec.Key)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	remote := mapset.NewSet[string]()
	for key := range e.manifest {
		remote.Add(key)
	}
	report.Orphans = remote.Difference(visited).ToSlice()
	sort.Strings(report.Orphans)

	return report, nil
}

func (e *Engine) fingerprintFor(rec *FileRecord) (string, error) {
	if e.cache != nil {
		if etag, ok := e.cache.Get(rec.Path, rec.Size, rec.ModTime); ok {
			return etag, nil
		}
	}

	etag, err := Fingerprint(rec.Path)
	if err != nil {
		return "", err
	}

	if e.cache != nil {
		e.cache.Put(rec.Path, rec.Size, rec.ModTime, etag)
	}
	return etag, nil
}
