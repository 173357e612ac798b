package bucket

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/dustin/go-humanize"
	"github.com/gofrs/flock"
	"github.com/webotron/webotron/internal/sync"
	"github.com/webotron/webotron/internal/utils"
)

// ErrDeployInProgress means another process holds the deploy lock for the
// same bucket.
var ErrDeployInProgress = errors.New("another deploy is already running for this bucket")

// SyncOptions tune one sync run.
type SyncOptions struct {
	// DryRun decides and reports without uploading.
	DryRun bool
	// Excludes are extra glob patterns matched against relative keys.
	Excludes []string
}

// engineStore adapts the Manager's upload primitive to one bucket.
type engineStore struct {
	m      *Manager
	bucket string
}

func (s *engineStore) Upload(ctx context.Context, key string, body io.Reader, contentType string) error {
	return s.m.Upload(ctx, s.bucket, key, body, contentType)
}

// Sync deploys the directory at root into the bucket: it takes the per-bucket
// deploy lock, loads the remote manifest, then walks root uploading every
// file whose fingerprint differs. Files are processed strictly one at a time
// and the first failure aborts the run.
func (m *Manager) Sync(ctx context.Context, root, bucketName string, opts *SyncOptions) (*sync.Report, error) {
	if opts == nil {
		opts = &SyncOptions{}
	}

	root, err := utils.ResolvePath(root)
	if err != nil {
		return nil, fmt.Errorf("resolve sync root: %w", err)
	}
	if !utils.DirExists(root) {
		return nil, fmt.Errorf("sync root %q is not a directory", root)
	}
	// keys are computed against the resolved root, so symlinked roots
	// cannot leak absolute paths into object keys
	root, err = filepath.EvalSymlinks(root)
	if err != nil {
		return nil, fmt.Errorf("resolve sync root: %w", err)
	}

	lock, err := m.acquireDeployLock(bucketName)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := lock.Unlock(); err != nil {
			slog.Warn("release deploy lock", "bucket", bucketName, "error", err)
		}
	}()

	manifest, err := m.loadManifest(ctx, bucketName)
	if err != nil {
		return nil, err
	}

	ignore := sync.NewIgnoreList(root, opts.Excludes...)
	if err := ignore.Load(); err != nil {
		return nil, err
	}

	engine := sync.NewEngine(&sync.EngineConfig{
		Store:    &engineStore{m: m, bucket: bucketName},
		Manifest: manifest,
		Cache:    m.fpCache,
		DryRun:   opts.DryRun,
	})

	report, err := engine.Sync(ctx, root, ignore)
	if err != nil {
		return nil, err
	}

	slog.Info("sync done",
		"run", report.ID,
		"bucket", bucketName,
		"uploaded", report.Uploaded,
		"skipped", report.Skipped,
		"bytes", humanize.Bytes(uint64(report.Bytes)),
		"orphans", len(report.Orphans),
		"dryRun", report.DryRun,
	)
	return report, nil
}

// loadManifest drains the full paginated object listing into a key to ETag
// map. It runs once per sync, before any upload decision.
func (m *Manager) loadManifest(ctx context.Context, bucketName string) (sync.Manifest, error) {
	manifest := make(sync.Manifest)

	paginator := s3.NewListObjectsV2Paginator(m.client, &s3.ListObjectsV2Input{
		Bucket: aws.String(bucketName),
	})

	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, apiError(err, "load manifest for %q", bucketName)
		}
		for _, obj := range page.Contents {
			manifest[aws.ToString(obj.Key)] = aws.ToString(obj.ETag)
		}
	}

	slog.Debug("manifest loaded", "bucket", bucketName, "objects", len(manifest))
	return manifest, nil
}

// acquireDeployLock takes a non-blocking file lock scoped to the bucket. The
// lock lives outside any synced directory so it can never be uploaded.
func (m *Manager) acquireDeployLock(bucketName string) (*flock.Flock, error) {
	dir := m.lockDir
	if dir == "" {
		cacheDir, err := os.UserCacheDir()
		if err != nil {
			cacheDir = os.TempDir()
		}
		dir = filepath.Join(cacheDir, "webotron", "locks")
	}
	if err := utils.EnsureDir(dir); err != nil {
		return nil, fmt.Errorf("create lock dir %q: %w", dir, err)
	}

	lock := flock.New(filepath.Join(dir, bucketName+".lock"))
	locked, err := lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("lock deploy for %q: %w", bucketName, err)
	}
	if !locked {
		return nil, ErrDeployInProgress
	}
	return lock, nil
}
