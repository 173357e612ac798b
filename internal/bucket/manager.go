package bucket

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"
	"github.com/webotron/webotron/internal/sync"
)

// apiError wraps err with context, surfacing the service error code when the
// SDK reports one so "NoSuchBucket" style failures read at a glance.
func apiError(err error, format string, args ...any) error {
	msg := fmt.Sprintf(format, args...)
	var ae smithy.APIError
	if errors.As(err, &ae) {
		return fmt.Errorf("%s: %s: %w", msg, ae.ErrorCode(), err)
	}
	return fmt.Errorf("%s: %w", msg, err)
}

// Manager exposes the bucket lifecycle operations and the sync entrypoint.
type Manager struct {
	client   S3API
	uploader *manager.Uploader
	region   string
	lockDir  string
	fpCache  *sync.FingerprintCache
}

// New builds a Manager against the real S3 API using cfg.
func New(ctx context.Context, cfg *Config) (*Manager, error) {
	if cfg == nil {
		cfg = &Config{}
	}

	awsCfg, err := loadAWSConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
		if cfg.PathStyle {
			o.UsePathStyle = true
		}
		if cfg.Accelerate {
			o.UseAccelerate = true
		}
	})

	resolved := *cfg
	if awsCfg.Region != "" {
		resolved.Region = awsCfg.Region
	}

	return NewWithClient(client, &resolved), nil
}

// NewWithClient builds a Manager over an injected API client.
func NewWithClient(client S3API, cfg *Config) *Manager {
	if cfg == nil {
		cfg = &Config{}
	}

	uploader := manager.NewUploader(client, func(u *manager.Uploader) {
		// parts share the fingerprint chunk boundary, uploaded one at a time
		u.PartSize = sync.ChunkSize
		u.Concurrency = 1
	})

	region := cfg.Region
	if region == "" {
		region = DefaultRegion
	}

	return &Manager{
		client:   client,
		uploader: uploader,
		region:   region,
		lockDir:  cfg.LockDir,
		fpCache:  sync.NewFingerprintCache(sync.DefaultFingerprintCacheSize),
	}
}

func loadAWSConfig(ctx context.Context, cfg *Config) (aws.Config, error) {
	var opts []func(*config.LoadOptions) error
	if cfg.Profile != "" {
		opts = append(opts, config.WithSharedConfigProfile(cfg.Profile))
	}
	if cfg.Region != "" {
		opts = append(opts, config.WithRegion(cfg.Region))
	}
	if cfg.AccessKey != "" && cfg.SecretKey != "" {
		opts = append(opts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		))
	}
	return config.LoadDefaultConfig(ctx, opts...)
}

// ListBuckets returns all buckets visible to the caller.
func (m *Manager) ListBuckets(ctx context.Context) ([]BucketInfo, error) {
	resp, err := m.client.ListBuckets(ctx, &s3.ListBucketsInput{})
	if err != nil {
		return nil, apiError(err, "list buckets")
	}

	buckets := make([]BucketInfo, 0, len(resp.Buckets))
	for _, b := range resp.Buckets {
		buckets = append(buckets, BucketInfo{
			Name:      aws.ToString(b.Name),
			CreatedAt: aws.ToTime(b.CreationDate),
		})
	}
	return buckets, nil
}

// ListObjects returns every object in the bucket, draining all listing pages.
func (m *Manager) ListObjects(ctx context.Context, bucketName string) ([]ObjectInfo, error) {
	var objects []ObjectInfo

	paginator := s3.NewListObjectsV2Paginator(m.client, &s3.ListObjectsV2Input{
		Bucket: aws.String(bucketName),
	})

	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, apiError(err, "list objects in %q", bucketName)
		}

		for _, obj := range page.Contents {
			objects = append(objects, ObjectInfo{
				Key:          aws.ToString(obj.Key),
				ETag:         aws.ToString(obj.ETag),
				Size:         aws.ToInt64(obj.Size),
				LastModified: aws.ToTime(obj.LastModified),
			})
		}
	}

	return objects, nil
}

// InitBucket creates the bucket in the configured region. A bucket that
// already exists and is owned by the caller counts as success; any other
// creation error propagates.
func (m *Manager) InitBucket(ctx context.Context, name string) error {
	input := &s3.CreateBucketInput{
		Bucket: aws.String(name),
	}
	// us-east-1 rejects an explicit LocationConstraint
	if m.region != DefaultRegion {
		input.CreateBucketConfiguration = &s3types.CreateBucketConfiguration{
			LocationConstraint: s3types.BucketLocationConstraint(m.region),
		}
	}

	if _, err := m.client.CreateBucket(ctx, input); err != nil {
		var owned *s3types.BucketAlreadyOwnedByYou
		if errors.As(err, &owned) {
			slog.Debug("bucket already owned", "bucket", name)
			return nil
		}
		return apiError(err, "create bucket %q", name)
	}

	slog.Info("bucket created", "bucket", name, "region", m.region)
	return nil
}

// Upload puts one object, switching to multipart transfer past the chunk
// threshold.
func (m *Manager) Upload(ctx context.Context, bucketName, key string, body io.Reader, contentType string) error {
	_, err := m.uploader.Upload(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(bucketName),
		Key:         aws.String(key),
		Body:        body,
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return apiError(err, "put object %q", key)
	}
	return nil
}

// BucketRegion resolves the bucket's region, normalizing the legacy location
// constraints the API returns.
func (m *Manager) BucketRegion(ctx context.Context, bucketName string) (string, error) {
	resp, err := m.client.GetBucketLocation(ctx, &s3.GetBucketLocationInput{
		Bucket: aws.String(bucketName),
	})
	if err != nil {
		return "", apiError(err, "get bucket location %q", bucketName)
	}
	return normalizeRegion(string(resp.LocationConstraint)), nil
}

// WebsiteURL returns the public website URL for a hosting-enabled bucket.
func (m *Manager) WebsiteURL(ctx context.Context, bucketName string) (string, error) {
	region, err := m.BucketRegion(ctx, bucketName)
	if err != nil {
		return "", err
	}
	return WebsiteURL(bucketName, region), nil
}
