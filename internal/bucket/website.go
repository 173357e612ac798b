package bucket

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"
)

const (
	// IndexDocument serves directory requests.
	IndexDocument = "index.html"
	// ErrorDocument serves missing keys.
	ErrorDocument = "error.html"
)

// ConfigureWebsite enables static-website hosting on the bucket with the
// fixed index/error document conventions.
func (m *Manager) ConfigureWebsite(ctx context.Context, bucketName string) error {
	_, err := m.client.PutBucketWebsite(ctx, &s3.PutBucketWebsiteInput{
		Bucket: aws.String(bucketName),
		WebsiteConfiguration: &s3types.WebsiteConfiguration{
			IndexDocument: &s3types.IndexDocument{
				Suffix: aws.String(IndexDocument),
			},
			ErrorDocument: &s3types.ErrorDocument{
				Key: aws.String(ErrorDocument),
			},
		},
	})
	if err != nil {
		return apiError(err, "put bucket website %q", bucketName)
	}
	return nil
}
