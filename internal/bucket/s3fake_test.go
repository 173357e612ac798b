package bucket

import (
	"context"
	"crypto/md5"
	"fmt"
	"io"
	"slices"
	"strconv"
	"sync"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"
)

// fakeS3 is an in-memory stand-in for the S3 API. It computes ETags the way
// S3 does, including the multipart composite form, and can split listings
// into pages.
type fakeS3 struct {
	mu sync.Mutex

	buckets map[string]*fakeBucket
	// foreign marks bucket names owned by another account
	foreign map[string]bool

	// pageSize caps objects per listing page, 0 returns everything at once
	pageSize int

	uploads   map[string]*fakePendingUpload
	uploadSeq int

	putObjectCalls    int
	uploadPartCalls   int
	completeCalls     int
	abortCalls        int
	listObjectsCalls  int
	createBucketCalls []*s3.CreateBucketInput
}

type fakeBucket struct {
	createdAt time.Time
	region    string
	objects   map[string]*fakeObject
	policy    string
	website   *s3types.WebsiteConfiguration
}

type fakeObject struct {
	data         []byte
	etag         string
	contentType  string
	lastModified time.Time
}

type fakePendingUpload struct {
	bucket      string
	key         string
	contentType string
	parts       map[int32][]byte
}

func newFakeS3() *fakeS3 {
	return &fakeS3{
		buckets: make(map[string]*fakeBucket),
		foreign: make(map[string]bool),
		uploads: make(map[string]*fakePendingUpload),
	}
}

func (f *fakeS3) addBucket(name, region string) *fakeBucket {
	f.mu.Lock()
	defer f.mu.Unlock()

	b := &fakeBucket{
		createdAt: time.Now(),
		region:    region,
		objects:   make(map[string]*fakeObject),
	}
	f.buckets[name] = b
	return b
}

func (f *fakeS3) seedObject(bucket, key string, data []byte) {
	f.mu.Lock()
	defer f.mu.Unlock()

	sum := md5.Sum(data)
	f.buckets[bucket].objects[key] = &fakeObject{
		data:         data,
		etag:         fmt.Sprintf("\"%x\"", sum),
		contentType:  "application/octet-stream",
		lastModified: time.Now(),
	}
}

func (f *fakeS3) object(bucket, key string) *fakeObject {
	f.mu.Lock()
	defer f.mu.Unlock()

	b, ok := f.buckets[bucket]
	if !ok {
		return nil
	}
	return b.objects[key]
}

func (f *fakeS3) objectKeys(bucket string) []string {
	f.mu.Lock()
	defer f.mu.Unlock()

	b, ok := f.buckets[bucket]
	if !ok {
		return nil
	}
	keys := make([]string, 0, len(b.objects))
	for k := range b.objects {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

func (f *fakeS3) PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	data, err := io.ReadAll(params.Body)
	if err != nil {
		return nil, err
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.putObjectCalls++

	b, ok := f.buckets[aws.ToString(params.Bucket)]
	if !ok {
		return nil, &s3types.NoSuchBucket{}
	}

	sum := md5.Sum(data)
	etag := fmt.Sprintf("\"%x\"", sum)
	b.objects[aws.ToString(params.Key)] = &fakeObject{
		data:         data,
		etag:         etag,
		contentType:  aws.ToString(params.ContentType),
		lastModified: time.Now(),
	}
	return &s3.PutObjectOutput{ETag: aws.String(etag)}, nil
}

func (f *fakeS3) CreateMultipartUpload(ctx context.Context, params *s3.CreateMultipartUploadInput, optFns ...func(*s3.Options)) (*s3.CreateMultipartUploadOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if _, ok := f.buckets[aws.ToString(params.Bucket)]; !ok {
		return nil, &s3types.NoSuchBucket{}
	}

	f.uploadSeq++
	id := fmt.Sprintf("upload-%d", f.uploadSeq)
	f.uploads[id] = &fakePendingUpload{
		bucket:      aws.ToString(params.Bucket),
		key:         aws.ToString(params.Key),
		contentType: aws.ToString(params.ContentType),
		parts:       make(map[int32][]byte),
	}
	return &s3.CreateMultipartUploadOutput{UploadId: aws.String(id)}, nil
}

func (f *fakeS3) UploadPart(ctx context.Context, params *s3.UploadPartInput, optFns ...func(*s3.Options)) (*s3.UploadPartOutput, error) {
	data, err := io.ReadAll(params.Body)
	if err != nil {
		return nil, err
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.uploadPartCalls++

	up, ok := f.uploads[aws.ToString(params.UploadId)]
	if !ok {
		return nil, &s3types.NoSuchUpload{}
	}

	up.parts[aws.ToInt32(params.PartNumber)] = data
	sum := md5.Sum(data)
	return &s3.UploadPartOutput{ETag: aws.String(fmt.Sprintf("\"%x\"", sum))}, nil
}

func (f *fakeS3) CompleteMultipartUpload(ctx context.Context, params *s3.CompleteMultipartUploadInput, optFns ...func(*s3.Options)) (*s3.CompleteMultipartUploadOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.completeCalls++

	id := aws.ToString(params.UploadId)
	up, ok := f.uploads[id]
	if !ok {
		return nil, &s3types.NoSuchUpload{}
	}
	delete(f.uploads, id)

	nums := make([]int32, 0, len(up.parts))
	for n := range up.parts {
		nums = append(nums, n)
	}
	slices.Sort(nums)

	var data []byte
	var digests []byte
	for _, n := range nums {
		part := up.parts[n]
		data = append(data, part...)
		sum := md5.Sum(part)
		digests = append(digests, sum[:]...)
	}

	etag := fmt.Sprintf("\"%x-%d\"", md5.Sum(digests), len(nums))
	f.buckets[up.bucket].objects[up.key] = &fakeObject{
		data:         data,
		etag:         etag,
		contentType:  up.contentType,
		lastModified: time.Now(),
	}
	return &s3.CompleteMultipartUploadOutput{ETag: aws.String(etag)}, nil
}

func (f *fakeS3) AbortMultipartUpload(ctx context.Context, params *s3.AbortMultipartUploadInput, optFns ...func(*s3.Options)) (*s3.AbortMultipartUploadOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.abortCalls++

	delete(f.uploads, aws.ToString(params.UploadId))
	return &s3.AbortMultipartUploadOutput{}, nil
}

func (f *fakeS3) ListObjectsV2(ctx context.Context, params *s3.ListObjectsV2Input, optFns ...func(*s3.Options)) (*s3.ListObjectsV2Output, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.listObjectsCalls++

	b, ok := f.buckets[aws.ToString(params.Bucket)]
	if !ok {
		return nil, &s3types.NoSuchBucket{}
	}

	keys := make([]string, 0, len(b.objects))
	for k := range b.objects {
		keys = append(keys, k)
	}
	slices.Sort(keys)

	start := 0
	if tok := aws.ToString(params.ContinuationToken); tok != "" {
		n, err := strconv.Atoi(tok)
		if err != nil {
			return nil, fmt.Errorf("bad continuation token %q", tok)
		}
		start = n
	}

	limit := len(keys) - start
	if f.pageSize > 0 && f.pageSize < limit {
		limit = f.pageSize
	}
	if mk := int(aws.ToInt32(params.MaxKeys)); mk > 0 && mk < limit {
		limit = mk
	}
	end := start + limit
	if end > len(keys) {
		end = len(keys)
	}

	contents := make([]s3types.Object, 0, end-start)
	for _, k := range keys[start:end] {
		obj := b.objects[k]
		contents = append(contents, s3types.Object{
			Key:          aws.String(k),
			ETag:         aws.String(obj.etag),
			Size:         aws.Int64(int64(len(obj.data))),
			LastModified: aws.Time(obj.lastModified),
		})
	}

	out := &s3.ListObjectsV2Output{
		Contents:    contents,
		KeyCount:    aws.Int32(int32(len(contents))),
		IsTruncated: aws.Bool(end < len(keys)),
	}
	if end < len(keys) {
		out.NextContinuationToken = aws.String(strconv.Itoa(end))
	}
	return out, nil
}

func (f *fakeS3) ListBuckets(ctx context.Context, params *s3.ListBucketsInput, optFns ...func(*s3.Options)) (*s3.ListBucketsOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	names := make([]string, 0, len(f.buckets))
	for name := range f.buckets {
		names = append(names, name)
	}
	slices.Sort(names)

	buckets := make([]s3types.Bucket, 0, len(names))
	for _, name := range names {
		buckets = append(buckets, s3types.Bucket{
			Name:         aws.String(name),
			CreationDate: aws.Time(f.buckets[name].createdAt),
		})
	}
	return &s3.ListBucketsOutput{Buckets: buckets}, nil
}

func (f *fakeS3) CreateBucket(ctx context.Context, params *s3.CreateBucketInput, optFns ...func(*s3.Options)) (*s3.CreateBucketOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.createBucketCalls = append(f.createBucketCalls, params)

	name := aws.ToString(params.Bucket)
	if f.foreign[name] {
		return nil, &s3types.BucketAlreadyExists{}
	}
	if _, ok := f.buckets[name]; ok {
		return nil, &s3types.BucketAlreadyOwnedByYou{}
	}

	region := DefaultRegion
	if params.CreateBucketConfiguration != nil {
		region = string(params.CreateBucketConfiguration.LocationConstraint)
	}
	f.buckets[name] = &fakeBucket{
		createdAt: time.Now(),
		region:    region,
		objects:   make(map[string]*fakeObject),
	}
	return &s3.CreateBucketOutput{}, nil
}

func (f *fakeS3) PutBucketPolicy(ctx context.Context, params *s3.PutBucketPolicyInput, optFns ...func(*s3.Options)) (*s3.PutBucketPolicyOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	b, ok := f.buckets[aws.ToString(params.Bucket)]
	if !ok {
		return nil, &s3types.NoSuchBucket{}
	}
	b.policy = aws.ToString(params.Policy)
	return &s3.PutBucketPolicyOutput{}, nil
}

func (f *fakeS3) PutBucketWebsite(ctx context.Context, params *s3.PutBucketWebsiteInput, optFns ...func(*s3.Options)) (*s3.PutBucketWebsiteOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	b, ok := f.buckets[aws.ToString(params.Bucket)]
	if !ok {
		return nil, &s3types.NoSuchBucket{}
	}
	b.website = params.WebsiteConfiguration
	return &s3.PutBucketWebsiteOutput{}, nil
}

func (f *fakeS3) GetBucketLocation(ctx context.Context, params *s3.GetBucketLocationInput, optFns ...func(*s3.Options)) (*s3.GetBucketLocationOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	b, ok := f.buckets[aws.ToString(params.Bucket)]
	if !ok {
		return nil, &s3types.NoSuchBucket{}
	}

	var constraint s3types.BucketLocationConstraint
	if b.region != DefaultRegion {
		constraint = s3types.BucketLocationConstraint(b.region)
	}
	return &s3.GetBucketLocationOutput{LocationConstraint: constraint}, nil
}

var _ S3API = (*fakeS3)(nil)
