package bucket

import "time"

// BucketInfo is one entry from the bucket listing.
type BucketInfo struct {
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

// ObjectInfo is one entry from an object listing. The ETag stays quoted,
// exactly as the API returned it.
type ObjectInfo struct {
	Key          string    `json:"key"`
	ETag         string    `json:"etag"`
	Size         int64     `json:"size"`
	LastModified time.Time `json:"last_modified"`
}
