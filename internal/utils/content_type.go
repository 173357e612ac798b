package utils

import (
	"mime"
	"path/filepath"
)

// DefaultContentType is used when the key's extension has no known MIME mapping.
const DefaultContentType = "text/plain"

func DetectContentType(key string) string {
	if mimeType := mime.TypeByExtension(filepath.Ext(key)); mimeType != "" {
		return mimeType
	}
	return DefaultContentType
}
