package sync

import (
	"crypto/md5"
	"fmt"
	"io"
	"os"
)

// ChunkSize is the part size used for multipart transfers. Local fingerprints
// are chunked at the same boundary so they agree with the ETags S3 reports
// for multipart-uploaded objects.
const ChunkSize = 8 * 1024 * 1024

// Fingerprint computes the S3-style ETag of a local file, quoted exactly as
// the object listing returns it. Files up to one chunk hash to the plain MD5
// of their bytes. Larger files hash to the MD5 of the concatenated per-chunk
// MD5 digests with a "-<count>" suffix.
func Fingerprint(path string) (string, error) {
	file, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("failed to open file '%s': %w", path, err)
	}
	defer file.Close()

	return fingerprint(file)
}

func fingerprint(r io.Reader) (string, error) {
	var digests []byte
	chunks := 0

	buf := make([]byte, ChunkSize)
	for {
		n, err := io.ReadFull(r, buf)
		if n > 0 {
			sum := md5.Sum(buf[:n])
			digests = append(digests, sum[:]...)
			chunks++
		}
		if err == io.EOF || err == io.ErrUnexpectedEOF {
			break
		}
		if err != nil {
			return "", fmt.Errorf("failed to read chunk: %w", err)
		}
	}

	switch chunks {
	case 0:
		// Zero-length file hashes like an empty single-part upload.
		return fmt.Sprintf("\"%x\"", md5.Sum(nil)), nil
	case 1:
		// Single chunk, so the chunk digest is the whole-file digest.
		return fmt.Sprintf("\"%x\"", digests), nil
	default:
		combined := md5.Sum(digests)
		return fmt.Sprintf("\"%x-%d\"", combined, chunks), nil
	}
}
