package sync

// Manifest maps remote object keys to their ETags exactly as the listing
// returned them (quoted, multipart suffix included). It is rebuilt from a
// full paginated listing at the start of every sync and never persisted.
type Manifest map[string]string

// Matches reports whether the manifest holds key with exactly this etag.
func (m Manifest) Matches(key, etag string) bool {
	remote, ok := m[key]
	return ok && remote == etag
}
