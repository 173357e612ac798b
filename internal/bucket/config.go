package bucket

// Config carries everything a Manager needs to talk to the object store.
// Callers build one and hand it to New; nothing here is read from package
// state.
type Config struct {
	// Profile selects a shared-config credential profile. Empty uses the
	// default chain.
	Profile string
	// Region pins the client region. Empty lets the SDK resolve it from
	// the profile or environment.
	Region string
	// Endpoint points at an S3-compatible store (MinIO and friends).
	// Setting it implies path-style addressing.
	Endpoint string
	// AccessKey and SecretKey configure static credentials. Both must be
	// set to take effect.
	AccessKey string
	SecretKey string
	// PathStyle forces path-style bucket addressing.
	PathStyle bool
	// Accelerate enables S3 transfer acceleration.
	Accelerate bool
	// LockDir overrides where per-bucket deploy locks live. Empty uses
	// the user cache directory.
	LockDir string
}
