package webtree

import "log/slog"

// BuildOption configures a Build call.
type BuildOption func(*buildConfig)

type buildConfig struct {
	logger  *slog.Logger
	server  string
	workers int
	verify  bool
}

// BuildWithLogger sets the logger used for per-file progress lines.
// If nil, output is discarded (default behavior).
func BuildWithLogger(logger *slog.Logger) BuildOption {
	return func(c *buildConfig) {
		c.logger = logger
	}
}

// BuildWithServerID sets the server identification string written into
// the versions document, conventionally "<progname>-<version>".
// Defaults to "webtree-dev".
func BuildWithServerID(id string) BuildOption {
	return func(c *buildConfig) {
		if id != "" {
			c.server = id
		}
	}
}

// BuildWithWorkers sets the number of packages exported concurrently
// within a publisher. Values < 2 keep the default serial export. Blob
// deduplication stays correct under concurrency via per-hash locking.
func BuildWithWorkers(n int) BuildOption {
	return func(c *buildConfig) {
		c.workers = n
	}
}

// BuildWithVerify enables payload verification: before a blob is copied,
// its stored payload is decompressed and checked against the hash the
// action declares. Off by default, matching the source system, which
// trusts the repository's file store. Blobs already present at their
// destination are skipped without verification either way.
func BuildWithVerify(verify bool) BuildOption {
	return func(c *buildConfig) {
		c.verify = verify
	}
}
