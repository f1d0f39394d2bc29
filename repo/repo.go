package repo

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"gopkg.in/ini.v1"

	"github.com/pkgtools/webtree"
)

// supportedVersion is the only file-layout repository version this reader
// understands.
const supportedVersion = 4

// Repository is a read-only handle to a file-layout package repository.
// It implements webtree.Repository.
type Repository struct {
	root    string
	version int

	// defaultPublisher is the prefix named by the repository
	// configuration, if any. Publishers are enumerated from disk either
	// way; the configured prefix only breaks ties in ordering.
	defaultPublisher string
}

// Open initializes a reader for the repository rooted at dir. It must be
// called exactly once per repository handle, before any other use; the
// repository is never written to.
func Open(dir string) (*Repository, error) {
	cfgPath := filepath.Join(dir, "pkg5.repository")
	cfg, err := ini.Load(cfgPath)
	if err != nil {
		return nil, fmt.Errorf("read repository configuration %s: %w", cfgPath, err)
	}

	version, err := cfg.Section("repository").Key("version").Int()
	if err != nil {
		return nil, fmt.Errorf("%s: unreadable repository version: %w", cfgPath, err)
	}
	if version != supportedVersion {
		return nil, fmt.Errorf("%s: unsupported repository version %d (want %d)", cfgPath, version, supportedVersion)
	}

	return &Repository{
		root:             dir,
		version:          version,
		defaultPublisher: cfg.Section("publisher").Key("prefix").String(),
	}, nil
}

// Root returns the repository root directory.
func (r *Repository) Root() string {
	return r.root
}

// Publishers enumerates the publishers present on disk, sorted by prefix.
func (r *Repository) Publishers(_ context.Context) ([]webtree.Publisher, error) {
	dir := filepath.Join(r.root, "publisher")
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("list publishers in %s: %w", dir, err)
	}

	var pubs []webtree.Publisher
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		pubs = append(pubs, webtree.Publisher{Prefix: e.Name()})
	}
	if len(pubs) == 0 {
		return nil, fmt.Errorf("repository %s has no publishers", r.root)
	}
	sort.Slice(pubs, func(i, j int) bool { return pubs[i].Prefix < pubs[j].Prefix })
	return pubs, nil
}

// ManifestPath resolves the source file holding the manifest for f. The
// repository stores manifests under percent-encoded stem and version
// directories.
func (r *Repository) ManifestPath(_ context.Context, f webtree.FMRI) (string, error) {
	pub := f.Publisher
	if pub == "" {
		pub = r.defaultPublisher
	}
	p := filepath.Join(r.root, "publisher", pub, "pkg", quote(f.Name), quote(f.Version.String()))
	if _, err := os.Stat(p); err != nil {
		return "", fmt.Errorf("manifest for %s: %w", f, err)
	}
	return p, nil
}

// BlobPath resolves the source file holding the payload blob with the
// given hash. Blobs live under a two-character fan-out directory.
func (r *Repository) BlobPath(_ context.Context, publisher, hash string) (string, error) {
	if len(hash) < 2 {
		return "", fmt.Errorf("malformed content hash %q", hash)
	}
	p := filepath.Join(r.root, "publisher", publisher, "file", hash[:2], hash)
	if _, err := os.Stat(p); err != nil {
		return "", fmt.Errorf("blob %s: %w", hash, err)
	}
	return p, nil
}
