package webtree

import "context"

// Repository is the read-only view of a package repository that an export
// consumes. Implementations must not require any mutation of the source;
// one Repository instance backs exactly one export at a time.
//
// The file paths returned by ManifestPath and BlobPath refer to regular
// files owned by the repository. They are copied verbatim into the output
// tree and are never modified.
type Repository interface {
	// Publishers lists every publisher in the repository.
	Publishers(ctx context.Context) ([]Publisher, error)

	// Catalog returns the catalog for one publisher.
	Catalog(ctx context.Context, publisher string) (*Catalog, error)

	// ManifestPath resolves the source file holding the manifest for f.
	ManifestPath(ctx context.Context, f FMRI) (string, error)

	// BlobPath resolves the source file holding the content blob with the
	// given hash, within a publisher's file store.
	BlobPath(ctx context.Context, publisher, hash string) (string, error)

	// Status returns the repository status document as JSON.
	Status(ctx context.Context) ([]byte, error)

	// PublisherInfo returns the publisher list in the repository's native
	// publisher interchange format.
	PublisherInfo(ctx context.Context) ([]byte, error)
}

// Publisher identifies one package namespace within a repository.
type Publisher struct {
	// Prefix is the publisher name, e.g. "example.com".
	Prefix string

	// Alias is an optional alternate name for the publisher.
	Alias string
}

// Catalog is a publisher's package index: a set of named metadata part
// files plus the packages they describe.
type Catalog struct {
	// AttrsPath is the source path of the catalog.attrs file.
	AttrsPath string

	// Parts maps part names (e.g. "catalog.base.C") to source file paths.
	Parts map[string]string

	// Packages enumerates every package version in the catalog.
	Packages []FMRI
}
