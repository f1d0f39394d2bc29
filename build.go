package webtree

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"sort"

	"golang.org/x/sync/errgroup"

	"github.com/pkgtools/webtree/internal/fileops"
)

// Build exports the entire repository into a freshly created directory at
// dest. The destination must not exist; Build never merges into or
// overwrites an existing tree.
//
// The export is all-or-nothing: if any step fails, the destination root
// is deleted before the error is returned, so repeated invocations start
// from a clean slate. On success, ownership of the finished tree passes
// to the caller. Deletion only covers errors raised inside Build itself;
// killing the process mid-export leaves the partial tree behind.
func Build(ctx context.Context, repo Repository, dest string, opts ...BuildOption) error {
	cfg := buildConfig{server: "webtree-dev", workers: 1}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.logger == nil {
		cfg.logger = slog.New(slog.DiscardHandler)
	}

	b := &treeBuilder{repo: repo, root: dest, cfg: cfg, log: cfg.logger}
	if err := b.create(); err != nil {
		return err
	}
	committed := false
	defer func() {
		if !committed {
			_ = os.RemoveAll(dest) //nolint:errcheck // best-effort removal of the partial tree
		}
	}()

	if err := b.writeAll(ctx); err != nil {
		return err
	}
	committed = true
	return nil
}

// treeBuilder orchestrates one export into one output root.
type treeBuilder struct {
	repo Repository
	root string
	cfg  buildConfig
	log  *slog.Logger
}

// create makes the output root. A pre-existing destination is fatal and
// performs no filesystem mutation.
func (b *treeBuilder) create() error {
	err := os.Mkdir(b.root, 0o755)
	if errors.Is(err, fs.ErrExist) {
		return fmt.Errorf("%w: %s", ErrDestinationExists, b.root)
	}
	if err != nil {
		return fmt.Errorf("create output root: %w", err)
	}
	return nil
}

// writeAll populates the tree: global layout documents, then per
// publisher the catalog files and every package in the catalog.
func (b *treeBuilder) writeAll(ctx context.Context) error {
	lw := &layoutWriter{root: b.root, server: b.cfg.server, log: b.log}
	if err := lw.writeVersions(); err != nil {
		return err
	}
	if err := lw.writeStatus(ctx, b.repo); err != nil {
		return err
	}
	if err := lw.writePublisherInfo(ctx, b.repo); err != nil {
		return err
	}

	publishers, err := b.repo.Publishers(ctx)
	if err != nil {
		return fmt.Errorf("list publishers: %w", err)
	}
	sort.Slice(publishers, func(i, j int) bool { return publishers[i].Prefix < publishers[j].Prefix })

	for _, pub := range publishers {
		cat, err := b.repo.Catalog(ctx, pub.Prefix)
		if err != nil {
			return fmt.Errorf("catalog for %s: %w", pub.Prefix, err)
		}
		if err := lw.writeCatalog(pub.Prefix, cat); err != nil {
			return err
		}
		if err := b.exportPackages(ctx, pub.Prefix, cat); err != nil {
			return err
		}
	}
	return nil
}

// exportPackages writes every package in a publisher's catalog, in
// deterministic path order. Ordering is not needed for correctness (the
// layout is idempotent) but keeps runs diffable.
func (b *treeBuilder) exportPackages(ctx context.Context, publisher string, cat *Catalog) error {
	packages := make([]FMRI, len(cat.Packages))
	copy(packages, cat.Packages)
	sort.Slice(packages, func(i, j int) bool {
		return packages[i].PackagePath() < packages[j].PackagePath()
	})

	blobs := newBlobRegistry(filepath.Join(b.root, publisher, "file", "1"), b.cfg.verify)

	if b.cfg.workers < 2 {
		for _, f := range packages {
			if err := b.exportPackage(ctx, publisher, f, blobs); err != nil {
				return err
			}
		}
		return nil
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(b.cfg.workers)
	for _, f := range packages {
		g.Go(func() error {
			return b.exportPackage(gctx, publisher, f, blobs)
		})
	}
	return g.Wait()
}

// exportPackage copies one manifest, creates its encoded alias, and
// materializes every payload blob the manifest references.
func (b *treeBuilder) exportPackage(ctx context.Context, publisher string, f FMRI, blobs *blobRegistry) error {
	src, err := b.repo.ManifestPath(ctx, f)
	if err != nil {
		return fmt.Errorf("%w: manifest for %s: %v", ErrInconsistentRepository, f, err)
	}

	manifestDir := filepath.Join(b.root, publisher, "manifest", "0")
	pkgPath := f.PackagePath()
	dest := filepath.Join(manifestDir, filepath.FromSlash(pkgPath))
	if err := fileops.CopyFile(src, dest); err != nil {
		return fmt.Errorf("manifest for %s: %w", f, err)
	}
	b.log.Info("wrote " + path.Join(publisher, "manifest", "0", pkgPath))

	// Clients may request the manifest with literal slashes or with %2F.
	// The alias is a relative symlink inside manifest/0 resolving to the
	// canonical file, so both spellings serve identical bytes. Names
	// without a slash need no alias; it would collide with the file.
	if alias := f.EncodedPath(); alias != pkgPath {
		if err := os.Symlink(filepath.FromSlash(pkgPath), filepath.Join(manifestDir, alias)); err != nil {
			return fmt.Errorf("manifest alias for %s: %w", f, err)
		}
		b.log.Info("wrote " + path.Join(publisher, "manifest", "0", alias))
	}

	actions, err := ParseManifestFile(src)
	if err != nil {
		return fmt.Errorf("%w: manifest for %s: %v", ErrInconsistentRepository, f, err)
	}

	resolve := func(ctx context.Context, hash string) (string, error) {
		p, err := b.repo.BlobPath(ctx, publisher, hash)
		if err != nil {
			return "", fmt.Errorf("%w: blob %s referenced by %s: %v", ErrInconsistentRepository, hash, f, err)
		}
		return p, nil
	}
	for _, a := range actions {
		if !payloadKinds[a.Kind] || !a.HasPayload() {
			continue
		}
		copied, err := blobs.ensure(ctx, a.Hash, resolve)
		if err != nil {
			return err
		}
		if copied {
			b.log.Info("wrote " + path.Join(publisher, "file", "1", a.Hash))
		}
	}
	return nil
}
