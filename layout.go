package webtree

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"sort"

	"github.com/pkgtools/webtree/internal/fileops"
)

// Depot protocol versions advertised by every generated tree. These match
// the operations a static file server can answer and must not change
// without a corresponding layout change.
const (
	versionsDoc  = "versions/0/index.html"
	statusDoc    = "status/0/index.html"
	publisherDoc = "publisher/0/index.html"
)

// layoutWriter emits the fixed set of protocol metadata documents every
// valid tree must contain: the versions document, the status and
// publisher documents, and each publisher's catalog files.
type layoutWriter struct {
	root   string
	server string
	log    *slog.Logger
}

// writeVersions writes the plain-text document declaring which protocol
// sub-resources are present and at which versions.
func (w *layoutWriter) writeVersions() error {
	doc := fmt.Sprintf("pkg-server %s\n", w.server) +
		"publisher 0 1\n" +
		"versions 0\n" +
		"catalog 1\n" +
		"file 1\n" +
		"manifest 0\n" +
		"status 0\n"
	return w.writeDocument(versionsDoc, []byte(doc))
}

// writeStatus writes the repository's status document, verbatim JSON.
func (w *layoutWriter) writeStatus(ctx context.Context, repo Repository) error {
	doc, err := repo.Status(ctx)
	if err != nil {
		return fmt.Errorf("read repository status: %w", err)
	}
	return w.writeDocument(statusDoc, doc)
}

// writePublisherInfo writes the publisher list in the repository's native
// publisher interchange format, verbatim.
func (w *layoutWriter) writePublisherInfo(ctx context.Context, repo Repository) error {
	doc, err := repo.PublisherInfo(ctx)
	if err != nil {
		return fmt.Errorf("read publisher info: %w", err)
	}
	return w.writeDocument(publisherDoc, doc)
}

// writeCatalog copies a publisher's catalog.attrs and every named catalog
// part, unmodified, into <publisher>/catalog/1/.
func (w *layoutWriter) writeCatalog(publisher string, cat *Catalog) error {
	if err := w.copyFile(cat.AttrsPath, filepath.Join(publisher, "catalog", "1", "catalog.attrs")); err != nil {
		return err
	}

	names := make([]string, 0, len(cat.Parts))
	for name := range cat.Parts {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		if err := w.copyFile(cat.Parts[name], filepath.Join(publisher, "catalog", "1", name)); err != nil {
			return err
		}
	}
	return nil
}

func (w *layoutWriter) writeDocument(rel string, data []byte) error {
	if err := fileops.WriteFile(filepath.Join(w.root, rel), data); err != nil {
		return err
	}
	w.log.Info("wrote " + rel)
	return nil
}

func (w *layoutWriter) copyFile(src, rel string) error {
	if err := fileops.CopyFile(src, filepath.Join(w.root, rel)); err != nil {
		return err
	}
	w.log.Info("wrote " + rel)
	return nil
}
