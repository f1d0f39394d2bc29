// Package webtree converts an IPS package repository into a self-contained
// static directory tree that any ordinary file-serving HTTP server can
// publish, with no repository access or server-side logic at serve time.
//
// The engine walks a read-only [Repository], computes the URL-routable
// destination layout expected by pkg(7) clients, and materializes it with
// atomic per-file writes and content-addressed blob deduplication. The
// whole export is all-or-nothing: a failure partway through removes the
// output root entirely.
//
// # Quick Start
//
// Export a file-layout repository:
//
//	src, err := repo.Open("/export/repo")
//	if err != nil {
//	    return err
//	}
//	err = webtree.Build(ctx, src, "/var/www/pkg",
//	    webtree.BuildWithLogger(logger),
//	)
//
// The resulting tree answers the pkg(7) depot protocol endpoints
// (versions, status, publisher, catalog, manifest, file) as plain files.
// Manifests are reachable both at their slash-delimited canonical path and
// at a percent-encoded single-segment alias, so clients may request either
// form.
package webtree
