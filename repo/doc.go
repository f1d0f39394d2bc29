// Package repo reads pkg(7) file-layout repositories (version 4).
//
// It is the read-only collaborator behind a webtree export: it never
// mutates the source repository, and [Open] is the required one-time
// initialization before any other call. The on-disk layout it understands:
//
//	pkg5.repository                          repository configuration
//	publisher/<prefix>/catalog/catalog.attrs catalog metadata
//	publisher/<prefix>/catalog/<part>        catalog parts
//	publisher/<prefix>/pkg/<stem>/<version>  manifests (percent-encoded names)
//	publisher/<prefix>/file/<xx>/<hash>      gzip-compressed payload blobs
package repo
