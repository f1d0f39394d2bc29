// Package testutil fabricates throwaway file-layout repositories for
// tests. The repositories it writes are structurally valid version 4
// sources: INI configuration, JSON catalogs, percent-encoded manifest
// paths, and gzip-compressed payload blobs.
package testutil

import (
	"bytes"
	"crypto/sha1" //nolint:gosec // the repository format addresses content by SHA-1
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"testing"

	"github.com/klauspost/compress/gzip"
)

// PackageSpec describes one package version in a fixture repository.
type PackageSpec struct {
	// Name is the slash-separated package stem.
	Name string

	// Version is the canonical version string,
	// e.g. "1.0,5.11-0.1.0:20220828T120000Z".
	Version string

	// Files maps delivered paths to file content. Each entry becomes a
	// file action backed by a payload blob.
	Files map[string]string

	// Licenses maps license names to license text, each becoming a
	// license action with its own payload blob.
	Licenses map[string]string

	// ExtraLines are appended to the manifest verbatim.
	ExtraLines []string
}

// PublisherSpec groups the packages of one publisher.
type PublisherSpec struct {
	Prefix   string
	Packages []PackageSpec
}

// WriteRepo materializes a version 4 file-layout repository under dir.
func WriteRepo(tb testing.TB, dir string, pubs ...PublisherSpec) {
	tb.Helper()

	if len(pubs) == 0 {
		tb.Fatal("WriteRepo needs at least one publisher")
	}

	cfg := fmt.Sprintf("[publisher]\nprefix = %s\n\n[repository]\nversion = 4\n", pubs[0].Prefix)
	mustWrite(tb, filepath.Join(dir, "pkg5.repository"), []byte(cfg))

	for _, pub := range pubs {
		writePublisher(tb, dir, pub)
	}
}

// PayloadHash returns the content hash the fixture uses for payload
// bytes: bare SHA-1 hex of the uncompressed content.
func PayloadHash(content string) string {
	sum := sha1.Sum([]byte(content)) //nolint:gosec // see package import note
	return hex.EncodeToString(sum[:])
}

func writePublisher(tb testing.TB, dir string, pub PublisherSpec) {
	tb.Helper()

	root := filepath.Join(dir, "publisher", pub.Prefix)
	stems := make(map[string][]string)

	for _, p := range pub.Packages {
		writePackage(tb, root, pub.Prefix, p)
		stems[p.Name] = append(stems[p.Name], p.Version)
	}
	writeCatalog(tb, root, pub.Prefix, stems)
}

func writePackage(tb testing.TB, root, publisher string, p PackageSpec) {
	tb.Helper()

	var manifest strings.Builder
	fmt.Fprintf(&manifest, "set name=pkg.fmri value=pkg://%s/%s@%s\n", publisher, p.Name, p.Version)

	for _, path := range sortedKeys(p.Files) {
		content := p.Files[path]
		hash := writeBlob(tb, root, content)
		fmt.Fprintf(&manifest, "file %s group=bin mode=0644 owner=root path=%s pkg.size=%d\n",
			hash, path, len(content))
	}
	for _, name := range sortedKeys(p.Licenses) {
		content := p.Licenses[name]
		hash := writeBlob(tb, root, content)
		fmt.Fprintf(&manifest, "license %s license=%s\n", hash, name)
	}
	for _, line := range p.ExtraLines {
		manifest.WriteString(line)
		manifest.WriteByte('\n')
	}

	dest := filepath.Join(root, "pkg", percentEncode(p.Name), percentEncode(p.Version))
	mustWrite(tb, dest, []byte(manifest.String()))
}

// writeBlob stores content gzip-compressed in the publisher's file store
// and returns its hash.
func writeBlob(tb testing.TB, root, content string) string {
	tb.Helper()

	hash := PayloadHash(content)
	var buf bytes.Buffer
	zw := gzip.NewWriter(&buf)
	if _, err := zw.Write([]byte(content)); err != nil {
		tb.Fatalf("compress blob: %v", err)
	}
	if err := zw.Close(); err != nil {
		tb.Fatalf("compress blob: %v", err)
	}
	mustWrite(tb, filepath.Join(root, "file", hash[:2], hash), buf.Bytes())
	return hash
}

func writeCatalog(tb testing.TB, root, publisher string, stems map[string][]string) {
	tb.Helper()

	base := map[string]any{
		publisher: basePartEntries(stems),
	}
	baseData, err := json.Marshal(base)
	if err != nil {
		tb.Fatalf("marshal catalog part: %v", err)
	}
	mustWrite(tb, filepath.Join(root, "catalog", "catalog.base.C"), baseData)

	versions := 0
	for _, vs := range stems {
		versions += len(vs)
	}
	attrs := map[string]any{
		"created":               "20220828T120000.000000Z",
		"last-modified":         "20220828T120000.000000Z",
		"package-count":         len(stems),
		"package-version-count": versions,
		"parts": map[string]any{
			"catalog.base.C": map[string]any{"last-modified": "20220828T120000.000000Z"},
		},
		"updates": map[string]any{},
		"version": 1,
	}
	attrsData, err := json.Marshal(attrs)
	if err != nil {
		tb.Fatalf("marshal catalog attrs: %v", err)
	}
	mustWrite(tb, filepath.Join(root, "catalog", "catalog.attrs"), attrsData)
}

func basePartEntries(stems map[string][]string) map[string]any {
	out := make(map[string]any, len(stems))
	for stem, versions := range stems {
		entries := make([]map[string]string, 0, len(versions))
		for _, v := range versions {
			entries = append(entries, map[string]string{"version": v})
		}
		out[stem] = entries
	}
	return out
}

// percentEncode escapes every byte outside the unreserved set, the way
// the repository format names manifest directories.
func percentEncode(s string) string {
	const upperhex = "0123456789ABCDEF"
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case 'a' <= c && c <= 'z', 'A' <= c && c <= 'Z', '0' <= c && c <= '9',
			c == '-', c == '.', c == '_', c == '~':
			b.WriteByte(c)
		default:
			b.WriteByte('%')
			b.WriteByte(upperhex[c>>4])
			b.WriteByte(upperhex[c&0x0F])
		}
	}
	return b.String()
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func mustWrite(tb testing.TB, path string, data []byte) {
	tb.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		tb.Fatalf("mkdir %s: %v", filepath.Dir(path), err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		tb.Fatalf("write %s: %v", path, err)
	}
}
