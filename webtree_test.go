package webtree_test

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pkgtools/webtree"
	"github.com/pkgtools/webtree/internal/testutil"
	"github.com/pkgtools/webtree/repo"
)

// TestExportFileRepository drives the full pipeline: fabricate a
// file-layout repository on disk, open it read-only, and export it.
func TestExportFileRepository(t *testing.T) {
	srcDir := t.TempDir()
	testutil.WriteRepo(t, srcDir, testutil.PublisherSpec{
		Prefix: "example.com",
		Packages: []testutil.PackageSpec{
			{
				Name:    "system/file-system/example",
				Version: "1.0,5.11-0.1.0:20220828T120000Z",
				Files:   map[string]string{"usr/bin/foo": "#!/bin/sh\necho foo\n"},
			},
		},
	})

	src, err := repo.Open(srcDir)
	require.NoError(t, err)

	dest := filepath.Join(t.TempDir(), "web_root")
	require.NoError(t, webtree.Build(context.Background(), src, dest, webtree.BuildWithVerify(true)))

	manifestDir := filepath.Join(dest, "example.com", "manifest", "0")
	canonical := filepath.Join(manifestDir, "system", "file-system", "example@1.0,5.11-0.1.0:20220828T120000Z")
	alias := filepath.Join(manifestDir, "system%2Ffile-system%2Fexample@1.0,5.11-0.1.0:20220828T120000Z")

	canonicalData, err := os.ReadFile(canonical)
	require.NoError(t, err)
	aliasData, err := os.ReadFile(alias)
	require.NoError(t, err)
	assert.Equal(t, canonicalData, aliasData)

	hash := testutil.PayloadHash("#!/bin/sh\necho foo\n")
	assert.FileExists(t, filepath.Join(dest, "example.com", "file", "1", hash))

	for _, rel := range []string{
		"versions/0/index.html",
		"status/0/index.html",
		"publisher/0/index.html",
		"example.com/catalog/1/catalog.attrs",
		"example.com/catalog/1/catalog.base.C",
	} {
		assert.FileExists(t, filepath.Join(dest, filepath.FromSlash(rel)))
	}
}

// Two exports of the same unmodified repository must produce
// byte-identical trees.
func TestExportDeterministic(t *testing.T) {
	srcDir := t.TempDir()
	testutil.WriteRepo(t, srcDir, testutil.PublisherSpec{
		Prefix: "example.com",
		Packages: []testutil.PackageSpec{
			{
				Name:     "example",
				Version:  "1.0,5.11-0.1.0:20220828T120000Z",
				Files:    map[string]string{"usr/bin/example": "exec foo\n", "etc/example.conf": "x=1\n"},
				Licenses: map[string]string{"example": "do as you like\n"},
			},
			{
				Name:    "web/server/nginx",
				Version: "1.20-0.1.0:20220828T120000Z",
				Files:   map[string]string{"usr/sbin/nginx": "binary\n"},
			},
		},
	})

	src, err := repo.Open(srcDir)
	require.NoError(t, err)

	destA := filepath.Join(t.TempDir(), "a")
	destB := filepath.Join(t.TempDir(), "b")
	require.NoError(t, webtree.Build(context.Background(), src, destA))
	require.NoError(t, webtree.Build(context.Background(), src, destB))

	assert.Equal(t, snapshot(t, destA), snapshot(t, destB))
}

func snapshot(t *testing.T, root string) map[string]string {
	t.Helper()
	snap := make(map[string]string)
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		switch {
		case d.Type()&fs.ModeSymlink != 0:
			target, err := os.Readlink(path)
			if err != nil {
				return err
			}
			snap[rel] = "symlink:" + target
		case d.IsDir():
			snap[rel] = "dir/"
		default:
			data, err := os.ReadFile(path)
			if err != nil {
				return err
			}
			snap[rel] = "file:" + string(data)
		}
		return nil
	})
	require.NoError(t, err)
	return snap
}
