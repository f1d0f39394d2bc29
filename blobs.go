package webtree

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/pkgtools/webtree/internal/fileops"
)

// blobRegistry materializes content-addressed blobs into one publisher's
// file store, copying each hash at most once per export.
//
// Presence is a filesystem existence test at the destination, not an
// in-memory set, so a destination that already holds a blob is treated as
// satisfied. The blob directory itself appears lazily: nothing is created
// until the first payload-bearing action actually contributes a blob.
type blobRegistry struct {
	dir    string
	verify bool

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func newBlobRegistry(dir string, verify bool) *blobRegistry {
	return &blobRegistry{dir: dir, verify: verify, locks: make(map[string]*sync.Mutex)}
}

// resolveFunc maps a content hash to its source file path.
type resolveFunc func(ctx context.Context, hash string) (string, error)

// ensure places the blob for hash at its destination unless it is already
// there. It reports whether a copy happened. Concurrent calls for the
// same hash are linearized by a per-hash lock, so the existence check and
// the copy cannot interleave.
func (r *blobRegistry) ensure(ctx context.Context, hash string, resolve resolveFunc) (bool, error) {
	lock := r.lockFor(hash)
	lock.Lock()
	defer lock.Unlock()

	dest := filepath.Join(r.dir, hash)
	switch _, err := os.Lstat(dest); {
	case err == nil:
		return false, nil
	case !errors.Is(err, fs.ErrNotExist):
		return false, fmt.Errorf("stat blob %s: %w", hash, err)
	}

	src, err := resolve(ctx, hash)
	if err != nil {
		return false, err
	}
	if r.verify {
		if err := verifyPayload(src, hash); err != nil {
			return false, err
		}
	}
	if err := fileops.CopyFile(src, dest); err != nil {
		return false, fmt.Errorf("blob %s: %w", hash, err)
	}
	return true, nil
}

func (r *blobRegistry) lockFor(hash string) *sync.Mutex {
	r.mu.Lock()
	defer r.mu.Unlock()
	lock, ok := r.locks[hash]
	if !ok {
		lock = &sync.Mutex{}
		r.locks[hash] = lock
	}
	return lock
}
