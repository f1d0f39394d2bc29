// Package fileops provides atomic file placement for the output tree.
//
// Files are written to a temporary file in the destination directory,
// then renamed to the final path. A reader never observes a truncated or
// half-copied file: either the destination does not exist, or it is a
// complete copy. The temp file lives on the same volume as the
// destination so the final rename is atomic.
package fileops

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"
)

// CopyFile copies src to dest atomically, creating parent directories as
// needed and preserving the source's modification time.
func CopyFile(src, dest string) error {
	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("open %s: %w", src, err)
	}
	defer in.Close()

	info, err := in.Stat()
	if err != nil {
		return fmt.Errorf("stat %s: %w", src, err)
	}

	return commit(dest, info.ModTime(), func(tmp *os.File) error {
		if _, err := io.Copy(tmp, in); err != nil {
			return fmt.Errorf("copy %s: %w", src, err)
		}
		return nil
	})
}

// WriteFile writes data to dest atomically, creating parent directories
// as needed.
func WriteFile(dest string, data []byte) error {
	return commit(dest, time.Time{}, func(tmp *os.File) error {
		if _, err := tmp.Write(data); err != nil {
			return fmt.Errorf("write %s: %w", dest, err)
		}
		return nil
	})
}

// commit creates a temp file next to dest, fills it with write, applies
// mtime when non-zero, and renames it into place. The temp file is
// removed on every failure path.
func commit(dest string, mtime time.Time, write func(*os.File) error) error {
	dir := filepath.Dir(dest)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create directory %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, ".webtree-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	discard := func() {
		_ = os.Remove(tmpPath) //nolint:errcheck // best-effort cleanup
	}

	if err := write(tmp); err != nil {
		tmp.Close()
		discard()
		return err
	}
	if err := tmp.Close(); err != nil {
		discard()
		return fmt.Errorf("close temp file: %w", err)
	}

	if !mtime.IsZero() {
		if err := os.Chtimes(tmpPath, mtime, mtime); err != nil {
			discard()
			return fmt.Errorf("chtimes: %w", err)
		}
	}

	if err := os.Rename(tmpPath, dest); err != nil {
		discard()
		return fmt.Errorf("rename to %s: %w", dest, err)
	}
	return nil
}
