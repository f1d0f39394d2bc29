package webtree

import (
	"crypto/sha1" //nolint:gosec // the repository format addresses content by SHA-1
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/klauspost/compress/gzip"
	"github.com/opencontainers/go-digest"
)

// verifyPayload checks that the stored payload at src hashes to want.
// Stored payloads are gzip-compressed; hashes name the uncompressed
// content. Bare hex values use SHA-1, the format's historical default;
// algorithm-prefixed values ("sha256:...") go through go-digest.
func verifyPayload(src, want string) error {
	f, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("open payload for %s: %w", want, err)
	}
	defer f.Close()

	zr, err := gzip.NewReader(f)
	if err != nil {
		return fmt.Errorf("%w: payload %s is not gzip data: %v", ErrPayloadMismatch, want, err)
	}
	defer zr.Close()

	if strings.Contains(want, ":") {
		d, err := digest.Parse(want)
		if err != nil {
			return fmt.Errorf("%w: unparseable digest %q: %v", ErrPayloadMismatch, want, err)
		}
		if !d.Algorithm().Available() {
			return fmt.Errorf("%w: unsupported digest algorithm in %q", ErrPayloadMismatch, want)
		}
		verifier := d.Verifier()
		if _, err := io.Copy(verifier, zr); err != nil {
			return fmt.Errorf("read payload for %s: %w", want, err)
		}
		if !verifier.Verified() {
			return fmt.Errorf("%w: payload does not match %s", ErrPayloadMismatch, want)
		}
		return nil
	}

	h := sha1.New() //nolint:gosec // see package import note
	if _, err := io.Copy(h, zr); err != nil {
		return fmt.Errorf("read payload for %s: %w", want, err)
	}
	if got := hex.EncodeToString(h.Sum(nil)); got != want {
		return fmt.Errorf("%w: payload hashes to %s, want %s", ErrPayloadMismatch, got, want)
	}
	return nil
}
