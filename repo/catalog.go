package repo

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/pkgtools/webtree"
)

// catalogAttrs is the subset of catalog.attrs this reader consults.
type catalogAttrs struct {
	Parts   map[string]json.RawMessage `json:"parts"`
	Version int                        `json:"version"`
}

// Catalog reads a publisher's catalog: the attrs file, the named parts,
// and the package versions enumerated by the base part.
func (r *Repository) Catalog(_ context.Context, publisher string) (*webtree.Catalog, error) {
	dir := filepath.Join(r.root, "publisher", publisher, "catalog")
	attrsPath := filepath.Join(dir, "catalog.attrs")

	data, err := os.ReadFile(attrsPath)
	if err != nil {
		return nil, fmt.Errorf("read catalog attrs: %w", err)
	}
	var attrs catalogAttrs
	if err := json.Unmarshal(data, &attrs); err != nil {
		return nil, fmt.Errorf("parse %s: %w", attrsPath, err)
	}

	cat := &webtree.Catalog{
		AttrsPath: attrsPath,
		Parts:     make(map[string]string, len(attrs.Parts)),
	}
	for name := range attrs.Parts {
		p := filepath.Join(dir, name)
		if _, err := os.Stat(p); err != nil {
			return nil, fmt.Errorf("catalog part %s: %w", name, err)
		}
		cat.Parts[name] = p
	}

	base, ok := basePart(cat.Parts)
	if !ok {
		// A catalog with no base part is empty; valid, if unusual.
		return cat, nil
	}
	cat.Packages, err = readBasePart(base, publisher)
	if err != nil {
		return nil, err
	}
	return cat, nil
}

// basePart picks the catalog part that enumerates package versions.
func basePart(parts map[string]string) (string, bool) {
	if p, ok := parts["catalog.base.C"]; ok {
		return p, true
	}
	names := make([]string, 0, len(parts))
	for name := range parts {
		if strings.HasPrefix(name, "catalog.base") {
			names = append(names, name)
		}
	}
	if len(names) == 0 {
		return "", false
	}
	sort.Strings(names)
	return parts[names[0]], true
}

// readBasePart parses a base catalog part: publisher → stem → entries,
// each entry carrying a version string. Keys starting with "_" are
// signature blocks, not publishers.
func readBasePart(path, publisher string) ([]webtree.FMRI, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog part: %w", err)
	}

	var part map[string]json.RawMessage
	if err := json.Unmarshal(data, &part); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}

	var fmris []webtree.FMRI
	for pub, raw := range part {
		if strings.HasPrefix(pub, "_") || pub != publisher {
			continue
		}
		var stems map[string][]struct {
			Version string `json:"version"`
		}
		if err := json.Unmarshal(raw, &stems); err != nil {
			return nil, fmt.Errorf("parse %s: publisher %s: %w", path, pub, err)
		}
		for stem, entries := range stems {
			for _, e := range entries {
				v, err := webtree.ParseVersion(e.Version)
				if err != nil {
					return nil, fmt.Errorf("%s: package %s: %w", path, stem, err)
				}
				fmris = append(fmris, webtree.FMRI{Publisher: publisher, Name: stem, Version: v})
			}
		}
	}
	sort.Slice(fmris, func(i, j int) bool {
		return fmris[i].PackagePath() < fmris[j].PackagePath()
	})
	return fmris, nil
}
