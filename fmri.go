package webtree

import (
	"fmt"
	"strings"
)

// Version is a structured IPS package version: release, build release,
// branch, and timestamp. Its string form is
// "release[,build][-branch][:timestamp]".
type Version struct {
	Release   string
	Build     string
	Branch    string
	Timestamp string
}

// String renders the version in its canonical form.
func (v Version) String() string {
	var b strings.Builder
	b.WriteString(v.Release)
	if v.Build != "" {
		b.WriteByte(',')
		b.WriteString(v.Build)
	}
	if v.Branch != "" {
		b.WriteByte('-')
		b.WriteString(v.Branch)
	}
	if v.Timestamp != "" {
		b.WriteByte(':')
		b.WriteString(v.Timestamp)
	}
	return b.String()
}

// ParseVersion parses a canonical version string.
func ParseVersion(s string) (Version, error) {
	if s == "" {
		return Version{}, fmt.Errorf("%w: empty version", ErrInvalidFMRI)
	}
	// Each separator, when present, must introduce a non-empty
	// component, so String() is the exact inverse of parsing.
	orig := s
	var v Version
	if i := strings.IndexByte(s, ':'); i >= 0 {
		if v.Timestamp = s[i+1:]; v.Timestamp == "" {
			return Version{}, fmt.Errorf("%w: empty timestamp in version %q", ErrInvalidFMRI, orig)
		}
		s = s[:i]
	}
	if i := strings.IndexByte(s, '-'); i >= 0 {
		if v.Branch = s[i+1:]; v.Branch == "" {
			return Version{}, fmt.Errorf("%w: empty branch in version %q", ErrInvalidFMRI, orig)
		}
		s = s[:i]
	}
	if i := strings.IndexByte(s, ','); i >= 0 {
		if v.Build = s[i+1:]; v.Build == "" {
			return Version{}, fmt.Errorf("%w: empty build in version %q", ErrInvalidFMRI, orig)
		}
		s = s[:i]
	}
	if s == "" {
		return Version{}, fmt.Errorf("%w: version has no release", ErrInvalidFMRI)
	}
	v.Release = s
	return v, nil
}

// FMRI is a fault-managed resource identifier: the structured, versioned
// name of one package version, optionally qualified by its publisher.
type FMRI struct {
	// Publisher is the owning publisher prefix. May be empty for
	// publisher-relative identifiers.
	Publisher string

	// Name is the slash-separated package name, e.g.
	// "system/file-system/example".
	Name string

	Version Version
}

// ParseFMRI parses "name@version", "pkg:/name@version", or
// "pkg://publisher/name@version".
func ParseFMRI(s string) (FMRI, error) {
	var f FMRI
	rest := s
	switch {
	case strings.HasPrefix(rest, "pkg://"):
		rest = rest[len("pkg://"):]
		i := strings.IndexByte(rest, '/')
		if i <= 0 {
			return FMRI{}, fmt.Errorf("%w: missing publisher in %q", ErrInvalidFMRI, s)
		}
		f.Publisher = rest[:i]
		rest = rest[i+1:]
	case strings.HasPrefix(rest, "pkg:/"):
		rest = rest[len("pkg:/"):]
	}

	at := strings.LastIndexByte(rest, '@')
	if at <= 0 {
		return FMRI{}, fmt.Errorf("%w: missing version in %q", ErrInvalidFMRI, s)
	}
	v, err := ParseVersion(rest[at+1:])
	if err != nil {
		return FMRI{}, fmt.Errorf("%w: bad version in %q", ErrInvalidFMRI, s)
	}
	f.Name = rest[:at]
	f.Version = v
	return f, nil
}

// String renders the fully qualified FMRI, including the pkg scheme and
// the publisher when present.
func (f FMRI) String() string {
	if f.Publisher != "" {
		return "pkg://" + f.Publisher + "/" + f.PackagePath()
	}
	return "pkg:/" + f.PackagePath()
}

// PackagePath renders the publisher-relative, scheme-free form
// "name@version". Slash-separated name segments become directories when
// the path is materialized on disk.
func (f FMRI) PackagePath() string {
	return f.Name + "@" + f.Version.String()
}

// EncodedPath is PackagePath with every "/" replaced by the literal
// three-character sequence "%2F", collapsing the path to a single
// segment. It is derived by textual substitution from PackagePath so the
// two renderings can never drift apart.
func (f FMRI) EncodedPath() string {
	return strings.ReplaceAll(f.PackagePath(), "/", "%2F")
}
