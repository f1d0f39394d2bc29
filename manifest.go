package webtree

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
)

// Action is one entry in a package manifest. Only "file" and "license"
// actions carry a content payload; for those, Hash is the content hash of
// the payload blob.
type Action struct {
	// Kind is the action type: "file", "license", "dir", "link",
	// "depend", "set", ...
	Kind string

	// Hash is the payload hash for file and license actions, taken from
	// the positional slot or the hash attribute. Empty otherwise, and
	// for hashless payloads declared as NOHASH.
	Hash string

	// Attrs holds the action's key=value attributes. Multi-valued keys
	// keep the last value; the exporter only consults single-valued keys.
	Attrs map[string]string
}

// HasPayload reports whether the action references a content blob.
func (a Action) HasPayload() bool {
	return a.Hash != ""
}

// payloadKinds are the action types that may carry a content blob.
var payloadKinds = map[string]bool{
	"file":    true,
	"license": true,
}

// ParseManifest reads a manifest and returns its actions in file order.
//
// Manifests are line oriented: one action per line, the action type first,
// then an optional positional hash, then key=value attributes.
// Blank lines and lines starting with "#" are ignored.
func ParseManifest(r io.Reader) ([]Action, error) {
	var actions []Action
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	line := 0
	for scanner.Scan() {
		line++
		text := strings.TrimSpace(scanner.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}
		a, err := parseAction(text)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		actions = append(actions, a)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return actions, nil
}

// ParseManifestFile reads and parses the manifest at path.
func ParseManifestFile(path string) ([]Action, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	actions, err := ParseManifest(f)
	if err != nil {
		return nil, fmt.Errorf("parse manifest %s: %w", path, err)
	}
	return actions, nil
}

// parseAction parses one manifest line.
func parseAction(line string) (Action, error) {
	tokens, err := splitTokens(line)
	if err != nil {
		return Action{}, err
	}
	if len(tokens) == 0 {
		return Action{}, fmt.Errorf("empty action")
	}

	a := Action{Kind: tokens[0], Attrs: make(map[string]string)}
	rest := tokens[1:]

	// A positional token without "=" directly after the type is a
	// content hash. For payload kinds it names the payload blob; other
	// kinds may carry one too (signature actions hash their certificate)
	// but it never drives a blob export. NOHASH marks a payload
	// delivered without content.
	if len(rest) > 0 && !strings.Contains(rest[0], "=") {
		if payloadKinds[a.Kind] && rest[0] != "NOHASH" {
			a.Hash = rest[0]
		}
		rest = rest[1:]
	}

	for _, tok := range rest {
		k, v, ok := strings.Cut(tok, "=")
		if !ok || k == "" {
			return Action{}, fmt.Errorf("malformed attribute %q in %s action", tok, a.Kind)
		}
		a.Attrs[k] = v
	}

	// Payload actions may name their blob in a hash attribute instead of
	// the positional slot.
	if payloadKinds[a.Kind] && a.Hash == "" {
		if h := a.Attrs["hash"]; h != "" && h != "NOHASH" {
			a.Hash = h
		}
	}
	return a, nil
}

// splitTokens splits a manifest line on spaces, honoring double-quoted
// values and backslash escapes inside them.
func splitTokens(line string) ([]string, error) {
	var tokens []string
	var cur strings.Builder
	inQuote := false
	escaped := false
	flushed := true

	for _, r := range line {
		switch {
		case escaped:
			cur.WriteRune(r)
			escaped = false
		case r == '\\' && inQuote:
			escaped = true
		case r == '"':
			inQuote = !inQuote
			flushed = false
		case (r == ' ' || r == '\t') && !inQuote:
			if !flushed || cur.Len() > 0 {
				tokens = append(tokens, cur.String())
				cur.Reset()
				flushed = true
			}
		default:
			cur.WriteRune(r)
			flushed = false
		}
	}
	if inQuote {
		return nil, fmt.Errorf("unterminated quote")
	}
	if !flushed || cur.Len() > 0 {
		tokens = append(tokens, cur.String())
	}
	return tokens, nil
}
