package repo

import "strings"

const upperhex = "0123456789ABCDEF"

// quote percent-encodes every byte outside the unreserved set
// (ALPHA / DIGIT / "-" / "." / "_" / "~"). This matches the encoding the
// repository format applies to manifest stem and version directory names,
// where even "/" and "," are escaped.
func quote(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		if unreserved(c) {
			b.WriteByte(c)
			continue
		}
		b.WriteByte('%')
		b.WriteByte(upperhex[c>>4])
		b.WriteByte(upperhex[c&0x0F])
	}
	return b.String()
}

func unreserved(c byte) bool {
	switch {
	case 'a' <= c && c <= 'z', 'A' <= c && c <= 'Z', '0' <= c && c <= '9':
		return true
	case c == '-' || c == '.' || c == '_' || c == '~':
		return true
	}
	return false
}
