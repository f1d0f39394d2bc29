package repo

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestQuote(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"example", "example"},
		{"system/file-system/example", "system%2Ffile-system%2Fexample"},
		{"1.0,5.11-0.1.0:20220828T120000Z", "1.0%2C5.11-0.1.0%3A20220828T120000Z"},
		{"a_b.c-d~e", "a_b.c-d~e"},
		{"sp ace", "sp%20ace"},
		{"", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, quote(tt.input), "quote(%q)", tt.input)
	}
}
