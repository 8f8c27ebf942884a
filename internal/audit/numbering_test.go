package audit

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func entriesWithCodes(codes ...string) []Entry {
	out := make([]Entry, len(codes))
	for i, c := range codes {
		out[i] = Entry{Code: c}
	}
	return out
}

func TestNextCode(t *testing.T) {
	tests := []struct {
		name  string
		kind  Kind
		codes []Entry
		want  string
	}{
		{"mixed case and foreign prefix", KindAdjustment, entriesWithCodes("AA1", "AA3", "XX9", "aa2"), "AA4"},
		{"nil listing", KindAdjustment, nil, "AA1"},
		{"empty listing", KindReclassification, []Entry{}, "RC1"},
		{"only non-matching", KindReclassification, entriesWithCodes("AA7", "RC", "RC1a", "xRC2"), "RC1"},
		{"leading zeros", KindReclassification, entriesWithCodes("RC009", "rc10"), "RC11"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NextCode(tt.kind, tt.codes))
		})
	}
}

func TestNextCodeWithPrefix_QuotesPrefix(t *testing.T) {
	assert.Equal(t, "A.3", NextCodeWithPrefix("A.", []string{"A.2", "AB9"}))
}
