package id

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDigest(t *testing.T) {
	a := Digest("Coffee", "3.50", "Food", "2024-01-02")
	b := Digest("Coffee", "3.50", "Food", "2024-01-02")
	c := Digest("Coffee", "3.50", "Food", "2024-01-03")

	assert.Len(t, a, DigestLen)
	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)

	// Field boundaries matter.
	assert.NotEqual(t, Digest("ab", "c"), Digest("a", "bc"))
}

func TestFormatRecordID(t *testing.T) {
	tests := []struct {
		digest     string
		occurrence int
		want       string
	}{
		{"3fa2c01b9d", 1, "3fa2c01b9d"},
		{"3fa2c01b9d", 0, "3fa2c01b9d"},
		{"3fa2c01b9d", 2, "3fa2c01b9d-2"},
		{"3fa2c01b9d", 12, "3fa2c01b9d-12"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, FormatRecordID(tt.digest, tt.occurrence))
	}
}

func TestParseRecordID(t *testing.T) {
	tests := []struct {
		input      string
		digest     string
		occurrence int
	}{
		{"3fa2c01b9d", "3fa2c01b9d", 1},
		{"3fa2c01b9d-2", "3fa2c01b9d", 2},
		{"0000000000-10", "0000000000", 10},
	}
	for _, tt := range tests {
		d, occ, err := ParseRecordID(tt.input)
		require.NoError(t, err, "input: %s", tt.input)
		assert.Equal(t, tt.digest, d)
		assert.Equal(t, tt.occurrence, occ)
	}
}

func TestParseRecordID_Errors(t *testing.T) {
	badInputs := []string{
		"",
		"short",
		"3fa2c01b9dzz",
		"zzzzzzzzzz",
		"3fa2c01b9d-",
		"3fa2c01b9d-1",
		"3fa2c01b9d-x",
	}
	for _, input := range badInputs {
		_, _, err := ParseRecordID(input)
		assert.Error(t, err, "expected error for input: %s", input)
	}
}

func TestAssignerNumbersDuplicates(t *testing.T) {
	a := NewAssigner()
	first := a.Next("Coffee", "3.00", "Food", "2024-01-02")
	other := a.Next("Tea", "2.00", "Food", "2024-01-02")
	second := a.Next("Coffee", "3.00", "Food", "2024-01-02")

	assert.Len(t, first, DigestLen)
	assert.Equal(t, first+"-2", second)
	assert.NotEqual(t, first, other)
}
