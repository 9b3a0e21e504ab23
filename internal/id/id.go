// Package id derives surrogate record identifiers from row content.
//
// The ledger header is a fixed contract, so IDs are not stored. A record's
// ID is the first DigestLen hex characters of the SHA-256 of its canonical
// row, plus a "-N" occurrence suffix for the Nth identical row (N >= 2).
package id

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"
)

// DigestLen is the number of hex characters kept from the row hash.
const DigestLen = 10

// Digest hashes the canonical field values of a row.
func Digest(fields ...string) string {
	h := sha256.New()
	for i, f := range fields {
		if i > 0 {
			h.Write([]byte{0x1f}) // unit separator
		}
		h.Write([]byte(f))
	}
	return hex.EncodeToString(h.Sum(nil))[:DigestLen]
}

// FormatRecordID returns "3fa2c01b9d" for occurrence 1 and "3fa2c01b9d-2" for later ones.
func FormatRecordID(digest string, occurrence int) string {
	if occurrence <= 1 {
		return digest
	}
	return fmt.Sprintf("%s-%d", digest, occurrence)
}

// ParseRecordID splits a record ID into its digest and occurrence.
func ParseRecordID(id string) (digest string, occurrence int, err error) {
	digest, suffix, hasSuffix := strings.Cut(id, "-")
	if len(digest) != DigestLen {
		return "", 0, fmt.Errorf("invalid record ID %q: digest must be %d characters", id, DigestLen)
	}
	if _, err := hex.DecodeString(digest); err != nil {
		return "", 0, fmt.Errorf("invalid record ID %q: digest is not hex", id)
	}
	if !hasSuffix {
		return digest, 1, nil
	}
	occurrence, err = strconv.Atoi(suffix)
	if err != nil || occurrence < 2 {
		return "", 0, fmt.Errorf("invalid occurrence in record ID %q", id)
	}
	return digest, occurrence, nil
}

// Assigner hands out IDs for rows in file order, numbering duplicates.
type Assigner struct {
	seen map[string]int
}

// NewAssigner creates an Assigner for one pass over a ledger.
func NewAssigner() *Assigner {
	return &Assigner{seen: make(map[string]int)}
}

// Next returns the ID for the next row with the given canonical fields.
func (a *Assigner) Next(fields ...string) string {
	d := Digest(fields...)
	a.seen[d]++
	return FormatRecordID(d, a.seen[d])
}
