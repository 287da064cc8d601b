package core

import (
	"crypto/sha256"
	"encoding/hex"
	"strconv"
	"strings"
)

// Hash represents a cryptographic hash
type Hash string

// NewHash creates a new hash from data
func NewHash(data []byte) Hash {
	sum := sha256.Sum256(data)
	return Hash(hex.EncodeToString(sum[:]))
}

// String returns the string representation
func (h Hash) String() string {
	return string(h)
}

// InputHash fingerprints the numeric inputs of an analysis
type InputHash Hash

func (h InputHash) String() string { return Hash(h).String() }

// ComputeInputHash hashes values in order using their shortest exact
// decimal form, so identical inputs always produce identical fingerprints.
func ComputeInputHash(values ...float64) InputHash {
	var data strings.Builder
	for i, v := range values {
		if i > 0 {
			data.WriteByte('|')
		}
		data.WriteString(strconv.FormatFloat(v, 'g', -1, 64))
	}
	return InputHash(NewHash([]byte(data.String())))
}
