package core

import (
	"crypto/sha256"
	"encoding/hex"
	"sort"
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

// IsEmpty checks if the hash is empty
func (h Hash) IsEmpty() bool {
	return h == ""
}

// Equals checks if two hashes are equal
func (h Hash) Equals(other Hash) bool {
	return h == other
}

// Domain-specific hash types
type (
	SampleHash    Hash
	StructureHash Hash
)

func (h SampleHash) String() string    { return Hash(h).String() }
func (h StructureHash) String() string { return Hash(h).String() }

func (h SampleHash) Equals(other SampleHash) bool { return h == other }

// ComputeSampleHash fingerprints a sample table independent of column order
func ComputeSampleHash(columns []string, codes map[string][]int) SampleHash {
	names := append([]string(nil), columns...)
	sort.Strings(names)

	var data strings.Builder
	for _, name := range names {
		data.WriteString(name)
		data.WriteByte(0)
		for _, code := range codes[name] {
			data.WriteString(strconv.Itoa(code))
			data.WriteByte(',')
		}
		data.WriteByte('\n')
	}
	return SampleHash(NewHash([]byte(data.String())))
}

// ComputeStructureHash fingerprints an ordered edge list
func ComputeStructureHash(edges [][2]string) StructureHash {
	var data strings.Builder
	for _, e := range edges {
		data.WriteString(e[0])
		data.WriteString("->")
		data.WriteString(e[1])
		data.WriteByte('\n')
	}
	return StructureHash(NewHash([]byte(data.String())))
}
