package core

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sort"
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

// RunFingerprint hashes the inputs that determine a run's numerical outcome:
// the configuration snapshot, the run seed and the ordered galaxy sample.
// Identical fingerprints must yield identical result tables.
func RunFingerprint(configSnapshot string, seed int64, galaxies []GalaxyID) Hash {
	names := make([]string, len(galaxies))
	for i, g := range galaxies {
		names[i] = g.String()
	}
	sort.Strings(names)

	var b strings.Builder
	b.WriteString(configSnapshot)
	b.WriteString(fmt.Sprintf("|seed=%d|", seed))
	b.WriteString(strings.Join(names, ","))
	return NewHash([]byte(b.String()))
}
