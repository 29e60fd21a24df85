// Package checksum fingerprints dataset files and compares them against the
// fingerprints already indexed.
package checksum

import (
	"crypto/sha256"
	"encoding/hex"
	"sort"
)

// Sum returns the hex-encoded SHA-256 digest of data.
func Sum(data []byte) string {
	h := sha256.Sum256(data)
	return hex.EncodeToString(h[:])
}

// Diff compares the checksums found on disk with those recorded in the index,
// both keyed by relative path. changed lists paths that are new or whose
// content differs; removed lists indexed paths no longer on disk. Both are
// sorted.
func Diff(disk, indexed map[string]string) (changed, removed []string) {
	for p, sum := range disk {
		if indexed[p] != sum {
			changed = append(changed, p)
		}
	}
	for p := range indexed {
		if _, ok := disk[p]; !ok {
			removed = append(removed, p)
		}
	}
	sort.Strings(changed)
	sort.Strings(removed)
	return changed, removed
}
