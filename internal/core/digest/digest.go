// Package digest computes the content hash used for page change detection
package digest

import (
	"crypto/md5"
	"encoding/hex"
)

// Size is the length of a hex digest returned by Sum
const Size = md5.Size * 2

// Sum returns the lowercase hex md5 of b
// md5 is a change detector here, not a security primitive
func Sum(b []byte) string {
	h := md5.Sum(b)
	return hex.EncodeToString(h[:])
}

// Changed reports whether a freshly computed hash differs from a stored one
// an empty known hash means the page was never seen
func Changed(known, current string) bool {
	return known == "" || known != current
}
