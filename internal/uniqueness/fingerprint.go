package uniqueness

import (
	"strconv"

	"github.com/cespare/xxhash/v2"
)

// Fingerprint returns a stable hex fingerprint of text for exact-duplicate
// detection. No normalization is applied: the check is meant to catch
// copy-paste duplicates, not near-duplicates. The empty string maps to a
// stable value like any other input.
func Fingerprint(text string) string {
	return strconv.FormatUint(xxhash.Sum64String(text), 16)
}
