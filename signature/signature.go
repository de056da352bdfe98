// Package signature implements the byte-signature matcher shared by the
// save decoder and the live memory scanner: a linear scan that reports every
// offset at which a fixed byte pattern occurs, including overlapping hits.
package signature

// FindAll returns every start offset in haystack at which needle occurs.
// Overlapping occurrences are each reported; no alignment is assumed.
func FindAll(haystack, needle []byte) []int {
	var offsets []int
	if len(needle) == 0 || len(haystack) < len(needle) {
		return offsets
	}
	for i := 0; i <= len(haystack)-len(needle); i++ {
		match := true
		for j := range needle {
			if haystack[i+j] != needle[j] {
				match = false
				break
			}
		}
		if match {
			offsets = append(offsets, i)
		}
	}
	return offsets
}
