package locator

import (
	"errors"

	"github.com/galygious/grubwatch/signature"
)

// chunkSize bounds peak memory when reading large regions. Chunks overlap by
// ValueOffset+4-1 bytes (signature plus value DWORD, minus one) so a node
// whose signature or value straddles a chunk boundary is never missed.
const chunkSize = 4 * 1024 * 1024

// scan runs a full signature scan over every readable region of b and
// returns every candidate node found, each already scored for locality.
// observe, if non-nil, is invoked once per candidate for diagnostics.
func scan(b backend, observe ObserveFunc) ([]CandidateNode, error) {
	regions, err := b.enumerateRegions()
	if err != nil {
		return nil, err
	}

	var candidates []CandidateNode
	overlap := ValueOffset + 4 - 1

	for _, region := range regions {
		if !region.Readable {
			continue
		}

		var offset uint32
		var carry []byte

		for offset < region.Size {
			readLen := region.Size - offset
			if readLen > chunkSize {
				readLen = chunkSize
			}

			buf, err := b.read(Addr32(uint32(region.Base)+offset), readLen)
			if err != nil {
				// The process itself may have exited mid-scan; that's not a
				// region-local hiccup, so it must abort the whole scan and
				// propagate rather than being swallowed like a freed region.
				if errors.Is(err, &Error{Kind: ProcessNotRunning}) {
					return nil, err
				}
				// A region that was valid at enumeration time may be freed
				// before the read; skip it and move on.
				break
			}

			window := append(carry, buf...)
			windowBase := Addr32(uint32(region.Base) + offset - uint32(len(carry)))

			for _, k := range signature.FindAll(window, NodeSignature) {
				addr := Addr32(uint32(windowBase) + uint32(k))
				candidate, ok := buildCandidate(b, region, window, k, addr)
				if !ok {
					continue
				}
				candidates = append(candidates, candidate)
				if observe != nil {
					observe(candidate)
				}
			}

			if len(buf) >= overlap {
				carry = append([]byte(nil), buf[len(buf)-overlap:]...)
			} else {
				carry = append([]byte(nil), window[max(0, len(window)-overlap):]...)
			}

			offset += uint32(len(buf))
		}
	}

	return candidates, nil
}

// buildCandidate reads the three preceding pointer-sized words and the
// value DWORD for a match at window offset k (absolute address addr),
// falling back to zero for any preceding word that can't be read, per
// spec: unavailable words are treated as zero.
func buildCandidate(b backend, region MemoryRegion, window []byte, k int, addr Addr32) (CandidateNode, bool) {
	valOff := k + ValueOffset
	if valOff+4 > len(window) {
		return CandidateNode{}, false
	}
	value := readUint32LE(window[valOff : valOff+4])

	var preceding [3]uint32
	for i, rel := range localityOffsets {
		fieldOff := k + int(rel)
		if fieldOff >= 0 && fieldOff+4 <= len(window) {
			preceding[i] = readUint32LE(window[fieldOff : fieldOff+4])
			continue
		}
		// The field falls outside the buffer we already have in hand
		// (near a region's start); try a direct read, otherwise zero.
		fieldAddr := Addr32(uint32(addr) + uint32(rel))
		if buf, err := b.read(fieldAddr, 4); err == nil {
			preceding[i] = readUint32LE(buf)
		}
	}

	score := computeScore(addr, preceding)

	return CandidateNode{
		Address:   addr,
		Preceding: preceding,
		Value:     value,
		Score:     score,
	}, true
}

func readUint32LE(b []byte) uint32 {
	return uint32(b[0]) | uint32(b[1])<<8 | uint32(b[2])<<16 | uint32(b[3])<<24
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}

// filterByMaxValue drops candidates above a caller-supplied plausibility
// ceiling. It is never applied unless a Locator opts in.
func filterByMaxValue(candidates []CandidateNode, max uint32) []CandidateNode {
	var kept []CandidateNode
	for _, c := range candidates {
		if c.Value <= max {
			kept = append(kept, c)
		}
	}
	return kept
}

// Select applies the locality-then-value selection rule to a set of
// candidates: discard everything below the maximum locality score present,
// then among survivors pick the largest value, breaking ties by the lowest
// address.
func Select(candidates []CandidateNode) (CandidateNode, bool) {
	if len(candidates) == 0 {
		return CandidateNode{}, false
	}

	best := LocalityScore(-1)
	for _, c := range candidates {
		if c.Score > best {
			best = c.Score
		}
	}

	var survivors []CandidateNode
	for _, c := range candidates {
		if c.Score == best {
			survivors = append(survivors, c)
		}
	}

	winner := survivors[0]
	for _, c := range survivors[1:] {
		if c.Value > winner.Value || (c.Value == winner.Value && c.Address < winner.Address) {
			winner = c
		}
	}
	return winner, true
}
