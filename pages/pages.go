// Package pages slices content lines into fixed-size pages, splits a page
// into near-equal fragments, and chooses where in a host document those
// fragments should be inserted.
package pages

import "math"

// ProtectedPrefix is the number of leading host lines that never receive an
// insertion, keeping shebang/encoding/header lines undisturbed.
const ProtectedPrefix = 3

// Page returns the lines of the given page. An index past the available
// content yields an empty slice; range checking is the caller's concern.
func Page(lines []string, index int, size int) []string {
	start := index * size
	if start >= len(lines) {
		return nil
	}
	end := min(start+size, len(lines))
	return lines[start:end]
}

// Split divides lines into k ordered parts whose lengths differ by at most
// one. The first len(lines)%k parts receive the extra line. Parts may be
// empty when there are fewer lines than parts.
func Split(lines []string, k int) [][]string {
	n := len(lines)
	base := n / k
	rem := n % k
	out := make([][]string, 0, k)
	idx := 0
	for i := 0; i < k; i++ {
		take := base
		if i < rem {
			take++
		}
		out = append(out, lines[idx:idx+take])
		idx += take
	}
	return out
}

// TotalPages returns the page count for the given content length, never
// less than one.
func TotalPages(lineCount int, pageSize int) int {
	return max(1, (lineCount+pageSize-1)/pageSize)
}

// Offsets chooses k insertion offsets into [0, hostLineCount], spaced
// evenly beyond the protected prefix and non-decreasing. With k == 1, or a
// document too short to leave room after the prefix, every fragment goes to
// the end of the document. The result always has k entries for k >= 1.
func Offsets(hostLineCount int, k int) []int {
	if k <= 1 {
		return []int{hostLineCount}
	}
	protected := min(ProtectedPrefix, hostLineCount)
	offsets := make([]int, k)
	if hostLineCount <= protected+1 {
		for i := range offsets {
			offsets[i] = hostLineCount
		}
		return offsets
	}
	step := float64(hostLineCount-protected) / float64(k+1)
	last := protected
	for i := range offsets {
		pos := protected + int(math.Round(step*float64(i+1)))
		pos = max(pos, last)
		pos = min(pos, hostLineCount)
		offsets[i] = pos
		last = pos
	}
	return offsets
}
