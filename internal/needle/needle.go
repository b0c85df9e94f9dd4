// Package needle finds occurrences of a fixed set of terms in running text.
package needle

// Gap is the ID of a Needle that covers text no pattern matched.
const Gap = -1

// Needle is one piece of a scanned haystack: either a gap (ID == Gap) or a
// match of patterns[ID]. Start and Length count runes, not bytes.
type Needle struct {
	ID     int
	Start  int
	Length int
}

// IsGap reports whether n covers unmatched text.
func (n Needle) IsGap() bool { return n.ID == Gap }

// Text returns the runes of haystack covered by n.
func (n Needle) Text(haystack []rune) string {
	return string(haystack[n.Start : n.Start+n.Length])
}

// Find splits haystack into an ordered sequence of gaps and pattern matches.
//
// Every pattern keeps a running count of how many of its leading runes the
// current text has matched. When a rune does not continue a pattern, that
// count drops to zero without re-testing the rune against the pattern's
// first rune. Patterns are tried in the order given; the first one to
// complete wins and all partial progress is discarded.
func Find(patterns []string, haystack string) []Needle {
	pats := make([][]rune, len(patterns))
	for i, p := range patterns {
		pats[i] = []rune(p)
	}
	counts := make([]int, len(pats))

	var needles []Needle
	consumed := 0
	ic := 0
	for _, c := range haystack {
		consumed++
		for i, p := range pats {
			if len(p) == 0 {
				continue
			}
			if c != p[counts[i]] {
				counts[i] = 0
				continue
			}
			counts[i]++
			if counts[i] < len(p) {
				continue
			}
			if consumed > len(p) {
				needles = append(needles, Needle{ID: Gap, Start: ic + 1 - consumed, Length: consumed - len(p)})
			}
			needles = append(needles, Needle{ID: i, Start: ic + 1 - len(p), Length: len(p)})
			clear(counts)
			consumed = 0
			break
		}
		ic++
	}
	if consumed > 0 {
		needles = append(needles, Needle{ID: Gap, Start: ic - consumed, Length: consumed})
	}
	return needles
}
