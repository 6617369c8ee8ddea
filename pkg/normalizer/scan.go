package normalizer

// braceIndex answers "where does the object opened at s[i] end" for every
// '{' of one line. Braces inside string literals are ignored.
//
// A scan that starts at one brace also settles every brace it opens outside
// a string, because the scan from such a brace would see exactly the same
// bytes in the same state. Results are kept, and later scans jump over
// settled objects, so a line costs a bounded number of passes however many
// unclosed braces it holds.
type braceIndex struct {
	s string

	// end maps a brace offset to the offset just past its closing '}', or
	// -1 when the object is never closed.
	end map[int]int
}

func newBraceIndex(s string) *braceIndex {
	return &braceIndex{s: s, end: make(map[int]int)}
}

// match returns the offset just past the '}' that closes the object opened
// at s[start]. ok is false when the object is never closed.
func (b *braceIndex) match(start int) (end int, ok bool) {
	if _, seen := b.end[start]; !seen {
		b.scan(start)
	}
	end = b.end[start]
	return end, end >= 0
}

func (b *braceIndex) scan(start int) {
	var open []int
	inString := false
	escaped := false

	for i := start; i < len(b.s); i++ {
		c := b.s[i]

		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}

		switch c {
		case '"':
			inString = true
		case '{':
			end, seen := b.end[i]
			if !seen {
				open = append(open, i)
				continue
			}
			if end < 0 {
				// Nothing opened before i can close either.
				b.unclosed(open)
				return
			}
			i = end - 1
		case '}':
			if len(open) == 0 {
				continue
			}
			last := len(open) - 1
			b.end[open[last]] = i + 1
			open = open[:last]
			if len(open) == 0 {
				return
			}
		}
	}

	b.unclosed(open)
}

func (b *braceIndex) unclosed(open []int) {
	for _, i := range open {
		b.end[i] = -1
	}
}
