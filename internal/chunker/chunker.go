package chunker

// DefaultSegmentSize is the character threshold above which a contract is
// analyzed in multiple model calls.
const DefaultSegmentSize = 40000

// Plan splits text into an ordered, non-overlapping partition of segments,
// each at most size runes long. Concatenating the result reproduces the
// input exactly. Text no longer than size comes back as a single segment,
// and empty text produces no segments. The split is by rune count so a
// boundary never lands inside a multi-byte character.
func Plan(text string, size int) []string {
	if size <= 0 {
		size = DefaultSegmentSize
	}
	if text == "" {
		return nil
	}

	runes := []rune(text)
	if len(runes) <= size {
		return []string{text}
	}

	segments := make([]string, 0, (len(runes)+size-1)/size)
	for start := 0; start < len(runes); start += size {
		end := start + size
		if end > len(runes) {
			end = len(runes)
		}
		segments = append(segments, string(runes[start:end]))
	}
	return segments
}
