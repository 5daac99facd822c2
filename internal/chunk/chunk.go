// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Passage Contributors

// Package chunk splits raw document text into overlapping, boundary-aware
// segments sized for embedding. Sizes are measured in characters (runes),
// never bytes, so multi-byte text is always cut on valid boundaries.
package chunk

// Default sizes approximate 512 embedding tokens per segment with 50 tokens
// of overlap, at roughly four characters per token.
const (
	DefaultSize    = 2048
	DefaultOverlap = 200
)

// Config controls segment sizing.
type Config struct {
	// Size is the target segment length in characters.
	Size int
	// Overlap is the number of trailing characters repeated at the start of
	// the next segment. Must be smaller than Size.
	Overlap int
}

// DefaultConfig returns the standard chunking configuration.
func DefaultConfig() Config {
	return Config{Size: DefaultSize, Overlap: DefaultOverlap}
}

// Segment is a contiguous piece of a source text. Ordinal is the segment's
// zero-based position within its source.
type Segment struct {
	Text    string
	Ordinal int
}

// Split cuts text into overlapping segments of at most cfg.Size characters.
// Text no longer than cfg.Size (including empty text) yields exactly one
// segment equal to the input. Each cut prefers, in order: the last sentence
// terminator (. ! ?) in the window, the last newline, the last space, and
// finally a hard cut at cfg.Size.
func Split(text string, cfg Config) []Segment {
	if cfg.Size <= 0 {
		cfg.Size = DefaultSize
	}
	if cfg.Overlap < 0 || cfg.Overlap >= cfg.Size {
		cfg.Overlap = DefaultOverlap
		if cfg.Overlap >= cfg.Size {
			cfg.Overlap = cfg.Size / 10
		}
	}

	runes := []rune(text)
	if len(runes) <= cfg.Size {
		return []Segment{{Text: text, Ordinal: 0}}
	}

	var segments []Segment
	cur := 0

	for cur < len(runes) {
		end := cur + cfg.Size
		if end > len(runes) {
			end = len(runes)
		}

		boundary := end
		if end < len(runes) {
			if b := findBoundary(runes[cur:end]); b > 0 {
				boundary = cur + b
			}
		}

		segments = append(segments, Segment{
			Text:    string(runes[cur:boundary]),
			Ordinal: len(segments),
		})

		if boundary >= len(runes) {
			break
		}

		// Step back by the overlap, but never at or behind the current
		// cursor: that would stall the scan.
		next := boundary - cfg.Overlap
		if next <= cur {
			next = boundary
		}
		cur = next
	}

	return segments
}

// findBoundary returns the cut position (offset just past the boundary rune)
// within window, or 0 when no boundary exists.
func findBoundary(window []rune) int {
	for i := len(window) - 1; i >= 0; i-- {
		switch window[i] {
		case '.', '!', '?':
			return i + 1
		}
	}
	for i := len(window) - 1; i >= 0; i-- {
		if window[i] == '\n' {
			return i + 1
		}
	}
	for i := len(window) - 1; i >= 0; i-- {
		if window[i] == ' ' {
			return i + 1
		}
	}
	return 0
}
