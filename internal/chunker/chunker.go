// Package chunker splits extracted page text into overlapping passages.
//
// Splitting is recursive and boundary-seeking: a chunk ends on the last
// paragraph break that keeps it within the size limit, falling back to line
// breaks, sentence ends, word gaps and finally an arbitrary character.
package chunker

import (
	"strings"
	"unicode"

	"github.com/custodia-labs/docqa/internal/core/ports/driven"
)

// DefaultChunkSize is the default number of characters per chunk.
const DefaultChunkSize = 1000

// DefaultChunkOverlap is the default number of overlapping characters.
const DefaultChunkOverlap = 200

// DefaultSeparators are the boundary levels tried in order, coarsest first.
// Separators within one level are equivalent.
var DefaultSeparators = [][]string{
	{"\n\n"},
	{"\n"},
	{". ", "? ", "! ", "。"},
	{" ", "\t"},
}

// Ensure Splitter implements the interface.
var _ driven.Splitter = (*Splitter)(nil)

// Splitter splits text into chunks of at most chunkSize characters, with
// consecutive chunks sharing at most overlap characters.
// Sizes are measured in runes.
type Splitter struct {
	chunkSize  int
	overlap    int
	separators [][][]rune
}

// Option configures the splitter.
type Option func(*Splitter)

// WithChunkSize sets the chunk size in characters.
func WithChunkSize(size int) Option {
	return func(s *Splitter) {
		if size > 0 {
			s.chunkSize = size
		}
	}
}

// WithOverlap sets the overlap between chunks in characters.
func WithOverlap(overlap int) Option {
	return func(s *Splitter) {
		if overlap >= 0 {
			s.overlap = overlap
		}
	}
}

// WithSeparators replaces the boundary levels, coarsest first.
func WithSeparators(levels ...[]string) Option {
	return func(s *Splitter) {
		if len(levels) > 0 {
			s.separators = compileSeparators(levels)
		}
	}
}

// New creates a new splitter with the given options.
func New(opts ...Option) *Splitter {
	s := &Splitter{
		chunkSize:  DefaultChunkSize,
		overlap:    DefaultChunkOverlap,
		separators: compileSeparators(DefaultSeparators),
	}

	for _, opt := range opts {
		opt(s)
	}

	// Ensure overlap doesn't exceed chunk size
	if s.overlap >= s.chunkSize {
		s.overlap = s.chunkSize / 4
	}

	return s
}

// ChunkSize returns the configured chunk size.
func (s *Splitter) ChunkSize() int {
	return s.chunkSize
}

// Overlap returns the configured overlap.
func (s *Splitter) Overlap() int {
	return s.overlap
}

// Split returns the chunks of text in order, with surrounding whitespace
// trimmed. Empty or whitespace-only text yields no chunks.
func (s *Splitter) Split(text string) []string {
	runes := []rune(text)
	spans := s.spans(runes)

	chunks := make([]string, 0, len(spans))
	for _, sp := range spans {
		chunk := strings.TrimSpace(string(runes[sp.start:sp.end]))
		if chunk == "" {
			continue
		}
		chunks = append(chunks, chunk)
	}
	return chunks
}

// span is a half-open rune range [start, end).
type span struct {
	start int
	end   int
}

// spans computes the chunk ranges over runes. Consecutive ranges overlap by
// at least one and at most s.overlap runes when s.overlap > 0, and together
// they cover the whole input.
func (s *Splitter) spans(runes []rune) []span {
	n := len(runes)
	if strings.TrimSpace(string(runes)) == "" {
		return nil
	}

	// A chunk must be at least this long before a natural boundary is
	// accepted, so every chunk advances past the previous one's end.
	minFill := max(s.chunkSize/2, s.overlap+1)
	minFill = min(minFill, s.chunkSize)

	var result []span
	pos := 0
	for pos < n {
		if n-pos <= s.chunkSize {
			result = append(result, span{start: pos, end: n})
			break
		}

		end := s.findBreak(runes, pos+minFill, pos+s.chunkSize, 0)
		result = append(result, span{start: pos, end: end})
		pos = s.overlapStart(runes, pos, end)
	}
	return result
}

// findBreak returns the end of a chunk within [lo, hi]. It looks for the last
// separator of the given level ending in that window and recurses into finer
// levels when none exists. Past the last level it cuts at hi.
func (s *Splitter) findBreak(runes []rune, lo, hi, level int) int {
	if level >= len(s.separators) {
		return hi
	}

	best := -1
	for _, sep := range s.separators[level] {
		if b := lastBoundary(runes, sep, lo, hi); b > best {
			best = b
		}
	}
	if best >= 0 {
		return best
	}
	return s.findBreak(runes, lo, hi, level+1)
}

// overlapStart picks where the next chunk begins: inside the last s.overlap
// runes of the current chunk, at the first word start when one exists.
func (s *Splitter) overlapStart(runes []rune, start, end int) int {
	if s.overlap == 0 {
		return end
	}

	from := max(end-s.overlap, start+1)
	for p := from; p < end; p++ {
		if p > 0 && unicode.IsSpace(runes[p-1]) && !unicode.IsSpace(runes[p]) {
			return p
		}
	}
	return from
}

// lastBoundary returns the largest position b in [lo, hi] such that sep ends
// exactly at b, or -1.
func lastBoundary(runes, sep []rune, lo, hi int) int {
	if len(sep) == 0 {
		return -1
	}
	for b := hi; b >= lo && b >= len(sep); b-- {
		if hasSuffixAt(runes, sep, b) {
			return b
		}
	}
	return -1
}

// hasSuffixAt reports whether runes[b-len(sep):b] equals sep.
func hasSuffixAt(runes, sep []rune, b int) bool {
	if b > len(runes) {
		return false
	}
	off := b - len(sep)
	for i, r := range sep {
		if runes[off+i] != r {
			return false
		}
	}
	return true
}

func compileSeparators(levels [][]string) [][][]rune {
	compiled := make([][][]rune, 0, len(levels))
	for _, level := range levels {
		var seps [][]rune
		for _, sep := range level {
			if sep != "" {
				seps = append(seps, []rune(sep))
			}
		}
		if len(seps) > 0 {
			compiled = append(compiled, seps)
		}
	}
	return compiled
}
