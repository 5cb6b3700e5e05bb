// Package chunker splits raw transcript text into overlapping fixed-size
// chunks for embedding and retrieval.
package chunker

import (
	"strings"
	"unicode/utf8"
)

// MinTextLength is the minimum viable source length, in characters. Shorter
// input produces no chunks; downstream treats that as "no context available".
const MinTextLength = 50

// defaultSeparators is the split priority: paragraph break, line break,
// space, then raw characters. A harder boundary is only used when a segment
// still exceeds the chunk size.
var defaultSeparators = []string{"\n\n", "\n", " ", ""}

// Chunk is one bounded slice of the source text. Index is insertion order
// and exists for traceability only.
type Chunk struct {
	Index int
	Text  string
}

// Splitter produces overlapping chunks along natural text boundaries.
// It is pure and deterministic; the same input always yields the same chunks.
type Splitter struct {
	chunkSize  int
	overlap    int
	separators []string
}

// NewSplitter creates a splitter with the given chunk size and overlap,
// both measured in characters.
func NewSplitter(chunkSize, overlap int) *Splitter {
	return &Splitter{
		chunkSize:  chunkSize,
		overlap:    overlap,
		separators: defaultSeparators,
	}
}

// Split chunks the text. Input below MinTextLength returns no chunks.
func (s *Splitter) Split(text string) []Chunk {
	if utf8.RuneCountInString(text) < MinTextLength {
		return nil
	}

	pieces := s.splitText(text, s.separators)
	chunks := make([]Chunk, 0, len(pieces))
	for i, p := range pieces {
		chunks = append(chunks, Chunk{Index: i, Text: p})
	}
	return chunks
}

// splitText splits on the first separator present in the text, recursing
// with harder separators for any segment that still exceeds the chunk size,
// then merges small segments back together with overlap.
func (s *Splitter) splitText(text string, separators []string) []string {
	sep := ""
	var remaining []string
	for i, cand := range separators {
		if cand == "" {
			break
		}
		if strings.Contains(text, cand) {
			sep = cand
			remaining = separators[i+1:]
			break
		}
	}

	// An empty separator splits into individual characters.
	parts := strings.Split(text, sep)

	var final []string
	var good []string
	for _, p := range parts {
		if p == "" {
			continue
		}
		if len(p) < s.chunkSize {
			good = append(good, p)
			continue
		}
		if len(good) > 0 {
			final = append(final, s.merge(good, sep)...)
			good = nil
		}
		if len(remaining) == 0 {
			final = append(final, p)
		} else {
			final = append(final, s.splitText(p, remaining)...)
		}
	}
	if len(good) > 0 {
		final = append(final, s.merge(good, sep)...)
	}
	return final
}

// merge greedily packs segments into chunks up to chunkSize, carrying the
// trailing segments forward so adjacent chunks share up to overlap
// characters of content.
func (s *Splitter) merge(parts []string, sep string) []string {
	sepLen := len(sep)

	var docs []string
	var current []string
	total := 0

	for _, p := range parts {
		extra := 0
		if len(current) > 0 {
			extra = sepLen
		}
		if total+len(p)+extra > s.chunkSize && len(current) > 0 {
			if doc := strings.TrimSpace(strings.Join(current, sep)); doc != "" {
				docs = append(docs, doc)
			}
			// Drop leading segments until the window is inside the overlap
			// budget and the next segment fits.
			for total > s.overlap || (total+len(p)+sepLen > s.chunkSize && total > 0) {
				drop := len(current[0])
				if len(current) > 1 {
					drop += sepLen
				}
				total -= drop
				current = current[1:]
			}
		}
		current = append(current, p)
		total += len(p)
		if len(current) > 1 {
			total += sepLen
		}
	}

	if doc := strings.TrimSpace(strings.Join(current, sep)); doc != "" {
		docs = append(docs, doc)
	}
	return docs
}
