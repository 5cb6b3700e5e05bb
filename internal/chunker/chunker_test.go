package chunker

import (
	"fmt"
	"strings"
	"testing"
)

// TestSplit_ShortInput verifies input below the minimum threshold produces
// no chunks rather than an error.
func TestSplit_ShortInput(t *testing.T) {
	s := NewSplitter(500, 100)

	chunks := s.Split("too short to bother splitting")
	if chunks != nil {
		t.Errorf("Expected nil chunks for short input, got %d", len(chunks))
	}

	if chunks := s.Split(""); chunks != nil {
		t.Errorf("Expected nil chunks for empty input, got %d", len(chunks))
	}
}

// TestSplit_ParagraphBoundaries verifies paragraphs that fit the chunk size
// are kept whole and split at the paragraph break.
func TestSplit_ParagraphBoundaries(t *testing.T) {
	p1 := strings.TrimSpace(strings.Repeat("alpha ", 50))
	p2 := strings.TrimSpace(strings.Repeat("bravo ", 50))
	text := p1 + "\n\n" + p2

	s := NewSplitter(400, 100)
	chunks := s.Split(text)

	if len(chunks) != 2 {
		t.Fatalf("Expected 2 chunks, got %d", len(chunks))
	}
	if chunks[0].Text != p1 {
		t.Errorf("Chunk 0 is not the first paragraph: %q", chunks[0].Text[:40])
	}
	if chunks[1].Text != p2 {
		t.Errorf("Chunk 1 is not the second paragraph: %q", chunks[1].Text[:40])
	}
	if chunks[0].Index != 0 || chunks[1].Index != 1 {
		t.Errorf("Chunk indexes not in insertion order: %d, %d", chunks[0].Index, chunks[1].Index)
	}
}

// TestSplit_CoverageAndOverlap verifies that chunks cover the input with no
// gaps and that adjacent chunks share boundary content.
func TestSplit_CoverageAndOverlap(t *testing.T) {
	// Unique words so every chunk locates unambiguously in the source.
	words := make([]string, 200)
	for i := range words {
		words[i] = fmt.Sprintf("word%03d", i)
	}
	text := strings.Join(words, " ")

	s := NewSplitter(100, 20)
	chunks := s.Split(text)
	if len(chunks) < 2 {
		t.Fatalf("Expected multiple chunks, got %d", len(chunks))
	}

	prevEnd := 0
	searchFrom := 0
	for i, c := range chunks {
		if len(c.Text) > 100 {
			t.Errorf("Chunk %d exceeds chunk size: %d chars", i, len(c.Text))
		}
		start := strings.Index(text[searchFrom:], c.Text)
		if start < 0 {
			t.Fatalf("Chunk %d text not found in source: %q", i, c.Text)
		}
		start += searchFrom

		if i == 0 {
			if start != 0 {
				t.Errorf("First chunk does not start at the beginning (offset %d)", start)
			}
		} else {
			// No gap, and a shared overlap region with the previous chunk.
			if start > prevEnd {
				t.Errorf("Gap between chunk %d and %d: %d > %d", i-1, i, start, prevEnd)
			}
			if start >= prevEnd {
				t.Errorf("Chunks %d and %d share no overlap", i-1, i)
			}
		}
		prevEnd = start + len(c.Text)
		searchFrom = start + 1
	}

	if prevEnd != len(text) {
		t.Errorf("Last chunk does not reach the end of input: %d != %d", prevEnd, len(text))
	}
}

// TestSplit_Deterministic verifies identical input yields identical chunks.
func TestSplit_Deterministic(t *testing.T) {
	text := strings.Repeat("the market rewards patience and punishes chasing momentum ", 20)
	s := NewSplitter(120, 30)

	a := s.Split(text)
	b := s.Split(text)

	if len(a) != len(b) {
		t.Fatalf("Chunk counts differ: %d vs %d", len(a), len(b))
	}
	for i := range a {
		if a[i] != b[i] {
			t.Errorf("Chunk %d differs between runs", i)
		}
	}
}

// TestSplit_LongUnbrokenRun verifies the character-level fallback keeps
// chunks bounded when no natural boundary exists.
func TestSplit_LongUnbrokenRun(t *testing.T) {
	text := strings.Repeat("x", 1200)

	s := NewSplitter(500, 100)
	chunks := s.Split(text)

	if len(chunks) < 3 {
		t.Fatalf("Expected at least 3 chunks, got %d", len(chunks))
	}
	for i, c := range chunks {
		if len(c.Text) > 500 {
			t.Errorf("Chunk %d exceeds chunk size: %d", i, len(c.Text))
		}
	}
}
