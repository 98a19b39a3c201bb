package knowledge

import (
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"strings"
	"unicode/utf8"
)

// Default chunking parameters, in characters
const (
	DefaultChunkSize    = 500
	DefaultChunkOverlap = 50
)

// Piece is an unembedded chunk of a document
type Piece struct {
	ID   string
	Text string
}

// Chunker splits documents on paragraph boundaries into pieces of roughly Size characters.
// Each new piece starts with the last Overlap characters of the previous one.
type Chunker struct {
	Size    int
	Overlap int
}

// NewChunker creates a chunker, falling back to defaults for non-positive values
func NewChunker(size, overlap int) *Chunker {
	if size <= 0 {
		size = DefaultChunkSize
	}
	if overlap < 0 || overlap >= size {
		overlap = DefaultChunkOverlap
	}
	return &Chunker{Size: size, Overlap: overlap}
}

// Split chunks content. Ids are derived from source and position, so re-ingesting
// an unchanged document yields the same ids.
func (c *Chunker) Split(source, content string) []Piece {
	var pieces []Piece
	var current string

	emit := func() {
		text := strings.TrimSpace(current)
		if text == "" {
			return
		}
		pieces = append(pieces, Piece{ID: ChunkID(source, len(pieces)), Text: text})
	}

	for _, para := range strings.Split(normalizeNewlines(content), "\n\n") {
		if utf8.RuneCountInString(current)+utf8.RuneCountInString(para) > c.Size && strings.TrimSpace(current) != "" {
			emit()
			current = tailRunes(current, c.Overlap)
		}
		current += para + "\n\n"
	}
	emit()

	return pieces
}

// ChunkID returns the deterministic id of the index-th chunk of source
func ChunkID(source string, index int) string {
	sum := md5.Sum([]byte(fmt.Sprintf("%s:%d", source, index)))
	return "chunk_" + hex.EncodeToString(sum[:])[:8]
}

func tailRunes(s string, n int) string {
	if n <= 0 {
		return ""
	}
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[len(r)-n:])
}

func normalizeNewlines(s string) string {
	return strings.ReplaceAll(s, "\r\n", "\n")
}
