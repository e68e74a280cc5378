// Package indexer extracts, chunks, embeds and stores papers and images.
package indexer

import (
	"fmt"
	"strings"

	"github.com/hyperjump/shiori/internal/models"
)

// Chunker splits text into overlapping word-based chunks.
type Chunker struct {
	chunkSize    int
	chunkOverlap int
}

// NewChunker creates a chunker with the given size and overlap (in words).
// A size of zero or less keeps the whole text in one chunk.
func NewChunker(chunkSize, chunkOverlap int) *Chunker {
	return &Chunker{
		chunkSize:    chunkSize,
		chunkOverlap: chunkOverlap,
	}
}

// ChunkID returns the ID of a paper's index-th chunk.
func ChunkID(paperID string, index int) string {
	return fmt.Sprintf("%s#%d", paperID, index)
}

// Chunk splits text into PaperChunks with overlapping windows. IDs are deterministic
// so re-indexing the same paper replaces its chunks.
func (c *Chunker) Chunk(paperID, text string) []*models.PaperChunk {
	words := strings.Fields(text)
	if len(words) == 0 {
		return nil
	}
	size := c.chunkSize
	if size <= 0 {
		size = len(words)
	}
	step := size - c.chunkOverlap
	if step <= 0 {
		step = 1
	}
	chunks := make([]*models.PaperChunk, 0, len(words)/step+1)
	for i := 0; i < len(words); i += step {
		end := i + size
		if end > len(words) {
			end = len(words)
		}
		index := len(chunks)
		chunks = append(chunks, &models.PaperChunk{
			ID:         ChunkID(paperID, index),
			PaperID:    paperID,
			Content:    strings.Join(words[i:end], " "),
			ChunkIndex: index,
		})
		if end >= len(words) {
			break
		}
	}
	return chunks
}
