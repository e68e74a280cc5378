// Package models defines core data structures for papers, images, queries, and search results.
package models

import "time"

// Paper is a catalogued paper. Path follows the file when it is moved into a topic folder.
type Paper struct {
	ID         string    `json:"id" db:"id"`
	Filename   string    `json:"filename" db:"filename"`
	Path       string    `json:"path" db:"path"`
	Topic      string    `json:"topic,omitempty" db:"topic"`
	TopicScore float64   `json:"topic_score,omitempty" db:"topic_score"`
	Preview    string    `json:"preview" db:"preview"`
	Pages      int       `json:"pages" db:"pages"`
	Chunks     int       `json:"chunks" db:"chunks"`
	IndexedAt  time.Time `json:"indexed_at" db:"indexed_at"`
	UpdatedAt  time.Time `json:"updated_at" db:"updated_at"`
}

// PaperChunk is a word window of a paper's extracted text, embedded on its own.
type PaperChunk struct {
	ID         string    `json:"id"`
	PaperID    string    `json:"paper_id"`
	Content    string    `json:"content"`
	ChunkIndex int       `json:"chunk_index"`
	Embedding  []float32 `json:"-"`
}

// Image is a catalogued image.
type Image struct {
	ID        string    `json:"id" db:"id"`
	Filename  string    `json:"filename" db:"filename"`
	Path      string    `json:"path" db:"path"`
	Width     int       `json:"width" db:"width"`
	Height    int       `json:"height" db:"height"`
	IndexedAt time.Time `json:"indexed_at" db:"indexed_at"`
}
