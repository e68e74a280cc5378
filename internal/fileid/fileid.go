// Package fileid provides deterministic IDs for indexed files.
package fileid

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

const (
	imagePrefix = "image:"
	paperPrefix = "paper:"
)

// PathID returns a stable image ID for the given absolute path.
// Same path always yields the same ID, so re-indexing a folder overwrites its entries.
func PathID(absolutePath string) string {
	normalized := filepath.Clean(absolutePath)
	hash := sha256.Sum256([]byte(normalized))
	return imagePrefix + hex.EncodeToString(hash[:])
}

// ContentID returns a paper ID derived from the file's bytes. It survives moves and
// renames, so a paper filed into a topic folder keeps its identity.
func ContentID(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("open file: %w", err)
	}
	defer f.Close()
	return ContentIDFromReader(f)
}

// ContentIDFromReader hashes r to a paper ID.
func ContentIDFromReader(r io.Reader) (string, error) {
	h := sha256.New()
	if _, err := io.Copy(h, r); err != nil {
		return "", fmt.Errorf("hash content: %w", err)
	}
	return paperPrefix + hex.EncodeToString(h.Sum(nil))[:32], nil
}
