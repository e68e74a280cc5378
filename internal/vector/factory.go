package vector

import "fmt"

// Backend names a Store implementation.
type Backend string

const (
	// BackendChromem persists collections with chromem-go. Default.
	BackendChromem Backend = "chromem"
	// BackendMemory keeps collections in memory only.
	BackendMemory Backend = "memory"
)

// NewStore creates a store of the given backend. path and compress apply to chromem.
func NewStore(backend, path string, compress bool) (Store, error) {
	switch Backend(backend) {
	case BackendChromem, "":
		return NewChromemStore(path, compress)
	case BackendMemory:
		return NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("unknown vector backend: %s (supported: chromem, memory)", backend)
	}
}
