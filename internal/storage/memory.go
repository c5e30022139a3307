// internal/storage/memory.go
package storage

import (
	"context"

	"loanflow/internal/common/logger"
)

// memoryBackend holds the serialized blob in process memory. It goes through
// the same encode/decode path as the durable backends so tests exercise
// identical semantics.
type memoryBackend struct {
	data []byte
}

// NewMemoryStore returns a Store with no durability, for tests and local runs.
func NewMemoryStore(log logger.Logger) Store {
	return newBlobStore(&memoryBackend{}, log.WithFields(map[string]interface{}{"store": "memory"}))
}

func (b *memoryBackend) load(ctx context.Context) ([]byte, error) {
	return b.data, nil
}

func (b *memoryBackend) save(ctx context.Context, data []byte) error {
	b.data = data
	return nil
}

func (b *memoryBackend) clear(ctx context.Context) error {
	b.data = nil
	return nil
}
