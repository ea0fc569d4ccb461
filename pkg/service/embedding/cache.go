package embedding

import (
	"crypto/sha256"
	"encoding/hex"
	"sync"
)

// Cache memoizes embedding vectors by content hash so re-processing an
// unchanged document does not re-call the embedding provider.
type Cache struct {
	mu      sync.RWMutex
	vectors map[string][]float32
}

// NewCache creates an empty embedding cache
func NewCache() *Cache {
	return &Cache{
		vectors: make(map[string][]float32),
	}
}

func cacheKey(content string) string {
	sum := sha256.Sum256([]byte(content))
	return hex.EncodeToString(sum[:])
}

// Get returns the cached vector for content, if any
func (c *Cache) Get(content string) ([]float32, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	v, ok := c.vectors[cacheKey(content)]
	return v, ok
}

// Put stores a vector for content
func (c *Cache) Put(content string, vector []float32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.vectors[cacheKey(content)] = vector
}

// Size returns the number of cached vectors
func (c *Cache) Size() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.vectors)
}

// Clear drops all cached vectors
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.vectors = make(map[string][]float32)
}
