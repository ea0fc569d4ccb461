package embedding

import (
	"hash/fnv"
	"math"

	"github.com/edmon-lab/mentor/pkg/domain/model"
)

// fallbackVector derives a deterministic unit vector from the text alone.
// Used when no embedding provider is configured, so local development and
// tests get stable, repeatable vectors. Not semantically meaningful.
func fallbackVector(text string) []float32 {
	h := fnv.New64a()
	_, _ = h.Write([]byte(text))
	state := h.Sum64()
	if state == 0 {
		state = 0x9e3779b97f4a7c15
	}

	vec := make([]float32, model.EmbeddingDimension)
	var norm float64
	for i := range vec {
		// xorshift64 over the seeded state
		state ^= state << 13
		state ^= state >> 7
		state ^= state << 17
		// map to [-1, 1)
		v := float64(int64(state)) / float64(math.MaxInt64)
		vec[i] = float32(v)
		norm += v * v
	}

	norm = math.Sqrt(norm)
	if norm == 0 {
		return vec
	}
	for i := range vec {
		vec[i] = float32(float64(vec[i]) / norm)
	}
	return vec
}
