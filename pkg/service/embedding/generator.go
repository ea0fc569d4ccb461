package embedding

import (
	"context"
	"math"
	"time"

	"github.com/edmon-lab/mentor/pkg/domain/model"
	"github.com/edmon-lab/mentor/pkg/utils/logging"
	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gollem"
)

var (
	ErrEmbeddingFailed   = goerr.New("embedding generation failed")
	ErrDimensionMismatch = goerr.New("embedding dimension mismatch")
)

// Config tunes provider batching and retry behavior
type Config struct {
	BatchSize      int
	MaxRetries     int
	RetryBaseDelay time.Duration
	BatchInterval  time.Duration
}

// DefaultConfig returns the default embedding configuration. The batch
// size matches the Gemini embedding API request limit.
func DefaultConfig() Config {
	return Config{
		BatchSize:      100,
		MaxRetries:     3,
		RetryBaseDelay: 500 * time.Millisecond,
		BatchInterval:  100 * time.Millisecond,
	}
}

// Generator produces fixed-dimension embedding vectors for chunks and
// queries. With a nil LLM client it falls back to deterministic local
// vectors, which keeps development and tests provider-free.
type Generator struct {
	llmClient gollem.LLMClient
	config    Config
	cache     *Cache
}

// New creates a Generator. llmClient may be nil.
func New(llmClient gollem.LLMClient, config Config) *Generator {
	if config.BatchSize <= 0 {
		config.BatchSize = DefaultConfig().BatchSize
	}
	if config.MaxRetries <= 0 {
		config.MaxRetries = DefaultConfig().MaxRetries
	}
	if config.RetryBaseDelay <= 0 {
		config.RetryBaseDelay = DefaultConfig().RetryBaseDelay
	}
	return &Generator{
		llmClient: llmClient,
		config:    config,
		cache:     NewCache(),
	}
}

// Cache exposes the content-hash cache, mainly for ingestion metrics
func (g *Generator) Cache() *Cache {
	return g.cache
}

// pendingText is one distinct uncached content and every chunk index
// that carries it
type pendingText struct {
	content string
	indices []int
}

// EmbedChunks embeds all chunks, preserving input order. Cached contents
// are not re-sent to the provider, and repeated contents within one call
// are embedded once with the vector fanned out to every carrier. A batch
// that fails after all retries fails the whole call.
func (g *Generator) EmbedChunks(ctx context.Context, chunks []*model.Chunk) ([]*model.EmbeddedChunk, error) {
	embedded := make([]*model.EmbeddedChunk, len(chunks))

	var pending []*pendingText
	position := make(map[string]int)
	for i, ch := range chunks {
		if vec, ok := g.cache.Get(ch.Content); ok {
			embedded[i] = &model.EmbeddedChunk{Chunk: *ch, Embedding: vec}
			continue
		}
		if p, ok := position[ch.Content]; ok {
			pending[p].indices = append(pending[p].indices, i)
			continue
		}
		position[ch.Content] = len(pending)
		pending = append(pending, &pendingText{content: ch.Content, indices: []int{i}})
	}

	for offset := 0; offset < len(pending); offset += g.config.BatchSize {
		end := min(offset+g.config.BatchSize, len(pending))
		batch := pending[offset:end]

		texts := make([]string, len(batch))
		for i, p := range batch {
			texts[i] = p.content
		}

		vectors, err := g.embedTexts(ctx, texts)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to embed chunk batch",
				goerr.V("offset", offset), goerr.V("batchSize", len(batch)))
		}

		for i, vec := range vectors {
			g.cache.Put(batch[i].content, vec)
			for _, idx := range batch[i].indices {
				embedded[idx] = &model.EmbeddedChunk{Chunk: *chunks[idx], Embedding: vec}
			}
		}

		if end < len(pending) && g.config.BatchInterval > 0 {
			if err := sleepContext(ctx, g.config.BatchInterval); err != nil {
				return nil, err
			}
		}
	}

	return embedded, nil
}

// EmbedQuery embeds a single query string
func (g *Generator) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	if vec, ok := g.cache.Get(text); ok {
		return vec, nil
	}
	vectors, err := g.embedTexts(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	g.cache.Put(text, vectors[0])
	return vectors[0], nil
}

// embedTexts calls the provider with bounded exponential backoff, or
// produces fallback vectors when no provider is configured
func (g *Generator) embedTexts(ctx context.Context, texts []string) ([][]float32, error) {
	if g.llmClient == nil {
		vectors := make([][]float32, len(texts))
		for i, t := range texts {
			vectors[i] = fallbackVector(t)
		}
		return vectors, nil
	}

	var lastErr error
	for attempt := 0; attempt < g.config.MaxRetries; attempt++ {
		if attempt > 0 {
			delay := g.config.RetryBaseDelay * time.Duration(1<<(attempt-1))
			logging.From(ctx).Warn("retrying embedding request",
				"attempt", attempt,
				"delay", delay,
				"error", lastErr,
			)
			if err := sleepContext(ctx, delay); err != nil {
				return nil, err
			}
		}

		raw, err := g.llmClient.GenerateEmbedding(ctx, model.EmbeddingDimension, texts)
		if err != nil {
			lastErr = err
			continue
		}
		if len(raw) != len(texts) {
			return nil, goerr.Wrap(ErrEmbeddingFailed, "provider returned wrong vector count",
				goerr.V("want", len(texts)), goerr.V("got", len(raw)))
		}

		vectors := make([][]float32, len(raw))
		for i, v := range raw {
			if len(v) != model.EmbeddingDimension {
				return nil, goerr.Wrap(ErrDimensionMismatch, "unexpected embedding dimension",
					goerr.V("want", model.EmbeddingDimension), goerr.V("got", len(v)))
			}
			vec := make([]float32, len(v))
			for j, f := range v {
				vec[j] = float32(f)
			}
			vectors[i] = vec
		}
		return vectors, nil
	}

	return nil, goerr.Wrap(ErrEmbeddingFailed, "retries exhausted",
		goerr.V("attempts", g.config.MaxRetries), goerr.V("cause", lastErr))
}

// CosineSimilarity computes the cosine similarity of two vectors. Returns
// 0 for mismatched lengths or zero vectors.
func CosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return goerr.Wrap(ctx.Err(), "embedding canceled")
	case <-timer.C:
		return nil
	}
}
