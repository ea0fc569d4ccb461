package retrieval

import (
	"context"
	"time"

	"github.com/edmon-lab/mentor/pkg/domain/interfaces"
	"github.com/edmon-lab/mentor/pkg/domain/model"
	"github.com/edmon-lab/mentor/pkg/service/embedding"
	"github.com/edmon-lab/mentor/pkg/utils/logging"
	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gollem"
	"golang.org/x/sync/errgroup"
)

var ErrEmptyQuery = goerr.New("search query is empty")

// Config tunes fusion and re-ranking
type Config struct {
	RRFConstant     int
	VectorWeight    float64
	FetchMultiplier int
	RerankTopN      int
	RerankTimeout   time.Duration
}

// DefaultConfig returns the default retrieval configuration
func DefaultConfig() Config {
	return Config{
		RRFConstant:     60,
		VectorWeight:    0.7,
		FetchMultiplier: 3,
		RerankTopN:      20,
		RerankTimeout:   10 * time.Second,
	}
}

// Options shape a single search call
type Options struct {
	Limit    int
	Offset   int
	MinScore float64
	Filter   model.SearchFilter
	Rerank   bool
}

// Engine performs hybrid retrieval over a district's chunk corpus. The
// vector and keyword legs run concurrently, get fused with reciprocal
// rank fusion, and optionally pass through an LLM re-ranking stage.
type Engine struct {
	chunks    interfaces.ChunkRepository
	embedder  *embedding.Generator
	llmClient gollem.LLMClient
	config    Config
}

// New creates a retrieval Engine. llmClient may be nil, which disables
// re-ranking.
func New(chunks interfaces.ChunkRepository, embedder *embedding.Generator, llmClient gollem.LLMClient, config Config) *Engine {
	if config.RRFConstant <= 0 {
		config.RRFConstant = DefaultConfig().RRFConstant
	}
	if config.VectorWeight <= 0 || config.VectorWeight > 1 {
		config.VectorWeight = DefaultConfig().VectorWeight
	}
	if config.FetchMultiplier <= 0 {
		config.FetchMultiplier = DefaultConfig().FetchMultiplier
	}
	if config.RerankTopN <= 0 {
		config.RerankTopN = DefaultConfig().RerankTopN
	}
	if config.RerankTimeout <= 0 {
		config.RerankTimeout = DefaultConfig().RerankTimeout
	}
	return &Engine{
		chunks:    chunks,
		embedder:  embedder,
		llmClient: llmClient,
		config:    config,
	}
}

// Search runs a hybrid search and returns the paginated fused results
func (e *Engine) Search(ctx context.Context, districtID string, query string, opts Options) (*model.SearchResponse, error) {
	if query == "" {
		return nil, ErrEmptyQuery
	}
	if opts.Limit <= 0 {
		opts.Limit = 10
	}
	if opts.Offset < 0 {
		opts.Offset = 0
	}

	vector, err := e.embedder.EmbedQuery(ctx, query)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to embed search query", goerr.V("query", query))
	}

	// Fetch beyond the requested page so fusion has headroom
	fetchLimit := (opts.Offset + opts.Limit) * e.config.FetchMultiplier

	var vectorHits []*model.VectorResult
	var keywordHits []*model.KeywordResult

	eg, egCtx := errgroup.WithContext(ctx)
	eg.Go(func() error {
		hits, err := e.chunks.SearchByVector(egCtx, districtID, vector, fetchLimit, opts.Filter)
		if err != nil {
			return goerr.Wrap(err, "vector search failed")
		}
		vectorHits = hits
		return nil
	})
	eg.Go(func() error {
		hits, err := e.chunks.SearchByKeyword(egCtx, districtID, query, fetchLimit, opts.Filter)
		if err != nil {
			// Lexical search is supplementary; degrade to vector-only
			logging.From(egCtx).Warn("keyword search failed, continuing with vector results only",
				"error", err, "query", query)
			return nil
		}
		keywordHits = hits
		return nil
	})
	if err := eg.Wait(); err != nil {
		return nil, err
	}

	fused := FuseRRF(vectorHits, keywordHits, e.config.RRFConstant, e.config.VectorWeight)

	reranked := false
	if opts.Rerank && e.llmClient != nil && len(fused) > 0 {
		rctx, cancel := context.WithTimeout(ctx, e.config.RerankTimeout)
		result, err := rerank(rctx, e.llmClient, query, fused, e.config.RerankTopN)
		cancel()
		if err != nil {
			// Re-ranking is best effort; keep the fused order
			logging.From(ctx).Warn("re-ranking failed, keeping fused order", "error", err)
		} else {
			fused = result
			reranked = true
		}
	}

	if opts.MinScore > 0 {
		filtered := fused[:0]
		for _, hit := range fused {
			if hit.CombinedScore >= opts.MinScore {
				filtered = append(filtered, hit)
			}
		}
		fused = filtered
	}

	total := len(fused)
	start := min(opts.Offset, total)
	end := min(start+opts.Limit, total)

	return &model.SearchResponse{
		Results:    fused[start:end],
		TotalFused: total,
		Offset:     opts.Offset,
		Limit:      opts.Limit,
		Reranked:   reranked,
	}, nil
}
