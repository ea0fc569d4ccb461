package chunker

import (
	"strings"

	"github.com/edmon-lab/mentor/pkg/domain/model"
	"github.com/edmon-lab/mentor/pkg/domain/types"
	"github.com/m-mizutani/goerr/v2"
)

// Sentinel errors for caller-contract violations
var (
	ErrNilDocument   = goerr.New("document is required")
	ErrEmptyDocument = goerr.New("document content is empty")
	ErrInvalidConfig = goerr.New("invalid chunker configuration")
)

// Config holds chunk size bounds, all in estimated tokens
type Config struct {
	MinChunkSize int
	MaxChunkSize int
	OverlapSize  int
}

// DefaultConfig returns the default chunking configuration
func DefaultConfig() Config {
	return Config{
		MinChunkSize: 100,
		MaxChunkSize: 512,
		OverlapSize:  50,
	}
}

// Validate checks if the configuration is usable
func (c Config) Validate() error {
	if c.MinChunkSize <= 0 || c.MaxChunkSize <= 0 {
		return goerr.Wrap(ErrInvalidConfig, "chunk sizes must be positive",
			goerr.V("min", c.MinChunkSize), goerr.V("max", c.MaxChunkSize))
	}
	if c.MinChunkSize >= c.MaxChunkSize {
		return goerr.Wrap(ErrInvalidConfig, "minChunkSize must be below maxChunkSize",
			goerr.V("min", c.MinChunkSize), goerr.V("max", c.MaxChunkSize))
	}
	if c.OverlapSize < 0 {
		return goerr.Wrap(ErrInvalidConfig, "overlapSize must not be negative",
			goerr.V("overlap", c.OverlapSize))
	}
	return nil
}

// Chunker splits parsed documents into bounded, semantically coherent
// spans. Documents with detected structural sections use structure-based
// chunking; everything else falls back to sentence-boundary chunking.
type Chunker struct {
	config Config
}

// New creates a new Chunker with the given configuration
func New(config Config) (*Chunker, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &Chunker{config: config}, nil
}

// Chunk splits one document. Every output chunk's token estimate stays at
// or below MaxChunkSize except when a single indivisible sentence or
// paragraph exceeds it.
func (c *Chunker) Chunk(doc *model.ParsedDocument) (*model.ChunkingResult, error) {
	if doc == nil {
		return nil, ErrNilDocument
	}
	if strings.TrimSpace(doc.Content) == "" && !doc.HasStructure() {
		return nil, goerr.Wrap(ErrEmptyDocument, "nothing to chunk", goerr.V("documentID", doc.ID))
	}

	var chunks []*model.Chunk
	strategy := "semantic"
	if doc.HasStructure() {
		strategy = "structure"
		chunks = c.chunkStructured(doc)
	} else {
		chunks = c.chunkSemantic(doc.ID, doc.Content, "")
	}

	if c.config.OverlapSize > 0 {
		chunks = append(chunks, c.synthesizeOverlaps(doc.ID, chunks)...)
	}

	for i, ch := range chunks {
		ch.Metadata.Index = i
	}

	return &model.ChunkingResult{
		DocumentID: doc.ID,
		Strategy:   strategy,
		Chunks:     chunks,
	}, nil
}

// chunkStructured emits one chunk per section that fits, splitting
// oversized sections by paragraph and oversized paragraphs by sentence.
// Section header metadata is propagated to every sub-chunk.
func (c *Chunker) chunkStructured(doc *model.ParsedDocument) []*model.Chunk {
	var chunks []*model.Chunk

	for _, section := range doc.Sections {
		content := strings.TrimSpace(section.Content)
		if content == "" {
			continue
		}

		if model.EstimateTokens(content) <= c.config.MaxChunkSize {
			chunks = append(chunks, c.newChunk(doc.ID, content, section.Header, types.ChunkTypeSection))
			continue
		}

		for _, paragraph := range SplitParagraphs(content) {
			if model.EstimateTokens(paragraph) <= c.config.MaxChunkSize {
				chunks = append(chunks, c.newChunk(doc.ID, paragraph, section.Header, types.ChunkTypeParagraph))
				continue
			}
			// Paragraph still too large: split by sentence
			chunks = append(chunks, c.chunkSemantic(doc.ID, paragraph, section.Header)...)
		}
	}

	return chunks
}

// chunkSemantic greedily accumulates sentences. A chunk is emitted when
// adding the next sentence would exceed MaxChunkSize and the accumulation
// already meets MinChunkSize; the next chunk is seeded with a backward-
// filled overlap of up to OverlapSize tokens.
func (c *Chunker) chunkSemantic(docID model.DocumentID, content string, sectionHeader string) []*model.Chunk {
	chunkType := types.ChunkTypeSemantic
	if sectionHeader != "" {
		chunkType = types.ChunkTypeParagraph
	}

	sentences := SplitSentences(content)
	if len(sentences) == 0 {
		return nil
	}

	var chunks []*model.Chunk
	var current []string
	currentTokens := 0

	flush := func() {
		if len(current) == 0 {
			return
		}
		text := strings.Join(current, " ")
		chunks = append(chunks, c.newChunk(docID, text, sectionHeader, chunkType))
	}

	for _, sentence := range sentences {
		tokens := model.EstimateTokens(sentence)

		if currentTokens+tokens > c.config.MaxChunkSize && currentTokens >= c.config.MinChunkSize {
			flush()
			current = c.overlapSeed(current)
			currentTokens = 0
			for _, s := range current {
				currentTokens += model.EstimateTokens(s)
			}
		}

		current = append(current, sentence)
		currentTokens += tokens
	}

	flush()
	return chunks
}

// overlapSeed returns trailing sentences of the emitted chunk totalling up
// to OverlapSize tokens, used to seed the next accumulation
func (c *Chunker) overlapSeed(emitted []string) []string {
	if c.config.OverlapSize <= 0 {
		return nil
	}

	var seed []string
	total := 0
	for i := len(emitted) - 1; i >= 0; i-- {
		tokens := model.EstimateTokens(emitted[i])
		if total+tokens > c.config.OverlapSize {
			break
		}
		seed = append([]string{emitted[i]}, seed...)
		total += tokens
	}
	return seed
}

// synthesizeOverlaps builds one supplementary overlap chunk between every
// adjacent pair of primary chunks, from the trailing OverlapSize tokens of
// the left chunk plus the leading OverlapSize tokens of the right chunk.
// Overlaps below half of MinChunkSize are discarded.
func (c *Chunker) synthesizeOverlaps(docID model.DocumentID, primary []*model.Chunk) []*model.Chunk {
	if len(primary) < 2 {
		return nil
	}

	var overlaps []*model.Chunk
	for i := 1; i < len(primary); i++ {
		left, right := primary[i-1], primary[i]

		text := tailTokens(left.Content, c.config.OverlapSize) + " " + headTokens(right.Content, c.config.OverlapSize)
		if model.EstimateTokens(text) < c.config.MinChunkSize/2 {
			continue
		}

		header := ""
		if left.Metadata.SectionHeader == right.Metadata.SectionHeader {
			header = left.Metadata.SectionHeader
		}
		overlaps = append(overlaps, c.newChunk(docID, text, header, types.ChunkTypeOverlap))
	}
	return overlaps
}

func (c *Chunker) newChunk(docID model.DocumentID, content, sectionHeader string, chunkType types.ChunkType) *model.Chunk {
	return &model.Chunk{
		ID:            model.NewChunkID(),
		DocumentID:    docID,
		Content:       content,
		TokenEstimate: model.EstimateTokens(content),
		Metadata: model.ChunkMetadata{
			SectionHeader: sectionHeader,
			Type:          chunkType,
		},
	}
}

// tailTokens returns the suffix of text holding roughly the last n
// estimated tokens, snapped to a word boundary
func tailTokens(text string, n int) string {
	chars := n * 4
	if len(text) <= chars {
		return text
	}
	cut := text[len(text)-chars:]
	if idx := strings.IndexAny(cut, " \t\n"); idx >= 0 && idx < len(cut)-1 {
		cut = cut[idx+1:]
	}
	return cut
}

// headTokens returns the prefix of text holding roughly the first n
// estimated tokens, snapped to a word boundary
func headTokens(text string, n int) string {
	chars := n * 4
	if len(text) <= chars {
		return text
	}
	cut := text[:chars]
	if idx := strings.LastIndexAny(cut, " \t\n"); idx > 0 {
		cut = cut[:idx]
	}
	return cut
}
