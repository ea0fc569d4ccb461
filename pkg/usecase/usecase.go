package usecase

import (
	"github.com/edmon-lab/mentor/pkg/agent/tool"
	"github.com/edmon-lab/mentor/pkg/agent/tool/core"
	"github.com/edmon-lab/mentor/pkg/domain/interfaces"
	"github.com/edmon-lab/mentor/pkg/domain/model"
	"github.com/edmon-lab/mentor/pkg/service/chunker"
	"github.com/edmon-lab/mentor/pkg/service/embedding"
	"github.com/edmon-lab/mentor/pkg/service/intent"
	"github.com/edmon-lab/mentor/pkg/service/response"
	"github.com/edmon-lab/mentor/pkg/service/retrieval"
	"github.com/edmon-lab/mentor/pkg/service/safety"
	"github.com/edmon-lab/mentor/pkg/service/storage"
	slackService "github.com/edmon-lab/mentor/pkg/service/slack"
	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gollem"
)

// UseCases wires the full question-answering and ingestion pipelines
type UseCases struct {
	repo      interfaces.Repository
	llmClient gollem.LLMClient

	chunkerConfig   chunker.Config
	embeddingConfig embedding.Config
	retrievalConfig retrieval.Config
	routerConfig    tool.RouterConfig
	safetyConfig    safety.Config

	notifier     slackService.Service
	districtInfo *model.DistrictInfo
	archive      *storage.Archive
	extraTools   []tool.Tool

	chunker      *chunker.Chunker
	embedder     *embedding.Generator
	engine       *retrieval.Engine
	classifier   *intent.Classifier
	guardrails   *safety.Guardrails
	registry     *tool.Registry
	router       *tool.Router
	executor     *tool.Executor
	generator    *response.Generator
	ingestStatus *model.IngestStatusMap
}

type Option func(*UseCases)

// WithLLMClient sets the model provider for classification, routing,
// re-ranking, embedding and response generation. Without it the pipeline
// runs in degraded deterministic mode.
func WithLLMClient(client gollem.LLMClient) Option {
	return func(uc *UseCases) {
		uc.llmClient = client
	}
}

func WithChunkerConfig(cfg chunker.Config) Option {
	return func(uc *UseCases) {
		uc.chunkerConfig = cfg
	}
}

func WithEmbeddingConfig(cfg embedding.Config) Option {
	return func(uc *UseCases) {
		uc.embeddingConfig = cfg
	}
}

func WithRetrievalConfig(cfg retrieval.Config) Option {
	return func(uc *UseCases) {
		uc.retrievalConfig = cfg
	}
}

func WithRouterConfig(cfg tool.RouterConfig) Option {
	return func(uc *UseCases) {
		uc.routerConfig = cfg
	}
}

func WithSafetyConfig(cfg safety.Config) Option {
	return func(uc *UseCases) {
		uc.safetyConfig = cfg
	}
}

// WithNotifier sets the escalation notification channel
func WithNotifier(notifier slackService.Service) Option {
	return func(uc *UseCases) {
		uc.notifier = notifier
	}
}

// WithDistrictInfo provides the district directory served by school_info
func WithDistrictInfo(info *model.DistrictInfo) Option {
	return func(uc *UseCases) {
		uc.districtInfo = info
	}
}

// WithArchive enables archiving of parsed document text at ingest
func WithArchive(archive *storage.Archive) Option {
	return func(uc *UseCases) {
		uc.archive = archive
	}
}

// WithTools registers additional tools beyond the core set
func WithTools(tools ...tool.Tool) Option {
	return func(uc *UseCases) {
		uc.extraTools = append(uc.extraTools, tools...)
	}
}

func New(repo interfaces.Repository, opts ...Option) (*UseCases, error) {
	uc := &UseCases{
		repo:            repo,
		chunkerConfig:   chunker.DefaultConfig(),
		embeddingConfig: embedding.DefaultConfig(),
		retrievalConfig: retrieval.DefaultConfig(),
		routerConfig:    tool.DefaultRouterConfig(),
		ingestStatus:    model.NewIngestStatusMap(),
	}

	for _, opt := range opts {
		opt(uc)
	}

	chk, err := chunker.New(uc.chunkerConfig)
	if err != nil {
		return nil, goerr.Wrap(err, "invalid chunker configuration")
	}
	uc.chunker = chk

	uc.embedder = embedding.New(uc.llmClient, uc.embeddingConfig)
	uc.engine = retrieval.New(repo.Chunk(), uc.embedder, uc.llmClient, uc.retrievalConfig)
	uc.classifier = intent.New(uc.llmClient)
	uc.guardrails = safety.New(uc.safetyConfig)
	uc.generator = response.New(uc.llmClient)

	tools := core.New(uc.engine, repo.Student(), uc.notifier, uc.districtInfo)
	tools = append(tools, uc.extraTools...)
	registry, err := tool.NewRegistry(tools)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to build tool registry")
	}
	uc.registry = registry
	uc.router = tool.NewRouter(registry, uc.llmClient, uc.routerConfig)
	uc.executor = tool.NewExecutor(registry)

	return uc, nil
}

// IngestStatus returns the tracked status of a document ingestion task
func (uc *UseCases) IngestStatus(docID model.DocumentID) (model.IngestStatus, bool) {
	return uc.ingestStatus.Get(docID)
}

// Retrieval exposes the hybrid search engine for direct queries
func (uc *UseCases) Retrieval() *retrieval.Engine {
	return uc.engine
}

// Tools returns the definitions of every registered tool
func (uc *UseCases) Tools() []model.ToolDefinition {
	return uc.registry.Definitions()
}
