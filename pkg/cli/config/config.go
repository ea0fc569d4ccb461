package config

import (
	"os"
	"time"

	"github.com/edmon-lab/mentor/pkg/agent/tool"
	"github.com/edmon-lab/mentor/pkg/domain/model"
	"github.com/edmon-lab/mentor/pkg/service/chunker"
	"github.com/edmon-lab/mentor/pkg/service/retrieval"
	"github.com/edmon-lab/mentor/pkg/service/safety"
	"github.com/edmon-lab/mentor/pkg/usecase"
	"github.com/m-mizutani/goerr/v2"
	"github.com/pelletier/go-toml/v2"
	"github.com/urfave/cli/v3"
)

// DistrictConfig is the per-district TOML configuration: the public
// directory served by the school information tool plus pipeline tunables.
type DistrictConfig struct {
	District  District  `toml:"district"`
	Schools   []School  `toml:"school"`
	Safety    Safety    `toml:"safety"`
	Chunker   Chunker   `toml:"chunker"`
	Retrieval Retrieval `toml:"retrieval"`
	Router    Router    `toml:"router"`
}

// District is the district directory entry
type District struct {
	ID          string `toml:"id"`
	Name        string `toml:"name"`
	Address     string `toml:"address"`
	Phone       string `toml:"phone"`
	Website     string `toml:"website"`
	OfficeHours string `toml:"office_hours"`
}

// Validate checks if the District is valid
func (d *District) Validate() error {
	if d.ID == "" {
		return goerr.New("district ID is required")
	}
	if d.Name == "" {
		return goerr.New("district name is required", goerr.V("id", d.ID))
	}
	return nil
}

// School is one campus directory entry
type School struct {
	Name      string `toml:"name"`
	Principal string `toml:"principal"`
	Phone     string `toml:"phone"`
	Hours     string `toml:"hours"`
}

// Validate checks if the School is valid
func (s *School) Validate() error {
	if s.Name == "" {
		return goerr.New("school name is required")
	}
	return nil
}

// Safety carries the district's configurable guardrail term lists
type Safety struct {
	BlockedTerms   []string `toml:"blocked_terms"`
	SensitiveTerms []string `toml:"sensitive_terms"`
}

// Chunker carries chunking tunables; zero values keep the defaults
type Chunker struct {
	MinChunkSize int `toml:"min_chunk_size"`
	MaxChunkSize int `toml:"max_chunk_size"`
	OverlapSize  int `toml:"overlap_size"`
}

// Config merges the section over the chunker defaults
func (c *Chunker) Config() chunker.Config {
	cfg := chunker.DefaultConfig()
	if c.MinChunkSize > 0 {
		cfg.MinChunkSize = c.MinChunkSize
	}
	if c.MaxChunkSize > 0 {
		cfg.MaxChunkSize = c.MaxChunkSize
	}
	if c.OverlapSize > 0 {
		cfg.OverlapSize = c.OverlapSize
	}
	return cfg
}

// Retrieval carries hybrid search tunables; zero values keep the defaults
type Retrieval struct {
	RRFConstant          int     `toml:"rrf_constant"`
	VectorWeight         float64 `toml:"vector_weight"`
	FetchMultiplier      int     `toml:"fetch_multiplier"`
	RerankTopN           int     `toml:"rerank_top_n"`
	RerankTimeoutSeconds int     `toml:"rerank_timeout_seconds"`
}

// Validate checks if the Retrieval section is valid
func (r *Retrieval) Validate() error {
	if r.VectorWeight < 0 || r.VectorWeight > 1 {
		return goerr.New("vector_weight must be between 0 and 1", goerr.V("weight", r.VectorWeight))
	}
	return nil
}

// Config merges the section over the retrieval defaults
func (r *Retrieval) Config() retrieval.Config {
	cfg := retrieval.DefaultConfig()
	if r.RRFConstant > 0 {
		cfg.RRFConstant = r.RRFConstant
	}
	if r.VectorWeight > 0 {
		cfg.VectorWeight = r.VectorWeight
	}
	if r.FetchMultiplier > 0 {
		cfg.FetchMultiplier = r.FetchMultiplier
	}
	if r.RerankTopN > 0 {
		cfg.RerankTopN = r.RerankTopN
	}
	if r.RerankTimeoutSeconds > 0 {
		cfg.RerankTimeout = time.Duration(r.RerankTimeoutSeconds) * time.Second
	}
	return cfg
}

// Router carries tool routing tunables; zero values keep the defaults
type Router struct {
	HardConfidenceFloor   float64 `toml:"hard_confidence_floor"`
	SimpleRouteConfidence float64 `toml:"simple_route_confidence"`
	SelectionCap          int     `toml:"selection_cap"`
	FallbackFloor         float64 `toml:"fallback_floor"`
}

// Validate checks if the Router section is valid
func (r *Router) Validate() error {
	for name, v := range map[string]float64{
		"hard_confidence_floor":   r.HardConfidenceFloor,
		"simple_route_confidence": r.SimpleRouteConfidence,
		"fallback_floor":          r.FallbackFloor,
	} {
		if v < 0 || v > 1 {
			return goerr.New("router threshold must be between 0 and 1",
				goerr.V("field", name), goerr.V("value", v))
		}
	}
	return nil
}

// Config merges the section over the router defaults
func (r *Router) Config() tool.RouterConfig {
	cfg := tool.DefaultRouterConfig()
	if r.HardConfidenceFloor > 0 {
		cfg.HardConfidenceFloor = r.HardConfidenceFloor
	}
	if r.SimpleRouteConfidence > 0 {
		cfg.SimpleRouteConfidence = r.SimpleRouteConfidence
	}
	if r.SelectionCap > 0 {
		cfg.SelectionCap = r.SelectionCap
	}
	if r.FallbackFloor > 0 {
		cfg.FallbackFloor = r.FallbackFloor
	}
	return cfg
}

// Validate checks if the DistrictConfig is valid
func (c *DistrictConfig) Validate() error {
	if err := c.District.Validate(); err != nil {
		return goerr.Wrap(err, "invalid district")
	}

	schoolNames := make(map[string]bool)
	for _, s := range c.Schools {
		if err := s.Validate(); err != nil {
			return goerr.Wrap(err, "invalid school")
		}
		if schoolNames[s.Name] {
			return goerr.New("duplicate school name", goerr.V("name", s.Name))
		}
		schoolNames[s.Name] = true
	}

	if err := c.Retrieval.Validate(); err != nil {
		return goerr.Wrap(err, "invalid retrieval section")
	}
	if err := c.Router.Validate(); err != nil {
		return goerr.Wrap(err, "invalid router section")
	}
	return nil
}

// DistrictInfo converts the directory sections to the domain model
func (c *DistrictConfig) DistrictInfo() *model.DistrictInfo {
	schools := make([]model.SchoolInfo, len(c.Schools))
	for i, s := range c.Schools {
		schools[i] = model.SchoolInfo{
			Name:      s.Name,
			Principal: s.Principal,
			Phone:     s.Phone,
			Hours:     s.Hours,
		}
	}
	return &model.DistrictInfo{
		ID:          c.District.ID,
		Name:        c.District.Name,
		Address:     c.District.Address,
		Phone:       c.District.Phone,
		Website:     c.District.Website,
		OfficeHours: c.District.OfficeHours,
		Schools:     schools,
	}
}

// Options translates the configuration into pipeline options
func (c *DistrictConfig) Options() []usecase.Option {
	return []usecase.Option{
		usecase.WithDistrictInfo(c.DistrictInfo()),
		usecase.WithSafetyConfig(safety.Config{
			BlockedTerms:   c.Safety.BlockedTerms,
			SensitiveTerms: c.Safety.SensitiveTerms,
		}),
		usecase.WithChunkerConfig(c.Chunker.Config()),
		usecase.WithRetrievalConfig(c.Retrieval.Config()),
		usecase.WithRouterConfig(c.Router.Config()),
	}
}

// LoadDistrictConfig loads and validates a district configuration file
func LoadDistrictConfig(path string) (*DistrictConfig, error) {
	// #nosec G304 - path is expected to be provided by CLI argument
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, goerr.Wrap(ErrConfigNotFound, err.Error(), goerr.V("path", path))
	}

	var config DistrictConfig
	if err := toml.Unmarshal(data, &config); err != nil {
		return nil, goerr.Wrap(err, "failed to parse TOML config", goerr.V("path", path))
	}

	if err := config.Validate(); err != nil {
		return nil, goerr.Wrap(err, "config validation failed", goerr.V("path", path))
	}

	return &config, nil
}

// DistrictFile holds the CLI flag locating the district configuration
type DistrictFile struct {
	path string
}

// Flags returns CLI flags for district configuration
func (x *DistrictFile) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "config",
			Aliases:     []string{"c"},
			Usage:       "Path to the district configuration TOML file",
			Sources:     cli.EnvVars("MENTOR_CONFIG"),
			Destination: &x.path,
		},
	}
}

// Path returns the configured file path
func (x *DistrictFile) Path() string {
	return x.path
}

// Configure loads the district configuration. Returns nil when no file is
// configured; the pipeline then runs with built-in defaults and no
// district directory.
func (x *DistrictFile) Configure() (*DistrictConfig, error) {
	if x.path == "" {
		return nil, nil
	}
	return LoadDistrictConfig(x.path)
}
