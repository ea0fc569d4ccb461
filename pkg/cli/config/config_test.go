package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/edmon-lab/mentor/pkg/cli/config"
	"github.com/m-mizutani/gt"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "district.toml")
	gt.NoError(t, os.WriteFile(path, []byte(content), 0600))
	return path
}

func TestLoadDistrictConfig(t *testing.T) {
	t.Run("valid configuration", func(t *testing.T) {
		path := writeConfig(t, `
[district]
id = "district-1"
name = "Lakeside Unified"
address = "100 Main St"
phone = "555-0100"
website = "https://lakeside.example"
office_hours = "8:00-16:30"

[[school]]
name = "Lakeside Elementary"
principal = "R. Alvarez"
phone = "555-0110"
hours = "8:15-15:00"

[[school]]
name = "Lakeside High"
principal = "M. Osei"
phone = "555-0120"
hours = "7:45-14:50"

[safety]
blocked_terms = ["expulsion list"]
sensitive_terms = ["iep", "504 plan"]

[chunker]
max_chunk_size = 400

[retrieval]
vector_weight = 0.6
rerank_timeout_seconds = 5

[router]
selection_cap = 2
`)

		cfg := gt.R1(config.LoadDistrictConfig(path)).NoError(t)
		gt.Value(t, cfg.District.ID).Equal("district-1")
		gt.Array(t, cfg.Schools).Length(2)
		gt.Array(t, cfg.Safety.SensitiveTerms).Length(2)

		info := cfg.DistrictInfo()
		gt.Value(t, info.Name).Equal("Lakeside Unified")
		gt.Value(t, info.Schools[1].Principal).Equal("M. Osei")

		// Unset tunables keep their defaults
		chunkerCfg := cfg.Chunker.Config()
		gt.Number(t, chunkerCfg.MaxChunkSize).Equal(400)
		gt.Number(t, chunkerCfg.MinChunkSize).Equal(100)

		retrievalCfg := cfg.Retrieval.Config()
		gt.Number(t, retrievalCfg.VectorWeight).Equal(0.6)
		gt.Value(t, retrievalCfg.RerankTimeout).Equal(5 * time.Second)
		gt.Number(t, retrievalCfg.RRFConstant).Equal(60)

		routerCfg := cfg.Router.Config()
		gt.Number(t, routerCfg.SelectionCap).Equal(2)
		gt.Number(t, routerCfg.SimpleRouteConfidence).Equal(0.8)
	})

	t.Run("missing district ID", func(t *testing.T) {
		path := writeConfig(t, `
[district]
name = "Lakeside Unified"
`)
		_, err := config.LoadDistrictConfig(path)
		gt.Error(t, err)
	})

	t.Run("duplicate school name", func(t *testing.T) {
		path := writeConfig(t, `
[district]
id = "district-1"
name = "Lakeside Unified"

[[school]]
name = "Lakeside Elementary"

[[school]]
name = "Lakeside Elementary"
`)
		_, err := config.LoadDistrictConfig(path)
		gt.Error(t, err)
	})

	t.Run("vector weight out of range", func(t *testing.T) {
		path := writeConfig(t, `
[district]
id = "district-1"
name = "Lakeside Unified"

[retrieval]
vector_weight = 1.5
`)
		_, err := config.LoadDistrictConfig(path)
		gt.Error(t, err)
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := config.LoadDistrictConfig(filepath.Join(t.TempDir(), "absent.toml"))
		gt.Error(t, err).Is(config.ErrConfigNotFound)
	})
}
